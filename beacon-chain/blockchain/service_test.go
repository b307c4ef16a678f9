package blockchain

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orovalt/sentrybeacon/beacon-chain/archiver"
	"github.com/orovalt/sentrybeacon/beacon-chain/blockinput"
	"github.com/orovalt/sentrybeacon/beacon-chain/cache/seen"
	"github.com/orovalt/sentrybeacon/beacon-chain/db/kv"
	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice"
	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice/protoarray"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
	"github.com/orovalt/sentrybeacon/time/slots"
)

// fakeTransition always succeeds, incrementing a fake post-state counter
// so tests can assert the orchestrator threaded the right preState in.
type fakeTransition struct{}

func (fakeTransition) Apply(_ context.Context, preState State, _ blocks.SignedBeaconBlock, _ TransitionOpts) (TransitionResult, error) {
	count, _ := preState.(int)
	return TransitionResult{State: count + 1, ExecutionStatus: forkchoice.ExecutionStatusValid}, nil
}

func newTestService(t *testing.T) (*Service, *protoarray.ForkChoice) {
	t.Helper()

	store, err := kv.NewKVStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	registry := blockinput.NewBlockInputRegistry()
	fc := protoarray.New()
	coordinator := archiver.NewCoordinator(store, registry, seen.NewCaches(), archiver.StrategyFrequency)
	clock := slots.NewClock(time.Now())

	return New(registry, fc, fakeTransition{}, store, coordinator, clock), fc
}

func rootHexForTest(r [32]byte) string {
	return "0x" + hex.EncodeToString(r[:])
}

func signedBlock(t *testing.T, slot primitives.Slot, parent [32]byte) (blocks.ROBlock, string) {
	t.Helper()
	sb := blocks.NewSignedBeaconBlock(blocks.ForkPhase0, slot, 1, parent, [32]byte{}, nil, []byte("sig"))
	rb, err := blocks.NewROBlock(sb)
	require.NoError(t, err)
	return rb, rootHexForTest(rb.Root())
}

func TestService_ReceiveBlock_RunsFullPipeline(t *testing.T) {
	s, fc := newTestService(t)
	ctx := context.Background()

	genesisRoot := [32]byte{'G'}
	s.SetGenesis(genesisRoot, 0, 0)
	require.NoError(t, fc.InsertGenesis(ctx, genesisRoot, 0))

	blk, _ := signedBlock(t, 1, genesisRoot)
	require.NoError(t, s.ReceiveBlock(ctx, blk))

	st, ok := s.stateByRoot(blk.Root())
	require.True(t, ok)
	require.Equal(t, 1, st)

	require.True(t, fc.HasNode(blk.Root()))

	stored, err := s.db.Block(ctx, blk.Root())
	require.NoError(t, err)
	require.Equal(t, blk.Block().Slot(), stored.Block().Slot())
}

func TestService_ReceiveBlock_MissingParentState(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	blk, _ := signedBlock(t, 1, [32]byte{'X'})
	err := s.ReceiveBlock(ctx, blk)
	require.Error(t, err)
}

func TestService_ReceiveBlockInput_WaitsForCompletion(t *testing.T) {
	s, fc := newTestService(t)
	ctx := context.Background()

	genesisRoot := [32]byte{'G'}
	s.SetGenesis(genesisRoot, 0, 0)
	require.NoError(t, fc.InsertGenesis(ctx, genesisRoot, 0))

	blk, rootHex := signedBlock(t, 1, genesisRoot)
	meta := blockinput.Meta{
		ForkName:      blocks.ForkPhase0,
		Slot:          1,
		BlockRootHex:  rootHex,
		ParentRootHex: rootHexForTest(genesisRoot),
	}
	part := blockinput.BlockPart{
		Block:        blk.SignedBeaconBlock,
		BlockRootHex: rootHex,
		Source:       blockinput.SourceMeta{Source: "gossip"},
	}
	require.NoError(t, s.registry.AddBlock(meta, part, blockinput.AddBlockOpts{}))

	require.NoError(t, s.ReceiveBlockInput(ctx, rootHex, time.Second))
	require.True(t, fc.HasNode(blk.Root()))
}

func TestService_OnNewSlot_PrunesFinalizedState(t *testing.T) {
	s, fc := newTestService(t)
	ctx := context.Background()

	genesisRoot := [32]byte{'G'}
	s.SetGenesis(genesisRoot, 0, 0)
	require.NoError(t, fc.InsertGenesis(ctx, genesisRoot, 0))
	require.NoError(t, s.OnNewSlot(ctx, 0))

	// Genesis's state, at slot 0, sits at the finalized horizon; a later
	// finalized epoch should eventually make it prunable. Directly prune
	// below a future slot to exercise the sweep deterministically.
	pruned := s.pruneStatesBelow(1)
	require.Equal(t, 1, pruned)
	_, ok := s.stateByRoot(genesisRoot)
	require.False(t, ok)
}
