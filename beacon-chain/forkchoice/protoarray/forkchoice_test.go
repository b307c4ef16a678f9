package protoarray

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

func reorgsTotalCountForTest() float64 {
	return testutil.ToFloat64(reorgsTotal)
}

func insertAt(t *testing.T, fc *ForkChoice, slot primitives.Slot, root, parent [32]byte) {
	t.Helper()
	err := fc.InsertNode(context.Background(), forkchoice.BlockAndCheckpoints{
		Slot:   slot,
		Root:   root,
		Parent: parent,
	})
	require.NoError(t, err)
}

func TestForkChoice_UpdateHead_NoReorgOnFirstCall(t *testing.T) {
	fc := New()
	genesis := [32]byte{'G'}
	require.NoError(t, fc.InsertGenesis(context.Background(), genesis, 0))
	require.NoError(t, fc.UpdateBalances(nil))

	head, err := fc.UpdateHead(context.Background(), forkchoice.UpdateHeadNewBlock)
	require.NoError(t, err)
	require.Equal(t, genesis, head)
	require.Equal(t, 0, int(reorgsTotalCountForTest()))
}

func TestForkChoice_UpdateHead_SimpleExtensionIsNotReorg(t *testing.T) {
	fc := New()
	genesis := [32]byte{'G'}
	a := [32]byte{'A'}
	require.NoError(t, fc.InsertGenesis(context.Background(), genesis, 0))
	require.NoError(t, fc.UpdateBalances(nil))
	_, err := fc.UpdateHead(context.Background(), forkchoice.UpdateHeadNewBlock)
	require.NoError(t, err)

	insertAt(t, fc, 1, a, genesis)
	require.NoError(t, fc.UpdateBalances(nil))
	before := reorgsTotalCountForTest()
	head, err := fc.UpdateHead(context.Background(), forkchoice.UpdateHeadNewBlock)
	require.NoError(t, err)
	require.Equal(t, a, head)
	require.Equal(t, before, reorgsTotalCountForTest())
}

// TestForkChoice_UpdateHead_Reorg covers a boundary scenario: old head
// at slot 50 on branch X, new head at slot 51 on branch Y whose common
// ancestor with X is at slot 48, for a reorg distance of 50-48=2.
func TestForkChoice_UpdateHead_Reorg(t *testing.T) {
	fc := New()
	genesis := [32]byte{'G'}
	common := [32]byte{'C'}
	x := [32]byte{'X'}
	y := [32]byte{'Y'}

	require.NoError(t, fc.InsertGenesis(context.Background(), genesis, 0))
	insertAt(t, fc, 48, common, genesis)
	insertAt(t, fc, 50, x, common)
	require.NoError(t, fc.UpdateBalances(nil))

	head, err := fc.UpdateHead(context.Background(), forkchoice.UpdateHeadNewBlock)
	require.NoError(t, err)
	require.Equal(t, x, head)

	insertAt(t, fc, 51, y, common)
	// Force y to outweigh x as best child of common.
	fc.mu.Lock()
	yIdx := fc.store.nodesIndices[y]
	xIdx := fc.store.nodesIndices[x]
	fc.store.nodes[yIdx].weight = 100
	fc.store.nodes[xIdx].weight = 1
	fc.mu.Unlock()
	require.NoError(t, fc.UpdateBalances(nil))

	before := reorgsTotalCountForTest()
	head, err = fc.UpdateHead(context.Background(), forkchoice.UpdateHeadNewBlock)
	require.NoError(t, err)
	require.Equal(t, y, head)
	require.Equal(t, before+1, reorgsTotalCountForTest())
}

// TestForkChoice_OnAttestation_AppliesVoteWeight verifies a validator's
// vote actually moves node weight at the next UpdateBalances call, and
// that the new weight is what UpdateHead's LMD-GHOST selection picks up
// on — without OnAttestation, both children below tie on zero weight and
// head selection falls back to root-byte tie-breaking alone.
func TestForkChoice_OnAttestation_AppliesVoteWeight(t *testing.T) {
	fc := New()
	genesis := [32]byte{'G'}
	a := [32]byte{'A'}
	b := [32]byte{'B'}

	require.NoError(t, fc.InsertGenesis(context.Background(), genesis, 0))
	insertAt(t, fc, 1, a, genesis)
	insertAt(t, fc, 1, b, genesis)
	require.NoError(t, fc.UpdateBalances(nil))

	// B sorts after A lexicographically, so with no votes B wins the tie.
	head, err := fc.UpdateHead(context.Background(), forkchoice.UpdateHeadNewBlock)
	require.NoError(t, err)
	require.Equal(t, b, head)

	fc.OnAttestation(0, a, 0)
	require.NoError(t, fc.UpdateBalances([]uint64{32}))

	head, err = fc.UpdateHead(context.Background(), forkchoice.UpdateHeadNewBlock)
	require.NoError(t, err)
	require.Equal(t, a, head)
}

// TestForkChoice_OnAttestation_IgnoresStaleEpoch verifies a vote at an
// earlier-or-equal epoch than one already recorded for the same
// validator never overwrites the later vote.
func TestForkChoice_OnAttestation_IgnoresStaleEpoch(t *testing.T) {
	fc := New()
	genesis := [32]byte{'G'}
	a := [32]byte{'A'}
	b := [32]byte{'B'}

	require.NoError(t, fc.InsertGenesis(context.Background(), genesis, 0))
	insertAt(t, fc, 1, a, genesis)
	insertAt(t, fc, 1, b, genesis)
	require.NoError(t, fc.UpdateBalances(nil))

	fc.OnAttestation(0, a, 5)
	fc.OnAttestation(0, b, 3)
	require.NoError(t, fc.UpdateBalances([]uint64{32}))

	head, err := fc.UpdateHead(context.Background(), forkchoice.UpdateHeadNewBlock)
	require.NoError(t, err)
	require.Equal(t, a, head)
}
