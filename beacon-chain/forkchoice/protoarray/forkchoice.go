package protoarray

import (
	"context"
	"sync"

	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice"
	forkchoicetypes "github.com/orovalt/sentrybeacon/beacon-chain/forkchoice/types"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// ForkChoice wraps a Store with the per-validator vote/balance bookkeeping
// head computation needs: each validator's current and next vote root,
// and its current effective balance. It implements forkchoice.ForkChoicer.
type ForkChoice struct {
	mu         sync.Mutex
	store      *Store
	votes      []Vote
	voteEpochs []primitives.Epoch
	balances   []uint64

	hasHead  bool
	headRoot [32]byte
	headSlot primitives.Slot
}

// New returns an empty ForkChoice with a genesis-anchored store.
func New() *ForkChoice {
	return &ForkChoice{store: newStore()}
}

func toInternalStatus(s forkchoice.ExecutionStatus) executionStatus {
	switch s {
	case forkchoice.ExecutionStatusInvalid:
		return statusInvalid
	case forkchoice.ExecutionStatusSyncing:
		return statusSyncing
	default:
		return statusValid
	}
}

// InsertGenesis seeds the store with root as both the justified and
// finalized checkpoint at epoch 0, since InsertNode only ever advances a
// checkpoint forward from its current epoch.
func (f *ForkChoice) InsertGenesis(ctx context.Context, root [32]byte, slot primitives.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.store.insert(ctx, slot, root, [32]byte{}, [32]byte{}, 0, 0, statusValid); err != nil {
		return err
	}
	f.store.justifiedCheckpoint = &forkchoicetypes.Checkpoint{Epoch: 0, Root: root}
	f.store.finalizedCheckpoint = &forkchoicetypes.Checkpoint{Epoch: 0, Root: root}
	return nil
}

// InsertNode appends b as a new proto-block.
func (f *ForkChoice) InsertNode(ctx context.Context, b forkchoice.BlockAndCheckpoints) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, err := f.store.insert(ctx, b.Slot, b.Root, b.Parent, b.PayloadHash, b.JustifiedEpoch, b.FinalizedEpoch, toInternalStatus(b.ExecutionStatus))
	return err
}

// OnAttestation records validatorIndex's vote for targetRoot at
// targetEpoch: it sets the validator's nextRoot, to be applied against
// the store's node weights on the next UpdateBalances call. An
// attestation at or before the epoch of a vote already recorded for this
// validator is ignored, so replayed or reordered attestations can never
// move a validator's vote backwards.
func (f *ForkChoice) OnAttestation(validatorIndex uint64, targetRoot [32]byte, targetEpoch primitives.Epoch) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if validatorIndex >= uint64(len(f.votes)) {
		grown := make([]Vote, validatorIndex+1)
		copy(grown, f.votes)
		f.votes = grown

		grownEpochs := make([]primitives.Epoch, validatorIndex+1)
		copy(grownEpochs, f.voteEpochs)
		f.voteEpochs = grownEpochs
	}

	if targetEpoch <= f.voteEpochs[validatorIndex] && f.votes[validatorIndex].nextRoot != [32]byte{} {
		return
	}
	f.votes[validatorIndex].nextRoot = targetRoot
	f.voteEpochs[validatorIndex] = targetEpoch
}

// UpdateBalances recomputes vote deltas against newBalances and applies
// them to the store's node weights, then rebuilds best-child/descendant
// along every affected parent chain.
func (f *ForkChoice) UpdateBalances(newBalances []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx := context.Background()
	deltas, newVotes, err := computeDeltas(ctx, f.store.nodesIndices, f.votes, f.balances, newBalances)
	if err != nil {
		return err
	}
	f.votes = newVotes
	f.balances = newBalances

	if err := f.store.applyWeightChanges(ctx, deltas); err != nil {
		return err
	}

	for i := len(f.store.nodes) - 1; i >= 0; i-- {
		n := f.store.nodes[i]
		if n.parent != NonExistentNode {
			if err := f.store.updateBestChildAndDescendant(n.parent, uint64(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Head returns the current canonical head root.
func (f *ForkChoice) Head(ctx context.Context) ([32]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.head(ctx)
}

// UpdateHead recomputes the head and, if the new head's ancestry
// diverges from the previous head before reaching a common ancestor,
// records a reorg: the distance is the drop from the old head's slot to
// that common ancestor's slot. reason only labels the call for callers'
// own logging; the recomputation itself does not depend on it.
func (f *ForkChoice) UpdateHead(ctx context.Context, reason forkchoice.UpdateHeadReason) ([32]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	newHead, err := f.store.head(ctx)
	if err != nil {
		return [32]byte{}, err
	}

	if f.hasHead && f.headRoot != newHead {
		f.recordReorgIfAny(ctx, reason, newHead)
	}

	newIndex, ok := f.store.nodesIndices[newHead]
	if !ok {
		return [32]byte{}, errUnknownNodeRoot
	}
	f.hasHead = true
	f.headRoot = newHead
	f.headSlot = f.store.nodes[newIndex].slot
	headSlotGauge.Set(float64(f.headSlot))
	return newHead, nil
}

// recordReorgIfAny emits the reorg metrics when the outgoing head is not
// an ancestor of the incoming one. Must be called with f.mu held, before
// f.headRoot is updated to newHead.
func (f *ForkChoice) recordReorgIfAny(ctx context.Context, _ forkchoice.UpdateHeadReason, newHead [32]byte) {
	oldHead := f.headRoot
	oldSlot := f.headSlot

	ancestorRoot, ancestorSlot, err := f.store.commonAncestor(ctx, oldHead, newHead)
	if err != nil {
		// Unknown ancestry (e.g. the old head was pruned): nothing
		// meaningful to report a distance for.
		return
	}
	if ancestorRoot == oldHead {
		// The old head is itself on the new head's ancestor chain: this
		// is a simple extension, not a reorg.
		return
	}

	reorgsTotal.Inc()
	reorgDistance.Observe(float64(oldSlot.SubSlot(ancestorSlot)))
}

// JustifiedCheckpoint returns the store's justified checkpoint.
func (f *ForkChoice) JustifiedCheckpoint() *forkchoicetypes.Checkpoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.JustifiedCheckpoint()
}

// FinalizedCheckpoint returns the store's finalized checkpoint.
func (f *ForkChoice) FinalizedCheckpoint() *forkchoicetypes.Checkpoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.FinalizedCheckpoint()
}

// SafeBeaconBlockRoot is the justified root.
func (f *ForkChoice) SafeBeaconBlockRoot(_ context.Context) ([32]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.justifiedCheckpoint.Root, nil
}

// SafeExecutionBlockHash is the justified node's payload hash, or the
// zero hash if the justified node has none.
func (f *ForkChoice) SafeExecutionBlockHash(_ context.Context) ([32]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	index, ok := f.store.nodesIndices[f.store.justifiedCheckpoint.Root]
	if !ok {
		return [32]byte{}, errUnknownJustifiedRoot
	}
	return f.store.nodes[index].payloadHash, nil
}

// IsCanonical reports whether root was on the chain ending at the last
// computed head.
func (f *ForkChoice) IsCanonical(root [32]byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.isCanonical(root)
}

// HasNode reports whether root has a node in the store.
func (f *ForkChoice) HasNode(root [32]byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.store.nodesIndices[root]
	return ok
}

// IsOptimistic reports whether root's execution payload is still
// syncing.
func (f *ForkChoice) IsOptimistic(root [32]byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	status, ok := f.store.payloadStatus(root)
	if !ok {
		return false, errUnknownNodeRoot
	}
	return status == statusSyncing, nil
}

// SetOptimisticToValid resolves root, and every ancestor still syncing,
// to valid.
func (f *ForkChoice) SetOptimisticToValid(ctx context.Context, root [32]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.setNodeAndParentValidated(ctx, root)
}

// Prune discards ancestors below the finalized root.
func (f *ForkChoice) Prune(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.prune(ctx)
}

// CommonAncestor returns the first shared ancestor of root1 and root2.
func (f *ForkChoice) CommonAncestor(ctx context.Context, root1, root2 [32]byte) ([32]byte, primitives.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.commonAncestor(ctx, root1, root2)
}

var _ forkchoice.ForkChoicer = (*ForkChoice)(nil)
