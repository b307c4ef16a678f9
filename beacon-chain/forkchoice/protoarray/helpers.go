package protoarray

import "context"

// Vote tracks a single validator's LMD-GHOST vote across two ticks: the
// root it counted toward last round (currentRoot) and the root it counts
// toward this round (nextRoot). currentIndex is not set or read anywhere
// in this package; a Vote's validator is its position in the votes slice.
type Vote struct {
	currentRoot  [32]byte
	nextRoot     [32]byte
	currentIndex uint64
}

// computeDeltas derives the per-node weight delta for this round's
// balances and votes, moving each validator's counted balance from its
// old root to its new one. votes is advanced in place so the caller's
// next round starts from nextRoot.
func computeDeltas(
	ctx context.Context,
	indices map[[32]byte]uint64,
	votes []Vote,
	oldBalances []uint64,
	newBalances []uint64,
) ([]int, []Vote, error) {
	deltas := make([]int, len(indices))

	for i := range votes {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		vote := votes[i]

		var oldBalance, newBalance uint64
		if i < len(oldBalances) {
			oldBalance = oldBalances[i]
		}
		if i < len(newBalances) {
			newBalance = newBalances[i]
		}

		if vote.currentRoot != vote.nextRoot || oldBalance != newBalance {
			if oldIndex, ok := indices[vote.currentRoot]; ok {
				deltas[oldIndex] -= int(oldBalance)
			}
			if newIndex, ok := indices[vote.nextRoot]; ok {
				deltas[newIndex] += int(newBalance)
			}
		}

		votes[i].currentRoot = vote.nextRoot
	}

	return deltas, votes, nil
}
