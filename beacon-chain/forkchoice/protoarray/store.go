package protoarray

import (
	"bytes"
	"context"
	"sync"

	forkchoicetypes "github.com/orovalt/sentrybeacon/beacon-chain/forkchoice/types"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// defaultPruneThreshold bounds how often prune actually shrinks the
// backing array: below it, the amortized cost of shifting the slice
// outweighs the memory saved.
const defaultPruneThreshold = 256

// Store is the flat proto-array: a contiguous node vector plus O(1)
// root→index and payloadHash→index maps. It is guarded by the owning
// ForkChoice's mutex; nodesLock exists so a Store used standalone (as in
// this package's tests) can still be shared safely without pulling in
// the wrapper.
type Store struct {
	nodesLock sync.RWMutex

	nodes          []*Node
	nodesIndices   map[[32]byte]uint64
	payloadIndices map[[32]byte]uint64
	canonicalNodes map[[32]byte]bool

	justifiedCheckpoint *forkchoicetypes.Checkpoint
	finalizedCheckpoint *forkchoicetypes.Checkpoint

	pruneThreshold uint64
}

func newStore() *Store {
	return &Store{
		nodesIndices:        make(map[[32]byte]uint64),
		payloadIndices:      make(map[[32]byte]uint64),
		canonicalNodes:      make(map[[32]byte]bool),
		justifiedCheckpoint: &forkchoicetypes.Checkpoint{},
		finalizedCheckpoint: &forkchoicetypes.Checkpoint{},
		pruneThreshold:      defaultPruneThreshold,
	}
}

// PruneThreshold returns the store's prune threshold.
func (s *Store) PruneThreshold() uint64 {
	return s.pruneThreshold
}

// JustifiedCheckpoint returns the store's current justified checkpoint.
func (s *Store) JustifiedCheckpoint() *forkchoicetypes.Checkpoint {
	s.nodesLock.RLock()
	defer s.nodesLock.RUnlock()
	return s.justifiedCheckpoint
}

// FinalizedCheckpoint returns the store's current finalized checkpoint.
func (s *Store) FinalizedCheckpoint() *forkchoicetypes.Checkpoint {
	s.nodesLock.RLock()
	defer s.nodesLock.RUnlock()
	return s.finalizedCheckpoint
}

// insert appends a new node for root, or returns the existing index if
// root is already known. insert takes no lock itself; ForkChoice calls it
// with its own mutex held.
func (s *Store) insert(
	ctx context.Context,
	slot primitives.Slot,
	root, parent, payloadHash [32]byte,
	justifiedEpoch, finalizedEpoch primitives.Epoch,
	status executionStatus,
) (uint64, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if index, ok := s.nodesIndices[root]; ok {
		return index, nil
	}

	index := uint64(len(s.nodes))
	parentIndex, hasParent := s.nodesIndices[parent]
	if !hasParent {
		parentIndex = NonExistentNode
	}

	n := &Node{
		slot:           slot,
		root:           root,
		parent:         parentIndex,
		payloadHash:    payloadHash,
		justifiedEpoch: justifiedEpoch,
		finalizedEpoch: finalizedEpoch,
		bestChild:      NonExistentNode,
		bestDescendant: NonExistentNode,
		status:         status,
	}

	s.nodes = append(s.nodes, n)
	s.nodesIndices[root] = index
	s.payloadIndices[payloadHash] = index

	if justifiedEpoch > s.justifiedCheckpoint.Epoch {
		s.justifiedCheckpoint = &forkchoicetypes.Checkpoint{Epoch: justifiedEpoch, Root: root}
	}
	if finalizedEpoch > s.finalizedCheckpoint.Epoch {
		s.finalizedCheckpoint = &forkchoicetypes.Checkpoint{Epoch: finalizedEpoch, Root: root}
	}

	if parentIndex != NonExistentNode {
		if err := s.updateBestChildAndDescendant(parentIndex, index); err != nil {
			return 0, err
		}
	}
	return index, nil
}

// applyWeightChanges propagates each node's delta up through its parent
// chain: processing highest index first guarantees every child is applied
// before its parent, so a parent picks up its children's contributions
// via the same deltas slice.
func (s *Store) applyWeightChanges(ctx context.Context, deltas []int) error {
	if len(deltas) != len(s.nodes) {
		return errInvalidDeltaLength
	}

	for i := len(s.nodes) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d := deltas[i]
		if d == 0 {
			continue
		}
		n := s.nodes[i]
		if d < 0 {
			abs := uint64(-d)
			if abs > n.weight {
				n.weight = 0
			} else {
				n.weight -= abs
			}
		} else {
			n.weight += uint64(d)
		}
		if n.parent != NonExistentNode {
			deltas[n.parent] += d
		}
	}
	return nil
}

// leadsToViableHead reports whether n, or its current best descendant,
// satisfies viableForHead against the store's checkpoints.
func (s *Store) leadsToViableHead(n *Node) bool {
	best := n
	if n.bestDescendant != NonExistentNode && n.bestDescendant < uint64(len(s.nodes)) {
		best = s.nodes[n.bestDescendant]
	}
	return best.viableForHead(s.justifiedCheckpoint.Epoch, s.finalizedCheckpoint.Epoch)
}

// updateBestChildAndDescendant re-evaluates parent's best child against
// child, breaking weight ties by lexicographically higher root.
func (s *Store) updateBestChildAndDescendant(parentIndex, childIndex uint64) error {
	if parentIndex >= uint64(len(s.nodes)) {
		return errInvalidNodeIndex
	}
	if childIndex >= uint64(len(s.nodes)) {
		return errInvalidNodeIndex
	}

	parent := s.nodes[parentIndex]
	child := s.nodes[childIndex]
	childLeadsToViable := s.leadsToViableHead(child)

	descendantOf := func(n *Node, idx uint64) uint64 {
		if n.bestDescendant == NonExistentNode {
			return idx
		}
		return n.bestDescendant
	}

	if parent.bestChild == NonExistentNode {
		if childLeadsToViable {
			parent.bestChild = childIndex
			parent.bestDescendant = descendantOf(child, childIndex)
		}
		return nil
	}

	if parent.bestChild == childIndex {
		if !childLeadsToViable {
			parent.bestChild = NonExistentNode
			parent.bestDescendant = NonExistentNode
		} else {
			parent.bestDescendant = descendantOf(child, childIndex)
		}
		return nil
	}

	oldBest := s.nodes[parent.bestChild]
	oldBestLeadsToViable := s.leadsToViableHead(oldBest)

	var changeToChild bool
	switch {
	case childLeadsToViable && !oldBestLeadsToViable:
		changeToChild = true
	case !childLeadsToViable && oldBestLeadsToViable:
		changeToChild = false
	case child.weight == oldBest.weight:
		changeToChild = bytes.Compare(child.root[:], oldBest.root[:]) > 0
	default:
		changeToChild = child.weight > oldBest.weight
	}

	if changeToChild {
		parent.bestChild = childIndex
		parent.bestDescendant = descendantOf(child, childIndex)
	}
	return nil
}

// head walks from the justified root to its best descendant.
func (s *Store) head(ctx context.Context) ([32]byte, error) {
	if ctx.Err() != nil {
		return [32]byte{}, ctx.Err()
	}

	justifiedIndex, ok := s.nodesIndices[s.justifiedCheckpoint.Root]
	if !ok {
		return [32]byte{}, errUnknownJustifiedRoot
	}
	if justifiedIndex >= uint64(len(s.nodes)) {
		return [32]byte{}, errInvalidJustifiedIndex
	}

	justifiedNode := s.nodes[justifiedIndex]
	bestDescendantIndex := justifiedNode.bestDescendant
	if bestDescendantIndex == NonExistentNode {
		bestDescendantIndex = justifiedIndex
	}
	if bestDescendantIndex >= uint64(len(s.nodes)) {
		return [32]byte{}, errInvalidNodeIndex
	}

	best := s.nodes[bestDescendantIndex]
	s.markCanonical(best.root)
	return best.root, nil
}

// markCanonical recomputes canonicalNodes as the ancestor chain of root.
func (s *Store) markCanonical(root [32]byte) {
	canonical := make(map[[32]byte]bool)
	index, ok := s.nodesIndices[root]
	for ok {
		n := s.nodes[index]
		canonical[n.root] = true
		if n.parent == NonExistentNode {
			break
		}
		index = n.parent
		if index >= uint64(len(s.nodes)) {
			break
		}
	}
	s.canonicalNodes = canonical
}

// isCanonical reports whether root was on the chain ending at the last
// computed head.
func (s *Store) isCanonical(root [32]byte) bool {
	return s.canonicalNodes[root]
}

// prune drops every node strictly before the finalized root once the
// finalized index reaches pruneThreshold.
func (s *Store) prune(ctx context.Context) error {
	finalizedIndex, ok := s.nodesIndices[s.finalizedCheckpoint.Root]
	if !ok {
		return errUnknownJustifiedRoot
	}
	if finalizedIndex < s.pruneThreshold {
		return nil
	}

	canonical := make(map[uint64]bool, len(s.nodes)-int(finalizedIndex))
	newNodes := make([]*Node, 0, len(s.nodes)-int(finalizedIndex))
	for i := finalizedIndex; i < uint64(len(s.nodes)); i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		newNodes = append(newNodes, s.nodes[i])
		canonical[i] = true
	}

	newIndices := make(map[[32]byte]uint64, len(newNodes))
	for i, n := range newNodes {
		if n.parent != NonExistentNode {
			if n.parent < finalizedIndex {
				n.parent = NonExistentNode
			} else {
				n.parent -= finalizedIndex
			}
		}
		if n.bestChild != NonExistentNode && n.bestChild >= finalizedIndex {
			n.bestChild -= finalizedIndex
		}
		if n.bestDescendant != NonExistentNode && n.bestDescendant >= finalizedIndex {
			n.bestDescendant -= finalizedIndex
		}
		newIndices[n.root] = uint64(i)
	}

	newPayloadIndices := make(map[[32]byte]uint64, len(newIndices))
	for h, idx := range s.payloadIndices {
		if idx >= finalizedIndex {
			newPayloadIndices[h] = idx - finalizedIndex
		}
	}

	newCanonicalNodes := make(map[[32]byte]bool)
	for root := range s.canonicalNodes {
		if _, ok := newIndices[root]; ok {
			newCanonicalNodes[root] = true
		}
	}

	s.nodes = newNodes
	s.nodesIndices = newIndices
	s.payloadIndices = newPayloadIndices
	s.canonicalNodes = newCanonicalNodes
	return nil
}

// commonAncestor walks both roots' ancestor chains to their first shared
// node.
func (s *Store) commonAncestor(ctx context.Context, root1, root2 [32]byte) ([32]byte, primitives.Slot, error) {
	idx1, ok := s.nodesIndices[root1]
	if !ok {
		return [32]byte{}, 0, errUnknownNodeRoot
	}
	idx2, ok := s.nodesIndices[root2]
	if !ok {
		return [32]byte{}, 0, errUnknownNodeRoot
	}

	visited := make(map[uint64]bool)
	for idx1 != NonExistentNode {
		if ctx.Err() != nil {
			return [32]byte{}, 0, ctx.Err()
		}
		visited[idx1] = true
		idx1 = s.nodes[idx1].parent
	}
	for idx2 != NonExistentNode {
		if ctx.Err() != nil {
			return [32]byte{}, 0, ctx.Err()
		}
		if visited[idx2] {
			n := s.nodes[idx2]
			return n.root, n.slot, nil
		}
		idx2 = s.nodes[idx2].parent
	}
	return [32]byte{}, 0, errUnknownCommonAncestor
}

// payloadStatus returns the execution status recorded for root, and
// whether root is known at all.
func (s *Store) payloadStatus(root [32]byte) (executionStatus, bool) {
	index, ok := s.nodesIndices[root]
	if !ok {
		return statusValid, false
	}
	return s.nodes[index].status, true
}

// setNodeAndParentValidated marks root, and every ancestor still marked
// syncing, as valid, resolving optimistic status retroactively up the
// chain it covers.
func (s *Store) setNodeAndParentValidated(ctx context.Context, root [32]byte) error {
	index, ok := s.nodesIndices[root]
	if !ok {
		return errUnknownNodeRoot
	}
	for index != NonExistentNode {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n := s.nodes[index]
		if n.status != statusSyncing {
			break
		}
		n.status = statusValid
		index = n.parent
	}
	return nil
}
