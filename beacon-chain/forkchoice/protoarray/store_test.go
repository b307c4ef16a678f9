package protoarray

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	forkchoicetypes "github.com/orovalt/sentrybeacon/beacon-chain/forkchoice/types"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

func indexToHash(i uint64) [32]byte {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:8], i)
	return b
}

func TestStore_PruneThreshold(t *testing.T) {
	s := &Store{pruneThreshold: defaultPruneThreshold}
	require.Equal(t, uint64(defaultPruneThreshold), s.PruneThreshold())
}

func TestStore_Head_UnknownJustifiedRoot(t *testing.T) {
	s := &Store{nodesIndices: make(map[[32]byte]uint64), justifiedCheckpoint: &forkchoicetypes.Checkpoint{Root: [32]byte{'a'}}, finalizedCheckpoint: &forkchoicetypes.Checkpoint{}}
	_, err := s.head(context.Background())
	require.ErrorIs(t, err, errUnknownJustifiedRoot)
}

func TestStore_Head_Itself(t *testing.T) {
	r := [32]byte{'A'}
	indices := map[[32]byte]uint64{r: 0}
	s := &Store{
		nodesIndices:        indices,
		nodes:               []*Node{{root: r, parent: NonExistentNode, bestDescendant: NonExistentNode}},
		canonicalNodes:      make(map[[32]byte]bool),
		justifiedCheckpoint: &forkchoicetypes.Checkpoint{Root: r},
		finalizedCheckpoint: &forkchoicetypes.Checkpoint{},
	}
	h, err := s.head(context.Background())
	require.NoError(t, err)
	require.Equal(t, r, h)
}

func TestStore_Head_BestDescendant(t *testing.T) {
	r := [32]byte{'A'}
	best := [32]byte{'B'}
	indices := map[[32]byte]uint64{r: 0, best: 1}
	s := &Store{
		nodesIndices: indices,
		nodes: []*Node{
			{root: r, bestDescendant: 1, parent: NonExistentNode},
			{root: best, parent: 0, bestDescendant: NonExistentNode},
		},
		canonicalNodes:      make(map[[32]byte]bool),
		justifiedCheckpoint: &forkchoicetypes.Checkpoint{Root: r},
		finalizedCheckpoint: &forkchoicetypes.Checkpoint{},
	}
	h, err := s.head(context.Background())
	require.NoError(t, err)
	require.Equal(t, best, h)
}

func TestStore_Insert_UnknownParent(t *testing.T) {
	s := newStore()
	_, err := s.insert(context.Background(), 100, [32]byte{'A'}, [32]byte{'B'}, [32]byte{}, 1, 1, statusValid)
	require.NoError(t, err)
	require.Equal(t, 1, len(s.nodes))
	require.Equal(t, 1, len(s.nodesIndices))
	require.Equal(t, NonExistentNode, s.nodes[0].parent)
	require.Equal(t, [32]byte{'A'}, s.nodes[0].root)
}

func TestStore_Insert_KnownParent(t *testing.T) {
	s := newStore()
	s.nodes = []*Node{{parent: NonExistentNode, bestChild: NonExistentNode, bestDescendant: NonExistentNode}}
	p := [32]byte{'B'}
	s.nodesIndices[p] = 0
	payloadHash := [32]byte{'c'}
	_, err := s.insert(context.Background(), 100, [32]byte{'A'}, p, payloadHash, 1, 1, statusValid)
	require.NoError(t, err)
	require.Equal(t, 2, len(s.nodes))
	require.Equal(t, uint64(0), s.nodes[1].parent)
	require.Equal(t, payloadHash, s.nodes[1].payloadHash)
}

func TestStore_Insert_Idempotent(t *testing.T) {
	s := newStore()
	root := [32]byte{'A'}
	idx1, err := s.insert(context.Background(), 1, root, [32]byte{}, [32]byte{}, 0, 0, statusValid)
	require.NoError(t, err)
	idx2, err := s.insert(context.Background(), 1, root, [32]byte{}, [32]byte{}, 0, 0, statusValid)
	require.NoError(t, err)
	require.Equal(t, idx1, idx2)
	require.Equal(t, 1, len(s.nodes))
}

func TestStore_ApplyWeightChanges_InvalidDeltaLength(t *testing.T) {
	s := &Store{}
	err := s.applyWeightChanges(context.Background(), []int{1})
	require.ErrorIs(t, err, errInvalidDeltaLength)
}

func TestStore_ApplyWeightChanges_Propagates(t *testing.T) {
	s := &Store{nodes: []*Node{
		{root: [32]byte{'A'}, weight: 100, parent: NonExistentNode},
		{root: [32]byte{'B'}, weight: 100, parent: 0},
		{root: [32]byte{'C'}, weight: 100, parent: 1},
	}}
	require.NoError(t, s.applyWeightChanges(context.Background(), []int{1, 1, 1}))
	require.Equal(t, uint64(103), s.nodes[0].weight)
	require.Equal(t, uint64(102), s.nodes[1].weight)
	require.Equal(t, uint64(101), s.nodes[2].weight)
}

func TestStore_UpdateBestChildAndDescendant_RemoveChild(t *testing.T) {
	s := &Store{
		nodes:               []*Node{{bestChild: 1, bestDescendant: NonExistentNode}, {bestDescendant: NonExistentNode}},
		justifiedCheckpoint: &forkchoicetypes.Checkpoint{Epoch: 1},
		finalizedCheckpoint: &forkchoicetypes.Checkpoint{Epoch: 1},
	}
	require.NoError(t, s.updateBestChildAndDescendant(0, 1))
	require.Equal(t, NonExistentNode, s.nodes[0].bestChild)
	require.Equal(t, NonExistentNode, s.nodes[0].bestDescendant)
}

func TestStore_UpdateBestChildAndDescendant_ChangeByWeight(t *testing.T) {
	s := &Store{
		justifiedCheckpoint: &forkchoicetypes.Checkpoint{Epoch: 1},
		finalizedCheckpoint: &forkchoicetypes.Checkpoint{Epoch: 1},
		nodes: []*Node{
			{bestChild: 1, justifiedEpoch: 1, finalizedEpoch: 1},
			{bestDescendant: NonExistentNode, justifiedEpoch: 1, finalizedEpoch: 1, weight: 1},
			{bestDescendant: NonExistentNode, justifiedEpoch: 1, finalizedEpoch: 1, weight: 2},
		},
	}
	require.NoError(t, s.updateBestChildAndDescendant(0, 2))
	require.Equal(t, uint64(2), s.nodes[0].bestChild)
	require.Equal(t, uint64(2), s.nodes[0].bestDescendant)
}

func TestStore_Prune_LessThanThreshold(t *testing.T) {
	numOfNodes := 100
	indices := make(map[[32]byte]uint64)
	nodes := make([]*Node, 0)
	for i := 0; i < numOfNodes; i++ {
		indices[indexToHash(uint64(i))] = uint64(i)
		parent := NonExistentNode
		if i > 0 {
			parent = uint64(i - 1)
		}
		nodes = append(nodes, &Node{
			slot:           primitives.Slot(i),
			root:           indexToHash(uint64(i)),
			bestDescendant: NonExistentNode,
			bestChild:      NonExistentNode,
			parent:         parent,
		})
	}
	s := &Store{nodes: nodes, nodesIndices: indices, pruneThreshold: 100, canonicalNodes: make(map[[32]byte]bool), payloadIndices: make(map[[32]byte]uint64)}
	s.finalizedCheckpoint = &forkchoicetypes.Checkpoint{Epoch: 3, Root: indexToHash(99)}
	require.NoError(t, s.prune(context.Background()))
	require.Equal(t, 100, len(s.nodes))
}

func TestStore_Prune_MoreThanThreshold(t *testing.T) {
	numOfNodes := 100
	indices := make(map[[32]byte]uint64)
	nodes := make([]*Node, 0)
	for i := 0; i < numOfNodes; i++ {
		indices[indexToHash(uint64(i))] = uint64(i)
		parent := NonExistentNode
		if i > 0 {
			parent = uint64(i - 1)
		}
		nodes = append(nodes, &Node{
			slot:           primitives.Slot(i),
			root:           indexToHash(uint64(i)),
			bestDescendant: NonExistentNode,
			bestChild:      NonExistentNode,
			parent:         parent,
		})
	}
	s := &Store{nodes: nodes, nodesIndices: indices, canonicalNodes: make(map[[32]byte]bool), payloadIndices: make(map[[32]byte]uint64)}
	s.finalizedCheckpoint = &forkchoicetypes.Checkpoint{Epoch: 3, Root: indexToHash(99)}
	require.NoError(t, s.prune(context.Background()))
	require.Equal(t, 1, len(s.nodes))
	require.Equal(t, 1, len(s.nodesIndices))
}

func TestStore_CommonAncestor(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	_, err := s.insert(ctx, 1, indexToHash(1), [32]byte{}, [32]byte{}, 0, 0, statusValid)
	require.NoError(t, err)
	_, err = s.insert(ctx, 2, indexToHash(2), indexToHash(1), [32]byte{}, 0, 0, statusValid)
	require.NoError(t, err)
	_, err = s.insert(ctx, 3, indexToHash(3), indexToHash(1), [32]byte{}, 0, 0, statusValid)
	require.NoError(t, err)

	root, slot, err := s.commonAncestor(ctx, indexToHash(2), indexToHash(3))
	require.NoError(t, err)
	require.Equal(t, indexToHash(1), root)
	require.Equal(t, uint64(1), uint64(slot))
}
