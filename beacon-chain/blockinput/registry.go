package blockinput

import (
	"sync"

	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// BlockInputRegistry owns the arena of live BlockInputs, keyed by
// blockRootHex, and breaks the block/sidecar/input reference cycle: blocks
// and sidecars never point at each other directly, they are looked up
// through the registry by root.
type BlockInputRegistry struct {
	mu     sync.Mutex
	byRoot map[string]*BlockInput
}

// NewBlockInputRegistry returns an empty registry.
func NewBlockInputRegistry() *BlockInputRegistry {
	return &BlockInputRegistry{
		byRoot: make(map[string]*BlockInput),
	}
}

// Get returns the BlockInput for root, if one exists.
func (r *BlockInputRegistry) Get(blockRootHex string) (*BlockInput, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bi, ok := r.byRoot[blockRootHex]
	return bi, ok
}

// GetOrCreate returns the existing BlockInput for meta.BlockRootHex, or
// creates one. A second creation attempt with header metadata that
// disagrees with the first (slot, parent, fork) is rejected rather than
// silently accepted, since that can only mean a peer equivocated on
// header fields for an already-known root: at most one BlockInput exists
// per blockRoot.
func (r *BlockInputRegistry) GetOrCreate(meta Meta) (*BlockInput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bi, ok := r.byRoot[meta.BlockRootHex]; ok {
		if err := checkMetaAgrees(bi, meta); err != nil {
			return nil, err
		}
		return bi, nil
	}

	bi := Create(meta)
	r.byRoot[meta.BlockRootHex] = bi
	return bi, nil
}

func checkMetaAgrees(bi *BlockInput, meta Meta) error {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	if bi.slot != meta.Slot || bi.parentRootHex != meta.ParentRootHex || bi.forkName != meta.ForkName {
		return newError(CodeInvalidConstruction,
			"conflicting header metadata for root %s: have (slot=%s parent=%s fork=%s), got (slot=%s parent=%s fork=%s)",
			meta.BlockRootHex, bi.slot, bi.parentRootHex, bi.forkName, meta.Slot, meta.ParentRootHex, meta.ForkName)
	}
	return nil
}

// AddBlock routes a block part through GetOrCreate into the target input.
func (r *BlockInputRegistry) AddBlock(meta Meta, part BlockPart, opts AddBlockOpts) error {
	bi, err := r.GetOrCreate(meta)
	if err != nil {
		return err
	}
	return bi.AddBlock(part, opts)
}

// AddBlob routes a blob part through GetOrCreate into the target input.
func (r *BlockInputRegistry) AddBlob(meta Meta, part BlobPart) error {
	bi, err := r.GetOrCreate(meta)
	if err != nil {
		return err
	}
	return bi.AddBlob(part)
}

// AddColumn routes a column part through GetOrCreate into the target input.
func (r *BlockInputRegistry) AddColumn(meta Meta, part ColumnPart) error {
	bi, err := r.GetOrCreate(meta)
	if err != nil {
		return err
	}
	return bi.AddColumn(part)
}

// PruneFinalized evicts and removes every BlockInput at or below
// finalizedSlot, waking any blocked WaitFor* callers with
// ErrWaitCancelled, and returns the number pruned.
func (r *BlockInputRegistry) PruneFinalized(finalizedSlot primitives.Slot) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for root, bi := range r.byRoot {
		if bi.Slot() <= finalizedSlot {
			bi.evict()
			delete(r.byRoot, root)
			pruned++
		}
	}
	return pruned
}

// Len reports the number of live BlockInputs, for metrics/tests.
func (r *BlockInputRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byRoot)
}
