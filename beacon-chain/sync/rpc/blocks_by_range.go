package rpc

import (
	"context"

	"github.com/pkg/errors"

	"github.com/orovalt/sentrybeacon/beacon-chain/db"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// Chunk is one fork-digest-framed response item: the block plus the
// fork boundary its encoding must honor.
type Chunk struct {
	Block        blocks.ROBlock
	ForkBoundary blocks.ForkName
}

// BlocksByRangeRequest is the BlocksByRange req/resp request body.
type BlocksByRangeRequest struct {
	StartSlot primitives.Slot
	Count     uint64
}

// BlocksByRangeHandler serves BlocksByRange requests by streaming chunks
// from the hot block store, one at a time, so a large response can't
// starve other peers' requests.
type BlocksByRangeHandler struct {
	store db.Database
}

// NewBlocksByRangeHandler builds a handler reading from store.
func NewBlocksByRangeHandler(store db.Database) *BlocksByRangeHandler {
	return &BlocksByRangeHandler{store: store}
}

// Handle streams req's matching blocks onto out, yielding after each
// chunk so the caller's event loop can service other requests between
// sends. Returns when the range is exhausted, ctx is done, or an error
// occurs; out is always closed before returning.
func (h *BlocksByRangeHandler) Handle(ctx context.Context, req BlocksByRangeRequest, out chan<- Chunk) error {
	defer close(out)

	if req.Count == 0 {
		return nil
	}
	end := req.StartSlot + primitives.Slot(req.Count)
	blks, err := h.store.BlocksBySlotRange(ctx, req.StartSlot, end)
	if err != nil {
		return errors.Wrap(err, "failed to read block range")
	}

	for _, b := range blks {
		// Each chunk is framed at the block's own fork. Deriving this from
		// epoch via a slot->fork schedule is unnecessary here since every
		// stored block already carries its real fork.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- Chunk{Block: b, ForkBoundary: b.Block().Fork()}:
		}
	}
	return nil
}
