package db

import (
	"context"

	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// Database is the persistence contract the archiver and pipeline
// orchestrator depend on. The kv package provides the concrete
// goleveldb-backed implementation; callers needing in-memory/test
// behavior should construct kv.NewKVStore against a temp directory
// rather than mocking this interface, testing against a real
// (ephemeral) store instead.
type Database interface {
	SaveBlock(ctx context.Context, b blocks.ROBlock) error
	Block(ctx context.Context, root [32]byte) (blocks.ROBlock, error)
	HasBlock(ctx context.Context, root [32]byte) bool
	DeleteBlocksBelowSlot(ctx context.Context, slot primitives.Slot) (int, error)

	// BlocksBySlotRange returns every stored block with start <= slot < end,
	// in ascending slot order, for req/resp range-sync handlers.
	BlocksBySlotRange(ctx context.Context, start, end primitives.Slot) ([]blocks.ROBlock, error)

	// ArchiveBlock copies b into the archive keyspace under epoch, for the
	// archive/prune coordinator's Frequency strategy. Archived blocks are
	// never subject to DeleteBlocksBelowSlot.
	ArchiveBlock(ctx context.Context, epoch primitives.Epoch, b blocks.ROBlock) error
	// ArchivedBlock returns the block archived under epoch, or db.ErrNotFound.
	ArchivedBlock(ctx context.Context, epoch primitives.Epoch) (blocks.ROBlock, error)

	SaveFinalizedCheckpoint(ctx context.Context, epoch primitives.Epoch, root [32]byte) error
	FinalizedCheckpoint(ctx context.Context) (primitives.Epoch, [32]byte, error)

	Close() error
}
