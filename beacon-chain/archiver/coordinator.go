// Package archiver implements the Archive/Prune Coordinator: on every new
// finalized checkpoint it copies the finalized block into cold storage
// per a configurable strategy, and on every slot advance it prunes every
// seen-cache, the block-input registry, and the hot block store down to
// the archive horizon.
package archiver

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/orovalt/sentrybeacon/beacon-chain/blockinput"
	"github.com/orovalt/sentrybeacon/beacon-chain/cache/seen"
	"github.com/orovalt/sentrybeacon/beacon-chain/db"
	"github.com/orovalt/sentrybeacon/config/params"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
	"github.com/orovalt/sentrybeacon/time/slots"
)

var log = logrus.WithField("prefix", "archiver")

// Coordinator owns the cold-storage archive decision and the hot-state
// prune sweep; the pipeline orchestrator calls it on finalization and on
// every slot advance.
type Coordinator struct {
	db       db.Database
	registry *blockinput.BlockInputRegistry
	caches   *seen.Caches
	strategy Strategy
}

// NewCoordinator wires a Coordinator over the given store, registry, and
// seen-cache bundle, archiving by strategy.
func NewCoordinator(store db.Database, registry *blockinput.BlockInputRegistry, caches *seen.Caches, strategy Strategy) *Coordinator {
	return &Coordinator{db: store, registry: registry, caches: caches, strategy: strategy}
}

// shouldArchive reports whether epoch should be archived under the
// coordinator's configured strategy.
func (c *Coordinator) shouldArchive(epoch primitives.Epoch) (bool, error) {
	switch c.strategy {
	case StrategyFrequency:
		freq := params.BeaconConfig().ArchiveStateEpochFrequency
		if freq == 0 {
			return false, nil
		}
		return uint64(epoch)%uint64(freq) == 0, nil
	case StrategyDifferential:
		return false, ErrDifferentialUnimplemented
	default:
		return false, errors.Errorf("unknown archive strategy %d", c.strategy)
	}
}

// OnFinalizedCheckpoint archives the finalized block if the configured
// strategy selects this epoch. Block bodies and checkpoints are the only
// archived state: state-transition output has no on-disk representation
// in this node, so there is no separate beacon state to archive.
func (c *Coordinator) OnFinalizedCheckpoint(ctx context.Context, finalizedEpoch primitives.Epoch, finalizedRoot [32]byte) error {
	archive, err := c.shouldArchive(finalizedEpoch)
	if err != nil {
		return err
	}
	if !archive {
		return nil
	}
	b, err := c.db.Block(ctx, finalizedRoot)
	if err != nil {
		return errors.Wrap(err, "failed to load finalized block for archival")
	}
	if err := c.db.ArchiveBlock(ctx, finalizedEpoch, b); err != nil {
		return errors.Wrap(err, "failed to archive finalized block")
	}
	log.WithField("epoch", finalizedEpoch).WithField("root", finalizedRoot).Info("archived finalized block")
	return nil
}

// blockCutoffSlot is the slot below which full blocks are no longer
// retained: the start of whichever is earlier, the finalized epoch or
// MinEpochsForBlockRequests epochs behind the current one.
func blockCutoffSlot(finalizedEpoch, currentEpoch primitives.Epoch) primitives.Slot {
	horizonEpoch := currentEpoch.SubEpoch(params.BeaconConfig().MinEpochsForBlockRequests)
	cutoffEpoch := finalizedEpoch
	if horizonEpoch < cutoffEpoch {
		cutoffEpoch = horizonEpoch
	}
	return slots.UnsafeEpochStart(cutoffEpoch)
}

// PruneHistory batch-deletes every hot-store block below the archive
// horizon and returns the number removed.
func (c *Coordinator) PruneHistory(ctx context.Context, finalizedEpoch, currentEpoch primitives.Epoch) (int, error) {
	cutoff := blockCutoffSlot(finalizedEpoch, currentEpoch)
	deleted, err := c.db.DeleteBlocksBelowSlot(ctx, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prune blocks below horizon")
	}
	if deleted > 0 {
		log.WithField("count", deleted).WithField("cutoffSlot", cutoff).Debug("pruned history")
	}
	return deleted, nil
}

// OnSlotAdvance prunes every seen cache, the block-input registry, and
// the hot block store down to the current horizon. finalizedSlot and
// finalizedEpoch must describe the same checkpoint.
func (c *Coordinator) OnSlotAdvance(ctx context.Context, currentSlot primitives.Slot, finalizedSlot primitives.Slot, finalizedEpoch primitives.Epoch) error {
	currentEpoch := slots.ToEpoch(currentSlot)

	c.caches.PruneAll(currentSlot, currentEpoch, finalizedSlot)

	pruned := c.registry.PruneFinalized(finalizedSlot)
	if pruned > 0 {
		log.WithField("count", pruned).Debug("pruned finalized block inputs")
	}

	_, err := c.PruneHistory(ctx, finalizedEpoch, currentEpoch)
	return err
}
