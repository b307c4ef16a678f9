package blockchain

import (
	"context"

	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
	"github.com/orovalt/sentrybeacon/time/slots"
)

// OnNewSlot runs the per-slot maintenance sweep: it recomputes the fork
// choice head (in case attestations arrived without a new block), then
// delegates seen-cache/registry/history pruning to the archiver
// coordinator and drops any state-cache entries the same finalized
// horizon has made unreachable.
func (s *Service) OnNewSlot(ctx context.Context, currentSlot primitives.Slot) error {
	if _, err := s.forkChoice.UpdateHead(ctx, forkchoice.UpdateHeadNewSlot); err != nil {
		forkChoiceErrorsTotal.Inc()
		log.WithError(err).Warn("fork choice head update failed on slot advance")
	}

	fc := s.forkChoice.FinalizedCheckpoint()
	var finalizedSlot primitives.Slot
	var finalizedEpoch primitives.Epoch
	if fc != nil {
		finalizedEpoch = fc.Epoch
		finalizedSlot = slots.UnsafeEpochStart(fc.Epoch)
	}

	if s.archiver != nil {
		if err := s.archiver.OnSlotAdvance(ctx, currentSlot, finalizedSlot, finalizedEpoch); err != nil {
			return err
		}
	}

	if pruned := s.pruneStatesBelow(finalizedSlot); pruned > 0 {
		log.WithField("count", pruned).Debug("pruned finalized block states")
	}
	return nil
}
