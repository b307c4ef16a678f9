package blockchain

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice"
	forkchoicetypes "github.com/orovalt/sentrybeacon/beacon-chain/forkchoice/types"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/time/slots"
)

// ReceiveBlockInput is the orchestrator's entrypoint: callers (the
// gossip validator, req/resp handlers, or engine-recovery) call it after
// forwarding a block or sidecar into the BlockInputRegistry, naming the
// root they just touched. It blocks until that root's BlockInput reaches
// Complete (or the registry evicts it, or timeout elapses), then runs
// the block through state-transition, fork choice, and persistence.
//
// Multiple callers racing to complete the same root is expected and
// harmless: the second to finish AddBlock/AddBlob/AddColumn for an
// already-complete input finds WaitForBlockAndAllData already resolved
// and proceeds immediately; ReceiveBlock below is idempotent against
// the block already being inserted in fork choice.
func (s *Service) ReceiveBlockInput(ctx context.Context, blockRootHex string, timeout time.Duration) error {
	bi, ok := s.registry.Get(blockRootHex)
	if !ok {
		return errors.Errorf("no block input registered for root %s", blockRootHex)
	}

	roblock, err := bi.WaitForBlockAndAllData(ctx, timeout)
	if err != nil {
		pipelineErrorsTotal.WithLabelValues("wait_for_data").Inc()
		return errors.Wrapf(err, "waiting for block input %s", blockRootHex)
	}

	return s.ReceiveBlock(ctx, roblock)
}

// ReceiveBlock runs a complete block through the pipeline: state
// transition, fork-choice insertion, head update, and persistence. It is
// safe to call more than once for the same root; InsertNode and
// SaveBlock are both idempotent on an already-known root.
func (s *Service) ReceiveBlock(ctx context.Context, roblock blocks.ROBlock) error {
	root := roblock.Root()
	parentRoot := roblock.Block().ParentRoot()

	preState, ok := s.stateByRoot(parentRoot)
	if !ok {
		pipelineErrorsTotal.WithLabelValues("missing_parent_state").Inc()
		return errors.Errorf("no cached state for parent root of block %x", root)
	}

	result, err := s.transition.Apply(ctx, preState, roblock.SignedBeaconBlock, TransitionOpts{
		VerifySignatures: true,
		VerifyStateRoot:  true,
	})
	if err != nil {
		pipelineErrorsTotal.WithLabelValues("state_transition").Inc()
		return errors.Wrapf(err, "applying state transition for block %x", root)
	}

	if err := s.forkChoice.InsertNode(ctx, forkchoice.BlockAndCheckpoints{
		Slot:            roblock.Block().Slot(),
		Root:            root,
		Parent:          parentRoot,
		PayloadHash:     result.PayloadBlockHash,
		ExecutionStatus: result.ExecutionStatus,
		JustifiedEpoch:  result.JustifiedEpoch,
		FinalizedEpoch:  result.FinalizedEpoch,
	}); err != nil {
		forkChoiceErrorsTotal.Inc()
		return errors.Wrapf(err, "inserting block %x into fork choice", root)
	}

	s.saveState(root, roblock.Block().Slot(), result.State)

	if err := s.db.SaveBlock(ctx, roblock); err != nil {
		pipelineErrorsTotal.WithLabelValues("persist").Inc()
		return errors.Wrapf(err, "persisting block %x", root)
	}

	if _, err := s.forkChoice.UpdateHead(ctx, forkchoice.UpdateHeadNewBlock); err != nil {
		// Non-retriable but non-fatal: head stays at its previous value,
		// the error is counted, and the caller's next tick retries.
		forkChoiceErrorsTotal.Inc()
		log.WithError(err).WithField("root", root).Warn("fork choice head update failed")
	}

	if err := s.maybeAdvanceFinality(ctx); err != nil {
		log.WithError(err).Warn("finality bookkeeping failed")
	}

	blocksProcessedTotal.Inc()
	return nil
}

// maybeAdvanceFinality notifies the archiver whenever fork choice's
// finalized checkpoint has moved since the last call, so archival and
// the state cache's own prune only do work on a genuine finality event.
func (s *Service) maybeAdvanceFinality(ctx context.Context) error {
	fc := s.forkChoice.FinalizedCheckpoint()
	if fc == nil {
		return nil
	}
	s.finalizedMu.Lock()
	advanced := s.lastFinalized == nil || fc.Epoch > s.lastFinalized.Epoch
	if advanced {
		prev := s.lastFinalized
		cp := *fc
		s.lastFinalized = &cp
		s.finalizedMu.Unlock()
		if pruned := s.pruneStatesBelow(slots.UnsafeEpochStart(cp.Epoch)); pruned > 0 {
			log.WithField("count", pruned).Debug("pruned finalized block states")
		}
		return s.onFinalizedCheckpoint(ctx, prev, &cp)
	}
	s.finalizedMu.Unlock()
	return nil
}

func (s *Service) onFinalizedCheckpoint(ctx context.Context, prev, next *forkchoicetypes.Checkpoint) error {
	if s.archiver == nil {
		return nil
	}
	if err := s.archiver.OnFinalizedCheckpoint(ctx, next.Epoch, next.Root); err != nil {
		return err
	}
	log.WithField("epoch", next.Epoch).WithField("root", next.Root).Info("finality advanced")
	_ = prev
	return nil
}
