// Package forkchoice declares the ForkChoicer contract consumed by the
// pipeline orchestrator; beacon-chain/forkchoice/protoarray provides the
// concrete implementation.
package forkchoice

import (
	"context"

	forkchoicetypes "github.com/orovalt/sentrybeacon/beacon-chain/forkchoice/types"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// ExecutionStatus tags a node's execution-payload validity as reported by
// the execution engine's newPayload result.
type ExecutionStatus int

const (
	ExecutionStatusValid ExecutionStatus = iota
	ExecutionStatusInvalid
	ExecutionStatusSyncing
)

// UpdateHeadReason tags why UpdateHead was called, for callers' own
// logging; the metrics carry no reason label and the recomputation
// itself is identical regardless of cause.
type UpdateHeadReason string

const (
	UpdateHeadNewBlock      UpdateHeadReason = "new_block"
	UpdateHeadNewAttestation UpdateHeadReason = "new_attestation"
	UpdateHeadNewSlot        UpdateHeadReason = "new_slot"
)

// BlockAndCheckpoints is the argument to InsertNode: everything the engine
// needs to append one proto-block.
type BlockAndCheckpoints struct {
	Slot            primitives.Slot
	Root            [32]byte
	Parent          [32]byte
	PayloadHash     [32]byte
	JustifiedEpoch  primitives.Epoch
	FinalizedEpoch  primitives.Epoch
	ExecutionStatus ExecutionStatus
}

// ForkChoicer is the full fork-choice surface the Pipeline Orchestrator
// and ReqResp handlers depend on.
type ForkChoicer interface {
	// InsertGenesis seeds the store with root as both the justified and
	// finalized checkpoint at epoch 0. It must be called exactly once,
	// before any InsertNode call: ordinary insertion only ever advances a
	// checkpoint to a strictly higher epoch, so genesis (epoch 0) could
	// never otherwise become the justified/finalized root.
	InsertGenesis(ctx context.Context, root [32]byte, slot primitives.Slot) error
	InsertNode(ctx context.Context, b BlockAndCheckpoints) error
	// OnAttestation records validatorIndex's vote for targetRoot at
	// targetEpoch, to be applied to node weights on the next
	// UpdateBalances call.
	OnAttestation(validatorIndex uint64, targetRoot [32]byte, targetEpoch primitives.Epoch)
	UpdateBalances(newBalances []uint64) error
	Head(ctx context.Context) ([32]byte, error)
	// UpdateHead recomputes the head and reports it alongside a reorg
	// metric when the new head's ancestry diverges from the previous one.
	UpdateHead(ctx context.Context, reason UpdateHeadReason) ([32]byte, error)
	JustifiedCheckpoint() *forkchoicetypes.Checkpoint
	FinalizedCheckpoint() *forkchoicetypes.Checkpoint
	SafeBeaconBlockRoot(ctx context.Context) ([32]byte, error)
	SafeExecutionBlockHash(ctx context.Context) ([32]byte, error)
	HasNode(root [32]byte) bool
	IsOptimistic(root [32]byte) (bool, error)
	SetOptimisticToValid(ctx context.Context, root [32]byte) error
	Prune(ctx context.Context) error
	CommonAncestor(ctx context.Context, root1, root2 [32]byte) ([32]byte, primitives.Slot, error)
}
