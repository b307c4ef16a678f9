// Package blockchain implements the Pipeline Orchestrator: it drives a
// block from "BlockInput complete" through state-transition, fork-choice
// insertion, head update, and persistence, coordinating with the
// Archive/Prune Coordinator on finality.
package blockchain

import (
	"context"

	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// State is the beacon state the orchestrator threads through
// state-transition and fork-choice. Its internal shape is entirely owned
// by the StateTransition implementation; the orchestrator never inspects
// it beyond passing it back in on the next block.
type State interface{}

// TransitionOpts controls which of state-transition's expensive checks
// run for a given apply call.
type TransitionOpts struct {
	VerifySignatures bool
	VerifyStateRoot  bool
}

// TransitionResult is everything state-transition hands back to the
// orchestrator for fork-choice insertion. ExecutionStatus and
// PayloadBlockHash come from the state transition's own call into the
// execution engine's newPayload (post-Bellatrix forks only; pre-merge
// forks return ExecutionStatusValid and the zero hash).
type TransitionResult struct {
	State            State
	ExecutionStatus  forkchoice.ExecutionStatus
	PayloadBlockHash [32]byte

	// JustifiedEpoch/FinalizedEpoch are the post-state's updated Casper
	// FFG checkpoints, carried into fork choice's InsertNode so a
	// supermajority-link block can advance justification/finalization
	// the moment it is processed.
	JustifiedEpoch primitives.Epoch
	FinalizedEpoch primitives.Epoch
}

// StateTransition is the external collaborator that computes
// apply(state, block) -> state. Its implementation (SSZ decoding, BLS,
// the full state-machine, and the newPayload call into the execution
// engine) lives outside this core.
type StateTransition interface {
	Apply(ctx context.Context, preState State, block blocks.SignedBeaconBlock, opts TransitionOpts) (TransitionResult, error)
}
