package main

import (
	"context"

	"github.com/orovalt/sentrybeacon/beacon-chain/blockchain"
	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice"
	"github.com/orovalt/sentrybeacon/beacon-chain/node"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
)

// passthroughStateTransition satisfies blockchain.StateTransition without
// doing any real state-machine work: it carries the pre-state through
// unchanged and reports every payload as already valid. State-transition
// (and the BLS/KZG verification it depends on) is an external
// collaborator this module does not implement; operators running this
// binary against a real network must build with their own
// blockchain.StateTransition wired in through node.WithStateTransition
// instead of this one.
type passthroughStateTransition struct{}

func (passthroughStateTransition) Apply(_ context.Context, preState blockchain.State, _ blocks.SignedBeaconBlock, _ blockchain.TransitionOpts) (blockchain.TransitionResult, error) {
	return blockchain.TransitionResult{
		State:           preState,
		ExecutionStatus: forkchoice.ExecutionStatusValid,
	}, nil
}

func stateTransitionOption() node.Option {
	return node.WithStateTransition(passthroughStateTransition{})
}
