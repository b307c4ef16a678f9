package node

import (
	"github.com/orovalt/sentrybeacon/beacon-chain/blockchain"
	"github.com/orovalt/sentrybeacon/beacon-chain/das"
	"github.com/orovalt/sentrybeacon/beacon-chain/gossip"
)

// Option customizes a BeaconNode at construction time. The zero-value
// node runs the full persistence/fork-choice/orchestrator pipeline with
// gossip admission left unwired, since BLS/KZG verification is an
// external collaborator this module does not implement; callers that
// have a real SignatureVerifier/BlobVerifier wire gossip admission in
// via these options.
type Option func(*BeaconNode) error

// WithSignatureVerifier enables the beacon_block gossip validator, using
// verifier for the crypto step of its five-step admission pipeline.
func WithSignatureVerifier(verifier gossip.SignatureVerifier) Option {
	return func(n *BeaconNode) error {
		n.sigVerifier = verifier
		return nil
	}
}

// WithBlobVerifier enables the blob_sidecar gossip validator.
func WithBlobVerifier(verifier gossip.BlobVerifier) Option {
	return func(n *BeaconNode) error {
		n.blobVerifier = verifier
		return nil
	}
}

// WithBlobBatchVerifier builds the DA validator that Availability
// exposes. The node's own pipeline does not call IsDataAvailable, with or
// without it; ReceiveBlockInput waits on WaitForBlockAndAllData instead.
func WithBlobBatchVerifier(verifier das.BlobBatchVerifier) Option {
	return func(n *BeaconNode) error {
		n.blobBatchVerifier = verifier
		return nil
	}
}

// WithStateTransition supplies the apply(state, block) implementation
// the pipeline orchestrator runs every block through. It is required:
// New returns an error if no transition has been supplied by the time
// construction finishes, since this module does not ship one itself
// (state-transition is an external collaborator).
func WithStateTransition(transition blockchain.StateTransition) Option {
	return func(n *BeaconNode) error {
		n.transition = transition
		return nil
	}
}
