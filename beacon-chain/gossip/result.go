// Package gossip implements the topic-agnostic admission pipeline every
// gossip validator runs: structural checks, identity dedup against the
// appropriate seen cache, cryptographic verification, then insertion and
// forwarding. Each step can end the pipeline early with an ACCEPT,
// IGNORE, or REJECT outcome.
package gossip

import pubsub "github.com/libp2p/go-libp2p-pubsub"

// Result is the outcome of validating one gossip message.
type Result int

const (
	// ResultAccept means the message is well-formed, novel, and
	// cryptographically valid; it should be forwarded to the mesh and
	// handed to its consumer (BlockInputRegistry, op-pool, ...).
	ResultAccept Result = iota
	// ResultIgnore means the message is well-formed but redundant (a
	// duplicate already seen); it is dropped without penalizing the peer.
	ResultIgnore
	// ResultReject means the message is malformed or fails verification;
	// the sending peer is scored down.
	ResultReject
)

func (r Result) String() string {
	switch r {
	case ResultAccept:
		return "ACCEPT"
	case ResultIgnore:
		return "IGNORE"
	case ResultReject:
		return "REJECT"
	default:
		return "UNKNOWN"
	}
}

// ToValidationResult maps a Result onto go-libp2p-pubsub's validator
// return type, the seam where this pipeline plugs into an actual
// subscription's ValidatorEx.
func (r Result) ToValidationResult() pubsub.ValidationResult {
	switch r {
	case ResultAccept:
		return pubsub.ValidationAccept
	case ResultIgnore:
		return pubsub.ValidationIgnore
	default:
		return pubsub.ValidationReject
	}
}
