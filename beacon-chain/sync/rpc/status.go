package rpc

import "github.com/orovalt/sentrybeacon/consensus-types/primitives"

// StatusForkBoundary is the fixed fork boundary the Status req/resp
// message is always framed at, regardless of the node's actual current
// fork: the handshake predates any fork-specific encoding decision.
const StatusForkBoundary = "phase0"

// StatusMessage is the handshake peers exchange to agree on chain head
// before a range-sync request is made.
type StatusMessage struct {
	FinalizedRoot  [32]byte
	FinalizedEpoch primitives.Epoch
	HeadRoot       [32]byte
	HeadSlot       primitives.Slot
}

// AsTarget views a peer's status as a sync Target.
func (s StatusMessage) AsTarget() Target {
	return Target{Slot: s.HeadSlot, Root: s.HeadRoot}
}
