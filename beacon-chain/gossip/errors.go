package gossip

import (
	"fmt"

	"github.com/orovalt/sentrybeacon/beacon-chain/p2p"
)

// RejectionError names why a message was rejected and which peer sent
// it, so the caller can apply peer scoring without re-deriving the
// reason from a generic error string.
type RejectionError struct {
	PeerID p2p.PeerID
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("gossip message from %s rejected: %s", e.PeerID, e.Reason)
}

func reject(peerID p2p.PeerID, reason string) (Result, error) {
	return ResultReject, &RejectionError{PeerID: peerID, Reason: reason}
}
