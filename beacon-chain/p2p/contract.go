// Package p2p declares the transport-facing contract the rest of the
// beacon chain depends on: peer identity, message broadcast, req/resp
// sending, and gossip subscription. It does not dial anything itself —
// an actual libp2p host/pubsub wiring is a separate concern from this
// contract and is not implemented here.
package p2p

import (
	"context"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/peer"
)

// PeerID identifies a connected peer. It is an alias over libp2p's own
// peer.ID rather than a re-declared type, so callers can pass it
// directly into pubsub/host APIs without a conversion at the boundary.
type PeerID = peer.ID

// Broadcaster publishes an already-encoded gossip message on topic to
// every subscribed peer on the mesh.
type Broadcaster interface {
	Broadcast(ctx context.Context, topic string, data []byte) error
}

// SenderEncoder sends a req/resp request to a specific peer over a
// protocol stream and decodes its response into resp, pulling data from
// a specific peer rather than the whole mesh. No package in this module
// implements or calls it; the BlocksByRange handler reads the local db.
type SenderEncoder interface {
	SendRequest(ctx context.Context, pid PeerID, protocol string, req interface{}, resp interface{}) error
}

// GossipSubscriber subscribes to a gossip topic, invoking handler for
// every message received on it until the returned cancel func is
// called. handler returns a pubsub ValidationResult directly, the value
// a subscription's ValidatorEx reports; a gossip.Result converts to one
// through ToValidationResult.
type GossipSubscriber interface {
	SubscribeToTopic(topic string, handler func(ctx context.Context, from PeerID, data []byte) (pubsub.ValidationResult, error)) (cancel func(), err error)
}
