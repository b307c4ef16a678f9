package gossip

import (
	"context"
	"fmt"

	"github.com/orovalt/sentrybeacon/beacon-chain/blockinput"
	"github.com/orovalt/sentrybeacon/beacon-chain/cache/seen"
	"github.com/orovalt/sentrybeacon/beacon-chain/p2p"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/time/slots"
)

// BlobVerifier performs KZG verification of a single gossiped blob
// sidecar against its own commitment/proof (not the block body, which
// may not have arrived yet).
type BlobVerifier interface {
	VerifyBlobKZG(ctx context.Context, blob blocks.ROBlob) (bool, error)
}

// BlobValidator runs the admission pipeline for the blob_sidecar topic.
type BlobValidator struct {
	clock    *slots.Clock
	seen     *seen.SeenBlobSidecars
	verifier BlobVerifier
	registry *blockinput.BlockInputRegistry
}

// NewBlobValidator builds a BlobValidator wired to its collaborators.
func NewBlobValidator(clock *slots.Clock, seenBlobs *seen.SeenBlobSidecars, verifier BlobVerifier, registry *blockinput.BlockInputRegistry) *BlobValidator {
	return &BlobValidator{clock: clock, seen: seenBlobs, verifier: verifier, registry: registry}
}

// Validate runs the five-step admission pipeline against blob, received
// from peerID under blockRootHex/parentRootHex (the parent is needed to
// create the owning BlockInput if the block hasn't arrived yet).
func (v *BlobValidator) Validate(ctx context.Context, peerID p2p.PeerID, blockRootHex, parentRootHex string, blob blocks.ROBlob) (Result, error) {
	maxSlot := v.clock.SlotWithFutureTolerance(slots.GossipFutureTolerance())
	if blob.Slot > maxSlot {
		return reject(peerID, fmt.Sprintf("blob slot %d is beyond the gossip future tolerance", blob.Slot))
	}

	id := seen.BlobIdentity{Root: blob.BlockRoot, Index: blob.Index}
	if v.seen.IsKnown(blob.Slot, id) {
		return ResultIgnore, nil
	}

	ok, err := v.verifier.VerifyBlobKZG(ctx, blob)
	if err != nil {
		return reject(peerID, "KZG verification failed: "+err.Error())
	}
	if !ok {
		return reject(peerID, "invalid blob KZG proof")
	}

	if err := v.seen.Add(blob.Slot, id); err != nil {
		return reject(peerID, "seen-cache rejected entry: "+err.Error())
	}

	verified, err := blocks.NewROBlob(blob.BlobSidecar)
	if err != nil {
		return reject(peerID, "failed to wrap verified blob: "+err.Error())
	}
	// ForkDeneb is the minimal blob-carrying fork; a blob sidecar arriving
	// ahead of its block cannot say more precisely which blob-carrying
	// fork the block belongs to without a slot->fork schedule lookup,
	// which is an external collaborator's concern here. A block of a
	// later blob-carrying fork that arrives after its blob is rejected by
	// the registry's header-metadata check, since the forks differ.
	meta := blockinput.Meta{
		ForkName:      blocks.ForkDeneb,
		Slot:          blob.Slot,
		BlockRootHex:  blockRootHex,
		ParentRootHex: parentRootHex,
	}
	part := blockinput.BlobPart{
		Blob:         blocks.VerifiedROBlob{ROBlob: verified},
		BlockRootHex: blockRootHex,
		Source:       blockinput.SourceMeta{PeerID: peerID, Source: "gossip"},
	}
	if err := v.registry.AddBlob(meta, part); err != nil {
		return reject(peerID, "registry rejected blob: "+err.Error())
	}
	return ResultAccept, nil
}
