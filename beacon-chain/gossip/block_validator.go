package gossip

import (
	"context"
	"fmt"

	"github.com/orovalt/sentrybeacon/beacon-chain/blockinput"
	"github.com/orovalt/sentrybeacon/beacon-chain/cache/seen"
	"github.com/orovalt/sentrybeacon/beacon-chain/p2p"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
	"github.com/orovalt/sentrybeacon/time/slots"
)

// SignatureVerifier performs BLS verification of a gossiped object. It is
// the seam between this pipeline's bookkeeping and the cryptography.
type SignatureVerifier interface {
	VerifyBlockSignature(ctx context.Context, blk blocks.ROBlock) (bool, error)
}

// FinalizedSlotProvider exposes the fork-choice engine's current
// finalized slot, used to reject blocks proposed at or before it.
type FinalizedSlotProvider interface {
	FinalizedSlot() primitives.Slot
}

// BlockValidator runs the admission pipeline for the beacon_block topic.
type BlockValidator struct {
	clock     *slots.Clock
	seen      *seen.SeenBlockProposers
	verifier  SignatureVerifier
	registry  *blockinput.BlockInputRegistry
	finalized FinalizedSlotProvider
}

// NewBlockValidator builds a BlockValidator wired to its collaborators.
func NewBlockValidator(
	clock *slots.Clock,
	seenProposers *seen.SeenBlockProposers,
	verifier SignatureVerifier,
	registry *blockinput.BlockInputRegistry,
	finalized FinalizedSlotProvider,
) *BlockValidator {
	return &BlockValidator{
		clock:     clock,
		seen:      seenProposers,
		verifier:  verifier,
		registry:  registry,
		finalized: finalized,
	}
}

// Validate runs the five-step admission pipeline against blk, received
// from peerID under blockRootHex/parentRootHex.
func (v *BlockValidator) Validate(ctx context.Context, peerID p2p.PeerID, blockRootHex, parentRootHex string, blk blocks.ROBlock) (Result, error) {
	// Step 1 (SSZ decode) already happened upstream of this call.

	// Step 2: structural predicates.
	slot := blk.Block().Slot()
	maxSlot := v.clock.SlotWithFutureTolerance(slots.GossipFutureTolerance())
	if slot > maxSlot {
		return reject(peerID, fmt.Sprintf("block slot %d is beyond the gossip future tolerance", slot))
	}
	if v.finalized != nil && slot <= v.finalized.FinalizedSlot() {
		return reject(peerID, fmt.Sprintf("block slot %d is at or before the finalized slot", slot))
	}

	// Step 3: identity dedup.
	proposer := blk.Block().ProposerIndex()
	if v.seen.IsKnown(slot, proposer) {
		return ResultIgnore, nil
	}

	// Step 4: cryptographic verification.
	ok, err := v.verifier.VerifyBlockSignature(ctx, blk)
	if err != nil {
		return reject(peerID, "signature verification failed: "+err.Error())
	}
	if !ok {
		return reject(peerID, "invalid block signature")
	}

	// Step 5: insert into the seen cache and forward to the registry.
	if err := v.seen.Add(slot, proposer); err != nil {
		return reject(peerID, "seen-cache rejected entry: "+err.Error())
	}
	meta := blockinput.Meta{
		ForkName:      blk.Block().Fork(),
		Slot:          slot,
		BlockRootHex:  blockRootHex,
		ParentRootHex: parentRootHex,
	}
	part := blockinput.BlockPart{
		Block:        blk.SignedBeaconBlock,
		BlockRootHex: blockRootHex,
		Source:       blockinput.SourceMeta{PeerID: peerID, Source: "gossip"},
	}
	if err := v.registry.AddBlock(meta, part, blockinput.AddBlockOpts{}); err != nil {
		return reject(peerID, "registry rejected block: "+err.Error())
	}
	return ResultAccept, nil
}
