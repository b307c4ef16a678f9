package seen

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/orovalt/sentrybeacon/config/params"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// SyncCommitteeIdentity is the composite identity SeenSyncCommitteeMessages
// dedups on: (subcommittee, validatorIndex).
type SyncCommitteeIdentity struct {
	Subcommittee   uint64
	ValidatorIndex uint64
}

// ContributionIdentity is the composite identity SeenContributionAndProof
// dedups on: (aggregatorIndex, subcommittee).
type ContributionIdentity struct {
	AggregatorIndex uint64
	Subcommittee    uint64
}

// BlobIdentity is the composite identity SeenBlobSidecars dedups on:
// (blockRoot, index).
type BlobIdentity struct {
	Root  [32]byte
	Index uint64
}

func counterPair(prefix, help string) (hit, miss prometheus.Counter) {
	hit = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_hit",
		Help: "The number of isKnown checks that found a prior entry in " + help + ".",
	})
	miss = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_miss",
		Help: "The number of isKnown checks that found no prior entry in " + help + ".",
	})
	return hit, miss
}

// SeenAttesters dedups unaggregated attestations by (epoch, validatorIndex)
// over a 2-epoch horizon.
type SeenAttesters struct {
	*ordinalSet[primitives.Epoch, uint64]
}

var seenAttestersHit, seenAttestersMiss = counterPair("seen_attesters", "the unaggregated attestation dedup cache")

// NewSeenAttesters returns a fresh SeenAttesters cache.
func NewSeenAttesters() *SeenAttesters {
	return &SeenAttesters{newOrdinalSet[primitives.Epoch, uint64](2, seenAttestersHit, seenAttestersMiss)}
}

// SeenAggregators dedups aggregate attestations by (epoch, validatorIndex)
// over a 2-epoch horizon.
type SeenAggregators struct {
	*ordinalSet[primitives.Epoch, uint64]
}

var seenAggregatorsHit, seenAggregatorsMiss = counterPair("seen_aggregators", "the aggregate attestation dedup cache")

// NewSeenAggregators returns a fresh SeenAggregators cache.
func NewSeenAggregators() *SeenAggregators {
	return &SeenAggregators{newOrdinalSet[primitives.Epoch, uint64](2, seenAggregatorsHit, seenAggregatorsMiss)}
}

// SeenPayloadAttesters dedups payload attestations by (epoch, validatorIndex)
// over a 2-epoch horizon.
type SeenPayloadAttesters struct {
	*ordinalSet[primitives.Epoch, uint64]
}

var seenPayloadAttestersHit, seenPayloadAttestersMiss = counterPair("seen_payload_attesters", "the payload attestation dedup cache")

// NewSeenPayloadAttesters returns a fresh SeenPayloadAttesters cache.
func NewSeenPayloadAttesters() *SeenPayloadAttesters {
	return &SeenPayloadAttesters{newOrdinalSet[primitives.Epoch, uint64](2, seenPayloadAttestersHit, seenPayloadAttestersMiss)}
}

// SeenBlockProposers dedups block proposals by (slot, proposerIndex) over
// an approximate finality horizon.
type SeenBlockProposers struct {
	*ordinalSet[primitives.Slot, uint64]
}

var seenBlockProposersHit, seenBlockProposersMiss = counterPair("seen_block_proposers", "the block proposer dedup cache")

// NewSeenBlockProposers returns a fresh SeenBlockProposers cache.
func NewSeenBlockProposers() *SeenBlockProposers {
	horizon := params.BeaconConfig().FinalityHorizonSlots
	return &SeenBlockProposers{newOrdinalSet[primitives.Slot, uint64](horizon, seenBlockProposersHit, seenBlockProposersMiss)}
}

// SeenSyncCommitteeMessages dedups sync committee messages by
// (slot, (subcommittee, validatorIndex)) over a 1-slot horizon.
type SeenSyncCommitteeMessages struct {
	*ordinalSet[primitives.Slot, SyncCommitteeIdentity]
}

var seenSyncCommitteeMessagesHit, seenSyncCommitteeMessagesMiss = counterPair("seen_sync_committee_messages", "the sync committee message dedup cache")

// NewSeenSyncCommitteeMessages returns a fresh SeenSyncCommitteeMessages cache.
func NewSeenSyncCommitteeMessages() *SeenSyncCommitteeMessages {
	return &SeenSyncCommitteeMessages{newOrdinalSet[primitives.Slot, SyncCommitteeIdentity](1, seenSyncCommitteeMessagesHit, seenSyncCommitteeMessagesMiss)}
}

// SeenContributionAndProof dedups sync committee contributions by
// (slot, (aggregatorIndex, subcommittee)) over a 1-slot horizon.
type SeenContributionAndProof struct {
	*ordinalSet[primitives.Slot, ContributionIdentity]
}

var seenContributionAndProofHit, seenContributionAndProofMiss = counterPair("seen_contribution_and_proof", "the sync committee contribution dedup cache")

// NewSeenContributionAndProof returns a fresh SeenContributionAndProof cache.
func NewSeenContributionAndProof() *SeenContributionAndProof {
	return &SeenContributionAndProof{newOrdinalSet[primitives.Slot, ContributionIdentity](1, seenContributionAndProofHit, seenContributionAndProofMiss)}
}

// SeenExecutionPayloadBids dedups builder bids by (slot, builderIndex) over
// a 2-slot horizon.
type SeenExecutionPayloadBids struct {
	*ordinalSet[primitives.Slot, uint64]
}

var seenExecutionPayloadBidsHit, seenExecutionPayloadBidsMiss = counterPair("seen_execution_payload_bids", "the builder bid dedup cache")

// NewSeenExecutionPayloadBids returns a fresh SeenExecutionPayloadBids cache.
func NewSeenExecutionPayloadBids() *SeenExecutionPayloadBids {
	return &SeenExecutionPayloadBids{newOrdinalSet[primitives.Slot, uint64](2, seenExecutionPayloadBidsHit, seenExecutionPayloadBidsMiss)}
}

// SeenBlobSidecars dedups blob sidecars by (slot, (blockRoot, index)) over
// a 1-slot horizon.
type SeenBlobSidecars struct {
	*ordinalSet[primitives.Slot, BlobIdentity]
}

var seenBlobSidecarsHit, seenBlobSidecarsMiss = counterPair("seen_blob_sidecars", "the blob sidecar dedup cache")

// NewSeenBlobSidecars returns a fresh SeenBlobSidecars cache.
func NewSeenBlobSidecars() *SeenBlobSidecars {
	return &SeenBlobSidecars{newOrdinalSet[primitives.Slot, BlobIdentity](1, seenBlobSidecarsHit, seenBlobSidecarsMiss)}
}
