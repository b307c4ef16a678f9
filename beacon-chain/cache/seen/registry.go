package seen

import "github.com/orovalt/sentrybeacon/consensus-types/primitives"

// Caches bundles every dedup cache the gossip validators consult, so the
// archive/prune coordinator can prune all of them from a single call
// instead of threading each one through separately.
type Caches struct {
	Attesters                 *SeenAttesters
	Aggregators               *SeenAggregators
	PayloadAttesters          *SeenPayloadAttesters
	BlockProposers            *SeenBlockProposers
	SyncCommitteeMessages     *SeenSyncCommitteeMessages
	ContributionAndProof      *SeenContributionAndProof
	ExecutionPayloadBids      *SeenExecutionPayloadBids
	BlobSidecars              *SeenBlobSidecars
	ExecutionPayloadEnvelopes *SeenExecutionPayloadEnvelopes
}

// NewCaches constructs one fresh instance of every seen cache.
func NewCaches() *Caches {
	return &Caches{
		Attesters:                 NewSeenAttesters(),
		Aggregators:               NewSeenAggregators(),
		PayloadAttesters:          NewSeenPayloadAttesters(),
		BlockProposers:            NewSeenBlockProposers(),
		SyncCommitteeMessages:     NewSeenSyncCommitteeMessages(),
		ContributionAndProof:      NewSeenContributionAndProof(),
		ExecutionPayloadBids:      NewSeenExecutionPayloadBids(),
		BlobSidecars:              NewSeenBlobSidecars(),
		ExecutionPayloadEnvelopes: NewSeenExecutionPayloadEnvelopes(),
	}
}

// PruneAll advances every cache's watermark: epoch-keyed caches against
// currentEpoch, slot-keyed caches against currentSlot, and the envelope
// cache (which retains up to finality rather than a rolling horizon)
// against finalizedSlot.
func (c *Caches) PruneAll(currentSlot primitives.Slot, currentEpoch primitives.Epoch, finalizedSlot primitives.Slot) {
	c.Attesters.Prune(currentEpoch)
	c.Aggregators.Prune(currentEpoch)
	c.PayloadAttesters.Prune(currentEpoch)
	c.BlockProposers.Prune(currentSlot)
	c.SyncCommitteeMessages.Prune(currentSlot)
	c.ContributionAndProof.Prune(currentSlot)
	c.ExecutionPayloadBids.Prune(currentSlot)
	c.BlobSidecars.Prune(currentSlot)
	c.ExecutionPayloadEnvelopes.Prune(finalizedSlot)
}
