// Package seen implements the bounded, watermark-pruned dedup caches
// guarding gossip and API admission: SeenAttesters, SeenAggregators,
// SeenPayloadAttesters, SeenBlockProposers, SeenSyncCommitteeMessages,
// SeenContributionAndProof, SeenExecutionPayloadBids, SeenBlobSidecars,
// and SeenExecutionPayloadEnvelopes. All share the same add/isKnown/prune
// shape. All but SeenExecutionPayloadEnvelopes differ only in key type and
// identity shape, so each is a thin named wrapper around ordinalSet;
// SeenExecutionPayloadEnvelopes is keyed by blockRootHex, pruned against
// the finalized slot, and capped by an LRU.
package seen

import "github.com/pkg/errors"

// ErrBelowWatermark is returned by Add when key is older than the cache's
// current lowestPermissible watermark.
var ErrBelowWatermark = errors.New("seen cache: key is below the lowest permissible watermark")
