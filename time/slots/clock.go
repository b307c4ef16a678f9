package slots

import (
	"time"

	"github.com/orovalt/sentrybeacon/config/params"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// Clock exposes genesis-relative slot/epoch readings to callers that
// would otherwise need to thread a raw genesis timestamp through every
// call site (gossip admission, the pipeline orchestrator).
type Clock struct {
	genesisTime time.Time
}

// NewClock anchors a Clock at genesisTime.
func NewClock(genesisTime time.Time) *Clock {
	return &Clock{genesisTime: genesisTime}
}

// GenesisTime returns the anchor time this Clock was constructed with.
func (c *Clock) GenesisTime() time.Time {
	return c.genesisTime
}

// CurrentSlot returns the slot the local wall clock currently sits in.
func (c *Clock) CurrentSlot() primitives.Slot {
	return CurrentSlot(uint64(c.genesisTime.Unix()))
}

// CurrentEpoch returns the epoch containing CurrentSlot.
func (c *Clock) CurrentEpoch() primitives.Epoch {
	return ToEpoch(c.CurrentSlot())
}

// SlotWithFutureTolerance returns the furthest slot that should be
// admitted as "current" given toleranceSec of allowed clock disparity: a
// message claiming a slot up to this value is treated as on-time even
// though the local clock has not yet reached it.
func (c *Clock) SlotWithFutureTolerance(toleranceSec time.Duration) primitives.Slot {
	shiftedGenesis := c.genesisTime.Add(-toleranceSec)
	return CurrentSlot(uint64(shiftedGenesis.Unix()))
}

// SlotStartTime returns the wall-clock start time of slot.
func (c *Clock) SlotStartTime(slot primitives.Slot) time.Time {
	return StartTime(uint64(c.genesisTime.Unix()), slot)
}

// GossipFutureTolerance is MAXIMUM_GOSSIP_CLOCK_DISPARITY expressed as a
// time.Duration, the tolerance SlotWithFutureTolerance is normally called
// with at the gossip admission boundary.
func GossipFutureTolerance() time.Duration {
	return time.Duration(params.BeaconConfig().MaximumGossipClockDisparityMS) * time.Millisecond
}
