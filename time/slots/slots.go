// Package slots converts between wall-clock time and slot/epoch numbers
// against a genesis timestamp, and validates incoming slot/time claims
// against the local clock.
package slots

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/orovalt/sentrybeacon/config/params"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// MaxSlotBuffer bounds how far a claimed slot may sit beyond what the
// local clock computes for "now" before it is rejected outright as
// clock-skew abuse rather than ordinary network latency.
const MaxSlotBuffer = uint64(10 * 60 * 60 / 12) // ~10 hours of slots at 12s/slot.

// ToEpoch returns the epoch slot belongs to.
func ToEpoch(slot primitives.Slot) primitives.Epoch {
	return primitives.Epoch(uint64(slot) / uint64(params.BeaconConfig().SlotsPerEpoch))
}

// EpochStart returns the first slot of epoch.
func EpochStart(epoch primitives.Epoch) (primitives.Slot, error) {
	spe := uint64(params.BeaconConfig().SlotsPerEpoch)
	start, ok := mulOverflows(uint64(epoch), spe)
	if ok {
		return 0, errors.Errorf("start slot calculation overflows for epoch %d", epoch)
	}
	return primitives.Slot(start), nil
}

// UnsafeEpochStart is EpochStart without overflow checking, for call sites
// that have already bounded epoch to a sane range.
func UnsafeEpochStart(epoch primitives.Epoch) primitives.Slot {
	return primitives.Slot(uint64(epoch) * uint64(params.BeaconConfig().SlotsPerEpoch))
}

// EpochEnd returns the last slot of epoch.
func EpochEnd(epoch primitives.Epoch) (primitives.Slot, error) {
	start, err := EpochStart(epoch + 1)
	if err != nil {
		return 0, err
	}
	if start == 0 {
		return 0, errors.New("end slot calculation overflows")
	}
	return start - 1, nil
}

// IsEpochStart reports whether slot is the first slot of its epoch.
func IsEpochStart(slot primitives.Slot) bool {
	return uint64(slot)%uint64(params.BeaconConfig().SlotsPerEpoch) == 0
}

// IsEpochEnd reports whether slot is the last slot of its epoch.
func IsEpochEnd(slot primitives.Slot) bool {
	return IsEpochStart(slot + 1)
}

// RoundUpToNearestEpoch rounds slot up to the first slot of its epoch,
// unless it already is one.
func RoundUpToNearestEpoch(slot primitives.Slot) primitives.Slot {
	if IsEpochStart(slot) {
		return slot
	}
	return UnsafeEpochStart(ToEpoch(slot) + 1)
}

// PrevSlot returns slot-1, or 0 for slot 0.
func PrevSlot(slot primitives.Slot) primitives.Slot {
	if slot == 0 {
		return 0
	}
	return slot - 1
}

// ToTime converts slot, relative to genesisTimeSec, into a wall-clock time.
func ToTime(genesisTimeSec uint64, slot primitives.Slot) (time.Time, error) {
	timeSinceGenesis, ok := mulOverflows(uint64(slot), params.BeaconConfig().SecondsPerSlot)
	if ok {
		return time.Time{}, errors.Errorf("slot (%d) is in the far distant future", slot)
	}
	sTime, ok := addOverflows(genesisTimeSec, timeSinceGenesis)
	if ok {
		return time.Time{}, errors.Errorf("slot (%d) is in the far distant future", slot)
	}
	return time.Unix(int64(sTime), 0), nil
}

// StartTime is ToTime without the overflow-guarded error return, for call
// sites that already trust slot is in a sane range.
func StartTime(genesisTimeSec uint64, slot primitives.Slot) time.Time {
	t, err := ToTime(genesisTimeSec, slot)
	if err != nil {
		return time.Unix(math.MaxInt64, 0)
	}
	return t
}

// SinceEpochStarts returns the number of slots elapsed since the start of
// the epoch containing slot.
func SinceEpochStarts(slot primitives.Slot) primitives.Slot {
	return slot % params.BeaconConfig().SlotsPerEpoch
}

// VerifyTime checks that slot's computed start time is neither further in
// the future than timeTolerance allows nor so far in the future that it
// overflows the clock outright.
func VerifyTime(genesisTime uint64, slot primitives.Slot, timeTolerance time.Duration) error {
	slotTime, err := ToTime(genesisTime, slot)
	if err != nil {
		return err
	}
	currentTime := wallClockNow()
	diff := slotTime.Sub(currentTime)

	if diff > timeTolerance {
		return errors.Errorf("could not process slot from the future, slot time %s > current time %s", slotTime, currentTime)
	}
	return nil
}

// ValidateClock rejects slot if it sits more than MaxSlotBuffer slots past
// whatever the local clock computes as "now" relative to genesisTime —
// ordinary clock disparity is tolerated elsewhere; this guards against
// slots so far ahead they could only be clock abuse.
func ValidateClock(slot primitives.Slot, genesisTime uint64) error {
	maxClockDisparitySlots := MaxSlotBuffer
	maxSlot, ok := addOverflows(uint64(CurrentSlot(genesisTime)), maxClockDisparitySlots)
	if ok {
		maxSlot = math.MaxUint64
	}
	if uint64(slot) > maxSlot {
		return errors.Errorf("slot %d is too far in the future, which exceeds max allowed value relative to the local clock", slot)
	}
	return nil
}

// CurrentSlot returns the slot corresponding to now, relative to
// genesisTime. A genesisTime in the future yields slot 0.
func CurrentSlot(genesisTime uint64) primitives.Slot {
	now := uint64(wallClockNow().Unix())
	if now < genesisTime {
		return 0
	}
	return primitives.Slot((now - genesisTime) / params.BeaconConfig().SecondsPerSlot)
}

func mulOverflows(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	r := a * b
	return r, r/b != a
}

func addOverflows(a, b uint64) (uint64, bool) {
	r := a + b
	return r, r < a
}

// wallClockNow is the single seam for "current wall-clock time", wrapping
// time.Now so tests can substitute a frozen clock.
var wallClockNow = time.Now
