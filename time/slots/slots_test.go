package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

func TestToEpoch(t *testing.T) {
	cases := []struct {
		slot  primitives.Slot
		epoch primitives.Epoch
	}{
		{slot: 0, epoch: 0},
		{slot: 31, epoch: 0},
		{slot: 32, epoch: 1},
		{slot: 64, epoch: 2},
		{slot: 200, epoch: 6},
	}
	for _, c := range cases {
		require.Equal(t, c.epoch, ToEpoch(c.slot))
	}
}

func TestEpochStartEnd(t *testing.T) {
	start, err := EpochStart(2)
	require.NoError(t, err)
	require.Equal(t, primitives.Slot(64), start)

	end, err := EpochEnd(2)
	require.NoError(t, err)
	require.Equal(t, primitives.Slot(95), end)
}

func TestIsEpochStartEnd(t *testing.T) {
	require.True(t, IsEpochStart(0))
	require.True(t, IsEpochStart(32))
	require.False(t, IsEpochStart(1))
	require.True(t, IsEpochEnd(31))
	require.False(t, IsEpochEnd(30))
}

func TestRoundUpToNearestEpoch(t *testing.T) {
	require.Equal(t, primitives.Slot(0), RoundUpToNearestEpoch(0))
	require.Equal(t, primitives.Slot(32), RoundUpToNearestEpoch(1))
	require.Equal(t, primitives.Slot(32), RoundUpToNearestEpoch(32))
}

func TestToTime(t *testing.T) {
	got, err := ToTime(500, 12)
	require.NoError(t, err)
	require.Equal(t, time.Unix(500+12*12, 0), got)

	_, err = ToTime(500, primitives.Slot(^uint64(0)))
	require.Error(t, err)
}

func TestVerifyTime(t *testing.T) {
	now := time.Now()
	restore := freezeNow(now)
	defer restore()

	genesis := uint64(now.Add(-5 * 12 * time.Second).Unix())
	require.NoError(t, VerifyTime(genesis, 3, 0))
	require.Error(t, VerifyTime(genesis, 6, 0))
	require.NoError(t, VerifyTime(genesis, 6, 20*time.Second))
}

func TestValidateClock(t *testing.T) {
	now := time.Now()
	restore := freezeNow(now)
	defer restore()

	genesis := uint64(now.Add(-time.Duration(MaxSlotBuffer) * 12 * time.Second).Unix())
	require.NoError(t, ValidateClock(primitives.Slot(MaxSlotBuffer), genesis))
	require.Error(t, ValidateClock(primitives.Slot(2*MaxSlotBuffer+100), genesis))
}

func freezeNow(t time.Time) func() {
	old := wallClockNow
	wallClockNow = func() time.Time { return t }
	return func() { wallClockNow = old }
}
