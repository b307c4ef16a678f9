package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClock_CurrentSlotAndEpoch(t *testing.T) {
	now := time.Now()
	restore := freezeNow(now)
	defer restore()

	genesis := now.Add(-100 * 12 * time.Second)
	c := NewClock(genesis)
	require.Equal(t, genesis, c.GenesisTime())
	require.Equal(t, uint64(100), uint64(c.CurrentSlot()))
	require.Equal(t, uint64(100/32), uint64(c.CurrentEpoch()))
}

func TestClock_SlotWithFutureTolerance(t *testing.T) {
	now := time.Now()
	restore := freezeNow(now)
	defer restore()

	genesis := now.Add(-10 * 12 * time.Second)
	c := NewClock(genesis)
	require.Equal(t, uint64(10), uint64(c.CurrentSlot()))
	require.Equal(t, uint64(11), uint64(c.SlotWithFutureTolerance(12*time.Second)))
}

func TestGossipFutureTolerance(t *testing.T) {
	require.Equal(t, 500*time.Millisecond, GossipFutureTolerance())
}
