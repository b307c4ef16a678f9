package rpc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectTarget_Empty(t *testing.T) {
	_, ok := SelectTarget(nil)
	require.False(t, ok)
}

func TestSelectTarget_HighestSlotWins(t *testing.T) {
	targets := []Target{
		{Slot: 5, Root: [32]byte{1}},
		{Slot: 10, Root: [32]byte{2}},
		{Slot: 7, Root: [32]byte{3}},
	}
	got, ok := SelectTarget(targets)
	require.True(t, ok)
	require.Equal(t, Target{Slot: 10, Root: [32]byte{2}}, got)
}

func TestSelectTarget_TieBrokenByMostCommon(t *testing.T) {
	targets := []Target{
		{Slot: 10, Root: [32]byte{1}},
		{Slot: 10, Root: [32]byte{2}},
		{Slot: 10, Root: [32]byte{2}},
		{Slot: 10, Root: [32]byte{1}},
		{Slot: 10, Root: [32]byte{2}},
	}
	got, ok := SelectTarget(targets)
	require.True(t, ok)
	require.Equal(t, Target{Slot: 10, Root: [32]byte{2}}, got)
}

func TestSelectTarget_TieBrokenByFirstSeen(t *testing.T) {
	targets := []Target{
		{Slot: 10, Root: [32]byte{1}},
		{Slot: 10, Root: [32]byte{2}},
	}
	got, ok := SelectTarget(targets)
	require.True(t, ok)
	require.Equal(t, Target{Slot: 10, Root: [32]byte{1}}, got)
}
