package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

func setupDB(t *testing.T) *Store {
	s, err := NewKVStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func testBlock(slot primitives.Slot, parent [32]byte) blocks.ROBlock {
	sb := blocks.NewSignedBeaconBlock(blocks.ForkDeneb, slot, 1, parent, [32]byte{}, nil, []byte("sig"))
	rb, _ := blocks.NewROBlock(sb)
	return rb
}

func TestStore_SaveGetBlock(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()
	b := testBlock(10, [32]byte{1})

	require.NoError(t, s.SaveBlock(ctx, b))
	require.True(t, s.HasBlock(ctx, b.Root()))

	got, err := s.Block(ctx, b.Root())
	require.NoError(t, err)
	require.Equal(t, b.Root(), got.Root())
	require.Equal(t, b.Block().Slot(), got.Block().Slot())
}

func TestStore_Block_NotFound(t *testing.T) {
	s := setupDB(t)
	_, err := s.Block(context.Background(), [32]byte{9})
	require.Error(t, err)
}

func TestStore_DeleteBlocksBelowSlot(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	low := testBlock(5, [32]byte{1})
	mid := testBlock(15, [32]byte{2})
	high := testBlock(25, [32]byte{3})
	for _, b := range []blocks.ROBlock{low, mid, high} {
		require.NoError(t, s.SaveBlock(ctx, b))
	}

	n, err := s.DeleteBlocksBelowSlot(ctx, 20)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.False(t, s.HasBlock(ctx, low.Root()))
	require.False(t, s.HasBlock(ctx, mid.Root()))
	require.True(t, s.HasBlock(ctx, high.Root()))
}

func TestStore_BlocksBySlotRange(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	low := testBlock(5, [32]byte{1})
	mid := testBlock(15, [32]byte{2})
	high := testBlock(25, [32]byte{3})
	for _, b := range []blocks.ROBlock{low, mid, high} {
		require.NoError(t, s.SaveBlock(ctx, b))
	}

	got, err := s.BlocksBySlotRange(ctx, 10, 26)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, primitives.Slot(15), got[0].Block().Slot())
	require.Equal(t, primitives.Slot(25), got[1].Block().Slot())
}

func TestStore_ArchiveBlock(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()
	b := testBlock(100, [32]byte{4})

	_, err := s.ArchivedBlock(ctx, 3)
	require.Error(t, err)

	require.NoError(t, s.ArchiveBlock(ctx, 3, b))
	got, err := s.ArchivedBlock(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, b.Root(), got.Root())

	// Archiving never touches the hot-store slot index DeleteBlocksBelowSlot reads.
	deleted, err := s.DeleteBlocksBelowSlot(ctx, 1000)
	require.NoError(t, err)
	require.Equal(t, 0, deleted)
	_, err = s.ArchivedBlock(ctx, 3)
	require.NoError(t, err)
}

func TestStore_FinalizedCheckpoint(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	epoch, root, err := s.FinalizedCheckpoint(ctx)
	require.NoError(t, err)
	require.Equal(t, primitives.Epoch(0), epoch)
	require.Equal(t, [32]byte{}, root)

	require.NoError(t, s.SaveFinalizedCheckpoint(ctx, 7, [32]byte{9}))
	epoch, root, err = s.FinalizedCheckpoint(ctx)
	require.NoError(t, err)
	require.Equal(t, primitives.Epoch(7), epoch)
	require.Equal(t, [32]byte{9}, root)
}
