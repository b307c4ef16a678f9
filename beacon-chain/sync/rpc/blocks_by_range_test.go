package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orovalt/sentrybeacon/beacon-chain/db/kv"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

func setupStore(t *testing.T) *kv.Store {
	s, err := kv.NewKVStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func rangeTestBlock(slot primitives.Slot, parent [32]byte) blocks.ROBlock {
	sb := blocks.NewSignedBeaconBlock(blocks.ForkDeneb, slot, 1, parent, [32]byte{}, nil, []byte("sig"))
	rb, _ := blocks.NewROBlock(sb)
	return rb
}

func TestBlocksByRangeHandler_Handle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	for _, slot := range []primitives.Slot{1, 2, 3, 10} {
		require.NoError(t, store.SaveBlock(ctx, rangeTestBlock(slot, [32]byte{byte(slot)})))
	}

	h := NewBlocksByRangeHandler(store)
	out := make(chan Chunk, 8)
	require.NoError(t, h.Handle(ctx, BlocksByRangeRequest{StartSlot: 1, Count: 4}, out))

	var got []primitives.Slot
	for c := range out {
		got = append(got, c.Block.Block().Slot())
	}
	require.Equal(t, []primitives.Slot{1, 2, 3}, got)
}

func TestBlocksByRangeHandler_ZeroCount(t *testing.T) {
	store := setupStore(t)
	h := NewBlocksByRangeHandler(store)
	out := make(chan Chunk, 1)
	require.NoError(t, h.Handle(context.Background(), BlocksByRangeRequest{StartSlot: 1, Count: 0}, out))
	_, open := <-out
	require.False(t, open)
}
