package gossip

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orovalt/sentrybeacon/beacon-chain/blockinput"
	"github.com/orovalt/sentrybeacon/beacon-chain/cache/seen"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
	"github.com/orovalt/sentrybeacon/time/slots"
)

type stubBlobVerifier struct {
	ok  bool
	err error
}

func (s *stubBlobVerifier) VerifyBlobKZG(context.Context, blocks.ROBlob) (bool, error) {
	return s.ok, s.err
}

func testBlob(t *testing.T, slot uint64, index uint64) blocks.ROBlob {
	t.Helper()
	ro, err := blocks.NewROBlob(blocks.BlobSidecar{
		Index:         index,
		KzgCommitment: []byte{1},
		KzgProof:      []byte{2},
		BlockRoot:     [32]byte{1},
		Slot:          primitives.Slot(slot),
	})
	require.NoError(t, err)
	return ro
}

func TestBlobValidator_Accept(t *testing.T) {
	clock := slots.NewClock(time.Now().Add(-10 * time.Second))
	v := NewBlobValidator(clock, seen.NewSeenBlobSidecars(), &stubBlobVerifier{ok: true}, blockinput.NewBlockInputRegistry())

	result, err := v.Validate(context.Background(), "peer1", "0xroot", "0xparent", testBlob(t, 0, 1))
	require.NoError(t, err)
	require.Equal(t, ResultAccept, result)
}

func TestBlobValidator_IgnoreDuplicate(t *testing.T) {
	clock := slots.NewClock(time.Now().Add(-10 * time.Second))
	v := NewBlobValidator(clock, seen.NewSeenBlobSidecars(), &stubBlobVerifier{ok: true}, blockinput.NewBlockInputRegistry())

	blob := testBlob(t, 0, 1)
	_, err := v.Validate(context.Background(), "peer1", "0xroot", "0xparent", blob)
	require.NoError(t, err)

	result, err := v.Validate(context.Background(), "peer2", "0xroot", "0xparent", blob)
	require.NoError(t, err)
	require.Equal(t, ResultIgnore, result)
}

func TestBlobValidator_RejectBadKZG(t *testing.T) {
	clock := slots.NewClock(time.Now().Add(-10 * time.Second))
	v := NewBlobValidator(clock, seen.NewSeenBlobSidecars(), &stubBlobVerifier{ok: false}, blockinput.NewBlockInputRegistry())

	result, err := v.Validate(context.Background(), "peer1", "0xroot", "0xparent", testBlob(t, 0, 1))
	require.Error(t, err)
	require.Equal(t, ResultReject, result)
}
