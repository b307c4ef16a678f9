// Package verification exports test doubles that construct "already
// verified" values without depending on a real BLS/KZG backend. The
// verification contracts themselves are declared by their consumers
// (das.BlobBatchVerifier, gossip.SignatureVerifier, gossip.BlobVerifier).
package verification

import (
	"testing"

	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
)

// FakeVerifyForTest wraps a ROBlob as a VerifiedROBlob without running any
// cryptography. Production code must never call this. No package in this
// module imports it; the das tests build VerifiedROBlob values directly.
func FakeVerifyForTest(_ testing.TB, b blocks.ROBlob) blocks.VerifiedROBlob {
	return blocks.VerifiedROBlob{ROBlob: b}
}

// FakeVerifySliceForTest is FakeVerifyForTest applied elementwise.
func FakeVerifySliceForTest(t testing.TB, bs []blocks.ROBlob) []blocks.VerifiedROBlob {
	out := make([]blocks.VerifiedROBlob, len(bs))
	for i := range bs {
		out[i] = FakeVerifyForTest(t, bs[i])
	}
	return out
}

// FakeVerifyColumnForTest is the ColumnSidecar analogue of FakeVerifyForTest.
func FakeVerifyColumnForTest(_ testing.TB, c blocks.ROColumn) blocks.VerifiedROColumn {
	return blocks.VerifiedROColumn{ROColumn: c}
}
