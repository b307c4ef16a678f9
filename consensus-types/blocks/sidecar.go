package blocks

import "github.com/orovalt/sentrybeacon/consensus-types/primitives"

// BlobSidecar carries a single blob's commitment/proof pair plus enough of
// the beacon-block-header to derive its parent block's root and slot
// without the full block (req/resp and gossip deliver sidecars before the
// block is always known).
type BlobSidecar struct {
	Index         uint64
	KzgCommitment []byte
	KzgProof      []byte
	BlockRoot     [32]byte
	Slot          primitives.Slot
}

// ColumnSidecar is the Fulu analogue of BlobSidecar: a single column of the
// extended-blob matrix, addressed by ColumnIndex in addition to the
// underlying per-blob Index.
type ColumnSidecar struct {
	Index         uint64
	ColumnIndex   uint64
	KzgCommitment []byte
	KzgProof      []byte
	BlockRoot     [32]byte
	Slot          primitives.Slot
}

// ROBlob pairs a BlobSidecar with identity accessors matching ROBlock's
// shape, so code that switches on block vs. sidecar can treat both
// uniformly at the call boundary.
type ROBlob struct {
	BlobSidecar
}

// NewROBlob wraps a BlobSidecar as a ROBlob.
func NewROBlob(sc BlobSidecar) (ROBlob, error) {
	return ROBlob{BlobSidecar: sc}, nil
}

// NewROBlobWithRoot rewraps sc under a different BlockRoot, used by tests
// that need to simulate a root mismatch against an already-built sidecar.
func NewROBlobWithRoot(sc BlobSidecar, root [32]byte) (ROBlob, error) {
	sc.BlockRoot = root
	return ROBlob{BlobSidecar: sc}, nil
}

// ROColumn is the ColumnSidecar analogue of ROBlob.
type ROColumn struct {
	ColumnSidecar
}

// NewROColumn wraps a ColumnSidecar as a ROColumn.
func NewROColumn(sc ColumnSidecar) (ROColumn, error) {
	return ROColumn{ColumnSidecar: sc}, nil
}

// VerifiedROBlob marks a ROBlob whose KZG commitment has passed batch
// verification (beacon-chain/das.BlobBatchVerifier). It is a distinct type
// so that DA-checked and unchecked blobs cannot be mixed up at compile
// time.
type VerifiedROBlob struct {
	ROBlob
}

// VerifiedROColumn is the ROColumn analogue of VerifiedROBlob.
type VerifiedROColumn struct {
	ROColumn
}
