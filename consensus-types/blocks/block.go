package blocks

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// BeaconBlockBody is the subset of the block body this core cares about:
// the Deneb+ blob-KZG-commitment list that drives DA expectations. SSZ
// decoding of the full body is an external collaborator's concern.
type BeaconBlockBody interface {
	BlobKzgCommitments() ([][]byte, error)
}

// BeaconBlock is the unsigned block envelope.
type BeaconBlock interface {
	Slot() primitives.Slot
	ProposerIndex() uint64
	ParentRoot() [32]byte
	StateRoot() [32]byte
	Body() BeaconBlockBody
	Fork() ForkName
}

// SignedBeaconBlock pairs a BeaconBlock with its signature. Signature
// verification (BLS) is an external collaborator.
type SignedBeaconBlock interface {
	Block() BeaconBlock
	Signature() []byte
}

type beaconBlockBody struct {
	blobKzgCommitments [][]byte
}

func (b *beaconBlockBody) BlobKzgCommitments() ([][]byte, error) {
	return b.blobKzgCommitments, nil
}

type beaconBlock struct {
	slot           primitives.Slot
	proposerIndex  uint64
	parentRoot     [32]byte
	stateRoot      [32]byte
	body           *beaconBlockBody
	fork           ForkName
}

func (b *beaconBlock) Slot() primitives.Slot      { return b.slot }
func (b *beaconBlock) ProposerIndex() uint64      { return b.proposerIndex }
func (b *beaconBlock) ParentRoot() [32]byte       { return b.parentRoot }
func (b *beaconBlock) StateRoot() [32]byte        { return b.stateRoot }
func (b *beaconBlock) Body() BeaconBlockBody      { return b.body }
func (b *beaconBlock) Fork() ForkName             { return b.fork }

type signedBeaconBlock struct {
	block     *beaconBlock
	signature []byte
}

func (s *signedBeaconBlock) Block() BeaconBlock { return s.block }
func (s *signedBeaconBlock) Signature() []byte  { return s.signature }

// NewSignedBeaconBlock builds a SignedBeaconBlock value from its parts.
// Real deployments populate these fields by SSZ-decoding a wire message;
// this constructor is the seam that decoding would call into.
func NewSignedBeaconBlock(
	fork ForkName,
	slot primitives.Slot,
	proposerIndex uint64,
	parentRoot, stateRoot [32]byte,
	blobKzgCommitments [][]byte,
	signature []byte,
) SignedBeaconBlock {
	return &signedBeaconBlock{
		block: &beaconBlock{
			slot:          slot,
			proposerIndex: proposerIndex,
			parentRoot:    parentRoot,
			stateRoot:     stateRoot,
			fork:          fork,
			body:          &beaconBlockBody{blobKzgCommitments: blobKzgCommitments},
		},
		signature: signature,
	}
}

// ROBlock is a read-only SignedBeaconBlock paired with its cached
// hash-tree-root. Hash-tree-root computation itself is out of scope;
// computeTestRoot below is a deterministic stand-in used only when a caller
// has not already supplied the real root alongside the wire message.
type ROBlock struct {
	SignedBeaconBlock
	root [32]byte
}

// NewROBlock derives a synthetic root from the block's fields. Production
// callers should prefer NewROBlockWithRoot with the SSZ hash-tree-root
// computed by the external collaborator.
func NewROBlock(b SignedBeaconBlock) (ROBlock, error) {
	return NewROBlockWithRoot(b, computeTestRoot(b))
}

// NewROBlockWithRoot pairs b with an already-known root.
func NewROBlockWithRoot(b SignedBeaconBlock, root [32]byte) (ROBlock, error) {
	return ROBlock{SignedBeaconBlock: b, root: root}, nil
}

// Root returns the block's hash-tree-root.
func (b ROBlock) Root() [32]byte { return b.root }

func computeTestRoot(b SignedBeaconBlock) [32]byte {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(b.Block().Slot()))
	h.Write(buf[:])
	pr := b.Block().ParentRoot()
	h.Write(pr[:])
	h.Write(b.Signature())
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
