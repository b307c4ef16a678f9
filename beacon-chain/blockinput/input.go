// Package blockinput implements a per-blockRoot aggregation state
// machine: it gathers a block and its data-availability sidecars from
// any mix of ingress paths (gossip, req/resp, engine recovery, API) into
// one consistent BlockInput, and exposes waitable completion futures for
// downstream consumers such as the pipeline orchestrator.
package blockinput

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/orovalt/sentrybeacon/beacon-chain/p2p"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// Type is the BlockInput sub-type selected from the block's fork.
type Type int

const (
	TypePreData Type = iota
	TypeBlobs
	TypeColumns
)

// SourceMeta tags a part with the ingress path it arrived from and, for
// peer-originated parts, the offending peer when a consistency check
// fails.
type SourceMeta struct {
	PeerID p2p.PeerID
	Source string // "gossip" | "reqresp" | "engine" | "api"
}

// Meta carries the identity/fork metadata needed to create a BlockInput;
// it must be derivable from whichever part triggers creation.
type Meta struct {
	ForkName      blocks.ForkName
	Slot          primitives.Slot
	BlockRootHex  string
	ParentRootHex string
	DAOutOfRange  bool
	TimeCreated   time.Time

	// ExpectedColumnIndices is only consulted for the Columns type; it is
	// the node's custody subset, fixed for the lifetime of the input.
	ExpectedColumnIndices []uint64
}

// LogMeta is the observability snapshot returned by GetLogMeta.
type LogMeta struct {
	Slot            primitives.Slot
	BlockRoot       string
	TimeCreatedSec  int64
	ExpectedParts   int
	ReceivedParts   int
}

type blobEntry struct {
	blob   blocks.VerifiedROBlob
	source SourceMeta
}

type columnEntry struct {
	column blocks.VerifiedROColumn
	source SourceMeta
}

// BlockInput is the per-blockRoot aggregator. All mutation happens through
// AddBlock/AddBlob/AddColumn, which the owning BlockInputRegistry
// serializes per root, so the mutex here only needs to guard against
// incidental concurrent observers
// (HasBlock, WaitFor*) racing with the serialized writer.
type BlockInput struct {
	mu sync.Mutex

	typ Type

	blockRootHex  string
	forkName      blocks.ForkName
	slot          primitives.Slot
	parentRootHex string
	daOutOfRange  bool

	timeCreated  time.Time
	timeComplete *time.Time

	block       blocks.SignedBeaconBlock
	blockSource *SourceMeta

	blobs           map[uint64]*blobEntry
	columns         map[uint64]*columnEntry
	expectedColumns map[uint64]struct{}

	waitBlock           *future[blocks.ROBlock]
	waitAllData         *future[bool]
	waitBlockAndAllData *future[blocks.ROBlock]

	evictOnce sync.Once
	evictCh   chan struct{}
}

// Create builds a new BlockInput from meta, selecting its sub-type from
// meta.ForkName.
func Create(meta Meta) *BlockInput {
	typ := TypePreData
	switch {
	case meta.ForkName.HasColumns():
		typ = TypeColumns
	case meta.ForkName.HasBlobs():
		typ = TypeBlobs
	}

	bi := &BlockInput{
		typ:                 typ,
		blockRootHex:        meta.BlockRootHex,
		forkName:            meta.ForkName,
		slot:                meta.Slot,
		parentRootHex:       meta.ParentRootHex,
		daOutOfRange:        meta.DAOutOfRange,
		timeCreated:         meta.TimeCreated,
		blobs:               make(map[uint64]*blobEntry),
		columns:             make(map[uint64]*columnEntry),
		waitBlock:           newFuture[blocks.ROBlock](),
		waitAllData:         newFuture[bool](),
		waitBlockAndAllData: newFuture[blocks.ROBlock](),
		evictCh:             make(chan struct{}),
	}
	if typ == TypeColumns {
		bi.expectedColumns = make(map[uint64]struct{}, len(meta.ExpectedColumnIndices))
		for _, idx := range meta.ExpectedColumnIndices {
			bi.expectedColumns[idx] = struct{}{}
		}
	}
	if bi.daOutOfRange {
		// Out of DA retention range: data can never be fetched, so
		// completeness is trivially satisfied.
		bi.waitAllData.resolve(true)
	}
	return bi
}

// Type returns the BlockInput's sub-type.
func (bi *BlockInput) Type() Type {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	return bi.typ
}

// BlockRootHex returns the input's canonical identity key.
func (bi *BlockInput) BlockRootHex() string {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	return bi.blockRootHex
}

// Slot returns the creation-time slot.
func (bi *BlockInput) Slot() primitives.Slot {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	return bi.slot
}

// BlockPart is the argument to AddBlock.
type BlockPart struct {
	Block        blocks.SignedBeaconBlock
	BlockRootHex string
	Source       SourceMeta
}

// AddBlockOpts controls AddBlock's duplicate-add policy.
type AddBlockOpts struct {
	ThrowOnDuplicateAdd bool
}

// AddBlock attaches the block to the input. On first add it revalidates
// any sidecars already stored speculatively against the block body's
// commitments.
func (bi *BlockInput) AddBlock(part BlockPart, opts AddBlockOpts) error {
	bi.mu.Lock()
	defer bi.mu.Unlock()

	if part.BlockRootHex != bi.blockRootHex {
		return &MismatchedRootError{
			Expected: bi.blockRootHex,
			Got:      part.BlockRootHex,
			PeerID:   part.Source.PeerID,
			Source:   part.Source.Source,
		}
	}

	if bi.block != nil {
		if opts.ThrowOnDuplicateAdd {
			return newError(CodeInvalidConstruction, "block already added for root %s", bi.blockRootHex)
		}
		return nil
	}

	commitments, err := part.Block.Block().Body().BlobKzgCommitments()
	if err != nil {
		return err
	}
	if bi.typ == TypeBlobs {
		for idx, entry := range bi.blobs {
			if err := checkCommitment(idx, entry.blob.KzgCommitment, commitments); err != nil {
				return err
			}
		}
	} else if bi.typ == TypeColumns {
		for _, entry := range bi.columns {
			if err := checkCommitment(entry.column.Index, entry.column.KzgCommitment, commitments); err != nil {
				return err
			}
		}
	}

	bi.block = part.Block
	src := part.Source
	bi.blockSource = &src

	root, err := hexToRoot(part.BlockRootHex)
	if err != nil {
		return err
	}
	roblock, err := blocks.NewROBlockWithRoot(part.Block, root)
	if err != nil {
		return err
	}

	bi.waitBlock.resolve(roblock)

	if bi.hasAllDataLocked() {
		bi.waitAllData.resolve(true)
		bi.markCompleteLocked(roblock)
	}
	return nil
}

// checkCommitment compares a stored sidecar's commitment against the
// block body's commitment list at the same index ("commitment at
// blob-index i in any sidecar must equal the block body's
// blobKzgCommitments[i]").
func checkCommitment(idx uint64, got []byte, commitments [][]byte) error {
	if idx >= uint64(len(commitments)) {
		return &MismatchedCommitmentError{SidecarIndex: idx, CommitmentIndex: idx}
	}
	if !bytes.Equal(got, commitments[idx]) {
		return &MismatchedCommitmentError{SidecarIndex: idx, CommitmentIndex: idx}
	}
	return nil
}

// BlobPart is the argument to AddBlob.
type BlobPart struct {
	Blob         blocks.VerifiedROBlob
	BlockRootHex string
	Source       SourceMeta
}

// AddBlob attaches a single blob sidecar to a Blobs-type input.
func (bi *BlockInput) AddBlob(part BlobPart) error {
	bi.mu.Lock()
	defer bi.mu.Unlock()

	if bi.typ != TypeBlobs {
		return newError(CodeInvalidConstruction, "blobs not expected for this block's fork")
	}
	if part.BlockRootHex != bi.blockRootHex {
		return &MismatchedRootError{
			Expected: bi.blockRootHex,
			Got:      part.BlockRootHex,
			PeerID:   part.Source.PeerID,
			Source:   part.Source.Source,
		}
	}

	idx := part.Blob.Index
	if _, exists := bi.blobs[idx]; exists {
		// Duplicate at the same index is silently ignored.
		return nil
	}

	if bi.block != nil {
		commitments, err := bi.block.Block().Body().BlobKzgCommitments()
		if err != nil {
			return err
		}
		if err := checkCommitment(idx, part.Blob.KzgCommitment, commitments); err != nil {
			return err
		}
	}

	bi.blobs[idx] = &blobEntry{blob: part.Blob, source: part.Source}

	if bi.hasAllDataLocked() {
		bi.waitAllData.resolve(true)
		if bi.block != nil {
			root, err := hexToRoot(bi.blockRootHex)
			if err != nil {
				return err
			}
			roblock, err := blocks.NewROBlockWithRoot(bi.block, root)
			if err != nil {
				return err
			}
			bi.markCompleteLocked(roblock)
		}
	}
	return nil
}

// ColumnPart is the argument to AddColumn.
type ColumnPart struct {
	Column       blocks.VerifiedROColumn
	BlockRootHex string
	Source       SourceMeta
}

// AddColumn attaches a single column sidecar to a Columns-type input.
func (bi *BlockInput) AddColumn(part ColumnPart) error {
	bi.mu.Lock()
	defer bi.mu.Unlock()

	if bi.typ != TypeColumns {
		return newError(CodeInvalidConstruction, "columns not expected for this block's fork")
	}
	if part.BlockRootHex != bi.blockRootHex {
		return &MismatchedRootError{
			Expected: bi.blockRootHex,
			Got:      part.BlockRootHex,
			PeerID:   part.Source.PeerID,
			Source:   part.Source.Source,
		}
	}

	idx := part.Column.ColumnIndex
	if _, exists := bi.columns[idx]; exists {
		// A byte-different but commitment-equal duplicate at the same
		// index from a different peer is logged, not rejected,
		// consistent with first-writer-wins.
		log.WithField("columnIndex", idx).WithField("root", bi.blockRootHex).
			Debug("duplicate column sidecar at already-filled index")
		return nil
	}

	if bi.block != nil {
		commitments, err := bi.block.Block().Body().BlobKzgCommitments()
		if err != nil {
			return err
		}
		if err := checkCommitment(part.Column.Index, part.Column.KzgCommitment, commitments); err != nil {
			return err
		}
	}

	bi.columns[idx] = &columnEntry{column: part.Column, source: part.Source}

	if bi.hasAllDataLocked() {
		bi.waitAllData.resolve(true)
		if bi.block != nil {
			root, err := hexToRoot(bi.blockRootHex)
			if err != nil {
				return err
			}
			roblock, err := blocks.NewROBlockWithRoot(bi.block, root)
			if err != nil {
				return err
			}
			bi.markCompleteLocked(roblock)
		}
	}
	return nil
}

// markCompleteLocked resolves waitBlockAndAllData and stamps timeComplete
// on the first transition into the Complete state. Must be called with
// bi.mu held.
func (bi *BlockInput) markCompleteLocked(roblock blocks.ROBlock) {
	if bi.timeComplete == nil {
		now := time.Now()
		bi.timeComplete = &now
	}
	bi.waitBlockAndAllData.resolve(roblock)
}

// hasAllDataLocked must be called with bi.mu held.
func (bi *BlockInput) hasAllDataLocked() bool {
	if bi.daOutOfRange {
		return true
	}
	switch bi.typ {
	case TypePreData:
		return true
	case TypeBlobs:
		if bi.block == nil {
			return false
		}
		commitments, err := bi.block.Block().Body().BlobKzgCommitments()
		if err != nil {
			return false
		}
		return len(bi.blobs) == len(commitments)
	case TypeColumns:
		for idx := range bi.expectedColumns {
			if _, ok := bi.columns[idx]; !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// HasBlock reports whether the block has been added.
func (bi *BlockInput) HasBlock() bool {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	return bi.block != nil
}

// HasAllData reports whether every expected DA part has been added.
func (bi *BlockInput) HasAllData() bool {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	return bi.hasAllDataLocked()
}

// HasBlockAndAllData reports whether the input has reached Complete.
func (bi *BlockInput) HasBlockAndAllData() bool {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	return bi.block != nil && bi.hasAllDataLocked()
}

// GetBlock returns the stored block, failing with MISSING_BLOCK if absent.
func (bi *BlockInput) GetBlock() (blocks.ROBlock, error) {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	if bi.block == nil {
		return blocks.ROBlock{}, newError(CodeMissingBlock, "block not yet added for root %s", bi.blockRootHex)
	}
	root, err := hexToRoot(bi.blockRootHex)
	if err != nil {
		return blocks.ROBlock{}, err
	}
	return blocks.NewROBlockWithRoot(bi.block, root)
}

// GetTimeComplete returns the timestamp of completion, failing with
// MISSING_TIME_COMPLETE if the input has not yet reached Complete.
func (bi *BlockInput) GetTimeComplete() (time.Time, error) {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	if bi.timeComplete == nil {
		return time.Time{}, newError(CodeMissingTimeComplete, "root %s is not yet complete", bi.blockRootHex)
	}
	return *bi.timeComplete, nil
}

// WaitForBlock blocks until the block is added, the context is done, the
// input is evicted, or timeout elapses.
func (bi *BlockInput) WaitForBlock(ctx context.Context, timeout time.Duration) (blocks.ROBlock, error) {
	return bi.waitBlock.wait(ctx, bi.evictCh, timeout)
}

// WaitForAllData blocks until every expected DA part is present.
func (bi *BlockInput) WaitForAllData(ctx context.Context, timeout time.Duration) (bool, error) {
	return bi.waitAllData.wait(ctx, bi.evictCh, timeout)
}

// WaitForBlockAndAllData blocks until the input reaches Complete.
func (bi *BlockInput) WaitForBlockAndAllData(ctx context.Context, timeout time.Duration) (blocks.ROBlock, error) {
	return bi.waitBlockAndAllData.wait(ctx, bi.evictCh, timeout)
}

// GetLogMeta returns an observability snapshot of this BlockInput.
func (bi *BlockInput) GetLogMeta() LogMeta {
	bi.mu.Lock()
	defer bi.mu.Unlock()

	expected, received := 0, 0
	switch bi.typ {
	case TypeBlobs:
		if bi.block != nil {
			if commitments, err := bi.block.Block().Body().BlobKzgCommitments(); err == nil {
				expected = len(commitments)
			}
		}
		received = len(bi.blobs)
	case TypeColumns:
		expected = len(bi.expectedColumns)
		received = len(bi.columns)
	}

	return LogMeta{
		Slot:           bi.slot,
		BlockRoot:      bi.blockRootHex,
		TimeCreatedSec: bi.timeCreated.Unix(),
		ExpectedParts:  expected,
		ReceivedParts:  received,
	}
}

// evict rejects every outstanding waiter with ErrWaitCancelled. Called by
// the registry on pruneFinalized; idempotent.
func (bi *BlockInput) evict() {
	bi.evictOnce.Do(func() {
		close(bi.evictCh)
	})
}
