package das

import (
	"bytes"
	"context"

	"github.com/orovalt/sentrybeacon/beacon-chain/db/filesystem"
	"github.com/orovalt/sentrybeacon/config/params"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
	"github.com/orovalt/sentrybeacon/time/slots"
)

// BlobBatchVerifier performs the actual KZG batch-verification of a group
// of sidecars against their block's commitments. It is the seam between
// this package's bookkeeping and the cryptography, so tests can swap in
// a verifier that always succeeds or always fails a chosen index.
type BlobBatchVerifier interface {
	VerifiedROBlobs(ctx context.Context, scs []blocks.ROBlob) ([]blocks.VerifiedROBlob, error)
	MarkVerified(root [32]byte, slot primitives.Slot)
}

// LazilyPersistentStore is the DA Validator: it defers writing a sidecar
// to disk until it has been batch-verified, then tracks per-root
// completeness so IsDataAvailable never re-verifies or re-reads a
// sidecar it has already confirmed.
type LazilyPersistentStore struct {
	store    *filesystem.BlobStorage
	verifier BlobBatchVerifier
	cache    *cache
}

// NewLazilyPersistentStore builds a DA store over an on-disk blob store
// and a batch verifier.
func NewLazilyPersistentStore(store *filesystem.BlobStorage, verifier BlobBatchVerifier) *LazilyPersistentStore {
	return &LazilyPersistentStore{store: store, verifier: verifier, cache: newCache()}
}

// Persist batch-verifies and writes scs to the blob store, all sharing
// slot (and therefore root, since every sidecar in a call belongs to one
// block). A sidecar whose index has already been persisted is skipped
// rather than re-verified; ErrDuplicateSidecar is never returned to the
// caller.
func (s *LazilyPersistentStore) Persist(slot primitives.Slot, scs ...blocks.ROBlob) error {
	if len(scs) == 0 {
		return nil
	}
	root := scs[0].BlockRoot
	key := cacheKey{root: root, slot: slot}
	entry := s.cache.ensure(key)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	var fresh []blocks.ROBlob
	for _, sc := range scs {
		if sc.Index >= uint64(len(entry.persist)) {
			return errIndexOutOfBounds
		}
		if entry.persist[sc.Index] {
			continue
		}
		fresh = append(fresh, sc)
	}
	if len(fresh) == 0 {
		return nil
	}

	verified, err := s.verifier.VerifiedROBlobs(context.Background(), fresh)
	if err != nil {
		return err
	}
	for _, v := range verified {
		if err := s.store.Save(context.Background(), v); err != nil {
			return err
		}
		entry.persist[v.Index] = true
		s.verifier.MarkVerified(v.BlockRoot, v.Slot)
	}
	return nil
}

// persisted returns entry's dbidx merged with whatever the blob store
// already has on disk from a prior run, so a node restarted mid-sync
// does not re-request sidecars it already holds.
func (s *LazilyPersistentStore) persisted(root [32]byte, entry *cacheEntry) dbidx {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	onDisk := s.store.Indices(root)
	for i, present := range onDisk {
		if present && i < len(entry.persist) {
			entry.persist[i] = true
		}
	}
	out := make(dbidx, len(entry.persist))
	copy(out, entry.persist)
	return out
}

// commitmentsToCheck returns the block's blob commitments that DA must
// cover, or nil if the block's fork carries no blobs, it carries none,
// or the block's slot now falls outside the blob retention horizon (an
// old block can never have its sidecars refetched, so DA is vacuously
// satisfied).
func commitmentsToCheck(blk blocks.ROBlock, currentSlot primitives.Slot) ([][]byte, error) {
	if !blk.Block().Fork().HasBlobs() {
		return nil, nil
	}
	commitments, err := blk.Block().Body().BlobKzgCommitments()
	if err != nil {
		return nil, err
	}
	if len(commitments) == 0 {
		return nil, nil
	}

	blockEpoch := slots.ToEpoch(blk.Block().Slot())
	currentEpoch := slots.ToEpoch(currentSlot)
	horizon := params.BeaconConfig().MinEpochsForBlobSidecarsRequests
	if currentEpoch > blockEpoch && currentEpoch-blockEpoch > horizon {
		return nil, nil
	}
	return commitments, nil
}

// IsDataAvailable reports whether every blob commitment in blk's body has
// a verified, persisted sidecar whose commitment matches. currentSlot is
// the wall-clock slot used to evaluate the retention horizon.
func (s *LazilyPersistentStore) IsDataAvailable(ctx context.Context, currentSlot primitives.Slot, blk blocks.ROBlock) error {
	commitments, err := commitmentsToCheck(blk, currentSlot)
	if err != nil {
		return err
	}
	if len(commitments) == 0 {
		return nil
	}

	root := blk.Root()
	key := cacheKey{root: root, slot: blk.Block().Slot()}
	entry := s.cache.ensure(key)

	have := s.persisted(root, entry)
	if missing := have.missing(len(commitments)); len(missing) > 0 {
		return &MissingIndicesError{root: root, missing: missing}
	}

	for idx, want := range commitments {
		got, err := s.store.Get(ctx, root, uint64(idx))
		if err != nil {
			return err
		}
		if !bytes.Equal(got.KzgCommitment, want) {
			return &CommitmentMismatchError{root: root, index: uint64(idx)}
		}
	}
	return nil
}
