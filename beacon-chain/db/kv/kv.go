// Package kv implements the db.Database contract on top of goleveldb.
package kv

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/orovalt/sentrybeacon/beacon-chain/db"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

var log = logrus.WithField("prefix", "db/kv")

// Bucket-prefix bytes, keeping every key in a single keyspace rather
// than separate column families.
var (
	blockPrefix         = []byte("blk/")
	blockSlotPrefix     = []byte("blkslot/")
	archivePrefix       = []byte("archive/")
	finalizedCheckpoint = []byte("meta/finalized")
)

// Store is a goleveldb-backed db.Database.
type Store struct {
	mu sync.Mutex
	db *leveldb.DB
}

var _ db.Database = (*Store)(nil)

// NewKVStore opens (or creates) a goleveldb database rooted at dirPath.
func NewKVStore(dirPath string) (*Store, error) {
	ldb, err := leveldb.OpenFile(dirPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open leveldb store")
	}
	return &Store{db: ldb}, nil
}

// Close releases the underlying leveldb handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type blockRecord struct {
	Fork               blocks.ForkName
	Slot               primitives.Slot
	ProposerIndex      uint64
	ParentRoot         [32]byte
	StateRoot          [32]byte
	BlobKzgCommitments [][]byte
	Signature          []byte
	Root               [32]byte
}

func encodeBlock(b blocks.ROBlock) ([]byte, error) {
	commitments, err := b.Block().Body().BlobKzgCommitments()
	if err != nil {
		return nil, err
	}
	rec := blockRecord{
		Fork:               b.Block().Fork(),
		Slot:               b.Block().Slot(),
		ProposerIndex:      b.Block().ProposerIndex(),
		ParentRoot:         b.Block().ParentRoot(),
		StateRoot:          b.Block().StateRoot(),
		BlobKzgCommitments: commitments,
		Signature:          b.Signature(),
		Root:               b.Root(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, errors.Wrap(err, "failed to encode block record")
	}
	return buf.Bytes(), nil
}

func decodeBlock(raw []byte) (blocks.ROBlock, error) {
	var rec blockRecord
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&rec); err != nil {
		return blocks.ROBlock{}, errors.Wrap(err, "failed to decode block record")
	}
	sb := blocks.NewSignedBeaconBlock(rec.Fork, rec.Slot, rec.ProposerIndex, rec.ParentRoot, rec.StateRoot, rec.BlobKzgCommitments, rec.Signature)
	return blocks.NewROBlockWithRoot(sb, rec.Root)
}

func slotKey(slot primitives.Slot, root [32]byte) []byte {
	key := make([]byte, 0, len(blockSlotPrefix)+8+32)
	key = append(key, blockSlotPrefix...)
	var slotBytes [8]byte
	binary.BigEndian.PutUint64(slotBytes[:], uint64(slot))
	key = append(key, slotBytes[:]...)
	key = append(key, root[:]...)
	return key
}

// SaveBlock persists b, keyed by root, with a secondary slot-ordered index
// used by DeleteBlocksBelowSlot.
func (s *Store) SaveBlock(_ context.Context, b blocks.ROBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := encodeBlock(b)
	if err != nil {
		return err
	}
	root := b.Root()
	batch := new(leveldb.Batch)
	batch.Put(append(append([]byte{}, blockPrefix...), root[:]...), raw)
	batch.Put(slotKey(b.Block().Slot(), root), root[:])
	return s.db.Write(batch, nil)
}

// Block returns the block stored under root, or db.ErrNotFound.
func (s *Store) Block(_ context.Context, root [32]byte) (blocks.ROBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.db.Get(append(append([]byte{}, blockPrefix...), root[:]...), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return blocks.ROBlock{}, db.ErrNotFound
		}
		return blocks.ROBlock{}, err
	}
	return decodeBlock(raw)
}

// HasBlock reports whether root has a stored block.
func (s *Store) HasBlock(_ context.Context, root [32]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.db.Has(append(append([]byte{}, blockPrefix...), root[:]...), nil)
	return err == nil && ok
}

// DeleteBlocksBelowSlot batch-deletes every block strictly below slot,
// using the slot-ordered secondary index to avoid a full table scan.
func (s *Store) DeleteBlocksBelowSlot(_ context.Context, slot primitives.Slot) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rng := util.BytesPrefix(blockSlotPrefix)
	iter := s.db.NewIterator(rng, nil)
	defer iter.Release()

	cutoff := slotKey(slot, [32]byte{})
	batch := new(leveldb.Batch)
	deleted := 0
	for iter.Next() {
		key := iter.Key()
		if bytes.Compare(key, cutoff) >= 0 {
			break
		}
		var root [32]byte
		copy(root[:], iter.Value())
		batch.Delete(append(append([]byte{}, blockPrefix...), root[:]...))
		batch.Delete(append([]byte{}, key...))
		deleted++
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, nil
	}
	if err := s.db.Write(batch, nil); err != nil {
		return 0, err
	}
	log.WithField("count", deleted).WithField("belowSlot", slot).Debug("pruned blocks below horizon")
	return deleted, nil
}

// BlocksBySlotRange returns every stored block with start <= slot < end,
// in ascending slot order, using the slot-ordered secondary index.
func (s *Store) BlocksBySlotRange(_ context.Context, start, end primitives.Slot) ([]blocks.ROBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo := slotKey(start, [32]byte{})
	hi := slotKey(end, [32]byte{})
	iter := s.db.NewIterator(&util.Range{Start: lo, Limit: hi}, nil)
	defer iter.Release()

	var out []blocks.ROBlock
	for iter.Next() {
		var root [32]byte
		copy(root[:], iter.Value())
		raw, err := s.db.Get(append(append([]byte{}, blockPrefix...), root[:]...), nil)
		if err != nil {
			return nil, err
		}
		b, err := decodeBlock(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

func archiveKey(epoch primitives.Epoch) []byte {
	key := make([]byte, 0, len(archivePrefix)+8)
	key = append(key, archivePrefix...)
	var epochBytes [8]byte
	binary.BigEndian.PutUint64(epochBytes[:], uint64(epoch))
	return append(key, epochBytes[:]...)
}

// ArchiveBlock copies b into the archive keyspace under epoch, outside
// the hot block store's slot-ordered index so DeleteBlocksBelowSlot never
// touches it.
func (s *Store) ArchiveBlock(_ context.Context, epoch primitives.Epoch, b blocks.ROBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := encodeBlock(b)
	if err != nil {
		return err
	}
	return s.db.Put(archiveKey(epoch), raw, nil)
}

// ArchivedBlock returns the block archived under epoch, or db.ErrNotFound.
func (s *Store) ArchivedBlock(_ context.Context, epoch primitives.Epoch) (blocks.ROBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.db.Get(archiveKey(epoch), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return blocks.ROBlock{}, db.ErrNotFound
		}
		return blocks.ROBlock{}, err
	}
	return decodeBlock(raw)
}

type checkpointRecord struct {
	Epoch primitives.Epoch
	Root  [32]byte
}

// SaveFinalizedCheckpoint persists the current finalized checkpoint.
func (s *Store) SaveFinalizedCheckpoint(_ context.Context, epoch primitives.Epoch, root [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(checkpointRecord{Epoch: epoch, Root: root}); err != nil {
		return err
	}
	return s.db.Put(finalizedCheckpoint, buf.Bytes(), nil)
}

// FinalizedCheckpoint returns the persisted finalized checkpoint, or the
// zero checkpoint if none has been saved yet.
func (s *Store) FinalizedCheckpoint(_ context.Context) (primitives.Epoch, [32]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.db.Get(finalizedCheckpoint, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return 0, [32]byte{}, nil
		}
		return 0, [32]byte{}, err
	}
	var rec checkpointRecord
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&rec); err != nil {
		return 0, [32]byte{}, err
	}
	return rec.Epoch, rec.Root, nil
}
