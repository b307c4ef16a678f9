package filesystem

import (
	"bytes"
	"context"
	"encoding/gob"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/orovalt/sentrybeacon/config/params"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
	"github.com/orovalt/sentrybeacon/time/slots"
)

var log = logrus.WithField("prefix", "db/filesystem")

// rootEntry is the cache's view of one block root's stored sidecars: the
// epoch it was bucketed under (needed to rebuild its path without a
// directory walk) and which indices are present.
type rootEntry struct {
	epoch   primitives.Epoch
	indices []bool
}

// BlobStorage persists VerifiedROBlob sidecars to a filesystem, laid out
// by periodicEpochLayout and backed by an afero.Fs so production runs
// against the OS filesystem and tests run against an in-memory one.
type BlobStorage struct {
	fs     afero.Fs
	layout periodicEpochLayout

	mu    sync.RWMutex
	cache map[[32]byte]*rootEntry
}

// Option configures a BlobStorage at construction time.
type Option func(*BlobStorage)

// WithBasePath roots the store at dir on the OS filesystem.
func WithBasePath(dir string) Option {
	return func(b *BlobStorage) {
		b.fs = afero.NewOsFs()
		b.layout = periodicEpochLayout{baseDir: dir}
	}
}

// WithFs overrides the filesystem implementation, used by tests to run
// against an in-memory afero.MemMapFs while keeping the same baseDir
// bookkeeping logic under test.
func WithFs(fs afero.Fs, baseDir string) Option {
	return func(b *BlobStorage) {
		b.fs = fs
		b.layout = periodicEpochLayout{baseDir: baseDir}
	}
}

// NewBlobStorage builds a BlobStorage and warms its index cache from
// whatever is already on disk under its configured base path.
func NewBlobStorage(opts ...Option) (*BlobStorage, error) {
	b := &BlobStorage{cache: make(map[[32]byte]*rootEntry)}
	for _, o := range opts {
		o(b)
	}
	if b.fs == nil {
		return nil, errors.New("filesystem: no base path or filesystem configured")
	}
	if err := b.fs.MkdirAll(b.layout.baseDir, 0700); err != nil {
		return nil, errors.Wrap(err, "failed to create blob storage base directory")
	}
	if err := b.warmCache(); err != nil {
		return nil, errors.Wrap(err, "failed to warm blob storage cache")
	}
	return b, nil
}

// NewEphemeralBlobStorage returns a BlobStorage backed by a fresh
// in-memory filesystem, for tests that don't care about the underlying
// afero.Fs.
func NewEphemeralBlobStorage() (*BlobStorage, error) {
	b, _, err := NewEphemeralBlobStorageAndFs()
	return b, err
}

// NewEphemeralBlobStorageAndFs is NewEphemeralBlobStorage but also returns
// the backing afero.Fs, for tests that want to inspect written files
// directly.
func NewEphemeralBlobStorageAndFs() (*BlobStorage, afero.Fs, error) {
	fs := afero.NewMemMapFs()
	b, err := NewEphemeralBlobStorageUsingFs(fs)
	return b, fs, err
}

// NewEphemeralBlobStorageUsingFs builds an ephemeral BlobStorage over a
// caller-supplied afero.Fs, for tests that pre-populate fs before
// construction to exercise warmCache.
func NewEphemeralBlobStorageUsingFs(fs afero.Fs) (*BlobStorage, error) {
	return NewBlobStorage(WithFs(fs, "/blobs"))
}

type blobRecord struct {
	Index         uint64
	KzgCommitment []byte
	KzgProof      []byte
	BlockRoot     [32]byte
	Slot          primitives.Slot
}

// Save writes sc to disk and records its presence in the index cache.
// Saving the same (root, index) twice overwrites the prior file, matching
// the store's dedup contract (callers check Indices before calling Save
// when overwrite should be rejected).
func (b *BlobStorage) Save(_ context.Context, sc blocks.VerifiedROBlob) error {
	maxBlobs := params.BeaconConfig().MaxBlobsPerBlock
	if sc.Index >= uint64(maxBlobs) {
		return errIndexOutOfBounds
	}

	epoch := slots.ToEpoch(sc.Slot)
	ident := newBlobIdent(sc.BlockRoot, epoch, sc.Index)
	rec := blobRecord{
		Index:         sc.Index,
		KzgCommitment: sc.KzgCommitment,
		KzgProof:      sc.KzgProof,
		BlockRoot:     sc.BlockRoot,
		Slot:          sc.Slot,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return errors.Wrap(err, "failed to encode blob record")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.fs.MkdirAll(b.layout.dir(ident), 0700); err != nil {
		return errors.Wrap(err, "failed to create blob directory")
	}
	if err := afero.WriteFile(b.fs, b.layout.blobPath(ident), buf.Bytes(), 0600); err != nil {
		return errors.Wrap(err, "failed to write blob file")
	}

	entry := b.entryLocked(sc.BlockRoot, maxBlobs)
	entry.epoch = epoch
	entry.indices[sc.Index] = true
	return nil
}

// entryLocked returns (creating if absent) the cache entry for root. b.mu
// must already be held.
func (b *BlobStorage) entryLocked(root [32]byte, maxBlobs int) *rootEntry {
	entry, ok := b.cache[root]
	if !ok {
		entry = &rootEntry{indices: make([]bool, maxBlobs)}
		b.cache[root] = entry
	}
	return entry
}

// Get returns the sidecar stored for (root, index), or ErrNotFound.
func (b *BlobStorage) Get(_ context.Context, root [32]byte, index uint64) (blocks.VerifiedROBlob, error) {
	b.mu.RLock()
	entry, ok := b.cache[root]
	var epoch primitives.Epoch
	present := false
	if ok && index < uint64(len(entry.indices)) {
		epoch = entry.epoch
		present = entry.indices[index]
	}
	b.mu.RUnlock()
	if !present {
		return blocks.VerifiedROBlob{}, ErrNotFound
	}

	ident := newBlobIdent(root, epoch, index)
	raw, err := afero.ReadFile(b.fs, b.layout.blobPath(ident))
	if err != nil {
		return blocks.VerifiedROBlob{}, errors.Wrap(err, "failed to read blob file")
	}
	var rec blobRecord
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&rec); err != nil {
		return blocks.VerifiedROBlob{}, errors.Wrap(err, "failed to decode blob record")
	}
	ro, err := blocks.NewROBlob(blocks.BlobSidecar{
		Index:         rec.Index,
		KzgCommitment: rec.KzgCommitment,
		KzgProof:      rec.KzgProof,
		BlockRoot:     rec.BlockRoot,
		Slot:          rec.Slot,
	})
	if err != nil {
		return blocks.VerifiedROBlob{}, err
	}
	return blocks.VerifiedROBlob{ROBlob: ro}, nil
}

// Indices reports, for each index in [0, MaxBlobsPerBlock), whether a
// sidecar has been saved for root. An unknown root returns all-false.
func (b *BlobStorage) Indices(root [32]byte) []bool {
	maxBlobs := params.BeaconConfig().MaxBlobsPerBlock
	out := make([]bool, maxBlobs)

	b.mu.RLock()
	defer b.mu.RUnlock()
	entry, ok := b.cache[root]
	if !ok {
		return out
	}
	copy(out, entry.indices)
	return out
}

// Remove deletes every sidecar stored for root.
func (b *BlobStorage) Remove(root [32]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.cache[root]
	if !ok {
		return nil
	}
	ident := newBlobIdent(root, entry.epoch, 0)
	if err := b.fs.RemoveAll(b.layout.dir(ident)); err != nil {
		return errors.Wrap(err, "failed to remove blob directory")
	}
	delete(b.cache, root)
	return nil
}

// Clear wipes every stored sidecar and resets the index cache.
func (b *BlobStorage) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.fs.RemoveAll(b.layout.baseDir); err != nil {
		return errors.Wrap(err, "failed to clear blob storage")
	}
	if err := b.fs.MkdirAll(b.layout.baseDir, 0700); err != nil {
		return errors.Wrap(err, "failed to recreate blob storage base directory")
	}
	b.cache = make(map[[32]byte]*rootEntry)
	return nil
}

// warmCache walks baseDir/<bucket>/<root-hex>/<index>.blob and rebuilds
// the in-memory index, validating that every file name parses cleanly so
// a corrupt or foreign file under baseDir fails fast at startup rather
// than silently during a later Get.
func (b *BlobStorage) warmCache() error {
	maxBlobs := params.BeaconConfig().MaxBlobsPerBlock

	buckets, err := afero.ReadDir(b.fs, b.layout.baseDir)
	if err != nil {
		return err
	}
	for _, bucket := range buckets {
		if !bucket.IsDir() {
			continue
		}
		bucketPath := filepath.Join(b.layout.baseDir, bucket.Name())
		roots, err := afero.ReadDir(b.fs, bucketPath)
		if err != nil {
			return err
		}
		for _, rootDir := range roots {
			if !rootDir.IsDir() {
				continue
			}
			rootBytes, err := decodeRootHex(rootDir.Name())
			if err != nil {
				return errors.Wrapf(err, "invalid blob root directory %q", rootDir.Name())
			}
			rootPath := filepath.Join(bucketPath, rootDir.Name())
			files, err := afero.ReadDir(b.fs, rootPath)
			if err != nil {
				return err
			}
			entry := b.entryLocked(rootBytes, maxBlobs)
			for _, f := range files {
				idx, err := parseBlobIndex(f.Name())
				if err != nil {
					return errors.Wrapf(err, "invalid blob file %q", f.Name())
				}
				if idx >= maxBlobs {
					return errIndexOutOfBounds
				}
				entry.indices[idx] = true
			}
			if epoch, err := parseBucketEpoch(bucket.Name()); err == nil {
				entry.epoch = epoch * epochBucketPeriod
			}
		}
	}
	log.WithField("roots", len(b.cache)).Debug("warmed blob storage cache")
	return nil
}

func decodeRootHex(name string) ([32]byte, error) {
	var root [32]byte
	if len(name) != 64 {
		return root, errors.New("root directory name is not 32 bytes of hex")
	}
	for i := 0; i < 32; i++ {
		v, err := strconv.ParseUint(name[i*2:i*2+2], 16, 8)
		if err != nil {
			return root, err
		}
		root[i] = byte(v)
	}
	return root, nil
}

func parseBlobIndex(fileName string) (int, error) {
	trimmed := strings.TrimSuffix(fileName, ".blob")
	if trimmed == fileName {
		return 0, errors.New("expected a .blob file")
	}
	return strconv.Atoi(trimmed)
}

func parseBucketEpoch(bucketName string) (primitives.Epoch, error) {
	v, err := strconv.ParseUint(bucketName, 10, 64)
	if err != nil {
		return 0, err
	}
	return primitives.Epoch(v), nil
}
