package filesystem

import (
	"fmt"

	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// epochBucketPeriod groups this many epochs under one directory, so a
// long-retention node never lists a single directory with one entry per
// root over its whole history.
const epochBucketPeriod = primitives.Epoch(256)

// blobIdent addresses a single stored sidecar.
type blobIdent struct {
	root  [32]byte
	epoch primitives.Epoch
	index uint64
}

func newBlobIdent(root [32]byte, epoch primitives.Epoch, index uint64) blobIdent {
	return blobIdent{root: root, epoch: epoch, index: index}
}

// periodicEpochLayout maps a blobIdent to a path under baseDir, bucketing
// by epoch/epochBucketPeriod so pruning a bucket is a single directory
// removal rather than a per-root walk.
type periodicEpochLayout struct {
	baseDir string
}

func (l periodicEpochLayout) bucket(epoch primitives.Epoch) primitives.Epoch {
	return epoch / epochBucketPeriod
}

func (l periodicEpochLayout) dir(ident blobIdent) string {
	return fmt.Sprintf("%s/%d/%x", l.baseDir, l.bucket(ident.epoch), ident.root)
}

// blobPath returns the file path storing ident's encoded sidecar. Named
// independently of the encoding (gob, not SSZ) used to fill it.
func (l periodicEpochLayout) blobPath(ident blobIdent) string {
	return fmt.Sprintf("%s/%d.blob", l.dir(ident), ident.index)
}
