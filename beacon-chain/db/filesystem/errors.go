// Package filesystem implements BlobStorage, the on-disk blob sidecar
// store the node opens at startup and the DA store persists into,
// separate from beacon-chain/db/kv's block/checkpoint keyspace because
// sidecars are large, append-mostly, and pruned on a different horizon.
package filesystem

import (
	"github.com/pkg/errors"

	"github.com/orovalt/sentrybeacon/beacon-chain/db"
)

// ErrNotFound is db.ErrNotFound, returned when a sidecar is requested for
// a (root, index) pair that has never been saved, so callers can test
// with the shared db.IsNotFound regardless of which store rejected them.
var ErrNotFound = db.ErrNotFound

var errIndexOutOfBounds = errors.New("blob index exceeds configured MaxBlobsPerBlock")
