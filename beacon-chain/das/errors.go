// Package das implements the data-availability check a block must pass
// before the pipeline orchestrator hands it to state-transition: every
// blob-KZG-commitment in the block body must have a corresponding
// sidecar, either already verified and persisted or verifiable right
// now from what has been collected.
package das

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrDuplicateSidecar names the case of a sidecar arriving again at an
// already-stored index for the same root. Persist does not return it: it
// skips such a sidecar silently.
var ErrDuplicateSidecar = errors.New("sidecar already persisted at this index")

var errIndexOutOfBounds = errors.New("blob index exceeds configured MaxBlobsPerBlock")

// MissingIndicesError reports which commitment indices IsDataAvailable
// could not find a verified sidecar for.
type MissingIndicesError struct {
	root    [32]byte
	missing []uint64
}

func (e *MissingIndicesError) Error() string {
	return fmt.Sprintf("root %x missing %d blob sidecar(s)", e.root, len(e.missing))
}

// Missing returns the commitment indices that are not yet available.
func (e *MissingIndicesError) Missing() []uint64 {
	return e.missing
}

// CommitmentMismatchError reports a stored sidecar whose commitment does
// not match the block body's commitment at the same index.
type CommitmentMismatchError struct {
	root  [32]byte
	index uint64
}

func (e *CommitmentMismatchError) Error() string {
	return fmt.Sprintf("root %x: sidecar at index %d does not match the block's commitment", e.root, e.index)
}

// Mismatch returns the offending index.
func (e *CommitmentMismatchError) Mismatch() uint64 {
	return e.index
}
