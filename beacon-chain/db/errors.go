// Package db declares the Database contract the archiver and pipeline
// orchestrator persist through; db/kv provides the goleveldb-backed
// implementation.
package db

import "github.com/pkg/errors"

// ErrNotFound is returned by read operations when the requested key does
// not exist. Callers compare against it with IsNotFound rather than
// errors.Is directly so kv-layer wrapping stays an implementation detail.
var ErrNotFound = errors.New("requested key not found in database")

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
