// Package types holds small value types shared between the fork-choice
// engine and its callers, kept in their own package so the protoarray
// implementation and its interface can both import them without a cycle.
package types

import "github.com/orovalt/sentrybeacon/consensus-types/primitives"

// Checkpoint is a justified or finalized (epoch, root) pair.
type Checkpoint struct {
	Epoch primitives.Epoch
	Root  [32]byte
}
