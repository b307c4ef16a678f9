package archiver

import "github.com/pkg/errors"

// Strategy picks how the coordinator decides whether a newly finalized
// checkpoint gets archived to cold storage.
type Strategy int

const (
	// StrategyFrequency archives every ArchiveStateEpochFrequency epochs.
	StrategyFrequency Strategy = iota
	// StrategyDifferential is reserved for a future delta-encoded archive
	// format; selecting it is rejected rather than silently falling back
	// to Frequency.
	StrategyDifferential
)

// ErrDifferentialUnimplemented is returned by shouldArchive when the
// coordinator is configured with StrategyDifferential.
var ErrDifferentialUnimplemented = errors.New("differential archive strategy is not implemented")
