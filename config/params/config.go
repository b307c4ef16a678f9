// Package params holds the chain-configuration singleton consumed by
// every subsystem: slot/epoch constants, DA retention horizons, and the
// gossip clock-disparity tolerance.
package params

import (
	"sync"

	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// BeaconChainConfig groups every constant that the core subsystems read.
type BeaconChainConfig struct {
	SlotsPerEpoch primitives.Slot

	SecondsPerSlot uint64

	// MinEpochsForBlockRequests bounds how far back the archive horizon reaches
	// for full blocks served over req/resp.
	MinEpochsForBlockRequests primitives.Epoch

	// MinEpochsForBlobSidecarsRequests is MIN_EPOCHS_FOR_BLOB_SIDECARS_REQUESTS.
	MinEpochsForBlobSidecarsRequests primitives.Epoch

	// MinEpochsForColumnSidecarsRequests is MIN_EPOCHS_FOR_COLUMN_SIDECARS_REQUESTS (Fulu).
	MinEpochsForColumnSidecarsRequests primitives.Epoch

	// MaximumGossipClockDisparityMS is the gossip admission future-tolerance, in milliseconds.
	MaximumGossipClockDisparityMS uint64

	// NumberOfColumns is the width of the Fulu extended-blob matrix.
	NumberOfColumns uint64

	// MaxBlobsPerBlock bounds the blob commitment count per block (Deneb/Electra).
	MaxBlobsPerBlock int

	// FinalityHorizonSlots approximates the typical distance between head and
	// finalized slot, used to size SeenBlockProposers' retention window.
	FinalityHorizonSlots primitives.Slot

	// ArchiveStateEpochFrequency is how often (in epochs) the Frequency
	// archive strategy writes a finalized state/block to cold storage.
	ArchiveStateEpochFrequency primitives.Epoch

	ZeroHash [32]byte
}

func mainnetConfig() *BeaconChainConfig {
	return &BeaconChainConfig{
		SlotsPerEpoch:                      32,
		SecondsPerSlot:                     12,
		MinEpochsForBlockRequests:          33024,
		MinEpochsForBlobSidecarsRequests:   4096,
		MinEpochsForColumnSidecarsRequests: 4096,
		MaximumGossipClockDisparityMS:      500,
		NumberOfColumns:                    128,
		MaxBlobsPerBlock:                   6,
		FinalityHorizonSlots:               64,
		ArchiveStateEpochFrequency:         32,
		ZeroHash:                           [32]byte{},
	}
}

var (
	beaconConfig     = mainnetConfig()
	beaconConfigLock sync.RWMutex
)

// BeaconConfig returns the active chain configuration.
func BeaconConfig() *BeaconChainConfig {
	beaconConfigLock.RLock()
	defer beaconConfigLock.RUnlock()
	return beaconConfig
}

// OverrideBeaconConfig replaces the active configuration. Tests use this to
// shrink horizons (e.g. SlotsPerEpoch) without touching production defaults.
func OverrideBeaconConfig(cfg *BeaconChainConfig) {
	beaconConfigLock.Lock()
	defer beaconConfigLock.Unlock()
	beaconConfig = cfg
}

// UseMainnetConfig resets the active configuration to mainnet defaults.
func UseMainnetConfig() {
	OverrideBeaconConfig(mainnetConfig())
}
