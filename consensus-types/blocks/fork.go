package blocks

// ForkName identifies which beacon-chain fork a block belongs to. BlockInput
// uses it to select which DA sub-type (PreData/Blobs/Columns) a given root
// requires.
type ForkName string

const (
	ForkPhase0   ForkName = "phase0"
	ForkAltair   ForkName = "altair"
	ForkBellatrix ForkName = "bellatrix"
	ForkCapella  ForkName = "capella"
	ForkDeneb    ForkName = "deneb"
	ForkElectra  ForkName = "electra"
	ForkFulu     ForkName = "fulu"
)

// HasBlobs reports whether blocks of this fork carry blob-KZG-commitments
// and are therefore DA-checked via BlobSidecars.
func (f ForkName) HasBlobs() bool {
	return f == ForkDeneb || f == ForkElectra
}

// HasColumns reports whether blocks of this fork are DA-checked via the
// Fulu extended-blob-matrix ColumnSidecars instead of whole blobs.
func (f ForkName) HasColumns() bool {
	return f == ForkFulu
}
