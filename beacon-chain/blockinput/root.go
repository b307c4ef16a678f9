package blockinput

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// hexToRoot decodes a "0x"-prefixed hex string into a 32-byte root, the
// same go-ethereum decoder beacon-chain/execution uses for execution-layer
// hex fields. BlockRootHex is carried as a string throughout this package
// (gossip and req/resp both hand roots around as hex) rather than
// threading [32]byte through every map key and log field.
func hexToRoot(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hexutil.Decode(s)
	if err != nil {
		return out, errors.Wrapf(err, "invalid root hex %q", s)
	}
	if len(b) != 32 {
		return out, errors.Errorf("invalid root length %d for %q", len(b), s)
	}
	copy(out[:], b)
	return out, nil
}

// rootToHex encodes a 32-byte root as a "0x"-prefixed lowercase hex string.
func rootToHex(r [32]byte) string {
	return hexutil.Encode(r[:])
}
