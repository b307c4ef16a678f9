package execution

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseJWTSecret(t *testing.T) {
	t.Run("valid with prefix", func(t *testing.T) {
		raw := "0x" + "11223344556677889900aabbccddeeff11223344556677889900aabbccddee"
		secret, err := ParseJWTSecret(raw)
		require.NoError(t, err)
		require.Len(t, secret, 32)
	})

	t.Run("valid without prefix", func(t *testing.T) {
		raw := "11223344556677889900aabbccddeeff11223344556677889900aabbccddee"
		secret, err := ParseJWTSecret(raw)
		require.NoError(t, err)
		require.Len(t, secret, 32)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := ParseJWTSecret("0xabcd")
		require.ErrorContains(t, err, "32 bytes")
	})

	t.Run("not hex", func(t *testing.T) {
		_, err := ParseJWTSecret("not-hex-at-all-zz")
		require.Error(t, err)
	})
}
