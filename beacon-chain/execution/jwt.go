package execution

import (
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// jwtTransport signs a fresh engine-API bearer token on every outbound
// request. The engine API spec requires iat to be within 60 seconds of
// the server's clock, so the token cannot be cached across calls.
type jwtTransport struct {
	secret []byte
	base   http.RoundTripper
}

func newJWTTransport(secret []byte) *jwtTransport {
	base := http.DefaultTransport
	return &jwtTransport{secret: secret, base: base}
}

func (t *jwtTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt: jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign engine API JWT")
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+signed)
	return t.base.RoundTrip(req)
}

// ParseJWTSecret decodes a hex-encoded 32-byte engine API JWT secret, the
// format written by execution clients to a jwt.hex file.
func ParseJWTSecret(hexEncoded string) ([]byte, error) {
	hexEncoded = strings.TrimPrefix(strings.TrimSpace(hexEncoded), "0x")
	secret, err := hex.DecodeString(hexEncoded)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode JWT secret")
	}
	if len(secret) != 32 {
		return nil, errors.Errorf("engine API JWT secret must be 32 bytes, got %d", len(secret))
	}
	return secret, nil
}
