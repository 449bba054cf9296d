// Package signing produces the per-request timestamp + HMAC pair that
// proves request origin to the upstream Astrovia API. The signature is
// independent of the bearer token and is attached to every outbound call,
// authenticated or not.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/fendriknuruljadid/astrovia-app/internal/errors"
)

// NowFunc returns the current time. It can be overridden in tests.
var NowFunc = time.Now

// Envelope is the ephemeral timestamp + signature pair for one request.
// It is recomputed per call and never reused.
type Envelope struct {
	Timestamp string
	Signature string
}

// Signer signs request timestamps with the process-wide signature secret.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer. It fails when the secret is unconfigured:
// without it no signed request can be produced, so the caller should treat
// this as fatal at startup.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.ErrSecretNotConfigured
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign returns a fresh envelope for the current instant.
func (s *Signer) Sign() Envelope {
	timestamp := NowFunc().UTC().Format(time.RFC3339)
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(timestamp))

	return Envelope{
		Timestamp: timestamp,
		Signature: hex.EncodeToString(mac.Sum(nil)),
	}
}
