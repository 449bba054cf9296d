package session

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fendriknuruljadid/astrovia-app/internal/errors"
	"github.com/go-jose/go-jose/v4"
	"golang.org/x/crypto/hkdf"
)

const encryptionKeyInfo = "Astrovia Session Encryption Key"

// Codec encodes a session record into a compact JWE and back. The content
// key is derived from the session secret with HKDF-SHA256, so rotating the
// secret invalidates every outstanding cookie at once.
type Codec struct {
	key []byte
}

// NewCodec derives the encryption key from the configured session secret.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.ErrSecretNotConfigured
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(encryptionKeyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}

	return &Codec{key: key}, nil
}

// Encode serialises and encrypts a record into a compact JWE string.
func (c *Codec) Encode(rec *Record) (string, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal session record: %w", err)
	}

	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: c.key},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("create session encrypter: %w", err)
	}

	obj, err := encrypter.Encrypt(payload)
	if err != nil {
		return "", fmt.Errorf("encrypt session record: %w", err)
	}

	serialized, err := obj.CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("serialize session record: %w", err)
	}
	return serialized, nil
}

// Decode decrypts a compact JWE back into a record. Any tampering with the
// token surfaces as ErrSessionDecode.
func (c *Codec) Decode(token string) (*Record, error) {
	obj, err := jose.ParseEncrypted(token,
		[]jose.KeyAlgorithm{jose.DIRECT},
		[]jose.ContentEncryption{jose.A256GCM},
	)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSessionDecode, "parse session token: %s", err.Error())
	}

	payload, err := obj.Decrypt(c.key)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSessionDecode, "decrypt session token: %s", err.Error())
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, errors.Wrapf(errors.ErrSessionDecode, "unmarshal session record: %s", err.Error())
	}
	return &rec, nil
}
