package config

import "time"

type SecurityConfig interface {
	GetSignatureSecret() string
	GetSessionSecret() string
	GetTurnstileSecretKey() string
	GetSessionMaxAge() time.Duration
	GetDeviceCookieMaxAge() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSignatureSecret returns the HMAC key shared with the upstream API.
// Every outbound request is signed with it; the server cannot start without one.
func (Security) GetSignatureSecret() string {
	return GetEnv("SIGNATURE_SECRET", "")
}

// GetSessionSecret returns the key material for the encrypted session cookie
func (Security) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

func (Security) GetTurnstileSecretKey() string {
	return GetEnv("TURNSTILE_SECRET_KEY", "")
}

func (Security) GetSessionMaxAge() time.Duration {
	return 30 * 24 * time.Hour // matches the upstream refresh token lifetime
}

func (Security) GetDeviceCookieMaxAge() time.Duration {
	return 365 * 24 * time.Hour // device identity outlives any session
}
