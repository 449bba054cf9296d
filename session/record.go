// Package session owns the encrypted cookie-backed session record: the
// access/refresh token pair, its expiry, and the identity fields captured
// at login. The record is written by the auth flow, read on every relayed
// request, and conditionally rewritten by the token refresh coordinator.
package session

import "time"

// FailureTag marks a server-side failure tied to the session. A non-empty
// tag forces a client-side sign-out on the next observation.
type FailureTag string

const (
	FailureNone          FailureTag = ""
	FailureLoginFailed   FailureTag = "LoginFailed"
	FailureRefreshFailed FailureTag = "RefreshFailed"
)

// Record is the unit of authentication state. AccessToken and RefreshToken
// are always present together or absent together; no component updates one
// without the other.
type Record struct {
	AccessToken  string     `json:"appToken,omitempty"`
	RefreshToken string     `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time  `json:"expired,omitempty"`
	Error        FailureTag `json:"error,omitempty"`

	// Identity fields, informational only. The relay never reads them.
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// HasTokens reports whether the record carries a complete token triple.
func (r *Record) HasTokens() bool {
	return r.AccessToken != "" && r.RefreshToken != "" && !r.ExpiresAt.IsZero()
}

// TokenUpdate is the only mutation the store accepts for an existing
// record. Carrying all three fields in one value makes the
// both-or-neither invariant structural.
type TokenUpdate struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
