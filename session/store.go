package session

import (
	"fmt"
	"net/http"

	"github.com/fendriknuruljadid/astrovia-app/internal/errors"
)

// CookieName is the encrypted session cookie.
const CookieName = "astrovia_session"

// Store reads and rewrites the session cookie. Writes are read-decode-
// merge-encode-write with no isolation of their own; correctness under
// concurrency relies on the refresh coordinator's single-flight discipline
// ensuring one writer per staleness window per process.
type Store struct {
	codec  *Codec
	secure bool
	maxAge int
}

// NewStore creates a cookie-backed session store. secure should be true
// outside local development so the cookie is only sent over HTTPS.
func NewStore(codec *Codec, secure bool, maxAgeSeconds int) *Store {
	return &Store{codec: codec, secure: secure, maxAge: maxAgeSeconds}
}

// Read returns the session record, or (nil, nil) when no cookie is
// present. A cookie that fails to decode is reported as ErrSessionDecode.
func (s *Store) Read(r *http.Request) (*Record, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	return s.codec.Decode(cookie.Value)
}

// Set writes a full record, replacing whatever was there. Used at login.
func (s *Store) Set(w http.ResponseWriter, rec *Record) error {
	token, err := s.codec.Encode(rec)
	if err != nil {
		return err
	}
	s.setCookie(w, token, s.maxAge)
	return nil
}

// Write merges a token update into the current record and re-encodes it.
// The update must carry the complete triple; expiry never moves backward
// across successive writes for the same session.
func (s *Store) Write(w http.ResponseWriter, r *http.Request, upd TokenUpdate) error {
	if upd.AccessToken == "" || upd.RefreshToken == "" || upd.ExpiresAt.IsZero() {
		return fmt.Errorf("session write requires access token, refresh token and expiry")
	}

	rec, err := s.Read(r)
	if err != nil {
		return err
	}
	if rec == nil {
		return errors.ErrUnauthenticated
	}

	rec.AccessToken = upd.AccessToken
	rec.RefreshToken = upd.RefreshToken
	if upd.ExpiresAt.After(rec.ExpiresAt) {
		rec.ExpiresAt = upd.ExpiresAt
	}
	rec.Error = FailureNone

	return s.Set(w, rec)
}

// MarkRefreshFailed rewrites the record with the sticky failure tag so
// every tab sharing the session observes the forced sign-out on its next
// check, not just the caller that triggered the refresh.
func (s *Store) MarkRefreshFailed(w http.ResponseWriter, r *http.Request) error {
	rec, err := s.Read(r)
	if err != nil || rec == nil {
		return err
	}
	rec.Error = FailureRefreshFailed
	return s.Set(w, rec)
}

// Clear expires the session cookie.
func (s *Store) Clear(w http.ResponseWriter) {
	s.setCookie(w, "", -1)
}

func (s *Store) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
