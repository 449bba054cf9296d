// Package device reads the long-lived per-browser device identifier.
// The resolver is strictly a reader: generation is centralised in the
// route guard so that concurrent tabs never mint competing ids.
package device

import (
	"net/http"
	"strings"
)

// CookieName is the device identity cookie, shared with the route guard.
const CookieName = "device_id"

// FromRequest reads the device id from the request's cookie jar.
func FromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// FromCookieHeader parses a raw Cookie header. Used where no *http.Request
// is available, only the ambient header text.
func FromCookieHeader(header string) (string, bool) {
	for _, part := range strings.Split(header, ";") {
		name, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found || name != CookieName {
			continue
		}
		if value == "" {
			return "", false
		}
		return value, true
	}
	return "", false
}
