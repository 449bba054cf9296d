package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fendriknuruljadid/astrovia-app/device"
	"github.com/fendriknuruljadid/astrovia-app/session"
)

// entryPaths are the pages a signed-in user has no business visiting.
var entryPaths = map[string]bool{
	RouteHome:  true,
	RouteLogin: true,
}

// protectedPrefixes are the sections that require a usable session.
var protectedPrefixes = []string{
	PrefixDashboard,
	PrefixAstroNova,
	PrefixAstroZenith,
}

func isEntryPath(path string) bool {
	return entryPaths[path]
}

func isProtectedPath(path string) bool {
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// GuardMiddleware runs on page navigations. It seeds the device
// identity cookie when absent and applies the redirect table:
// signed-in visitors on entry pages go to the dashboard, anonymous
// visitors on protected sections go back to the landing page. The
// first rule that matches wins; everything else passes through.
func (s *Server) GuardMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := device.FromRequest(r); !ok {
			http.SetCookie(w, &http.Cookie{
				Name:     device.CookieName,
				Value:    uuid.NewString(),
				Path:     "/",
				MaxAge:   int(s.config.GetDeviceCookieMaxAge().Seconds()),
				HttpOnly: true,
				Secure:   s.config.GetEnv() != "DEV",
				SameSite: http.SameSiteLaxMode,
			})
		}

		authed := s.hasUsableSession(w, r)
		switch {
		case isEntryPath(r.URL.Path) && authed:
			http.Redirect(w, r, RouteDashboard, http.StatusTemporaryRedirect)
			return
		case isProtectedPath(r.URL.Path) && !authed:
			http.Redirect(w, r, RouteHome, http.StatusTemporaryRedirect)
			return
		}
		next(w, r)
	}
}

// hasUsableSession reports whether the request carries a session that
// can still back authenticated calls. Undecodable cookies and sessions
// marked by a failed refresh are treated as absent, and the stale
// cookie is cleared so the browser stops presenting it.
func (s *Server) hasUsableSession(w http.ResponseWriter, r *http.Request) bool {
	rec, err := s.sessions.Read(r)
	if err != nil {
		s.sessions.Clear(w)
		return false
	}
	if rec == nil {
		return false
	}
	if rec.Error != session.FailureNone {
		s.sessions.Clear(w)
		return false
	}
	return rec.HasTokens()
}
