package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fendriknuruljadid/astrovia-app/relay"
	"github.com/fendriknuruljadid/astrovia-app/session"
)

type checkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	CfToken  string `json:"cfToken" validate:"required"`
}

type verifyOTPRequest struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

type createPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// oauthStateCookie carries the anti-forgery state between the Google
// redirect and the callback.
const oauthStateCookie = "astrovia_oauth_state"

// CheckHandler classifies an email into the wizard step that should
// come next.
func (s *Server) CheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkRequest
		if err := s.decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "a valid email is required")
			return
		}
		step, resp, err := s.auth.Classify(r.Context(), w, r, req.Email)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}
		if !resp.Success {
			writeEnvelope(w, resp)
			return
		}
		data, _ := json.Marshal(map[string]string{"step": string(step)})
		writeJSON(w, http.StatusOK, relay.Response{
			Success: true,
			Message: resp.Message,
			Code:    http.StatusOK,
			Data:    data,
		})
	}
}

// LoginHandler signs in with email and password behind a captcha check.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := s.decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "email, password and captcha token are required")
			return
		}
		resp, err := s.auth.LoginWithCredentials(r.Context(), w, r, req.Email, req.Password, req.CfToken)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}
		writeEnvelope(w, resp)
	}
}

// GoogleRedirectHandler sends the browser to Google's consent screen.
func (s *Server) GoogleRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     "/",
			MaxAge:   600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, s.auth.AuthCodeURL(state), http.StatusTemporaryRedirect)
	}
}

// GoogleCallbackHandler completes the OAuth sign-in and lands the
// browser on the dashboard.
func (s *Server) GoogleCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stateCookie, err := r.Cookie(oauthStateCookie)
		if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
			log.Warn().Msg("oauth callback with mismatched state")
			http.Redirect(w, r, RouteHome+"?error=OAuthState", http.StatusTemporaryRedirect)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Redirect(w, r, RouteHome+"?error=OAuthDenied", http.StatusTemporaryRedirect)
			return
		}
		resp, err := s.auth.LoginWithGoogle(r.Context(), w, r, code)
		if err != nil || !resp.Success {
			log.Warn().Err(err).Str("message", resp.Message).Msg("google sign-in failed")
			http.Redirect(w, r, RouteHome+"?error=LoginFailed", http.StatusTemporaryRedirect)
			return
		}
		http.Redirect(w, r, RouteDashboard, http.StatusTemporaryRedirect)
	}
}

// VerifyOTPHandler checks a verification code against the current
// login flow.
func (s *Server) VerifyOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyOTPRequest
		if err := s.decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "a 6-digit code is required")
			return
		}
		resp, err := s.auth.VerifyOTP(r.Context(), w, r, req.OTP)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}
		writeEnvelope(w, resp)
	}
}

// ResendOTPHandler requests a fresh verification code and resets the
// attempt budget.
func (s *Server) ResendOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.auth.ResendOTP(r.Context(), w, r)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}
		writeEnvelope(w, resp)
	}
}

// CreatePasswordHandler sets the first password for an account that
// signed up without one.
func (s *Server) CreatePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPasswordRequest
		if err := s.decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "a password of at least 8 characters is required")
			return
		}
		resp, err := s.auth.CreatePassword(r.Context(), w, r, req.Password)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}
		writeEnvelope(w, resp)
	}
}

// LogoutHandler revokes the upstream session best-effort and always
// clears the local cookies.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.auth.Logout(r.Context(), w, r)
		writeJSON(w, http.StatusOK, relay.Response{
			Success: true,
			Message: "signed out",
			Code:    http.StatusOK,
		})
	}
}

// MeHandler returns the identity stored in the session record.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := s.sessions.Read(r)
		if err != nil || rec == nil || !rec.HasTokens() || rec.Error != session.FailureNone {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		data, _ := json.Marshal(map[string]string{
			"email":      rec.Email,
			"first_name": rec.FirstName,
			"last_name":  rec.LastName,
			"phone":      rec.Phone,
		})
		writeJSON(w, http.StatusOK, relay.Response{
			Success: true,
			Code:    http.StatusOK,
			Data:    data,
		})
	}
}
