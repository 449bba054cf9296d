package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fendriknuruljadid/astrovia-app/internal/errors"
	"github.com/fendriknuruljadid/astrovia-app/relay"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encoding response")
	}
}

// writeEnvelope forwards a normalized upstream envelope to the browser,
// reusing the envelope's code as the HTTP status.
func writeEnvelope(w http.ResponseWriter, resp relay.Response) {
	status := resp.Code
	if status < 100 || status > 599 {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, relay.Response{Success: false, Message: message, Code: status})
}

// writeAuthError maps the auth-state errors surfaced by the relay and
// the auth controller onto HTTP responses. Anything unrecognized is an
// internal failure.
func (s *Server) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, errors.ErrRefreshFailed):
		writeError(w, http.StatusUnauthorized, "session expired, please sign in again")
	case errors.Is(err, errors.ErrCaptchaFailed):
		writeError(w, http.StatusForbidden, "captcha verification failed")
	case errors.Is(err, errors.ErrFlowStateMissing):
		writeError(w, http.StatusBadRequest, "login flow expired, please start over")
	case errors.Is(err, errors.ErrOTPAttemptsExhausted):
		writeJSON(w, http.StatusBadRequest, relay.Response{
			Success: false,
			Message: "verification attempts exhausted, request a new code",
			Code:    http.StatusBadRequest,
			Data:    json.RawMessage(`{"resend_required":true}`),
		})
	case errors.Is(err, errors.ErrOTPExpired):
		writeJSON(w, http.StatusBadRequest, relay.Response{
			Success: false,
			Message: "verification code expired, request a new code",
			Code:    http.StatusBadRequest,
			Data:    json.RawMessage(`{"resend_required":true}`),
		})
	case errors.Is(err, errors.ErrLoginFailed):
		writeError(w, http.StatusUnauthorized, "login failed")
	default:
		log.Error().Err(err).Msg("unhandled auth error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeValid decodes a JSON request body into dst and validates it.
func (s *Server) decodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrapf(err, "decoding request body")
	}
	if err := s.validate.Struct(dst); err != nil {
		return errors.Wrapf(err, "validating request body")
	}
	return nil
}
