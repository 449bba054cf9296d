package authflow

import (
	"net/http"
	"time"

	"github.com/fendriknuruljadid/astrovia-app/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

// FlowCookieName carries the login wizard state between steps.
const FlowCookieName = "astrovia_login_flow"

// flowTokenTTL bounds how long a half-finished login wizard stays usable.
const flowTokenTTL = 30 * time.Minute

// FlowState is the wizard state threaded through the multi-step login:
// which email is being signed in, and the OTP bookkeeping when the account
// still needs verification.
type FlowState struct {
	Email        string
	AttemptsLeft int
	OTPExpiresAt time.Time
}

type flowClaims struct {
	Email        string     `json:"email"`
	AttemptsLeft int        `json:"attempts_left"`
	OTPExpiresAt *time.Time `json:"otp_expired_at,omitempty"`
	jwt.RegisteredClaims
}

// FlowManager signs and reads the login-flow cookie. The token is a plain
// HS256 JWT: the state is not secret, it just must not be forgeable (the
// attempt counter gates OTP submissions client-side).
type FlowManager struct {
	secret []byte
	secure bool
}

func NewFlowManager(secret string, secure bool) (*FlowManager, error) {
	if secret == "" {
		return nil, errors.ErrSecretNotConfigured
	}
	return &FlowManager{secret: []byte(secret), secure: secure}, nil
}

// Issue writes the flow state cookie, replacing any previous one.
func (m *FlowManager) Issue(w http.ResponseWriter, state FlowState) error {
	now := time.Now()
	claims := flowClaims{
		Email:        state.Email,
		AttemptsLeft: state.AttemptsLeft,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flowTokenTTL)),
		},
	}
	if !state.OTPExpiresAt.IsZero() {
		claims.OTPExpiresAt = &state.OTPExpiresAt
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return errors.Wrapf(err, "sign flow token")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlowCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(flowTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the current flow state or ErrFlowStateMissing when there is
// no usable cookie.
func (m *FlowManager) Read(r *http.Request) (*FlowState, error) {
	cookie, err := r.Cookie(FlowCookieName)
	if err != nil || cookie.Value == "" {
		return nil, errors.ErrFlowStateMissing
	}

	var claims flowClaims
	_, err = jwt.ParseWithClaims(cookie.Value, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrFlowStateMissing
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrFlowStateMissing, "parse flow token: %s", err.Error())
	}

	state := &FlowState{
		Email:        claims.Email,
		AttemptsLeft: claims.AttemptsLeft,
	}
	if claims.OTPExpiresAt != nil {
		state.OTPExpiresAt = *claims.OTPExpiresAt
	}
	return state, nil
}

// Clear drops the flow cookie once the wizard completes.
func (m *FlowManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlowCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
