// Package authflow orchestrates the multi-step login wizard: email
// classification, captcha-gated credential sign-in, Google OAuth, OTP
// verification, password creation, and the token bootstrap that populates
// the session record.
package authflow

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fendriknuruljadid/astrovia-app/internal/errors"
	"github.com/fendriknuruljadid/astrovia-app/internal/utils"
	"github.com/fendriknuruljadid/astrovia-app/relay"
	"github.com/fendriknuruljadid/astrovia-app/session"
	"github.com/fendriknuruljadid/astrovia-app/token"
	"github.com/fendriknuruljadid/astrovia-app/upstream"
	"github.com/rs/zerolog/log"
)

// Step is the next wizard step the UI should render for an email.
type Step string

const (
	StepOAuth          Step = "oauth"
	StepPassword       Step = "password"
	StepOTP            Step = "otp"
	StepCreatePassword Step = "create-password"
)

// MaxOTPAttempts is the fixed verification budget per issued code.
const MaxOTPAttempts = 5

// Google-hosted address domains short-circuit straight to OAuth without an
// account-state lookup.
var oauthDomains = []string{"@gmail.com", "@googlemail.com"}

// PublicAPI is the unauthenticated slice of the relay used by the login
// flow; every call here precedes a session.
type PublicAPI interface {
	PublicPost(ctx context.Context, r *http.Request, path string, body any) relay.Response
}

// Controller drives the login wizard and owns all session-record writes on
// the authentication paths.
type Controller struct {
	api      PublicAPI
	sessions *session.Store
	flows    *FlowManager
	captcha  CaptchaVerifier
	google   GoogleExchanger
}

func NewController(api PublicAPI, sessions *session.Store, flows *FlowManager, captcha CaptchaVerifier, google GoogleExchanger) *Controller {
	return &Controller{
		api:      api,
		sessions: sessions,
		flows:    flows,
		captcha:  captcha,
		google:   google,
	}
}

// Classify routes an email to its wizard step. Google-hosted addresses go
// straight to OAuth with no upstream call; anything else is looked up for
// {has_password, is_verified} account state.
func (c *Controller) Classify(ctx context.Context, w http.ResponseWriter, r *http.Request, email string) (Step, relay.Response, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	for _, domain := range oauthDomains {
		if strings.HasSuffix(email, domain) {
			return StepOAuth, relay.Response{Success: true, Code: http.StatusOK}, nil
		}
	}

	resp := c.api.PublicPost(ctx, r, upstream.RouteCheckAccount, map[string]string{"email": email})
	if !resp.Success {
		return "", resp, nil
	}

	var state upstream.AccountState
	if err := json.Unmarshal(resp.Data, &state); err != nil {
		return "", resp, errors.Wrapf(errors.ErrInternal, "malformed account state")
	}

	var otp upstream.OTPData
	_ = json.Unmarshal(resp.Data, &otp) // expiry rides in the same payload when present

	step := StepCreatePassword
	switch {
	case state.HasPassword && state.IsVerified:
		step = StepPassword
	case state.HasPassword && !state.IsVerified:
		step = StepOTP
	}

	flow := FlowState{Email: email, AttemptsLeft: MaxOTPAttempts}
	if otp.OTPExpiredAt != "" {
		if expiry, err := time.Parse(time.RFC3339, otp.OTPExpiredAt); err == nil {
			flow.OTPExpiresAt = expiry
		}
	}
	if err := c.flows.Issue(w, flow); err != nil {
		return "", resp, err
	}

	return step, resp, nil
}

// LoginWithCredentials signs in with email + password. The captcha is
// verified first; on captcha failure the credentials are never sent
// upstream.
func (c *Controller) LoginWithCredentials(ctx context.Context, w http.ResponseWriter, r *http.Request, email, password, captchaToken string) (relay.Response, error) {
	if err := c.captcha.Verify(ctx, captchaToken); err != nil {
		return relay.Response{}, err
	}

	resp := c.api.PublicPost(ctx, r, upstream.RouteGenerateToken, map[string]string{
		"email":    email,
		"password": password,
		"provider": "local",
	})

	if err := c.establishSession(w, resp); err != nil {
		return resp, err
	}
	c.flows.Clear(w)
	return resp, nil
}

// LoginWithGoogle redeems the OAuth code, verifies the identity, and
// exchanges the provider token for this system's own token pair.
func (c *Controller) LoginWithGoogle(ctx context.Context, w http.ResponseWriter, r *http.Request, code string) (relay.Response, error) {
	identity, err := c.google.Exchange(ctx, code)
	if err != nil {
		return relay.Response{}, err
	}

	resp := c.api.PublicPost(ctx, r, upstream.RouteGenerateToken, map[string]string{
		"email":      identity.Email,
		"provider":   "google",
		"oauthToken": identity.OAuthToken,
	})

	if err := c.establishSession(w, resp); err != nil {
		return resp, err
	}
	c.flows.Clear(w)
	return resp, nil
}

// AuthCodeURL exposes the Google consent URL for the redirect handler.
func (c *Controller) AuthCodeURL(state string) string {
	return c.google.AuthCodeURL(state)
}

// VerifyOTP submits the code for the email held in the flow state. An
// exhausted attempt budget or an elapsed code is rejected locally with no
// upstream call; the caller must force a resend.
func (c *Controller) VerifyOTP(ctx context.Context, w http.ResponseWriter, r *http.Request, otp string) (relay.Response, error) {
	flow, err := c.flows.Read(r)
	if err != nil {
		return relay.Response{}, err
	}
	if flow.AttemptsLeft <= 0 {
		return relay.Response{}, errors.ErrOTPAttemptsExhausted
	}
	if !flow.OTPExpiresAt.IsZero() && time.Now().After(flow.OTPExpiresAt) {
		return relay.Response{}, errors.ErrOTPExpired
	}

	resp := c.api.PublicPost(ctx, r, upstream.RouteVerifyOTP, map[string]string{
		"email": flow.Email,
		"otp":   otp,
	})

	if !resp.Success {
		// The server reports the authoritative remaining-attempt count;
		// fall back to a local decrement when it doesn't.
		var data upstream.OTPData
		_ = json.Unmarshal(resp.Data, &data)
		flow.AttemptsLeft = utils.ValueOr(data.AttemptLeft, flow.AttemptsLeft-1)
		if err := c.flows.Issue(w, *flow); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// ResendOTP requests a fresh code. It resets the attempt budget and picks
// up the new expiry instant from the server.
func (c *Controller) ResendOTP(ctx context.Context, w http.ResponseWriter, r *http.Request) (relay.Response, error) {
	flow, err := c.flows.Read(r)
	if err != nil {
		return relay.Response{}, err
	}

	resp := c.api.PublicPost(ctx, r, upstream.RouteResendOTP, map[string]string{"email": flow.Email})
	if !resp.Success {
		return resp, nil
	}

	next := FlowState{Email: flow.Email, AttemptsLeft: MaxOTPAttempts}
	var data upstream.OTPData
	if err := json.Unmarshal(resp.Data, &data); err == nil && data.OTPExpiredAt != "" {
		if expiry, parseErr := time.Parse(time.RFC3339, data.OTPExpiredAt); parseErr == nil {
			next.OTPExpiresAt = expiry
		}
	}
	if err := c.flows.Issue(w, next); err != nil {
		return resp, err
	}
	return resp, nil
}

// CreatePassword sets the first password for a fresh account. The reply
// carries the OTP expiry for the verification step that follows.
func (c *Controller) CreatePassword(ctx context.Context, w http.ResponseWriter, r *http.Request, password string) (relay.Response, error) {
	flow, err := c.flows.Read(r)
	if err != nil {
		return relay.Response{}, err
	}

	resp := c.api.PublicPost(ctx, r, upstream.RouteCreatePassword, map[string]string{
		"email":    flow.Email,
		"password": password,
	})
	if !resp.Success {
		return resp, nil
	}

	next := FlowState{Email: flow.Email, AttemptsLeft: MaxOTPAttempts}
	var data upstream.OTPData
	if err := json.Unmarshal(resp.Data, &data); err == nil && data.OTPExpiredAt != "" {
		if expiry, parseErr := time.Parse(time.RFC3339, data.OTPExpiredAt); parseErr == nil {
			next.OTPExpiresAt = expiry
		}
	}
	if err := c.flows.Issue(w, next); err != nil {
		return resp, err
	}
	return resp, nil
}

// Logout revokes the refresh token upstream (best-effort, failures are
// logged and never reported to the user) and clears the session.
func (c *Controller) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	rec, err := c.sessions.Read(r)
	if err == nil && rec != nil && rec.RefreshToken != "" {
		resp := c.api.PublicPost(ctx, r, upstream.RouteLogout, map[string]string{
			"refresh_token": rec.RefreshToken,
		})
		if !resp.Success {
			log.Warn().Int("code", resp.Code).Str("message", resp.Message).Msg("refresh token revoke failed")
		}
	}
	c.sessions.Clear(w)
	c.flows.Clear(w)
}

// establishSession parses a generate-token reply and populates the
// session record, or reports ErrLoginFailed when no token pair came back.
func (c *Controller) establishSession(w http.ResponseWriter, resp relay.Response) error {
	if !resp.Success {
		return errors.Wrapf(errors.ErrLoginFailed, "upstream rejected login (%d): %s", resp.Code, resp.Message)
	}

	var grant upstream.LoginData
	if err := json.Unmarshal(resp.Data, &grant); err != nil || grant.AccessToken.AccessToken == "" || grant.AccessToken.RefreshToken == "" {
		return errors.Wrapf(errors.ErrLoginFailed, "login reply carries no token pair")
	}

	return c.sessions.Set(w, &session.Record{
		AccessToken:  grant.AccessToken.AccessToken,
		RefreshToken: grant.AccessToken.RefreshToken,
		ExpiresAt:    token.NowFunc().Add(time.Duration(grant.AccessToken.ExpiresIn) * time.Second),
		Email:        grant.User.Email,
		FirstName:    grant.User.FirstName,
		LastName:     grant.User.LastName,
		Phone:        grant.User.Phone,
	})
}
