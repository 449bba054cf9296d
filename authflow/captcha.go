package authflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fendriknuruljadid/astrovia-app/internal/errors"
)

// DefaultTurnstileURL is Cloudflare's Turnstile verification endpoint.
const DefaultTurnstileURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// CaptchaVerifier checks a client-supplied captcha token server-side.
// Credentials are never checked until this passes.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) error
}

// TurnstileVerifier verifies tokens against Cloudflare Turnstile.
type TurnstileVerifier struct {
	secret     string
	endpoint   string
	httpClient *http.Client
}

// NewTurnstileVerifier creates a verifier. endpoint may be empty to use
// the production Turnstile URL.
func NewTurnstileVerifier(secret, endpoint string) *TurnstileVerifier {
	if endpoint == "" {
		endpoint = DefaultTurnstileURL
	}
	return &TurnstileVerifier{
		secret:     secret,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *TurnstileVerifier) Verify(ctx context.Context, token string) error {
	if token == "" {
		return errors.ErrCaptchaFailed
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrapf(errors.ErrCaptchaFailed, "build verification request: %s", err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrCaptchaFailed, "verification call: %s", err.Error())
	}
	defer resp.Body.Close()

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrapf(errors.ErrCaptchaFailed, "decode verification response: %s", err.Error())
	}
	if !result.Success {
		return errors.ErrCaptchaFailed
	}
	return nil
}
