// Package relay issues signed calls against the upstream Astrovia API.
// Every request carries the HMAC envelope, the device id, an origin tag,
// and where a session exists a bearer token sourced from the refresh
// coordinator. Transport failures never escape as errors: they are folded
// into the same normalized envelope as upstream business failures.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fendriknuruljadid/astrovia-app/device"
	"github.com/fendriknuruljadid/astrovia-app/signing"
	"github.com/rs/zerolog/log"
)

// TokenSource yields an access token valid for immediate use, refreshing
// the session when needed. Implemented by token.Coordinator.
type TokenSource interface {
	ValidToken(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error)
}

// FormPayload is an opaque binary form body. The relay passes it through
// with the caller's content type instead of forcing JSON, so multipart
// boundaries survive untouched.
type FormPayload struct {
	Reader      io.Reader
	ContentType string
}

// Client relays HTTP calls to the upstream API.
type Client struct {
	httpClient *http.Client
	signer     *signing.Signer
	tokens     TokenSource
	baseURL    string
}

// New creates a relay client. tokens may be nil for a public client that
// serves the pre-authentication endpoints.
func New(baseURL string, timeout time.Duration, signer *signing.Signer, tokens TokenSource) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		signer:     signer,
		tokens:     tokens,
		baseURL:    baseURL,
	}
}

// Get relays a GET. The returned error is non-nil only for
// authentication-state failures (ErrUnauthenticated, ErrRefreshFailed);
// those must route the caller to login rather than render.
func (c *Client) Get(ctx context.Context, w http.ResponseWriter, r *http.Request, path, origin string) (Response, error) {
	return c.do(ctx, w, r, http.MethodGet, path, nil, origin)
}

func (c *Client) Post(ctx context.Context, w http.ResponseWriter, r *http.Request, path string, body any, origin string) (Response, error) {
	return c.do(ctx, w, r, http.MethodPost, path, body, origin)
}

func (c *Client) Put(ctx context.Context, w http.ResponseWriter, r *http.Request, path string, body any, origin string) (Response, error) {
	return c.do(ctx, w, r, http.MethodPut, path, body, origin)
}

func (c *Client) Patch(ctx context.Context, w http.ResponseWriter, r *http.Request, path string, body any, origin string) (Response, error) {
	return c.do(ctx, w, r, http.MethodPatch, path, body, origin)
}

func (c *Client) Delete(ctx context.Context, w http.ResponseWriter, r *http.Request, path, origin string) (Response, error) {
	return c.do(ctx, w, r, http.MethodDelete, path, nil, origin)
}

// PublicPost relays an unauthenticated POST. No bearer token is attached
// and no failure occurs when no session exists; the HMAC envelope and
// device id still are.
func (c *Client) PublicPost(ctx context.Context, r *http.Request, path string, body any) Response {
	resp, _ := c.send(ctx, nil, r, http.MethodPost, path, body, "", false)
	return resp
}

func (c *Client) do(ctx context.Context, w http.ResponseWriter, r *http.Request, method, path string, body any, origin string) (Response, error) {
	return c.send(ctx, w, r, method, path, body, origin, c.tokens != nil)
}

func (c *Client) send(ctx context.Context, w http.ResponseWriter, r *http.Request, method, path string, body any, origin string, authed bool) (Response, error) {
	var token string
	if authed {
		var err error
		token, err = c.tokens.ValidToken(ctx, w, r)
		if err != nil {
			// Unauthenticated / RefreshFailed: the call must not be attempted.
			return Response{}, err
		}
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return transportFailure(err), nil
	}

	env := c.signer.Sign()
	req.Header.Set("X-Timestamp", env.Timestamp)
	req.Header.Set("X-Signature", env.Signature)
	req.Header.Set("X-ORIGIN", origin)
	if r != nil {
		if id, ok := device.FromRequest(r); ok {
			req.Header.Set("X-DeviceId", id)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Err(err).Str("method", method).Str("path", path).Msg("upstream call failed")
		return transportFailure(err), nil
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Err(err).Str("method", method).Str("path", path).Msg("upstream body read failed")
		return transportFailure(err), nil
	}

	return decodeEnvelope(resp.StatusCode, payload), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.baseURL + path

	switch payload := body.(type) {
	case nil:
		return http.NewRequestWithContext(ctx, method, url, nil)
	case FormPayload:
		req, err := http.NewRequestWithContext(ctx, method, url, payload.Reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", payload.ContentType)
		return req, nil
	default:
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}
}

// transportFailure normalizes a network-level failure into the envelope
// shape so callers can render something deterministic rather than crash.
func transportFailure(err error) Response {
	message := "a connection error occurred while contacting the server"
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return Response{
		Success: false,
		Message: message,
		Code:    http.StatusInternalServerError,
	}
}
