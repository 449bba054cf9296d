// Package token owns the refresh coordinator: given a request carrying a
// session cookie it returns an access token guaranteed valid for immediate
// use, refreshing the session at most once per staleness window and
// serving every concurrent caller from that single refresh.
package token

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fendriknuruljadid/astrovia-app/internal/errors"
	"github.com/fendriknuruljadid/astrovia-app/relay"
	"github.com/fendriknuruljadid/astrovia-app/session"
	"github.com/fendriknuruljadid/astrovia-app/upstream"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// NowFunc returns the current time. It can be overridden in tests.
var NowFunc = time.Now

// DefaultSkew is subtracted from the token expiry before comparing with
// now. A token validated as "not yet expired" at read time could expire
// mid-flight before the signed call reaches the upstream API; the margin
// absorbs that, plus ordinary clock drift.
const DefaultSkew = 60 * time.Second

// refreshKey is the singleflight key. The slot is process-wide, not
// per-session: refreshes are cheap and rare relative to traffic, so a
// per-session map would be complexity without benefit at this scale.
// Cross-process collisions are resolved by the upstream API's single-use
// refresh-token semantics, not by client-side locking.
const refreshKey = "refresh"

// PublicPoster posts to the upstream API without a bearer token.
// Implemented by relay.Client.
type PublicPoster interface {
	PublicPost(ctx context.Context, r *http.Request, path string, body any) relay.Response
}

// Coordinator implements the single-flight token refresh.
type Coordinator struct {
	store *session.Store
	api   PublicPoster
	skew  time.Duration
	group singleflight.Group
}

// NewCoordinator creates a Coordinator around the session store and a
// public relay client for the refresh endpoint.
func NewCoordinator(store *session.Store, api PublicPoster) *Coordinator {
	return &Coordinator{
		store: store,
		api:   api,
		skew:  DefaultSkew,
	}
}

// ValidToken returns an access token valid for immediate use.
//
// Fast path: when the token has more than the skew margin left, the stored
// access token is returned with zero network calls and no mutation.
// Otherwise one refresh is started; callers that arrive while it is in
// flight await the same result. The refresh rotates both tokens, so a
// second concurrent refresh would invalidate the pair the first one just
// minted — sharing one execution is the load-bearing correctness property
// of the whole relay.
func (c *Coordinator) ValidToken(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	rec, err := c.store.Read(r)
	if err != nil {
		return "", errors.Wrapf(errors.ErrUnauthenticated, "unreadable session")
	}
	if rec == nil || !rec.HasTokens() {
		return "", errors.ErrUnauthenticated
	}
	if rec.Error == session.FailureRefreshFailed {
		// Sticky failure: never retry with a refresh token that already
		// failed; the next observation forces sign-out.
		return "", errors.ErrRefreshFailed
	}

	if NowFunc().Before(rec.ExpiresAt.Add(-c.skew)) {
		return rec.AccessToken, nil
	}

	result, err, _ := c.group.Do(refreshKey, func() (any, error) {
		return c.refresh(ctx, w, r, rec.RefreshToken)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Coordinator) refresh(ctx context.Context, w http.ResponseWriter, r *http.Request, refreshToken string) (string, error) {
	resp := c.api.PublicPost(ctx, r, upstream.RouteRefreshToken, map[string]string{
		"refresh_token": refreshToken,
	})
	if !resp.Success {
		return "", c.fail(w, r, "upstream rejected refresh (%d): %s", resp.Code, resp.Message)
	}

	var grant upstream.LoginData
	if err := json.Unmarshal(resp.Data, &grant); err != nil || grant.AccessToken.AccessToken == "" || grant.AccessToken.RefreshToken == "" {
		return "", c.fail(w, r, "malformed refresh response")
	}

	next := grant.AccessToken
	err := c.store.Write(w, r, session.TokenUpdate{
		AccessToken:  next.AccessToken,
		RefreshToken: next.RefreshToken,
		ExpiresAt:    NowFunc().Add(time.Duration(next.ExpiresIn) * time.Second),
	})
	if err != nil {
		return "", errors.Wrapf(err, "persist refreshed session")
	}

	return next.AccessToken, nil
}

// fail records the sticky failure tag so every tab sharing the session is
// notified on its next check, then reports RefreshFailed to all waiters.
func (c *Coordinator) fail(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) error {
	if err := c.store.MarkRefreshFailed(w, r); err != nil {
		log.Err(err).Msg("failed to mark session refresh failure")
	}
	return errors.Wrapf(errors.ErrRefreshFailed, format, args...)
}
