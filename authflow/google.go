package authflow

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/fendriknuruljadid/astrovia-app/internal/errors"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// GoogleIdentity is the verified outcome of a Google sign-in: the email
// from the ID token plus the provider access token that is forwarded to
// the upstream generate-token exchange.
type GoogleIdentity struct {
	Email      string
	OAuthToken string
}

// GoogleExchanger turns an authorization code into a verified identity.
type GoogleExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (GoogleIdentity, error)
}

// GoogleProvider implements GoogleExchanger against Google's OIDC
// endpoints.
type GoogleProvider struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func NewGoogleProvider(ctx context.Context, clientID, clientSecret, redirectURL string) (*GoogleProvider, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("create google OIDC provider: %w", err)
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  redirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// AuthCodeURL builds the consent page URL. select_account matches the
// original product behavior: users pick the account every time.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("prompt", "select_account"),
		oauth2.AccessTypeOffline,
	)
}

// Exchange redeems the code and verifies the ID token before trusting the
// email claim.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (GoogleIdentity, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return GoogleIdentity{}, errors.Wrapf(errors.ErrLoginFailed, "google code exchange: %s", err.Error())
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		return GoogleIdentity{}, errors.Wrapf(errors.ErrLoginFailed, "google response missing id_token")
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return GoogleIdentity{}, errors.Wrapf(errors.ErrLoginFailed, "verify google id token: %s", err.Error())
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		return GoogleIdentity{}, errors.Wrapf(errors.ErrLoginFailed, "google id token has no email claim")
	}

	return GoogleIdentity{Email: claims.Email, OAuthToken: tok.AccessToken}, nil
}
