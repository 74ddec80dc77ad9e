package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleIssuer = "https://accounts.google.com"

// VerificationError reports why an external identity token was rejected.
// Reason is human-readable and safe to surface; the underlying cause stays
// wrapped for logs.
type VerificationError struct {
	Reason string
	err    error
}

func (e *VerificationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.err)
	}
	return e.Reason
}

func (e *VerificationError) Unwrap() error { return e.err }

// GoogleVerifier validates Google-issued ID tokens against Google's published
// keys and extracts identity claims. It also supports the browser
// authorization-code flow when a client secret is configured.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
	config   *oauth2.Config
	client   *http.Client
}

// NewGoogleVerifier discovers the Google OIDC provider and builds a verifier
// bound to the given client ID (the audience every token must carry).
// clientSecret and redirectURL may be empty when only the direct ID-token
// endpoint is used.
func NewGoogleVerifier(ctx context.Context, clientID, clientSecret, redirectURL string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google verifier: client ID is required")
	}

	// Bounds discovery and all later JWKS fetches; a hung provider call
	// surfaces as a verification failure instead of blocking the request.
	client := &http.Client{Timeout: 12 * time.Second}

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, client), googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	var config *oauth2.Config
	if clientSecret != "" {
		config = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		}
	}

	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		config:   config,
		client:   client,
	}, nil
}

// VerifyIDToken checks the raw token's signature, issuer, audience, and expiry
// and returns the identity it asserts. Every failure is a *VerificationError.
func (g *GoogleVerifier) VerifyIDToken(ctx context.Context, rawToken string) (IdentityClaims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return IdentityClaims{}, &VerificationError{Reason: "identity token is empty"}
	}

	idToken, err := g.verifier.Verify(oidc.ClientContext(ctx, g.client), rawToken)
	if err != nil {
		return IdentityClaims{}, &VerificationError{Reason: "identity token rejected", err: err}
	}

	var payload struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := idToken.Claims(&payload); err != nil {
		return IdentityClaims{}, &VerificationError{Reason: "identity token claims are malformed", err: err}
	}

	if payload.Email == "" {
		return IdentityClaims{}, &VerificationError{Reason: "identity token carries no email claim"}
	}

	return IdentityClaims{
		Email:      payload.Email,
		GivenName:  payload.GivenName,
		FamilyName: payload.FamilyName,
		Issuer:     idToken.Issuer,
	}, nil
}

// AuthURL generates the Google OAuth consent URL with the given state.
func (g *GoogleVerifier) AuthURL(state string) string {
	if g.config == nil {
		return ""
	}
	return g.config.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange trades the authorization code for tokens and verifies the ID token
// Google returned alongside them.
func (g *GoogleVerifier) Exchange(ctx context.Context, code string) (IdentityClaims, error) {
	if g.config == nil {
		return IdentityClaims{}, &VerificationError{Reason: "authorization-code flow is not configured"}
	}

	token, err := g.config.Exchange(context.WithValue(ctx, oauth2.HTTPClient, g.client), code)
	if err != nil {
		return IdentityClaims{}, &VerificationError{Reason: "code exchange failed", err: err}
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return IdentityClaims{}, &VerificationError{Reason: "provider returned no id_token"}
	}

	return g.VerifyIDToken(ctx, rawIDToken)
}

// GenerateState generates a cryptographically secure random state string.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
