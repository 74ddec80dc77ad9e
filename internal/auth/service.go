package auth

import (
	"context"
	"fmt"

	"log/slog"

	"greenmap/internal/token"
)

// ErrorKind classifies a failed sign-in for the caller. Every failure leaving
// Service.SignIn is one of these three; no provider-library or storage-driver
// error crosses the boundary unwrapped.
type ErrorKind int

const (
	// KindInvalidExternalToken covers every rejection of the provider token:
	// bad signature, wrong audience or issuer, expiry, malformed or empty
	// input, and key-fetch failures. Never worth an automatic retry.
	KindInvalidExternalToken ErrorKind = iota + 1

	// KindFederation covers user-store failures other than the uniqueness
	// race. Transient from the caller's perspective; safe to retry.
	KindFederation

	// KindIssuance covers first-party token signing failures. Also safe to
	// retry; any user created earlier in the call is kept.
	KindIssuance
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidExternalToken:
		return "invalid_external_token"
	case KindFederation:
		return "federation_error"
	case KindIssuance:
		return "issuance_error"
	}
	return "unknown"
}

// AuthError is the single error type returned by SignIn. Message is
// human-readable and safe to show; the cause stays wrapped for logs.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// SignInResult is returned to the caller on success. Name is the user's first
// name and may be empty when the provider omitted it.
type SignInResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Name         string `json:"name"`
}

// TokenVerifier validates an external identity token and extracts its claims.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, rawToken string) (IdentityClaims, error)
}

// FederationResolver maps verified claims to a local user.
type FederationResolver interface {
	Resolve(ctx context.Context, claims IdentityClaims) (*User, bool, error)
}

// CredentialIssuer mints the first-party token pair.
type CredentialIssuer interface {
	Issue(subject, role string) (token.Pair, error)
}

// Service orchestrates a single sign-in: verify the provider token, resolve
// or provision the account, issue credentials. Each stage depends on the
// previous one; there is no fan-out and no cross-stage retry.
type Service struct {
	verifier TokenVerifier
	resolver FederationResolver
	issuer   CredentialIssuer
	logger   *slog.Logger
}

// NewService creates the sign-in orchestrator.
func NewService(verifier TokenVerifier, resolver FederationResolver, issuer CredentialIssuer, logger *slog.Logger) *Service {
	return &Service{verifier: verifier, resolver: resolver, issuer: issuer, logger: logger}
}

// SignIn authenticates an externally issued identity token and returns a
// first-party credential pair. On failure it returns a *AuthError.
//
// A user provisioned during resolution is kept even when issuance then
// fails: the account is legitimate, and a retried sign-in will find it.
func (s *Service) SignIn(ctx context.Context, rawToken string) (SignInResult, error) {
	claims, err := s.verifier.VerifyIDToken(ctx, rawToken)
	if err != nil {
		return SignInResult{}, &AuthError{
			Kind:    KindInvalidExternalToken,
			Message: "identity token was rejected",
			Err:     err,
		}
	}

	return s.CompleteSignIn(ctx, claims)
}

// CompleteSignIn runs the resolution and issuance stages for claims that were
// already verified, e.g. by the authorization-code callback.
func (s *Service) CompleteSignIn(ctx context.Context, claims IdentityClaims) (SignInResult, error) {
	user, created, err := s.resolver.Resolve(ctx, claims)
	if err != nil {
		return SignInResult{}, &AuthError{
			Kind:    KindFederation,
			Message: "could not resolve account",
			Err:     err,
		}
	}

	pair, err := s.issuer.Issue(user.Email, string(user.Role))
	if err != nil {
		return SignInResult{}, &AuthError{
			Kind:    KindIssuance,
			Message: "could not issue credentials",
			Err:     err,
		}
	}

	if created {
		s.logger.Info("google sign-up and sign-in", "email", user.Email)
	} else {
		s.logger.Info("google sign-in", "email", user.Email)
	}

	return SignInResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Name:         user.FirstName,
	}, nil
}
