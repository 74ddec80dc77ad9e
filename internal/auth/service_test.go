package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"greenmap/internal/token"
)

type verifierStub struct {
	verify func(ctx context.Context, rawToken string) (IdentityClaims, error)
}

func (v *verifierStub) VerifyIDToken(ctx context.Context, rawToken string) (IdentityClaims, error) {
	return v.verify(ctx, rawToken)
}

type resolverStub struct {
	resolve func(ctx context.Context, claims IdentityClaims) (*User, bool, error)
	calls   int
}

func (r *resolverStub) Resolve(ctx context.Context, claims IdentityClaims) (*User, bool, error) {
	r.calls++
	return r.resolve(ctx, claims)
}

type issuerStub struct {
	issue func(subject, role string) (token.Pair, error)
}

func (i *issuerStub) Issue(subject, role string) (token.Pair, error) {
	if i.issue != nil {
		return i.issue(subject, role)
	}
	return token.Pair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okVerifier(claims IdentityClaims) *verifierStub {
	return &verifierStub{verify: func(ctx context.Context, rawToken string) (IdentityClaims, error) {
		return claims, nil
	}}
}

func TestSignInSuccess(t *testing.T) {
	user := &User{ID: uuid.New(), Email: "a@x.com", FirstName: "Ann", Role: RoleUser}
	resolver := &resolverStub{resolve: func(ctx context.Context, claims IdentityClaims) (*User, bool, error) {
		if claims.Email != "a@x.com" {
			t.Fatalf("unexpected claims email %q", claims.Email)
		}
		return user, true, nil
	}}
	var issuedSubject, issuedRole string
	issuer := &issuerStub{issue: func(subject, role string) (token.Pair, error) {
		issuedSubject, issuedRole = subject, role
		return token.Pair{AccessToken: "access-token", RefreshToken: "refresh-token"}, nil
	}}

	svc := NewService(okVerifier(IdentityClaims{Email: "a@x.com", GivenName: "Ann"}), resolver, issuer, discardLogger())

	result, err := svc.SignIn(context.Background(), "raw-google-token")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if result.AccessToken != "access-token" || result.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected token pair: %+v", result)
	}
	if result.Name != "Ann" {
		t.Fatalf("expected display name Ann, got %q", result.Name)
	}
	if issuedSubject != "a@x.com" || issuedRole != "USER" {
		t.Fatalf("expected issuance for a@x.com/USER, got %q/%q", issuedSubject, issuedRole)
	}
}

func TestSignInRejectedTokenDoesNotTouchStore(t *testing.T) {
	verifier := &verifierStub{verify: func(ctx context.Context, rawToken string) (IdentityClaims, error) {
		return IdentityClaims{}, &VerificationError{Reason: "identity token rejected"}
	}}
	resolver := &resolverStub{resolve: func(ctx context.Context, claims IdentityClaims) (*User, bool, error) {
		return nil, false, nil
	}}

	svc := NewService(verifier, resolver, &issuerStub{}, discardLogger())

	_, err := svc.SignIn(context.Background(), "bad token")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
	if authErr.Kind != KindInvalidExternalToken {
		t.Fatalf("expected KindInvalidExternalToken, got %v", authErr.Kind)
	}
	if resolver.calls != 0 {
		t.Fatalf("expected resolver to be untouched, got %d calls", resolver.calls)
	}
}

func TestSignInFederationFailure(t *testing.T) {
	resolver := &resolverStub{resolve: func(ctx context.Context, claims IdentityClaims) (*User, bool, error) {
		return nil, false, errors.New("store down")
	}}

	svc := NewService(okVerifier(IdentityClaims{Email: "a@x.com"}), resolver, &issuerStub{}, discardLogger())

	_, err := svc.SignIn(context.Background(), "raw")
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Kind != KindFederation {
		t.Fatalf("expected federation failure, got %v", err)
	}
}

func TestSignInIssuanceFailure(t *testing.T) {
	user := &User{ID: uuid.New(), Email: "a@x.com", Role: RoleUser}
	resolver := &resolverStub{resolve: func(ctx context.Context, claims IdentityClaims) (*User, bool, error) {
		return user, false, nil
	}}
	issuer := &issuerStub{issue: func(subject, role string) (token.Pair, error) {
		return token.Pair{}, errors.New("key misconfigured")
	}}

	svc := NewService(okVerifier(IdentityClaims{Email: "a@x.com"}), resolver, issuer, discardLogger())

	_, err := svc.SignIn(context.Background(), "raw")
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Kind != KindIssuance {
		t.Fatalf("expected issuance failure, got %v", err)
	}
}

// Exercises the real resolver and issuer against the in-memory store: two
// sign-ins with the same verified email must produce exactly one user, and
// both must succeed with tokens whose subject is that email.
func TestSignInIsIdempotentPerEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	issuer, err := token.NewIssuer("test-secret", 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer returned error: %v", err)
	}

	claims := IdentityClaims{Email: "a@x.com", GivenName: "Ann", FamilyName: "Lee"}
	svc := NewService(okVerifier(claims), NewResolver(repo), issuer, discardLogger())
	ctx := context.Background()

	first, err := svc.SignIn(ctx, "raw")
	if err != nil {
		t.Fatalf("first SignIn returned error: %v", err)
	}
	if first.Name != "Ann" {
		t.Fatalf("expected display name Ann, got %q", first.Name)
	}

	second, err := svc.SignIn(ctx, "raw")
	if err != nil {
		t.Fatalf("second SignIn returned error: %v", err)
	}
	if second.Name != "Ann" {
		t.Fatalf("expected display name Ann on repeat sign-in, got %q", second.Name)
	}

	user, err := repo.FindUserByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindUserByEmail returned error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user to exist after sign-in")
	}
	if user.FirstName != "Ann" || user.LastName != "Lee" {
		t.Fatalf("expected claims to populate the user, got %+v", user)
	}
	if user.Role != RoleUser || user.Status != StatusActivated {
		t.Fatalf("expected USER/ACTIVATED, got %q/%q", user.Role, user.Status)
	}

	parsed, err := issuer.ParseAccess(second.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccess returned error: %v", err)
	}
	if parsed.Subject != "a@x.com" {
		t.Fatalf("expected token subject a@x.com, got %q", parsed.Subject)
	}
	if parsed.Role != string(RoleUser) {
		t.Fatalf("expected token role USER, got %q", parsed.Role)
	}
}
