package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"greenmap/internal/auth"
)

const (
	oauthStateCookieName = "greenmap_oauth_state"
	oauthStateCookieTTL  = 10 * time.Minute
)

type googleAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (auth.IdentityClaims, error)
}

type signInService interface {
	SignIn(ctx context.Context, rawToken string) (auth.SignInResult, error)
	CompleteSignIn(ctx context.Context, claims auth.IdentityClaims) (auth.SignInResult, error)
}

// AuthHandler exposes the Google sign-in endpoints: a direct ID-token
// endpoint for clients that obtained the token themselves, and the
// authorization-code redirect/callback pair for browsers.
type AuthHandler struct {
	service      signInService
	google       googleAuthenticator
	logger       *slog.Logger
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service signInService, google googleAuthenticator, env string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		google:       google,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
	}
}

// SignInGoogle handles POST /api/auth/google
// The body carries a Google-issued ID token; the response carries the
// first-party credential pair and the user's display name.
func (h *AuthHandler) SignInGoogle(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token string `json:"token"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	result, err := h.service.SignIn(r.Context(), payload.Token)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RedirectGoogle handles GET /api/auth/google/redirect
// Sends the browser to Google's consent screen with a CSRF state cookie.
func (h *AuthHandler) RedirectGoogle(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthStateCookieTTL.Seconds()),
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// CallbackGoogle handles GET /api/auth/google/callback
// Exchanges the authorization code, then completes sign-in with the verified
// claims. The success payload matches the direct endpoint's.
func (h *AuthHandler) CallbackGoogle(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil {
		h.logger.Warn("oauth callback: missing state cookie")
		writeError(w, http.StatusBadRequest, "sign-in session expired, please try again")
		return
	}

	stateParam := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(stateParam), []byte(stateCookie.Value)) != 1 {
		h.logger.Warn("oauth callback: state mismatch")
		writeError(w, http.StatusBadRequest, "invalid state, please try again")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider error", "error", errParam)
		writeError(w, http.StatusBadGateway, "provider rejected the sign-in")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	claims, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("oauth callback: exchange failed", "error", err)
		writeError(w, http.StatusUnauthorized, "could not verify the sign-in with Google")
		return
	}

	result, err := h.service.CompleteSignIn(r.Context(), claims)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeAuthError maps the orchestrator's failure kinds onto status codes:
// a rejected provider token is the caller's problem, everything else is a
// retryable server-side failure.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error) {
	var authErr *auth.AuthError
	if !errors.As(err, &authErr) {
		h.logger.Error("sign-in failed", "error", err)
		writeError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}

	switch authErr.Kind {
	case auth.KindInvalidExternalToken:
		h.logger.Warn("sign-in rejected", "reason", authErr.Error())
		writeError(w, http.StatusUnauthorized, authErr.Message)
	case auth.KindFederation:
		h.logger.Error("sign-in federation failure", "error", authErr.Error())
		writeError(w, http.StatusServiceUnavailable, authErr.Message)
	default:
		h.logger.Error("sign-in issuance failure", "error", authErr.Error())
		writeError(w, http.StatusInternalServerError, authErr.Message)
	}
}
