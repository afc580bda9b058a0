package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/task-tracker-backend/internal/adapters/primary/validation"
	"github.com/lorrc/task-tracker-backend/internal/auth"
	"github.com/lorrc/task-tracker-backend/internal/config"
	apperrors "github.com/lorrc/task-tracker-backend/internal/core/errors"
)

// AuthHandler issues and revokes access tokens for API clients.
type AuthHandler struct {
	tm           *auth.TokenManager
	cookieName   string
	cookieMaxAge time.Duration
	secureCookie bool
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	tm *auth.TokenManager,
	cfg *config.Config,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		tm:           tm,
		cookieName:   cfg.Auth.CookieName,
		cookieMaxAge: cfg.JWT.AccessTokenTTL,
		secureCookie: cfg.IsProduction(),
		errorHandler: errorHandler,
		logger:       logger.With("handler", "auth"),
	}
}

// RegisterRoutes sets up the routing for the auth endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/token", h.HandleIssueToken)
	r.Post("/logout", h.HandleLogout)
}

// TokenRequest defines the expected JSON body for issuing a token
type TokenRequest struct {
	Email string `json:"email"`
}

// Validate validates the token request
func (r *TokenRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("email", r.Email).
		Email("email", r.Email)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// TokenResponse carries the issued access token
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// HandleIssueToken handles POST /auth/token. The token is returned in the
// body and also set as an HTTP-only cookie for browser clients.
func (h *AuthHandler) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[TokenRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	token, err := h.tm.GenerateToken(req.Email)
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewInternalError(err))
		return
	}

	expiresAt := time.Now().Add(h.cookieMaxAge)

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(h.cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("token issued",
		"request_id", GetRequestID(r.Context()),
		"email", req.Email,
	)

	WriteJSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

// HandleLogout handles POST /auth/logout by expiring the auth cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	WriteMessage(w, "Logged out")
}
