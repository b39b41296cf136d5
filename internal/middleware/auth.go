package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"quizhub-backend/internal/models"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	IdentityKey  contextKey = "identity"
)

// TokenVerifier turns a bearer token into the identity it vouches for.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

type userLookup interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

// Authenticator resolves bearer credentials in two stages: Identify only
// verifies the token, Middleware additionally requires a registered user and
// attaches its Principal.
type Authenticator struct {
	verifier TokenVerifier
	users    userLookup
}

func NewAuthenticator(verifier TokenVerifier, users userLookup) *Authenticator {
	return &Authenticator{verifier: verifier, users: users}
}

// Identify verifies the bearer token and attaches the Identity to the context.
func (a *Authenticator) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := a.identify(w, r)
		if !ok {
			return
		}
		ctx := context.WithValue(r.Context(), IdentityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Middleware verifies the bearer token, loads the matching user and attaches
// both the Identity and the Principal to the context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := a.identify(w, r)
		if !ok {
			return
		}

		p, err := a.Resolve(r.Context(), id)
		if err != nil {
			if errors.Is(err, errNotRegistered) {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not registered", r)
				return
			}
			slog.ErrorContext(r.Context(), "auth: load user failed", "request_id", GetRequestID(r.Context()), "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", r)
			return
		}

		ctx := context.WithValue(r.Context(), IdentityKey, id)
		ctx = context.WithValue(ctx, PrincipalKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

var errNotRegistered = errors.New("user not registered")

// Authenticate verifies a raw token and resolves it to a Principal. It is
// used where the token does not arrive in an Authorization header.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	id, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return a.Resolve(ctx, id)
}

func (a *Authenticator) Resolve(ctx context.Context, id *models.Identity) (*models.Principal, error) {
	user, err := a.users.GetByExternalID(ctx, id.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNotRegistered
		}
		return nil, err
	}
	return user.Principal(), nil
}

func (a *Authenticator) identify(w http.ResponseWriter, r *http.Request) (*models.Identity, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header", r)
		return nil, false
	}

	// Must be Bearer format
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format", r)
		return nil, false
	}

	id, err := a.verifier.Verify(r.Context(), strings.TrimSpace(token))
	if err != nil {
		slog.DebugContext(r.Context(), "auth: token rejected", "error", err)
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", r)
		return nil, false
	}
	return id, true
}

// RequireAdmin rejects callers whose Principal is not an admin. It must run
// after Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetPrincipal(r.Context()).IsAdmin() {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Admin access required", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPrincipal extracts the authenticated caller from the request context.
func GetPrincipal(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(PrincipalKey).(*models.Principal)
	return p
}

// GetIdentity extracts the verified token identity from the request context.
func GetIdentity(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(IdentityKey).(*models.Identity)
	return id
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: GetRequestID(r.Context()),
		},
	})
}
