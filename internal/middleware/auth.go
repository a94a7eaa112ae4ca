package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/auth"

	"go.uber.org/zap"
)

// Authenticator turns a bearer token into verified claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	authn Authenticator
	logr  *zap.Logger
}

type contextKey string

const (
	ContextUserIDKey contextKey = "userID"
	ContextClaimsKey contextKey = "claims"
)

// NewAuthMiddleware creates a reusable JWT auth middleware instance
func NewAuthMiddleware(authn Authenticator, logr *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{authn: authn, logr: logr}
}

// JWTAuth validates the token and attaches the caller's uuid to the request context.
func (m *AuthMiddleware) JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			deny(w, "missing authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			deny(w, "invalid token format")
			return
		}

		claims, err := m.authn.Authenticate(r.Context(), tokenString)
		if err != nil {
			if apperrors.Is(err, apperrors.KindStoreUnavailable) {
				m.logr.Error("failed verifying token", zap.Error(err))
				status := apperrors.HTTPStatus(err)
				msg, _ := apperrors.PublicMessage(err)
				writeMessage(w, status, msg)
				return
			}
			m.logr.Warn("token rejected", zap.Error(err))
			msg, _ := apperrors.PublicMessage(err)
			deny(w, msg)
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserIDKey, claims.Subject)
		ctx = context.WithValue(ctx, ContextClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerFromContext returns the authenticated account uuid.
func CallerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextUserIDKey).(string)
	return id, ok && id != ""
}

// ClaimsFromContext returns the verified access token claims.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(ContextClaimsKey).(*auth.Claims)
	return c, ok
}

// WithCaller stores an account uuid the way JWTAuth does.
func WithCaller(ctx context.Context, userUUID string) context.Context {
	return context.WithValue(ctx, ContextUserIDKey, userUUID)
}

func deny(w http.ResponseWriter, msg string) {
	writeMessage(w, http.StatusUnauthorized, msg)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
