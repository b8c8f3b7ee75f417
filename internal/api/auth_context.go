package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
	"github.com/shelfnotes/shelfnotes-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// viewerKey is the context key for the resolved viewer.
const viewerKey ctxKey = "viewer"

// ViewerFrom returns the viewer resolved by authMiddleware, anonymous when there is none.
func ViewerFrom(ctx context.Context) domain.Viewer {
	if v, ok := ctx.Value(viewerKey).(domain.Viewer); ok {
		return v
	}
	return domain.Anonymous()
}

// GetUserID returns the authenticated user ID from context.
// Returns 401 error if user is not authenticated.
func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ViewerFrom(ctx).UserID()
	if !ok {
		return "", domainerrors.Unauthorized("authentication required")
	}
	return userID, nil
}

// withViewer stores the viewer in context.
func withViewer(ctx context.Context, v domain.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

// authMiddleware returns a middleware that validates Bearer tokens and stores the viewer in context.
// If no token is present or it is invalid, the request continues as anonymous.
// Handlers use GetUserID to check authentication.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			viewer, err := auth.VerifyAccessToken(r.Context(), strings.TrimSpace(token))
			if err != nil {
				// Invalid token: continue anonymously, handlers reject if auth is required.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withViewer(r.Context(), viewer)))
		})
	}
}

// requireAuth is a huma operation middleware that rejects anonymous callers before the
// request body is read.
func (s *Server) requireAuth(ctx huma.Context, next func(huma.Context)) {
	if _, err := GetUserID(ctx.Context()); err != nil {
		_ = huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "authentication required", err)
		return
	}
	next(ctx)
}
