package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"quadra/internal/models"
)

type ctxKey int

const identityKey ctxKey = iota

// identityMiddleware turns the gateway's trusted headers into an Identity on
// the request context and keeps the users table in sync with what the
// gateway sends. Public routes pass through untouched.
func (s *HTTPServer) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicRoute(r) {
			next.ServeHTTP(w, r)
			return
		}

		identity, ok := s.parseIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing identity")
			return
		}

		// Апсерт не блокирует запрос: display name догонит позже
		user := &models.User{
			ID:          identity.UserID,
			DisplayName: identity.DisplayName,
			Role:        identity.Role,
		}
		if err := s.repo.UpsertUser(r.Context(), user); err != nil {
			s.log.Warn().Err(err).Int64("user_id", identity.UserID).Msg("user upsert failed")
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HTTPServer) parseIdentity(r *http.Request) (models.Identity, bool) {
	rawID := strings.TrimSpace(r.Header.Get(s.cfg.Identity.HeaderUserID))
	if rawID == "" {
		return models.Identity{}, false
	}
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || userID <= 0 {
		return models.Identity{}, false
	}

	role := strings.TrimSpace(r.Header.Get(s.cfg.Identity.HeaderUserRole))
	if role == "" {
		role = models.RoleUser
	}

	return models.Identity{
		UserID:      userID,
		Role:        role,
		DisplayName: strings.TrimSpace(r.Header.Get(s.cfg.Identity.HeaderUserName)),
	}, true
}

func identityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

// isPublicRoute keeps the storefront reachable without identity: health
// probe, the approved listing and single-location detail.
func isPublicRoute(r *http.Request) bool {
	if r.URL.Path == "/healthz" {
		return true
	}
	if r.Method != http.MethodGet {
		return false
	}
	if r.URL.Path == "/api/v1/locations" {
		return true
	}
	if rest, found := strings.CutPrefix(r.URL.Path, "/api/v1/locations/"); found {
		if _, sub, err := parseIDPath(rest); err == nil && sub == "" {
			return true
		}
	}
	return false
}
