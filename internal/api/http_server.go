package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quadra/internal/config"
	"quadra/internal/database"
	"quadra/internal/domain"
	"quadra/internal/metrics"
	"quadra/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer is the REST surface over the reservation core. Authentication
// happens upstream; the server only reads the identity headers the gateway
// injects.
type HTTPServer struct {
	cfg           config.APIConfig
	exports       config.ExportConfig
	repo          domain.Repository
	locations     domain.LocationService
	reservations  domain.ReservationService
	notifications domain.NotificationService
	limiter       *rateLimiter
	server        *http.Server
	log           *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	exports config.ExportConfig,
	repo domain.Repository,
	locations domain.LocationService,
	reservations domain.ReservationService,
	notifications domain.NotificationService,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:           cfg,
		exports:       exports,
		repo:          repo,
		locations:     locations,
		reservations:  reservations,
		notifications: notifications,
		limiter:       newRateLimiter(&cfg),
		log:           logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/v1/locations", srv.handleLocations)
	mux.HandleFunc("/api/v1/locations/", srv.handleLocationSubtree)
	mux.HandleFunc("/api/v1/reservations", srv.handleReservations)
	mux.HandleFunc("/api/v1/reservations/", srv.handleReservationSubtree)
	mux.HandleFunc("/api/v1/notifications", srv.handleNotifications)
	mux.HandleFunc("/api/v1/notifications/", srv.handleNotificationSubtree)
	mux.HandleFunc("/api/v1/admin/reservations/export", srv.handleExport)

	handler := srv.loggingMiddleware(srv.rateLimitMiddleware(srv.identityMiddleware(mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler exposes the full middleware chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Request-Id", requestID)

		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimit.RPS > 0 {
			key := strings.TrimSpace(r.Header.Get(s.cfg.Identity.HeaderUserID))
			if key == "" {
				key = r.RemoteAddr
			}
			if !s.limiter.getLimiter(key).Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// mapError translates core errors to status codes in one place.
func (s *HTTPServer) mapError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot already reserved")
	default:
		s.log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// parseIDPath splits "123/rest" into the numeric id and the remainder.
func parseIDPath(path string) (int64, string, error) {
	idPart := path
	rest := ""
	if i := strings.Index(path, "/"); i >= 0 {
		idPart, rest = path[:i], path[i+1:]
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("invalid id: %q", idPart)
	}
	return id, rest, nil
}

func splitIDs(raw string) []int64 {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		if id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64); err == nil && id > 0 {
			out = append(out, id)
		}
	}
	return out
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
