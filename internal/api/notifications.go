package api

import (
	"net/http"
	"strings"
)

func (s *HTTPServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	list, err := s.notifications.List(r.Context(), identity.UserID)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (s *HTTPServer) handleNotificationSubtree(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/notifications/")
	if rest == "read-all" {
		if err := s.notifications.MarkAllRead(r.Context(), identity.UserID); err != nil {
			s.mapError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	id, sub, err := parseIDPath(rest)
	if err != nil || sub != "read" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.notifications.MarkRead(r.Context(), id, identity.UserID); err != nil {
		s.mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
