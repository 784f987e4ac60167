package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"quadra/internal/models"
)

func (s *HTTPServer) handleLocations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		locations, err := s.locations.ListApproved(r.Context())
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"locations": locations})

	case http.MethodPost:
		identity, ok := identityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing identity")
			return
		}

		var fields models.LocationFields
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		loc, err := s.locations.Create(r.Context(), identity.UserID, fields)
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, loc)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleLocationSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/locations/")

	switch rest {
	case "mine":
		s.handleLocationsMine(w, r)
		return
	case "pending":
		s.handleLocationsPending(w, r)
		return
	}

	id, sub, err := parseIDPath(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch sub {
	case "":
		s.handleLocationByID(w, r, id)
	case "approve":
		s.handleLocationApprove(w, r, id)
	case "reject":
		s.handleLocationReject(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleLocationsMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	locations, err := s.locations.ListMine(r.Context(), identity.UserID)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": locations})
}

func (s *HTTPServer) handleLocationsPending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	locations, err := s.locations.ListPending(r.Context())
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": locations})
}

func (s *HTTPServer) handleLocationByID(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		loc, err := s.locations.Get(r.Context(), id)
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, loc)

	case http.MethodPut:
		identity, ok := identityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing identity")
			return
		}

		var fields models.LocationFields
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		loc, err := s.locations.Update(r.Context(), id, identity.UserID, fields)
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, loc)

	case http.MethodDelete:
		identity, ok := identityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing identity")
			return
		}

		if err := s.locations.Delete(r.Context(), id, identity.UserID); err != nil {
			s.mapError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleLocationApprove(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	if err := s.locations.Approve(r.Context(), id); err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"approval_status": models.ApprovalApproved})
}

func (s *HTTPServer) handleLocationReject(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	if err := s.locations.Reject(r.Context(), id); err != nil {
		s.mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return false
	}
	if !identity.IsAdmin() {
		writeError(w, http.StatusForbidden, "admin only")
		return false
	}
	return true
}
