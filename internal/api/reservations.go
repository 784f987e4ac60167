package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"quadra/internal/models"
)

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	switch r.Method {
	case http.MethodPost:
		var body struct {
			LocationID int64  `json:"location_id"`
			Date       string `json:"date"`
			StartHour  int    `json:"start_hour"`
			EndHour    int    `json:"end_hour"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		res, err := s.reservations.Create(r.Context(), identity.UserID, body.LocationID, body.Date, body.StartHour, body.EndHour)
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)

	case http.MethodGet:
		filter := models.ReservationFilter{
			LocationIDs: splitIDs(r.URL.Query().Get("locations")),
			Filtered:    r.URL.Query().Has("locations"),
		}
		views, err := s.reservations.List(r.Context(), identity, filter)
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reservations": views})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleReservationSubtree(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/reservations/")
	id, sub, err := parseIDPath(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch sub {
	case "":
		s.handleReservationByID(w, r, identity, id)
	case "rating":
		s.handleReservationRating(w, r, identity, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request, identity models.Identity, id int64) {
	switch r.Method {
	case http.MethodPut:
		var patch models.ReservationPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		res, err := s.reservations.Update(r.Context(), id, identity.UserID, patch)
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case http.MethodDelete:
		if err := s.reservations.Cancel(r.Context(), id, identity.UserID); err != nil {
			s.mapError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleReservationRating(w http.ResponseWriter, r *http.Request, identity models.Identity, id int64) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.reservations.Rate(r.Context(), id, identity.UserID, body.Rating); err != nil {
		s.mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
