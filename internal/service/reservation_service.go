package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"quadra/internal/database"
	"quadra/internal/domain"
	"quadra/internal/events"
	"quadra/internal/metrics"
	"quadra/internal/models"

	"github.com/rs/zerolog"
)

type ReservationService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	notifier domain.Notifier
	logger   *zerolog.Logger
}

func NewReservationService(repo domain.Repository, eventBus domain.EventPublisher, notifier domain.Notifier, logger *zerolog.Logger) *ReservationService {
	return &ReservationService{
		repo:     repo,
		eventBus: eventBus,
		notifier: notifier,
		logger:   logger,
	}
}

// round2 matches how the billing side rounds: half away from zero, two
// decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateSlot(date string, startHour, endHour int) error {
	if date == "" {
		return &models.ValidationError{Field: "date", Reason: "is required"}
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return &models.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if startHour < 0 {
		return &models.ValidationError{Field: "start_hour", Reason: "must not be negative"}
	}
	if startHour >= endHour {
		return &models.ValidationError{Field: "end_hour", Reason: "must be after start_hour"}
	}
	return nil
}

func (s *ReservationService) Create(ctx context.Context, userID, locationID int64, date string, startHour, endHour int) (*models.Reservation, error) {
	if err := validateSlot(date, startHour, endHour); err != nil {
		return nil, err
	}

	// Бронировать можно и неодобренную площадку: статус модерации
	// проверяется только на публичной витрине.
	loc, err := s.repo.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	res := &models.Reservation{
		LocationID: locationID,
		UserID:     userID,
		Date:       date,
		StartHour:  startHour,
		EndHour:    endHour,
		TotalPrice: round2(loc.HourlyRate * float64(endHour-startHour)),
		Status:     models.StatusActive,
	}

	if err := s.repo.CreateReservationWithLock(ctx, res); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncSlotConflict()
		}
		return nil, err
	}
	metrics.IncReservationCreated()

	// Уведомления не откатывают бронь: любая ошибка здесь только логируется
	batch := []models.Notification{{
		UserID:  userID,
		Type:    models.NotifReservationCreated,
		Message: fmt.Sprintf("Your reservation at %s on %s from %d:00 to %d:00 is confirmed", loc.Name, date, startHour, endHour),
	}}
	if loc.OwnerID != userID {
		batch = append(batch, models.Notification{
			UserID:  loc.OwnerID,
			Type:    models.NotifNewReservationForOwner,
			Message: fmt.Sprintf("New reservation at %s on %s from %d:00 to %d:00", loc.Name, date, startHour, endHour),
		})
	}
	s.fanOut(ctx, res.ID, batch)

	s.publishEvent(events.EventReservationCreated, res)

	return res, nil
}

func (s *ReservationService) Update(ctx context.Context, id, userID int64, patch models.ReservationPatch) (*models.Reservation, error) {
	if patch.IsEmpty() {
		return nil, &models.ValidationError{Field: "patch", Reason: "no fields to update"}
	}
	if patch.Date != nil {
		if _, err := time.Parse(models.DateLayout, *patch.Date); err != nil {
			return nil, &models.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
	}

	prior, err := s.repo.GetReservationOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ApplyReservationPatch(ctx, id, patch); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status != prior.Status {
		batch := []models.Notification{{
			UserID:  userID,
			Type:    models.NotifReservationUpdated,
			Message: fmt.Sprintf("Your reservation #%d is now %q", id, updated.Status),
		}}
		if loc, locErr := s.repo.GetLocation(ctx, updated.LocationID); locErr == nil && loc.OwnerID != userID {
			batch = append(batch, models.Notification{
				UserID:  loc.OwnerID,
				Type:    models.NotifReservationUpdatedOwner,
				Message: fmt.Sprintf("Reservation #%d at %s is now %q", id, loc.Name, updated.Status),
			})
		}
		s.fanOut(ctx, id, batch)
	}

	s.publishEvent(events.EventReservationUpdated, updated)

	return updated, nil
}

// Cancel sets status=cancelled regardless of the current status. Cancelling
// an already-cancelled reservation is a quiet no-op for the inboxes.
func (s *ReservationService) Cancel(ctx context.Context, id, userID int64) error {
	prior, err := s.repo.GetReservationOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateReservationStatus(ctx, id, models.StatusCancelled); err != nil {
		return err
	}

	if prior.Status != models.StatusCancelled {
		batch := []models.Notification{{
			UserID:  userID,
			Type:    models.NotifReservationCancelled,
			Message: fmt.Sprintf("Your reservation #%d was cancelled", id),
		}}
		if loc, locErr := s.repo.GetLocation(ctx, prior.LocationID); locErr == nil && loc.OwnerID != userID {
			batch = append(batch, models.Notification{
				UserID:  loc.OwnerID,
				Type:    models.NotifReservationCancelledOwner,
				Message: fmt.Sprintf("Reservation #%d at %s was cancelled", id, loc.Name),
			})
		}
		s.fanOut(ctx, id, batch)
	}

	prior.Status = models.StatusCancelled
	s.publishEvent(events.EventReservationCancelled, prior)

	return nil
}

// Rate attaches a rating to the caller's reservation. The value is stored
// as-is; no range check and no notifications.
func (s *ReservationService) Rate(ctx context.Context, id, userID int64, rating int) error {
	if _, err := s.repo.GetReservationOwned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.SetReservationRating(ctx, id, rating)
}

// List returns reservations scoped by the caller's role: admins see all,
// owners see reservations on their locations, users see their own. Location
// ids in the filter that the owner does not own drop out in the WHERE clause;
// a supplied filter with no usable ids matches nothing.
func (s *ReservationService) List(ctx context.Context, identity models.Identity, filter models.ReservationFilter) ([]models.ReservationView, error) {
	switch identity.Role {
	case models.RoleAdmin:
		return s.repo.ListAllReservationViews(ctx)
	case models.RoleOwner:
		if filter.Filtered && len(filter.LocationIDs) == 0 {
			return []models.ReservationView{}, nil
		}
		return s.repo.ListReservationViewsByOwner(ctx, identity.UserID, filter.LocationIDs)
	default:
		return s.repo.ListReservationViewsByUser(ctx, identity.UserID)
	}
}

func (s *ReservationService) ListByDateRange(ctx context.Context, from, to string) ([]models.ReservationView, error) {
	if _, err := time.Parse(models.DateLayout, from); err != nil {
		return nil, &models.ValidationError{Field: "from", Reason: "must be YYYY-MM-DD"}
	}
	if _, err := time.Parse(models.DateLayout, to); err != nil {
		return nil, &models.ValidationError{Field: "to", Reason: "must be YYYY-MM-DD"}
	}
	return s.repo.ListReservationViewsByDateRange(ctx, from, to)
}

// fanOut hands the batch to the async notifier; when that fails (or no
// notifier is wired), inserts land directly in the inboxes. Errors never
// reach the caller.
func (s *ReservationService) fanOut(ctx context.Context, reservationID int64, batch []models.Notification) {
	if len(batch) == 0 {
		return
	}

	if s.notifier != nil {
		err := s.notifier.EnqueueFanOut(ctx, reservationID, batch)
		if err == nil {
			return
		}
		s.logger.Error().Err(err).Int64("reservation_id", reservationID).Msg("notify enqueue failed, falling back to direct insert")
	}

	for i := range batch {
		if err := s.repo.InsertNotification(ctx, &batch[i]); err != nil {
			s.logger.Error().Err(err).
				Int64("reservation_id", reservationID).
				Str("type", batch[i].Type).
				Msg("notification insert failed")
			continue
		}
		metrics.IncNotificationEmitted()
	}
}

func (s *ReservationService) publishEvent(eventType string, res *models.Reservation) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: res.ID,
		LocationID:    res.LocationID,
		UserID:        res.UserID,
		Date:          res.Date,
		StartHour:     res.StartHour,
		EndHour:       res.EndHour,
		Status:        res.Status,
		TotalPrice:    res.TotalPrice,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", res.ID).Msg("publish event error")
	}
}
