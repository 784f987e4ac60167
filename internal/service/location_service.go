package service

import (
	"context"

	"quadra/internal/domain"
	"quadra/internal/events"
	"quadra/internal/models"

	"github.com/rs/zerolog"
)

type LocationService struct {
	repo     domain.Repository
	cache    domain.LocationCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewLocationService(repo domain.Repository, cache domain.LocationCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *LocationService {
	return &LocationService{
		repo:     repo,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *LocationService) Create(ctx context.Context, ownerID int64, fields models.LocationFields) (*models.Location, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	loc := &models.Location{
		OwnerID:      ownerID,
		Name:         fields.Name,
		Description:  fields.Description,
		Address:      fields.Address,
		Sport:        fields.Sport,
		HourlyRate:   fields.HourlyRate,
		Availability: fields.Availability,
		Phone:        fields.Phone,
		Photos:       fields.Photos,
	}
	if err := s.repo.CreateLocation(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *LocationService) Get(ctx context.Context, id int64) (*models.Location, error) {
	return s.repo.GetLocation(ctx, id)
}

// ListApproved serves the public listing, redis-first.
func (s *LocationService) ListApproved(ctx context.Context) ([]models.Location, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetApproved(ctx); ok {
			return cached, nil
		}
	}

	locations, err := s.repo.ListLocationsByApproval(ctx, models.ApprovalApproved)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetApproved(ctx, locations); err != nil {
			s.logger.Warn().Err(err).Msg("location cache write failed")
		}
	}
	return locations, nil
}

func (s *LocationService) ListMine(ctx context.Context, ownerID int64) ([]models.Location, error) {
	return s.repo.ListLocationsByOwner(ctx, ownerID)
}

func (s *LocationService) ListPending(ctx context.Context) ([]models.Location, error) {
	return s.repo.ListLocationsByApproval(ctx, models.ApprovalPending)
}

func (s *LocationService) Approve(ctx context.Context, id int64) error {
	if err := s.repo.ApproveLocation(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx)

	if loc, err := s.repo.GetLocation(ctx, id); err == nil {
		s.publishApproved(loc)
	}
	return nil
}

// Reject deletes the location outright. Existing reservations keep their
// location_id and become orphans; listings substitute a placeholder name.
func (s *LocationService) Reject(ctx context.Context, id int64) error {
	if err := s.repo.DeleteLocation(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *LocationService) Update(ctx context.Context, id, ownerID int64, fields models.LocationFields) (*models.Location, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLocationOwned(ctx, id, ownerID, fields); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)

	return s.repo.GetLocation(ctx, id)
}

func (s *LocationService) Delete(ctx context.Context, id, ownerID int64) error {
	if err := s.repo.DeleteLocationOwned(ctx, id, ownerID); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *LocationService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("location cache invalidate failed")
	}
}

func (s *LocationService) publishApproved(loc *models.Location) {
	if s.eventBus == nil {
		return
	}

	payload := events.LocationEventPayload{
		LocationID: loc.ID,
		OwnerID:    loc.OwnerID,
		Name:       loc.Name,
	}
	if err := s.eventBus.PublishJSON(events.EventLocationApproved, payload); err != nil {
		s.logger.Error().Err(err).Int64("location_id", loc.ID).Msg("publish event error")
	}
}
