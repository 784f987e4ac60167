package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"quadra/internal/database"
	"quadra/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func testLocation() *models.Location {
	return &models.Location{
		ID:         1,
		OwnerID:    2,
		Name:       "Quadra Central",
		Address:    "Rua A, 100",
		Sport:      "futsal",
		HourlyRate: 80,
		Approval:   models.ApprovalApproved,
	}
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := &mockRepo{}
		notifier := &mockNotifier{}
		svc := NewReservationService(repo, nil, notifier, testLogger())

		repo.On("GetLocation", ctx, int64(1)).Return(testLocation(), nil)
		repo.On("CreateReservationWithLock", ctx, mock.AnythingOfType("*models.Reservation")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Reservation).ID = 10
			}).Return(nil)
		notifier.On("EnqueueFanOut", ctx, int64(10), mock.AnythingOfType("[]models.Notification")).Return(nil)

		res, err := svc.Create(ctx, 5, 1, "2025-02-10", 9, 11)
		require.NoError(t, err)
		assert.Equal(t, int64(10), res.ID)
		assert.Equal(t, models.StatusActive, res.Status)
		assert.Equal(t, 160.0, res.TotalPrice)

		notifier.AssertCalled(t, "EnqueueFanOut", ctx, int64(10), mock.MatchedBy(func(batch []models.Notification) bool {
			return len(batch) == 2 &&
				batch[0].UserID == 5 && batch[0].Type == models.NotifReservationCreated &&
				batch[1].UserID == 2 && batch[1].Type == models.NotifNewReservationForOwner
		}))
	})

	t.Run("PriceRounding", func(t *testing.T) {
		repo := &mockRepo{}
		loc := testLocation()
		loc.HourlyRate = 79.99
		svc := NewReservationService(repo, nil, nil, testLogger())

		repo.On("GetLocation", ctx, int64(1)).Return(loc, nil)
		repo.On("CreateReservationWithLock", ctx, mock.Anything).Return(nil)
		repo.On("InsertNotification", ctx, mock.Anything).Return(nil)

		res, err := svc.Create(ctx, 5, 1, "2025-02-10", 9, 12)
		require.NoError(t, err)
		assert.Equal(t, 239.97, res.TotalPrice)
	})

	t.Run("SlotTaken", func(t *testing.T) {
		repo := &mockRepo{}
		notifier := &mockNotifier{}
		svc := NewReservationService(repo, nil, notifier, testLogger())

		repo.On("GetLocation", ctx, int64(1)).Return(testLocation(), nil)
		repo.On("CreateReservationWithLock", ctx, mock.Anything).Return(database.ErrSlotTaken)

		_, err := svc.Create(ctx, 5, 1, "2025-02-10", 9, 11)
		assert.ErrorIs(t, err, database.ErrSlotTaken)
		notifier.AssertNotCalled(t, "EnqueueFanOut", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LocationNotFound", func(t *testing.T) {
		repo := &mockRepo{}
		svc := NewReservationService(repo, nil, nil, testLogger())

		repo.On("GetLocation", ctx, int64(99)).Return(nil, database.ErrNotFound)

		_, err := svc.Create(ctx, 5, 99, "2025-02-10", 9, 11)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("Validation", func(t *testing.T) {
		svc := NewReservationService(&mockRepo{}, nil, nil, testLogger())
		var vErr *models.ValidationError

		_, err := svc.Create(ctx, 5, 1, "", 9, 11)
		assert.ErrorAs(t, err, &vErr)

		_, err = svc.Create(ctx, 5, 1, "10/02/2025", 9, 11)
		assert.ErrorAs(t, err, &vErr)

		_, err = svc.Create(ctx, 5, 1, "2025-02-10", 11, 11)
		assert.ErrorAs(t, err, &vErr)

		_, err = svc.Create(ctx, 5, 1, "2025-02-10", -1, 2)
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("NotifierFailureDoesNotFailCreate", func(t *testing.T) {
		repo := &mockRepo{}
		notifier := &mockNotifier{}
		svc := NewReservationService(repo, nil, notifier, testLogger())

		repo.On("GetLocation", ctx, int64(1)).Return(testLocation(), nil)
		repo.On("CreateReservationWithLock", ctx, mock.Anything).Return(nil)
		notifier.On("EnqueueFanOut", ctx, mock.Anything, mock.Anything).Return(errors.New("redis down"))
		repo.On("InsertNotification", ctx, mock.Anything).Return(nil)

		res, err := svc.Create(ctx, 5, 1, "2025-02-10", 9, 11)
		require.NoError(t, err)
		assert.NotNil(t, res)

		// Fallback path writes both inbox rows directly
		repo.AssertNumberOfCalls(t, "InsertNotification", 2)
	})

	t.Run("SelfBookingSkipsOwnerNotification", func(t *testing.T) {
		repo := &mockRepo{}
		notifier := &mockNotifier{}
		svc := NewReservationService(repo, nil, notifier, testLogger())

		loc := testLocation()
		loc.OwnerID = 5
		repo.On("GetLocation", ctx, int64(1)).Return(loc, nil)
		repo.On("CreateReservationWithLock", ctx, mock.Anything).Return(nil)
		notifier.On("EnqueueFanOut", ctx, mock.Anything, mock.MatchedBy(func(batch []models.Notification) bool {
			return len(batch) == 1 && batch[0].UserID == 5
		})).Return(nil)

		_, err := svc.Create(ctx, 5, 1, "2025-02-10", 9, 11)
		require.NoError(t, err)
		notifier.AssertExpectations(t)
	})
}

func TestUpdateReservation(t *testing.T) {
	ctx := context.Background()
	status := "pendente"

	t.Run("StatusChangeNotifiesBothSides", func(t *testing.T) {
		repo := &mockRepo{}
		notifier := &mockNotifier{}
		svc := NewReservationService(repo, nil, notifier, testLogger())

		prior := &models.Reservation{ID: 10, LocationID: 1, UserID: 5, Status: models.StatusActive}
		updated := &models.Reservation{ID: 10, LocationID: 1, UserID: 5, Status: status}
		patch := models.ReservationPatch{Status: &status}

		repo.On("GetReservationOwned", ctx, int64(10), int64(5)).Return(prior, nil)
		repo.On("ApplyReservationPatch", ctx, int64(10), patch).Return(nil)
		repo.On("GetReservation", ctx, int64(10)).Return(updated, nil)
		repo.On("GetLocation", ctx, int64(1)).Return(testLocation(), nil)
		notifier.On("EnqueueFanOut", ctx, int64(10), mock.MatchedBy(func(batch []models.Notification) bool {
			return len(batch) == 2 &&
				batch[0].Type == models.NotifReservationUpdated &&
				batch[1].Type == models.NotifReservationUpdatedOwner
		})).Return(nil)

		got, err := svc.Update(ctx, 10, 5, patch)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
		notifier.AssertExpectations(t)
	})

	t.Run("SameStatusIsSilent", func(t *testing.T) {
		repo := &mockRepo{}
		notifier := &mockNotifier{}
		svc := NewReservationService(repo, nil, notifier, testLogger())

		active := models.StatusActive
		prior := &models.Reservation{ID: 10, LocationID: 1, UserID: 5, Status: models.StatusActive}
		patch := models.ReservationPatch{Status: &active}

		repo.On("GetReservationOwned", ctx, int64(10), int64(5)).Return(prior, nil)
		repo.On("ApplyReservationPatch", ctx, int64(10), patch).Return(nil)
		repo.On("GetReservation", ctx, int64(10)).Return(prior, nil)

		_, err := svc.Update(ctx, 10, 5, patch)
		require.NoError(t, err)
		notifier.AssertNotCalled(t, "EnqueueFanOut", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotOwner", func(t *testing.T) {
		repo := &mockRepo{}
		svc := NewReservationService(repo, nil, nil, testLogger())

		repo.On("GetReservationOwned", ctx, int64(10), int64(6)).Return(nil, database.ErrNotFound)

		_, err := svc.Update(ctx, 10, 6, models.ReservationPatch{Status: &status})
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("EmptyPatch", func(t *testing.T) {
		svc := NewReservationService(&mockRepo{}, nil, nil, testLogger())

		var vErr *models.ValidationError
		_, err := svc.Update(ctx, 10, 5, models.ReservationPatch{})
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestCancelReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("ActiveCancelNotifies", func(t *testing.T) {
		repo := &mockRepo{}
		notifier := &mockNotifier{}
		svc := NewReservationService(repo, nil, notifier, testLogger())

		prior := &models.Reservation{ID: 10, LocationID: 1, UserID: 5, Status: models.StatusActive}
		repo.On("GetReservationOwned", ctx, int64(10), int64(5)).Return(prior, nil)
		repo.On("UpdateReservationStatus", ctx, int64(10), models.StatusCancelled).Return(nil)
		repo.On("GetLocation", ctx, int64(1)).Return(testLocation(), nil)
		notifier.On("EnqueueFanOut", ctx, int64(10), mock.MatchedBy(func(batch []models.Notification) bool {
			return len(batch) == 2 &&
				batch[0].Type == models.NotifReservationCancelled &&
				batch[1].Type == models.NotifReservationCancelledOwner
		})).Return(nil)

		require.NoError(t, svc.Cancel(ctx, 10, 5))
		notifier.AssertExpectations(t)
	})

	t.Run("RepeatedCancelIsSilent", func(t *testing.T) {
		repo := &mockRepo{}
		notifier := &mockNotifier{}
		svc := NewReservationService(repo, nil, notifier, testLogger())

		prior := &models.Reservation{ID: 10, LocationID: 1, UserID: 5, Status: models.StatusCancelled}
		repo.On("GetReservationOwned", ctx, int64(10), int64(5)).Return(prior, nil)
		repo.On("UpdateReservationStatus", ctx, int64(10), models.StatusCancelled).Return(nil)

		require.NoError(t, svc.Cancel(ctx, 10, 5))
		notifier.AssertNotCalled(t, "EnqueueFanOut", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRateReservation(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	svc := NewReservationService(repo, nil, nil, testLogger())

	prior := &models.Reservation{ID: 10, LocationID: 1, UserID: 5, Status: models.StatusCancelled}
	repo.On("GetReservationOwned", ctx, int64(10), int64(5)).Return(prior, nil)
	repo.On("SetReservationRating", ctx, int64(10), 99).Return(nil)

	// Любое значение проходит, диапазон не проверяется
	assert.NoError(t, svc.Rate(ctx, 10, 5, 99))
}

func TestListReservationsByRole(t *testing.T) {
	ctx := context.Background()

	t.Run("Admin", func(t *testing.T) {
		repo := &mockRepo{}
		svc := NewReservationService(repo, nil, nil, testLogger())
		repo.On("ListAllReservationViews", ctx).Return([]models.ReservationView{}, nil)

		_, err := svc.List(ctx, models.Identity{UserID: 1, Role: models.RoleAdmin}, models.ReservationFilter{})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("OwnerWithFilter", func(t *testing.T) {
		repo := &mockRepo{}
		svc := NewReservationService(repo, nil, nil, testLogger())
		repo.On("ListReservationViewsByOwner", ctx, int64(2), []int64{1, 3}).Return([]models.ReservationView{}, nil)

		_, err := svc.List(ctx, models.Identity{UserID: 2, Role: models.RoleOwner}, models.ReservationFilter{LocationIDs: []int64{1, 3}})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("OwnerWithUnusableFilter", func(t *testing.T) {
		repo := &mockRepo{}
		svc := NewReservationService(repo, nil, nil, testLogger())

		// Фильтр задан, но валидных id нет: пустой результат без запроса
		views, err := svc.List(ctx, models.Identity{UserID: 2, Role: models.RoleOwner}, models.ReservationFilter{Filtered: true})
		require.NoError(t, err)
		assert.Empty(t, views)
		repo.AssertNotCalled(t, "ListReservationViewsByOwner", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("User", func(t *testing.T) {
		repo := &mockRepo{}
		svc := NewReservationService(repo, nil, nil, testLogger())
		repo.On("ListReservationViewsByUser", ctx, int64(5)).Return([]models.ReservationView{}, nil)

		_, err := svc.List(ctx, models.Identity{UserID: 5, Role: models.RoleUser}, models.ReservationFilter{})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
