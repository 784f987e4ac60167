package service

import (
	"context"
	"time"

	"quadra/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateLocation(ctx context.Context, loc *models.Location) error {
	return m.Called(ctx, loc).Error(0)
}
func (m *mockRepo) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}
func (m *mockRepo) ListLocationsByApproval(ctx context.Context, approval string) ([]models.Location, error) {
	args := m.Called(ctx, approval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}
func (m *mockRepo) ListLocationsByOwner(ctx context.Context, ownerID int64) ([]models.Location, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}
func (m *mockRepo) ApproveLocation(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) DeleteLocation(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) UpdateLocationOwned(ctx context.Context, id, ownerID int64, fields models.LocationFields) error {
	return m.Called(ctx, id, ownerID, fields).Error(0)
}
func (m *mockRepo) DeleteLocationOwned(ctx context.Context, id, ownerID int64) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *mockRepo) ListActiveReservations(ctx context.Context, locationID int64, date string) ([]models.Reservation, error) {
	args := m.Called(ctx, locationID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}
func (m *mockRepo) CreateReservationWithLock(ctx context.Context, res *models.Reservation) error {
	return m.Called(ctx, res).Error(0)
}
func (m *mockRepo) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}
func (m *mockRepo) GetReservationOwned(ctx context.Context, id, userID int64) (*models.Reservation, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}
func (m *mockRepo) ApplyReservationPatch(ctx context.Context, id int64, patch models.ReservationPatch) error {
	return m.Called(ctx, id, patch).Error(0)
}
func (m *mockRepo) UpdateReservationStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockRepo) SetReservationRating(ctx context.Context, id int64, rating int) error {
	return m.Called(ctx, id, rating).Error(0)
}
func (m *mockRepo) ListAllReservationViews(ctx context.Context) ([]models.ReservationView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReservationView), args.Error(1)
}
func (m *mockRepo) ListReservationViewsByOwner(ctx context.Context, ownerID int64, locationIDs []int64) ([]models.ReservationView, error) {
	args := m.Called(ctx, ownerID, locationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReservationView), args.Error(1)
}
func (m *mockRepo) ListReservationViewsByUser(ctx context.Context, userID int64) ([]models.ReservationView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReservationView), args.Error(1)
}
func (m *mockRepo) ListReservationViewsByDateRange(ctx context.Context, from, to string) ([]models.ReservationView, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReservationView), args.Error(1)
}

func (m *mockRepo) InsertNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockRepo) ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}
func (m *mockRepo) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	return m.Called(ctx, id, userID).Error(0)
}
func (m *mockRepo) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockRepo) UpsertUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *mockRepo) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockRepo) CreateNotifyTask(ctx context.Context, task *models.NotifyTask) error {
	return m.Called(ctx, task).Error(0)
}
func (m *mockRepo) GetPendingNotifyTasks(ctx context.Context, limit int) ([]models.NotifyTask, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NotifyTask), args.Error(1)
}
func (m *mockRepo) UpdateNotifyTaskStatus(ctx context.Context, id int64, status, lastError string, nextRetryAt *time.Time) error {
	return m.Called(ctx, id, status, lastError, nextRetryAt).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) EnqueueFanOut(ctx context.Context, reservationID int64, notifications []models.Notification) error {
	return m.Called(ctx, reservationID, notifications).Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetApproved(ctx context.Context) ([]models.Location, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]models.Location), args.Bool(1)
}
func (m *mockCache) SetApproved(ctx context.Context, locations []models.Location) error {
	return m.Called(ctx, locations).Error(0)
}
func (m *mockCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
