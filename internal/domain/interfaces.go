package domain

import (
	"context"
	"time"

	"quadra/internal/models"
)

// Repository is the persistence boundary for the whole core. Implemented by
// *database.DB; services depend on this interface so tests can substitute
// mocks.
type Repository interface {
	// Locations
	CreateLocation(ctx context.Context, loc *models.Location) error
	GetLocation(ctx context.Context, id int64) (*models.Location, error)
	ListLocationsByApproval(ctx context.Context, approval string) ([]models.Location, error)
	ListLocationsByOwner(ctx context.Context, ownerID int64) ([]models.Location, error)
	ApproveLocation(ctx context.Context, id int64) error
	DeleteLocation(ctx context.Context, id int64) error
	UpdateLocationOwned(ctx context.Context, id, ownerID int64, fields models.LocationFields) error
	DeleteLocationOwned(ctx context.Context, id, ownerID int64) error

	// Reservations
	ListActiveReservations(ctx context.Context, locationID int64, date string) ([]models.Reservation, error)
	CreateReservationWithLock(ctx context.Context, res *models.Reservation) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	GetReservationOwned(ctx context.Context, id, userID int64) (*models.Reservation, error)
	ApplyReservationPatch(ctx context.Context, id int64, patch models.ReservationPatch) error
	UpdateReservationStatus(ctx context.Context, id int64, status string) error
	SetReservationRating(ctx context.Context, id int64, rating int) error
	ListAllReservationViews(ctx context.Context) ([]models.ReservationView, error)
	ListReservationViewsByOwner(ctx context.Context, ownerID int64, locationIDs []int64) ([]models.ReservationView, error)
	ListReservationViewsByUser(ctx context.Context, userID int64) ([]models.ReservationView, error)
	ListReservationViewsByDateRange(ctx context.Context, from, to string) ([]models.ReservationView, error)

	// Notifications
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) error

	// Users
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)

	// Notification outbox
	CreateNotifyTask(ctx context.Context, task *models.NotifyTask) error
	GetPendingNotifyTasks(ctx context.Context, limit int) ([]models.NotifyTask, error)
	UpdateNotifyTaskStatus(ctx context.Context, id int64, status, lastError string, nextRetryAt *time.Time) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier accepts a fan-out batch for asynchronous delivery into user
// inboxes. Callers treat any error as non-fatal; the primary mutation has
// already committed when this is called.
type Notifier interface {
	EnqueueFanOut(ctx context.Context, reservationID int64, notifications []models.Notification) error
}

// LocationCache fronts the approved-location listing. A miss or any cache
// error falls through to the database.
type LocationCache interface {
	GetApproved(ctx context.Context) ([]models.Location, bool)
	SetApproved(ctx context.Context, locations []models.Location) error
	Invalidate(ctx context.Context) error
}

type LocationService interface {
	Create(ctx context.Context, ownerID int64, fields models.LocationFields) (*models.Location, error)
	Get(ctx context.Context, id int64) (*models.Location, error)
	ListApproved(ctx context.Context) ([]models.Location, error)
	ListMine(ctx context.Context, ownerID int64) ([]models.Location, error)
	ListPending(ctx context.Context) ([]models.Location, error)
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
	Update(ctx context.Context, id, ownerID int64, fields models.LocationFields) (*models.Location, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

type ReservationService interface {
	Create(ctx context.Context, userID, locationID int64, date string, startHour, endHour int) (*models.Reservation, error)
	Update(ctx context.Context, id, userID int64, patch models.ReservationPatch) (*models.Reservation, error)
	Cancel(ctx context.Context, id, userID int64) error
	Rate(ctx context.Context, id, userID int64, rating int) error
	List(ctx context.Context, identity models.Identity, filter models.ReservationFilter) ([]models.ReservationView, error)
	ListByDateRange(ctx context.Context, from, to string) ([]models.ReservationView, error)
}

type NotificationService interface {
	List(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	Emit(ctx context.Context, recipientID int64, typeTag, message string) error
}
