package database

import (
	"context"
	"testing"

	"quadra/internal/models"

	"github.com/stretchr/testify/assert"
)

func newTestReservation(locationID, userID int64, date string, start, end int) *models.Reservation {
	return &models.Reservation{
		LocationID: locationID,
		UserID:     userID,
		Date:       date,
		StartHour:  start,
		EndHour:    end,
		TotalPrice: 100,
	}
}

func TestCreateReservationWithLock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := newTestReservation(1, 10, "2025-01-10", 9, 11)
	assert.NoError(t, db.CreateReservationWithLock(ctx, first))
	assert.NotZero(t, first.ID)
	assert.Equal(t, models.StatusActive, first.Status)

	t.Run("overlapping slot rejected", func(t *testing.T) {
		overlap := newTestReservation(1, 11, "2025-01-10", 10, 12)
		assert.ErrorIs(t, db.CreateReservationWithLock(ctx, overlap), ErrSlotTaken)
	})

	t.Run("boundary touching slot accepted", func(t *testing.T) {
		adjacent := newTestReservation(1, 12, "2025-01-10", 11, 13)
		assert.NoError(t, db.CreateReservationWithLock(ctx, adjacent))
	})

	t.Run("other date accepted", func(t *testing.T) {
		nextDay := newTestReservation(1, 13, "2025-01-11", 9, 11)
		assert.NoError(t, db.CreateReservationWithLock(ctx, nextDay))
	})

	t.Run("cancelled slot frees the interval", func(t *testing.T) {
		assert.NoError(t, db.UpdateReservationStatus(ctx, first.ID, models.StatusCancelled))
		again := newTestReservation(1, 14, "2025-01-10", 9, 11)
		assert.NoError(t, db.CreateReservationWithLock(ctx, again))
	})
}

func TestGetReservationOwned(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	res := newTestReservation(1, 10, "2025-02-01", 8, 9)
	assert.NoError(t, db.CreateReservationWithLock(ctx, res))

	got, err := db.GetReservationOwned(ctx, res.ID, 10)
	assert.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	// Someone else's reservation is indistinguishable from a missing one
	_, err = db.GetReservationOwned(ctx, res.ID, 11)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyReservationPatch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	res := newTestReservation(1, 10, "2025-02-01", 8, 10)
	assert.NoError(t, db.CreateReservationWithLock(ctx, res))

	status := "pendente"
	start := 14
	end := 16
	patch := models.ReservationPatch{StartHour: &start, EndHour: &end, Status: &status}
	assert.NoError(t, db.ApplyReservationPatch(ctx, res.ID, patch))

	got, err := db.GetReservation(ctx, res.ID)
	assert.NoError(t, err)
	assert.Equal(t, 14, got.StartHour)
	assert.Equal(t, 16, got.EndHour)
	// Status strings pass through untouched
	assert.Equal(t, "pendente", got.Status)

	t.Run("empty patch is a no-op", func(t *testing.T) {
		assert.NoError(t, db.ApplyReservationPatch(ctx, res.ID, models.ReservationPatch{}))
	})

	t.Run("absent id", func(t *testing.T) {
		assert.ErrorIs(t, db.ApplyReservationPatch(ctx, 9999, patch), ErrNotFound)
	})
}

func TestSetReservationRating(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	res := newTestReservation(1, 10, "2025-02-01", 8, 9)
	assert.NoError(t, db.CreateReservationWithLock(ctx, res))

	assert.NoError(t, db.SetReservationRating(ctx, res.ID, 4))
	got, err := db.GetReservation(ctx, res.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, got.Rating) {
		assert.Equal(t, 4, *got.Rating)
	}
}

func TestReservationViews(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := &models.User{ID: 1, DisplayName: "Dona Marta", Role: models.RoleOwner}
	player := &models.User{ID: 2, DisplayName: "Carlos", Role: models.RoleUser}
	assert.NoError(t, db.UpsertUser(ctx, owner))
	assert.NoError(t, db.UpsertUser(ctx, player))

	loc := newTestLocation(owner.ID)
	assert.NoError(t, db.CreateLocation(ctx, loc))
	otherLoc := newTestLocation(99)
	assert.NoError(t, db.CreateLocation(ctx, otherLoc))

	mine := newTestReservation(loc.ID, player.ID, "2025-03-01", 9, 11)
	assert.NoError(t, db.CreateReservationWithLock(ctx, mine))
	foreign := newTestReservation(otherLoc.ID, 42, "2025-03-01", 9, 11)
	assert.NoError(t, db.CreateReservationWithLock(ctx, foreign))

	t.Run("admin sees all", func(t *testing.T) {
		all, err := db.ListAllReservationViews(ctx)
		assert.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("owner sees own locations only", func(t *testing.T) {
		views, err := db.ListReservationViewsByOwner(ctx, owner.ID, nil)
		assert.NoError(t, err)
		assert.Len(t, views, 1)
		assert.Equal(t, mine.ID, views[0].ID)
		assert.Equal(t, loc.Name, views[0].LocationName)
		assert.Equal(t, "Carlos", views[0].UserDisplayName)
	})

	t.Run("owner filter with foreign location id yields nothing", func(t *testing.T) {
		views, err := db.ListReservationViewsByOwner(ctx, owner.ID, []int64{otherLoc.ID})
		assert.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("user sees own reservations only", func(t *testing.T) {
		views, err := db.ListReservationViewsByUser(ctx, player.ID)
		assert.NoError(t, err)
		assert.Len(t, views, 1)
		assert.Equal(t, mine.ID, views[0].ID)
	})

	t.Run("orphaned location renders placeholder", func(t *testing.T) {
		assert.NoError(t, db.DeleteLocation(ctx, otherLoc.ID))
		views, err := db.ListReservationViewsByUser(ctx, 42)
		assert.NoError(t, err)
		assert.Len(t, views, 1)
		assert.Contains(t, views[0].LocationName, "Location #")
	})
}
