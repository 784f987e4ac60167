package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quadra/internal/models"
	"quadra/internal/schedule"
)

const reservationColumns = `id, location_id, user_id, date, start_hour, end_hour,
                 total_price, status, rating, created_at, updated_at`

// ListActiveReservations returns the active rows for one location and date,
// the working set of the conflict checker.
func (db *DB) ListActiveReservations(ctx context.Context, locationID int64, date string) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE location_id = ? AND date = ? AND status = ?`
	rows, err := db.QueryContext(ctx, query, locationID, date, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active reservations: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// CreateReservationWithLock re-runs the conflict check against the latest
// committed state and inserts inside one transaction. Two concurrent requests
// for the same free slot serialize here: exactly one commits, the other gets
// ErrSlotTaken.
func (db *DB) CreateReservationWithLock(ctx context.Context, res *models.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 1. Re-check the slot inside the transaction
	queryExisting := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE location_id = ? AND date = ? AND status = ?`
	rows, err := tx.QueryContext(ctx, queryExisting, res.LocationID, res.Date, models.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to check slot in tx: %w", err)
	}
	existing, err := scanReservations(rows)
	rows.Close()
	if err != nil {
		return err
	}

	if schedule.HasConflict(existing, res.LocationID, res.Date, res.StartHour, res.EndHour) {
		return ErrSlotTaken
	}

	// 2. Insert the reservation
	queryInsert := `INSERT INTO reservations (
				location_id, user_id, date, start_hour, end_hour,
				total_price, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		res.LocationID,
		res.UserID,
		res.Date,
		res.StartHour,
		res.EndHour,
		res.TotalPrice,
		models.StatusActive,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	res.ID = id
	res.Status = models.StatusActive
	res.CreatedAt = now
	res.UpdatedAt = now

	return tx.Commit()
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return db.scanReservationRow(db.QueryRowContext(ctx, query, id))
}

// GetReservationOwned fetches a reservation only when it belongs to userID.
// A foreign or absent id is ErrNotFound either way.
func (db *DB) GetReservationOwned(ctx context.Context, id, userID int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? AND user_id = ?`
	return db.scanReservationRow(db.QueryRowContext(ctx, query, id, userID))
}

// ApplyReservationPatch updates only the fields the patch carries. Values are
// written verbatim; callers own any semantics of the status string.
func (db *DB) ApplyReservationPatch(ctx context.Context, id int64, patch models.ReservationPatch) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	if patch.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *patch.Date)
	}
	if patch.StartHour != nil {
		sets = append(sets, "start_hour = ?")
		args = append(args, *patch.StartHour)
	}
	if patch.EndHour != nil {
		sets = append(sets, "end_hour = ?")
		args = append(args, *patch.EndHour)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	query := `UPDATE reservations SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to patch reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UpdateReservationStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) SetReservationRating(ctx context.Context, id int64, rating int) error {
	query := `UPDATE reservations SET rating = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, rating, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set reservation rating: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// reservationViewQuery joins locations and users so listings stay readable
// even after a reject-by-delete orphaned the location reference.
const reservationViewQuery = `
	SELECT r.id, r.location_id, r.user_id, r.date, r.start_hour, r.end_hour,
	       r.total_price, r.status, r.rating, r.created_at, r.updated_at,
	       COALESCE(l.name, 'Location #' || r.location_id) AS location_name,
	       COALESCE(l.address, '') AS location_address,
	       COALESCE(l.sport, '') AS location_sport,
	       COALESCE(u.display_name, '') AS user_display_name
	FROM reservations r
	LEFT JOIN locations l ON l.id = r.location_id
	LEFT JOIN users u ON u.id = r.user_id`

func (db *DB) ListAllReservationViews(ctx context.Context) ([]models.ReservationView, error) {
	rows, err := db.QueryContext(ctx, reservationViewQuery+` ORDER BY r.date DESC, r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	return scanReservationViews(rows)
}

// ListReservationViewsByOwner returns reservations on locations the owner
// holds, optionally narrowed to a location-id subset. Ids outside the owner's
// set simply match nothing.
func (db *DB) ListReservationViewsByOwner(ctx context.Context, ownerID int64, locationIDs []int64) ([]models.ReservationView, error) {
	query := reservationViewQuery + ` WHERE l.owner_id = ?`
	args := []interface{}{ownerID}

	if len(locationIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(locationIDs)), ",")
		query += ` AND r.location_id IN (` + placeholders + `)`
		for _, id := range locationIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY r.date DESC, r.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner reservations: %w", err)
	}
	defer rows.Close()

	return scanReservationViews(rows)
}

func (db *DB) ListReservationViewsByUser(ctx context.Context, userID int64) ([]models.ReservationView, error) {
	rows, err := db.QueryContext(ctx, reservationViewQuery+` WHERE r.user_id = ? ORDER BY r.date DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user reservations: %w", err)
	}
	defer rows.Close()

	return scanReservationViews(rows)
}

// ListReservationViewsByDateRange feeds the admin export.
func (db *DB) ListReservationViewsByDateRange(ctx context.Context, from, to string) ([]models.ReservationView, error) {
	query := reservationViewQuery + ` WHERE r.date >= ? AND r.date <= ? ORDER BY r.date ASC, r.start_hour ASC`
	rows, err := db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations by date range: %w", err)
	}
	defer rows.Close()

	return scanReservationViews(rows)
}

func (db *DB) scanReservationRow(row *sql.Row) (*models.Reservation, error) {
	var res models.Reservation
	var rating sql.NullInt64
	err := row.Scan(
		&res.ID, &res.LocationID, &res.UserID, &res.Date, &res.StartHour, &res.EndHour,
		&res.TotalPrice, &res.Status, &rating, &res.CreatedAt, &res.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if rating.Valid {
		v := int(rating.Int64)
		res.Rating = &v
	}
	return &res, nil
}

func scanReservations(rows *sql.Rows) ([]models.Reservation, error) {
	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		var rating sql.NullInt64
		err := rows.Scan(
			&res.ID, &res.LocationID, &res.UserID, &res.Date, &res.StartHour, &res.EndHour,
			&res.TotalPrice, &res.Status, &rating, &res.CreatedAt, &res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		if rating.Valid {
			v := int(rating.Int64)
			res.Rating = &v
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

func scanReservationViews(rows *sql.Rows) ([]models.ReservationView, error) {
	var views []models.ReservationView
	for rows.Next() {
		var v models.ReservationView
		var rating sql.NullInt64
		err := rows.Scan(
			&v.ID, &v.LocationID, &v.UserID, &v.Date, &v.StartHour, &v.EndHour,
			&v.TotalPrice, &v.Status, &rating, &v.CreatedAt, &v.UpdatedAt,
			&v.LocationName, &v.LocationAddress, &v.LocationSport, &v.UserDisplayName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation view: %w", err)
		}
		if rating.Valid {
			r := int(rating.Int64)
			v.Rating = &r
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}
