package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quadra/internal/models"
)

const locationColumns = `id, owner_id, name, description, address, sport, hourly_rate,
                 availability, phone, photos, approval_status, created_at, updated_at`

func (db *DB) CreateLocation(ctx context.Context, loc *models.Location) error {
	photos, err := marshalPhotos(loc.Photos)
	if err != nil {
		return err
	}

	query := `INSERT INTO locations (
				owner_id, name, description, address, sport, hourly_rate,
				availability, phone, photos, approval_status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		loc.OwnerID,
		loc.Name,
		loc.Description,
		loc.Address,
		loc.Sport,
		loc.HourlyRate,
		loc.Availability,
		loc.Phone,
		photos,
		models.ApprovalPending,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	loc.ID = id
	loc.Approval = models.ApprovalPending
	loc.CreatedAt = now
	loc.UpdatedAt = now

	return nil
}

func (db *DB) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = ?`
	return db.scanLocationRow(db.QueryRowContext(ctx, query, id))
}

// ListLocationsByApproval returns locations in one approval state, newest
// first. Feeds both the public listing (approved) and the admin review queue
// (pending).
func (db *DB) ListLocationsByApproval(ctx context.Context, approval string) ([]models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE approval_status = ? ORDER BY created_at DESC, id DESC`
	rows, err := db.QueryContext(ctx, query, approval)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations by approval: %w", err)
	}
	defer rows.Close()

	return scanLocations(rows)
}

func (db *DB) ListLocationsByOwner(ctx context.Context, ownerID int64) ([]models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE owner_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations by owner: %w", err)
	}
	defer rows.Close()

	return scanLocations(rows)
}

// ApproveLocation flips a location to approved. Approving an already-approved
// location is a no-op success; an absent id is ErrNotFound.
func (db *DB) ApproveLocation(ctx context.Context, id int64) error {
	if _, err := db.GetLocation(ctx, id); err != nil {
		return err
	}

	query := `UPDATE locations SET approval_status = ?, updated_at = ? WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, models.ApprovalApproved, time.Now(), id); err != nil {
		return fmt.Errorf("failed to approve location: %w", err)
	}
	return nil
}

// DeleteLocation removes a location outright regardless of owner. Used by the
// admin reject path; reservations pointing at the id become orphans.
func (db *DB) DeleteLocation(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLocationOwned applies owner-editable fields. The owner check is part
// of the WHERE clause, so "not yours" and "absent" both come back ErrNotFound.
func (db *DB) UpdateLocationOwned(ctx context.Context, id, ownerID int64, fields models.LocationFields) error {
	photos, err := marshalPhotos(fields.Photos)
	if err != nil {
		return err
	}

	query := `UPDATE locations SET name = ?, description = ?, address = ?, sport = ?,
	                 hourly_rate = ?, availability = ?, phone = ?, photos = ?, updated_at = ?
	          WHERE id = ? AND owner_id = ?`
	result, err := db.ExecContext(ctx, query,
		fields.Name,
		fields.Description,
		fields.Address,
		fields.Sport,
		fields.HourlyRate,
		fields.Availability,
		fields.Phone,
		photos,
		time.Now(),
		id,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteLocationOwned(ctx context.Context, id, ownerID int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM locations WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) scanLocationRow(row *sql.Row) (*models.Location, error) {
	var loc models.Location
	var photosRaw string
	err := row.Scan(
		&loc.ID, &loc.OwnerID, &loc.Name, &loc.Description, &loc.Address, &loc.Sport,
		&loc.HourlyRate, &loc.Availability, &loc.Phone, &photosRaw, &loc.Approval,
		&loc.CreatedAt, &loc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	loc.Photos, err = unmarshalPhotos(photosRaw)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func scanLocations(rows *sql.Rows) ([]models.Location, error) {
	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		var photosRaw string
		err := rows.Scan(
			&loc.ID, &loc.OwnerID, &loc.Name, &loc.Description, &loc.Address, &loc.Sport,
			&loc.HourlyRate, &loc.Availability, &loc.Phone, &photosRaw, &loc.Approval,
			&loc.CreatedAt, &loc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		loc.Photos, err = unmarshalPhotos(photosRaw)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locations, nil
}

func marshalPhotos(photos []string) (string, error) {
	if photos == nil {
		photos = []string{}
	}
	raw, err := json.Marshal(photos)
	if err != nil {
		return "", fmt.Errorf("failed to encode photos: %w", err)
	}
	return string(raw), nil
}

func unmarshalPhotos(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var photos []string
	if err := json.Unmarshal([]byte(raw), &photos); err != nil {
		return nil, fmt.Errorf("failed to decode photos: %w", err)
	}
	return photos, nil
}
