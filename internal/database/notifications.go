package database

import (
	"context"
	"fmt"
	"time"

	"quadra/internal/models"
)

// InsertNotification appends a row to the recipient's inbox.
func (db *DB) InsertNotification(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notifications (user_id, type, message, read, created_at)
	          VALUES (?, ?, ?, 0, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, n.UserID, n.Type, n.Message, now)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = id
	n.Read = false
	n.CreatedAt = now
	return nil
}

func (db *DB) ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	query := `SELECT id, user_id, type, message, read, created_at
	          FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead sets the read flag for a notification the caller owns.
// Marking an already-read notification succeeds again; a foreign or absent id
// is ErrNotFound either way.
func (db *DB) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead flips every unread notification; no-op when none.
func (db *DB) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return nil
}
