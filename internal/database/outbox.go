package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quadra/internal/models"
)

// CreateNotifyTask persists a fan-out task before it is offered to the queue,
// so a crashed worker can pick it back up by polling.
func (db *DB) CreateNotifyTask(ctx context.Context, task *models.NotifyTask) error {
	query := `INSERT INTO notify_outbox (task_type, reservation_id, payload, status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	if task.Status == "" {
		task.Status = "pending"
	}
	result, err := db.ExecContext(ctx, query,
		task.TaskType, task.ReservationID, task.Payload, task.Status, now, now)
	if err != nil {
		return fmt.Errorf("failed to create notify task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// GetPendingNotifyTasks returns tasks ready to run: fresh ones plus retries
// whose backoff has elapsed.
func (db *DB) GetPendingNotifyTasks(ctx context.Context, limit int) ([]models.NotifyTask, error) {
	query := `SELECT id, task_type, reservation_id, payload, status, retry_count,
	                 COALESCE(last_error, ''), next_retry_at, created_at, updated_at
	          FROM notify_outbox
	          WHERE status = 'pending' OR (status = 'retry' AND next_retry_at <= ?)
	          ORDER BY id ASC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending notify tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.NotifyTask
	for rows.Next() {
		var t models.NotifyTask
		var nextRetry sql.NullTime
		err := rows.Scan(&t.ID, &t.TaskType, &t.ReservationID, &t.Payload, &t.Status,
			&t.RetryCount, &t.LastError, &nextRetry, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notify task: %w", err)
		}
		if nextRetry.Valid {
			t.NextRetryAt = &nextRetry.Time
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateNotifyTaskStatus transitions a task; retries bump the counter and
// schedule the next attempt.
func (db *DB) UpdateNotifyTaskStatus(ctx context.Context, id int64, status, lastError string, nextRetryAt *time.Time) error {
	var query string
	var args []interface{}
	if status == "retry" {
		query = `UPDATE notify_outbox SET status = ?, last_error = ?, next_retry_at = ?,
		                retry_count = retry_count + 1, updated_at = ? WHERE id = ?`
		args = []interface{}{status, lastError, nextRetryAt, time.Now(), id}
	} else {
		query = `UPDATE notify_outbox SET status = ?, last_error = ?, updated_at = ? WHERE id = ?`
		args = []interface{}{status, lastError, time.Now(), id}
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update notify task status: %w", err)
	}
	return nil
}
