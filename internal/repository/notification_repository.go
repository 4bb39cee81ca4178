package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/models"
)

// INotificationRepository defines persistence for delivery records.
type INotificationRepository interface {
	Create(ctx context.Context, n *models.AlertNotification) error
	GetByID(ctx context.Context, id int) (*models.AlertNotification, error)
	MarkSent(ctx context.Context, id int, providerMessageID *string) error
	MarkFailed(ctx context.Context, id int, errorMessage string) error
	IncrementRetry(ctx context.Context, id int) error
	ListByEvent(ctx context.Context, eventID int) ([]models.AlertNotification, error)
	ListByStatus(ctx context.Context, status models.NotificationStatus, limit int) ([]models.AlertNotification, error)
}

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `
	id, alert_event_id, channel, recipient, status, message_type,
	message_content, provider_message_id, sent_at, delivered_at, failed_at,
	retry_count, error_message, created_at
`

// Create inserts a delivery record. The dispatcher calls this with status
// pending before the network attempt.
func (r *NotificationRepository) Create(ctx context.Context, n *models.AlertNotification) error {
	query := `
		INSERT INTO alert_notifications (
			alert_event_id, channel, recipient, status, message_type,
			message_content, retry_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	n.CreatedAt = time.Now()
	if n.Status == "" {
		n.Status = models.NotificationPending
	}

	err := r.db.QueryRowContext(
		ctx, query,
		n.AlertEventID,
		n.Channel,
		n.Recipient,
		n.Status,
		n.MessageType,
		n.MessageContent,
		n.RetryCount,
		n.CreatedAt,
	).Scan(&n.ID)

	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int) (*models.AlertNotification, error) {
	query := `SELECT ` + notificationColumns + ` FROM alert_notifications WHERE id = $1`

	n := &models.AlertNotification{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.AlertEventID, &n.Channel, &n.Recipient, &n.Status,
		&n.MessageType, &n.MessageContent, &n.ProviderMessageID,
		&n.SentAt, &n.DeliveredAt, &n.FailedAt,
		&n.RetryCount, &n.ErrorMessage, &n.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification %d: %w", id, err)
	}

	return n, nil
}

// MarkSent flips a record to sent and stamps the send time and the
// provider's message id when the channel returned one.
func (r *NotificationRepository) MarkSent(ctx context.Context, id int, providerMessageID *string) error {
	query := `
		UPDATE alert_notifications
		SET status = $1, sent_at = $2, provider_message_id = $3, error_message = NULL
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, models.NotificationSent, time.Now(), providerMessageID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification %d sent: %w", id, err)
	}

	return requireNotificationRow(result, id)
}

// MarkFailed flips a record to failed with the channel's error text.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id int, errorMessage string) error {
	query := `
		UPDATE alert_notifications
		SET status = $1, failed_at = $2, error_message = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, models.NotificationFailed, time.Now(), errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification %d failed: %w", id, err)
	}

	return requireNotificationRow(result, id)
}

// IncrementRetry bumps retry_count by one without touching status.
func (r *NotificationRepository) IncrementRetry(ctx context.Context, id int) error {
	query := `UPDATE alert_notifications SET retry_count = retry_count + 1 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment retry count for notification %d: %w", id, err)
	}

	return requireNotificationRow(result, id)
}

// ListByEvent returns all delivery records for one event, oldest first.
func (r *NotificationRepository) ListByEvent(ctx context.Context, eventID int) ([]models.AlertNotification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM alert_notifications
		WHERE alert_event_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications for event %d: %w", eventID, err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// ListByStatus returns delivery records in a given status, newest first.
func (r *NotificationRepository) ListByStatus(ctx context.Context, status models.NotificationStatus, limit int) ([]models.AlertNotification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM alert_notifications
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications by status: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

func requireNotificationRow(result sql.Result, id int) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func scanNotifications(rows *sql.Rows) ([]models.AlertNotification, error) {
	var notifications []models.AlertNotification
	for rows.Next() {
		var n models.AlertNotification
		err := rows.Scan(
			&n.ID, &n.AlertEventID, &n.Channel, &n.Recipient, &n.Status,
			&n.MessageType, &n.MessageContent, &n.ProviderMessageID,
			&n.SentAt, &n.DeliveredAt, &n.FailedAt,
			&n.RetryCount, &n.ErrorMessage, &n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
