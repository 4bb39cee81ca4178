package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/models"
)

// IEventRepository defines persistence for alert events.
type IEventRepository interface {
	Create(ctx context.Context, event *models.AlertEvent) error
	GetByID(ctx context.Context, id int) (*models.AlertEvent, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.AlertEvent, error)
	GetActive(ctx context.Context) ([]models.AlertEvent, error)
	GetActiveOutageBySite(ctx context.Context, siteID string) ([]models.AlertEvent, error)
	Acknowledge(ctx context.Context, id int, actor string, note *string) error
	Resolve(ctx context.Context, id int, actor string, note *string, auto bool) error
	Ignore(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `
	id, event_type, severity, status, site_id, title, description,
	device_count, device_outage_count, outage_percentage,
	acknowledged_by, acknowledged_at, acknowledged_note,
	resolved_by, resolved_at, resolved_note, auto_resolved,
	created_at, updated_at
`

// Create inserts a new event and fills in the generated id and timestamps.
func (r *EventRepository) Create(ctx context.Context, event *models.AlertEvent) error {
	query := `
		INSERT INTO alert_events (
			event_type, severity, status, site_id, title, description,
			device_count, device_outage_count, outage_percentage,
			auto_resolved, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Status == "" {
		event.Status = models.EventActive
	}

	err := r.db.QueryRowContext(
		ctx, query,
		event.EventType,
		event.Severity,
		event.Status,
		event.SiteID,
		event.Title,
		event.Description,
		event.DeviceCount,
		event.DeviceOutageCount,
		event.OutagePercentage,
		event.AutoResolved,
		event.CreatedAt,
		event.UpdatedAt,
	).Scan(&event.ID)

	if err != nil {
		return fmt.Errorf("failed to create alert event: %w", err)
	}

	return nil
}

// GetByID retrieves a single event by its primary key.
func (r *EventRepository) GetByID(ctx context.Context, id int) (*models.AlertEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM alert_events WHERE id = $1`

	event := &models.AlertEvent{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.EventType, &event.Severity, &event.Status,
		&event.SiteID, &event.Title, &event.Description,
		&event.DeviceCount, &event.DeviceOutageCount, &event.OutagePercentage,
		&event.AcknowledgedBy, &event.AcknowledgedAt, &event.AcknowledgedNote,
		&event.ResolvedBy, &event.ResolvedAt, &event.ResolvedNote,
		&event.AutoResolved, &event.CreatedAt, &event.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("event %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}

	return event, nil
}

// List returns events matching the filter, newest first.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.AlertEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM alert_events WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		query += fmt.Sprintf(" AND severity = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND event_type = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetActive returns every event still in active status, newest first.
func (r *EventRepository) GetActive(ctx context.Context) ([]models.AlertEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM alert_events
		WHERE status = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, models.EventActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetActiveOutageBySite returns the active outage-class events for one site.
// The detection engine relies on this for the one-active-event dedup rule.
func (r *EventRepository) GetActiveOutageBySite(ctx context.Context, siteID string) ([]models.AlertEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM alert_events
		WHERE site_id = $1
		  AND status = $2
		  AND event_type IN ($3, $4)
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, siteID, models.EventActive,
		models.EventSiteOutage, models.EventSiteDegraded)
	if err != nil {
		return nil, fmt.Errorf("failed to query active outage events for site %s: %w", siteID, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Acknowledge stamps the actor and time onto an event. There is no guard
// against acknowledging an already-resolved event.
func (r *EventRepository) Acknowledge(ctx context.Context, id int, actor string, note *string) error {
	query := `
		UPDATE alert_events
		SET status = $1, acknowledged_by = $2, acknowledged_at = $3,
		    acknowledged_note = $4, updated_at = $3
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query, models.EventAcknowledged, actor, time.Now(), note, id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge event %d: %w", id, err)
	}

	return requireRow(result, id)
}

// Resolve closes an event, stamping the resolver and the auto flag.
func (r *EventRepository) Resolve(ctx context.Context, id int, actor string, note *string, auto bool) error {
	query := `
		UPDATE alert_events
		SET status = $1, resolved_by = $2, resolved_at = $3,
		    resolved_note = $4, auto_resolved = $5, updated_at = $3
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query, models.EventResolved, actor, time.Now(), note, auto, id)
	if err != nil {
		return fmt.Errorf("failed to resolve event %d: %w", id, err)
	}

	return requireRow(result, id)
}

// Ignore moves an event to ignored status. The service layer guards the
// active-only transition; here it is a plain status write.
func (r *EventRepository) Ignore(ctx context.Context, id int) error {
	query := `UPDATE alert_events SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, models.EventIgnored, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to ignore event %d: %w", id, err)
	}

	return requireRow(result, id)
}

// Delete hard-deletes an event. Notifications go with it via ON DELETE
// CASCADE; the post-mortem link has no foreign key, so a linked write-up
// is removed explicitly first.
func (r *EventRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM post_mortems WHERE alert_event_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete post-mortem for event %d: %w", id, err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM alert_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}

	return requireRow(result, id)
}

func requireRow(result sql.Result, id int) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("event %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]models.AlertEvent, error) {
	var events []models.AlertEvent
	for rows.Next() {
		var e models.AlertEvent
		err := rows.Scan(
			&e.ID, &e.EventType, &e.Severity, &e.Status,
			&e.SiteID, &e.Title, &e.Description,
			&e.DeviceCount, &e.DeviceOutageCount, &e.OutagePercentage,
			&e.AcknowledgedBy, &e.AcknowledgedAt, &e.AcknowledgedNote,
			&e.ResolvedBy, &e.ResolvedAt, &e.ResolvedNote,
			&e.AutoResolved, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
