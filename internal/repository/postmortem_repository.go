package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/models"
)

// IPostMortemRepository defines persistence for incident write-ups.
type IPostMortemRepository interface {
	Create(ctx context.Context, pm *models.PostMortem) error
	GetByID(ctx context.Context, id int) (*models.PostMortem, error)
	GetByEventID(ctx context.Context, eventID int) (*models.PostMortem, error)
	Update(ctx context.Context, pm *models.PostMortem) error
	List(ctx context.Context, limit int) ([]models.PostMortem, error)
	Delete(ctx context.Context, id int) error
}

type PostMortemRepository struct {
	db *sql.DB
}

func NewPostMortemRepository(db *sql.DB) *PostMortemRepository {
	return &PostMortemRepository{db: db}
}

const postMortemColumns = `
	id, alert_event_id, status, title, summary, root_cause, impact, severity,
	incident_start, incident_end, detection_time, response_time,
	resolution_time, downtime_minutes, timeline, action_items,
	preventive_actions, author, reviewed_by, completed_at, reviewed_at,
	created_at, updated_at
`

// Create inserts a new write-up. The structured list fields are stored as
// JSONB.
func (r *PostMortemRepository) Create(ctx context.Context, pm *models.PostMortem) error {
	timeline, actionItems, preventive, err := marshalLists(pm)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO post_mortems (
			alert_event_id, status, title, summary, root_cause, impact,
			severity, incident_start, incident_end, detection_time,
			response_time, resolution_time, downtime_minutes, timeline,
			action_items, preventive_actions, author, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		          $14, $15, $16, $17, $18, $19)
		RETURNING id
	`

	now := time.Now()
	pm.CreatedAt = now
	pm.UpdatedAt = now
	if pm.Status == "" {
		pm.Status = models.PostMortemDraft
	}

	err = r.db.QueryRowContext(
		ctx, query,
		pm.AlertEventID,
		pm.Status,
		pm.Title,
		pm.Summary,
		pm.RootCause,
		pm.Impact,
		pm.Severity,
		pm.IncidentStart,
		pm.IncidentEnd,
		pm.DetectionTime,
		pm.ResponseTime,
		pm.ResolutionTime,
		pm.DowntimeMinutes,
		timeline,
		actionItems,
		preventive,
		pm.Author,
		pm.CreatedAt,
		pm.UpdatedAt,
	).Scan(&pm.ID)

	if err != nil {
		return fmt.Errorf("failed to create post-mortem: %w", err)
	}

	return nil
}

func (r *PostMortemRepository) GetByID(ctx context.Context, id int) (*models.PostMortem, error) {
	query := `SELECT ` + postMortemColumns + ` FROM post_mortems WHERE id = $1`

	pm, err := scanPostMortemRow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post-mortem %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post-mortem %d: %w", id, err)
	}

	return pm, nil
}

// GetByEventID returns the write-up linked to an event, or nil when the
// event has none. Used for the one-per-event duplicate check.
func (r *PostMortemRepository) GetByEventID(ctx context.Context, eventID int) (*models.PostMortem, error) {
	query := `SELECT ` + postMortemColumns + ` FROM post_mortems WHERE alert_event_id = $1`

	pm, err := scanPostMortemRow(r.db.QueryRowContext(ctx, query, eventID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post-mortem for event %d: %w", eventID, err)
	}

	return pm, nil
}

// Update persists the whole record. The service layer owns field merging and
// downtime recomputation; the repository writes what it is given.
func (r *PostMortemRepository) Update(ctx context.Context, pm *models.PostMortem) error {
	timeline, actionItems, preventive, err := marshalLists(pm)
	if err != nil {
		return err
	}

	query := `
		UPDATE post_mortems SET
			status = $1, title = $2, summary = $3, root_cause = $4,
			impact = $5, severity = $6, incident_start = $7, incident_end = $8,
			detection_time = $9, response_time = $10, resolution_time = $11,
			downtime_minutes = $12, timeline = $13, action_items = $14,
			preventive_actions = $15, author = $16, reviewed_by = $17,
			completed_at = $18, reviewed_at = $19, updated_at = $20
		WHERE id = $21
	`

	pm.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(
		ctx, query,
		pm.Status,
		pm.Title,
		pm.Summary,
		pm.RootCause,
		pm.Impact,
		pm.Severity,
		pm.IncidentStart,
		pm.IncidentEnd,
		pm.DetectionTime,
		pm.ResponseTime,
		pm.ResolutionTime,
		pm.DowntimeMinutes,
		timeline,
		actionItems,
		preventive,
		pm.Author,
		pm.ReviewedBy,
		pm.CompletedAt,
		pm.ReviewedAt,
		pm.UpdatedAt,
		pm.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post-mortem %d: %w", pm.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("post-mortem %d: %w", pm.ID, apperrors.ErrNotFound)
	}

	return nil
}

// List returns write-ups newest first.
func (r *PostMortemRepository) List(ctx context.Context, limit int) ([]models.PostMortem, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + postMortemColumns + ` FROM post_mortems ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query post-mortems: %w", err)
	}
	defer rows.Close()

	var pms []models.PostMortem
	for rows.Next() {
		pm, err := scanPostMortemRow(rows)
		if err != nil {
			return nil, err
		}
		pms = append(pms, *pm)
	}
	return pms, rows.Err()
}

func (r *PostMortemRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM post_mortems WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post-mortem %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("post-mortem %d: %w", id, apperrors.ErrNotFound)
	}

	return nil
}

func marshalLists(pm *models.PostMortem) ([]byte, []byte, []byte, error) {
	timeline, err := json.Marshal(orEmptyTimeline(pm.Timeline))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal timeline: %w", err)
	}
	actionItems, err := json.Marshal(orEmptyActions(pm.ActionItems))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal action items: %w", err)
	}
	preventive, err := json.Marshal(orEmptyStrings(pm.Preventive))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal preventive actions: %w", err)
	}
	return timeline, actionItems, preventive, nil
}

func orEmptyTimeline(v []models.TimelineEntry) []models.TimelineEntry {
	if v == nil {
		return []models.TimelineEntry{}
	}
	return v
}

func orEmptyActions(v []models.ActionItem) []models.ActionItem {
	if v == nil {
		return []models.ActionItem{}
	}
	return v
}

func orEmptyStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPostMortemRow(row rowScanner) (*models.PostMortem, error) {
	pm := &models.PostMortem{}
	var timeline, actionItems, preventive []byte

	err := row.Scan(
		&pm.ID, &pm.AlertEventID, &pm.Status, &pm.Title, &pm.Summary,
		&pm.RootCause, &pm.Impact, &pm.Severity,
		&pm.IncidentStart, &pm.IncidentEnd, &pm.DetectionTime,
		&pm.ResponseTime, &pm.ResolutionTime, &pm.DowntimeMinutes,
		&timeline, &actionItems, &preventive,
		&pm.Author, &pm.ReviewedBy, &pm.CompletedAt, &pm.ReviewedAt,
		&pm.CreatedAt, &pm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(timeline, &pm.Timeline); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timeline: %w", err)
	}
	if err := json.Unmarshal(actionItems, &pm.ActionItems); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action items: %w", err)
	}
	if err := json.Unmarshal(preventive, &pm.Preventive); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preventive actions: %w", err)
	}

	return pm, nil
}
