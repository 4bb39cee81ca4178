package repository

import (
	"context"
	"database/sql"
	"fmt"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/models"

	"github.com/lib/pq"
)

// ISiteRepository defines persistence for site snapshots.
type ISiteRepository interface {
	Upsert(ctx context.Context, site *models.MonitoredSite) error
	GetBySiteID(ctx context.Context, siteID string) (*models.MonitoredSite, error)
	GetAll(ctx context.Context) ([]models.MonitoredSite, error)
	GetByStatus(ctx context.Context, statuses ...models.SiteStatus) ([]models.MonitoredSite, error)
}

type SiteRepository struct {
	db *sql.DB
}

func NewSiteRepository(db *sql.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

const siteColumns = `
	id, site_id, name, device_count, device_outage_count, outage_percentage,
	status, contact_name, contact_phone, contact_email, latitude, longitude,
	note, last_checked
`

// Upsert writes the current cycle's snapshot keyed by the external site_id,
// creating the row on first sight and overwriting mutable fields otherwise.
func (r *SiteRepository) Upsert(ctx context.Context, site *models.MonitoredSite) error {
	query := `
		INSERT INTO monitored_sites (
			site_id, name, device_count, device_outage_count, outage_percentage,
			status, contact_name, contact_phone, contact_email, latitude,
			longitude, note, last_checked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (site_id) DO UPDATE SET
			name = EXCLUDED.name,
			device_count = EXCLUDED.device_count,
			device_outage_count = EXCLUDED.device_outage_count,
			outage_percentage = EXCLUDED.outage_percentage,
			status = EXCLUDED.status,
			contact_name = EXCLUDED.contact_name,
			contact_phone = EXCLUDED.contact_phone,
			contact_email = EXCLUDED.contact_email,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			note = EXCLUDED.note,
			last_checked = EXCLUDED.last_checked
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		site.SiteID,
		site.Name,
		site.DeviceCount,
		site.DeviceOutageCount,
		site.OutagePercentage,
		site.Status,
		site.ContactName,
		site.ContactPhone,
		site.ContactEmail,
		site.Latitude,
		site.Longitude,
		site.Note,
		site.LastChecked,
	).Scan(&site.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert site %s: %w", site.SiteID, err)
	}

	return nil
}

// GetBySiteID retrieves a snapshot by its external id.
func (r *SiteRepository) GetBySiteID(ctx context.Context, siteID string) (*models.MonitoredSite, error) {
	query := `SELECT ` + siteColumns + ` FROM monitored_sites WHERE site_id = $1`

	site := &models.MonitoredSite{}
	err := r.db.QueryRowContext(ctx, query, siteID).Scan(
		&site.ID,
		&site.SiteID,
		&site.Name,
		&site.DeviceCount,
		&site.DeviceOutageCount,
		&site.OutagePercentage,
		&site.Status,
		&site.ContactName,
		&site.ContactPhone,
		&site.ContactEmail,
		&site.Latitude,
		&site.Longitude,
		&site.Note,
		&site.LastChecked,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("site %s: %w", siteID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site %s: %w", siteID, err)
	}

	return site, nil
}

// GetAll returns every site snapshot ordered by name.
func (r *SiteRepository) GetAll(ctx context.Context) ([]models.MonitoredSite, error) {
	query := `SELECT ` + siteColumns + ` FROM monitored_sites ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	return scanSites(rows)
}

// GetByStatus returns site snapshots whose last classification matches any
// of the given statuses, worst outage percentage first.
func (r *SiteRepository) GetByStatus(ctx context.Context, statuses ...models.SiteStatus) ([]models.MonitoredSite, error) {
	query := `
		SELECT ` + siteColumns + `
		FROM monitored_sites
		WHERE status = ANY($1)
		ORDER BY outage_percentage DESC
	`

	args := make([]string, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(args))
	if err != nil {
		return nil, fmt.Errorf("failed to query sites by status: %w", err)
	}
	defer rows.Close()

	return scanSites(rows)
}

func scanSites(rows *sql.Rows) ([]models.MonitoredSite, error) {
	var sites []models.MonitoredSite
	for rows.Next() {
		var s models.MonitoredSite
		err := rows.Scan(
			&s.ID, &s.SiteID, &s.Name, &s.DeviceCount, &s.DeviceOutageCount,
			&s.OutagePercentage, &s.Status, &s.ContactName, &s.ContactPhone,
			&s.ContactEmail, &s.Latitude, &s.Longitude, &s.Note, &s.LastChecked,
		)
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}
