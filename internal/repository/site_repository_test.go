package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/models"
)

func newSiteRepoMock(t *testing.T) (*SiteRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewSiteRepository(db), mock
}

func siteRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "site_id", "name", "device_count", "device_outage_count",
		"outage_percentage", "status", "contact_name", "contact_phone",
		"contact_email", "latitude", "longitude", "note", "last_checked",
	})
}

func TestSiteRepository_Upsert(t *testing.T) {
	repo, mock := newSiteRepoMock(t)

	site := &models.MonitoredSite{
		SiteID:            "site-14",
		Name:              "Hilltop Relay",
		DeviceCount:       23,
		DeviceOutageCount: 22,
		OutagePercentage:  95.65,
		Status:            models.SiteDown,
		LastChecked:       time.Now(),
	}

	mock.ExpectQuery("INSERT INTO monitored_sites").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	if err := repo.Upsert(context.Background(), site); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if site.ID != 7 {
		t.Errorf("site.ID = %d, want 7", site.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSiteRepository_GetBySiteID_NotFound(t *testing.T) {
	repo, mock := newSiteRepoMock(t)

	mock.ExpectQuery("FROM monitored_sites WHERE site_id").
		WithArgs("missing").
		WillReturnRows(siteRows())

	_, err := repo.GetBySiteID(context.Background(), "missing")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetBySiteID() error = %v, want ErrNotFound", err)
	}
}

func TestSiteRepository_GetByStatus(t *testing.T) {
	repo, mock := newSiteRepoMock(t)

	now := time.Now()
	mock.ExpectQuery("FROM monitored_sites").
		WillReturnRows(siteRows().
			AddRow(1, "site-9", "Depot", 10, 10, 100.0, "down", "", "", "", nil, nil, "", now).
			AddRow(2, "site-4", "Annex", 12, 7, 58.3, "degraded", "", "", "", nil, nil, "", now))

	sites, err := repo.GetByStatus(context.Background(), models.SiteDown, models.SiteDegraded)
	if err != nil {
		t.Fatalf("GetByStatus() error = %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("len(sites) = %d, want 2", len(sites))
	}
	if sites[0].Status != models.SiteDown || sites[1].Status != models.SiteDegraded {
		t.Errorf("unexpected statuses: %v, %v", sites[0].Status, sites[1].Status)
	}
}
