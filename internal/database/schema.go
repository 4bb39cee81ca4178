package database

import (
	"context"
	"fmt"
)

// Applied in order at startup. Notifications cascade away with their owning
// event. The post-mortem link is deliberately not a foreign key: write-ups
// may outlive or predate the event row, and the UNIQUE constraint still
// enforces at most one write-up per event.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS monitored_sites (
		id SERIAL PRIMARY KEY,
		site_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		device_count INTEGER NOT NULL DEFAULT 0,
		device_outage_count INTEGER NOT NULL DEFAULT 0,
		outage_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'healthy',
		contact_name TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		note TEXT NOT NULL DEFAULT '',
		last_checked TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS alert_events (
		id SERIAL PRIMARY KEY,
		event_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		site_id TEXT,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		device_count INTEGER NOT NULL DEFAULT 0,
		device_outage_count INTEGER NOT NULL DEFAULT 0,
		outage_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		acknowledged_by TEXT,
		acknowledged_at TIMESTAMPTZ,
		acknowledged_note TEXT,
		resolved_by TEXT,
		resolved_at TIMESTAMPTZ,
		resolved_note TEXT,
		auto_resolved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_events_site_status
		ON alert_events (site_id, status)`,
	`CREATE TABLE IF NOT EXISTS alert_notifications (
		id SERIAL PRIMARY KEY,
		alert_event_id INTEGER NOT NULL REFERENCES alert_events(id) ON DELETE CASCADE,
		channel TEXT NOT NULL,
		recipient TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		message_type TEXT NOT NULL,
		message_content TEXT NOT NULL DEFAULT '',
		provider_message_id TEXT,
		sent_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		failed_at TIMESTAMPTZ,
		retry_count INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS post_mortems (
		id SERIAL PRIMARY KEY,
		alert_event_id INTEGER UNIQUE,
		status TEXT NOT NULL DEFAULT 'draft',
		title TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		root_cause TEXT NOT NULL DEFAULT '',
		impact TEXT NOT NULL DEFAULT '',
		severity TEXT NOT NULL DEFAULT 'medium',
		incident_start TIMESTAMPTZ,
		incident_end TIMESTAMPTZ,
		detection_time TIMESTAMPTZ NOT NULL,
		response_time TIMESTAMPTZ,
		resolution_time TIMESTAMPTZ,
		downtime_minutes DOUBLE PRECISION,
		timeline JSONB NOT NULL DEFAULT '[]',
		action_items JSONB NOT NULL DEFAULT '[]',
		preventive_actions JSONB NOT NULL DEFAULT '[]',
		author TEXT NOT NULL DEFAULT '',
		reviewed_by TEXT,
		completed_at TIMESTAMPTZ,
		reviewed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the tables and indexes the repositories expect.
// Every statement is idempotent, so running it on every boot is safe.
func (d *Database) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
