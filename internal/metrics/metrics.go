// Package metrics keeps operational counters for the engine and reports
// them to Redis on an interval so external dashboards can read a single
// key. A nil *Collector is a no-op, which keeps Redis optional.
package metrics

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"SiteMonitorAPI/internal/logger"

	"github.com/redis/go-redis/v9"
)

const (
	redisKey       = "metrics:site-monitor"
	metricsTTL     = 2 * time.Minute
	reportInterval = 30 * time.Second
)

// Snapshot is the JSON document written to Redis.
type Snapshot struct {
	ServiceName         string    `json:"service_name"`
	StartedAt           time.Time `json:"started_at"`
	LastUpdated         time.Time `json:"last_updated"`
	ScanCycles          uint64    `json:"scan_cycles"`
	ScanFailures        uint64    `json:"scan_failures"`
	SitesScanned        uint64    `json:"sites_scanned"`
	EventsCreated       uint64    `json:"events_created"`
	EventsResolved      uint64    `json:"events_resolved"`
	NotificationsSent   uint64    `json:"notifications_sent"`
	NotificationsFailed uint64    `json:"notifications_failed"`
}

type Collector struct {
	client    *redis.Client
	log       *logger.Logger
	startedAt time.Time

	scanCycles          atomic.Uint64
	scanFailures        atomic.Uint64
	sitesScanned        atomic.Uint64
	eventsCreated       atomic.Uint64
	eventsResolved      atomic.Uint64
	notificationsSent   atomic.Uint64
	notificationsFailed atomic.Uint64

	stopCh chan struct{}
}

func NewCollector(addr, password string, db int, log *logger.Logger) *Collector {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &Collector{
		client:    client,
		log:       log,
		startedAt: time.Now(),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the background reporter goroutine.
func (c *Collector) Start() {
	if c == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(reportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stopCh:
				return
			case <-ticker.C:
				c.report()
			}
		}
	}()
}

func (c *Collector) Stop() {
	if c == nil {
		return
	}
	close(c.stopCh)
	c.report()
	if err := c.client.Close(); err != nil {
		c.log.Warn("Failed to close redis client: %v", err)
	}
}

func (c *Collector) IncScanCycles() {
	if c != nil {
		c.scanCycles.Add(1)
	}
}

func (c *Collector) IncScanFailures() {
	if c != nil {
		c.scanFailures.Add(1)
	}
}

func (c *Collector) IncEventsCreated() {
	if c != nil {
		c.eventsCreated.Add(1)
	}
}

func (c *Collector) IncEventsResolved() {
	if c != nil {
		c.eventsResolved.Add(1)
	}
}

func (c *Collector) IncNotificationsSent() {
	if c != nil {
		c.notificationsSent.Add(1)
	}
}

func (c *Collector) IncNotificationsFailed() {
	if c != nil {
		c.notificationsFailed.Add(1)
	}
}

func (c *Collector) AddSitesScanned(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.sitesScanned.Add(uint64(n))
}

// CurrentSnapshot returns the in-memory counters.
func (c *Collector) CurrentSnapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		ServiceName:         "site-monitor",
		StartedAt:           c.startedAt,
		LastUpdated:         time.Now(),
		ScanCycles:          c.scanCycles.Load(),
		ScanFailures:        c.scanFailures.Load(),
		SitesScanned:        c.sitesScanned.Load(),
		EventsCreated:       c.eventsCreated.Load(),
		EventsResolved:      c.eventsResolved.Load(),
		NotificationsSent:   c.notificationsSent.Load(),
		NotificationsFailed: c.notificationsFailed.Load(),
	}
}

func (c *Collector) report() {
	snapshot := c.CurrentSnapshot()

	body, err := json.Marshal(snapshot)
	if err != nil {
		c.log.Error("Failed to marshal metrics snapshot: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Set(ctx, redisKey, body, metricsTTL).Err(); err != nil {
		c.log.Debug("Failed to write metrics to redis: %v", err)
	}
}
