package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SiteMonitorAPI/internal/logger"
)

// PollerStatus is the externally visible scheduler state.
type PollerStatus struct {
	Running         bool        `json:"running"`
	IntervalSeconds int         `json:"interval_seconds"`
	LastScanTime    *time.Time  `json:"last_scan_time"`
	LastScanResult  *ScanResult `json:"last_scan_result"`
}

// ScanResult records the outcome of the most recent cycle, successful or
// not, so background failures stay observable through the status endpoint.
// err keeps the original error value so sentinel checks survive past the
// serialized Error text.
type ScanResult struct {
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	Summary *ScanSummary `json:"summary,omitempty"`

	err error
}

// IPollingService runs detection and dispatch on a fixed cadence.
type IPollingService interface {
	Start() bool
	Stop() bool
	Status() PollerStatus
	TriggerManualScan(ctx context.Context) (*ScanResult, error)
}

// PollingService drives the scan/notify loop. One long-lived goroutine runs
// the loop; Start and Stop are safe to call from any request goroutine.
type PollingService struct {
	detection IDetectionService
	notifier  INotificationService
	log       *logger.Logger
	interval  time.Duration

	mu             sync.Mutex
	running        bool
	cancel         context.CancelFunc
	done           chan struct{}
	lastScanTime   *time.Time
	lastScanResult *ScanResult
}

func NewPollingService(detection IDetectionService, notifier INotificationService, intervalSeconds int, log *logger.Logger) *PollingService {
	return &PollingService{
		detection: detection,
		notifier:  notifier,
		log:       log,
		interval:  time.Duration(intervalSeconds) * time.Second,
	}
}

// Start spawns the polling loop. It reports false when the loop is already
// running.
func (s *PollingService) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx, s.done)

	s.log.Info("Polling scheduler started (interval %s)", s.interval)
	return true
}

// Stop cancels the loop and waits for the in-flight cycle to unwind, so a
// half-applied site classification is never torn down mid-write. It reports
// false when the loop is not running.
func (s *PollingService) Stop() bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.log.Info("Polling scheduler stopped")
	return true
}

// Status reports the loop state and the last cycle's outcome.
func (s *PollingService) Status() PollerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return PollerStatus{
		Running:         s.running,
		IntervalSeconds: int(s.interval / time.Second),
		LastScanTime:    s.lastScanTime,
		LastScanResult:  s.lastScanResult,
	}
}

// TriggerManualScan runs one cycle immediately, outside the schedule. No
// mutual exclusion is enforced against a concurrently running scheduled
// cycle; the per-site event reconciliation keeps duplicate alerts out.
func (s *PollingService) TriggerManualScan(ctx context.Context) (*ScanResult, error) {
	result := s.runCycle(ctx)
	if !result.Success {
		if result.err != nil {
			return result, fmt.Errorf("manual scan failed: %w", result.err)
		}
		return result, fmt.Errorf("manual scan failed: %s", result.Error)
	}
	return result, nil
}

func (s *PollingService) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		s.runCycle(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}
	}
}

// runCycle executes scan + dispatch once. Every failure mode, including a
// panic inside the cycle, is captured into last_scan_result; nothing may
// kill the loop.
func (s *PollingService) runCycle(ctx context.Context) (result *ScanResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Scan cycle panic: %v", r)
			result = &ScanResult{Success: false, Error: fmt.Sprintf("panic: %v", r)}
			s.record(result)
		}
	}()

	summary, err := s.detection.ScanAllSites(ctx)
	if err != nil {
		s.log.Error("Scan cycle failed: %v", err)
		result = &ScanResult{Success: false, Error: err.Error(), err: err}
		s.record(result)
		return result
	}

	for i := range summary.CreatedEvents {
		event := &summary.CreatedEvents[i]
		if _, err := s.notifier.DispatchEvent(ctx, event); err != nil {
			s.log.Error("Failed to dispatch notifications for new event %d: %v", event.ID, err)
		}
	}

	for i := range summary.ResolvedEvents {
		event := &summary.ResolvedEvents[i]
		if _, err := s.notifier.DispatchEvent(ctx, event); err != nil {
			s.log.Error("Failed to dispatch recovery notifications for event %d: %v", event.ID, err)
		}
	}

	result = &ScanResult{Success: true, Summary: summary}
	s.record(result)
	return result
}

func (s *PollingService) record(result *ScanResult) {
	now := time.Now()
	s.mu.Lock()
	s.lastScanTime = &now
	s.lastScanResult = result
	s.mu.Unlock()
}
