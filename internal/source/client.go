// Package source is the adapter over the external fleet-status backend.
// Payloads are decoded into typed records here; nothing past this boundary
// sees raw JSON maps.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/logger"
)

// SiteRecord is one site as reported by the fleet-status source.
type SiteRecord struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	DeviceCount       int      `json:"device_count"`
	DeviceOutageCount int      `json:"device_outage_count"`
	Contact           Contact  `json:"contact"`
	Location          Location `json:"location"`
	Note              string   `json:"note"`
}

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Location struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// ISiteSource is the capability the detection engine depends on.
type ISiteSource interface {
	FetchSites(ctx context.Context) ([]SiteRecord, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// FetchSites retrieves the full site roster. Any failure is wrapped in
// ErrSourceUnavailable so the caller aborts the scan cycle instead of
// raising alerts from partial data.
func (c *Client) FetchSites(ctx context.Context) ([]SiteRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: source returned status %d", apperrors.ErrSourceUnavailable, resp.StatusCode)
	}

	var sites []SiteRecord
	if err := json.NewDecoder(resp.Body).Decode(&sites); err != nil {
		return nil, fmt.Errorf("%w: invalid payload: %v", apperrors.ErrSourceUnavailable, err)
	}

	c.log.Debug("Fetched %d sites from source", len(sites))
	return sites, nil
}
