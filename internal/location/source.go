package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// StaticSource serves a fixed coordinate pair, typically pinned in the
// config file. Permission is always granted.
type StaticSource struct {
	Value Value
}

func (s StaticSource) QueryPermission(ctx context.Context) (Decision, error) {
	return DecisionGranted, nil
}

func (s StaticSource) ReadLocation(ctx context.Context) (Value, error) {
	return s.Value, nil
}

// ConsentStore persists the user's consent decision across sessions. Get
// returns ErrUndecided when no decision has been recorded yet.
type ConsentStore interface {
	Get(ctx context.Context) (Decision, error)
	Set(ctx context.Context, d Decision) error
}

const defaultGeoEndpoint = "http://ip-api.com/json/"

// IPSource reads coarse coordinates from an IP-geolocation endpoint, gated
// on a persisted consent decision.
type IPSource struct {
	Consent  ConsentStore
	Endpoint string
	Client   *http.Client
}

func (s *IPSource) QueryPermission(ctx context.Context) (Decision, error) {
	if s.Consent == nil {
		return DecisionDenied, ErrUndecided
	}
	return s.Consent.Get(ctx)
}

type geoResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (s *IPSource) ReadLocation(ctx context.Context) (Value, error) {
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = defaultGeoEndpoint
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Value{}, fmt.Errorf("geolocation request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Value{}, fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Value{}, fmt.Errorf("geolocation responded %d", resp.StatusCode)
	}
	var body geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Value{}, fmt.Errorf("decode geolocation: %w", err)
	}
	if body.Status != "" && body.Status != "success" {
		if body.Message != "" {
			return Value{}, fmt.Errorf("geolocation failed: %s", body.Message)
		}
		return Value{}, fmt.Errorf("geolocation failed: %s", body.Status)
	}
	return Value{Latitude: body.Lat, Longitude: body.Lon}, nil
}
