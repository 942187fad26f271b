package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Geocoder resolves coordinates to a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}

// NominatimGeocoder reverse-geocodes against a Nominatim-compatible
// endpoint. Every lookup is bounded by the configured timeout.
type NominatimGeocoder struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewNominatimGeocoder creates a geocoder for the given base URL.
func NewNominatimGeocoder(baseURL string, timeout time.Duration) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// ReverseGeocode returns the display name for the coordinates or an
// error if the lookup fails or exceeds the timeout.
func (g *NominatimGeocoder) ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", fmt.Sprintf("%f", latitude))
	q.Set("lon", fmt.Sprintf("%f", longitude))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "AmbulanceTracker/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode geocode response: %w", err)
	}

	if body.DisplayName == "" {
		return "", fmt.Errorf("geocode response contained no display name")
	}
	return body.DisplayName, nil
}
