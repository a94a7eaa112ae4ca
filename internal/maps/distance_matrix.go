// Package maps talks to the Google Maps Distance Matrix API.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"icarus-bknd/internal/models"
)

const (
	googleDistanceMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"
	defaultHTTPTimeout      = 8 * time.Second
)

// DistanceMatrixClient issues one origin to many destinations requests in metric units.
type DistanceMatrixClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewDistanceMatrixClient allows overriding base URL and HTTP client (used for tests).
func NewDistanceMatrixClient(apiKey, baseURL string, httpClient *http.Client) *DistanceMatrixClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleDistanceMatrixURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &DistanceMatrixClient{apiKey: apiKey, baseURL: baseURL, httpClient: httpClient}
}

type distanceMatrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Text  string `json:"text"`
				Value int    `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// Distances returns the human readable distance to each destination, in order.
// Elements Google could not route come back nil.
func (c *DistanceMatrixClient) Distances(ctx context.Context, origin models.Point, destinations []models.Point) ([]*string, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}
	if len(destinations) == 0 {
		return nil, nil
	}

	dests := make([]string, len(destinations))
	for i, d := range destinations {
		dests[i] = latLng(d)
	}

	params := url.Values{}
	params.Set("units", "metric")
	params.Set("origins", latLng(origin))
	params.Set("destinations", strings.Join(dests, "|"))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build distance matrix request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("distance matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("distance matrix request returned status %d", resp.StatusCode)
	}

	var payload distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode distance matrix response: %w", err)
	}

	if payload.Status != "OK" {
		if payload.ErrorMessage != "" {
			return nil, fmt.Errorf("distance matrix request failed: %s - %s", payload.Status, payload.ErrorMessage)
		}
		return nil, fmt.Errorf("distance matrix request failed: %s", payload.Status)
	}
	if len(payload.Rows) == 0 {
		return nil, fmt.Errorf("distance matrix response has no rows")
	}

	elements := payload.Rows[0].Elements
	if len(elements) != len(destinations) {
		return nil, fmt.Errorf("distance matrix returned %d elements for %d destinations", len(elements), len(destinations))
	}

	out := make([]*string, len(elements))
	for i, el := range elements {
		if el.Status != "OK" || el.Distance.Text == "" {
			continue
		}
		text := el.Distance.Text
		out[i] = &text
	}
	return out, nil
}

func latLng(p models.Point) string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}
