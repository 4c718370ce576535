package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/terascope/go-disaster-intel/internal/models"
)

type nwsResponse struct {
	Features []nwsFeature `json:"features"`
}
type nwsFeature struct {
	ID         string        `json:"id"`
	Geometry   *nwsGeometry  `json:"geometry"`
	Properties nwsProperties `json:"properties"`
}
type nwsGeometry struct {
	Type string `json:"type"`
	// Shape varies by geometry type, so decoding is deferred until the
	// Polygon filter has run.
	Coordinates json.RawMessage `json:"coordinates"`
}
type nwsProperties struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Headline  string `json:"headline"`
	Severity  string `json:"severity"`
	Effective string `json:"effective"`
}

// NWSClient fetches active NWS alerts for a point. The upstream requires a
// custom User-Agent identifying the caller. Only features carrying a single
// polygon ring survive normalization; point and multi-polygon alerts are
// dropped rather than treated as errors.
type NWSClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
	now       func() time.Time // injectable for tests
}

func NewNWSClient(baseURL, userAgent string, timeout time.Duration) *NWSClient {
	return &NWSClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		now:       time.Now,
	}
}

// Fetch returns alert areas whose polygons cover ref.
func (c *NWSClient) Fetch(ctx context.Context, ref models.Coordinate) ([]models.AlertArea, error) {
	url := fmt.Sprintf("%s/alerts/active?point=%.4f,%.4f", c.baseURL, ref.Lat, ref.Lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data nwsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	areas := make([]models.AlertArea, 0, len(data.Features))
	for _, f := range data.Features {
		if f.Geometry == nil || f.Geometry.Type != "Polygon" {
			continue
		}

		var rings [][][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil || len(rings) == 0 {
			continue
		}

		ring := rings[0]
		boundary := make([]models.Coordinate, 0, len(ring))
		for _, pt := range ring {
			if len(pt) < 2 {
				continue
			}
			// upstream is [lon, lat]
			boundary = append(boundary, models.Coordinate{Lat: pt[1], Lon: pt[0]})
		}

		id := f.Properties.ID
		if id == "" {
			id = f.ID
		}
		name := f.Properties.Event
		if name == "" {
			name = "Alert Zone"
		}

		observedAgo := "Unknown"
		if f.Properties.Effective != "" {
			if effective, err := time.Parse(time.RFC3339, f.Properties.Effective); err == nil {
				observedAgo = timeAgo(c.now(), effective)
			}
		}

		areas = append(areas, models.AlertArea{
			ID:           id,
			Name:         name,
			Headline:     f.Properties.Headline,
			SeverityText: f.Properties.Severity,
			ObservedAgo:  observedAgo,
			Boundary:     boundary,
		})
	}

	return areas, nil
}

func timeAgo(now, t time.Time) string {
	seconds := int(now.Sub(t).Seconds())
	if seconds < 60 {
		return "just now"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d min ago", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d hr ago", hours)
	}
	return fmt.Sprintf("%d day(s) ago", hours/24)
}
