package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/terascope/go-disaster-intel/internal/geo"
	"github.com/terascope/go-disaster-intel/internal/models"
)

type usgsResponse struct {
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
	Geometry   usgsGeometry   `json:"geometry"`
}
type usgsProperties struct {
	Mag   float64 `json:"mag"`
	Place string  `json:"place"`
	Time  int64   `json:"time"` // epoch ms
	Title string  `json:"title"`
}
type usgsGeometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

// USGSClient fetches the USGS earthquake GeoJSON summary feed and normalizes
// it into HazardEvents.
type USGSClient struct {
	url        string
	client     *http.Client
	severeMag  float64
	extremeMag float64
}

// NewUSGSClient builds a seismic adapter. severeMag and extremeMag are the
// magnitude cutoffs for severity classification.
func NewUSGSClient(url string, timeout time.Duration, severeMag, extremeMag float64) *USGSClient {
	return &USGSClient{
		url:        url,
		client:     &http.Client{Timeout: timeout},
		severeMag:  severeMag,
		extremeMag: extremeMag,
	}
}

// Fetch returns earthquakes within radiusKm of ref, sorted by distance.
func (c *USGSClient) Fetch(ctx context.Context, ref models.Coordinate, radiusKm float64) ([]models.HazardEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	events := make([]models.HazardEvent, 0, len(data.Features))
	for _, f := range data.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		pos := models.Coordinate{Lat: f.Geometry.Coordinates[1], Lon: f.Geometry.Coordinates[0]}

		title := f.Properties.Title
		if title == "" {
			title = fmt.Sprintf("M%.1f Earthquake", f.Properties.Mag)
		}

		e := models.HazardEvent{
			ID:         "usgs_" + f.ID,
			Source:     "usgs",
			Position:   pos,
			Type:       models.HazardEarthquake,
			Title:      title,
			Place:      f.Properties.Place,
			Magnitude:  f.Properties.Mag,
			Severity:   c.classify(f.Properties.Mag),
			ObservedAt: time.UnixMilli(f.Properties.Time),
			DistanceKm: geo.HaversineKm(ref, pos),
		}
		if e.DistanceKm > radiusKm {
			continue
		}
		events = append(events, e)
	}

	sort.Slice(events, func(i, j int) bool { return events[i].DistanceKm < events[j].DistanceKm })
	return events, nil
}

func (c *USGSClient) classify(mag float64) models.Severity {
	switch {
	case mag >= c.extremeMag:
		return models.SeverityExtreme
	case mag >= c.severeMag:
		return models.SeveritySevere
	default:
		return models.SeverityModerate
	}
}
