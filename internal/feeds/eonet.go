package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/terascope/go-disaster-intel/internal/geo"
	"github.com/terascope/go-disaster-intel/internal/models"
)

type eonetResponse struct {
	Events []eonetEvent `json:"events"`
}
type eonetEvent struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Categories []eonetCategory `json:"categories"`
	Geometry   []eonetGeometry `json:"geometry"`
}
type eonetCategory struct {
	Title string `json:"title"`
}
type eonetGeometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
	Date        string    `json:"date"`
}

// EONETClient fetches NASA EONET open events (wildfires, storms, volcanoes,
// floods) and normalizes them into HazardEvents. Only the last geometry
// entry per event is used; it is the most recent observation.
type EONETClient struct {
	url    string
	client *http.Client
}

func NewEONETClient(url string, timeout time.Duration) *EONETClient {
	return &EONETClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch returns open events within radiusKm of ref, sorted by distance.
// Events without a resolvable coordinate are dropped.
func (c *EONETClient) Fetch(ctx context.Context, ref models.Coordinate, radiusKm float64) ([]models.HazardEvent, error) {
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

	var data eonetResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	events := make([]models.HazardEvent, 0, len(data.Events))
	for _, ev := range data.Events {
		if len(ev.Geometry) == 0 {
			continue
		}
		geom := ev.Geometry[len(ev.Geometry)-1]
		if len(geom.Coordinates) < 2 {
			continue
		}
		pos := models.Coordinate{Lat: geom.Coordinates[1], Lon: geom.Coordinates[0]}

		category := ""
		if len(ev.Categories) > 0 {
			category = ev.Categories[0].Title
		}

		var observed time.Time
		if geom.Date != "" {
			ts, perr := time.Parse(time.RFC3339, geom.Date)
			if perr != nil {
				slog.Warn("EONET timestamp parsing failed", "id", ev.ID, "error", perr.Error())
			} else {
				observed = ts
			}
		}

		e := models.HazardEvent{
			ID:         "eonet_" + ev.ID,
			Source:     "eonet",
			Position:   pos,
			Type:       mapEONETCategory(category),
			Title:      ev.Title,
			Place:      category,
			Severity:   models.SeverityModerate,
			ObservedAt: observed,
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

func mapEONETCategory(category string) models.HazardType {
	switch category {
	case "Wildfires":
		return models.HazardWildfire
	case "Severe Storms":
		return models.HazardCyclone
	case "Volcanoes":
		return models.HazardVolcano
	case "Floods":
		return models.HazardFlood
	case "Landslides":
		return models.HazardLandslide
	case "Earthquakes":
		return models.HazardEarthquake
	default:
		return models.HazardOther
	}
}
