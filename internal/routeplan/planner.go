// Package routeplan picks candidate escape bearings away from the nearest
// hazard, asks OSRM for driving routes, and classifies each returned route as
// clear or blocked against the shared danger radii.
package routeplan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/terascope/go-disaster-intel/internal/geo"
	"github.com/terascope/go-disaster-intel/internal/models"
	"github.com/terascope/go-disaster-intel/internal/zones"
)

const (
	escapeDistanceKm = 15  // how far out candidate destinations are projected
	flankOffsetDeg   = 30  // alternates either side of the directly-away bearing
	awayOffsetDeg    = 180 // directly away from the nearest hazard
)

type osrmResponse struct {
	Routes []osrmRoute `json:"routes"`
}
type osrmRoute struct {
	Geometry osrmGeometry `json:"geometry"`
	Distance float64      `json:"distance"` // meters
	Duration float64      `json:"duration"` // seconds
}
type osrmGeometry struct {
	Coordinates [][]float64 `json:"coordinates"` // [lon, lat]
}

// Planner requests driving routes from an OSRM-compatible endpoint.
type Planner struct {
	baseURL string
	client  *http.Client
	table   zones.RadiusTable
}

func NewPlanner(baseURL string, timeout time.Duration, table zones.RadiusTable) *Planner {
	return &Planner{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		table:   table,
	}
}

// Plan returns up to three escape routes from ref. Hazards must be sorted by
// distance; the nearest one defines the danger bearing. Candidate requests
// run concurrently and fail independently, so a partial or empty result is
// normal, never an error.
func (p *Planner) Plan(ctx context.Context, ref models.Coordinate, hazards []models.HazardEvent) []models.Route {
	var bearings [3]float64
	if len(hazards) > 0 {
		danger := geo.BearingDeg(ref, hazards[0].Position)
		bearings = [3]float64{
			danger + awayOffsetDeg - flankOffsetDeg,
			danger + awayOffsetDeg,
			danger + awayOffsetDeg + flankOffsetDeg,
		}
	} else {
		bearings = [3]float64{0, 120, 240}
	}

	candidates := make([]*models.Route, len(bearings))
	var wg sync.WaitGroup
	for i, bearing := range bearings {
		dest := geo.ProjectPoint(ref, bearing, escapeDistanceKm)

		wg.Add(1)
		go func(i int, dest models.Coordinate) {
			defer wg.Done()
			route, err := p.fetchRoute(ctx, ref, dest)
			if err != nil {
				slog.Warn("escape route candidate failed", "candidate", i+1, "error", err)
				return
			}
			route.ID = fmt.Sprintf("route-%d", i+1)
			route.Status = p.classify(route.Path, hazards)
			candidates[i] = route
		}(i, dest)
	}
	wg.Wait()

	routes := make([]models.Route, 0, len(candidates))
	for _, r := range candidates {
		if r == nil {
			continue
		}
		dir := geo.CompassLabel(geo.BearingDeg(ref, r.Path[len(r.Path)-1]))
		r.Label = fmt.Sprintf("Route %d — %s (%.1fkm, ~%dmin)", len(routes)+1, dir, r.DistanceKm, r.DurationMin)
		routes = append(routes, *r)
	}
	return routes
}

func (p *Planner) fetchRoute(ctx context.Context, from, to models.Coordinate) (*models.Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson&alternatives=false",
		p.baseURL, from.Lon, from.Lat, to.Lon, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	if len(data.Routes) == 0 {
		return nil, fmt.Errorf("no route returned")
	}

	r := data.Routes[0]
	if len(r.Geometry.Coordinates) == 0 {
		return nil, fmt.Errorf("route has empty geometry")
	}

	path := make([]models.Coordinate, 0, len(r.Geometry.Coordinates))
	for _, pt := range r.Geometry.Coordinates {
		if len(pt) < 2 {
			continue
		}
		// upstream is [lon, lat]
		path = append(path, models.Coordinate{Lat: pt[1], Lon: pt[0]})
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("route has no usable geometry")
	}

	return &models.Route{
		Path:        path,
		DistanceKm:  r.Distance / 1000,
		DurationMin: int(math.Round(r.Duration / 60)),
	}, nil
}

// classify marks a route blocked when any point of its path falls within the
// danger radius of any hazard.
func (p *Planner) classify(path []models.Coordinate, hazards []models.HazardEvent) models.RouteStatus {
	for _, h := range hazards {
		dangerKm := p.table.For(h).DangerKm
		for _, pt := range path {
			if geo.HaversineKm(pt, h.Position) < dangerKm {
				return models.RouteBlocked
			}
		}
	}
	return models.RouteClear
}
