// Package aggregator orchestrates one aggregation cycle: fetch the three
// hazard feeds concurrently, merge by distance, then synthesize zones and
// plan escape routes off the merged list. The aggregator itself is stateless;
// callers own caching and fallback policy.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/terascope/go-disaster-intel/internal/models"
	"github.com/terascope/go-disaster-intel/internal/zones"
)

// ErrInvalidCoordinate is the one error Aggregate surfaces: a reference point
// outside valid lat/lon range, rejected before any network call.
var ErrInvalidCoordinate = errors.New("reference coordinate out of range")

// SeismicFeed and HazardFeed fetch point hazards near ref.
type SeismicFeed interface {
	Fetch(ctx context.Context, ref models.Coordinate, radiusKm float64) ([]models.HazardEvent, error)
}

type HazardFeed interface {
	Fetch(ctx context.Context, ref models.Coordinate, radiusKm float64) ([]models.HazardEvent, error)
}

// AlertFeed fetches polygon alerts covering ref.
type AlertFeed interface {
	Fetch(ctx context.Context, ref models.Coordinate) ([]models.AlertArea, error)
}

// RoutePlanner plans escape routes away from the nearest hazard. It absorbs
// its own upstream failures; an empty result is valid.
type RoutePlanner interface {
	Plan(ctx context.Context, ref models.Coordinate, hazards []models.HazardEvent) []models.Route
}

// ShelterLocator finds ranked shelters around ref. Lookups are not
// cancellable once in flight; implementations check ctx before starting and
// bound the call with their own client timeout.
type ShelterLocator interface {
	Find(ctx context.Context, ref models.Coordinate, radiusMeters int) ([]models.Shelter, error)
}

// Options control a single cycle.
type Options struct {
	// IncludeShelters batches the shelter lookup into the cycle's fetch stage.
	IncludeShelters bool
	// ShelterRadiusMeters is the shelter search radius when included.
	ShelterRadiusMeters int
}

// Aggregator runs aggregation cycles. Any feed may be nil (disabled); a nil
// feed contributes nothing, same as a failing one.
type Aggregator struct {
	seismic  SeismicFeed
	hazards  HazardFeed
	alerts   AlertFeed
	planner  RoutePlanner
	shelters ShelterLocator
	table    zones.RadiusTable
	radiusKm float64
}

func New(seismic SeismicFeed, hazards HazardFeed, alerts AlertFeed, planner RoutePlanner, shelters ShelterLocator, table zones.RadiusTable, searchRadiusKm float64) *Aggregator {
	return &Aggregator{
		seismic:  seismic,
		hazards:  hazards,
		alerts:   alerts,
		planner:  planner,
		shelters: shelters,
		table:    table,
		radiusKm: searchRadiusKm,
	}
}

// Aggregate runs one full cycle for ref and returns an immutable result
// snapshot. Upstream failures degrade to partial data; only an invalid
// reference coordinate is an error.
func (a *Aggregator) Aggregate(ctx context.Context, ref models.Coordinate, opts Options) (*models.AggregationResult, error) {
	if !ref.Valid() {
		return nil, fmt.Errorf("%w: lat=%g lon=%g", ErrInvalidCoordinate, ref.Lat, ref.Lon)
	}

	slog.Debug("aggregation cycle fetching", "lat", ref.Lat, "lon", ref.Lon)

	var (
		quakes      []models.HazardEvent
		events      []models.HazardEvent
		areas       []models.AlertArea
		shelterList []models.Shelter
		wg          sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		if a.seismic == nil {
			return
		}
		var err error
		if quakes, err = a.seismic.Fetch(ctx, ref, a.radiusKm); err != nil {
			slog.Error("seismic feed failed", "error", err)
			quakes = nil
		}
	}()
	go func() {
		defer wg.Done()
		if a.hazards == nil {
			return
		}
		var err error
		if events, err = a.hazards.Fetch(ctx, ref, a.radiusKm); err != nil {
			slog.Error("multi-hazard feed failed", "error", err)
			events = nil
		}
	}()
	go func() {
		defer wg.Done()
		if a.alerts == nil {
			return
		}
		var err error
		if areas, err = a.alerts.Fetch(ctx, ref); err != nil {
			slog.Error("alert feed failed", "error", err)
			areas = nil
		}
	}()

	if opts.IncludeShelters && a.shelters != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if shelterList, err = a.shelters.Find(ctx, ref, opts.ShelterRadiusMeters); err != nil {
				slog.Error("shelter lookup failed", "error", err)
				shelterList = nil
			}
		}()
	}
	wg.Wait()

	merged := mergeByDistance(quakes, events)
	slog.Debug("aggregation cycle merged", "hazards", len(merged), "areas", len(areas))

	// Zones and routes both depend on the merged list but not on each other.
	var routes []models.Route
	wg.Add(1)
	go func() {
		defer wg.Done()
		if a.planner != nil {
			routes = a.planner.Plan(ctx, ref, merged)
		}
	}()
	zoneList := zones.Generate(a.table, merged, ref)
	wg.Wait()

	result := &models.AggregationResult{
		Disasters:     merged,
		Zones:         zoneList,
		Routes:        routes,
		AffectedAreas: areas,
		Shelters:      shelterList,
	}
	if result.Routes == nil {
		result.Routes = []models.Route{}
	}
	if result.AffectedAreas == nil {
		result.AffectedAreas = []models.AlertArea{}
	}

	slog.Debug("aggregation cycle ready",
		"hazards", len(result.Disasters), "zones", len(result.Zones), "routes", len(result.Routes))
	return result, nil
}

// mergeByDistance joins two pre-sorted hazard lists into one list sorted
// ascending by distance. The sort is stable so ties keep their original
// relative order.
func mergeByDistance(a, b []models.HazardEvent) []models.HazardEvent {
	merged := make([]models.HazardEvent, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].DistanceKm < merged[j].DistanceKm })
	return merged
}
