// Package zones converts a merged hazard list into danger/caution/safe
// polygons. One RadiusTable drives zone emission, the reference-point safety
// check, and route blocking, so the magic numbers live in exactly one place.
package zones

import (
	"fmt"

	"github.com/terascope/go-disaster-intel/internal/geo"
	"github.com/terascope/go-disaster-intel/internal/models"
)

// Radii is a danger/caution radius pair in km. Caution is always >= danger.
type Radii struct {
	DangerKm  float64
	CautionKm float64
}

// QuakeTier maps a minimum magnitude to a danger radius. Caution for
// earthquakes is twice the danger radius at every tier.
type QuakeTier struct {
	MinMagnitude float64
	DangerKm     float64
}

// RadiusTable holds the per-hazard-type radius rules.
type RadiusTable struct {
	QuakeTiers []QuakeTier // descending by MinMagnitude; last entry is the floor
	Wildfire   Radii
	Flood      Radii
	Cyclone    Radii
	Volcano    Radii
	Other      Radii
}

// DefaultTable returns the standard radius rules.
func DefaultTable() RadiusTable {
	return RadiusTable{
		QuakeTiers: []QuakeTier{
			{MinMagnitude: 7, DangerKm: 30},
			{MinMagnitude: 6, DangerKm: 15},
			{MinMagnitude: 5, DangerKm: 8},
			{MinMagnitude: 0, DangerKm: 4},
		},
		Wildfire: Radii{DangerKm: 10, CautionKm: 25},
		Flood:    Radii{DangerKm: 8, CautionKm: 20},
		Cyclone:  Radii{DangerKm: 50, CautionKm: 100},
		Volcano:  Radii{DangerKm: 20, CautionKm: 40},
		Other:    Radii{DangerKm: 5, CautionKm: 12},
	}
}

// For returns the radius pair for a hazard. Earthquakes with no reported
// magnitude are treated as M5.
func (t RadiusTable) For(h models.HazardEvent) Radii {
	switch h.Type {
	case models.HazardEarthquake:
		mag := h.Magnitude
		if mag == 0 {
			mag = 5
		}
		for _, tier := range t.QuakeTiers {
			if mag >= tier.MinMagnitude {
				return Radii{DangerKm: tier.DangerKm, CautionKm: tier.DangerKm * 2}
			}
		}
		last := t.QuakeTiers[len(t.QuakeTiers)-1]
		return Radii{DangerKm: last.DangerKm, CautionKm: last.DangerKm * 2}
	case models.HazardWildfire:
		return t.Wildfire
	case models.HazardFlood:
		return t.Flood
	case models.HazardCyclone:
		return t.Cyclone
	case models.HazardVolcano:
		return t.Volcano
	default:
		return t.Other
	}
}

const (
	noThreatSafeRadiusKm = 5 // safe zone when no hazards exist at all
	userSafeRadiusKm     = 3 // safe zone when hazards exist but none reach the user
)

// Generate synthesizes zones for the given hazards around ref. With no
// hazards it returns a single 5 km safe zone at ref. Otherwise it emits a
// danger and a caution circle per hazard, and appends a 3 km safe zone at
// ref when ref is outside every hazard's caution radius. Output order
// carries no meaning.
func Generate(table RadiusTable, hazards []models.HazardEvent, ref models.Coordinate) []models.Zone {
	if len(hazards) == 0 {
		return []models.Zone{{
			ID:       "safe-area",
			Kind:     models.ZoneSafe,
			Label:    "Your area — No active threats",
			Boundary: geo.CirclePolygon(ref, noThreatSafeRadiusKm, geo.DefaultCirclePoints),
		}}
	}

	out := make([]models.Zone, 0, len(hazards)*2+1)
	inCaution := false

	for _, h := range hazards {
		r := table.For(h)
		out = append(out, models.Zone{
			ID:             "danger-" + h.ID,
			Kind:           models.ZoneDanger,
			Label:          fmt.Sprintf("DANGER — %s", h.Title),
			SourceHazardID: h.ID,
			HazardType:     h.Type,
			Boundary:       geo.CirclePolygon(h.Position, r.DangerKm, geo.DefaultCirclePoints),
		})
		out = append(out, models.Zone{
			ID:             "caution-" + h.ID,
			Kind:           models.ZoneCaution,
			Label:          fmt.Sprintf("CAUTION — %s", h.Title),
			SourceHazardID: h.ID,
			HazardType:     h.Type,
			Boundary:       geo.CirclePolygon(h.Position, r.CautionKm, geo.DefaultCirclePoints),
		})
		if h.DistanceKm <= r.CautionKm {
			inCaution = true
		}
	}

	if !inCaution {
		out = append(out, models.Zone{
			ID:       "safe-user",
			Kind:     models.ZoneSafe,
			Label:    "Your area — Currently safe",
			Boundary: geo.CirclePolygon(ref, userSafeRadiusKm, geo.DefaultCirclePoints),
		})
	}

	return out
}
