package models

import "time"

// Coordinate is a WGS84 point. Value type, never mutated after creation.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

type HazardType string

const (
	HazardEarthquake HazardType = "EQ"
	HazardWildfire   HazardType = "WF"
	HazardFlood      HazardType = "FL"
	HazardCyclone    HazardType = "TC"
	HazardVolcano    HazardType = "VO"
	HazardLandslide  HazardType = "LS"
	HazardOther      HazardType = "OTHER"
)

type Severity string

const (
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityExtreme  Severity = "extreme"
)

// HazardEvent is a normalized record from any upstream feed. Events are
// rebuilt from upstream JSON on every aggregation cycle and never persisted.
type HazardEvent struct {
	ID         string     `json:"id"` // source-prefixed, e.g. "usgs_us7000abcd"
	Source     string     `json:"source"`
	Position   Coordinate `json:"position"`
	Type       HazardType `json:"type"`
	Title      string     `json:"title"`
	Place      string     `json:"place,omitempty"`
	Magnitude  float64    `json:"magnitude,omitempty"` // Richter scale, earthquakes only
	Severity   Severity   `json:"severity"`
	ObservedAt time.Time  `json:"observed_at,omitzero"`
	DistanceKm float64    `json:"distance_km"` // relative to the cycle's reference point
}

// AlertArea is an NWS-style polygon alert. Boundary is a closed ring owned
// exclusively by this area.
type AlertArea struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Headline     string       `json:"headline,omitempty"`
	SeverityText string       `json:"severity,omitempty"`
	ObservedAgo  string       `json:"observed_ago"`
	Boundary     []Coordinate `json:"boundary"`
}

type ZoneKind string

const (
	ZoneSafe    ZoneKind = "safe"
	ZoneCaution ZoneKind = "caution"
	ZoneDanger  ZoneKind = "danger"
)

// Zone is a synthesized risk polygon, recomputed on every aggregation.
type Zone struct {
	ID             string       `json:"id"`
	Kind           ZoneKind     `json:"kind"`
	Label          string       `json:"label"`
	SourceHazardID string       `json:"source_hazard_id,omitempty"`
	HazardType     HazardType   `json:"hazard_type,omitempty"`
	Boundary       []Coordinate `json:"boundary"`
}

type RouteStatus string

const (
	RouteClear   RouteStatus = "clear"
	RouteBlocked RouteStatus = "blocked"
)

// Route is a candidate escape path. Blocked means some point of the path
// lies within the danger radius of a hazard used to seed the zones.
type Route struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Status      RouteStatus  `json:"status"`
	Path        []Coordinate `json:"path"`
	DistanceKm  float64      `json:"distance_km"`
	DurationMin int          `json:"duration_min"`
}

type ShelterType string

const (
	ShelterGeneral     ShelterType = "general"
	ShelterMedical     ShelterType = "medical"
	ShelterPetFriendly ShelterType = "pet-friendly"
)

type Shelter struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Address    string      `json:"address"`
	Position   Coordinate  `json:"position"`
	Type       ShelterType `json:"type"`
	Amenity    string      `json:"amenity,omitempty"`
	DistanceKm float64     `json:"distance_km"`
	Phone      string      `json:"phone,omitempty"`
	Capacity   int         `json:"capacity,omitempty"`
}

// AggregationResult is one immutable snapshot produced by an aggregation
// cycle. Shelters is populated only when the caller batched the shelter
// lookup into the cycle.
type AggregationResult struct {
	Disasters     []HazardEvent `json:"disasters"`
	Zones         []Zone        `json:"zones"`
	Routes        []Route       `json:"routes"`
	AffectedAreas []AlertArea   `json:"affected_areas"`
	Shelters      []Shelter     `json:"shelters,omitempty"`
}
