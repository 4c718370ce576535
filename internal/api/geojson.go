package api

import (
	"github.com/terascope/go-disaster-intel/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"` // []float64 for Point, [][][]float64 for Polygon
}

// toGeoJSON renders an aggregation result for map clients: hazards as Point
// features, zones and alert areas as Polygon features. Coordinates follow
// GeoJSON [lon, lat] ordering.
func toGeoJSON(result *models.AggregationResult) FeatureCollection {
	features := make([]Feature, 0, len(result.Disasters)+len(result.Zones)+len(result.AffectedAreas))

	for _, d := range result.Disasters {
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{d.Position.Lon, d.Position.Lat},
			},
			Properties: map[string]any{
				"feature":     "hazard",
				"id":          d.ID,
				"type":        string(d.Type),
				"title":       d.Title,
				"place":       d.Place,
				"magnitude":   d.Magnitude,
				"severity":    string(d.Severity),
				"source":      d.Source,
				"distance_km": d.DistanceKm,
			},
		})
	}

	for _, z := range result.Zones {
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Polygon",
				Coordinates: polygonRing(z.Boundary),
			},
			Properties: map[string]any{
				"feature":          "zone",
				"id":               z.ID,
				"kind":             string(z.Kind),
				"label":            z.Label,
				"source_hazard_id": z.SourceHazardID,
			},
		})
	}

	for _, a := range result.AffectedAreas {
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Polygon",
				Coordinates: polygonRing(a.Boundary),
			},
			Properties: map[string]any{
				"feature":      "alert_area",
				"id":           a.ID,
				"name":         a.Name,
				"headline":     a.Headline,
				"severity":     a.SeverityText,
				"observed_ago": a.ObservedAgo,
			},
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

func polygonRing(boundary []models.Coordinate) [][][]float64 {
	ring := make([][]float64, 0, len(boundary))
	for _, c := range boundary {
		ring = append(ring, []float64{c.Lon, c.Lat})
	}
	return [][][]float64{ring}
}
