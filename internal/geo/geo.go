// Package geo holds the spherical math every other component leans on:
// great-circle distance, initial bearing, compass octants, and the flat-earth
// degree conversion used for circle polygons and point projection.
package geo

import (
	"math"

	"github.com/terascope/go-disaster-intel/internal/models"
)

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.32

	// DefaultCirclePoints is the vertex count for synthesized circle polygons.
	DefaultCirclePoints = 32
)

// HaversineKm returns the great-circle distance between a and b in km.
func HaversineKm(a, b models.Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*sinLon*sinLon

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BearingDeg returns the initial compass bearing from a to b in [0, 360),
// 0 = due north, increasing clockwise.
func BearingDeg(a, b models.Coordinate) float64 {
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(latB)
	x := math.Cos(latA)*math.Sin(latB) - math.Sin(latA)*math.Cos(latB)*math.Cos(dLon)

	return math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360)
}

var compassLabels = [8]string{"North", "NE", "East", "SE", "South", "SW", "West", "NW"}

// CompassLabel maps a bearing in [0, 360) to its nearest octant label.
func CompassLabel(deg float64) string {
	return compassLabels[int(math.Round(deg/45))%8]
}

// ProjectPoint returns the point distKm away from origin along bearingDeg,
// using the same degree conversion as CirclePolygon. Longitude is corrected
// by cos(lat) for meridian convergence.
func ProjectPoint(origin models.Coordinate, bearingDeg, distKm float64) models.Coordinate {
	rad := bearingDeg * math.Pi / 180
	return models.Coordinate{
		Lat: origin.Lat + (distKm/kmPerDegree)*math.Cos(rad),
		Lon: origin.Lon + (distKm/(kmPerDegree*math.Cos(origin.Lat*math.Pi/180)))*math.Sin(rad),
	}
}

// CirclePolygon approximates a circle of radiusKm around center with points
// vertices at equal angular spacing. The ring is explicitly closed (last
// vertex equals the first), so the result has points+1 entries.
//
// This is a flat-earth approximation, not a geodesic buffer. It is fine for
// radii under ~200 km away from the poles, which covers every radius the
// zone tables produce; callers must not rely on it beyond that.
func CirclePolygon(center models.Coordinate, radiusKm float64, points int) []models.Coordinate {
	if points <= 0 {
		points = DefaultCirclePoints
	}

	ring := make([]models.Coordinate, 0, points+1)
	for i := 0; i < points; i++ {
		angle := 360 * float64(i) / float64(points)
		ring = append(ring, ProjectPoint(center, angle, radiusKm))
	}
	ring = append(ring, ring[0])
	return ring
}
