package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terascope/go-disaster-intel/internal/models"
)

var (
	losAngeles   = models.Coordinate{Lat: 34.0522, Lon: -118.2437}
	sanFrancisco = models.Coordinate{Lat: 37.7749, Lon: -122.4194}
	tokyo        = models.Coordinate{Lat: 35.6762, Lon: 139.6503}
)

func TestHaversineKm_Symmetry(t *testing.T) {
	pairs := [][2]models.Coordinate{
		{losAngeles, sanFrancisco},
		{losAngeles, tokyo},
		{sanFrancisco, tokyo},
		{{Lat: -33.8688, Lon: 151.2093}, {Lat: 51.5074, Lon: -0.1278}},
	}

	for _, p := range pairs {
		assert.InDelta(t, HaversineKm(p[0], p[1]), HaversineKm(p[1], p[0]), 1e-9)
	}
}

func TestHaversineKm_ZeroForSamePoint(t *testing.T) {
	assert.Zero(t, HaversineKm(losAngeles, losAngeles))
	assert.Zero(t, HaversineKm(models.Coordinate{}, models.Coordinate{}))
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// LA to SF is about 559 km great-circle.
	assert.InDelta(t, 559, HaversineKm(losAngeles, sanFrancisco), 5)
}

func TestBearingDeg_Range(t *testing.T) {
	points := []models.Coordinate{
		losAngeles, sanFrancisco, tokyo,
		{Lat: -45, Lon: 170}, {Lat: 80, Lon: -30}, {Lat: 0.1, Lon: 0.1},
	}
	for _, a := range points {
		for _, b := range points {
			if a == b {
				continue
			}
			deg := BearingDeg(a, b)
			assert.GreaterOrEqual(t, deg, 0.0, "bearing from %v to %v", a, b)
			assert.Less(t, deg, 360.0, "bearing from %v to %v", a, b)
		}
	}
}

func TestBearingDeg_Cardinals(t *testing.T) {
	origin := models.Coordinate{Lat: 0, Lon: 0}

	assert.InDelta(t, 0, BearingDeg(origin, models.Coordinate{Lat: 1, Lon: 0}), 0.01)
	assert.InDelta(t, 90, BearingDeg(origin, models.Coordinate{Lat: 0, Lon: 1}), 0.01)
	assert.InDelta(t, 180, BearingDeg(origin, models.Coordinate{Lat: -1, Lon: 0}), 0.01)
	assert.InDelta(t, 270, BearingDeg(origin, models.Coordinate{Lat: 0, Lon: -1}), 0.01)
}

func TestCompassLabel(t *testing.T) {
	cases := []struct {
		deg  float64
		want string
	}{
		{0, "North"},
		{23, "NE"},
		{45, "NE"},
		{90, "East"},
		{135, "SE"},
		{180, "South"},
		{225, "SW"},
		{270, "West"},
		{315, "NW"},
		{338, "North"},
		{359, "North"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CompassLabel(tc.deg), "deg=%v", tc.deg)
	}
}

func TestCirclePolygon_ClosedRing(t *testing.T) {
	for _, points := range []int{8, 32, 64} {
		ring := CirclePolygon(losAngeles, 10, points)
		assert.Len(t, ring, points+1)
		assert.Equal(t, ring[0], ring[len(ring)-1])
	}
}

func TestCirclePolygon_VerticesNearRadius(t *testing.T) {
	const radiusKm = 25.0
	ring := CirclePolygon(losAngeles, radiusKm, DefaultCirclePoints)

	for _, v := range ring {
		d := HaversineKm(losAngeles, v)
		assert.InDelta(t, radiusKm, d, radiusKm*0.02)
	}
}

func TestCirclePolygon_DefaultPointCount(t *testing.T) {
	ring := CirclePolygon(losAngeles, 5, 0)
	assert.Len(t, ring, DefaultCirclePoints+1)
}

func TestProjectPoint_DueNorth(t *testing.T) {
	dest := ProjectPoint(losAngeles, 0, 15)
	assert.InDelta(t, losAngeles.Lat+15/111.32, dest.Lat, 1e-9)
	assert.InDelta(t, losAngeles.Lon, dest.Lon, 1e-9)
}

func TestProjectPoint_RoundTripDistance(t *testing.T) {
	for _, bearing := range []float64{0, 60, 150, 240, 330} {
		dest := ProjectPoint(losAngeles, bearing, 15)
		assert.InDelta(t, 15, HaversineKm(losAngeles, dest), 0.3, "bearing=%v", bearing)
	}
}
