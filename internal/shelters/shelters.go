// Package shelters finds candidate shelter, medical, and assembly locations
// from OpenStreetMap via the Overpass API and ranks them by distance.
package shelters

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	overpass "github.com/serjvanilla/go-overpass"

	"github.com/terascope/go-disaster-intel/internal/geo"
	"github.com/terascope/go-disaster-intel/internal/models"
)

// maxResults bounds response size and downstream rendering cost; it is not
// an Overpass limitation.
const maxResults = 25

// Locator queries an Overpass endpoint for emergency-relevant amenities.
type Locator struct {
	client overpass.Client
}

func NewLocator(endpoint string, timeout time.Duration) *Locator {
	httpClient := &http.Client{Timeout: timeout}
	return &Locator{
		client: overpass.NewWithSettings(endpoint, 1, httpClient),
	}
}

// node amenities queried around the reference point; hospitals and schools
// are additionally queried as ways since they are usually mapped as areas.
var nodeAmenities = []string{
	`node["amenity"="shelter"]`,
	`node["emergency"="assembly_point"]`,
	`node["amenity"="hospital"]`,
	`node["amenity"="fire_station"]`,
	`node["amenity"="community_centre"]`,
	`node["amenity"="place_of_worship"]`,
	`node["amenity"="school"]`,
	`way["amenity"="hospital"]`,
	`way["amenity"="school"]`,
}

// Find returns up to 25 shelters within radiusMeters of ref, nearest first.
// An empty result is a valid answer, not an error. The Overpass client takes
// no context, so an in-flight query is bounded only by the HTTP client
// timeout; ctx is honored before the query starts, so a cancelled or
// superseded cycle never pays for a new round trip.
func (l *Locator) Find(ctx context.Context, ref models.Coordinate, radiusMeters int) ([]models.Shelter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("[out:json][timeout:15];\n(\n")
	for _, selector := range nodeAmenities {
		fmt.Fprintf(&b, "  %s(around:%d,%.6f,%.6f);\n", selector, radiusMeters, ref.Lat, ref.Lon)
	}
	b.WriteString(");\nout body;\n>;\nout skel qt;\n")

	result, err := l.client.Query(b.String())
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	return rank(collect(&result), ref), nil
}

// poiElement is a flattened Overpass node or way.
type poiElement struct {
	id   int64
	lat  float64
	lon  float64
	tags map[string]string
}

// collect flattens an Overpass result. Way positions are member-node
// centroids; untagged skeleton nodes pulled in by way recursion are skipped.
func collect(result *overpass.Result) []poiElement {
	elements := make([]poiElement, 0, len(result.Nodes)+len(result.Ways))

	for _, node := range result.Nodes {
		if len(node.Tags) == 0 {
			continue
		}
		elements = append(elements, poiElement{id: node.ID, lat: node.Lat, lon: node.Lon, tags: node.Tags})
	}

	for _, way := range result.Ways {
		if len(way.Nodes) == 0 {
			continue
		}
		var lat, lon float64
		for _, node := range way.Nodes {
			lat += node.Lat
			lon += node.Lon
		}
		lat /= float64(len(way.Nodes))
		lon /= float64(len(way.Nodes))

		elements = append(elements, poiElement{id: way.ID, lat: lat, lon: lon, tags: way.Tags})
	}

	return elements
}

// rank classifies elements, sorts by distance, and caps at maxResults.
func rank(elements []poiElement, ref models.Coordinate) []models.Shelter {
	shelters := make([]models.Shelter, 0, len(elements))
	for _, el := range elements {
		if s, ok := fromElement(el, ref); ok {
			shelters = append(shelters, s)
		}
	}

	sort.Slice(shelters, func(i, j int) bool { return shelters[i].DistanceKm < shelters[j].DistanceKm })
	if len(shelters) > maxResults {
		shelters = shelters[:maxResults]
	}
	return shelters
}

func fromElement(el poiElement, ref models.Coordinate) (models.Shelter, bool) {
	if el.lat == 0 && el.lon == 0 {
		return models.Shelter{}, false
	}
	pos := models.Coordinate{Lat: el.lat, Lon: el.lon}
	tags := el.tags

	amenity := tags["amenity"]
	if amenity == "" {
		amenity = tags["emergency"]
	}

	name := tags["name"]
	if name == "" {
		name = tags["name:en"]
	}
	if name == "" {
		name = amenityLabel(amenity)
	}

	shelterType := models.ShelterGeneral
	switch {
	case amenity == "hospital" || amenity == "clinic":
		shelterType = models.ShelterMedical
	case tags["pets"] == "yes" || tags["dog"] == "yes":
		shelterType = models.ShelterPetFriendly
	}

	capacity := 0
	if v := tags["capacity"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			capacity = n
		}
	}

	phone := tags["phone"]
	if phone == "" {
		phone = tags["contact:phone"]
	}

	return models.Shelter{
		ID:         fmt.Sprintf("osm-%d", el.id),
		Name:       name,
		Address:    address(tags, el.lat, el.lon),
		Position:   pos,
		Type:       shelterType,
		Amenity:    amenity,
		DistanceKm: geo.HaversineKm(ref, pos),
		Phone:      phone,
		Capacity:   capacity,
	}, true
}

func address(tags map[string]string, lat, lon float64) string {
	parts := make([]string, 0, 3)
	for _, key := range []string{"addr:street", "addr:housenumber", "addr:city"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%.4f°N, %.4f°E", lat, lon)
	}
	return strings.Join(parts, ", ")
}

func amenityLabel(amenity string) string {
	switch amenity {
	case "shelter":
		return "Emergency Shelter"
	case "assembly_point":
		return "Assembly Point"
	case "hospital":
		return "Hospital"
	case "fire_station":
		return "Fire Station"
	case "community_centre":
		return "Community Center"
	case "place_of_worship":
		return "Place of Worship"
	case "school":
		return "School (Public Shelter)"
	default:
		return "Shelter"
	}
}
