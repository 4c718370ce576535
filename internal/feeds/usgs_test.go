package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/terascope/go-disaster-intel/internal/models"
)

// ref is downtown Los Angeles in all feed tests.
var testRef = models.Coordinate{Lat: 34.0522, Lon: -118.2437}

const usgsFixture = `{
  "features": [
    {
      "id": "us7000aaaa",
      "properties": {"mag": 7.4, "place": "50km W of Somewhere", "time": 1700000000000, "title": "M 7.4 - 50km W of Somewhere"},
      "geometry": {"coordinates": [-118.5, 34.2, 10.0]}
    },
    {
      "id": "us7000bbbb",
      "properties": {"mag": 5.8, "place": "Off the coast", "time": 1700000100000, "title": "M 5.8 - Off the coast"},
      "geometry": {"coordinates": [-119.5, 35.0, 8.2]}
    },
    {
      "id": "us7000cccc",
      "properties": {"mag": 4.1, "place": "Far away", "time": 1700000200000, "title": "M 4.1 - Far away"},
      "geometry": {"coordinates": [140.0, 36.0, 30.0]}
    },
    {
      "id": "us7000dddd",
      "properties": {"mag": 3.3, "place": "Near LA", "time": 1700000300000, "title": ""},
      "geometry": {"coordinates": [-118.3, 34.1, 5.0]}
    }
  ]
}`

func TestUSGSFetch_NormalizesAndFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(usgsFixture))
	}))
	defer srv.Close()

	client := NewUSGSClient(srv.URL, 5*time.Second, 5.5, 7.0)
	events, err := client.Fetch(context.Background(), testRef, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the Japan quake is beyond the 500 km radius
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	// sorted ascending by distance
	for i := 1; i < len(events); i++ {
		if events[i].DistanceKm < events[i-1].DistanceKm {
			t.Errorf("events not sorted by distance: %v then %v", events[i-1].DistanceKm, events[i].DistanceKm)
		}
	}

	for _, e := range events {
		if e.Type != models.HazardEarthquake {
			t.Errorf("expected EQ type, got %s", e.Type)
		}
		if e.Source != "usgs" {
			t.Errorf("expected source usgs, got %s", e.Source)
		}
	}

	byID := map[string]models.HazardEvent{}
	for _, e := range events {
		byID[e.ID] = e
	}

	// [lon, lat] flipped into position
	a := byID["usgs_us7000aaaa"]
	if a.Position.Lat != 34.2 || a.Position.Lon != -118.5 {
		t.Errorf("coordinates not flipped: %+v", a.Position)
	}

	// severity tiers
	if a.Severity != models.SeverityExtreme {
		t.Errorf("M7.4 should be extreme, got %s", a.Severity)
	}
	if byID["usgs_us7000bbbb"].Severity != models.SeveritySevere {
		t.Errorf("M5.8 should be severe, got %s", byID["usgs_us7000bbbb"].Severity)
	}
	if byID["usgs_us7000dddd"].Severity != models.SeverityModerate {
		t.Errorf("M3.3 should be moderate, got %s", byID["usgs_us7000dddd"].Severity)
	}

	// empty upstream title gets a synthesized one
	if byID["usgs_us7000dddd"].Title != "M3.3 Earthquake" {
		t.Errorf("expected synthesized title, got %q", byID["usgs_us7000dddd"].Title)
	}
}

func TestUSGSFetch_ConfigurableCutoffs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(usgsFixture))
	}))
	defer srv.Close()

	// with a 5.0 extreme cutoff, the M5.8 quake classifies as extreme
	client := NewUSGSClient(srv.URL, 5*time.Second, 4.0, 5.0)
	events, err := client.Fetch(context.Background(), testRef, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, e := range events {
		if e.ID == "usgs_us7000bbbb" && e.Severity != models.SeverityExtreme {
			t.Errorf("expected extreme with lowered cutoff, got %s", e.Severity)
		}
	}
}

func TestUSGSFetch_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewUSGSClient(srv.URL, 5*time.Second, 5.5, 7.0)
	if _, err := client.Fetch(context.Background(), testRef, 500); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestUSGSFetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewUSGSClient(srv.URL, 5*time.Second, 5.5, 7.0)
	if _, err := client.Fetch(context.Background(), testRef, 500); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
