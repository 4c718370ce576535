package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/terascope/go-disaster-intel/internal/aggregator"
	"github.com/terascope/go-disaster-intel/internal/models"
	"github.com/terascope/go-disaster-intel/internal/snapshot"
)

type mockAggregator struct {
	result  *models.AggregationResult
	err     error
	lastRef models.Coordinate
	opts    aggregator.Options
}

func (m *mockAggregator) Aggregate(_ context.Context, ref models.Coordinate, opts aggregator.Options) (*models.AggregationResult, error) {
	m.lastRef = ref
	m.opts = opts
	if !ref.Valid() {
		return nil, fmt.Errorf("%w: lat=%g lon=%g", aggregator.ErrInvalidCoordinate, ref.Lat, ref.Lon)
	}
	return m.result, m.err
}

type mockShelterFinder struct {
	shelters []models.Shelter
	err      error
	radius   int
}

func (m *mockShelterFinder) Find(_ context.Context, _ models.Coordinate, radiusMeters int) ([]models.Shelter, error) {
	m.radius = radiusMeters
	return m.shelters, m.err
}

func sampleResult() *models.AggregationResult {
	return &models.AggregationResult{
		Disasters: []models.HazardEvent{
			{ID: "usgs_1", Source: "usgs", Type: models.HazardEarthquake, Magnitude: 5.1, DistanceKm: 42},
		},
		Zones: []models.Zone{
			{ID: "danger-usgs_1", Kind: models.ZoneDanger, Boundary: []models.Coordinate{{Lat: 34, Lon: -118}}},
			{ID: "caution-usgs_1", Kind: models.ZoneCaution, Boundary: []models.Coordinate{{Lat: 34, Lon: -118}}},
		},
		Routes:        []models.Route{{ID: "route-1", Status: models.RouteClear}},
		AffectedAreas: []models.AlertArea{{ID: "nws_1", Boundary: []models.Coordinate{{Lat: 34, Lon: -118}}}},
	}
}

func newTestRouter(agg Aggregator, shelters ShelterFinder, store *snapshot.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(agg, shelters, store, 10000).RegisterRoutes(r)
	return r
}

func doGet(t *testing.T, r *gin.Engine, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetAssessment(t *testing.T) {
	agg := &mockAggregator{result: sampleResult()}
	r := newTestRouter(agg, &mockShelterFinder{}, snapshot.NewStore())

	w := doGet(t, r, "/api/assessment?lat=34.0522&lon=-118.2437")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if agg.lastRef.Lat != 34.0522 || agg.lastRef.Lon != -118.2437 {
		t.Errorf("coordinates not forwarded: %+v", agg.lastRef)
	}

	var body models.AggregationResult
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(body.Disasters) != 1 || len(body.Zones) != 2 || len(body.Routes) != 1 {
		t.Errorf("unexpected result shape: %+v", body)
	}
}

func TestGetAssessment_BadCoordinates(t *testing.T) {
	r := newTestRouter(&mockAggregator{result: sampleResult()}, &mockShelterFinder{}, snapshot.NewStore())

	cases := []string{
		"/api/assessment?lat=abc&lon=-118",
		"/api/assessment?lat=34&lon=",
		"/api/assessment?lat=91&lon=0", // out of range, rejected by the core
	}
	for _, url := range cases {
		if w := doGet(t, r, url); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", url, w.Code)
		}
	}
}

func TestGetAssessment_AggregationError(t *testing.T) {
	agg := &mockAggregator{err: errors.New("upstream meltdown")}
	r := newTestRouter(agg, &mockShelterFinder{}, snapshot.NewStore())

	w := doGet(t, r, "/api/assessment?lat=34&lon=-118")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetAssessment_Snapshot(t *testing.T) {
	store := snapshot.NewStore()
	r := newTestRouter(&mockAggregator{}, &mockShelterFinder{}, store)

	// no snapshot published yet
	if w := doGet(t, r, "/api/assessment"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before first snapshot, got %d", w.Code)
	}

	gen := store.Begin()
	store.Complete(gen, sampleResult())

	w := doGet(t, r, "/api/assessment")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after snapshot, got %d", w.Code)
	}
	if w.Header().Get("X-Snapshot-At") == "" {
		t.Error("missing X-Snapshot-At header")
	}
}

func TestGetAssessment_ShelterOptions(t *testing.T) {
	agg := &mockAggregator{result: sampleResult()}
	r := newTestRouter(agg, &mockShelterFinder{}, snapshot.NewStore())

	doGet(t, r, "/api/assessment?lat=34&lon=-118&shelters=1&shelter_radius=7500")
	if !agg.opts.IncludeShelters {
		t.Error("shelters=1 not forwarded")
	}
	if agg.opts.ShelterRadiusMeters != 7500 {
		t.Errorf("expected radius 7500, got %d", agg.opts.ShelterRadiusMeters)
	}

	doGet(t, r, "/api/assessment?lat=34&lon=-118")
	if agg.opts.IncludeShelters {
		t.Error("shelter lookup must be opt-in")
	}
}

func TestGetAssessmentGeoJSON(t *testing.T) {
	agg := &mockAggregator{result: sampleResult()}
	r := newTestRouter(agg, &mockShelterFinder{}, snapshot.NewStore())

	w := doGet(t, r, "/api/assessment/geojson?lat=34&lon=-118")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("invalid GeoJSON body: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("unexpected type %q", fc.Type)
	}
	// 1 hazard point + 2 zone polygons + 1 alert area polygon
	if len(fc.Features) != 4 {
		t.Fatalf("expected 4 features, got %d", len(fc.Features))
	}
	if fc.Features[0].Geometry.Type != "Point" {
		t.Errorf("hazard should render as Point, got %s", fc.Features[0].Geometry.Type)
	}
	if fc.Features[1].Geometry.Type != "Polygon" {
		t.Errorf("zone should render as Polygon, got %s", fc.Features[1].Geometry.Type)
	}
}

func TestGetShelters(t *testing.T) {
	finder := &mockShelterFinder{shelters: []models.Shelter{{ID: "osm-1", Name: "General Hospital"}}}
	r := newTestRouter(&mockAggregator{}, finder, snapshot.NewStore())

	w := doGet(t, r, "/api/shelters?lat=34&lon=-118&radius=5000")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if finder.radius != 5000 {
		t.Errorf("radius override not forwarded: %d", finder.radius)
	}

	var shelters []models.Shelter
	if err := json.Unmarshal(w.Body.Bytes(), &shelters); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(shelters) != 1 || shelters[0].ID != "osm-1" {
		t.Errorf("unexpected shelters: %+v", shelters)
	}
}

func TestGetShelters_DefaultRadius(t *testing.T) {
	finder := &mockShelterFinder{}
	r := newTestRouter(&mockAggregator{}, finder, snapshot.NewStore())

	doGet(t, r, "/api/shelters?lat=34&lon=-118")
	if finder.radius != 10000 {
		t.Errorf("expected configured default radius, got %d", finder.radius)
	}
}

func TestGetShelters_BadInput(t *testing.T) {
	r := newTestRouter(&mockAggregator{}, &mockShelterFinder{}, snapshot.NewStore())

	for _, url := range []string{"/api/shelters?lat=x&lon=0", "/api/shelters?lat=95&lon=0"} {
		if w := doGet(t, r, url); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", url, w.Code)
		}
	}
}

func TestGetShelters_ProviderFailureDegrades(t *testing.T) {
	finder := &mockShelterFinder{err: errors.New("overpass timeout")}
	r := newTestRouter(&mockAggregator{}, finder, snapshot.NewStore())

	w := doGet(t, r, "/api/shelters?lat=34&lon=-118")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with empty list, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&mockAggregator{}, &mockShelterFinder{}, snapshot.NewStore())

	w := doGet(t, r, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
