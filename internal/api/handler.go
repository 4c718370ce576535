package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/terascope/go-disaster-intel/internal/aggregator"
	"github.com/terascope/go-disaster-intel/internal/models"
	"github.com/terascope/go-disaster-intel/internal/snapshot"
)

// Aggregator is the slice of the core the HTTP layer depends on.
type Aggregator interface {
	Aggregate(ctx context.Context, ref models.Coordinate, opts aggregator.Options) (*models.AggregationResult, error)
}

type ShelterFinder interface {
	Find(ctx context.Context, ref models.Coordinate, radiusMeters int) ([]models.Shelter, error)
}

type Handler struct {
	agg           Aggregator
	shelters      ShelterFinder
	store         *snapshot.Store
	shelterRadius int // default shelter search radius in meters
}

func NewHandler(agg Aggregator, shelters ShelterFinder, store *snapshot.Store, shelterRadiusMeters int) *Handler {
	return &Handler{
		agg:           agg,
		shelters:      shelters,
		store:         store,
		shelterRadius: shelterRadiusMeters,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/assessment", h.getAssessment)
	r.GET("/api/assessment/geojson", h.getAssessmentGeoJSON)
	r.GET("/api/shelters", h.getShelters)
	r.GET("/health", h.health)
}

// getAssessment runs one aggregation cycle for the given coordinates. With
// no coordinates it serves the background snapshot for the default location.
func (h *Handler) getAssessment(c *gin.Context) {
	if c.Query("lat") == "" && c.Query("lon") == "" {
		result, takenAt, ok := h.store.Latest()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot available yet"})
			return
		}
		c.Header("X-Snapshot-At", takenAt.UTC().Format(http.TimeFormat))
		c.JSON(http.StatusOK, result)
		return
	}

	ref, ok := parseRef(c)
	if !ok {
		return
	}

	result, err := h.agg.Aggregate(c.Request.Context(), ref, h.parseOptions(c))
	if err != nil {
		h.writeAggregateError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getAssessmentGeoJSON(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		return
	}

	result, err := h.agg.Aggregate(c.Request.Context(), ref, h.parseOptions(c))
	if err != nil {
		h.writeAggregateError(c, err)
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toGeoJSON(result))
}

// getShelters is the standalone shelter lookup. A provider failure degrades
// to an empty list; only bad input is an error.
func (h *Handler) getShelters(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		return
	}
	if !ref.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinate out of range"})
		return
	}

	radius := h.shelterRadius
	if r := c.Query("radius"); r != "" {
		if n, err := strconv.Atoi(r); err == nil && n > 0 {
			radius = n
		}
	}

	shelters, err := h.shelters.Find(c.Request.Context(), ref, radius)
	if err != nil {
		slog.Error("shelter lookup failed", "error", err)
		shelters = nil
	}
	if shelters == nil {
		shelters = []models.Shelter{}
	}
	c.JSON(http.StatusOK, shelters)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) parseOptions(c *gin.Context) aggregator.Options {
	opts := aggregator.Options{}
	if v := c.Query("shelters"); v == "1" || v == "true" {
		opts.IncludeShelters = true
		opts.ShelterRadiusMeters = h.shelterRadius
		if r := c.Query("shelter_radius"); r != "" {
			if n, err := strconv.Atoi(r); err == nil && n > 0 {
				opts.ShelterRadiusMeters = n
			}
		}
	}
	return opts
}

func (h *Handler) writeAggregateError(c *gin.Context, err error) {
	if errors.Is(err, aggregator.ErrInvalidCoordinate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slog.Error("aggregation failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
}

// parseRef reads lat/lon query params, writing a 400 response itself when
// they are missing or not numbers. Range validation belongs to the core.
func parseRef(c *gin.Context) (models.Coordinate, bool) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a number"})
		return models.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon must be a number"})
		return models.Coordinate{}, false
	}
	return models.Coordinate{Lat: lat, Lon: lon}, true
}
