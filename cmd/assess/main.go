// assess runs a single aggregation cycle for a coordinate and prints the
// result as JSON. Handy for poking the upstream feeds without the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/terascope/go-disaster-intel/internal/aggregator"
	"github.com/terascope/go-disaster-intel/internal/config"
	"github.com/terascope/go-disaster-intel/internal/feeds"
	"github.com/terascope/go-disaster-intel/internal/logging"
	"github.com/terascope/go-disaster-intel/internal/models"
	"github.com/terascope/go-disaster-intel/internal/routeplan"
	"github.com/terascope/go-disaster-intel/internal/shelters"
	"github.com/terascope/go-disaster-intel/internal/zones"
)

func main() {
	lat := flag.Float64("lat", 34.0522, "reference latitude")
	lon := flag.Float64("lon", -118.2437, "reference longitude")
	withShelters := flag.Bool("shelters", false, "include shelter lookup")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	table := zones.DefaultTable()
	agg := aggregator.New(
		feeds.NewUSGSClient(cfg.Feeds.USGSURL, cfg.Feeds.Timeout, cfg.Feeds.SevereMagnitude, cfg.Feeds.ExtremeMagnitude),
		feeds.NewEONETClient(cfg.Feeds.EONETURL, cfg.Feeds.Timeout),
		feeds.NewNWSClient(cfg.Feeds.NWSURL, cfg.Feeds.NWSUserAgent, cfg.Feeds.Timeout),
		routeplan.NewPlanner(cfg.Routing.OSRMURL, cfg.Routing.Timeout, table),
		shelters.NewLocator(cfg.Shelters.OverpassURL, cfg.Shelters.Timeout),
		table,
		cfg.Feeds.SearchRadiusKm,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := agg.Aggregate(ctx, models.Coordinate{Lat: *lat, Lon: *lon}, aggregator.Options{
		IncludeShelters:     *withShelters,
		ShelterRadiusMeters: cfg.Shelters.RadiusMeters,
	})
	if err != nil {
		logging.Fatalf("aggregation failed: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logging.Fatalf("encoding result: %v", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
}
