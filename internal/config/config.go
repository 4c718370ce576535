package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Feeds    FeedsConfig
	Routing  RoutingConfig
	Shelters SheltersConfig
	Refresh  RefreshConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

type FeedsConfig struct {
	USGSEnabled  bool
	USGSURL      string
	EONETEnabled bool
	EONETURL     string
	NWSEnabled   bool
	NWSURL       string
	NWSUserAgent string

	// Timeout applies per upstream call; the public feeds carry no SLA.
	Timeout time.Duration
	// SearchRadiusKm bounds which hazards count as "nearby".
	SearchRadiusKm float64
	// Magnitude cutoffs for seismic severity classification.
	SevereMagnitude  float64
	ExtremeMagnitude float64
}

type RoutingConfig struct {
	OSRMURL string
	Timeout time.Duration
}

type SheltersConfig struct {
	OverpassURL  string
	Timeout      time.Duration
	RadiusMeters int
}

type RefreshConfig struct {
	Enabled  bool
	Interval time.Duration
	Lat      float64
	Lon      float64
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		Feeds: FeedsConfig{
			USGSEnabled:      getEnvBool("USGS_ENABLED", true),
			USGSURL:          getEnv("USGS_URL", "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/2.5_week.geojson"),
			EONETEnabled:     getEnvBool("EONET_ENABLED", true),
			EONETURL:         getEnv("EONET_URL", "https://eonet.gsfc.nasa.gov/api/v3/events?status=open&limit=50"),
			NWSEnabled:       getEnvBool("NWS_ENABLED", true),
			NWSURL:           getEnv("NWS_URL", "https://api.weather.gov"),
			NWSUserAgent:     getEnv("NWS_USER_AGENT", "go-disaster-intel (contact@terascope.app)"),
			Timeout:          getEnvDuration("FEED_TIMEOUT", 10*time.Second),
			SearchRadiusKm:   getEnvFloat("SEARCH_RADIUS_KM", 500),
			SevereMagnitude:  getEnvFloat("SEVERE_MAGNITUDE", 5.5),
			ExtremeMagnitude: getEnvFloat("EXTREME_MAGNITUDE", 7.0),
		},
		Routing: RoutingConfig{
			OSRMURL: getEnv("OSRM_URL", "https://router.project-osrm.org"),
			Timeout: getEnvDuration("OSRM_TIMEOUT", 10*time.Second),
		},
		Shelters: SheltersConfig{
			OverpassURL:  getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
			Timeout:      getEnvDuration("OVERPASS_TIMEOUT", 15*time.Second),
			RadiusMeters: getEnvInt("SHELTER_RADIUS_METERS", 15000),
		},
		Refresh: RefreshConfig{
			Enabled:  getEnvBool("REFRESH_ENABLED", true),
			Interval: getEnvDuration("REFRESH_INTERVAL", 5*time.Minute),
			Lat:      getEnvFloat("REFRESH_LAT", 34.0522),
			Lon:      getEnvFloat("REFRESH_LON", -118.2437),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Feeds.SearchRadiusKm <= 0 {
		return fmt.Errorf("search radius must be positive")
	}
	if c.Feeds.ExtremeMagnitude < c.Feeds.SevereMagnitude {
		return fmt.Errorf("extreme magnitude cutoff %.1f below severe cutoff %.1f",
			c.Feeds.ExtremeMagnitude, c.Feeds.SevereMagnitude)
	}
	if c.Shelters.RadiusMeters <= 0 {
		return fmt.Errorf("shelter radius must be positive")
	}
	if c.Refresh.Enabled {
		if c.Refresh.Interval < time.Minute {
			return fmt.Errorf("refresh interval must be at least 1 minute")
		}
		if c.Refresh.Lat < -90 || c.Refresh.Lat > 90 || c.Refresh.Lon < -180 || c.Refresh.Lon > 180 {
			return fmt.Errorf("invalid refresh coordinate: %g, %g", c.Refresh.Lat, c.Refresh.Lon)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
