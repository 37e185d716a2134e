package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingCredential means the road-routing service cannot be used.
// It is a startup condition, never a per-call error.
var ErrMissingCredential = errors.New("MAPBOX_TOKEN is required")

type Config struct {
	Distance DistanceConfig
	Feeds    FeedConfig
	Planning PlanningConfig
	Storage  StorageConfig
	Server   ServerConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

type DistanceConfig struct {
	MapboxToken   string
	MapboxBaseURL string
	Timeout       time.Duration
	// Requests per second to the routing service; 0 disables limiting.
	RateLimit float64
	// none, postgres or redis.
	Store string
}

type FeedConfig struct {
	// csv or postgres.
	InputSource        string
	StoreLocationsPath string
	PredictionsPath    string
	TransfersPath      string
	StrategyPath       string
	AlertsPath         string
}

type PlanningConfig struct {
	TruckCapacity int
	SpeedKmph     float64
	GraceHours    float64
	Workers       int
}

type StorageConfig struct {
	DatabaseURL      string
	RedisURL         string
	RedisDistanceTTL time.Duration
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type MetricsConfig struct {
	// Prometheus textfile written at the end of each batch run; empty disables it.
	TextfilePath string
}

type LogConfig struct {
	Level  string
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("MAPBOX_BASE_URL", "https://api.mapbox.com")
	v.SetDefault("DISTANCE_TIMEOUT", "5s")
	v.SetDefault("DISTANCE_RATE_LIMIT", 0)
	v.SetDefault("DISTANCE_STORE", "none")

	v.SetDefault("INPUT_SOURCE", "csv")
	v.SetDefault("STORE_LOCATIONS_PATH", "data/store_locations.csv")
	v.SetDefault("PREDICTIONS_PATH", "outputs/predictions.csv")
	v.SetDefault("TRANSFERS_PATH", "outputs/interstore_transfers.csv")
	v.SetDefault("STRATEGY_PATH", "outputs/routing_strategy_comparison.csv")
	v.SetDefault("ALERTS_PATH", "outputs/alerts.csv")

	v.SetDefault("TRUCK_CAPACITY", 100)
	v.SetDefault("SPEED_KMPH", 40)
	v.SetDefault("GRACE_HOURS", 2)
	v.SetDefault("WORKERS", 1)

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_DISTANCE_TTL", "720h")

	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("METRICS_TEXTFILE", "outputs/rebalance_metrics.prom")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// Load reads configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Distance: DistanceConfig{
			MapboxToken:   strings.TrimSpace(v.GetString("MAPBOX_TOKEN")),
			MapboxBaseURL: strings.TrimRight(v.GetString("MAPBOX_BASE_URL"), "/"),
			Timeout:       v.GetDuration("DISTANCE_TIMEOUT"),
			RateLimit:     v.GetFloat64("DISTANCE_RATE_LIMIT"),
			Store:         strings.ToLower(strings.TrimSpace(v.GetString("DISTANCE_STORE"))),
		},
		Feeds: FeedConfig{
			InputSource:        strings.ToLower(strings.TrimSpace(v.GetString("INPUT_SOURCE"))),
			StoreLocationsPath: v.GetString("STORE_LOCATIONS_PATH"),
			PredictionsPath:    v.GetString("PREDICTIONS_PATH"),
			TransfersPath:      v.GetString("TRANSFERS_PATH"),
			StrategyPath:       v.GetString("STRATEGY_PATH"),
			AlertsPath:         v.GetString("ALERTS_PATH"),
		},
		Planning: PlanningConfig{
			TruckCapacity: v.GetInt("TRUCK_CAPACITY"),
			SpeedKmph:     v.GetFloat64("SPEED_KMPH"),
			GraceHours:    v.GetFloat64("GRACE_HOURS"),
			Workers:       v.GetInt("WORKERS"),
		},
		Storage: StorageConfig{
			DatabaseURL:      v.GetString("DATABASE_URL"),
			RedisURL:         v.GetString("REDIS_URL"),
			RedisDistanceTTL: v.GetDuration("REDIS_DISTANCE_TTL"),
		},
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		Metrics: MetricsConfig{
			TextfilePath: metricsPath(v.GetString("METRICS_TEXTFILE")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Distance.Timeout <= 0 {
		return fmt.Errorf("config: DISTANCE_TIMEOUT must be positive, got %s", c.Distance.Timeout)
	}
	if c.Distance.RateLimit < 0 {
		return fmt.Errorf("config: DISTANCE_RATE_LIMIT must not be negative, got %g", c.Distance.RateLimit)
	}
	switch c.Distance.Store {
	case "none", "postgres", "redis":
	default:
		return fmt.Errorf("config: DISTANCE_STORE must be none, postgres or redis, got %q", c.Distance.Store)
	}
	switch c.Feeds.InputSource {
	case "csv", "postgres":
	default:
		return fmt.Errorf("config: INPUT_SOURCE must be csv or postgres, got %q", c.Feeds.InputSource)
	}
	if c.Planning.TruckCapacity < 1 {
		return fmt.Errorf("config: TRUCK_CAPACITY must be positive, got %d", c.Planning.TruckCapacity)
	}
	if c.Planning.SpeedKmph <= 0 {
		return fmt.Errorf("config: SPEED_KMPH must be positive, got %g", c.Planning.SpeedKmph)
	}
	if c.Planning.GraceHours < 0 {
		return fmt.Errorf("config: GRACE_HOURS must not be negative, got %g", c.Planning.GraceHours)
	}
	if c.Planning.Workers < 1 {
		c.Planning.Workers = 1
	}
	return nil
}

// RequireDistanceCredential fails when the routing service token is absent.
func (c *Config) RequireDistanceCredential() error {
	if c.Distance.MapboxToken == "" {
		return ErrMissingCredential
	}
	return nil
}

// Get returns an environment value or fallback when unset.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// metricsPath maps "none" or "off" to an empty path.
func metricsPath(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "none", "off":
		return ""
	}
	return s
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
