package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers accepted by storage.driver / STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverBackend  = "backend"
	DriverMemory   = "memory"
)

type GeofenceSection struct {
	RadiusMeters float64 `yaml:"radius_meters"`
}

// Durations use Go syntax: "10s", "1m".
type LocationSection struct {
	HighAccuracy bool          `yaml:"high_accuracy"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxCachedAge time.Duration `yaml:"max_cached_age"`
	FixCacheTTL  time.Duration `yaml:"fix_cache_ttl"`
}

type StorageSection struct {
	Driver       string `yaml:"driver"`
	DatabaseURL  string `yaml:"database_url"`
	BackendURL   string `yaml:"backend_url"`
	BackendToken string `yaml:"backend_token"`
}

// CookieName is the cookie the dashboard stores its token in.
type AuthSection struct {
	JWTSecret  string `yaml:"jwt_secret"`
	JWTIssuer  string `yaml:"jwt_issuer"`
	CookieName string `yaml:"cookie_name"`
}

type RedisSection struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GoogleSection struct {
	APIKey string `yaml:"api_key"`
}

type Config struct {
	Port     string          `yaml:"port"`
	Geofence GeofenceSection `yaml:"geofence"`
	Location LocationSection `yaml:"location"`
	Storage  StorageSection  `yaml:"storage"`
	Auth     AuthSection     `yaml:"auth"`
	Redis    RedisSection    `yaml:"redis"`
	Google   GoogleSection   `yaml:"google"`
}

func Defaults() Config {
	return Config{
		Port:     "8080",
		Geofence: GeofenceSection{RadiusMeters: 30},
		Location: LocationSection{
			HighAccuracy: true,
			Timeout:      10 * time.Second,
			FixCacheTTL:  5 * time.Minute,
		},
		Storage: StorageSection{Driver: DriverMemory},
		Auth:    AuthSection{CookieName: "authToken"},
	}
}

// Get returns the environment value for key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE and then environment variables, and validates the result.
func Load() (Config, error) {
	cfg := Defaults()

	if path := Get("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("load config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("load config: parse %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = Get("PORT", c.Port)
	c.Storage.Driver = strings.ToLower(Get("STORAGE_DRIVER", c.Storage.Driver))
	c.Storage.DatabaseURL = Get("DATABASE_URL", c.Storage.DatabaseURL)
	c.Storage.BackendURL = Get("BACKEND_URL", c.Storage.BackendURL)
	c.Storage.BackendToken = Get("BACKEND_TOKEN", c.Storage.BackendToken)
	c.Auth.JWTSecret = Get("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.JWTIssuer = Get("JWT_ISSUER", c.Auth.JWTIssuer)
	c.Auth.CookieName = Get("AUTH_COOKIE_NAME", c.Auth.CookieName)
	c.Redis.Addr = Get("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = Get("REDIS_PASSWORD", c.Redis.Password)
	c.Google.APIKey = Get("GOOGLE_GEOLOCATION_API_KEY", c.Google.APIKey)

	var errs []error
	if v := os.Getenv("GEOFENCE_RADIUS_METERS"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("GEOFENCE_RADIUS_METERS: %w", err))
		}
		c.Geofence.RadiusMeters = r
	}
	if v := os.Getenv("LOCATION_HIGH_ACCURACY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOCATION_HIGH_ACCURACY: %w", err))
		}
		c.Location.HighAccuracy = b
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("REDIS_DB: %w", err))
		}
		c.Redis.DB = n
	}
	errs = append(errs,
		envDuration("LOCATION_TIMEOUT", &c.Location.Timeout),
		envDuration("LOCATION_MAX_CACHED_AGE", &c.Location.MaxCachedAge),
		envDuration("FIX_CACHE_TTL", &c.Location.FixCacheTTL),
	)
	return errors.Join(errs...)
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port must be set"))
	}
	if !(c.Geofence.RadiusMeters > 0) {
		errs = append(errs, fmt.Errorf("geofence.radius_meters must be positive, got %v", c.Geofence.RadiusMeters))
	}
	if c.Location.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("location.timeout must be positive, got %s", c.Location.Timeout))
	}
	if c.Location.MaxCachedAge < 0 {
		errs = append(errs, fmt.Errorf("location.max_cached_age must not be negative, got %s", c.Location.MaxCachedAge))
	}
	if c.Location.FixCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("location.fix_cache_ttl must not be negative, got %s", c.Location.FixCacheTTL))
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres storage driver"))
		}
	case DriverBackend:
		if strings.TrimSpace(c.Storage.BackendURL) == "" {
			errs = append(errs, errors.New("BACKEND_URL is required for the backend storage driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of postgres, backend, memory", c.Storage.Driver))
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if strings.TrimSpace(c.Auth.CookieName) == "" {
		errs = append(errs, errors.New("auth.cookie_name must be set"))
	}

	return errors.Join(errs...)
}
