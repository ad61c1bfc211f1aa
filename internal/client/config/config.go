package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/lifelink/internal/geo"
)

// Config holds runtime settings for the LifeLink CLI.
type Config struct {
	ServerBaseURL string
	DatabasePath  string
	KeyFilePath   string
	MapOutputPath string
	LogLevel      string

	RequestTimeout          time.Duration
	GeolocationTimeout      time.Duration
	CredentialCheckInterval time.Duration

	// Device position served to the locator. Without it the terminal has no
	// way to read a position and geolocation reports "not supported".
	DeviceLatitude    float64
	DeviceLongitude   float64
	DeviceLocationSet bool
}

// LoadDefaults populates c with defaults suitable for a local directory.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:5000/api"
	c.DatabasePath = "lifelink.db"
	c.KeyFilePath = "lifelink.key"
	c.MapOutputPath = "lifelink-map.geojson"
	c.LogLevel = "warn"
	c.RequestTimeout = 15 * time.Second
	c.GeolocationTimeout = 10 * time.Second
	c.CredentialCheckInterval = 30 * time.Second
}

// DevicePosition returns the configured device position, if any.
func (c *Config) DevicePosition() (geo.Coordinate, bool) {
	if !c.DeviceLocationSet {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Latitude: c.DeviceLatitude, Longitude: c.DeviceLongitude}, true
}

// Validate rejects settings the client cannot start with.
func (c *Config) Validate() error {
	if c.ServerBaseURL == "" {
		return fmt.Errorf("server base url is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.RequestTimeout <= 0 || c.GeolocationTimeout <= 0 || c.CredentialCheckInterval <= 0 {
		return fmt.Errorf("timeouts and intervals must be positive")
	}
	if pos, ok := c.DevicePosition(); ok {
		if err := pos.Validate(); err != nil {
			return fmt.Errorf("device position: %w", err)
		}
	}
	return nil
}

// Load builds a Config from defaults, then the JSON file named by -c or
// -config, then the environment (a .env file included), then flags. Later
// sources win.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
