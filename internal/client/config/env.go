package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	envServerURL      = "LIFELINK_SERVER_URL"
	envDatabase       = "LIFELINK_DB"
	envKeyFile        = "LIFELINK_KEY_FILE"
	envMapPath        = "LIFELINK_MAP_PATH"
	envLogLevel       = "LIFELINK_LOG_LEVEL"
	envRequestTimeout = "LIFELINK_REQUEST_TIMEOUT"
	envGeoTimeout     = "LIFELINK_GEO_TIMEOUT"
	envCheckInterval  = "LIFELINK_CHECK_INTERVAL"
	envDeviceLat      = "LIFELINK_DEVICE_LAT"
	envDeviceLon      = "LIFELINK_DEVICE_LON"
)

// dotenvPath is read before the environment. Variables already set in the
// process are not overwritten by it.
var dotenvPath = ".env"

func parseEnv(cfg *Config) error {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	envString(&cfg.ServerBaseURL, envServerURL)
	envString(&cfg.DatabasePath, envDatabase)
	envString(&cfg.KeyFilePath, envKeyFile)
	envString(&cfg.MapOutputPath, envMapPath)
	envString(&cfg.LogLevel, envLogLevel)

	for name, dst := range map[string]*time.Duration{
		envRequestTimeout: &cfg.RequestTimeout,
		envGeoTimeout:     &cfg.GeolocationTimeout,
		envCheckInterval:  &cfg.CredentialCheckInterval,
	} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = d
		}
	}

	lat, latOK := os.LookupEnv(envDeviceLat)
	lon, lonOK := os.LookupEnv(envDeviceLon)
	if latOK && lonOK && lat != "" && lon != "" {
		la, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", envDeviceLat, err)
		}
		lo, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", envDeviceLon, err)
		}
		cfg.DeviceLatitude, cfg.DeviceLongitude, cfg.DeviceLocationSet = la, lo, true
	}
	return nil
}

func envString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}
