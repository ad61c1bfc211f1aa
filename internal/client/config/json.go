package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lifelink/internal/flagx"
	"github.com/dmitrijs2005/lifelink/internal/timex"
)

// JsonConfig is the on-disk shape. Absent keys leave the current value.
type JsonConfig struct {
	ServerBaseURL           *string         `json:"server_base_url"`
	DatabasePath            *string         `json:"database_path"`
	KeyFilePath             *string         `json:"key_file_path"`
	MapOutputPath           *string         `json:"map_output_path"`
	LogLevel                *string         `json:"log_level"`
	RequestTimeout          *timex.Duration `json:"request_timeout"`
	GeolocationTimeout      *timex.Duration `json:"geolocation_timeout"`
	CredentialCheckInterval *timex.Duration `json:"credential_check_interval"`
	DeviceLocation          *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"device_location"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerBaseURL, jc.ServerBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.KeyFilePath, jc.KeyFilePath)
	setString(&cfg.MapOutputPath, jc.MapOutputPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.GeolocationTimeout != nil {
		cfg.GeolocationTimeout = jc.GeolocationTimeout.Duration
	}
	if jc.CredentialCheckInterval != nil {
		cfg.CredentialCheckInterval = jc.CredentialCheckInterval.Duration
	}
	if jc.DeviceLocation != nil {
		cfg.DeviceLatitude = jc.DeviceLocation.Latitude
		cfg.DeviceLongitude = jc.DeviceLocation.Longitude
		cfg.DeviceLocationSet = true
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
