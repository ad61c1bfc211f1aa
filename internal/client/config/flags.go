package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dmitrijs2005/lifelink/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-k", "-m", "-l", "-t", "-g", "-i", "-lat", "-lon"}

// parseFlags overlays cfg with command-line flags:
//
//	-a string   directory service base URL
//	-d string   local database path
//	-k string   credential key file path
//	-m string   GeoJSON map output path
//	-l string   log level
//	-t int      request timeout (seconds)
//	-g int      geolocation timeout (seconds)
//	-i int      credential check interval (seconds)
//	-lat/-lon   device position; both are required
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("lifelink", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "directory service base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.KeyFilePath, "k", cfg.KeyFilePath, "credential key file")
	fs.StringVar(&cfg.MapOutputPath, "m", cfg.MapOutputPath, "GeoJSON map output path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	timeout := fs.Int("t", seconds(cfg.RequestTimeout), "request timeout (in seconds)")
	geoTimeout := fs.Int("g", seconds(cfg.GeolocationTimeout), "geolocation timeout (in seconds)")
	interval := fs.Int("i", seconds(cfg.CredentialCheckInterval), "credential check interval (in seconds)")
	lat := fs.Float64("lat", math.NaN(), "device latitude")
	lon := fs.Float64("lon", math.NaN(), "device longitude")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.GeolocationTimeout = time.Duration(*geoTimeout) * time.Second
	cfg.CredentialCheckInterval = time.Duration(*interval) * time.Second

	switch latSet, lonSet := !math.IsNaN(*lat), !math.IsNaN(*lon); {
	case latSet && lonSet:
		cfg.DeviceLatitude, cfg.DeviceLongitude, cfg.DeviceLocationSet = *lat, *lon, true
	case latSet != lonSet:
		return fmt.Errorf("parse flags: -lat and -lon must be given together")
	}
	return nil
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
