package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected func(*Config)
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://10.0.0.5:5000/api", "-d", "/tmp/ll.db", "-k", "/tmp/ll.key",
				"-m", "/tmp/map.geojson", "-l", "debug", "-t", "30", "-g", "5", "-i", "60",
				"-lat", "20.3", "-lon", "85.82"},
			expected: func(c *Config) {
				c.ServerBaseURL = "http://10.0.0.5:5000/api"
				c.DatabasePath = "/tmp/ll.db"
				c.KeyFilePath = "/tmp/ll.key"
				c.MapOutputPath = "/tmp/map.geojson"
				c.LogLevel = "debug"
				c.RequestTimeout = 30 * time.Second
				c.GeolocationTimeout = 5 * time.Second
				c.CredentialCheckInterval = time.Minute
				c.DeviceLatitude, c.DeviceLongitude, c.DeviceLocationSet = 20.3, 85.82, true
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-c", "conf.json", "-x", "1"},
			expected: func(*Config) {},
		},
		{name: "bad interval", args: []string{"-i", "abc"}, wantErr: true},
		{name: "latitude alone", args: []string{"-lat", "20.3"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.expected(want)
			if diff := cmp.Diff(want, cfg); diff != "" {
				t.Fatalf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
