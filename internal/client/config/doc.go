// Package config loads runtime configuration for the LifeLink CLI.
//
// Sources, lowest precedence first:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A JSON file selected with -c or -config.
//  3. LIFELINK_* environment variables, optionally from a .env file.
//  4. Command-line flags.
//
// Durations in JSON accept strings such as "15s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "https://lifelink.example.org/api",
//	  "request_timeout": "15s",
//	  "device_location": {"latitude": 20.30, "longitude": 85.82}
//	}
package config
