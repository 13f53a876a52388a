// Package config loads runtime configuration for the CrewDesk client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend HTTP API
//	-r string   host:port of the Redis instance for live feed events
//	-t string   access token for API requests
//	-e string   employee id of the signed-in user
//	-p int      history page size (messages per page)
//	-i int      cache sync interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8080",
//	  "redis_addr": "127.0.0.1:6379",
//	  "access_token": "...",
//	  "employee_id": "emp-1",
//	  "page_size": 50,
//	  "sync_interval": "30s"
//	}
//
// Primary API
//
//   - type Config                     — holds client connection and session settings
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
