package config

import "time"

// Config holds runtime settings for the CrewDesk client.
//
// Fields:
//   - ServerBaseURL: base URL of the backend HTTP API.
//   - RedisAddr: host:port of the Redis instance carrying live feed events.
//   - AccessToken: bearer token sent with every API request.
//   - EmployeeID: identity of the signed-in employee.
//   - PageSize: number of messages fetched per history page.
//   - SyncInterval: how often cached schedules and school lists are refreshed.
//
// Units: SyncInterval is a time.Duration (e.g., 30*time.Second).
type Config struct {
	ServerBaseURL string
	RedisAddr     string
	AccessToken   string
	EmployeeID    string
	PageSize      int
	SyncInterval  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.RedisAddr = "127.0.0.1:6379"
	c.PageSize = 50
	c.SyncInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
