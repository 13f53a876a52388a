package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/crewdesk-app/crewdesk/internal/flagx"
	"github.com/crewdesk-app/crewdesk/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "30s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerBaseURL string         `json:"server_base_url"`
	RedisAddr     string         `json:"redis_addr"`
	AccessToken   string         `json:"access_token"`
	EmployeeID    string         `json:"employee_id"`
	PageSize      int            `json:"page_size"`
	SyncInterval  timex.Duration `json:"sync_interval"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies known fields into the provided Config.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerBaseURL = jc.ServerBaseURL
	cfg.RedisAddr = jc.RedisAddr
	cfg.AccessToken = jc.AccessToken
	cfg.EmployeeID = jc.EmployeeID
	cfg.PageSize = jc.PageSize
	cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
}
