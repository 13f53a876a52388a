package config

import (
	"flag"
	"os"
	"time"

	"github.com/crewdesk-app/crewdesk/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend HTTP API (default from Config)
//	-r string   host:port of the Redis instance (default from Config)
//	-t string   access token for API requests (default from Config)
//	-e string   employee id of the signed-in user (default from Config)
//	-p int      history page size (default from Config)
//	-i int      cache sync interval in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-t", "-e", "-p", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the backend HTTP API")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "host:port of the Redis instance")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token for API requests")
	fs.StringVar(&cfg.EmployeeID, "e", cfg.EmployeeID, "employee id of the signed-in user")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "history page size")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "cache sync interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
}
