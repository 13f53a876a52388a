package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/crewdesk-app/crewdesk/internal/client/config"
	"github.com/crewdesk-app/crewdesk/internal/client/remote"
	"github.com/crewdesk-app/crewdesk/internal/client/repositories/schools"
	"github.com/crewdesk-app/crewdesk/internal/client/repositories/shifts"
	"github.com/crewdesk-app/crewdesk/internal/client/services"
	"github.com/crewdesk-app/crewdesk/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	redis    *redis.Client
	school   services.SchoolService
	timeOff  services.TimeOffService
	shift    services.ShiftService
	yearbook services.YearbookService
}

// cacheFile is the on-disk SQLite cache next to the binary.
const cacheFile = "crewdesk.db"

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewJSON()

	db, err := sql.Open("sqlite", cacheFile)
	if err != nil {
		return nil, fmt.Errorf("error opening cache: %w", err)
	}
	if err := schools.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("error migrating cache: %w", err)
	}
	if err := shifts.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("error migrating cache: %w", err)
	}

	apiClient := remote.New(c.ServerBaseURL, c.AccessToken)
	rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})

	schoolRepo := schools.NewSQLiteRepository(db)
	shiftRepo := shifts.NewSQLiteRepository(db)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		redis:    rdb,
		school:   services.NewSchoolService(apiClient, schoolRepo, logger),
		timeOff:  services.NewTimeOffService(apiClient, c.EmployeeID),
		shift:    services.NewShiftService(apiClient, shiftRepo, c.EmployeeID, logger),
		yearbook: services.NewYearbookService(apiClient),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	defer a.redis.Close()
	a.Root(ctx, os.Stdin, os.Stdout)
}
