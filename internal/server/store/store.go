// Package store persists the server's document data: schools, shifts,
// time-off requests, PTO balances and yearbook checklists. The DataStore
// interface decouples handlers from the concrete backend; the production
// implementation is PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/crewdesk-app/crewdesk/internal/server/models"
)

// DataStore is the storage surface the HTTP handlers depend on.
type DataStore interface {
	ListSchools(ctx context.Context) ([]models.School, error)
	GetSchool(ctx context.Context, id string) (*models.School, error)

	ListShifts(ctx context.Context, employeeID string, day time.Time) ([]models.Shift, error)
	ClockIn(ctx context.Context, shiftID string, at time.Time) (*models.Shift, error)
	ClockOut(ctx context.Context, shiftID string, at time.Time) (*models.Shift, error)

	ListTimeOff(ctx context.Context, employeeID string) ([]models.TimeOffRequest, error)
	CreateTimeOff(ctx context.Context, req *models.TimeOffRequest) error
	CancelTimeOff(ctx context.Context, id, employeeID string) (*models.TimeOffRequest, error)
	SetTimeOffStatus(ctx context.Context, id, status string) (*models.TimeOffRequest, error)
	PTOBalance(ctx context.Context, employeeID string) (*models.PTOBalance, error)

	ListChecklist(ctx context.Context, schoolID string) ([]models.ChecklistEntry, error)
	SetChecklistDone(ctx context.Context, entryID string, done bool, doneBy string) (*models.ChecklistEntry, error)

	Ping(ctx context.Context) error
	Close() error
}
