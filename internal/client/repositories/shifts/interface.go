package shifts

import (
	"context"
	"time"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
)

// Repository is the local cache of the employee's shifts, so the schedule
// screen works offline and clock punches survive a cold start.
type Repository interface {
	// CreateOrUpdate upserts one shift by id.
	CreateOrUpdate(ctx context.Context, s *models.Shift) error

	// GetByID returns one cached shift.
	GetByID(ctx context.Context, id string) (*models.Shift, error)

	// ListByDay returns the employee's shifts starting within the given
	// calendar day (UTC), ordered by start time.
	ListByDay(ctx context.Context, employeeID string, day time.Time) ([]models.Shift, error)
}
