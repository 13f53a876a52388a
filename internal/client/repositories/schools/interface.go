package schools

import (
	"context"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
)

// Repository is the local cache of schools so school screens render without
// a network round trip. Implementations are typically backed by SQLite.
type Repository interface {
	// CreateOrUpdate upserts one school by id.
	CreateOrUpdate(ctx context.Context, s *models.School) error

	// GetAll returns all cached schools ordered by name.
	GetAll(ctx context.Context) ([]models.School, error)

	// GetByID returns one cached school.
	GetByID(ctx context.Context, id string) (*models.School, error)

	// ReplaceAll atomically swaps the whole cache for the given list,
	// used after a successful refresh from the remote store.
	ReplaceAll(ctx context.Context, list []models.School) error
}
