package schools

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
	"github.com/crewdesk-app/crewdesk/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func school(id, name string) models.School {
	return models.School{
		ID:        id,
		Name:      name,
		Address:   "1 Main St",
		City:      "Springfield",
		State:     "IL",
		Zip:       "62701",
		UpdatedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreateOrUpdate_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	s := school("sch-1", "Lincoln Elementary")
	require.NoError(t, r.CreateOrUpdate(ctx, &s))

	got, err := r.GetByID(ctx, "sch-1")
	require.NoError(t, err)
	assert.Equal(t, "Lincoln Elementary", got.Name)

	s.Name = "Lincoln Elementary (renamed)"
	s.Notes = "gate code 4411"
	require.NoError(t, r.CreateOrUpdate(ctx, &s))

	got, err = r.GetByID(ctx, "sch-1")
	require.NoError(t, err)
	assert.Equal(t, "Lincoln Elementary (renamed)", got.Name)
	assert.Equal(t, "gate code 4411", got.Notes)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAll_OrderedByName(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, s := range []models.School{
		school("sch-2", "Washington Middle"),
		school("sch-1", "Adams High"),
	} {
		s := s
		require.NoError(t, r.CreateOrUpdate(ctx, &s))
	}

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Adams High", all[0].Name)
	assert.Equal(t, "Washington Middle", all[1].Name)
}

func TestReplaceAll_SwapsCache(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	stale := school("stale", "Old School")
	require.NoError(t, r.CreateOrUpdate(ctx, &stale))

	require.NoError(t, r.ReplaceAll(ctx, []models.School{
		school("sch-1", "Adams High"),
		school("sch-2", "Washington Middle"),
	}))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = r.GetByID(ctx, "stale")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
