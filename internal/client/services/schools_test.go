package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
	"github.com/crewdesk-app/crewdesk/internal/client/repositories/schools"
	"github.com/crewdesk-app/crewdesk/internal/common"

	_ "modernc.org/sqlite"
)

type fakeSchoolAPI struct {
	schools   []models.School
	listErr   error
	listCalls int
}

func (f *fakeSchoolAPI) ListSchools(ctx context.Context) ([]models.School, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.schools, nil
}

func (f *fakeSchoolAPI) GetSchool(ctx context.Context, id string) (models.School, error) {
	for _, s := range f.schools {
		if s.ID == id {
			return s, nil
		}
	}
	return models.School{}, common.ErrNotFound
}

func newSchoolRepo(t *testing.T) *schools.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, schools.Migrate(context.Background(), db))
	return schools.NewSQLiteRepository(db)
}

func testSchool(id, name string) models.School {
	return models.School{ID: id, Name: name, UpdatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
}

func TestSchoolService_ListRefreshesEmptyCache(t *testing.T) {
	api := &fakeSchoolAPI{schools: []models.School{testSchool("sch-1", "Adams High")}}
	svc := NewSchoolService(api, newSchoolRepo(t), nil)

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, api.listCalls)

	// Second call is served from the cache.
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, api.listCalls)
}

func TestSchoolService_GetFallsBackToRemoteAndCaches(t *testing.T) {
	api := &fakeSchoolAPI{schools: []models.School{testSchool("sch-1", "Adams High")}}
	repo := newSchoolRepo(t)
	svc := NewSchoolService(api, repo, nil)
	ctx := context.Background()

	got, err := svc.Get(ctx, "sch-1")
	require.NoError(t, err)
	assert.Equal(t, "Adams High", got.Name)

	cached, err := repo.GetByID(ctx, "sch-1")
	require.NoError(t, err)
	assert.Equal(t, "Adams High", cached.Name)
}

func TestSchoolService_GetUnknown(t *testing.T) {
	svc := NewSchoolService(&fakeSchoolAPI{}, newSchoolRepo(t), nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSchoolService_RefreshPropagatesAPIError(t *testing.T) {
	api := &fakeSchoolAPI{listErr: errors.New("offline")}
	svc := NewSchoolService(api, newSchoolRepo(t), nil)

	err := svc.Refresh(context.Background())
	require.Error(t, err)
}
