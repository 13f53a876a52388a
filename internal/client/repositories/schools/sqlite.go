package schools

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
	"github.com/crewdesk-app/crewdesk/internal/common"
	"github.com/crewdesk-app/crewdesk/internal/dbx"
)

// Migrate creates the schools cache table if it does not exist.
func Migrate(ctx context.Context, db dbx.DBTX) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schools (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  zip TEXT NOT NULL DEFAULT '',
  lat REAL NOT NULL DEFAULT 0,
  lng REAL NOT NULL DEFAULT 0,
  notes TEXT NOT NULL DEFAULT '',
  updated_at TIMESTAMP NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("failed to migrate schools cache: %w", err)
	}
	return nil
}

// SQLiteRepository implements Repository over a dbx.DBTX (either *sql.DB or
// *sql.Tx).
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, s *models.School) error {
	return upsert(ctx, r.db, s)
}

func upsert(ctx context.Context, db dbx.DBTX, s *models.School) error {
	query := `INSERT INTO schools (id, name, address, city, state, zip, lat, lng, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			address = excluded.address,
			city = excluded.city,
			state = excluded.state,
			zip = excluded.zip,
			lat = excluded.lat,
			lng = excluded.lng,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query,
		s.ID, s.Name, s.Address, s.City, s.State, s.Zip, s.Latitude, s.Longitude, s.Notes, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert school: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.School, error) {
	query := `SELECT id, name, address, city, state, zip, lat, lng, notes, updated_at
		FROM schools ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select schools: %w", err)
	}
	defer rows.Close()

	var result []models.School
	for rows.Next() {
		var s models.School
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.City, &s.State, &s.Zip,
			&s.Latitude, &s.Longitude, &s.Notes, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.School, error) {
	query := `SELECT id, name, address, city, state, zip, lat, lng, notes, updated_at
		FROM schools WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	s := &models.School{}
	err := row.Scan(&s.ID, &s.Name, &s.Address, &s.City, &s.State, &s.Zip,
		&s.Latitude, &s.Longitude, &s.Notes, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, list []models.School) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM schools`); err != nil {
			return fmt.Errorf("failed to clear schools cache: %w", err)
		}
		for i := range list {
			if err := upsert(ctx, tx, &list[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
