package shifts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
	"github.com/crewdesk-app/crewdesk/internal/common"
	"github.com/crewdesk-app/crewdesk/internal/dbx"
)

// Migrate creates the shifts cache table if it does not exist.
func Migrate(ctx context.Context, db dbx.DBTX) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS shifts (
  id TEXT PRIMARY KEY,
  employee_id TEXT NOT NULL,
  school_id TEXT NOT NULL,
  starts_at TIMESTAMP NOT NULL,
  ends_at TIMESTAMP NOT NULL,
  clock_in_at TIMESTAMP,
  clock_out_at TIMESTAMP
);
`)
	if err != nil {
		return fmt.Errorf("failed to migrate shifts cache: %w", err)
	}
	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_shifts_employee_start ON shifts (employee_id, starts_at);`)
	if err != nil {
		return fmt.Errorf("failed to create shifts index: %w", err)
	}
	return nil
}

// SQLiteRepository implements Repository over the local SQLite database.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, s *models.Shift) error {
	query := `INSERT INTO shifts (id, employee_id, school_id, starts_at, ends_at, clock_in_at, clock_out_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET employee_id = excluded.employee_id,
			school_id = excluded.school_id,
			starts_at = excluded.starts_at,
			ends_at = excluded.ends_at,
			clock_in_at = excluded.clock_in_at,
			clock_out_at = excluded.clock_out_at
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.EmployeeID, s.SchoolID, s.StartsAt, s.EndsAt, s.ClockInAt, s.ClockOutAt)
	if err != nil {
		return fmt.Errorf("failed to upsert shift: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Shift, error) {
	query := `SELECT id, employee_id, school_id, starts_at, ends_at, clock_in_at, clock_out_at
		FROM shifts WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	s := &models.Shift{}
	err := row.Scan(&s.ID, &s.EmployeeID, &s.SchoolID, &s.StartsAt, &s.EndsAt, &s.ClockInAt, &s.ClockOutAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) ListByDay(ctx context.Context, employeeID string, day time.Time) ([]models.Shift, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	query := `SELECT id, employee_id, school_id, starts_at, ends_at, clock_in_at, clock_out_at
		FROM shifts
		WHERE employee_id = ? AND starts_at >= ? AND starts_at < ?
		ORDER BY starts_at`
	rows, err := r.db.QueryContext(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to select shifts: %w", err)
	}
	defer rows.Close()

	var result []models.Shift
	for rows.Next() {
		var s models.Shift
		if err := rows.Scan(&s.ID, &s.EmployeeID, &s.SchoolID, &s.StartsAt, &s.EndsAt, &s.ClockInAt, &s.ClockOutAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
