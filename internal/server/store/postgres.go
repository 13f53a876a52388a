package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/crewdesk-app/crewdesk/internal/common"
	"github.com/crewdesk-app/crewdesk/internal/dbx"
	"github.com/crewdesk-app/crewdesk/internal/server/migrations"
	"github.com/crewdesk-app/crewdesk/internal/server/models"
)

// PostgresStore implements DataStore over PostgreSQL (pgx stdlib driver).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and runs pending migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return s, nil
}

// RunMigrations sets up goose with the embedded migrations and applies them.
func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return err
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ListSchools(ctx context.Context) ([]models.School, error) {
	query := `SELECT id, name, address, city, state, zip, lat, lng, notes, updated_at
		FROM schools ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select schools: %w", err)
	}
	defer rows.Close()

	var result []models.School
	for rows.Next() {
		var item models.School
		if err := rows.Scan(&item.ID, &item.Name, &item.Address, &item.City, &item.State,
			&item.Zip, &item.Latitude, &item.Longitude, &item.Notes, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) GetSchool(ctx context.Context, id string) (*models.School, error) {
	query := `SELECT id, name, address, city, state, zip, lat, lng, notes, updated_at
		FROM schools WHERE id=$1`
	var item models.School
	err := s.db.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Name, &item.Address,
		&item.City, &item.State, &item.Zip, &item.Latitude, &item.Longitude, &item.Notes, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) ListShifts(ctx context.Context, employeeID string, day time.Time) ([]models.Shift, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	query := `SELECT id, employee_id, school_id, starts_at, ends_at, clock_in_at, clock_out_at
		FROM shifts WHERE employee_id=$1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at`
	rows, err := s.db.QueryContext(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to select shifts: %w", err)
	}
	defer rows.Close()

	var result []models.Shift
	for rows.Next() {
		var item models.Shift
		if err := rows.Scan(&item.ID, &item.EmployeeID, &item.SchoolID,
			&item.StartsAt, &item.EndsAt, &item.ClockInAt, &item.ClockOutAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ClockIn records an opening punch. A shift can be punched in only once.
func (s *PostgresStore) ClockIn(ctx context.Context, shiftID string, at time.Time) (*models.Shift, error) {
	query := `UPDATE shifts SET clock_in_at=$2 WHERE id=$1 AND clock_in_at IS NULL`
	if err := s.punch(ctx, shiftID, query, at); err != nil {
		return nil, err
	}
	return s.getShift(ctx, s.db, shiftID)
}

// ClockOut closes an open punch. Requires a prior clock-in and no clock-out.
func (s *PostgresStore) ClockOut(ctx context.Context, shiftID string, at time.Time) (*models.Shift, error) {
	query := `UPDATE shifts SET clock_out_at=$2
		WHERE id=$1 AND clock_in_at IS NOT NULL AND clock_out_at IS NULL`
	if err := s.punch(ctx, shiftID, query, at); err != nil {
		return nil, err
	}
	return s.getShift(ctx, s.db, shiftID)
}

func (s *PostgresStore) punch(ctx context.Context, shiftID, query string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, query, shiftID, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 1 {
		return nil
	}
	// Zero rows: either the shift does not exist or the punch state
	// rejects this transition.
	if _, err := s.getShift(ctx, s.db, shiftID); err != nil {
		return err
	}
	return common.ErrAlreadyExists
}

func (s *PostgresStore) getShift(ctx context.Context, db dbx.DBTX, id string) (*models.Shift, error) {
	query := `SELECT id, employee_id, school_id, starts_at, ends_at, clock_in_at, clock_out_at
		FROM shifts WHERE id=$1`
	var item models.Shift
	err := db.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.EmployeeID, &item.SchoolID,
		&item.StartsAt, &item.EndsAt, &item.ClockInAt, &item.ClockOutAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) ListTimeOff(ctx context.Context, employeeID string) ([]models.TimeOffRequest, error) {
	query := `SELECT id, employee_id, start_date, end_date, hours, paid, reason, status, created_at
		FROM timeoff_requests WHERE employee_id=$1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select time-off requests: %w", err)
	}
	defer rows.Close()

	var result []models.TimeOffRequest
	for rows.Next() {
		var item models.TimeOffRequest
		if err := rows.Scan(&item.ID, &item.EmployeeID, &item.StartDate, &item.EndDate,
			&item.Hours, &item.Paid, &item.Reason, &item.Status, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateTimeOff inserts a new request. The store assigns id, pending status
// and creation time; req is updated in place.
func (s *PostgresStore) CreateTimeOff(ctx context.Context, req *models.TimeOffRequest) error {
	req.ID = uuid.NewString()
	req.Status = models.TimeOffPending
	req.CreatedAt = time.Now().UTC()

	query := `INSERT INTO timeoff_requests
		(id, employee_id, start_date, end_date, hours, paid, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := s.db.ExecContext(ctx, query, req.ID, req.EmployeeID, req.StartDate,
		req.EndDate, req.Hours, req.Paid, req.Reason, req.Status, req.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// CancelTimeOff cancels a pending request owned by employeeID. Returns
// ErrNotFound for unknown or foreign requests and ErrAlreadyExists when the
// request left the pending state.
func (s *PostgresStore) CancelTimeOff(ctx context.Context, id, employeeID string) (*models.TimeOffRequest, error) {
	query := `UPDATE timeoff_requests SET status=$3
		WHERE id=$1 AND employee_id=$2 AND status=$4`
	res, err := s.db.ExecContext(ctx, query, id, employeeID, models.TimeOffCanceled, models.TimeOffPending)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		cur, err := s.getTimeOff(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if cur.EmployeeID != employeeID {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrAlreadyExists
	}
	return s.getTimeOff(ctx, s.db, id)
}

// SetTimeOffStatus moves a pending request to approved or denied. Approving
// a paid request deducts its hours from the employee's PTO balance in the
// same transaction; insufficient balance fails with ErrValidation.
func (s *PostgresStore) SetTimeOffStatus(ctx context.Context, id, status string) (*models.TimeOffRequest, error) {
	if status != models.TimeOffApproved && status != models.TimeOffDenied {
		return nil, fmt.Errorf("status %q not allowed: %w", status, common.ErrValidation)
	}

	var out *models.TimeOffRequest
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		req, err := s.getTimeOff(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.Status != models.TimeOffPending {
			return common.ErrAlreadyExists
		}

		if status == models.TimeOffApproved && req.Paid {
			balance, err := s.ptoBalance(ctx, tx, req.EmployeeID)
			if err != nil {
				return err
			}
			if req.Hours > balance.Available() {
				return fmt.Errorf("requested %.1fh exceeds available %.1fh: %w",
					req.Hours, balance.Available(), common.ErrValidation)
			}
			deduct := `UPDATE pto_balances SET used_hours=used_hours+$2, as_of=now()
				WHERE employee_id=$1`
			if _, err := tx.ExecContext(ctx, deduct, req.EmployeeID, req.Hours); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}

		update := `UPDATE timeoff_requests SET status=$2 WHERE id=$1`
		if _, err := tx.ExecContext(ctx, update, id, status); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		req.Status = status
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) getTimeOff(ctx context.Context, db dbx.DBTX, id string) (*models.TimeOffRequest, error) {
	query := `SELECT id, employee_id, start_date, end_date, hours, paid, reason, status, created_at
		FROM timeoff_requests WHERE id=$1`
	var item models.TimeOffRequest
	err := db.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.EmployeeID, &item.StartDate,
		&item.EndDate, &item.Hours, &item.Paid, &item.Reason, &item.Status, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}

// PTOBalance returns the employee's balance. Employees without a row get a
// zero balance rather than an error.
func (s *PostgresStore) PTOBalance(ctx context.Context, employeeID string) (*models.PTOBalance, error) {
	return s.ptoBalance(ctx, s.db, employeeID)
}

func (s *PostgresStore) ptoBalance(ctx context.Context, db dbx.DBTX, employeeID string) (*models.PTOBalance, error) {
	query := `SELECT employee_id, accrued_hours, used_hours, as_of
		FROM pto_balances WHERE employee_id=$1`
	var item models.PTOBalance
	err := db.QueryRowContext(ctx, query, employeeID).Scan(&item.EmployeeID,
		&item.AccruedHours, &item.UsedHours, &item.AsOf)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.PTOBalance{EmployeeID: employeeID, AsOf: time.Now().UTC()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) ListChecklist(ctx context.Context, schoolID string) ([]models.ChecklistEntry, error) {
	query := `SELECT id, school_id, label, done, done_by, done_at, updated_at
		FROM checklist_entries WHERE school_id=$1 ORDER BY label`
	rows, err := s.db.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to select checklist entries: %w", err)
	}
	defer rows.Close()

	var result []models.ChecklistEntry
	for rows.Next() {
		var item models.ChecklistEntry
		if err := rows.Scan(&item.ID, &item.SchoolID, &item.Label, &item.Done,
			&item.DoneBy, &item.DoneAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetChecklistDone flips an entry's done state, recording who did it and
// when. Clearing the flag also clears the attribution.
func (s *PostgresStore) SetChecklistDone(ctx context.Context, entryID string, done bool, doneBy string) (*models.ChecklistEntry, error) {
	now := time.Now().UTC()

	var query string
	var args []any
	if done {
		query = `UPDATE checklist_entries SET done=TRUE, done_by=$2, done_at=$3, updated_at=$3 WHERE id=$1`
		args = []any{entryID, doneBy, now}
	} else {
		query = `UPDATE checklist_entries SET done=FALSE, done_by='', done_at=NULL, updated_at=$2 WHERE id=$1`
		args = []any{entryID, now}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrNotFound
	}

	query = `SELECT id, school_id, label, done, done_by, done_at, updated_at
		FROM checklist_entries WHERE id=$1`
	var item models.ChecklistEntry
	if err := s.db.QueryRowContext(ctx, query, entryID).Scan(&item.ID, &item.SchoolID,
		&item.Label, &item.Done, &item.DoneBy, &item.DoneAt, &item.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}

var _ DataStore = (*PostgresStore)(nil)
