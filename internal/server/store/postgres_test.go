package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk-app/crewdesk/internal/common"
	"github.com/crewdesk-app/crewdesk/internal/server/models"
)

func newStoreWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return &PostgresStore{db: db}, mock, db
}

func TestGetSchool_Success(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "address", "city", "state", "zip",
		"lat", "lng", "notes", "updated_at"}).
		AddRow("sch-1", "Lincoln Elementary", "12 Oak St", "Dayton", "OH", "45402",
			39.75, -84.19, "", now)
	mock.ExpectQuery(`(?s)SELECT .* FROM schools WHERE id=\$1`).
		WithArgs("sch-1").
		WillReturnRows(rows)

	got, err := s.GetSchool(context.Background(), "sch-1")
	require.NoError(t, err)
	assert.Equal(t, "Lincoln Elementary", got.Name)
	assert.Equal(t, "OH", got.State)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSchool_NotFound(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .* FROM schools WHERE id=\$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetSchool(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestClockIn_Success(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec(`(?s)UPDATE shifts SET clock_in_at=\$2 WHERE id=\$1 AND clock_in_at IS NULL`).
		WithArgs("shf-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	starts := at.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"id", "employee_id", "school_id", "starts_at",
		"ends_at", "clock_in_at", "clock_out_at"}).
		AddRow("shf-1", "emp-1", "sch-1", starts, starts.Add(8*time.Hour), at, nil)
	mock.ExpectQuery(`(?s)SELECT .* FROM shifts WHERE id=\$1`).
		WithArgs("shf-1").
		WillReturnRows(rows)

	got, err := s.ClockIn(context.Background(), "shf-1", at)
	require.NoError(t, err)
	require.NotNil(t, got.ClockInAt)
	assert.True(t, got.Clocked())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClockIn_MissingShift(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec(`(?s)UPDATE shifts SET clock_in_at=\$2`).
		WithArgs("nope", at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`(?s)SELECT .* FROM shifts WHERE id=\$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := s.ClockIn(context.Background(), "nope", at)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestClockIn_AlreadyPunched(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec(`(?s)UPDATE shifts SET clock_in_at=\$2`).
		WithArgs("shf-1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	starts := at.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"id", "employee_id", "school_id", "starts_at",
		"ends_at", "clock_in_at", "clock_out_at"}).
		AddRow("shf-1", "emp-1", "sch-1", starts, starts.Add(8*time.Hour), starts, nil)
	mock.ExpectQuery(`(?s)SELECT .* FROM shifts WHERE id=\$1`).
		WithArgs("shf-1").
		WillReturnRows(rows)

	_, err := s.ClockIn(context.Background(), "shf-1", at)
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func timeOffRows(id, employeeID, status string, hours float64, paid bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "employee_id", "start_date", "end_date",
		"hours", "paid", "reason", "status", "created_at"}).
		AddRow(id, employeeID, now, now.Add(24*time.Hour), hours, paid, "", status, now)
}

func TestCancelTimeOff_ForeignRequest(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE timeoff_requests SET status=\$3`).
		WithArgs("req-1", "emp-2", models.TimeOffCanceled, models.TimeOffPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`(?s)SELECT .* FROM timeoff_requests WHERE id=\$1`).
		WithArgs("req-1").
		WillReturnRows(timeOffRows("req-1", "emp-1", models.TimeOffPending, 8, true))

	_, err := s.CancelTimeOff(context.Background(), "req-1", "emp-2")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCancelTimeOff_NotPending(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE timeoff_requests SET status=\$3`).
		WithArgs("req-1", "emp-1", models.TimeOffCanceled, models.TimeOffPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`(?s)SELECT .* FROM timeoff_requests WHERE id=\$1`).
		WithArgs("req-1").
		WillReturnRows(timeOffRows("req-1", "emp-1", models.TimeOffApproved, 8, true))

	_, err := s.CancelTimeOff(context.Background(), "req-1", "emp-1")
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestSetTimeOffStatus_BadStatus(t *testing.T) {
	s, _, db := newStoreWithMock(t)
	defer db.Close()

	_, err := s.SetTimeOffStatus(context.Background(), "req-1", "maybe")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSetTimeOffStatus_ApprovePaidDeductsBalance(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .* FROM timeoff_requests WHERE id=\$1`).
		WithArgs("req-1").
		WillReturnRows(timeOffRows("req-1", "emp-1", models.TimeOffPending, 8, true))
	mock.ExpectQuery(`(?s)SELECT .* FROM pto_balances WHERE employee_id=\$1`).
		WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "accrued_hours",
			"used_hours", "as_of"}).AddRow("emp-1", 80.0, 40.0, now))
	mock.ExpectExec(`(?s)UPDATE pto_balances SET used_hours=used_hours\+\$2`).
		WithArgs("emp-1", 8.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE timeoff_requests SET status=\$2 WHERE id=\$1`).
		WithArgs("req-1", models.TimeOffApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := s.SetTimeOffStatus(context.Background(), "req-1", models.TimeOffApproved)
	require.NoError(t, err)
	assert.Equal(t, models.TimeOffApproved, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetTimeOffStatus_InsufficientBalance(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .* FROM timeoff_requests WHERE id=\$1`).
		WithArgs("req-1").
		WillReturnRows(timeOffRows("req-1", "emp-1", models.TimeOffPending, 16, true))
	mock.ExpectQuery(`(?s)SELECT .* FROM pto_balances WHERE employee_id=\$1`).
		WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "accrued_hours",
			"used_hours", "as_of"}).AddRow("emp-1", 80.0, 72.0, now))
	mock.ExpectRollback()

	_, err := s.SetTimeOffStatus(context.Background(), "req-1", models.TimeOffApproved)
	assert.ErrorIs(t, err, common.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPTOBalance_MissingRowIsZero(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .* FROM pto_balances WHERE employee_id=\$1`).
		WithArgs("emp-9").
		WillReturnError(sql.ErrNoRows)

	got, err := s.PTOBalance(context.Background(), "emp-9")
	require.NoError(t, err)
	assert.Equal(t, "emp-9", got.EmployeeID)
	assert.Zero(t, got.Available())
}

func TestCreateTimeOff_AssignsFields(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT INTO timeoff_requests`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := models.TimeOffRequest{EmployeeID: "emp-1", Hours: 8, Paid: true}
	err := s.CreateTimeOff(context.Background(), &req)
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, models.TimeOffPending, req.Status)
	assert.False(t, req.CreatedAt.IsZero())
}

func TestSetChecklistDone_NotFound(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE checklist_entries SET done=TRUE`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.SetChecklistDone(context.Background(), "missing", true, "emp-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListShifts_DBError(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .* FROM shifts`).
		WillReturnError(errors.New("db down"))

	_, err := s.ListShifts(context.Background(), "emp-1", time.Now())
	assert.ErrorContains(t, err, "db down")
}
