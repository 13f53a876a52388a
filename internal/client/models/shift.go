package models

import "time"

// Shift is one scheduled work block, optionally with clock-in/out punches.
type Shift struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	SchoolID   string     `json:"school_id"`
	StartsAt   time.Time  `json:"starts_at"`
	EndsAt     time.Time  `json:"ends_at"`
	ClockInAt  *time.Time `json:"clock_in_at,omitempty"`
	ClockOutAt *time.Time `json:"clock_out_at,omitempty"`
}

// Clocked reports whether the shift has an open punch (clocked in, not out).
func (s Shift) Clocked() bool {
	return s.ClockInAt != nil && s.ClockOutAt == nil
}

// Worked returns the recorded working duration, zero if the punch is open
// or absent.
func (s Shift) Worked() time.Duration {
	if s.ClockInAt == nil || s.ClockOutAt == nil {
		return 0
	}
	return s.ClockOutAt.Sub(*s.ClockInAt)
}
