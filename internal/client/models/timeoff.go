package models

import "time"

// TimeOffStatus is the review state of a time-off request.
type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffDenied   TimeOffStatus = "denied"
	TimeOffCanceled TimeOffStatus = "canceled"
)

// TimeOffRequest is an employee's request for paid or unpaid leave.
type TimeOffRequest struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employee_id"`
	StartDate  time.Time     `json:"start_date"`
	EndDate    time.Time     `json:"end_date"`
	Hours      float64       `json:"hours"`
	Paid       bool          `json:"paid"`
	Reason     string        `json:"reason,omitempty"`
	Status     TimeOffStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// PTOBalance is the remaining paid-time-off balance for one employee.
type PTOBalance struct {
	EmployeeID   string    `json:"employee_id"`
	AccruedHours float64   `json:"accrued_hours"`
	UsedHours    float64   `json:"used_hours"`
	AsOf         time.Time `json:"as_of"`
}

// Available returns the hours still available to request.
func (b PTOBalance) Available() float64 {
	return b.AccruedHours - b.UsedHours
}
