package models

import "time"

// Time-off request review states. A request is created pending; managers
// move it to approved or denied; the owner may cancel it while pending.
const (
	TimeOffPending  = "pending"
	TimeOffApproved = "approved"
	TimeOffDenied   = "denied"
	TimeOffCanceled = "canceled"
)

type TimeOffRequest struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Hours      float64   `json:"hours"`
	Paid       bool      `json:"paid"`
	Reason     string    `json:"reason,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type PTOBalance struct {
	EmployeeID   string    `json:"employee_id"`
	AccruedHours float64   `json:"accrued_hours"`
	UsedHours    float64   `json:"used_hours"`
	AsOf         time.Time `json:"as_of"`
}

// Available returns the hours still open to approve against.
func (b PTOBalance) Available() float64 {
	return b.AccruedHours - b.UsedHours
}
