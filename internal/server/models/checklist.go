package models

import "time"

type ChecklistEntry struct {
	ID        string     `json:"id"`
	SchoolID  string     `json:"school_id"`
	Label     string     `json:"label"`
	Done      bool       `json:"done"`
	DoneBy    string     `json:"done_by,omitempty"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}
