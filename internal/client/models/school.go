package models

import "time"

// School is a client site an employee can be scheduled at.
type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Latitude  float64   `json:"lat,omitempty"`
	Longitude float64   `json:"lng,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
