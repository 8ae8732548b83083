package models

import "time"

// Location is a connected business location.
type Location struct {
	ID               int64     `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	GoogleLocationID string    `db:"google_location_id" json:"google_location_id"`
	Name             string    `db:"name" json:"name"`
	Address          *string   `db:"address" json:"address,omitempty"`
	Phone            *string   `db:"phone" json:"phone,omitempty"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// LocationSettings is the per-location policy override. An absent row means
// the default policy applies (approval required, global tone).
type LocationSettings struct {
	LocationID       int64   `db:"location_id" json:"location_id"`
	RequiresApproval bool    `db:"requires_approval" json:"requires_approval"`
	CustomTone       *string `db:"custom_tone" json:"custom_tone,omitempty"`
}
