package model

import (
	"time"

	"github.com/google/uuid"
)

type Activity string

const (
	ActivityCoffee   Activity = "coffee"
	ActivityLunch    Activity = "lunch"
	ActivityDrinks   Activity = "drinks"
	ActivityChill    Activity = "chill"
	ActivityClubbing Activity = "clubbing"
	ActivityCinema   Activity = "cinema"
)

// Activities is the recognized activity set. SetAvailability rejects
// anything outside it.
var Activities = map[Activity]bool{
	ActivityCoffee:   true,
	ActivityLunch:    true,
	ActivityDrinks:   true,
	ActivityChill:    true,
	ActivityClubbing: true,
	ActivityCinema:   true,
}

func (a Activity) Valid() bool {
	return Activities[a]
}

// Presence is a user's ephemeral availability record. Invariants:
// AvailabilityID is set iff IsAvailable, and LocationShared implies
// IsAvailable. Only the owning user (or expiry) mutates it.
type Presence struct {
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	IsAvailable    bool       `json:"is_available" db:"is_available"`
	Activity       Activity   `json:"activity,omitempty" db:"activity"`
	AvailabilityID string     `json:"availability_id,omitempty" db:"availability_id"`
	LocationShared bool       `json:"location_shared" db:"location_shared"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Expired reports whether the record's expiry has elapsed at now. Records
// without an expiry never expire.
func (p *Presence) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}
