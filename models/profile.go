package models

import (
	"encoding/json"
	"time"
)

// DefaultProfileName is used when creating the initial profile.
const DefaultProfileName = "Primary Profile"

// Profile models one viewing identity within the account, with its own
// watch progress, saved list and maturity policy.
type Profile struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	IsKid     bool      `json:"isKid"`
	Locked    bool      `json:"locked"`
	PinHash   string    `json:"-"` // bcrypt hash of PIN, never serialized
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPin returns true if the profile has a PIN set.
func (p Profile) HasPin() bool {
	return p.PinHash != ""
}

// MarshalJSON includes the computed hasPin field without exposing the hash.
func (p Profile) MarshalJSON() ([]byte, error) {
	type ProfileAlias Profile // prevent recursion
	return json.Marshal(&struct {
		ProfileAlias
		HasPin bool `json:"hasPin"`
	}{
		ProfileAlias: ProfileAlias(p),
		HasPin:       p.HasPin(),
	})
}
