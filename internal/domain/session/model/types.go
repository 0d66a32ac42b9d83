package model

import "time"

// Session holds the one active credential for a profile. The token is an
// opaque bearer string; its absence means "unauthenticated".
type Session struct {
	Profile   string         `json:"profile"`
	Token     string         `json:"token"`
	Email     string         `json:"email,omitempty"`
	UserID    int64          `json:"user_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Expired reports whether the session carries an expiry in the past. Used
// for local cleanup only, never for gating mutating actions.
func (s Session) Expired() bool {
	return s.ExpiresAt != nil && time.Now().After(*s.ExpiresAt)
}
