package model

import "time"

// Suspension blocks a user from reserving and walking up for a time window.
// The Active flag is recomputed by the sweep, never toggled by hand.
type Suspension struct {
	ID        string    `json:"suspension_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Reason    string    `json:"reason"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Covers reports whether the suspension window contains t.
func (s Suspension) Covers(t time.Time) bool {
	return !t.Before(s.StartAt) && t.Before(s.EndAt)
}
