package model

import "time"

// SessionStatus is the authoritative lifecycle state of a charging session.
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionComplete SessionStatus = "complete"
)

// Session records one charging session on a charger. The legacy boolean
// flags (active/overdue/complete) are projection-only; Status is the single
// source of truth here.
type Session struct {
	ID        string        `json:"session_id"`
	ChargerID string        `json:"charger_id"`
	UserID    string        `json:"user_id"`
	UserName  string        `json:"user_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Status    SessionStatus `json:"status"`

	Reminder10Sent bool `json:"reminder_10_sent"`
	Reminder5Sent  bool `json:"reminder_5_sent"`
	Reminder0Sent  bool `json:"reminder_0_sent"`

	OverdueLastSentAt time.Time `json:"overdue_last_sent_at,omitempty"`
	GraceNotifiedAt   time.Time `json:"grace_notified_at,omitempty"`
	LateStrikeAt      time.Time `json:"late_strike_at,omitempty"`
	EndedAt           time.Time `json:"ended_at,omitempty"`
}

// IsActive reports whether the session is still running.
func (s Session) IsActive() bool { return s.Status == SessionActive }

// OverdueAt reports whether the session counts as overdue at t, given the
// configured move-grace in minutes. Overdue is a view, never stored.
func (s Session) OverdueAt(t time.Time, graceMinutes int) bool {
	if !s.IsActive() {
		return false
	}
	return !t.Before(s.EndTime.Add(time.Duration(graceMinutes) * time.Minute))
}

// Overlaps reports whether the session's time window intersects [start, end).
func (s Session) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && start.Before(s.EndTime)
}
