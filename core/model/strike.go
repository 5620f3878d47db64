package model

import "time"

// StrikeType classifies a recorded policy violation.
type StrikeType string

const (
	StrikeNoShow  StrikeType = "no_show"
	StrikeLateEnd StrikeType = "late_end"
)

// Strike attributes one policy violation to a user. SourceType and SourceID
// point at the reservation or session that caused it; MonthKey ("2026-02")
// supports monthly counting.
type Strike struct {
	ID         string     `json:"strike_id"`
	UserID     string     `json:"user_id"`
	UserName   string     `json:"user_name"`
	Type       StrikeType `json:"type"`
	SourceType string     `json:"source_type"`
	SourceID   string     `json:"source_id"`
	Reason     string     `json:"reason"`
	OccurredAt time.Time  `json:"occurred_at"`
	MonthKey   string     `json:"month_key"`
}

// MonthKeyOf formats t as the strike month bucket.
func MonthKeyOf(t time.Time) string { return t.Format("2006-01") }
