package policy

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Recognized keys of the flat config table.
const (
	KeyAllowedDomain          = "allowed_domain"
	KeyAdminEmails            = "admin_emails"
	KeyOpenHour               = "reservation_open_hour"
	KeyOpenMinute             = "reservation_open_minute"
	KeyMaxPerDay              = "reservation_max_per_day"
	KeyLateGraceMinutes       = "reservation_late_grace_minutes"
	KeyMoveGraceMinutes       = "session_move_grace_minutes"
	KeyStrikeThreshold        = "strike_threshold"
	KeySuspensionBusinessDays = "suspension_business_days"
	KeyNetNewWindowMinutes    = "walkup_net_new_window_minutes"
	KeyReturningWindowMinutes = "walkup_returning_window_minutes"
)

// Config is the policy configuration resolved once per operation from the
// store's config table. Missing keys fall back to the defaults below.
type Config struct {
	AllowedDomain          string
	AdminEmails            []string
	OpenHour               int // 6
	OpenMinute             int // 0
	MaxPerDay              int // 1
	LateGraceMinutes       int // 30
	MoveGraceMinutes       int // 10
	StrikeThreshold        int // 2
	SuspensionBusinessDays int // 2
	NetNewWindowMinutes    int // 30
	ReturningWindowMinutes int // 30
}

// Resolve builds a Config from the raw key/value table. A malformed numeric
// value is an IntegrityError: it signals a data problem, not a policy one.
func Resolve(values map[string]string) (Config, error) {
	cfg := Config{
		AllowedDomain:          strings.TrimSpace(values[KeyAllowedDomain]),
		OpenHour:               6,
		MaxPerDay:              1,
		LateGraceMinutes:       30,
		MoveGraceMinutes:       10,
		StrikeThreshold:        2,
		SuspensionBusinessDays: 2,
		NetNewWindowMinutes:    30,
		ReturningWindowMinutes: 30,
	}
	for _, raw := range strings.Split(values[KeyAdminEmails], ",") {
		if email := strings.ToLower(strings.TrimSpace(raw)); email != "" {
			cfg.AdminEmails = append(cfg.AdminEmails, email)
		}
	}
	for _, field := range []struct {
		key string
		dst *int
	}{
		{KeyOpenHour, &cfg.OpenHour},
		{KeyOpenMinute, &cfg.OpenMinute},
		{KeyMaxPerDay, &cfg.MaxPerDay},
		{KeyLateGraceMinutes, &cfg.LateGraceMinutes},
		{KeyMoveGraceMinutes, &cfg.MoveGraceMinutes},
		{KeyStrikeThreshold, &cfg.StrikeThreshold},
		{KeySuspensionBusinessDays, &cfg.SuspensionBusinessDays},
		{KeyNetNewWindowMinutes, &cfg.NetNewWindowMinutes},
		{KeyReturningWindowMinutes, &cfg.ReturningWindowMinutes},
	} {
		raw, ok := values[field.key]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 {
			return Config{}, Integrity(fmt.Sprintf("config %s: invalid value %q", field.key, raw))
		}
		*field.dst = n
	}
	return cfg, nil
}

// OpenTimeOn returns the booking open instant on the given calendar day.
func (c Config) OpenTimeOn(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.OpenHour, c.OpenMinute, 0, 0, day.Location())
}

// LateGrace is the post-start window in which a reservation can still be claimed.
func (c Config) LateGrace() time.Duration {
	return time.Duration(c.LateGraceMinutes) * time.Minute
}

// MoveGrace is the post-end window before an active session counts as overdue.
func (c Config) MoveGrace() time.Duration {
	return time.Duration(c.MoveGraceMinutes) * time.Minute
}

// NetNewWindow is the walk-up window reserved for net-new users.
func (c Config) NetNewWindow() time.Duration {
	return time.Duration(c.NetNewWindowMinutes) * time.Minute
}

// ReturningWindow is the walk-up window added for returning users.
func (c Config) ReturningWindow() time.Duration {
	return time.Duration(c.ReturningWindowMinutes) * time.Minute
}

// IsAdminEmail reports whether the email appears in the admin list.
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}
