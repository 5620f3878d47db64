package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Charger describes one charging point of the fleet.
type Charger struct {
	ID              string   `json:"charger_id"`
	Name            string   `json:"name"`
	MaxMinutes      int      `json:"max_minutes"`
	SlotStarts      []string `json:"slot_starts"`
	ActiveSessionID string   `json:"active_session_id"`
}

// SlotWindow is a concrete reservation window on a calendar day.
type SlotWindow struct {
	Start time.Time `json:"startTime"`
	End   time.Time `json:"endTime"`
}

// Contains reports whether t falls inside the window, start inclusive.
func (w SlotWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Midpoint returns the temporal middle of the window. Cancellations at or
// after this instant count against the holder.
func (w SlotWindow) Midpoint() time.Time {
	return w.Start.Add(w.End.Sub(w.Start) / 2)
}

// SlotWindowsOn expands the configured slot start times into concrete windows
// for the given calendar day, in the day's location. Windows last MaxMinutes.
func (c Charger) SlotWindowsOn(day time.Time) ([]SlotWindow, error) {
	windows := make([]SlotWindow, 0, len(c.SlotStarts))
	for _, raw := range c.SlotStarts {
		hour, minute, err := parseClock(raw)
		if err != nil {
			return nil, fmt.Errorf("charger %s: %w", c.ID, err)
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
		windows = append(windows, SlotWindow{Start: start, End: start.Add(time.Duration(c.MaxMinutes) * time.Minute)})
	}
	return windows, nil
}

// SlotWindowAt returns the window containing t, if any.
func (c Charger) SlotWindowAt(t time.Time) (SlotWindow, bool, error) {
	windows, err := c.SlotWindowsOn(t)
	if err != nil {
		return SlotWindow{}, false, err
	}
	for _, w := range windows {
		if w.Contains(t) {
			return w, true, nil
		}
	}
	return SlotWindow{}, false, nil
}

// SlotWindowStartingAt returns the window whose start equals t exactly.
func (c Charger) SlotWindowStartingAt(t time.Time) (SlotWindow, bool, error) {
	windows, err := c.SlotWindowsOn(t)
	if err != nil {
		return SlotWindow{}, false, err
	}
	for _, w := range windows {
		if w.Start.Equal(t) {
			return w, true, nil
		}
	}
	return SlotWindow{}, false, nil
}

func parseClock(raw string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid slot start %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid slot start %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid slot start %q", raw)
	}
	return hour, minute, nil
}
