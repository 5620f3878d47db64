// Package clock provides the time capability injected into the engines so
// policy decisions are testable against fixed instants.
package clock

import "time"

// Clock resolves the current wall-clock time. Each operation reads it once
// and reuses the instant for every decision within that operation.
type Clock interface {
	Now() time.Time
}

// System reads the host clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Test helper.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// At returns a Fixed clock set to the given local time.
func At(year int, month time.Month, day, hour, minute int) Fixed {
	return Fixed{T: time.Date(year, month, day, hour, minute, 0, 0, time.Local)}
}
