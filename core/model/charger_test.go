package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(hour, minute int) time.Time {
	return time.Date(2026, time.February, 9, hour, minute, 0, 0, time.Local)
}

func TestSlotWindowsOn(t *testing.T) {
	c := Charger{ID: "1", MaxMinutes: 60, SlotStarts: []string{"06:00", "08:00", "10:00"}}
	windows, err := c.SlotWindowsOn(day(12, 0))
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, day(6, 0), windows[0].Start)
	assert.Equal(t, day(7, 0), windows[0].End)
	assert.Equal(t, day(10, 0), windows[2].Start)
}

func TestSlotWindowAt(t *testing.T) {
	c := Charger{ID: "1", MaxMinutes: 60, SlotStarts: []string{"10:00"}}

	w, ok, err := c.SlotWindowAt(day(10, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, day(10, 0), w.Start)

	_, ok, err = c.SlotWindowAt(day(11, 0))
	require.NoError(t, err)
	assert.False(t, ok, "window end is exclusive")

	_, ok, err = c.SlotWindowAt(day(9, 59))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSlotWindowMidpoint(t *testing.T) {
	w := SlotWindow{Start: day(10, 0), End: day(11, 30)}
	assert.Equal(t, day(10, 45), w.Midpoint())
}

func TestSlotWindowsOnBadClock(t *testing.T) {
	for _, raw := range []string{"25:00", "10:61", "noon", "10"} {
		c := Charger{ID: "1", MaxMinutes: 60, SlotStarts: []string{raw}}
		_, err := c.SlotWindowsOn(day(12, 0))
		assert.Error(t, err, "slot start %q", raw)
	}
}

func TestDeriveName(t *testing.T) {
	cases := map[string]string{
		"jane.a-doe@example.com": "Jane A Doe",
		"bob@example.com":        "Bob",
		"mary_jo@x.org":          "Mary Jo",
		"@example.com":           "",
	}
	for email, want := range cases {
		assert.Equal(t, want, DeriveName(email), email)
	}
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(day(0, 1), day(23, 59)))
	assert.False(t, SameDay(day(23, 59), day(23, 59).Add(time.Minute)))
}

func TestSessionOverdueAt(t *testing.T) {
	s := Session{Status: SessionActive, EndTime: day(11, 0)}
	assert.False(t, s.OverdueAt(day(11, 9), 10))
	assert.True(t, s.OverdueAt(day(11, 10), 10), "overdue exactly at end+grace")

	s.Status = SessionComplete
	assert.False(t, s.OverdueAt(day(12, 0), 10))
}

func TestReservationCountsForDailyLimit(t *testing.T) {
	counts := map[ReservationStatus]bool{
		ReservationActive:    true,
		ReservationCheckedIn: true,
		ReservationComplete:  true,
		ReservationCanceled:  false,
		ReservationNoShow:    false,
	}
	for status, want := range counts {
		r := Reservation{Status: status}
		assert.Equal(t, want, r.CountsForDailyLimit(), string(status))
	}
}
