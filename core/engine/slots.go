package engine

import (
	"fmt"
	"time"

	"github.com/evpark/evpark/core/model"
	"github.com/evpark/evpark/core/policy"
)

// SlotOffer is one bookable slot returned by the availability queries.
type SlotOffer struct {
	ChargerID   string    `json:"chargerId"`
	ChargerName string    `json:"chargerName"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
}

// ChargerAvailability summarizes one charger's slots for a calendar day.
type ChargerAvailability struct {
	ChargerID   string     `json:"chargerId"`
	ChargerName string     `json:"chargerName"`
	TotalSlots  int        `json:"totalSlots"`
	FreeSlots   int        `json:"freeSlots"`
	NextFree    *SlotOffer `json:"nextFree,omitempty"`
}

// TimelineEntry is one slot on a charger's single-day timeline.
type TimelineEntry struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	State     string    `json:"state"` // free | reserved | in_use | past
	UserName  string    `json:"userName,omitempty"`
}

// DayAvailability is the per-day row of the calendar query.
type DayAvailability struct {
	Date     string                `json:"date"`
	Chargers []ChargerAvailability `json:"chargers"`
}

// slotLookahead bounds how far NextAvailableSlot searches.
const slotLookahead = 7

// NextAvailableSlot returns the earliest free slot on any charger, scanning
// from now up to a week ahead.
func (e *Engine) NextAvailableSlot(actor model.Actor) (*SlotOffer, error) {
	offer, err := e.nextAvailableSlot()
	e.record("next-slot", err)
	return offer, err
}

func (e *Engine) nextAvailableSlot() (*SlotOffer, error) {
	now := e.clk.Now()
	_, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	var best *SlotOffer
	for day := 0; day < slotLookahead; day++ {
		at := now.AddDate(0, 0, day)
		for _, c := range snap.Chargers {
			windows, err := c.SlotWindowsOn(at)
			if err != nil {
				return nil, policy.Integrity(err.Error())
			}
			for _, w := range windows {
				if w.End.Before(now) || slotBlocked(snap, c, w) {
					continue
				}
				if w.Start.Before(now) && !w.Contains(now) {
					continue
				}
				if best == nil || w.Start.Before(best.StartTime) {
					offer := SlotOffer{ChargerID: c.ID, ChargerName: c.Name, StartTime: w.Start, EndTime: w.End}
					best = &offer
				}
			}
		}
		if best != nil {
			return best, nil
		}
	}
	return nil, policy.NotFound("No available slot in the next week.")
}

// AvailabilitySummary reports today's slot occupancy per charger.
func (e *Engine) AvailabilitySummary(actor model.Actor) ([]ChargerAvailability, error) {
	summary, err := e.availabilitySummary()
	e.record("availability", err)
	return summary, err
}

func (e *Engine) availabilitySummary() ([]ChargerAvailability, error) {
	now := e.clk.Now()
	_, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	out := make([]ChargerAvailability, 0, len(snap.Chargers))
	for _, c := range snap.Chargers {
		row, err := chargerAvailability(snap, c, now, now)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// ChargerTimeline lists every slot of one charger on the given day with its
// occupancy state. dateISO defaults to today.
func (e *Engine) ChargerTimeline(actor model.Actor, chargerID, dateISO string) ([]TimelineEntry, error) {
	entries, err := e.chargerTimeline(chargerID, dateISO)
	e.record("timeline", err)
	return entries, err
}

func (e *Engine) chargerTimeline(chargerID, dateISO string) ([]TimelineEntry, error) {
	now := e.clk.Now()
	_, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	charger, err := chargerByID(snap, chargerID)
	if err != nil {
		return nil, err
	}
	day := now
	if dateISO != "" {
		if day, err = parseDay(dateISO); err != nil {
			return nil, err
		}
	}
	windows, err := charger.SlotWindowsOn(day)
	if err != nil {
		return nil, policy.Integrity(err.Error())
	}
	entries := make([]TimelineEntry, 0, len(windows))
	for _, w := range windows {
		entry := TimelineEntry{StartTime: w.Start, EndTime: w.End, State: "free"}
		if holder := slotHolder(snap, charger.ID, w); holder != nil {
			entry.State = "reserved"
			entry.UserName = holder.UserName
		}
		for _, s := range snap.Sessions {
			if s.ChargerID == charger.ID && s.IsActive() && s.Overlaps(w.Start, w.End) {
				entry.State = "in_use"
				entry.UserName = s.UserName
				break
			}
		}
		if entry.State == "free" && !w.End.After(now) {
			entry.State = "past"
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CalendarAvailability reports per-day, per-charger occupancy for a date
// range. startISO defaults to today, days defaults to 7.
func (e *Engine) CalendarAvailability(actor model.Actor, startISO string, days int) ([]DayAvailability, error) {
	rows, err := e.calendarAvailability(startISO, days)
	e.record("calendar", err)
	return rows, err
}

func (e *Engine) calendarAvailability(startISO string, days int) ([]DayAvailability, error) {
	now := e.clk.Now()
	_, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	start := now
	if startISO != "" {
		if start, err = parseDay(startISO); err != nil {
			return nil, err
		}
	}
	if days <= 0 {
		days = 7
	}
	out := make([]DayAvailability, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		row := DayAvailability{
			Date:     day.Format("2006-01-02"),
			Chargers: make([]ChargerAvailability, 0, len(snap.Chargers)),
		}
		for _, c := range snap.Chargers {
			avail, err := chargerAvailability(snap, c, day, now)
			if err != nil {
				return nil, err
			}
			row.Chargers = append(row.Chargers, avail)
		}
		out = append(out, row)
	}
	return out, nil
}

func chargerAvailability(snap policy.Snapshot, c model.Charger, day, now time.Time) (ChargerAvailability, error) {
	windows, err := c.SlotWindowsOn(day)
	if err != nil {
		return ChargerAvailability{}, policy.Integrity(err.Error())
	}
	row := ChargerAvailability{ChargerID: c.ID, ChargerName: c.Name, TotalSlots: len(windows)}
	for _, w := range windows {
		if slotBlocked(snap, c, w) || !w.End.After(now) {
			continue
		}
		row.FreeSlots++
		if row.NextFree == nil || w.Start.Before(row.NextFree.StartTime) {
			offer := SlotOffer{ChargerID: c.ID, ChargerName: c.Name, StartTime: w.Start, EndTime: w.End}
			row.NextFree = &offer
		}
	}
	return row, nil
}

// slotBlocked reports whether the slot is taken by a holding reservation or
// an active session.
func slotBlocked(snap policy.Snapshot, c model.Charger, w model.SlotWindow) bool {
	if slotHolder(snap, c.ID, w) != nil {
		return true
	}
	for _, s := range snap.Sessions {
		if s.ChargerID == c.ID && s.IsActive() && s.Overlaps(w.Start, w.End) {
			return true
		}
	}
	return false
}

func slotHolder(snap policy.Snapshot, chargerID string, w model.SlotWindow) *model.Reservation {
	for i, r := range snap.Reservations {
		if r.ChargerID == chargerID && r.Holds() && r.StartTime.Equal(w.Start) {
			return &snap.Reservations[i]
		}
	}
	return nil
}

func parseDay(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t.In(time.Local), nil
		}
	}
	return time.Time{}, policy.Violation(policy.CodeInvalidArgument, fmt.Sprintf("Invalid date: %s", raw))
}
