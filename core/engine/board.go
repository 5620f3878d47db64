package engine

import (
	"time"

	"github.com/evpark/evpark/core/model"
	"github.com/evpark/evpark/core/policy"
)

// BoardData is the read-side aggregation of the full table state, shaped for
// the presentation layer. It is recomputed from scratch on every request and
// after every mutation.
type BoardData struct {
	ServerTime   time.Time         `json:"serverTime"`
	User         UserView          `json:"user"`
	Config       map[string]string `json:"config"`
	Reservations []ReservationView `json:"reservations"`
	Chargers     []ChargerView     `json:"chargers"`
}

// UserView summarizes the acting user.
type UserView struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

// ChargerView is the per-charger card model.
type ChargerView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	MaxMinutes  int              `json:"maxMinutes"`
	StatusKey   string           `json:"statusKey"`
	Status      string           `json:"status"`
	Reservation *ReservationView `json:"reservation,omitempty"`
	Session     *SessionView     `json:"session,omitempty"`
	Walkup      *WalkupView      `json:"walkup,omitempty"`
}

// ReservationView is a reservation row with charger context denormalized in.
type ReservationView struct {
	ID          string    `json:"id"`
	ChargerID   string    `json:"chargerId"`
	ChargerName string    `json:"chargerName"`
	UserEmail   string    `json:"userEmail"`
	UserName    string    `json:"userName"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Status      string    `json:"status"`
	Mine        bool      `json:"mine"`
}

// SessionView is the active session shown on a charger card.
type SessionView struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"userEmail"`
	UserName  string    `json:"userName"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Overdue   bool      `json:"overdue"`
}

// WalkupView describes the walk-up window currently in progress on a charger.
// It is present only while the wall clock is inside a slot window.
type WalkupView struct {
	SlotStart         time.Time `json:"slotStart"`
	SlotEnd           time.Time `json:"slotEnd"`
	Tier              string    `json:"tier"`
	OpensToReturning  time.Time `json:"opensToReturning"`
	OpensToAll        time.Time `json:"opensToAll"`
	IsOpen            bool      `json:"isOpen"`
	IsOpenToReturning bool      `json:"isOpenToReturning"`
	IsOpenToAll       bool      `json:"isOpenToAll"`
}

var statusLabels = map[string]string{
	"free":     "Free",
	"reserved": "Reserved",
	"in_use":   "In Use",
	"overdue":  "Overdue",
}

// Board projects the current table state for the acting user.
func (e *Engine) Board(actor model.Actor) (*BoardData, error) {
	board, err := e.projectBoard(actor, e.clk.Now())
	e.record("board", err)
	return board, err
}

// projectBoard builds the board at a fixed instant. It reads the store but
// never writes, so mutating callers invoke it while still holding the lock.
func (e *Engine) projectBoard(actor model.Actor, now time.Time) (*BoardData, error) {
	cfg, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	values, err := e.st.ConfigValues()
	if err != nil {
		return nil, err
	}
	board := &BoardData{
		ServerTime: now,
		User: UserView{
			Email:   actor.Email,
			Name:    actor.Name,
			IsAdmin: e.isAdmin(cfg, actor),
		},
		Config:       values,
		Reservations: make([]ReservationView, 0, len(snap.Reservations)),
		Chargers:     make([]ChargerView, 0, len(snap.Chargers)),
	}
	for _, r := range snap.Reservations {
		board.Reservations = append(board.Reservations, reservationView(snap, r, actor))
	}
	for _, c := range snap.Chargers {
		view, err := e.chargerView(cfg, snap, actor, c, now)
		if err != nil {
			return nil, err
		}
		board.Chargers = append(board.Chargers, view)
	}
	return board, nil
}

func (e *Engine) chargerView(cfg policy.Config, snap policy.Snapshot, actor model.Actor, c model.Charger, now time.Time) (ChargerView, error) {
	view := ChargerView{
		ID:         c.ID,
		Name:       c.Name,
		MaxMinutes: c.MaxMinutes,
	}

	var active *model.Session
	for i, s := range snap.Sessions {
		if s.ChargerID == c.ID && s.IsActive() {
			active = &snap.Sessions[i]
			break
		}
	}
	var next *model.Reservation
	for i, r := range snap.Reservations {
		if r.ChargerID != c.ID || !r.Holds() || !model.SameDay(now, r.StartTime) {
			continue
		}
		if !r.EndTime.After(now) {
			continue
		}
		if next == nil || r.StartTime.Before(next.StartTime) {
			next = &snap.Reservations[i]
		}
	}

	switch {
	case active != nil && active.OverdueAt(now, cfg.MoveGraceMinutes):
		view.StatusKey = "overdue"
	case active != nil:
		view.StatusKey = "in_use"
	case next != nil:
		view.StatusKey = "reserved"
	default:
		view.StatusKey = "free"
	}
	view.Status = statusLabels[view.StatusKey]

	if active != nil {
		view.Session = &SessionView{
			ID:        active.ID,
			UserEmail: active.UserID,
			UserName:  active.UserName,
			StartTime: active.StartTime,
			EndTime:   active.EndTime,
			Overdue:   view.StatusKey == "overdue",
		}
	}
	if next != nil {
		rv := reservationView(snap, *next, actor)
		view.Reservation = &rv
	}

	slot, inside, err := c.SlotWindowAt(now)
	if err != nil {
		return ChargerView{}, policy.Integrity(err.Error())
	}
	if inside {
		_, startErr := policy.CanStartSession(cfg, snap, actor, c, now)
		view.Walkup = &WalkupView{
			SlotStart:         slot.Start,
			SlotEnd:           slot.End,
			Tier:              policy.WalkUpTier(cfg, slot, now).String(),
			OpensToReturning:  slot.Start.Add(cfg.NetNewWindow()),
			OpensToAll:        slot.Start.Add(cfg.NetNewWindow() + cfg.ReturningWindow()),
			IsOpen:            startErr == nil,
			IsOpenToReturning: !now.Before(slot.Start.Add(cfg.NetNewWindow())),
			IsOpenToAll:       !now.Before(slot.Start.Add(cfg.NetNewWindow() + cfg.ReturningWindow())),
		}
	}
	return view, nil
}

func reservationView(snap policy.Snapshot, r model.Reservation, actor model.Actor) ReservationView {
	name := r.ChargerID
	for _, c := range snap.Chargers {
		if c.ID == r.ChargerID {
			name = c.Name
			break
		}
	}
	return ReservationView{
		ID:          r.ID,
		ChargerID:   r.ChargerID,
		ChargerName: name,
		UserEmail:   r.UserID,
		UserName:    r.UserName,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Status:      string(r.Status),
		Mine:        r.UserID == actor.Email,
	}
}
