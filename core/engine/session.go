package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evpark/evpark/core/model"
	"github.com/evpark/evpark/core/notify"
	"github.com/evpark/evpark/core/policy"
)

// StartSession starts charging on the charger right now. When the actor holds
// the current slot's reservation this is a check-in; otherwise it is a
// walk-up subject to the tier rules.
func (e *Engine) StartSession(actor model.Actor, chargerID string) (*BoardData, error) {
	board, err := e.startSession(actor, chargerID)
	e.record("start-session", err)
	return board, err
}

func (e *Engine) startSession(actor model.Actor, chargerID string) (*BoardData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clk.Now()
	cfg, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	charger, err := chargerByID(snap, chargerID)
	if err != nil {
		return nil, err
	}
	decision, err := policy.CanStartSession(cfg, snap, actor, charger, now)
	if err != nil {
		return nil, err
	}
	if decision.OwnReservation != nil {
		if _, err := e.checkInLocked(cfg, snap, *decision.OwnReservation, now); err != nil {
			return nil, err
		}
		return e.projectBoard(actor, now)
	}
	if _, err := e.openSession(charger, actor.Email, actor.Name, now); err != nil {
		return nil, err
	}
	return e.projectBoard(actor, now)
}

// openSession appends a new active session and points the charger at it.
// Callers hold the engine lock and have already verified the charger is free.
func (e *Engine) openSession(charger model.Charger, userID, userName string, now time.Time) (model.Session, error) {
	sess := model.Session{
		ID:        uuid.NewString(),
		ChargerID: charger.ID,
		UserID:    userID,
		UserName:  userName,
		StartTime: now,
		EndTime:   now.Add(time.Duration(charger.MaxMinutes) * time.Minute),
		Status:    model.SessionActive,
	}
	if err := e.st.AppendSession(sess); err != nil {
		return model.Session{}, err
	}
	charger.ActiveSessionID = sess.ID
	if err := e.st.UpdateCharger(charger); err != nil {
		return model.Session{}, err
	}
	e.log.Infof("session %s started by %s on charger %s", sess.ID, userID, charger.ID)
	return sess, nil
}

// EndSession ends an active session by id. Only the session owner or an
// admin may end it.
func (e *Engine) EndSession(actor model.Actor, sessionID string) (*BoardData, error) {
	board, err := e.endSession(actor, sessionID)
	e.record("end-session", err)
	return board, err
}

func (e *Engine) endSession(actor model.Actor, sessionID string) (*BoardData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clk.Now()
	cfg, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	sess, err := sessionByID(snap, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != actor.Email && !e.isAdmin(cfg, actor) {
		return nil, policy.ErrAdminRequired()
	}
	if !sess.IsActive() {
		return nil, policy.Violation(policy.CodeSessionNotActive, "This session has already ended.")
	}
	if err := e.closeSession(snap, sess, now); err != nil {
		return nil, err
	}
	return e.projectBoard(actor, now)
}

// EndSessionForReservation ends the session that was started against the
// given reservation, located by owner and time overlap rather than by id.
func (e *Engine) EndSessionForReservation(actor model.Actor, reservationID string) (*BoardData, error) {
	board, err := e.endSessionForReservation(actor, reservationID)
	e.record("end-for-reservation", err)
	return board, err
}

func (e *Engine) endSessionForReservation(actor model.Actor, reservationID string) (*BoardData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clk.Now()
	cfg, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	res, err := reservationByID(snap, reservationID)
	if err != nil {
		return nil, err
	}
	if res.UserID != actor.Email && !e.isAdmin(cfg, actor) {
		return nil, policy.ErrAdminRequired()
	}
	var match *model.Session
	otherCharger := false
	for i, s := range snap.Sessions {
		if s.UserID != res.UserID || !s.IsActive() || !s.Overlaps(res.StartTime, res.EndTime) {
			continue
		}
		if s.ChargerID == res.ChargerID {
			match = &snap.Sessions[i]
			break
		}
		otherCharger = true
	}
	if match == nil {
		if otherCharger {
			return nil, policy.NotFound("Session does not match this reservation.")
		}
		return nil, policy.NotFound("Session not found for this reservation.")
	}
	if err := e.closeSession(snap, *match, now); err != nil {
		return nil, err
	}
	return e.projectBoard(actor, now)
}

// closeSession marks the session complete, releases the charger and completes
// the checked-in reservation it was started for, if any. Callers hold the
// engine lock.
func (e *Engine) closeSession(snap policy.Snapshot, sess model.Session, now time.Time) error {
	sess.Status = model.SessionComplete
	sess.EndedAt = now
	if err := e.st.UpdateSession(sess); err != nil {
		return err
	}
	for _, c := range snap.Chargers {
		if c.ID == sess.ChargerID && c.ActiveSessionID == sess.ID {
			c.ActiveSessionID = ""
			if err := e.st.UpdateCharger(c); err != nil {
				return err
			}
			break
		}
	}
	for _, r := range snap.Reservations {
		if r.UserID == sess.UserID && r.ChargerID == sess.ChargerID &&
			r.Status == model.ReservationCheckedIn && sess.Overlaps(r.StartTime, r.EndTime) {
			r.Status = model.ReservationComplete
			r.UpdatedAt = now
			if err := e.st.UpdateReservation(r); err != nil {
				return err
			}
			break
		}
	}
	e.log.Infof("session %s on charger %s ended", sess.ID, sess.ChargerID)
	return nil
}

// ForceEnd ends whatever session is active on the charger. Admin only.
func (e *Engine) ForceEnd(actor model.Actor, chargerID string) (*BoardData, error) {
	board, err := e.forceEnd(actor, chargerID)
	e.record("force-end", err)
	return board, err
}

func (e *Engine) forceEnd(actor model.Actor, chargerID string) (*BoardData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clk.Now()
	cfg, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	if !e.isAdmin(cfg, actor) {
		return nil, policy.ErrAdminRequired()
	}
	charger, err := chargerByID(snap, chargerID)
	if err != nil {
		return nil, err
	}
	var active *model.Session
	for i, s := range snap.Sessions {
		if s.ChargerID == charger.ID && s.IsActive() {
			active = &snap.Sessions[i]
			break
		}
	}
	if active == nil {
		return nil, policy.NotFound(fmt.Sprintf("No active session on charger %s.", charger.ID))
	}
	if err := e.closeSession(snap, *active, now); err != nil {
		return nil, err
	}
	e.mail(active.UserID, "Your charging session was ended",
		fmt.Sprintf("An admin ended your session on %s.", charger.Name))
	return e.projectBoard(actor, now)
}

// ResetCharger clears a charger that is stuck: any active session is closed
// and the active-session pointer is dropped even if the session row is
// missing. Admin only.
func (e *Engine) ResetCharger(actor model.Actor, chargerID string) (*BoardData, error) {
	board, err := e.resetCharger(actor, chargerID)
	e.record("reset-charger", err)
	return board, err
}

func (e *Engine) resetCharger(actor model.Actor, chargerID string) (*BoardData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clk.Now()
	cfg, snap, err := e.resolve()
	if err != nil {
		return nil, err
	}
	if !e.isAdmin(cfg, actor) {
		return nil, policy.ErrAdminRequired()
	}
	charger, err := chargerByID(snap, chargerID)
	if err != nil {
		return nil, err
	}
	for _, s := range snap.Sessions {
		if s.ChargerID == charger.ID && s.IsActive() {
			if err := e.closeSession(snap, s, now); err != nil {
				return nil, err
			}
		}
	}
	charger.ActiveSessionID = ""
	if err := e.st.UpdateCharger(charger); err != nil {
		return nil, err
	}
	e.log.Infof("charger %s reset by %s", charger.ID, actor.Email)
	return e.projectBoard(actor, now)
}

// NotifyOwner mails the owner of the charger's active session. Admin only.
func (e *Engine) NotifyOwner(actor model.Actor, chargerID, text string) error {
	err := e.notifyOwner(actor, chargerID, text)
	e.record("notify-owner", err)
	return err
}

func (e *Engine) notifyOwner(actor model.Actor, chargerID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg, snap, err := e.resolve()
	if err != nil {
		return err
	}
	if !e.isAdmin(cfg, actor) {
		return policy.ErrAdminRequired()
	}
	charger, err := chargerByID(snap, chargerID)
	if err != nil {
		return err
	}
	for _, s := range snap.Sessions {
		if s.ChargerID == charger.ID && s.IsActive() {
			e.mail(s.UserID, fmt.Sprintf("About your session on %s", charger.Name), text)
			return nil
		}
	}
	return policy.NotFound(fmt.Sprintf("No active session on charger %s.", charger.ID))
}

// PostChannelMessage posts a free-form announcement to the shared channel.
// Admin only.
func (e *Engine) PostChannelMessage(actor model.Actor, text string) error {
	err := e.postChannelMessage(actor, text)
	e.record("post-channel", err)
	return err
}

func (e *Engine) postChannelMessage(actor model.Actor, text string) error {
	cfg, _, err := e.resolve()
	if err != nil {
		return err
	}
	if !e.isAdmin(cfg, actor) {
		return policy.ErrAdminRequired()
	}
	if err := e.notifier.PostChannel(text); err != nil {
		return err
	}
	if err := e.sink.RecordNotification(string(notify.KindChannel)); err != nil {
		e.log.Warnf("record notification metric: %v", err)
	}
	return nil
}
