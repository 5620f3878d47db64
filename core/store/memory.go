package store

import (
	"fmt"
	"sync"

	"github.com/evpark/evpark/core/model"
)

// MemoryStore keeps all tables in memory, preserving insertion order. It
// backs tests and the file store.
type MemoryStore struct {
	mu           sync.RWMutex
	chargers     []model.Charger
	sessions     []model.Session
	reservations []model.Reservation
	strikes      []model.Strike
	suspensions  []model.Suspension
	config       map[string]string
	configOrder  []string
	properties   map[string]string
}

// NewMemoryStore returns an empty MemoryStore with all tables initialized.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		config:     map[string]string{},
		properties: map[string]string{},
	}
}

func (s *MemoryStore) Chargers() ([]model.Charger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Charger, len(s.chargers))
	copy(out, s.chargers)
	return out, nil
}

func (s *MemoryStore) AppendCharger(c model.Charger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chargers = append(s.chargers, c)
	return nil
}

func (s *MemoryStore) UpdateCharger(c model.Charger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chargers {
		if s.chargers[i].ID == c.ID {
			s.chargers[i] = c
			return nil
		}
	}
	return fmt.Errorf("charger %s: no such row", c.ID)
}

func (s *MemoryStore) Sessions() ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Session, len(s.sessions))
	copy(out, s.sessions)
	return out, nil
}

func (s *MemoryStore) AppendSession(row model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, row)
	return nil
}

func (s *MemoryStore) UpdateSession(row model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == row.ID {
			s.sessions[i] = row
			return nil
		}
	}
	return fmt.Errorf("session %s: no such row", row.ID)
}

func (s *MemoryStore) Reservations() ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Reservation, len(s.reservations))
	copy(out, s.reservations)
	return out, nil
}

func (s *MemoryStore) AppendReservation(row model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations = append(s.reservations, row)
	return nil
}

func (s *MemoryStore) UpdateReservation(row model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reservations {
		if s.reservations[i].ID == row.ID {
			s.reservations[i] = row
			return nil
		}
	}
	return fmt.Errorf("reservation %s: no such row", row.ID)
}

func (s *MemoryStore) Strikes() ([]model.Strike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Strike, len(s.strikes))
	copy(out, s.strikes)
	return out, nil
}

func (s *MemoryStore) AppendStrike(row model.Strike) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strikes = append(s.strikes, row)
	return nil
}

func (s *MemoryStore) Suspensions() ([]model.Suspension, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Suspension, len(s.suspensions))
	copy(out, s.suspensions)
	return out, nil
}

func (s *MemoryStore) AppendSuspension(row model.Suspension) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suspensions = append(s.suspensions, row)
	return nil
}

func (s *MemoryStore) UpdateSuspension(row model.Suspension) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.suspensions {
		if s.suspensions[i].ID == row.ID {
			s.suspensions[i] = row
			return nil
		}
	}
	return fmt.Errorf("suspension %s: no such row", row.ID)
}

func (s *MemoryStore) ConfigValues() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.config))
	for k, v := range s.config {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) SetConfigValue(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.config[key]; !ok {
		s.configOrder = append(s.configOrder, key)
	}
	s.config[key] = value
	return nil
}

// ConfigKeys returns the config keys in insertion order.
func (s *MemoryStore) ConfigKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.configOrder))
	copy(out, s.configOrder)
	return out
}

func (s *MemoryStore) Property(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.properties[key], nil
}

func (s *MemoryStore) SetProperty(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties[key] = value
	return nil
}

// Properties returns a copy of all raw properties.
func (s *MemoryStore) Properties() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.properties))
	for k, v := range s.properties {
		out[k] = v
	}
	return out
}
