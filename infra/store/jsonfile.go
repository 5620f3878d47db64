// Package store provides the JSON-file-backed store used by the CLI. The
// whole table set is held in memory and flushed as one document, which is
// plenty for a fleet of a handful of chargers.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evpark/evpark/core/model"
	corestore "github.com/evpark/evpark/core/store"
)

// image is the on-disk shape of the store.
type image struct {
	Chargers     []model.Charger     `json:"chargers"`
	Sessions     []model.Session     `json:"sessions"`
	Reservations []model.Reservation `json:"reservations"`
	Strikes      []model.Strike      `json:"strikes"`
	Suspensions  []model.Suspension  `json:"suspensions"`
	Config       map[string]string   `json:"config"`
	Properties   map[string]string   `json:"properties"`
}

// FileStore is a MemoryStore bound to a JSON file. Mutations happen in
// memory; Save flushes the full image.
type FileStore struct {
	*corestore.MemoryStore
	path string
}

// Load opens the store at path. A missing file yields an empty store that
// will be created on the first Save.
func Load(path string) (*FileStore, error) {
	st := &FileStore{MemoryStore: corestore.NewMemoryStore(), path: path}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load store %s: %w", path, err)
	}
	var img image
	if err := json.Unmarshal(raw, &img); err != nil {
		return nil, fmt.Errorf("load store %s: %w", path, err)
	}
	for _, c := range img.Chargers {
		if err := st.AppendCharger(c); err != nil {
			return nil, err
		}
	}
	for _, s := range img.Sessions {
		if err := st.AppendSession(s); err != nil {
			return nil, err
		}
	}
	for _, r := range img.Reservations {
		if err := st.AppendReservation(r); err != nil {
			return nil, err
		}
	}
	for _, s := range img.Strikes {
		if err := st.AppendStrike(s); err != nil {
			return nil, err
		}
	}
	for _, s := range img.Suspensions {
		if err := st.AppendSuspension(s); err != nil {
			return nil, err
		}
	}
	for k, v := range img.Config {
		if err := st.SetConfigValue(k, v); err != nil {
			return nil, err
		}
	}
	for k, v := range img.Properties {
		if err := st.SetProperty(k, v); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Save writes the full store image atomically: temp file in the same
// directory, then rename.
func (s *FileStore) Save() error {
	img := image{
		Config:     map[string]string{},
		Properties: s.Properties(),
	}
	var err error
	if img.Chargers, err = s.Chargers(); err != nil {
		return err
	}
	if img.Sessions, err = s.Sessions(); err != nil {
		return err
	}
	if img.Reservations, err = s.Reservations(); err != nil {
		return err
	}
	if img.Strikes, err = s.Strikes(); err != nil {
		return err
	}
	if img.Suspensions, err = s.Suspensions(); err != nil {
		return err
	}
	if img.Config, err = s.ConfigValues(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(img, "", "  ")
	if err != nil {
		return fmt.Errorf("save store %s: %w", s.path, err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save store %s: %w", s.path, err)
	}
	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return fmt.Errorf("save store %s: %w", s.path, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("save store %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("save store %s: %w", s.path, err)
	}
	if err := os.Rename(name, s.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("save store %s: %w", s.path, err)
	}
	return os.Chmod(s.path, 0o644)
}
