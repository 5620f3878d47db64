package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evpark/evpark/core/model"
)

func TestLoadMissingFile(t *testing.T) {
	st, err := Load(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	chargers, err := st.Chargers()
	require.NoError(t, err)
	assert.Empty(t, chargers)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "store.json")
	st, err := Load(path)
	require.NoError(t, err)

	start := time.Date(2026, time.February, 9, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.AppendCharger(model.Charger{ID: "1", Name: "Charger 1", MaxMinutes: 60, SlotStarts: []string{"10:00"}}))
	require.NoError(t, st.AppendReservation(model.Reservation{
		ID:        "res-1",
		ChargerID: "1",
		UserID:    "alice@example.com",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    model.ReservationActive,
	}))
	require.NoError(t, st.AppendSession(model.Session{ID: "sess-1", ChargerID: "1", UserID: "alice@example.com", Status: model.SessionActive, StartTime: start, EndTime: start.Add(time.Hour)}))
	require.NoError(t, st.AppendStrike(model.Strike{ID: "strike-1", UserID: "alice@example.com", MonthKey: "2026-02"}))
	require.NoError(t, st.SetConfigValue("allowed_domain", "example.com"))
	require.NoError(t, st.SetProperty("last_sweep", "2026-02-09T10:00:00Z"))
	require.NoError(t, st.Save())

	loaded, err := Load(path)
	require.NoError(t, err)

	chargers, err := loaded.Chargers()
	require.NoError(t, err)
	require.Len(t, chargers, 1)
	assert.Equal(t, []string{"10:00"}, chargers[0].SlotStarts)

	reservations, err := loaded.Reservations()
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, model.ReservationActive, reservations[0].Status)
	assert.True(t, reservations[0].StartTime.Equal(start))

	strikes, err := loaded.Strikes()
	require.NoError(t, err)
	assert.Len(t, strikes, 1)

	values, err := loaded.ConfigValues()
	require.NoError(t, err)
	assert.Equal(t, "example.com", values["allowed_domain"])

	prop, err := loaded.Property("last_sweep")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-09T10:00:00Z", prop)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	st, err := Load(filepath.Join(dir, "store.json"))
	require.NoError(t, err)
	require.NoError(t, st.Save())
	require.NoError(t, st.Save())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "store.json", entries[0].Name())
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load store")
}
