package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evpark/evpark/core/model"
	"github.com/evpark/evpark/core/policy"
)

func TestMemoryStoreUpdateByID(t *testing.T) {
	st := NewMemoryStore()
	require.NoError(t, st.AppendCharger(model.Charger{ID: "1", Name: "Charger 1"}))
	require.NoError(t, st.AppendCharger(model.Charger{ID: "2", Name: "Charger 2"}))

	require.NoError(t, st.UpdateCharger(model.Charger{ID: "2", Name: "Garage B"}))
	chargers, err := st.Chargers()
	require.NoError(t, err)
	assert.Equal(t, "Charger 1", chargers[0].Name)
	assert.Equal(t, "Garage B", chargers[1].Name)

	err = st.UpdateCharger(model.Charger{ID: "9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such row")
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	st := NewMemoryStore()
	require.NoError(t, st.AppendSession(model.Session{ID: "s1", Status: model.SessionActive}))

	sessions, err := st.Sessions()
	require.NoError(t, err)
	sessions[0].Status = model.SessionComplete

	again, err := st.Sessions()
	require.NoError(t, err)
	assert.Equal(t, model.SessionActive, again[0].Status, "caller edits must not leak back")

	values, err := st.ConfigValues()
	require.NoError(t, err)
	values["rogue"] = "1"
	again2, err := st.ConfigValues()
	require.NoError(t, err)
	assert.NotContains(t, again2, "rogue")
}

func TestMemoryStoreConfigOrder(t *testing.T) {
	st := NewMemoryStore()
	require.NoError(t, st.SetConfigValue("b", "1"))
	require.NoError(t, st.SetConfigValue("a", "2"))
	require.NoError(t, st.SetConfigValue("b", "3"))

	assert.Equal(t, []string{"b", "a"}, st.ConfigKeys())
	values, err := st.ConfigValues()
	require.NoError(t, err)
	assert.Equal(t, "3", values["b"])
}

func TestSeed(t *testing.T) {
	st := NewMemoryStore()
	require.NoError(t, Seed(st, "admin@example.com"))

	chargers, err := st.Chargers()
	require.NoError(t, err)
	require.Len(t, chargers, 2)
	assert.Equal(t, 60, chargers[0].MaxMinutes)
	assert.Equal(t, 90, chargers[1].MaxMinutes)

	values, err := st.ConfigValues()
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", values[policy.KeyAdminEmails])
	assert.Equal(t, "example.com", values[policy.KeyAllowedDomain])
}

func TestSeedIsIdempotent(t *testing.T) {
	st := NewMemoryStore()
	require.NoError(t, Seed(st, "admin@example.com"))
	require.NoError(t, st.SetConfigValue(policy.KeyAdminEmails, "other@example.com"))
	require.NoError(t, Seed(st, "admin@example.com"))

	chargers, err := st.Chargers()
	require.NoError(t, err)
	assert.Len(t, chargers, 2, "chargers are not duplicated")

	values, err := st.ConfigValues()
	require.NoError(t, err)
	assert.Equal(t, "other@example.com", values[policy.KeyAdminEmails], "existing config wins")
}
