package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.OpenHour)
	assert.Equal(t, 0, cfg.OpenMinute)
	assert.Equal(t, 1, cfg.MaxPerDay)
	assert.Equal(t, 30, cfg.LateGraceMinutes)
	assert.Equal(t, 10, cfg.MoveGraceMinutes)
	assert.Equal(t, 2, cfg.StrikeThreshold)
	assert.Equal(t, 2, cfg.SuspensionBusinessDays)
	assert.Equal(t, 30, cfg.NetNewWindowMinutes)
	assert.Equal(t, 30, cfg.ReturningWindowMinutes)
	assert.Empty(t, cfg.AllowedDomain)
	assert.Empty(t, cfg.AdminEmails)
}

func TestResolveOverrides(t *testing.T) {
	cfg, err := Resolve(map[string]string{
		KeyAllowedDomain:       "example.com",
		KeyAdminEmails:         "Admin@Example.com, ops@example.com",
		KeyOpenHour:            "7",
		KeyOpenMinute:          "30",
		KeyMaxPerDay:           "2",
		KeyNetNewWindowMinutes: "15",
	})
	require.NoError(t, err)
	assert.Equal(t, "example.com", cfg.AllowedDomain)
	assert.Equal(t, []string{"admin@example.com", "ops@example.com"}, cfg.AdminEmails)
	assert.Equal(t, 7, cfg.OpenHour)
	assert.Equal(t, 30, cfg.OpenMinute)
	assert.Equal(t, 2, cfg.MaxPerDay)
	assert.Equal(t, 15, cfg.NetNewWindowMinutes)
	assert.True(t, cfg.IsAdminEmail("ADMIN@example.com"))
	assert.False(t, cfg.IsAdminEmail("alice@example.com"))
}

func TestResolveMalformedValue(t *testing.T) {
	for _, raw := range []string{"soon", "-1", "2.5"} {
		_, err := Resolve(map[string]string{KeyOpenHour: raw})
		require.Error(t, err, "value %q", raw)
		assert.True(t, IsIntegrity(err), "value %q should be an integrity error", raw)
	}
	// Blank values fall back to the default instead of failing.
	cfg, err := Resolve(map[string]string{KeyOpenHour: " "})
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.OpenHour)
}
