package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evpark/evpark/config"
	"github.com/evpark/evpark/core/notify"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Store.Path = filepath.Join(t.TempDir(), "store.json")
	svc, err := New(cfg)
	require.NoError(t, err)
	return svc
}

func TestCloseDeliversPendingNotifications(t *testing.T) {
	svc := newTestService(t)

	sub := svc.bus.Bus.Subscribe()
	got := 0
	done := make(chan struct{})
	go func() {
		for range sub {
			got++
		}
		close(done)
	}()

	// Well past the subscriber channel buffer, as a big sweep would produce.
	for i := 0; i < 40; i++ {
		require.NoError(t, svc.bus.SendMail(notify.Message{To: "alice@example.com", Subject: "reminder"}))
	}
	svc.Close()
	<-done
	assert.Equal(t, 40, got, "every notification is delivered before Close returns")
}

func TestServiceWiresEngineAndSweeper(t *testing.T) {
	svc := newTestService(t)
	defer svc.Close()

	assert.NotNil(t, svc.Engine)
	assert.NotNil(t, svc.Sweeper)
	assert.Equal(t, svc.Store.Path(), svc.cfg.Store.Path)
}
