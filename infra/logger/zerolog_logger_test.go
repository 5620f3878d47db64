package logger

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestLevelFilter(t *testing.T) {
	assert.NoError(t, os.Setenv("EVPARK_LOG_LEVEL", "warn"))
	defer func() { assert.NoError(t, os.Unsetenv("EVPARK_LOG_LEVEL")) }()
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Infof("suppressed")
	l.Warnf("emitted")
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debugf("d")
	l.Debugw("d", nil)
	l.Infof("i")
	l.Warnf("w")
	l.Errorf("e")
}
