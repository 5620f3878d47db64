package logger

import corelogger "github.com/evpark/evpark/core/logger"

// Logger mirrors the core logger interface so infra packages can depend on
// this package alone.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component. The output format is selected
// via the APP_ENV environment variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
