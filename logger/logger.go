// Package logger builds the logharbour loggers used by errackd and bridges pgx query
// tracing into them.
package logger

import (
	"io"

	"github.com/remiges-tech/logharbour/logharbour"
)

// New creates a logharbour logger for app writing to w at the default priority.
func New(app string, w io.Writer) *logharbour.Logger {
	lctx := logharbour.NewLoggerContext(logharbour.DefaultPriority)
	return logharbour.NewLogger(lctx, app, w)
}
