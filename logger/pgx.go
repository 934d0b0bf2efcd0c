package logger

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/remiges-tech/logharbour/logharbour"
)

// LogLevel holds a tracelog level that can be changed while the pool is in use.
type LogLevel struct {
	mu    sync.RWMutex
	level tracelog.LogLevel
}

func NewLogLevel(level tracelog.LogLevel) *LogLevel {
	return &LogLevel{level: level}
}

func (l *LogLevel) Set(level tracelog.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *LogLevel) Get() tracelog.LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// PgxLogger bridges tracelog.Logger and logharbour.Logger. Messages are logged under
// the "pgx" module.
type PgxLogger struct {
	logger   *logharbour.Logger
	logLevel *LogLevel
}

func NewPgxLogger(logger *logharbour.Logger, level *LogLevel) *PgxLogger {
	if level == nil {
		level = NewLogLevel(tracelog.LogLevelWarn)
	}
	return &PgxLogger{logger: logger.WithModule("pgx"), logLevel: level}
}

// Log implements tracelog.Logger.
func (l *PgxLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	// tracelog orders levels from none (0) up to trace (6).
	if level > l.logLevel.Get() {
		return
	}

	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		l.logger.Debug1().LogActivity(msg, data)
	case tracelog.LogLevelInfo:
		l.logger.Info().LogActivity(msg, data)
	case tracelog.LogLevelWarn:
		l.logger.Warn().LogActivity(msg, data)
	case tracelog.LogLevelError:
		l.logger.Error(errors.New(msg)).LogActivity(msg, data)
	default:
		l.logger.Info().LogActivity(msg, data)
	}
}

// NewPgxTracer returns a query tracer for pgxpool.Config.ConnConfig.Tracer. The
// tracer passes every level through and PgxLogger applies level.
func NewPgxTracer(logger *logharbour.Logger, level *LogLevel) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		Logger:   NewPgxLogger(logger, level),
		LogLevel: tracelog.LogLevelTrace,
	}
}
