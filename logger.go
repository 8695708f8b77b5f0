package htmgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with htmgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSeed adds the engine seed to the logger.
func (l *Logger) WithSeed(seed int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("seed", seed),
	}
}

// WithColumns adds the column count to the logger.
func (l *Logger) WithColumns(columns int) *Logger {
	return &Logger{
		Logger: l.Logger.With("columns", columns),
	}
}

// WithIteration adds the learning iteration to the logger.
func (l *Logger) WithIteration(iteration uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("iteration", iteration),
	}
}

// LogCompute logs one compute cycle.
func (l *Logger) LogCompute(ctx context.Context, activeColumns, activeCells, winnerCells int, learn bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compute failed",
			"active_columns", activeColumns,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "compute completed",
			"active_columns", activeColumns,
			"active_cells", activeCells,
			"winner_cells", winnerCells,
			"learn", learn,
		)
	}
}

// LogReset logs a sequence-boundary reset.
func (l *Logger) LogReset(ctx context.Context) {
	l.DebugContext(ctx, "transient state reset")
}

// LogSnapshotSave logs a snapshot save operation.
func (l *Logger) LogSnapshotSave(ctx context.Context, name string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
			"bytes", size,
		)
	}
}

// LogSnapshotLoad logs a snapshot load operation.
func (l *Logger) LogSnapshotLoad(ctx context.Context, name string, segments, synapses int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"name", name,
			"segments", segments,
			"synapses", synapses,
		)
	}
}

// LogSweep logs a parameter sweep.
func (l *Logger) LogSweep(ctx context.Context, runs, steps int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sweep failed",
			"runs", runs,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "sweep completed",
			"runs", runs,
			"steps", steps,
		)
	}
}
