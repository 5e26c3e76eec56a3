package index

import (
	"context"
	"log/slog"

	"github.com/arloliu/posidx/section"
)

// Logger wraps slog.Logger with the index's field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger from l. A nil l discards all records.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		return NoopLogger()
	}

	return &Logger{Logger: l}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// LogBuild logs the outcome of one build.
func (l *Logger) LogBuild(ctx context.Context, stats *section.PositionStats, plan *Plan, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"count", stats.RecordCount,
			"error", err,
		)

		return
	}

	l.DebugContext(ctx, "index built",
		"count", stats.RecordCount,
		"fixed_bits", plan.FixedBitSize,
		"overflow_nodes", plan.OverflowNodes,
		"tree_depth", plan.TreeDepth,
		"bits_written", plan.BitsWritten,
		"coding", stats.Coding.String(),
		"compression", stats.Compression.String(),
		"stored_bytes", stats.StoredSize,
	)
}

// LogOpen logs the outcome of opening an index.
func (l *Logger) LogOpen(ctx context.Context, stats *section.PositionStats, overflow int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index open failed",
			"count", stats.RecordCount,
			"error", err,
		)

		return
	}

	l.DebugContext(ctx, "index opened",
		"count", stats.RecordCount,
		"fixed_bits", stats.FixedBitSize,
		"overflow_nodes", overflow,
		"stored_bytes", stats.StoredSize,
	)
}
