package logging

import (
	"log/slog"
)

// CronAdapter adapts a *slog.Logger to satisfy github.com/robfig/cron/v3.Logger.
type CronAdapter struct {
	logger *slog.Logger
}

// NewCronAdapter creates a cron-compatible logger backed by the given *slog.Logger.
func NewCronAdapter(l *slog.Logger) *CronAdapter {
	return &CronAdapter{logger: l}
}

// Info logs routine scheduler messages at debug level; cron emits one per tick.
func (c *CronAdapter) Info(msg string, keyvals ...interface{}) {
	c.logger.Debug(msg, toAttrs(keyvals)...)
}

func (c *CronAdapter) Error(err error, msg string, keyvals ...interface{}) {
	c.logger.Error(msg, append(toAttrs(keyvals), slog.Any("err", err))...)
}

// toAttrs converts alternating key-value pairs to slog.Attr args.
func toAttrs(keyvals []interface{}) []any {
	if len(keyvals) == 0 {
		return nil
	}
	attrs := make([]any, 0, len(keyvals)/2+1)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, _ := keyvals[i].(string)
		attrs = append(attrs, slog.Any(key, keyvals[i+1]))
	}
	// Handle odd-length keyvals gracefully
	if len(keyvals)%2 != 0 {
		attrs = append(attrs, slog.Any("MISSING_VALUE", keyvals[len(keyvals)-1]))
	}
	return attrs
}
