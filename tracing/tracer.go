// Package tracing provides hooks that watch a cache and record what happens
// to it.
package tracing

import (
	"log"

	"github.com/sarchlab/dmcache/cache"
	"github.com/sarchlab/dmcache/hooking"
)

// An EventFormatter turns an access into a log line.
type EventFormatter func(event cache.AccessEvent) string

// A LogTracer is a hook that writes one log line per cache access.
type LogTracer struct {
	logger *log.Logger
	format EventFormatter
}

// NewLogTracer creates a new LogTracer that logs plain access lines.
func NewLogTracer(logger *log.Logger) *LogTracer {
	return &LogTracer{
		logger: logger,
		format: cache.AccessEvent.String,
	}
}

// WithFormatter sets how accesses are rendered, for example with colors.
func (t *LogTracer) WithFormatter(format EventFormatter) *LogTracer {
	t.format = format
	return t
}

// Func writes the access or reset to the log.
func (t *LogTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case cache.HookPosAccess:
		event := ctx.Item.(cache.AccessEvent)
		t.logger.Println(t.format(event))
	case cache.HookPosReset:
		t.logger.Printf("Reset: %d cache blocks emptied\n", ctx.Item)
	}
}
