package transporters

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/lmittmann/tint"

	"pagepulse/pkg/log"
)

// Console renders entries for a human operator through a tint slog handler.
type Console struct {
	handler slog.Handler
}

// NewConsole writes coloured output to os.Stderr.
func NewConsole() *Console {
	return NewConsoleWithWriter(os.Stderr, false)
}

// NewConsoleWithWriter writes to w. noColor disables ANSI escapes.
func NewConsoleWithWriter(w io.Writer, noColor bool) *Console {
	return &Console{
		handler: tint.NewHandler(w, &tint.Options{
			Level:      log.Trace.Slog(),
			TimeFormat: time.TimeOnly,
			NoColor:    noColor,
		}),
	}
}

func (c *Console) Name() string { return "console" }

// Write converts the entry into an slog record. Fields are emitted in key
// order so repeated runs produce comparable output.
func (c *Console) Write(entry log.Entry) error {
	r := slog.NewRecord(entry.Timestamp, entry.Level.Slog(), entry.Message, 0)

	if entry.Component != "" {
		r.AddAttrs(slog.String("component", entry.Component))
	}

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err, ok := entry.Fields[k].(error); ok {
			r.AddAttrs(tint.Err(err))
			continue
		}
		r.AddAttrs(slog.Any(k, entry.Fields[k]))
	}

	if entry.Caller != "" {
		r.AddAttrs(slog.String("caller", entry.Caller))
	}

	return c.handler.Handle(context.Background(), r)
}

func (c *Console) Close() error { return nil }
