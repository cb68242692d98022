package transporters

import "pagepulse/pkg/log"

// NewLogger builds the process logger for a log format: "json" writes JSON
// lines to stdout, anything else writes coloured console lines to stderr.
func NewLogger(format string, level log.Level) *log.Logger {
	if format == "json" {
		return log.New(level, NewStdout())
	}
	return log.New(level, NewConsole())
}
