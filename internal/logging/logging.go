// Package logging configures the one *log.Logger each process uses, which
// the process's main then hands by reference to the components that log
// (lifecycle.Start in the receiver). There is no package-level logger
// singleton here: a component that logs takes its logger as a parameter,
// the same way it takes its param.Store or canvas.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Process names the two processes that each get their own logger, purely
// to tag log lines with which binary produced them.
type Process string

const (
	Receiver Process = "receiver"
	UI       Process = "ui"
)

// Options configures New. Level defaults to info when empty or unrecognized.
type Options struct {
	Level  string
	Output io.Writer
}

// New builds a leveled, structured logger for proc, writing to opts.Output
// (stderr if nil) at opts.Level.
func New(proc Process, opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          string(proc),
	})
	logger.SetLevel(parseLevel(opts.Level))
	return logger
}

func parseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
