// Package cli implements the rigwall command-line interface.
//
// The CLI is built using cobra. Every command reads rigwall.toml (see
// pkg/config) and lets its flags override the file.
//
// # Commands
//
// The main commands are:
//   - generate: build a catalog from the image roster and a seed
//   - filter: print the catalog filtered and sorted as a table
//   - layout: compute the masonry layout as JSON
//   - render: produce HTML, SVG, JSON or PNG
//   - serve: run the HTTP gallery
//   - browse: explore the gallery in the terminal
//   - submit: validate a photo submission
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through
// charmbracelet/log.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat renders timestamps like "14:32:01.45".
const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// progress logs a completion line with the time spent since it was created,
// e.g. "Generated 29 vehicles (3ms)".
type progress struct {
	logger *log.Logger
	start  time.Time
	now    func() time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now(), now: time.Now}
}

func (p *progress) elapsed() time.Duration {
	return p.now().Sub(p.start).Round(time.Millisecond)
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, p.elapsed())
}
