package netdriver

import (
	"io"
	"log/slog"
)

// defaultIterationCap is the cap applied when StopAfterQueue has never been
// called, per section 4.7.
const defaultIterationCap = 10_000

// Option configures a Driver at construction time. WithLogger is purely
// observational (section 6's observability surface); WithIterationCap sets
// the cap that decides whether DoQueue reports convergence.
type Option func(*Driver)

// WithLogger installs l as the Driver's logger. The default is a discard
// logger, matching the teacher pack's convention of never requiring a
// caller to configure logging just to exercise core behavior.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithIterationCap overrides the default iteration cap for DoQueue.
func WithIterationCap(n int) Option {
	return func(d *Driver) { d.cap = n }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
