package pausable

import (
	"log/slog"

	"github.com/ib-77/ropause/pkg/rop/loop"
)

type config struct {
	initiallyPaused bool
	loop            *loop.Loop
	logger          *slog.Logger
	buffer          int
}

type Option func(*config)

// WithInitiallyPaused creates the stream paused: nothing is pulled until
// Resume.
func WithInitiallyPaused(paused bool) Option {
	return func(c *config) {
		c.initiallyPaused = paused
	}
}

// WithLoop runs the stream on a shared loop. The stream never closes a loop
// it did not create; if someone else closes it first, the stream ends with a
// cancellation carrying loop.ErrClosed.
func WithLoop(l *loop.Loop) Option {
	return func(c *config) {
		c.loop = l
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithBuffer sets the capacity of channels returned by Results.
func WithBuffer(n int) Option {
	return func(c *config) {
		c.buffer = max(n, 0)
	}
}
