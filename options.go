package mainthread

import (
	"github.com/joeycumines/logiface"
)

// Option configures a Core.
type Option func(*Config)

// WithQueueCapacity sets the initial command queue capacity.
// Must be a power of 2.
func WithQueueCapacity(capacity int) Option {
	return func(c *Config) {
		c.QueueCapacity = capacity
	}
}

// WithLogger attaches a structured logger to the core. A nil logger is
// valid and disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithPanicHandler sets the handler invoked when a privileged operation
// panics during a drain.
func WithPanicHandler(handler func(recovered any)) Option {
	return func(c *Config) {
		c.PanicHandler = handler
	}
}
