package mainthread

import (
	"github.com/joeycumines/logiface"
)

// Config contains all configuration options for a Core.
type Config struct {
	// QueueCapacity is the initial capacity of the command queue.
	// Must be a power of 2. If 0, defaults to 64. The queue grows on
	// demand; this only sizes the first allocation.
	QueueCapacity int

	// Logger receives structured events from the core (registrations,
	// drain summaries, escalations). A nil logger disables logging.
	Logger *logiface.Logger[logiface.Event]

	// PanicHandler is called when a privileged operation panics during a
	// drain. Whether or not a handler is set, the panic aborts the current
	// drain and Execute returns an error describing it.
	PanicHandler func(recovered any)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 64,
	}
}

// Validate checks the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.QueueCapacity < 0 {
		return errInvalidConfig("QueueCapacity must be >= 0")
	}

	if c.QueueCapacity > 0 && !isPowerOfTwo(c.QueueCapacity) {
		return errInvalidConfig("QueueCapacity must be a power of 2")
	}

	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
