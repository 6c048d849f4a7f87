package socket

import (
	"time"

	"go.uber.org/zap"
)

type Option func(*Channel)

func WithLogger(l *zap.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Channel) { c.headerProvider = h }
}

// WithPingInterval sets the keepalive period; zero or less disables pings.
func WithPingInterval(d time.Duration) Option {
	return func(c *Channel) { c.pingInterval = d }
}

func WithDialTimeout(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.dialTimeout = d
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// WithReadLimit caps the size of a single incoming message in bytes.
func WithReadLimit(n int64) Option {
	return func(c *Channel) { c.readLimit = n }
}
