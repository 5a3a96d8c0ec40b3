package internal

import "time"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	nowFn  func() time.Time
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithClock overrides the build-time clock (used in tests).
func WithClock(nowFn func() time.Time) Option {
	return func(a *application) {
		a.nowFn = nowFn
	}
}
