// internal/session/options.go
//
// Functional options for session.New.

package session

import (
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the logger. The default is the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithRand sets the random source for word selection and hints.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithClock overrides time.Now for statistics timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithMaxAttempts overrides the guess limit per round.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}
