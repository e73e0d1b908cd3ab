package utils

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Session scopes a long running component, e.g. a match or a replica
// connection, to a cancellable context.
type Session struct {
	context   context.Context
	cancel    context.CancelFunc
	startTime time.Time
	logger    zerolog.Logger
}

func NewSession(ctx context.Context, name string) Session {
	ctx, cancel := context.WithCancel(ctx)
	return Session{
		context:   ctx,
		cancel:    cancel,
		startTime: time.Now(),
		logger:    log.With().Str("session", name).Logger(),
	}
}

func (s *Session) Started() time.Time {
	return s.startTime
}

func (s *Session) Uptime() time.Duration {
	return time.Since(s.startTime)
}

func (s *Session) Ctx() context.Context {
	return s.context
}

func (s *Session) Logger() *zerolog.Logger {
	return &s.logger
}

func (s *Session) IsDone() bool {
	return s.context.Err() != nil
}

func (s *Session) Cancel() {
	s.cancel()
}
