// Package sessiontest provides a recording session.Opener for tests.
package sessiontest

import (
	"context"
	"sync"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/session"
	"gorm.io/gorm"
)

// Session records how it was finished.
type Session struct {
	mu         sync.Mutex
	Committed  bool
	RolledBack bool
	Closed     bool
	CommitErr  error
}

func (s *Session) DB() *gorm.DB { return nil }

func (s *Session) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Committed || s.RolledBack {
		return nil
	}
	if s.CommitErr != nil {
		return s.CommitErr
	}
	s.Committed = true
	return nil
}

func (s *Session) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Committed || s.RolledBack {
		return nil
	}
	s.RolledBack = true
	return nil
}

func (s *Session) Close() error {
	_ = s.Rollback()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// Opener hands out Sessions and keeps every one it opened.
type Opener struct {
	mu       sync.Mutex
	Sessions []*Session
	OpenErr  error
	// CommitErr is copied onto each new session.
	CommitErr error
}

func (o *Opener) Open(context.Context) (session.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.OpenErr != nil {
		return nil, o.OpenErr
	}
	s := &Session{CommitErr: o.CommitErr}
	o.Sessions = append(o.Sessions, s)
	return s, nil
}

// Last returns the most recently opened session.
func (o *Opener) Last() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.Sessions) == 0 {
		return nil
	}
	return o.Sessions[len(o.Sessions)-1]
}
