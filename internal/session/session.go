// Package session owns the per-request database transaction and the request
// scope handed to handlers.
package session

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Session is one unit of work. Close must always be called; it rolls back
// anything not committed.
type Session interface {
	DB() *gorm.DB
	Commit() error
	Rollback() error
	Close() error
}

type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// GormOpener begins a transaction on the shared pool for every session.
type GormOpener struct {
	db *gorm.DB
}

func NewGormOpener(db *gorm.DB) *GormOpener {
	return &GormOpener{db: db}
}

func (o *GormOpener) Open(ctx context.Context) (Session, error) {
	tx := o.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return &gormSession{tx: tx}, nil
}

type gormSession struct {
	tx   *gorm.DB
	done bool
}

func (s *gormSession) DB() *gorm.DB {
	return s.tx
}

func (s *gormSession) Commit() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.tx.Commit().Error
}

func (s *gormSession) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.tx.Rollback().Error
}

func (s *gormSession) Close() error {
	return s.Rollback()
}
