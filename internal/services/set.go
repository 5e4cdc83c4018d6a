package services

import (
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository"
	"gorm.io/gorm"
)

// Set groups the services bound to one database session.
type Set struct {
	Users  *UserService
	Events *EventService
	KV     *KVService
}

// Builder creates a Set on the given session handle.
type Builder func(db *gorm.DB) *Set

func NewSet(db *gorm.DB) *Set {
	return &Set{
		Users:  NewUserService(repository.NewUserRepository(db)),
		Events: NewEventService(repository.NewEventRepository(db)),
		KV:     NewKVService(repository.NewKVRepository(db)),
	}
}
