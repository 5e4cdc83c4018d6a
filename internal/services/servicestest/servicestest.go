// Package servicestest wires services.Set onto in-memory repositories.
package servicestest

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository/repositorytest"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/services"
	"gorm.io/gorm"
)

// Stores exposes the repositories behind a Set.
type Stores struct {
	Users  *repositorytest.Memory[models.User]
	Events *repositorytest.Memory[models.Event]
	KV     *repositorytest.Memory[models.KVStore]
}

func NewStores() *Stores {
	s := &Stores{
		Users: repositorytest.NewMemory[models.User](repository.Options{
			Name:         "user",
			DefaultOrder: []repository.OrderBy{{Column: "email"}},
		}, "email"),
		Events: repositorytest.NewMemory[models.Event](repository.Options{
			Name:         "event",
			DefaultOrder: []repository.OrderBy{{Column: "created_at"}, {Column: "id"}},
		}),
		KV: repositorytest.NewMemory[models.KVStore](repository.Options{
			Name:         "key",
			DefaultOrder: []repository.OrderBy{{Column: "key"}},
		}, "key"),
	}
	s.Events.Hydrate = func(ctx context.Context, ev *models.Event) error {
		u, err := s.Users.GetOneOrNone(ctx, repository.Equal{Column: "id", Value: ev.UserID})
		if err != nil {
			return err
		}
		ev.User = u
		return nil
	}
	// event.user_id cascades on delete
	s.Users.OnDelete = func(ctx context.Context, u *models.User) error {
		events, err := s.Events.List(ctx, repository.Equal{Column: "user_id", Value: u.ID})
		if err != nil {
			return err
		}
		for _, ev := range events {
			if _, err := s.Events.Delete(ctx, ev.ID); err != nil {
				return err
			}
		}
		return nil
	}
	return s
}

func (s *Stores) Set() *services.Set {
	return &services.Set{
		Users:  services.NewUserService(s.Users),
		Events: services.NewEventService(s.Events),
		KV:     services.NewKVService(s.KV),
	}
}

// Builder ignores the session handle and always returns services on s.
func (s *Stores) Builder() services.Builder {
	return func(*gorm.DB) *services.Set { return s.Set() }
}
