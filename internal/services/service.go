package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository"
	"github.com/google/uuid"
)

// Fields is loosely typed input keyed by column name.
type Fields = map[string]any

// PrepareFunc rewrites input fields before they are applied to a model.
// creating is true when the fields describe a new row.
type PrepareFunc func(ctx context.Context, fields Fields, creating bool) error

// Service layers input conversion over a repository. Entity services embed it
// and add their own rules.
type Service[T any] struct {
	Repo    repository.Repository[T]
	prepare PrepareFunc
}

func NewService[T any](repo repository.Repository[T], prepare PrepareFunc) *Service[T] {
	return &Service[T]{Repo: repo, prepare: prepare}
}

// ToModel builds a new entity from input, which is Fields, a *T or a T.
func (s *Service[T]) ToModel(ctx context.Context, input any) (*T, error) {
	entity := new(T)
	if err := s.apply(ctx, entity, input, true); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service[T]) apply(ctx context.Context, dst *T, input any, creating bool) error {
	switch in := input.(type) {
	case *T:
		if in == nil {
			return apperr.Validation("Missing input", nil)
		}
		id := identify(dst).GetID()
		*dst = *in
		if !creating {
			identify(dst).SetID(id)
		}
		return nil
	case T:
		return s.apply(ctx, dst, &in, creating)
	case Fields:
		fields := make(Fields, len(in))
		for k, v := range in {
			fields[k] = v
		}
		if !creating {
			delete(fields, "id")
		}
		if s.prepare != nil {
			if err := s.prepare(ctx, fields, creating); err != nil {
				return err
			}
		}
		if err := models.Assign(dst, fields); err != nil {
			return apperr.Validation(fmt.Sprintf("Invalid input: %v", err), nil)
		}
		return nil
	default:
		return apperr.Internal("unsupported input", fmt.Errorf("cannot convert %T to %T", input, dst))
	}
}

func (s *Service[T]) Create(ctx context.Context, input any) (*T, error) {
	entity, err := s.ToModel(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.Repo.Add(ctx, entity)
}

func (s *Service[T]) CreateMany(ctx context.Context, inputs []any) ([]*T, error) {
	entities := make([]*T, 0, len(inputs))
	for _, in := range inputs {
		e, err := s.ToModel(ctx, in)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return s.Repo.AddMany(ctx, entities)
}

// Update applies input to the row with the given id. Fields input only
// touches the provided columns.
func (s *Service[T]) Update(ctx context.Context, id uuid.UUID, input any) (*T, error) {
	entity, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, entity, input, false); err != nil {
		return nil, err
	}
	return s.Repo.Update(ctx, entity)
}

// Upsert updates the row with the given id when it exists and creates it
// otherwise. A nil id always creates.
func (s *Service[T]) Upsert(ctx context.Context, id uuid.UUID, input any) (*T, error) {
	var existing *T
	if id != uuid.Nil {
		var err error
		existing, err = s.Repo.GetOneOrNone(ctx, repository.Equal{Column: "id", Value: id})
		if err != nil {
			return nil, err
		}
	}
	if existing == nil {
		entity, err := s.ToModel(ctx, input)
		if err != nil {
			return nil, err
		}
		if id != uuid.Nil {
			identify(entity).SetID(id)
		}
		return s.Repo.Upsert(ctx, entity)
	}
	if err := s.apply(ctx, existing, input, false); err != nil {
		return nil, err
	}
	return s.Repo.Upsert(ctx, existing)
}

func (s *Service[T]) Delete(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.Repo.Delete(ctx, id)
}

func (s *Service[T]) DeleteMany(ctx context.Context, ids []uuid.UUID) ([]*T, error) {
	return s.Repo.DeleteMany(ctx, ids)
}

func (s *Service[T]) Get(ctx context.Context, id uuid.UUID, filters ...repository.Filter) (*T, error) {
	return s.Repo.Get(ctx, id, filters...)
}

func (s *Service[T]) GetOne(ctx context.Context, filters ...repository.Filter) (*T, error) {
	return s.Repo.GetOne(ctx, filters...)
}

func (s *Service[T]) GetOneOrNone(ctx context.Context, filters ...repository.Filter) (*T, error) {
	return s.Repo.GetOneOrNone(ctx, filters...)
}

func (s *Service[T]) List(ctx context.Context, filters ...repository.Filter) ([]*T, error) {
	return s.Repo.List(ctx, filters...)
}

func (s *Service[T]) ListAndCount(ctx context.Context, filters ...repository.Filter) ([]*T, int64, error) {
	return s.Repo.ListAndCount(ctx, filters...)
}

func (s *Service[T]) Count(ctx context.Context, filters ...repository.Filter) (int64, error) {
	return s.Repo.Count(ctx, filters...)
}

func (s *Service[T]) Exists(ctx context.Context, filters ...repository.Filter) (bool, error) {
	return s.Repo.Exists(ctx, filters...)
}

func identify(v any) models.Identifiable {
	return v.(models.Identifiable)
}
