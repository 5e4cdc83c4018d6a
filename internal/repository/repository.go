// Package repository provides generic data access for a single model type.
// Repositories run on whatever *gorm.DB they are given, normally the request
// transaction, and never begin or end transactions themselves.
package repository

import (
	"context"

	"github.com/google/uuid"
)

type Repository[T any] interface {
	// Get returns the row with the given id or a NotFound error.
	Get(ctx context.Context, id uuid.UUID, filters ...Filter) (*T, error)
	// GetOne returns the single row matching filters. No match is NotFound and
	// more than one match is Conflict unless the repository allows multiple.
	GetOne(ctx context.Context, filters ...Filter) (*T, error)
	// GetOneOrNone is GetOne returning nil instead of NotFound.
	GetOneOrNone(ctx context.Context, filters ...Filter) (*T, error)
	List(ctx context.Context, filters ...Filter) ([]*T, error)
	// ListAndCount returns a page of rows and the total ignoring pagination.
	ListAndCount(ctx context.Context, filters ...Filter) ([]*T, int64, error)
	Count(ctx context.Context, filters ...Filter) (int64, error)
	Exists(ctx context.Context, filters ...Filter) (bool, error)

	Add(ctx context.Context, entity *T) (*T, error)
	AddMany(ctx context.Context, entities []*T) ([]*T, error)
	// Update writes every column of an existing row. A row that no longer
	// exists is NotFound.
	Update(ctx context.Context, entity *T) (*T, error)
	UpdateMany(ctx context.Context, entities []*T) ([]*T, error)
	// Upsert updates the row with the entity's id or inserts it.
	Upsert(ctx context.Context, entity *T) (*T, error)
	// Delete removes a row and returns it as it was before deletion.
	Delete(ctx context.Context, id uuid.UUID) (*T, error)
	DeleteMany(ctx context.Context, ids []uuid.UUID) ([]*T, error)
}

// Options tune a repository for one model.
type Options struct {
	// Name is used in client-facing error messages.
	Name string
	// DefaultOrder applies when a query carries no OrderBy filter.
	DefaultOrder []OrderBy
	// Joins names associations loaded with an explicit join on reads.
	Joins []string
	// AllowMultiple makes GetOne return the first of several matches.
	AllowMultiple bool
}

func (o Options) name() string {
	if o.Name == "" {
		return "record"
	}
	return o.Name
}
