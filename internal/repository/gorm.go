package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm implements Repository on a gorm handle.
type Gorm[T any] struct {
	db   *gorm.DB
	opts Options
}

func NewGorm[T any](db *gorm.DB, opts Options) *Gorm[T] {
	return &Gorm[T]{db: db, opts: opts}
}

func (r *Gorm[T]) read(ctx context.Context, filters []Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(T))
	for _, j := range r.opts.Joins {
		q = q.Joins(j)
	}
	for _, f := range filters {
		q = f.Apply(q)
	}
	if !hasOrder(filters) {
		for _, o := range r.opts.DefaultOrder {
			q = o.Apply(q)
		}
	}
	return q
}

func (r *Gorm[T]) err(err error) error {
	return translate(err, r.opts.name())
}

func (r *Gorm[T]) Get(ctx context.Context, id uuid.UUID, filters ...Filter) (*T, error) {
	filters = append([]Filter{Equal{Column: "id", Value: id}}, filters...)
	var out T
	if err := r.read(ctx, filters).Take(&out).Error; err != nil {
		return nil, r.err(err)
	}
	return &out, nil
}

func (r *Gorm[T]) GetOne(ctx context.Context, filters ...Filter) (*T, error) {
	var rows []*T
	if err := r.read(ctx, filters).Limit(2).Find(&rows).Error; err != nil {
		return nil, r.err(err)
	}
	switch {
	case len(rows) == 0:
		return nil, apperr.NotFound(fmt.Sprintf("No %s found", r.opts.name()))
	case len(rows) > 1 && !r.opts.AllowMultiple:
		return nil, apperr.Conflict(fmt.Sprintf("Multiple %s rows matched", r.opts.name()), nil)
	}
	return rows[0], nil
}

func (r *Gorm[T]) GetOneOrNone(ctx context.Context, filters ...Filter) (*T, error) {
	out, err := r.GetOne(ctx, filters...)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return out, err
}

func (r *Gorm[T]) List(ctx context.Context, filters ...Filter) ([]*T, error) {
	var rows []*T
	if err := r.read(ctx, filters).Find(&rows).Error; err != nil {
		return nil, r.err(err)
	}
	return rows, nil
}

func (r *Gorm[T]) ListAndCount(ctx context.Context, filters ...Filter) ([]*T, int64, error) {
	total, err := r.Count(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.List(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Count ignores ordering and pagination. Joins are skipped because every
// filter targets the model's own table.
func (r *Gorm[T]) Count(ctx context.Context, filters ...Filter) (int64, error) {
	q := r.db.WithContext(ctx).Model(new(T))
	for _, f := range WithoutPaging(filters) {
		q = f.Apply(q)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, r.err(err)
	}
	return n, nil
}

func (r *Gorm[T]) Exists(ctx context.Context, filters ...Filter) (bool, error) {
	n, err := r.Count(ctx, filters...)
	return n > 0, err
}

func (r *Gorm[T]) Add(ctx context.Context, entity *T) (*T, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		return nil, r.err(err)
	}
	return entity, nil
}

func (r *Gorm[T]) AddMany(ctx context.Context, entities []*T) ([]*T, error) {
	if len(entities) == 0 {
		return entities, nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&entities).Error; err != nil {
		return nil, r.err(err)
	}
	return entities, nil
}

func (r *Gorm[T]) Update(ctx context.Context, entity *T) (*T, error) {
	res := r.db.WithContext(ctx).
		Model(entity).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(entity)
	if res.Error != nil {
		return nil, r.err(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("No %s found", r.opts.name()))
	}
	return entity, nil
}

func (r *Gorm[T]) UpdateMany(ctx context.Context, entities []*T) ([]*T, error) {
	for _, e := range entities {
		if _, err := r.Update(ctx, e); err != nil {
			return nil, err
		}
	}
	return entities, nil
}

func (r *Gorm[T]) Upsert(ctx context.Context, entity *T) (*T, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(entity).Error; err != nil {
		return nil, r.err(err)
	}
	return entity, nil
}

func (r *Gorm[T]) Delete(ctx context.Context, id uuid.UUID) (*T, error) {
	entity, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(new(T), "id = ?", id).Error; err != nil {
		return nil, r.err(err)
	}
	return entity, nil
}

func (r *Gorm[T]) DeleteMany(ctx context.Context, ids []uuid.UUID) ([]*T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	rows, err := r.List(ctx, In{Column: "id", Values: values})
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(new(T), "id IN ?", ids).Error; err != nil {
		return nil, r.err(err)
	}
	return rows, nil
}
