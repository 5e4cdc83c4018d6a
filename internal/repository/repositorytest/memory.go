// Package repositorytest provides an in-memory repository.Repository for tests
// of code that sits above the data layer.
package repositorytest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository"
	"github.com/google/uuid"
)

// Memory keeps rows in insertion order. Columns are resolved through the
// model's JSON tags, which match column names.
type Memory[T any] struct {
	mu   sync.Mutex
	rows []*T
	opts repository.Options

	// Unique lists columns that must not repeat across rows.
	Unique []string
	// Hydrate fills associations on rows returned by reads.
	Hydrate func(ctx context.Context, entity *T) error
	// OnDelete runs after a row is removed, for cascading to other stores.
	OnDelete func(ctx context.Context, entity *T) error
}

var _ repository.Repository[models.User] = (*Memory[models.User])(nil)

func NewMemory[T any](opts repository.Options, unique ...string) *Memory[T] {
	return &Memory[T]{opts: opts, Unique: unique}
}

func (m *Memory[T]) name() string {
	if m.opts.Name == "" {
		return "record"
	}
	return m.opts.Name
}

// Seed inserts rows without uniqueness checks.
func (m *Memory[T]) Seed(rows ...*T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.prepare(r)
		m.rows = append(m.rows, clone(r))
	}
}

// Len returns the number of stored rows.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *Memory[T]) Get(ctx context.Context, id uuid.UUID, filters ...repository.Filter) (*T, error) {
	filters = append([]repository.Filter{repository.Equal{Column: "id", Value: id}}, filters...)
	rows, err := m.List(ctx, filters...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("No %s found", m.name()))
	}
	return rows[0], nil
}

func (m *Memory[T]) GetOne(ctx context.Context, filters ...repository.Filter) (*T, error) {
	rows, err := m.List(ctx, filters...)
	if err != nil {
		return nil, err
	}
	switch {
	case len(rows) == 0:
		return nil, apperr.NotFound(fmt.Sprintf("No %s found", m.name()))
	case len(rows) > 1 && !m.opts.AllowMultiple:
		return nil, apperr.Conflict(fmt.Sprintf("Multiple %s rows matched", m.name()), nil)
	}
	return rows[0], nil
}

func (m *Memory[T]) GetOneOrNone(ctx context.Context, filters ...repository.Filter) (*T, error) {
	out, err := m.GetOne(ctx, filters...)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return out, err
}

func (m *Memory[T]) List(ctx context.Context, filters ...repository.Filter) ([]*T, error) {
	m.mu.Lock()
	matched, err := m.match(repository.WithoutPaging(filters))
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	orders := m.orders(filters)
	sort.SliceStable(matched, func(i, j int) bool {
		for _, o := range orders {
			c := compare(matched[i].fields[o.Column], matched[j].fields[o.Column])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	if lo, ok := repository.FindFilter[repository.LimitOffset](filters); ok {
		start := min(lo.Offset, len(matched))
		end := len(matched)
		if lo.Limit >= 0 {
			end = min(start+lo.Limit, len(matched))
		}
		matched = matched[start:end]
	}

	out := make([]*T, 0, len(matched))
	for _, r := range matched {
		e := clone(r.entity)
		if m.Hydrate != nil {
			if err := m.Hydrate(ctx, e); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory[T]) ListAndCount(ctx context.Context, filters ...repository.Filter) ([]*T, int64, error) {
	total, err := m.Count(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}
	rows, err := m.List(ctx, filters...)
	return rows, total, err
}

func (m *Memory[T]) Count(_ context.Context, filters ...repository.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched, err := m.match(repository.WithoutPaging(filters))
	return int64(len(matched)), err
}

func (m *Memory[T]) Exists(ctx context.Context, filters ...repository.Filter) (bool, error) {
	n, err := m.Count(ctx, filters...)
	return n > 0, err
}

func (m *Memory[T]) Add(_ context.Context, entity *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prepare(entity)
	if err := m.checkUnique(entity, -1); err != nil {
		return nil, err
	}
	m.rows = append(m.rows, clone(entity))
	return entity, nil
}

func (m *Memory[T]) AddMany(ctx context.Context, entities []*T) ([]*T, error) {
	for _, e := range entities {
		if _, err := m.Add(ctx, e); err != nil {
			return nil, err
		}
	}
	return entities, nil
}

func (m *Memory[T]) Update(_ context.Context, entity *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(idOf(entity))
	if idx < 0 {
		return nil, apperr.NotFound(fmt.Sprintf("No %s found", m.name()))
	}
	if err := m.checkUnique(entity, idx); err != nil {
		return nil, err
	}
	prev := fieldsOf(m.rows[idx])
	_ = models.Assign(entity, map[string]any{"created_at": prev["created_at"], "updated_at": time.Now().UTC()})
	m.rows[idx] = clone(entity)
	return entity, nil
}

func (m *Memory[T]) UpdateMany(ctx context.Context, entities []*T) ([]*T, error) {
	for _, e := range entities {
		if _, err := m.Update(ctx, e); err != nil {
			return nil, err
		}
	}
	return entities, nil
}

func (m *Memory[T]) Upsert(ctx context.Context, entity *T) (*T, error) {
	m.mu.Lock()
	exists := idOf(entity) != uuid.Nil && m.indexOf(idOf(entity)) >= 0
	m.mu.Unlock()
	if exists {
		return m.Update(ctx, entity)
	}
	return m.Add(ctx, entity)
}

func (m *Memory[T]) Delete(ctx context.Context, id uuid.UUID) (*T, error) {
	m.mu.Lock()
	idx := m.indexOf(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil, apperr.NotFound(fmt.Sprintf("No %s found", m.name()))
	}
	row := m.rows[idx]
	m.rows = append(m.rows[:idx], m.rows[idx+1:]...)
	m.mu.Unlock()

	if m.OnDelete != nil {
		if err := m.OnDelete(ctx, row); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func (m *Memory[T]) DeleteMany(ctx context.Context, ids []uuid.UUID) ([]*T, error) {
	var out []*T
	for _, id := range ids {
		row, err := m.Delete(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

type row[T any] struct {
	entity *T
	fields map[string]any
}

func (m *Memory[T]) match(filters []repository.Filter) ([]row[T], error) {
	var out []row[T]
	for _, e := range m.rows {
		fields := fieldsOf(e)
		ok, err := matches(fields, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row[T]{entity: e, fields: fields})
		}
	}
	return out, nil
}

func (m *Memory[T]) orders(filters []repository.Filter) []repository.OrderBy {
	var orders []repository.OrderBy
	for _, f := range filters {
		if o, ok := f.(repository.OrderBy); ok {
			orders = append(orders, o)
		}
	}
	if len(orders) == 0 {
		orders = m.opts.DefaultOrder
	}
	return orders
}

func (m *Memory[T]) prepare(entity *T) {
	if idOf(entity) == uuid.Nil {
		any(entity).(models.Identifiable).SetID(uuid.New())
	}
	now := time.Now().UTC()
	fields := fieldsOf(entity)
	set := map[string]any{}
	for _, col := range []string{"created_at", "updated_at"} {
		if v, ok := fields[col]; ok && isZeroTime(v) {
			set[col] = now
		}
	}
	_ = models.Assign(entity, set)
}

func (m *Memory[T]) checkUnique(entity *T, skip int) error {
	if len(m.Unique) == 0 {
		return nil
	}
	fields := fieldsOf(entity)
	for i, existing := range m.rows {
		if i == skip {
			continue
		}
		other := fieldsOf(existing)
		for _, col := range m.Unique {
			if fields[col] != nil && compare(fields[col], other[col]) == 0 {
				return apperr.Conflict(fmt.Sprintf("A %s matching the supplied data already exists", m.name()), fmt.Errorf("duplicate %s", col))
			}
		}
	}
	return nil
}

func (m *Memory[T]) indexOf(id uuid.UUID) int {
	for i, r := range m.rows {
		if idOf(r) == id {
			return i
		}
	}
	return -1
}

func matches(fields map[string]any, filters []repository.Filter) (bool, error) {
	for _, f := range filters {
		switch f := f.(type) {
		case repository.Equal:
			if compare(fields[f.Column], normalize(f.Value)) != 0 {
				return false, nil
			}
		case repository.In:
			found := false
			for _, v := range f.Values {
				if compare(fields[f.Column], normalize(v)) == 0 {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		case repository.BeforeAfter:
			ts, ok := asTime(fields[f.Column])
			if !ok {
				return false, nil
			}
			if f.Before != nil && !ts.Before(*f.Before) {
				return false, nil
			}
			if f.After != nil && !ts.After(*f.After) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("repositorytest: unsupported filter %T", f)
		}
	}
	return true, nil
}

// normalize gives a filter value the shape it has after a JSON round trip.
func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func compare(a, b any) int {
	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			return ta.Compare(tb)
		}
	}
	switch av := a.(type) {
	case nil:
		if b == nil {
			return 0
		}
		return -1
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	}
	if b == nil {
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || len(s) < 20 || s[4] != '-' || s[10] != 'T' {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	return t, err == nil
}

func isZeroTime(v any) bool {
	t, ok := asTime(v)
	return ok && t.IsZero()
}

func fieldsOf(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("repositorytest: encode %T: %v", v, err))
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("repositorytest: decode %T: %v", v, err))
	}
	return out
}

func clone[T any](v *T) *T {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("repositorytest: encode %T: %v", v, err))
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		panic(fmt.Sprintf("repositorytest: decode %T: %v", v, err))
	}
	return out
}

func idOf(v any) uuid.UUID {
	return v.(models.Identifiable).GetID()
}
