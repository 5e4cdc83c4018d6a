package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows, orders or pages a query. Filters combine conjunctively.
type Filter interface {
	Apply(db *gorm.DB) *gorm.DB
}

func column(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

// Equal matches rows whose column equals Value.
type Equal struct {
	Column string
	Value  any
}

func (f Equal) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(clause.Eq{Column: column(f.Column), Value: f.Value})
}

// In matches rows whose column is one of Values. An empty list matches nothing.
type In struct {
	Column string
	Values []any
}

func (f In) Apply(db *gorm.DB) *gorm.DB {
	if len(f.Values) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where(clause.IN{Column: column(f.Column), Values: f.Values})
}

// BeforeAfter bounds a timestamp column. Both bounds are exclusive and either
// may be nil.
type BeforeAfter struct {
	Column string
	Before *time.Time
	After  *time.Time
}

func (f BeforeAfter) Apply(db *gorm.DB) *gorm.DB {
	if f.Before != nil {
		db = db.Where(clause.Lt{Column: column(f.Column), Value: *f.Before})
	}
	if f.After != nil {
		db = db.Where(clause.Gt{Column: column(f.Column), Value: *f.After})
	}
	return db
}

type OrderBy struct {
	Column string
	Desc   bool
}

func (f OrderBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: column(f.Column), Desc: f.Desc})
}

type LimitOffset struct {
	Limit  int
	Offset int
}

func (f LimitOffset) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(f.Limit).Offset(f.Offset)
}

// FindFilter returns the first filter of type F.
func FindFilter[F Filter](filters []Filter) (F, bool) {
	for _, f := range filters {
		if match, ok := f.(F); ok {
			return match, true
		}
	}
	var zero F
	return zero, false
}

// WithoutPaging drops OrderBy and LimitOffset filters, leaving only the
// filters that decide which rows match.
func WithoutPaging(filters []Filter) []Filter {
	out := make([]Filter, 0, len(filters))
	for _, f := range filters {
		switch f.(type) {
		case OrderBy, LimitOffset:
			continue
		}
		out = append(out, f)
	}
	return out
}

func hasOrder(filters []Filter) bool {
	_, ok := FindFilter[OrderBy](filters)
	return ok
}
