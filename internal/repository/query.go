package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Op identifies how a Condition compares a column.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpRaw
)

// Condition is one filter term of a Query. Eq and In conditions name a
// column; Raw conditions carry SQL and bind arguments.
type Condition struct {
	Op     Op
	Column string
	SQL    string
	Values []any
}

// Query describes a read: filters, eager-loaded relations,
// ordering and paging. It is built from Options and never persisted.
type Query struct {
	Conditions []Condition
	Includes   []string
	Order      string
	Limit      int
	Offset     int
}

type Option func(*Query)

// Build folds options into a Query.
func Build(opts ...Option) Query {
	var q Query
	for _, opt := range opts {
		if opt != nil {
			opt(&q)
		}
	}
	return q
}

// Eq filters rows whose column equals value.
func Eq(column string, value any) Option {
	return func(q *Query) {
		q.Conditions = append(q.Conditions, Condition{Op: OpEq, Column: column, Values: []any{value}})
	}
}

// In filters rows whose column is one of values.
func In[V any](column string, values []V) Option {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return func(q *Query) {
		q.Conditions = append(q.Conditions, Condition{Op: OpIn, Column: column, Values: vals})
	}
}

// Where adds a raw SQL predicate. Prefer Eq and In where possible.
func Where(sql string, args ...any) Option {
	return func(q *Query) {
		q.Conditions = append(q.Conditions, Condition{Op: OpRaw, SQL: sql, Values: args})
	}
}

// Include requests eager loading of navigation relations by field name,
// e.g. "Reviews" or "SellerProducts".
func Include(relations ...string) Option {
	return func(q *Query) {
		q.Includes = append(q.Includes, relations...)
	}
}

func OrderBy(order string) Option {
	return func(q *Query) {
		q.Order = order
	}
}

// Page limits the result window. A non-positive limit means no limit.
func Page(limit, offset int) Option {
	return func(q *Query) {
		q.Limit = limit
		q.Offset = offset
	}
}

func (c Condition) apply(tx *gorm.DB) *gorm.DB {
	switch c.Op {
	case OpEq:
		return tx.Where(clause.Eq{Column: clause.Column{Name: c.Column}, Value: c.Values[0]})
	case OpIn:
		return tx.Where(clause.IN{Column: clause.Column{Name: c.Column}, Values: c.Values})
	default:
		return tx.Where(c.SQL, c.Values...)
	}
}

func (q Query) apply(tx *gorm.DB) *gorm.DB {
	for _, c := range q.Conditions {
		tx = c.apply(tx)
	}
	for _, rel := range q.Includes {
		tx = tx.Preload(rel)
	}
	if q.Order != "" {
		tx = tx.Order(q.Order)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	return tx
}
