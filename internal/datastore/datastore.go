// Package datastore is a small table-oriented client over gorm: select, insert, update and
// delete rows with equality filters and column ordering.
package datastore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned by First when no row matches.
	ErrNotFound = errors.New("datastore: record not found")
	// ErrDuplicate is returned when an insert or update violates a unique constraint.
	ErrDuplicate = errors.New("datastore: duplicate key")
	// ErrMissingFilter guards Update and Delete against touching a whole table.
	ErrMissingFilter = errors.New("datastore: update and delete require at least one filter")
)

// Filter is a column equality condition.
type Filter struct {
	Column string
	Value  any
}

// Order sorts by one column.
type Order struct {
	Column string
	Desc   bool
}

// Query describes a select. Zero value selects every column of every row.
type Query struct {
	Columns []string
	Filters []Filter
	Orders  []Order
	// Preload names associations to load, optionally restricted to columns.
	Preload map[string][]string
	Limit   int
}

func Eq(column string, value any) Filter { return Filter{Column: column, Value: value} }
func Asc(column string) Order            { return Order{Column: column} }
func Desc(column string) Order           { return Order{Column: column, Desc: true} }

// Client wraps a *gorm.DB.
type Client struct {
	db *gorm.DB
}

// New returns a Client bound to db.
func New(db *gorm.DB) *Client {
	return &Client{db: db}
}

// DB exposes the underlying connection for callers that need raw access (migrations, seeding).
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Table is a typed handle on the table backing T.
type Table[T any] struct {
	db *gorm.DB
}

// From returns the table handle for model T.
func From[T any](c *Client) Table[T] {
	return Table[T]{db: c.db}
}

// Select returns every row matching q.
func (t Table[T]) Select(ctx context.Context, q Query) ([]T, error) {
	var rows []T
	if err := t.build(ctx, q).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// First returns the first row matching q or ErrNotFound.
func (t Table[T]) First(ctx context.Context, q Query) (*T, error) {
	q.Limit = 1
	rows, err := t.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// Count returns the number of rows matching filters.
func (t Table[T]) Count(ctx context.Context, filters ...Filter) (int64, error) {
	var n int64
	db := t.db.WithContext(ctx).Model(new(T))
	if len(filters) > 0 {
		db = db.Where(conditions(filters))
	}
	if err := db.Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// Exists reports whether any row matches filters.
func (t Table[T]) Exists(ctx context.Context, filters ...Filter) (bool, error) {
	n, err := t.Count(ctx, filters...)
	return n > 0, err
}

// Insert creates row and fills generated columns back into it.
func (t Table[T]) Insert(ctx context.Context, row *T) error {
	if err := t.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Update applies values to the rows matching filters and returns them as stored afterwards.
// Keys of values are column names.
func (t Table[T]) Update(ctx context.Context, values map[string]any, filters ...Filter) ([]T, error) {
	if len(filters) == 0 {
		return nil, ErrMissingFilter
	}
	if len(values) > 0 {
		err := t.db.WithContext(ctx).Model(new(T)).Where(conditions(filters)).Updates(values).Error
		if err != nil {
			return nil, translate(err)
		}
	}
	return t.Select(ctx, Query{Filters: filters})
}

// Delete removes the rows matching filters and returns what was removed.
func (t Table[T]) Delete(ctx context.Context, filters ...Filter) ([]T, error) {
	if len(filters) == 0 {
		return nil, ErrMissingFilter
	}
	rows, err := t.Select(ctx, Query{Filters: filters})
	if err != nil {
		return nil, err
	}
	if err := t.db.WithContext(ctx).Where(conditions(filters)).Delete(new(T)).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (t Table[T]) build(ctx context.Context, q Query) *gorm.DB {
	db := t.db.WithContext(ctx).Model(new(T))
	if len(q.Columns) > 0 {
		db = db.Select(q.Columns)
	}
	if len(q.Filters) > 0 {
		db = db.Where(conditions(q.Filters))
	}
	for _, o := range q.Orders {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	for assoc, cols := range q.Preload {
		cols := cols
		if len(cols) == 0 {
			db = db.Preload(assoc)
			continue
		}
		db = db.Preload(assoc, func(tx *gorm.DB) *gorm.DB { return tx.Select(cols) })
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	return db
}

func conditions(filters []Filter) clause.AndConditions {
	exprs := make([]clause.Expression, 0, len(filters))
	for _, f := range filters {
		exprs = append(exprs, clause.Eq{Column: clause.Column{Name: f.Column}, Value: f.Value})
	}
	return clause.AndConditions{Exprs: exprs}
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
