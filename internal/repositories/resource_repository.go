package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "simplecrud/internal/config"
	intdb "simplecrud/internal/db"
	"simplecrud/internal/domain"
)

// Column maps an API field to a table column.
type Column struct {
	Field string
	Name  string
}

// Table maps resource type T onto one SQL table. Columns[0] must be the id.
type Table[T domain.Resource] struct {
	Name    string
	Columns []Column

	Sortable              []string
	StandardSortField     string
	StandardSortDirection string

	// ParseID converts a path id into the id column's Go type.
	ParseID func(id string) (any, error)
	// Scan reads one row in Columns order.
	Scan func(scan func(dest ...any) error) (T, error)
	// Values returns the non-id column values in Columns order.
	Values func(T) []any
	// SetID stores a generated id on a freshly inserted resource.
	SetID func(T, int64)
}

func (t *Table[T]) idColumn() string { return t.Columns[0].Name }

func (t *Table[T]) selectList(alias string) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = alias + "." + c.Name
	}
	return strings.Join(cols, ", ")
}

// SQLRepository is the query side for one resource table.
type SQLRepository[T domain.Resource] struct {
	DB      intdb.Querier
	Dialect intdb.Dialect
	Table   *Table[T]
}

func NewSQLRepository[T domain.Resource](q intdb.Querier, d intdb.Dialect, t *Table[T]) SQLRepository[T] {
	return SQLRepository[T]{DB: q, Dialect: d, Table: t}
}

func (r SQLRepository[T]) db() intdb.Querier {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r SQLRepository[T]) SortableFields() []string      { return r.Table.Sortable }
func (r SQLRepository[T]) StandardSortField() string     { return r.Table.StandardSortField }
func (r SQLRepository[T]) StandardSortDirection() string { return r.Table.StandardSortDirection }

func (r SQLRepository[T]) CreateQuery(alias string) *Query {
	return newQuery(r.Table.Name, alias, r.Table.Columns)
}

// FindOneBy returns the first row whose field equals value, or nil when none matches.
func (r SQLRepository[T]) FindOneBy(ctx context.Context, field, value string) (domain.Resource, error) {
	q := r.CreateQuery("")
	col, ok := q.Column(field)
	if !ok {
		return nil, fmt.Errorf("%s: unknown field %q", r.Table.Name, field)
	}
	var arg any = value
	if field == r.Table.Columns[0].Field && r.Table.ParseID != nil {
		id, err := r.Table.ParseID(value)
		if err != nil {
			return nil, nil
		}
		arg = id
	}
	q.AndWhere(col+" = ?", arg)

	where, args := q.whereSQL()
	query := "SELECT " + r.Table.selectList(q.alias) + " FROM " + r.Dialect.Quote(r.Table.Name) + " " + q.alias + where + " LIMIT 1"
	row := r.db().QueryRowContext(ctx, r.Dialect.Rebind(query), args...)
	res, err := r.Table.Scan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s find: %w", r.Table.Name, err)
	}
	return res, nil
}

// Execute returns every row matching q in q's order.
func (r SQLRepository[T]) Execute(ctx context.Context, q *Query) ([]domain.Resource, error) {
	where, args := q.whereSQL()
	query := "SELECT " + r.Table.selectList(q.alias) + " FROM " + r.Dialect.Quote(r.Table.Name) + " " + q.alias + where + q.orderSQL()
	return r.collect(ctx, query, args)
}

// ExecutePage returns the rows of one window plus the unsliced match count.
func (r SQLRepository[T]) ExecutePage(ctx context.Context, q *Query, offset, limit int) ([]domain.Resource, int, error) {
	where, args := q.whereSQL()
	from := " FROM " + r.Dialect.Quote(r.Table.Name) + " " + q.alias + where

	var total int
	if err := r.db().QueryRowContext(ctx, r.Dialect.Rebind("SELECT COUNT(*)"+from), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s count: %w", r.Table.Name, err)
	}
	if offset >= total {
		return []domain.Resource{}, total, nil
	}

	query := "SELECT " + r.Table.selectList(q.alias) + from + q.pageOrderSQL(r.Table.idColumn()) + " LIMIT ? OFFSET ?"
	items, err := r.collect(ctx, query, append(args, limit, offset))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r SQLRepository[T]) collect(ctx context.Context, query string, args []any) ([]domain.Resource, error) {
	rows, err := r.db().QueryContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", r.Table.Name, err)
	}
	defer rows.Close()

	out := []domain.Resource{}
	for rows.Next() {
		res, err := r.Table.Scan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", r.Table.Name, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", r.Table.Name, err)
	}
	return out, nil
}
