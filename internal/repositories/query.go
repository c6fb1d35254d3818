package repositories

import (
	"strings"

	"simplecrud/internal/domain"
)

type predicate struct {
	expr string
	args []any
}

type ordering struct {
	column    string
	direction string
}

// Query is a SELECT scoped to one table. Predicates are AND-joined and refer
// to columns through the root alias, e.g. "e.plate_number LIKE ?".
type Query struct {
	table   string
	alias   string
	columns map[string]string
	where   []predicate
	order   *ordering
}

func newQuery(table, alias string, columns []Column) *Query {
	if alias == "" {
		alias = "e"
	}
	byField := make(map[string]string, len(columns))
	for _, c := range columns {
		byField[c.Field] = c.Name
	}
	return &Query{table: table, alias: alias, columns: byField}
}

// RootAlias returns the alias the table is selected under.
func (q *Query) RootAlias() string { return q.alias }

// Column resolves an API field name to its qualified column.
func (q *Query) Column(field string) (string, bool) {
	col, ok := q.columns[field]
	if !ok {
		return "", false
	}
	return q.alias + "." + col, true
}

// HasColumn reports whether column (unqualified) belongs to the table.
func (q *Query) HasColumn(column string) bool {
	for _, c := range q.columns {
		if c == column {
			return true
		}
	}
	return false
}

// AndWhere adds a predicate.
func (q *Query) AndWhere(expr string, args ...any) *Query {
	q.where = append(q.where, predicate{expr: expr, args: args})
	return q
}

// OrderBy replaces the ordering. Unknown fields or directions leave the
// query unordered.
func (q *Query) OrderBy(field, direction string) *Query {
	col, ok := q.Column(field)
	dir, valid := domain.NormalizeDirection(direction)
	if !ok || !valid {
		return q
	}
	q.order = &ordering{column: col, direction: strings.ToUpper(dir)}
	return q
}

// Ordered reports whether an ORDER BY clause is set.
func (q *Query) Ordered() bool { return q.order != nil }

// whereSQL renders " WHERE ..." (or "") and its arguments.
func (q *Query) whereSQL() (string, []any) {
	if len(q.where) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(q.where))
	args := []any{}
	for _, p := range q.where {
		parts = append(parts, "("+p.expr+")")
		args = append(args, p.args...)
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func (q *Query) orderSQL() string {
	if q.order == nil {
		return ""
	}
	return " ORDER BY " + q.order.column + " " + q.order.direction
}

// pageOrderSQL is orderSQL with idColumn appended as a tie-break, so that
// LIMIT/OFFSET windows do not overlap or skip rows.
func (q *Query) pageOrderSQL(idColumn string) string {
	id := q.alias + "." + idColumn
	switch {
	case q.order == nil:
		return " ORDER BY " + id + " ASC"
	case q.order.column == id:
		return q.orderSQL()
	default:
		return q.orderSQL() + ", " + id + " ASC"
	}
}
