// Package db holds the SQL dialect differences between the supported drivers.
package db

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories use.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Dialect describes placeholder and identifier syntax for one driver.
type Dialect struct {
	Name string
	// Numbered placeholders ($1, $2) instead of ?.
	Numbered bool
	// Returning means inserts report the new id via RETURNING instead of LastInsertId.
	Returning bool
	quote     byte
}

var (
	MySQL    = Dialect{Name: "mysql", quote: '`'}
	SQLite   = Dialect{Name: "sqlite", quote: '"'}
	Postgres = Dialect{Name: "pgx", Numbered: true, Returning: true, quote: '"'}
)

// For returns the dialect of a database/sql driver name.
func For(driver string) Dialect {
	switch driver {
	case "sqlite", "sqlite3":
		return SQLite
	case "pgx", "postgres", "postgresql":
		return Postgres
	default:
		return MySQL
	}
}

// Rebind rewrites ? placeholders for numbered dialects. Placeholders inside
// single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inLiteral := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			b.WriteByte(c)
		case c == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Quote quotes a single identifier.
func (d Dialect) Quote(ident string) string {
	q := string(d.quote)
	if q == "" {
		q = `"`
	}
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// IsUniqueViolation reports duplicate-key errors from any supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
