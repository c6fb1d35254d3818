package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// table is a portable CREATE TABLE description; "{{pk}}" is replaced by
// the dialect's auto-increment primary key column type.
type table struct {
	name    string
	columns []string
}

var schema = []table{
	{name: "vehicles", columns: []string{
		"id {{pk}}",
		"vehicle_code VARCHAR(32) NOT NULL UNIQUE",
		"plate_number VARCHAR(16) NOT NULL UNIQUE",
		"color VARCHAR(32) NULL",
		"kilometers INTEGER NULL",
		"last_service VARCHAR(10) NULL",
	}},
	{name: "drivers", columns: []string{
		"id {{pk}}",
		"name VARCHAR(100) NOT NULL",
		"phone VARCHAR(20) NOT NULL",
		"role VARCHAR(20) NOT NULL DEFAULT 'driver'",
		"vehicle_assigned VARCHAR(32) NULL",
	}},
	{name: "users", columns: []string{
		"id {{pk}}",
		"name VARCHAR(100) NOT NULL",
		"username VARCHAR(50) NOT NULL UNIQUE",
		"email VARCHAR(190) NOT NULL UNIQUE",
		"phone VARCHAR(20) NULL",
		"password_hash VARCHAR(100) NOT NULL",
		"role VARCHAR(20) NOT NULL DEFAULT 'user'",
		"status VARCHAR(20) NOT NULL DEFAULT 'active'",
	}},
}

func (d Dialect) primaryKey() string {
	switch d.Name {
	case SQLite.Name:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	case Postgres.Name:
		return "BIGSERIAL PRIMARY KEY"
	default:
		return "BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY"
	}
}

// CreateTableSQL renders the CREATE TABLE statement for one schema table.
func (d Dialect) CreateTableSQL(name string) (string, error) {
	for _, t := range schema {
		if t.name != name {
			continue
		}
		cols := strings.ReplaceAll(strings.Join(t.columns, ",\n\t"), "{{pk}}", d.primaryKey())
		return "CREATE TABLE IF NOT EXISTS " + d.Quote(t.name) + " (\n\t" + cols + "\n)", nil
	}
	return "", fmt.Errorf("unknown table %q", name)
}

// Tables lists the managed table names in creation order.
func Tables() []string {
	out := make([]string, len(schema))
	for i, t := range schema {
		out[i] = t.name
	}
	return out
}

// HasTable reports whether table exists in the connected database.
func HasTable(ctx context.Context, q Querier, d Dialect, table string) bool {
	var query string
	switch d.Name {
	case SQLite.Name:
		query = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? LIMIT 1`
	case Postgres.Name:
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ? LIMIT 1`
	default:
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ? LIMIT 1`
	}
	var name sql.NullString
	if err := q.QueryRowContext(ctx, d.Rebind(query), table).Scan(&name); err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// Migrate creates every missing managed table and returns the names created.
func Migrate(ctx context.Context, q Querier, d Dialect) ([]string, error) {
	created := []string{}
	for _, name := range Tables() {
		if HasTable(ctx, q, d, name) {
			continue
		}
		stmt, err := d.CreateTableSQL(name)
		if err != nil {
			return created, err
		}
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return created, fmt.Errorf("create table %s: %w", name, err)
		}
		created = append(created, name)
	}
	return created, nil
}
