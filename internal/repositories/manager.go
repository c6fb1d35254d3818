package repositories

import (
	"context"
	"fmt"
	"strings"

	intconfig "simplecrud/internal/config"
	intdb "simplecrud/internal/db"
	"simplecrud/internal/domain"
)

// SQLManager persists resources of type T. Update inserts resources without
// an id and updates the rest.
type SQLManager[T domain.Resource] struct {
	DB      intdb.Querier
	Dialect intdb.Dialect
	Table   *Table[T]
}

func NewSQLManager[T domain.Resource](q intdb.Querier, d intdb.Dialect, t *Table[T]) SQLManager[T] {
	return SQLManager[T]{DB: q, Dialect: d, Table: t}
}

func (m SQLManager[T]) db() intdb.Querier {
	if m.DB != nil {
		return m.DB
	}
	return intconfig.DB
}

func (m SQLManager[T]) typed(r domain.Resource) (T, error) {
	t, ok := r.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s manager: unexpected resource type %T", m.Table.Name, r)
	}
	return t, nil
}

func (m SQLManager[T]) Update(ctx context.Context, r domain.Resource) error {
	res, err := m.typed(r)
	if err != nil {
		return err
	}
	if res.ResourceID() == "" {
		err = m.insert(ctx, res)
	} else {
		err = m.update(ctx, res)
	}
	if intdb.IsUniqueViolation(err) {
		return domain.ConflictError{Resource: m.Table.Name, Msg: "nilai sudah digunakan", Err: err}
	}
	return err
}

func (m SQLManager[T]) insert(ctx context.Context, res T) error {
	cols := m.Table.Columns[1:]
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	query := "INSERT INTO " + m.Dialect.Quote(m.Table.Name) + " (" + strings.Join(names, ", ") + ") VALUES (" + marks + ")"
	values := m.Table.Values(res)

	var id int64
	if m.Dialect.Returning {
		query += " RETURNING " + m.Table.idColumn()
		if err := m.db().QueryRowContext(ctx, m.Dialect.Rebind(query), values...).Scan(&id); err != nil {
			return fmt.Errorf("%s insert: %w", m.Table.Name, err)
		}
	} else {
		result, err := m.db().ExecContext(ctx, m.Dialect.Rebind(query), values...)
		if err != nil {
			return fmt.Errorf("%s insert: %w", m.Table.Name, err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("%s insert id: %w", m.Table.Name, err)
		}
	}
	m.Table.SetID(res, id)
	return nil
}

// update does not check RowsAffected: MySQL reports 0 for unchanged rows.
func (m SQLManager[T]) update(ctx context.Context, res T) error {
	cols := m.Table.Columns[1:]
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c.Name + " = ?"
	}
	id, err := m.parseID(res)
	if err != nil {
		return err
	}
	query := "UPDATE " + m.Dialect.Quote(m.Table.Name) + " SET " + strings.Join(sets, ", ") + " WHERE " + m.Table.idColumn() + " = ?"
	args := append(m.Table.Values(res), id)
	if _, err := m.db().ExecContext(ctx, m.Dialect.Rebind(query), args...); err != nil {
		return fmt.Errorf("%s update: %w", m.Table.Name, err)
	}
	return nil
}

func (m SQLManager[T]) Remove(ctx context.Context, r domain.Resource) error {
	res, err := m.typed(r)
	if err != nil {
		return err
	}
	id, err := m.parseID(res)
	if err != nil {
		return err
	}
	query := "DELETE FROM " + m.Dialect.Quote(m.Table.Name) + " WHERE " + m.Table.idColumn() + " = ?"
	if _, err := m.db().ExecContext(ctx, m.Dialect.Rebind(query), id); err != nil {
		return fmt.Errorf("%s delete: %w", m.Table.Name, err)
	}
	return nil
}

func (m SQLManager[T]) parseID(res T) (any, error) {
	if m.Table.ParseID == nil {
		return res.ResourceID(), nil
	}
	id, err := m.Table.ParseID(res.ResourceID())
	if err != nil {
		return nil, fmt.Errorf("%s: invalid id %q: %w", m.Table.Name, res.ResourceID(), err)
	}
	return id, nil
}
