package repositories

import (
	"fmt"
	"reflect"
	"strings"
)

// FilterBuilder turns a bound filter struct into query predicates. Fields are
// tagged `filter:"column,op"` with op one of eq, neq, like, gte, lte, in.
// Nil pointers, empty strings and empty slices are skipped.
type FilterBuilder struct{}

func (FilterBuilder) AddFilterConditions(filter any, q *Query) error {
	if filter == nil {
		return nil
	}
	v := reflect.ValueOf(filter)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("filter must be a struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("filter")
		if tag == "" || tag == "-" || !sf.IsExported() {
			continue
		}
		column, op, _ := strings.Cut(tag, ",")
		if op == "" {
			op = "eq"
		}
		if !q.HasColumn(column) {
			return fmt.Errorf("filter %s: unknown column %q", sf.Name, column)
		}
		value, ok := filterValue(v.Field(i))
		if !ok {
			continue
		}
		if err := addCondition(q, q.RootAlias()+"."+column, op, value); err != nil {
			return fmt.Errorf("filter %s: %w", sf.Name, err)
		}
	}
	return nil
}

func filterValue(f reflect.Value) (any, bool) {
	for f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return nil, false
		}
		f = f.Elem()
	}
	switch f.Kind() {
	case reflect.String:
		s := strings.TrimSpace(f.String())
		return s, s != ""
	case reflect.Slice:
		if f.Len() == 0 {
			return nil, false
		}
		out := make([]any, f.Len())
		for i := range out {
			out[i] = f.Index(i).Interface()
		}
		return out, true
	default:
		return f.Interface(), true
	}
}

// likeEscaper makes wildcard characters in user input match literally.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func addCondition(q *Query, column, op string, value any) error {
	switch op {
	case "eq":
		q.AndWhere(column+" = ?", value)
	case "neq":
		q.AndWhere(column+" <> ?", value)
	case "gte":
		q.AndWhere(column+" >= ?", value)
	case "lte":
		q.AndWhere(column+" <= ?", value)
	case "like":
		q.AndWhere(column+" LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(fmt.Sprint(value))+"%")
	case "in":
		values, ok := value.([]any)
		if !ok {
			values = []any{value}
		}
		marks := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
		q.AndWhere(column+" IN ("+marks+")", values...)
	default:
		return fmt.Errorf("unsupported operator %q", op)
	}
	return nil
}
