package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// NotFoundError is returned when an id matches nothing of the declared type.
type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource != "" && e.ID != "":
		return fmt.Sprintf("%s %s tidak ditemukan", e.Resource, e.ID)
	case e.Resource != "":
		return fmt.Sprintf("%s tidak ditemukan", e.Resource)
	default:
		return "data tidak ditemukan"
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ForbiddenError is returned when a capability predicate denies the actor.
type ForbiddenError struct {
	Resource string
	Action   string
}

func (e ForbiddenError) Error() string {
	if e.Resource == "" || e.Action == "" {
		return "akses ditolak"
	}
	return fmt.Sprintf("akses ditolak: %s %s", e.Action, e.Resource)
}

// FieldErrors maps a submitted field name to its violation messages.
type FieldErrors map[string][]string

// Add appends msg for field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Empty reports whether no violation was recorded.
func (f FieldErrors) Empty() bool { return len(f) == 0 }

// Names returns the field names in sorted order.
func (f FieldErrors) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidationError carries form or filter binding failures.
type ValidationError struct {
	Field  string
	Msg    string
	Fields FieldErrors
	Err    error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if len(e.Fields) > 0 {
		return "data tidak valid: " + strings.Join(e.Fields.Names(), ", ")
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "validasi gagal"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("konflik %s: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("konflik %s", e.Resource)
	default:
		return "konflik data"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

// AsValidation extracts the ValidationError from err's chain.
func AsValidation(err error) (ValidationError, bool) {
	var target ValidationError
	ok := errors.As(err, &target)
	return target, ok
}

// UnauthorizedError is returned for missing or bad credentials.
type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg == "" {
		return "tidak terautentikasi"
	}
	return e.Msg
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}
