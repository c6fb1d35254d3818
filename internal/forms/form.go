// Package forms binds submitted JSON onto typed payloads, validates them with
// gin's validator and copies the result onto resources.
package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"simplecrud/internal/domain"
)

// FormKey holds errors that belong to no single field.
const FormKey = "_form"

// Form binds raw input onto a resource of type T.
type Form[T domain.Resource] interface {
	// Submit binds data onto target. Field errors mean nothing was applied.
	Submit(ctx context.Context, data []byte, target T) (domain.FieldErrors, error)
	// View describes the form, prefilled with values.
	View(values map[string]any, method, action string) View
	// Values returns target's current form values.
	Values(target T) map[string]any
}

// StructForm is a Form backed by payload struct P. P's json tags name the
// fields and its binding tags declare the constraints.
type StructForm[T domain.Resource, P any] struct {
	Name string
	// Fill presents target's values as a payload, for edit forms.
	Fill func(T) P
	// Apply copies a valid payload onto target.
	Apply func(P, T) error
	// Check runs constraints the tags cannot express.
	Check func(ctx context.Context, p P, target T) domain.FieldErrors
	// Validator defaults to gin's binding.Validator.
	Validator binding.StructValidator
}

func (f StructForm[T, P]) validator() binding.StructValidator {
	if f.Validator != nil {
		return f.Validator
	}
	return binding.Validator
}

func (f StructForm[T, P]) Submit(ctx context.Context, data []byte, target T) (domain.FieldErrors, error) {
	errs := domain.FieldErrors{}
	fields := payloadFields(reflect.TypeOf((*P)(nil)).Elem())

	raw := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			errs.Add(FormKey, "body harus berupa objek JSON")
			return errs, nil
		}
	}
	delete(raw, "_method")

	for key := range raw {
		if _, ok := fields.byJSON[key]; !ok {
			errs.Add(key, "field ini tidak dikenal")
		}
	}
	if !errs.Empty() {
		return errs, nil
	}

	var payload P
	for key, value := range raw {
		fv := reflect.ValueOf(&payload).Elem().FieldByName(fields.byJSON[key].goName)
		if err := json.Unmarshal(value, fv.Addr().Interface()); err != nil {
			errs.Add(key, fmt.Sprintf("nilai harus bertipe %s", fields.byJSON[key].kind))
		}
	}
	if !errs.Empty() {
		return errs, nil
	}

	if err := f.validator().ValidateStruct(&payload); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("%s form: validate: %w", f.Name, err)
		}
		for _, fe := range verrs {
			name := fe.StructField()
			if fd, ok := fields.byGo[name]; ok {
				name = fd.name
			}
			errs.Add(name, message(fe))
		}
		return errs, nil
	}

	if f.Check != nil {
		if extra := f.Check(ctx, payload, target); !extra.Empty() {
			return extra, nil
		}
	}
	if f.Apply != nil {
		if err := f.Apply(payload, target); err != nil {
			return nil, fmt.Errorf("%s form: apply: %w", f.Name, err)
		}
	}
	return nil, nil
}

func (f StructForm[T, P]) Values(target T) map[string]any {
	if f.Fill == nil {
		return map[string]any{}
	}
	return ValuesOf(f.Fill(target), "json")
}

func (f StructForm[T, P]) View(values map[string]any, method, action string) View {
	fields := payloadFields(reflect.TypeOf((*P)(nil)).Elem())
	v := View{Name: f.Name, Method: method, Action: action, Fields: make([]FieldView, 0, len(fields.ordered))}
	for _, fd := range fields.ordered {
		fv := FieldView{Name: fd.name, Type: fd.kind, Required: fd.required}
		if val, ok := values[fd.name]; ok {
			fv.Value = val
		}
		v.Fields = append(v.Fields, fv)
	}
	return v
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "wajib diisi"
	case "email":
		return "format email tidak valid"
	case "min":
		return fmt.Sprintf("nilai terlalu pendek atau terlalu kecil (min %s)", fe.Param())
	case "max":
		return fmt.Sprintf("nilai terlalu panjang atau terlalu besar (maks %s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("pilihan tidak valid (%s)", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("format tanggal tidak valid (%s)", fe.Param())
	default:
		return fmt.Sprintf("nilai tidak memenuhi aturan %q", fe.Tag())
	}
}

type fieldDef struct {
	name     string
	goName   string
	kind     string
	required bool
}

type fieldSet struct {
	ordered []fieldDef
	byJSON  map[string]fieldDef
	byGo    map[string]fieldDef
}

func payloadFields(t reflect.Type) fieldSet {
	set := fieldSet{byJSON: map[string]fieldDef{}, byGo: map[string]fieldDef{}}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if name == "-" {
			continue
		}
		fd := fieldDef{
			name:     name,
			goName:   sf.Name,
			kind:     kindName(sf.Type),
			required: hasRule(sf.Tag.Get("binding"), "required"),
		}
		set.ordered = append(set.ordered, fd)
		set.byJSON[name] = fd
		set.byGo[sf.Name] = fd
	}
	return set
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return sf.Name
	}
	return name
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if strings.TrimSpace(r) == rule {
			return true
		}
	}
	return false
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "string"
	}
}

// ValuesOf flattens the set fields of struct v keyed by tagKey names. Nil
// pointers and empty strings are omitted.
func ValuesOf(v any, tagKey string) map[string]any {
	out := map[string]any{}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return out
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return out
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get(tagKey), ",")
		if name == "" || name == "-" {
			continue
		}
		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		if fv.Kind() == reflect.String && fv.String() == "" {
			continue
		}
		out[name] = fv.Interface()
	}
	return out
}
