package forms

import "simplecrud/internal/domain"

// FieldView describes one form field.
type FieldView struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Value    any    `json:"value,omitempty"`
}

// View is the serializable representation of a form.
type View struct {
	Name   string             `json:"name"`
	Method string             `json:"method"`
	Action string             `json:"action"`
	Fields []FieldView        `json:"fields"`
	Errors domain.FieldErrors `json:"errors,omitempty"`
}
