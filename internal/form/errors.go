package form

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a validation failure scoped to one form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every failing field of a form.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// For returns the message for field, or "" if the field is valid.
func (e *ValidationError) For(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

var fieldLabels = map[string]string{
	"title":       "title",
	"description": "description",
	"priority":    "priority",
	"status":      "status",
	"due_date":    "due date",
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.ActualTag() {
	case "required":
		return label + " is required"
	case "min":
		return label + " must be at least " + fe.Param() + " character"
	case "max":
		return label + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return label + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return label + " must be a date in YYYY-MM-DD format"
	}
	return label + " is invalid"
}
