// Package form holds task form values as the user typed them and validates
// them before anything is sent to the backend.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskdesk/internal/service"
)

// Values are the editable fields of a task form.
// All fields are strings so that invalid input can be held and shown back.
type Values struct {
	Title       string `form:"title" validate:"task_title"`
	Description string `form:"description"`
	Priority    string `form:"priority" validate:"task_priority"`
	Status      string `form:"status" validate:"task_status"`
	DueDate     string `form:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// Defaults returns the values of an empty create form.
func Defaults() Values {
	return Values{
		Priority: string(service.DefaultPriority),
		Status:   string(service.DefaultStatus),
	}
}

// FromTask returns form values pre-populated from an existing task.
func FromTask(t service.Task) Values {
	v := Values{
		Title:    t.Title,
		Priority: string(t.Priority),
		Status:   string(t.Status),
	}
	if t.Description != nil {
		v.Description = *t.Description
	}
	if t.DueDate != nil {
		v.DueDate = t.DueDate.UTC().Format(service.DateLayout)
	}
	return v
}

// normalized returns a copy with surrounding whitespace removed from the
// single-line fields.
func (v Values) normalized() Values {
	v.Title = strings.TrimSpace(v.Title)
	v.Priority = strings.TrimSpace(v.Priority)
	v.Status = strings.TrimSpace(v.Status)
	v.DueDate = strings.TrimSpace(v.DueDate)
	return v
}

// Validate checks the field constraints. It returns a *ValidationError
// listing every failing field, or nil.
func (v Values) Validate() error {
	err := validate.Struct(v.normalized())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return ve
}

// ValidateEdit is Validate for an edit of orig. A priority or status the
// client does not know is accepted as long as it is left unchanged.
func (v Values) ValidateEdit(orig service.Task) error {
	n := v.normalized()
	if n.Priority == string(orig.Priority) && !orig.Priority.Valid() {
		n.Priority = string(service.DefaultPriority)
	}
	if n.Status == string(orig.Status) && !orig.Status.Valid() {
		n.Status = string(service.DefaultStatus)
	}
	return n.Validate()
}

// ToCreate validates the values and converts them to a create request.
func (v Values) ToCreate() (service.TaskCreate, error) {
	if err := v.Validate(); err != nil {
		return service.TaskCreate{}, err
	}
	n := v.normalized()
	in := service.TaskCreate{
		Title:    n.Title,
		Priority: service.Priority(n.Priority),
		Status:   service.Status(n.Status),
		DueDate:  parseDate(n.DueDate),
	}
	if n.Description != "" {
		d := n.Description
		in.Description = &d
	}
	return in, nil
}

// ToUpdate validates the values and returns an update holding only the
// fields that differ from orig.
func (v Values) ToUpdate(orig service.Task) (service.TaskUpdate, error) {
	if err := v.ValidateEdit(orig); err != nil {
		return service.TaskUpdate{}, err
	}
	n := v.normalized()
	prev := FromTask(orig)

	var u service.TaskUpdate
	if n.Title != orig.Title {
		title := n.Title
		u.Title = &title
	}
	if n.Description != prev.Description {
		d := n.Description
		u.Description = &d
	}
	if n.Priority != string(orig.Priority) {
		p := service.Priority(n.Priority)
		u.Priority = &p
	}
	if n.Status != string(orig.Status) {
		s := service.Status(n.Status)
		u.Status = &s
	}
	if n.DueDate != prev.DueDate {
		if n.DueDate == "" {
			u.ClearDueDate = true
		} else {
			u.DueDate = parseDate(n.DueDate)
		}
	}
	return u, nil
}

// Set assigns a field by its form name.
func (v *Values) Set(field, value string) error {
	switch field {
	case "title":
		v.Title = value
	case "description":
		v.Description = value
	case "priority":
		v.Priority = value
	case "status":
		v.Status = value
	case "due_date":
		v.DueDate = value
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

// parseDate parses a validated YYYY-MM-DD string as midnight UTC.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.ParseInLocation(service.DateLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &d
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterAlias("task_title", fmt.Sprintf("required,min=%d,max=%d", service.TitleMinLen, service.TitleMaxLen))
	v.RegisterAlias("task_priority", "oneof="+joinEnum(service.Priorities))
	v.RegisterAlias("task_status", "oneof="+joinEnum(service.Statuses))
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("form")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, " ")
}
