package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateSprint checks a Sprint for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the sprint is valid.
func ValidateSprint(s *Sprint) error {
	var ve ValidationError

	name := strings.TrimSpace(s.Name)
	if name == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	} else if len([]rune(name)) > 200 {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "must be 200 characters or fewer"})
	}

	if strings.TrimSpace(s.ProjectID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "project_id", Message: "is required"})
	}

	if s.EndDate.Before(s.StartDate) {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "end_date",
			Message: fmt.Sprintf("must not be before start_date (%s < %s)", s.EndDate, s.StartDate),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateTask checks a Task for constraint violations.
func ValidateTask(t *Task) error {
	var ve ValidationError

	title := strings.TrimSpace(t.Title)
	if title == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	} else if len([]rune(title)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "must be 500 characters or fewer"})
	}

	if !t.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value %q", t.Status),
		})
	}

	// Hours: non-negative.
	if t.EstimateHours < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "estimate_hours",
			Message: fmt.Sprintf("must be >= 0, got %g", t.EstimateHours),
		})
	}
	if t.ActualHours < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "actual_hours",
			Message: fmt.Sprintf("must be >= 0, got %g", t.ActualHours),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
