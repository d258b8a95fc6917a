package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar date format used for StartedAt and History.Date.
	DateLayout = "2006-01-02"
	// TimestampLayout is the creation timestamp format.
	TimestampLayout = "2006-01-02 15:04"
)

var (
	ErrInvalidTodo    = errors.New("model: invalid todo")
	ErrInvalidHistory = errors.New("model: invalid history")
)

// FieldError names a single failing field.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError collects every failing field of a record.
type ValidationError struct {
	Kind   error
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Has reports whether the named field failed.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

type Todo struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	StartedAt string `json:"started_at"`
	Repeat    int    `json:"repeat"`
	Content   string `json:"content"`
	Delay     int    `json:"delay"`
	CreatedAt string `json:"created_at"`
}

// Validate checks the user-editable fields and the stored counters.
func (t Todo) Validate() error {
	verr := t.checkEditable()
	if t.Delay < 0 {
		verr.add("delay", "must not be negative")
	}
	if t.CreatedAt != "" {
		if _, err := time.Parse(TimestampLayout, t.CreatedAt); err != nil {
			verr.add("created_at", fmt.Sprintf("expected %s", TimestampLayout))
		}
	}
	return verr.orNil()
}

// ValidateEditable checks only title, content, repeat and started_at.
// Delay and CreatedAt are ignored.
func (t Todo) ValidateEditable() error {
	return t.checkEditable().orNil()
}

func (t Todo) checkEditable() *ValidationError {
	verr := &ValidationError{Kind: ErrInvalidTodo}
	if strings.TrimSpace(t.Title) == "" {
		verr.add("title", "required")
	}
	if strings.TrimSpace(t.Content) == "" {
		verr.add("content", "required")
	}
	if t.Repeat < 1 {
		verr.add("repeat", fmt.Sprintf("must be at least 1, got %d", t.Repeat))
	}
	if _, err := ParseDate(t.StartedAt); err != nil {
		verr.add("started_at", err.Error())
	}
	return verr
}

// SameContent reports whether two todos match in every field except ID.
func (t Todo) SameContent(other Todo) bool {
	t.ID = other.ID
	return t == other
}

// ParseDate parses a YYYY-MM-DD string as a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, errors.New("required")
	}
	d, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected %s", DateLayout)
	}
	return d, nil
}

// FormatDate returns the calendar date of t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTimestamp returns t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
