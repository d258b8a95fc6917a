package model

import (
	"errors"
	"testing"
)

func validTodo() Todo {
	return Todo{
		Title:     "Buy milk",
		StartedAt: "2024-01-10",
		Repeat:    1,
		Content:   "2%",
		CreatedAt: "2024-01-09 08:30",
	}
}

func TestTodoValidateSuccess(t *testing.T) {
	if err := validTodo().Validate(); err != nil {
		t.Fatalf("expected valid todo, got error: %v", err)
	}
}

func TestTodoValidateCollectsFields(t *testing.T) {
	todo := Todo{Title: "  ", StartedAt: "2024-13-01", Repeat: 0, Content: ""}
	err := todo.Validate()
	if !errors.Is(err, ErrInvalidTodo) {
		t.Fatalf("expected ErrInvalidTodo, got: %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	for _, field := range []string{"title", "content", "repeat", "started_at"} {
		if !verr.Has(field) {
			t.Fatalf("expected %s to fail, got: %v", field, err)
		}
	}
	if verr.Has("delay") {
		t.Fatalf("delay should be valid: %v", err)
	}
}

func TestTodoValidateRejectsBadCounters(t *testing.T) {
	todo := validTodo()
	todo.Delay = -1
	todo.CreatedAt = "yesterday"
	var verr *ValidationError
	if !errors.As(todo.Validate(), &verr) {
		t.Fatal("expected validation error")
	}
	if !verr.Has("delay") || !verr.Has("created_at") {
		t.Fatalf("unexpected fields: %+v", verr.Fields)
	}
}

func TestTodoValidateEditableIgnoresCounters(t *testing.T) {
	todo := validTodo()
	todo.Delay = -1
	todo.CreatedAt = "yesterday"
	if err := todo.ValidateEditable(); err != nil {
		t.Fatalf("counters should not be checked, got: %v", err)
	}

	todo.Repeat = 0
	var verr *ValidationError
	if !errors.As(todo.ValidateEditable(), &verr) {
		t.Fatal("expected validation error")
	}
	if !verr.Has("repeat") || verr.Has("delay") || verr.Has("created_at") {
		t.Fatalf("unexpected fields: %+v", verr.Fields)
	}
}

func TestTodoSameContentIgnoresID(t *testing.T) {
	a := validTodo()
	b := a
	b.ID = 42
	if !a.SameContent(b) {
		t.Fatal("expected same content")
	}
	b.Delay = 1
	if a.SameContent(b) {
		t.Fatal("expected differing content")
	}
}

func TestHistoryValidate(t *testing.T) {
	if err := NewCompletion(3, "2024-01-10").Validate(); err != nil {
		t.Fatalf("expected valid history, got %v", err)
	}
	err := History{Date: "10/01/2024"}.Validate()
	if !errors.Is(err, ErrInvalidHistory) {
		t.Fatalf("expected ErrInvalidHistory, got %v", err)
	}
}
