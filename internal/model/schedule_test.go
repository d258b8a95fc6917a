package model

import (
	"testing"
	"time"
)

func TestTodoDueOnEveryNDays(t *testing.T) {
	todo := Todo{StartedAt: "2026-02-01", Repeat: 3}
	cases := map[string]bool{
		"2026-01-31": false,
		"2026-02-01": true,
		"2026-02-02": false,
		"2026-02-04": true,
		"2026-02-07": true,
		"2026-02-08": false,
	}
	for date, want := range cases {
		d, err := time.Parse(DateLayout, date)
		if err != nil {
			t.Fatalf("parse %s: %v", date, err)
		}
		if got := todo.DueOn(d); got != want {
			t.Fatalf("DueOn(%s) = %v, want %v", date, got, want)
		}
	}
}

func TestTodoDueOnHonoursDelay(t *testing.T) {
	todo := Todo{StartedAt: "2026-02-01", Repeat: 2, Delay: 1}
	if todo.DueOn(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatal("delayed todo should not be due on its start date")
	}
	if !todo.DueOn(time.Date(2026, 2, 4, 23, 0, 0, 0, time.UTC)) {
		t.Fatal("expected due two days after the shifted anchor")
	}
}

func TestTodoNextDue(t *testing.T) {
	todo := Todo{StartedAt: "2026-02-01", Repeat: 2}
	next, err := todo.NextDue(time.Date(2026, 2, 6, 18, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next due failed: %v", err)
	}
	if next.Format(DateLayout) != "2026-02-07" {
		t.Fatalf("unexpected next due: %s", next.Format(DateLayout))
	}

	same, err := todo.NextDue(time.Date(2026, 2, 5, 18, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next due failed: %v", err)
	}
	if same.Format(DateLayout) != "2026-02-05" {
		t.Fatalf("a due day should be its own next due, got %s", same.Format(DateLayout))
	}

	early, err := todo.NextDue(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next due failed: %v", err)
	}
	if early.Format(DateLayout) != "2026-02-01" {
		t.Fatalf("expected anchor before start, got %s", early.Format(DateLayout))
	}
}

func TestTodoPreview(t *testing.T) {
	todo := Todo{StartedAt: "2026-02-01", Repeat: 3}
	list, err := todo.Preview(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), 3)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	want := []string{"2026-02-04", "2026-02-07", "2026-02-10"}
	for i := range want {
		if got := list[i].Format(DateLayout); got != want[i] {
			t.Fatalf("preview[%d] got %s want %s", i, got, want[i])
		}
	}
}

func TestTodoNextDueRejectsInvalidSchedule(t *testing.T) {
	if _, err := (Todo{StartedAt: "2026-02-01"}).NextDue(time.Now()); err == nil {
		t.Fatal("expected error for zero repeat")
	}
	if (Todo{StartedAt: "bad", Repeat: 1}).DueOn(time.Now()) {
		t.Fatal("invalid todo should never be due")
	}
}
