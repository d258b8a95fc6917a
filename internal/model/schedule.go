package model

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Anchor is the first due date: StartedAt shifted by the accumulated delay.
func (t Todo) Anchor() (time.Time, error) {
	start, err := ParseDate(t.StartedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: started_at: %v", ErrInvalidTodo, err)
	}
	if t.Repeat < 1 {
		return time.Time{}, fmt.Errorf("%w: repeat: must be at least 1, got %d", ErrInvalidTodo, t.Repeat)
	}
	return start.AddDate(0, 0, t.Delay), nil
}

// DueOn reports whether the todo falls due on the calendar date of d.
func (t Todo) DueOn(d time.Time) bool {
	anchor, err := t.Anchor()
	if err != nil {
		return false
	}
	date := truncateDay(d)
	if date.Before(anchor) {
		return false
	}
	elapsed := int(date.Sub(anchor) / day)
	return elapsed%t.Repeat == 0
}

// NextDue returns the first due date on or after the calendar date of from.
func (t Todo) NextDue(from time.Time) (time.Time, error) {
	anchor, err := t.Anchor()
	if err != nil {
		return time.Time{}, err
	}
	date := truncateDay(from)
	if !date.After(anchor) {
		return anchor, nil
	}
	elapsed := int(date.Sub(anchor) / day)
	steps := elapsed / t.Repeat
	if elapsed%t.Repeat != 0 {
		steps++
	}
	return anchor.AddDate(0, 0, steps*t.Repeat), nil
}

// Preview lists the next count due dates starting at from.
func (t Todo) Preview(from time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return []time.Time{}, nil
	}
	out := make([]time.Time, 0, count)
	cursor := from
	for i := 0; i < count; i++ {
		next, err := t.NextDue(cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		cursor = next.AddDate(0, 0, 1)
	}
	return out, nil
}

// truncateDay maps any instant to UTC midnight of its local calendar date.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
