package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/reminderd/internal/model"
)

type fakeTodos []model.Todo

func (f fakeTodos) ListAll() []model.Todo { return f }

type fakeHistory map[int64]string

func (f fakeHistory) GetHistory(_ context.Context, todoID int64, date string) (model.History, bool, error) {
	if f[todoID] == date {
		return model.NewCompletion(todoID, date), true, nil
	}
	return model.History{}, false, nil
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 9, Minute: 5}, got)
	assert.Equal(t, "09:05", got.String())

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:5"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateSpec(t *testing.T) {
	assert.NoError(t, ValidateSpec("@daily"))
	assert.NoError(t, ValidateSpec("@every 15m"))
	assert.NoError(t, ValidateSpec("0 8 * * *"))
	assert.Error(t, ValidateSpec("whenever"))
}

func TestPlannerSchedulesDueAndOpenTodos(t *testing.T) {
	todos := fakeTodos{
		{ID: 1, Title: "daily", StartedAt: "2024-03-01", Repeat: 1},
		{ID: 2, Title: "every other day", StartedAt: "2024-02-29", Repeat: 2},
		{ID: 3, Title: "done already", StartedAt: "2024-03-01", Repeat: 1},
		{ID: 4, Title: "not started", StartedAt: "2024-03-05", Repeat: 1},
	}
	history := fakeHistory{3: "2024-03-01"}

	engine := NewEngine(8)
	p := NewPlanner(engine, todos, history, PlannerOptions{TimeOfDay: TimeOfDay{Hour: 9}}, zerolog.Nop())
	now := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	added, err := p.Plan(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, engine.Pending())

	ev, ok := engine.peek()
	require.True(t, ok)
	assert.Equal(t, int64(1), ev.TodoID)
	assert.Equal(t, "2024-03-01", ev.Date)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), ev.TriggerAt)

	added, err = p.Plan(t.Context())
	require.NoError(t, err)
	assert.Zero(t, added)

	p.Forget(1)
	assert.Zero(t, engine.Pending())
	added, err = p.Plan(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestPlannerTriggersImmediatelyAfterReminderTime(t *testing.T) {
	todos := fakeTodos{{ID: 1, Title: "daily", StartedAt: "2024-03-01", Repeat: 1}}
	engine := NewEngine(1)
	p := NewPlanner(engine, todos, fakeHistory{}, PlannerOptions{TimeOfDay: TimeOfDay{Hour: 9}}, zerolog.Nop())
	now := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	_, err := p.Plan(t.Context())
	require.NoError(t, err)
	ev, ok := engine.peek()
	require.True(t, ok)
	assert.Equal(t, now, ev.TriggerAt)
}

func TestPlannerStartEmitsDueEvent(t *testing.T) {
	today := model.FormatDate(time.Now())
	todos := fakeTodos{{ID: 7, Title: "stretch", StartedAt: today, Repeat: 1}}
	engine := NewEngine(4)
	p := NewPlanner(engine, todos, fakeHistory{}, PlannerOptions{Spec: "@every 1h"}, zerolog.Nop())

	require.NoError(t, p.Start(t.Context()))
	defer p.Stop()

	ev := waitEvent(t, engine.C(), time.Second)
	assert.Equal(t, int64(7), ev.TodoID)
	assert.Equal(t, today, ev.Date)
}

func TestPlannerRejectsBadSpec(t *testing.T) {
	p := NewPlanner(NewEngine(1), fakeTodos{}, fakeHistory{}, PlannerOptions{Spec: "nope"}, zerolog.Nop())
	require.Error(t, p.Start(t.Context()))
}
