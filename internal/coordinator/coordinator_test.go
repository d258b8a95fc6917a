package coordinator

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/reminderd/internal/editflow"
	"github.com/sandeepkv93/reminderd/internal/model"
	"github.com/sandeepkv93/reminderd/internal/storage"
	"github.com/sandeepkv93/reminderd/internal/store"
)

type fixture struct {
	c       *Coordinator
	todos   *store.TodoStore
	history *store.HistoryStore
	clock   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "coord.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	todos, err := store.NewTodoStore(t.Context(), repo, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(todos.Close)
	history := store.NewHistoryStore(repo, zerolog.Nop())

	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f := &fixture{todos: todos, history: history, clock: &clock}
	f.c = New(todos, history, func() time.Time { return *f.clock }, zerolog.Nop())
	return f
}

func (f *fixture) add(t *testing.T, form editflow.Form) model.Todo {
	t.Helper()
	res, err := f.c.BuildForm(f.c.OpenAdd(), form)
	require.NoError(t, err)
	todo, err := f.c.Submit(t.Context(), res)
	require.NoError(t, err)
	return todo
}

var milkForm = editflow.Form{Title: "Buy milk", StartedAt: "2024-03-01", Repeat: "1", Content: "2 liters"}

func TestBuyMilkScenario(t *testing.T) {
	f := newFixture(t)
	todo := f.add(t, milkForm)

	assert.NotZero(t, todo.ID)
	assert.Equal(t, 0, todo.Delay)
	assert.Equal(t, "2024-03-01 10:00", todo.CreatedAt)

	stored, err := f.todos.GetOne(t.Context(), todo.ID)
	require.NoError(t, err)
	assert.True(t, stored.SameContent(todo))
}

func TestRepeatZeroLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	form := milkForm
	form.Repeat = "0"

	_, err := f.c.BuildForm(f.c.OpenAdd(), form)
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "repeat", fieldErrs[0].Field)

	_, err = f.c.Submit(t.Context(), editflow.Result{
		Op:   editflow.OpInsert,
		Todo: model.Todo{Title: "Buy milk", StartedAt: "2024-03-01", Repeat: 0, Content: "2 liters"},
	})
	require.ErrorIs(t, err, model.ErrInvalidTodo)
	assert.Empty(t, f.todos.ListAll())
}

func TestEditKeepsIdentityFields(t *testing.T) {
	f := newFixture(t)
	todo := f.add(t, milkForm)

	*f.clock = f.clock.Add(48 * time.Hour)
	req, err := f.c.OpenEdit(t.Context(), todo.ID)
	require.NoError(t, err)
	assert.Equal(t, editflow.TypeEdit, req.Type)

	form := editflow.FormFromRequest(req, *f.clock)
	form.Title = "Buy oat milk"
	form.Repeat = "7"
	res, err := f.c.BuildForm(req, form)
	require.NoError(t, err)

	updated, err := f.c.Submit(t.Context(), res)
	require.NoError(t, err)
	assert.Equal(t, todo.ID, updated.ID)
	assert.Equal(t, todo.Delay, updated.Delay)
	assert.Equal(t, todo.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.Equal(t, 7, updated.Repeat)
}

func TestOpenEditMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.OpenEdit(t.Context(), 77)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMarkCompleteTwiceKeepsOneRecord(t *testing.T) {
	f := newFixture(t)
	todo := f.add(t, milkForm)

	first, created, err := f.c.MarkComplete(t.Context(), todo.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "2024-03-01", first.Date)

	second, created, err := f.c.MarkComplete(t.Context(), todo.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	list, err := f.c.History(t.Context(), todo.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMarkCompleteConcurrent(t *testing.T) {
	f := newFixture(t)
	todo := f.add(t, milkForm)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := f.c.MarkComplete(t.Context(), todo.ID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)

	list, err := f.history.ListByTodo(t.Context(), todo.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUndoComplete(t *testing.T) {
	f := newFixture(t)
	todo := f.add(t, milkForm)

	require.ErrorIs(t, f.c.UndoComplete(t.Context(), todo.ID), ErrNotCompleted)

	_, _, err := f.c.MarkComplete(t.Context(), todo.ID)
	require.NoError(t, err)
	require.NoError(t, f.c.UndoComplete(t.Context(), todo.ID))

	_, ok, err := f.history.GetHistory(t.Context(), todo.ID, "2024-03-01")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostponeChangesNothing(t *testing.T) {
	f := newFixture(t)
	todo := f.add(t, milkForm)
	before := f.todos.Snapshot().Version

	out, err := f.c.Postpone(t.Context(), todo.ID, true)
	require.NoError(t, err)
	assert.Equal(t, PostponeAcknowledged, out)

	out, err = f.c.Postpone(t.Context(), todo.ID, false)
	require.NoError(t, err)
	assert.Equal(t, PostponeDeclined, out)

	stored, err := f.todos.GetOne(t.Context(), todo.ID)
	require.NoError(t, err)
	assert.Equal(t, todo, stored)
	assert.Equal(t, before, f.todos.Snapshot().Version)

	_, err = f.c.Postpone(t.Context(), 404, true)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteShrinksList(t *testing.T) {
	f := newFixture(t)
	const n = 4
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, f.add(t, milkForm).ID)
	}
	require.Len(t, f.todos.ListAll(), n)

	require.NoError(t, f.c.Delete(t.Context(), ids[1]))
	list := f.todos.ListAll()
	require.Len(t, list, n-1)
	for _, todo := range list {
		assert.NotEqual(t, ids[1], todo.ID)
	}

	require.ErrorIs(t, f.c.Delete(t.Context(), ids[1]), store.ErrNotFound)
}

func TestTodayList(t *testing.T) {
	f := newFixture(t)
	daily := f.add(t, milkForm)
	weekly := f.add(t, editflow.Form{Title: "Laundry", StartedAt: "2024-02-28", Repeat: "7", Content: "whites"})

	_, _, err := f.c.MarkComplete(t.Context(), daily.ID)
	require.NoError(t, err)

	entries, err := f.c.TodayList(t.Context())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, daily.ID, entries[0].Todo.ID)
	assert.True(t, entries[0].DueToday)
	assert.True(t, entries[0].Completed)
	assert.Equal(t, "2024-03-01", entries[0].NextDue)

	assert.Equal(t, weekly.ID, entries[1].Todo.ID)
	assert.False(t, entries[1].DueToday)
	assert.False(t, entries[1].Completed)
	assert.Equal(t, "2024-03-06", entries[1].NextDue)
}
