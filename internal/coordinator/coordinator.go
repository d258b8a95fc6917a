// Package coordinator reacts to user actions on the todo list. It calls the
// stores and hands results back to whichever surface drives it.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/reminderd/internal/editflow"
	"github.com/sandeepkv93/reminderd/internal/model"
	"github.com/sandeepkv93/reminderd/internal/store"
)

// ErrNotCompleted is returned by UndoComplete when the todo has no
// completion marker for today.
var ErrNotCompleted = errors.New("coordinator: not completed today")

// Clock returns the current time.
type Clock func() time.Time

type Coordinator struct {
	todos   *store.TodoStore
	history *store.HistoryStore
	now     Clock
	logger  zerolog.Logger

	// completeMu serializes the lookup and insert of a completion marker.
	completeMu sync.Mutex
}

func New(todos *store.TodoStore, history *store.HistoryStore, now Clock, logger zerolog.Logger) *Coordinator {
	if now == nil {
		now = time.Now
	}
	return &Coordinator{todos: todos, history: history, now: now, logger: logger}
}

// Today returns the current calendar date in model.DateLayout.
func (c *Coordinator) Today() string {
	return model.FormatDate(c.now())
}

func (c *Coordinator) OpenAdd() editflow.Request {
	return editflow.NewAdd()
}

func (c *Coordinator) OpenEdit(ctx context.Context, id int64) (editflow.Request, error) {
	todo, err := c.todos.GetOne(ctx, id)
	if err != nil {
		return editflow.Request{}, err
	}
	return editflow.NewEdit(todo), nil
}

// BuildForm validates a filled form against the request that opened it.
func (c *Coordinator) BuildForm(req editflow.Request, form editflow.Form) (editflow.Result, error) {
	return editflow.Build(req, form, c.now())
}

// Submit applies a saved form. Inserts return the stored record with its
// new id; updates return the record as written.
func (c *Coordinator) Submit(ctx context.Context, res editflow.Result) (model.Todo, error) {
	switch res.Op {
	case editflow.OpInsert:
		todo, err := c.todos.Insert(ctx, res.Todo)
		if err != nil {
			c.logger.Warn().Err(err).Msg("insert rejected")
			return model.Todo{}, err
		}
		c.logger.Info().Int64("todo_id", todo.ID).Msg("todo added")
		return todo, nil
	case editflow.OpUpdate:
		if err := c.todos.Update(ctx, res.Todo); err != nil {
			c.logger.Warn().Err(err).Int64("todo_id", res.Todo.ID).Msg("update rejected")
			return model.Todo{}, err
		}
		c.logger.Info().Int64("todo_id", res.Todo.ID).Msg("todo updated")
		return c.todos.GetOne(ctx, res.Todo.ID)
	default:
		return model.Todo{}, fmt.Errorf("coordinator: unknown op %v", res.Op)
	}
}

// MarkComplete records today's completion of todoID. When a marker already
// exists it is returned with created=false and nothing is written.
func (c *Coordinator) MarkComplete(ctx context.Context, todoID int64) (model.History, bool, error) {
	date := c.Today()

	c.completeMu.Lock()
	defer c.completeMu.Unlock()

	existing, ok, err := c.history.GetHistory(ctx, todoID, date)
	if err != nil {
		return model.History{}, false, err
	}
	if ok {
		c.logger.Debug().Int64("todo_id", todoID).Str("date", date).Msg("already completed")
		return existing, false, nil
	}

	created, err := c.history.Insert(ctx, model.NewCompletion(todoID, date))
	if err != nil {
		return model.History{}, false, err
	}
	c.logger.Info().Int64("todo_id", todoID).Str("date", date).Msg("todo completed")
	return created, true, nil
}

// UndoComplete removes today's completion marker of todoID.
func (c *Coordinator) UndoComplete(ctx context.Context, todoID int64) error {
	date := c.Today()

	c.completeMu.Lock()
	defer c.completeMu.Unlock()

	existing, ok, err := c.history.GetHistory(ctx, todoID, date)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("todo %d on %s: %w", todoID, date, ErrNotCompleted)
	}
	if err := c.history.Delete(ctx, &existing); err != nil {
		return err
	}
	c.logger.Info().Int64("todo_id", todoID).Str("date", date).Msg("completion undone")
	return nil
}

// PostponeOutcome reports how a postpone request ended.
type PostponeOutcome int

const (
	PostponeDeclined PostponeOutcome = iota
	PostponeAcknowledged
)

func (o PostponeOutcome) String() string {
	if o == PostponeAcknowledged {
		return "acknowledged"
	}
	return "declined"
}

// Postpone answers a postpone-by-one-day request. A confirmed request is
// acknowledged and logged; no stored data changes either way.
func (c *Coordinator) Postpone(ctx context.Context, todoID int64, confirmed bool) (PostponeOutcome, error) {
	todo, err := c.todos.GetOne(ctx, todoID)
	if err != nil {
		return PostponeDeclined, err
	}
	if !confirmed {
		c.logger.Debug().Int64("todo_id", todoID).Msg("postpone declined")
		return PostponeDeclined, nil
	}
	c.logger.Info().
		Int64("todo_id", todoID).
		Str("title", todo.Title).
		Int("delay", todo.Delay).
		Msg("postpone acknowledged")
	return PostponeAcknowledged, nil
}

func (c *Coordinator) Delete(ctx context.Context, todoID int64) error {
	if err := c.todos.Delete(ctx, model.Todo{ID: todoID}); err != nil {
		return err
	}
	c.logger.Info().Int64("todo_id", todoID).Msg("todo deleted")
	return nil
}

// History lists every completion of todoID ordered by date.
func (c *Coordinator) History(ctx context.Context, todoID int64) ([]model.History, error) {
	if _, err := c.todos.GetOne(ctx, todoID); err != nil {
		return nil, err
	}
	return c.history.ListByTodo(ctx, todoID)
}

// Entry is one row of the display list.
type Entry struct {
	Todo      model.Todo `json:"todo"`
	DueToday  bool       `json:"due_today"`
	Completed bool       `json:"completed"`
	NextDue   string     `json:"next_due,omitempty"`
}

// Entries decorates todos with today's due and completion state.
func (c *Coordinator) Entries(ctx context.Context, todos []model.Todo) ([]Entry, error) {
	now := c.now()
	date := model.FormatDate(now)

	marks, err := c.history.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	done := make(map[int64]bool, len(marks))
	for _, h := range marks {
		done[h.TodoID] = h.IsChecked
	}

	out := make([]Entry, 0, len(todos))
	for _, t := range todos {
		e := Entry{Todo: t, DueToday: t.DueOn(now), Completed: done[t.ID]}
		if next, err := t.NextDue(now); err == nil {
			e.NextDue = model.FormatDate(next)
		}
		out = append(out, e)
	}
	return out, nil
}

// TodayList returns every stored todo decorated for the display list.
func (c *Coordinator) TodayList(ctx context.Context) ([]Entry, error) {
	return c.Entries(ctx, c.todos.ListAll())
}

// Subscribe exposes the todo list snapshots to display surfaces.
func (c *Coordinator) Subscribe(ctx context.Context) (<-chan store.Snapshot, func()) {
	return c.todos.Subscribe(ctx)
}
