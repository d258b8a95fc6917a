// Package app wires the stores, coordinator and reminder planner together.
// Commands and the TUI consume App instead of building their own stores.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/reminderd/internal/config"
	"github.com/sandeepkv93/reminderd/internal/coordinator"
	"github.com/sandeepkv93/reminderd/internal/logging"
	"github.com/sandeepkv93/reminderd/internal/model"
	"github.com/sandeepkv93/reminderd/internal/scheduler"
	"github.com/sandeepkv93/reminderd/internal/storage"
	"github.com/sandeepkv93/reminderd/internal/store"
)

type App struct {
	Config      *config.Config
	Todos       *store.TodoStore
	History     *store.HistoryStore
	Coordinator *coordinator.Coordinator

	repo   *storage.SQLiteRepository
	logger zerolog.Logger
	now    func() time.Time
}

// Open creates the data directory if needed, opens and migrates the
// database and loads the todo list.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	return open(ctx, cfg, time.Now)
}

func open(ctx context.Context, cfg *config.Config, now func() time.Time) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	repo, err := storage.OpenSQLite(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	todos, err := store.NewTodoStore(ctx, repo, logging.Component("todos"))
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("load todos: %w", err)
	}
	history := store.NewHistoryStore(repo, logging.Component("history"))

	return &App{
		Config:      cfg,
		Todos:       todos,
		History:     history,
		Coordinator: coordinator.New(todos, history, now, logging.Component("coordinator")),
		repo:        repo,
		logger:      logging.Component("app"),
		now:         now,
	}, nil
}

// Close ends todo subscriptions and closes the database.
func (a *App) Close() error {
	a.Todos.Close()
	if err := a.repo.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// Reminders runs the planner until stop is called. Due events for todos
// that were completed or deleted after planning are not delivered. Edits to
// a todo replan it for today.
func (a *App) Reminders(ctx context.Context) (<-chan scheduler.DueEvent, func(), error) {
	tod, err := scheduler.ParseTimeOfDay(a.Config.Reminders.TimeOfDay)
	if err != nil {
		return nil, nil, fmt.Errorf("reminders.time_of_day: %w", err)
	}

	engine := scheduler.NewEngine(a.Config.Reminders.Buffer)
	planner := scheduler.NewPlanner(engine, a.Todos, a.History, scheduler.PlannerOptions{
		Spec:      a.Config.Reminders.RefreshSpec,
		TimeOfDay: tod,
	}, logging.Component("planner"))

	ctx, cancel := context.WithCancel(ctx)
	if err := planner.Start(ctx); err != nil {
		cancel()
		return nil, nil, err
	}

	snapshots, unsubscribe := a.Todos.Subscribe(ctx)
	out := make(chan scheduler.DueEvent, a.Config.Reminders.Buffer)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.replanOnChange(ctx, planner, snapshots)
	}()
	go func() {
		defer wg.Done()
		defer close(out)
		a.forward(ctx, engine.C(), out)
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			unsubscribe()
			planner.Stop()
			wg.Wait()
			if n := engine.Dropped(); n > 0 {
				a.logger.Warn().Uint64("dropped", n).Msg("reminders dropped on a full channel")
			}
		})
	}
	return out, stop, nil
}

func (a *App) replanOnChange(ctx context.Context, planner *scheduler.Planner, snapshots <-chan store.Snapshot) {
	known := indexTodos(a.Todos.ListAll())
	for snap := range snapshots {
		next := indexTodos(snap.Todos)
		for id, prev := range known {
			cur, ok := next[id]
			if !ok || scheduleChanged(prev, cur) {
				planner.Forget(id)
			}
		}
		known = next

		if _, err := planner.Plan(ctx); err != nil {
			a.logger.Error().Err(err).Uint64("version", snap.Version).Msg("replan failed")
		}
	}
}

func (a *App) forward(ctx context.Context, in <-chan scheduler.DueEvent, out chan<- scheduler.DueEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			if !a.stillDue(ctx, ev) {
				continue
			}
			a.logger.Info().Int64("todo_id", ev.TodoID).Str("title", ev.Title).Msg("todo due")
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (a *App) stillDue(ctx context.Context, ev scheduler.DueEvent) bool {
	if _, ok := a.Todos.Snapshot().Find(ev.TodoID); !ok {
		return false
	}
	_, done, err := a.History.GetHistory(ctx, ev.TodoID, ev.Date)
	if err != nil {
		a.logger.Warn().Err(err).Int64("todo_id", ev.TodoID).Msg("completion lookup failed")
		return true
	}
	return !done && ev.Date == model.FormatDate(a.now())
}

func indexTodos(todos []model.Todo) map[int64]model.Todo {
	out := make(map[int64]model.Todo, len(todos))
	for _, t := range todos {
		out[t.ID] = t
	}
	return out
}

func scheduleChanged(a, b model.Todo) bool {
	return a.Title != b.Title || a.StartedAt != b.StartedAt || a.Repeat != b.Repeat || a.Delay != b.Delay
}
