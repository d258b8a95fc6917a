package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/reminderd/internal/model"
)

// TodoLister is the read side of the todo store the planner needs.
type TodoLister interface {
	ListAll() []model.Todo
}

// CompletionLookup reports whether a todo already has a marker on date.
type CompletionLookup interface {
	GetHistory(ctx context.Context, todoID int64, date string) (model.History, bool, error)
}

// TimeOfDay is a wall clock time in HH:MM.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || len(m) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the instant of t on the calendar date of d, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, t.Hour, t.Minute, 0, 0, d.Location())
}

// ValidateSpec reports whether spec is a schedule the planner accepts.
func ValidateSpec(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}

type PlannerOptions struct {
	// Spec is a cron schedule for replanning, e.g. "@daily" or "@every 15m".
	Spec      string
	TimeOfDay TimeOfDay
}

// Planner schedules a DueEvent for every todo due today that has not been
// completed. Each (todo, date) pair is scheduled at most once.
type Planner struct {
	engine  *Engine
	todos   TodoLister
	history CompletionLookup
	opts    PlannerOptions
	logger  zerolog.Logger
	now     func() time.Time

	cron    *cron.Cron
	mu      sync.Mutex
	planned map[planKey]struct{}
	cancel  context.CancelFunc
}

type planKey struct {
	todoID int64
	date   string
}

func NewPlanner(engine *Engine, todos TodoLister, history CompletionLookup, opts PlannerOptions, logger zerolog.Logger) *Planner {
	if opts.Spec == "" {
		opts.Spec = "@daily"
	}
	return &Planner{
		engine:  engine,
		todos:   todos,
		history: history,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		cron:    cron.New(),
		planned: make(map[planKey]struct{}),
	}
}

// Start runs one planning pass, then replans on the configured schedule
// until Stop is called.
func (p *Planner) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	if _, err := p.cron.AddFunc(p.opts.Spec, func() {
		if _, err := p.Plan(ctx); err != nil {
			p.logger.Error().Err(err).Msg("planning pass failed")
		}
	}); err != nil {
		cancel()
		return fmt.Errorf("add planner job %q: %w", p.opts.Spec, err)
	}

	p.engine.Start()
	if _, err := p.Plan(ctx); err != nil {
		p.logger.Error().Err(err).Msg("initial planning pass failed")
	}
	p.cron.Start()
	p.logger.Info().Str("spec", p.opts.Spec).Str("time_of_day", p.opts.TimeOfDay.String()).Msg("planner started")
	return nil
}

func (p *Planner) Stop() {
	stopped := p.cron.Stop()
	<-stopped.Done()
	if p.cancel != nil {
		p.cancel()
	}
	p.engine.Stop()
	p.logger.Info().Msg("planner stopped")
}

// Plan schedules today's outstanding reminders and returns how many were
// added in this pass.
func (p *Planner) Plan(ctx context.Context) (int, error) {
	now := p.now()
	date := model.FormatDate(now)
	trigger := p.opts.TimeOfDay.On(now)
	if trigger.Before(now) {
		trigger = now
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for key := range p.planned {
		if key.date != date {
			delete(p.planned, key)
		}
	}

	added := 0
	for _, todo := range p.todos.ListAll() {
		if !todo.DueOn(now) {
			continue
		}
		key := planKey{todoID: todo.ID, date: date}
		if _, ok := p.planned[key]; ok {
			continue
		}
		_, done, err := p.history.GetHistory(ctx, todo.ID, date)
		if err != nil {
			return added, fmt.Errorf("check completion of todo %d: %w", todo.ID, err)
		}
		if done {
			continue
		}
		ev := DueEvent{TodoID: todo.ID, Title: todo.Title, Date: date, TriggerAt: trigger}
		if err := p.engine.Schedule(ev); err != nil {
			return added, err
		}
		p.planned[key] = struct{}{}
		added++
	}

	p.logger.Debug().Str("date", date).Int("added", added).Msg("planning pass done")
	return added, nil
}

// Forget drops any pending reminder for todoID so the next pass may plan it
// again. Called after a todo is edited, completed or deleted.
func (p *Planner) Forget(todoID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key := range p.planned {
		if key.todoID == todoID {
			delete(p.planned, key)
		}
	}
	p.engine.Cancel(todoID)
}
