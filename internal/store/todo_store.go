// Package store holds the Todo and History aggregates. Writes to each store
// are serialized; the todo list is published as immutable snapshots.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/reminderd/internal/model"
	"github.com/sandeepkv93/reminderd/internal/storage"
)

var (
	ErrNotFound  = storage.ErrNotFound
	ErrDuplicate = storage.ErrDuplicate
)

type TodoStore struct {
	repo   storage.TodoRepository
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	version uint64
	pub     *publisher
}

// NewTodoStore loads the current todo list from repo and returns a store
// ready to publish snapshots.
func NewTodoStore(ctx context.Context, repo storage.TodoRepository, logger zerolog.Logger) (*TodoStore, error) {
	s := &TodoStore{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		pub:    newPublisher(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refreshLocked(ctx); err != nil {
		return nil, fmt.Errorf("load todos: %w", err)
	}
	return s, nil
}

// Insert validates and persists a new todo. The stored record, with its
// assigned id, is returned.
func (s *TodoStore) Insert(ctx context.Context, in model.Todo) (model.Todo, error) {
	in.ID = 0
	if in.CreatedAt == "" {
		in.CreatedAt = model.FormatTimestamp(s.now())
	}
	if err := in.Validate(); err != nil {
		return model.Todo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.repo.CreateTodo(ctx, toTodoRecord(in))
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	in.ID = id
	s.logger.Debug().Int64("todo_id", id).Str("title", in.Title).Msg("todo inserted")
	s.publishAfterWrite(ctx)
	return in, nil
}

// Update overwrites the editable fields of the todo matching in.ID. The
// stored id, delay and created_at are left as they are.
func (s *TodoStore) Update(ctx context.Context, in model.Todo) error {
	// delay and created_at are never written here, so they are not checked.
	if err := in.ValidateEditable(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.UpdateTodo(ctx, toTodoRecord(in)); err != nil {
		return fmt.Errorf("update todo %d: %w", in.ID, err)
	}
	s.logger.Debug().Int64("todo_id", in.ID).Msg("todo updated")
	s.publishAfterWrite(ctx)
	return nil
}

// Delete removes the todo matching in.ID and, through the schema, its
// history. Deleting an absent todo returns ErrNotFound.
func (s *TodoStore) Delete(ctx context.Context, in model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteTodo(ctx, in.ID); err != nil {
		return fmt.Errorf("delete todo %d: %w", in.ID, err)
	}
	s.logger.Debug().Int64("todo_id", in.ID).Msg("todo deleted")
	s.publishAfterWrite(ctx)
	return nil
}

func (s *TodoStore) GetOne(ctx context.Context, id int64) (model.Todo, error) {
	rec, err := s.repo.GetTodo(ctx, id)
	if err != nil {
		return model.Todo{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	return fromTodoRecord(rec), nil
}

// ListAll returns a copy of the latest published list.
func (s *TodoStore) ListAll() []model.Todo {
	snap := s.pub.load()
	out := make([]model.Todo, len(snap.Todos))
	copy(out, snap.Todos)
	return out
}

// Snapshot returns the latest published snapshot.
func (s *TodoStore) Snapshot() Snapshot {
	return s.pub.load()
}

// Subscribe delivers the current snapshot immediately and every newer one
// after each mutation. The channel closes when ctx ends, the returned
// cancel func is called, or the store is closed.
func (s *TodoStore) Subscribe(ctx context.Context) (<-chan Snapshot, func()) {
	return s.pub.subscribe(ctx)
}

// Close ends every subscription.
func (s *TodoStore) Close() {
	s.pub.close()
}

// Refresh reloads the list from the repository and publishes it.
func (s *TodoStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// publishAfterWrite runs after a committed write, so the refresh must not be
// skipped when the caller's ctx is cancelled in between.
func (s *TodoStore) publishAfterWrite(ctx context.Context) {
	if err := s.refreshLocked(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot refresh failed after write")
	}
}

func (s *TodoStore) refreshLocked(ctx context.Context) error {
	recs, err := s.repo.ListTodos(ctx, storage.TodoListFilter{})
	if err != nil {
		return err
	}
	todos := make([]model.Todo, 0, len(recs))
	for _, rec := range recs {
		todos = append(todos, fromTodoRecord(rec))
	}
	s.version++
	s.pub.publish(Snapshot{Version: s.version, Todos: todos})
	return nil
}

func toTodoRecord(in model.Todo) storage.Todo {
	return storage.Todo{
		ID:        in.ID,
		Title:     in.Title,
		StartedAt: in.StartedAt,
		Repeat:    in.Repeat,
		Content:   in.Content,
		Delay:     in.Delay,
		CreatedAt: in.CreatedAt,
	}
}

func fromTodoRecord(rec storage.Todo) model.Todo {
	return model.Todo{
		ID:        rec.ID,
		Title:     rec.Title,
		StartedAt: rec.StartedAt,
		Repeat:    rec.Repeat,
		Content:   rec.Content,
		Delay:     rec.Delay,
		CreatedAt: rec.CreatedAt,
	}
}
