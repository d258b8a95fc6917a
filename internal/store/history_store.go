package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/reminderd/internal/model"
	"github.com/sandeepkv93/reminderd/internal/storage"
)

// ErrNilHistory is returned when Delete is handed no record. It matches
// ErrNotFound under errors.Is.
var ErrNilHistory = fmt.Errorf("%w: nil history reference", ErrNotFound)

type HistoryStore struct {
	repo   storage.HistoryRepository
	logger zerolog.Logger

	mu sync.Mutex
}

func NewHistoryStore(repo storage.HistoryRepository, logger zerolog.Logger) *HistoryStore {
	return &HistoryStore{repo: repo, logger: logger}
}

// Insert persists a completion marker. The store does not look for an
// existing marker first; a second insert for the same (todo, date) fails
// with ErrDuplicate.
func (s *HistoryStore) Insert(ctx context.Context, in model.History) (model.History, error) {
	in.ID = 0
	if err := in.Validate(); err != nil {
		return model.History{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.repo.CreateHistory(ctx, toHistoryRecord(in))
	if err != nil {
		return model.History{}, fmt.Errorf("insert history for todo %d on %s: %w", in.TodoID, in.Date, err)
	}
	in.ID = id
	s.logger.Debug().Int64("todo_id", in.TodoID).Str("date", in.Date).Msg("history inserted")
	return in, nil
}

func (s *HistoryStore) Delete(ctx context.Context, in *model.History) error {
	if in == nil || in.ID == 0 {
		return ErrNilHistory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteHistory(ctx, in.ID); err != nil {
		return fmt.Errorf("delete history %d: %w", in.ID, err)
	}
	s.logger.Debug().Int64("todo_id", in.TodoID).Str("date", in.Date).Msg("history deleted")
	return nil
}

// GetHistory looks up the marker for (todoID, date). A missing marker is
// reported through ok, not as an error.
func (s *HistoryStore) GetHistory(ctx context.Context, todoID int64, date string) (model.History, bool, error) {
	rec, err := s.repo.FindHistory(ctx, todoID, date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.History{}, false, nil
		}
		return model.History{}, false, fmt.Errorf("find history for todo %d on %s: %w", todoID, date, err)
	}
	return fromHistoryRecord(rec), true, nil
}

// ListByTodo returns every marker of a todo ordered by date.
func (s *HistoryStore) ListByTodo(ctx context.Context, todoID int64) ([]model.History, error) {
	return s.list(ctx, storage.HistoryListFilter{TodoID: todoID})
}

// ListByDate returns every marker recorded for date.
func (s *HistoryStore) ListByDate(ctx context.Context, date string) ([]model.History, error) {
	return s.list(ctx, storage.HistoryListFilter{Date: date})
}

func (s *HistoryStore) list(ctx context.Context, filter storage.HistoryListFilter) ([]model.History, error) {
	recs, err := s.repo.ListHistory(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	out := make([]model.History, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromHistoryRecord(rec))
	}
	return out, nil
}

func toHistoryRecord(in model.History) storage.History {
	return storage.History{ID: in.ID, TodoID: in.TodoID, IsChecked: in.IsChecked, Date: in.Date}
}

func fromHistoryRecord(rec storage.History) model.History {
	return model.History{ID: rec.ID, TodoID: rec.TodoID, IsChecked: rec.IsChecked, Date: rec.Date}
}
