package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrDuplicate = errors.New("storage: duplicate")
)

type TodoRepository interface {
	CreateTodo(ctx context.Context, in Todo) (int64, error)
	GetTodo(ctx context.Context, id int64) (Todo, error)
	UpdateTodo(ctx context.Context, in Todo) error
	DeleteTodo(ctx context.Context, id int64) error
	ListTodos(ctx context.Context, filter TodoListFilter) ([]Todo, error)
}

type HistoryRepository interface {
	CreateHistory(ctx context.Context, in History) (int64, error)
	GetHistory(ctx context.Context, id int64) (History, error)
	FindHistory(ctx context.Context, todoID int64, date string) (History, error)
	DeleteHistory(ctx context.Context, id int64) error
	ListHistory(ctx context.Context, filter HistoryListFilter) ([]History, error)
}

type Repository interface {
	TodoRepository
	HistoryRepository
}
