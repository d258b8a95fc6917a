package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

const sqliteDSNOptions = "?_foreign_keys=on&_busy_timeout=5000"

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository wraps db. The pool is limited to one connection so the
// foreign key pragma stays in effect and writers never contend for the file.
func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path, applies migrations and returns the repository.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+sqliteDSNOptions)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTodo(ctx context.Context, in Todo) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO todos (title, started_at, repeat, content, delay, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.Title, in.StartedAt, in.Repeat, in.Content, in.Delay, in.CreatedAt,
	)
	if err != nil {
		return 0, translateError(err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetTodo(ctx context.Context, id int64) (Todo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, started_at, repeat, content, delay, created_at
		FROM todos WHERE id = ?`, id)
	todo, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Todo{}, ErrNotFound
		}
		return Todo{}, err
	}
	return todo, nil
}

// UpdateTodo rewrites the editable columns only; delay and created_at are
// never touched here.
func (r *SQLiteRepository) UpdateTodo(ctx context.Context, in Todo) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE todos
		SET title = ?, started_at = ?, repeat = ?, content = ?
		WHERE id = ?`,
		in.Title, in.StartedAt, in.Repeat, in.Content, in.ID,
	)
	if err != nil {
		return translateError(err)
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTodo(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTodos(ctx context.Context, filter TodoListFilter) ([]Todo, error) {
	args := make([]any, 0, 2)
	query := `SELECT id, title, started_at, repeat, content, delay, created_at FROM todos ORDER BY id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Todo, 0)
	for rows.Next() {
		todo, scanErr := scanTodo(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, todo)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateHistory(ctx context.Context, in History) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO history (todo_id, is_checked, date)
		VALUES (?, ?, ?)`,
		in.TodoID, boolInt(in.IsChecked), in.Date,
	)
	if err != nil {
		return 0, translateError(err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetHistory(ctx context.Context, id int64) (History, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, todo_id, is_checked, date FROM history WHERE id = ?`, id)
	item, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return History{}, ErrNotFound
		}
		return History{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) FindHistory(ctx context.Context, todoID int64, date string) (History, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, todo_id, is_checked, date
		FROM history WHERE todo_id = ? AND date = ?`, todoID, date)
	item, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return History{}, ErrNotFound
		}
		return History{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) DeleteHistory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListHistory(ctx context.Context, filter HistoryListFilter) ([]History, error) {
	query := `SELECT id, todo_id, is_checked, date FROM history`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.TodoID != 0 {
		clauses = append(clauses, "todo_id = ?")
		args = append(args, filter.TodoID)
	}
	if filter.Date != "" {
		clauses = append(clauses, "date = ?")
		args = append(args, filter.Date)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY date ASC, todo_id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]History, 0)
	for rows.Next() {
		item, scanErr := scanHistory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (Todo, error) {
	var out Todo
	if err := s.Scan(&out.ID, &out.Title, &out.StartedAt, &out.Repeat, &out.Content, &out.Delay, &out.CreatedAt); err != nil {
		return Todo{}, err
	}
	return out, nil
}

func scanHistory(s scanner) (History, error) {
	var out History
	var checked int
	if err := s.Scan(&out.ID, &out.TodoID, &checked, &out.Date); err != nil {
		return History{}, err
	}
	out.IsChecked = checked == 1
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// translateError maps sqlite constraint failures onto the package sentinels.
func translateError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: referenced todo: %v", ErrNotFound, err)
	default:
		return err
	}
}
