// Package editflow carries the add/edit form contract: the request that
// opens the form and the result handed back when the user saves it.
package editflow

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/sandeepkv93/reminderd/internal/model"
)

type Type string

const (
	TypeAdd  Type = "ADD"
	TypeEdit Type = "EDIT"
)

// ParseType accepts "ADD" or "EDIT" in any case.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeAdd:
		return TypeAdd, nil
	case TypeEdit:
		return TypeEdit, nil
	default:
		return "", fmt.Errorf("editflow: unknown request type %q", s)
	}
}

type Op int

const (
	OpInsert Op = iota
	OpUpdate
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Request opens the form. Todo is the record being edited and is ignored
// for TypeAdd.
type Request struct {
	Type Type
	Todo model.Todo
}

func NewAdd() Request {
	return Request{Type: TypeAdd}
}

func NewEdit(todo model.Todo) Request {
	return Request{Type: TypeEdit, Todo: todo}
}

// Form holds the raw text of each input field.
type Form struct {
	Title     string
	StartedAt string
	Repeat    string
	Content   string
}

// FormFromRequest prefills the form for an edit. An add starts with a
// repeat of 1 and today's date.
func FormFromRequest(req Request, now time.Time) Form {
	if req.Type == TypeEdit {
		return Form{
			Title:     req.Todo.Title,
			StartedAt: req.Todo.StartedAt,
			Repeat:    strconv.Itoa(req.Todo.Repeat),
			Content:   req.Todo.Content,
		}
	}
	return Form{StartedAt: model.FormatDate(now), Repeat: "1"}
}

// Result is what a saved form produces. A cancelled form produces none.
type Result struct {
	Todo model.Todo
	Op   Op
}

// Build validates form and turns it into a Result. Validation failures are
// returned as criterio.FieldErrors keyed by the form field name.
func Build(req Request, form Form, now time.Time) (Result, error) {
	if req.Type != TypeAdd && req.Type != TypeEdit {
		return Result{}, fmt.Errorf("editflow: unknown request type %q", req.Type)
	}

	var repeat int
	err := criterio.ValidateStruct(
		criterio.Run("title", form.Title, required),
		criterio.Run("content", form.Content, required),
		criterio.Run("started_at", form.StartedAt, calendarDate),
		criterio.Run("repeat", form.Repeat, func(s string) error {
			n, err := parseRepeat(s)
			repeat = n
			return err
		}),
	)
	if err != nil {
		return Result{}, err
	}

	todo := model.Todo{
		Title:     strings.TrimSpace(form.Title),
		StartedAt: strings.TrimSpace(form.StartedAt),
		Repeat:    repeat,
		Content:   strings.TrimSpace(form.Content),
	}

	if req.Type == TypeEdit {
		todo.ID = req.Todo.ID
		todo.Delay = req.Todo.Delay
		todo.CreatedAt = req.Todo.CreatedAt
		return Result{Todo: todo, Op: OpUpdate}, nil
	}
	todo.CreatedAt = model.FormatTimestamp(now)
	return Result{Todo: todo, Op: OpInsert}, nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

func calendarDate(s string) error {
	_, err := model.ParseDate(s)
	return err
}

func parseRepeat(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("is required")
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be a whole number of days")
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1")
	}
	return n, nil
}
