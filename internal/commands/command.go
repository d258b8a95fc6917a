// Package commands parses the palette line typed in the TUI.
package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeEdit     Type = "edit"
	TypeDone     Type = "done"
	TypeUndo     Type = "undo"
	TypePostpone Type = "postpone"
	TypeDelete   Type = "delete"
	TypeShow     Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) *CommandError {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Title string
}

// TargetArgs names a single todo by id.
type TargetArgs struct {
	ID int64
}

type Subject string

const (
	SubjectToday   Subject = "today"
	SubjectAll     Subject = "all"
	SubjectHistory Subject = "history"
)

type ShowArgs struct {
	Subject Subject
	// ID is set only for SubjectHistory.
	ID int64
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Target *TargetArgs
	Show   *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := Type(strings.ToLower(parts[0]))
	args := parts[1:]

	switch head {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeEdit, TypeDone, TypeUndo, TypePostpone, TypeDelete:
		return parseTarget(input, head, args)
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, invalid("add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseTarget(raw string, kind Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires exactly one todo id", kind)
	}
	id, err := parseID(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: kind, Raw: raw, Target: &TargetArgs{ID: id}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("show requires one of today, all, history")
	}
	subject := Subject(strings.ToLower(args[0]))
	switch subject {
	case SubjectToday, SubjectAll:
		if len(args) > 1 {
			return Command{}, invalid("show %s takes no arguments", subject)
		}
		return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
	case SubjectHistory:
		if len(args) != 2 {
			return Command{}, invalid("show history requires a todo id")
		}
		id, err := parseID(args[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject, ID: id}}, nil
	default:
		return Command{}, invalid("unknown show subject %q", args[0])
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("invalid todo id %q", s)
	}
	return id, nil
}
