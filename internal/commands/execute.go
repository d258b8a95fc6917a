package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Edit     func(TargetArgs) (Result, error)
	Done     func(TargetArgs) (Result, error)
	Undo     func(TargetArgs) (Result, error)
	Postpone func(TargetArgs) (Result, error)
	Delete   func(TargetArgs) (Result, error)
	Show     func(ShowArgs) (Result, error)
}

func (h Handlers) target(t Type) func(TargetArgs) (Result, error) {
	switch t {
	case TypeEdit:
		return h.Edit
	case TypeDone:
		return h.Done
	case TypeUndo:
		return h.Undo
	case TypePostpone:
		return h.Postpone
	case TypeDelete:
		return h.Delete
	default:
		return nil
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeEdit, TypeDone, TypeUndo, TypePostpone, TypeDelete:
		fn := handlers.target(cmd.Type)
		if fn == nil {
			return Result{}, missing(cmd.Type)
		}
		return fn(*cmd.Target)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Show(*cmd.Show)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
