package model

// History marks a todo as completed on one calendar date.
type History struct {
	ID        int64  `json:"id"`
	TodoID    int64  `json:"todo_id"`
	IsChecked bool   `json:"is_checked"`
	Date      string `json:"date"`
}

// NewCompletion returns an unsaved, checked History for todoID on date.
func NewCompletion(todoID int64, date string) History {
	return History{TodoID: todoID, IsChecked: true, Date: date}
}

func (h History) Validate() error {
	verr := &ValidationError{Kind: ErrInvalidHistory}
	if h.TodoID <= 0 {
		verr.add("todo_id", "must reference a stored todo")
	}
	if _, err := ParseDate(h.Date); err != nil {
		verr.add("date", err.Error())
	}
	return verr.orNil()
}
