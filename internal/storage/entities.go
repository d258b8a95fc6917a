package storage

type Todo struct {
	ID        int64
	Title     string
	StartedAt string
	Repeat    int
	Content   string
	Delay     int
	CreatedAt string
}

type History struct {
	ID        int64
	TodoID    int64
	IsChecked bool
	Date      string
}

type TodoListFilter struct {
	Limit  int
	Offset int
}

type HistoryListFilter struct {
	TodoID int64
	Date   string
	Limit  int
	Offset int
}
