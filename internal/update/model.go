// Package update holds the bubbletea model that drives the terminal UI.
package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/reminderd/internal/coordinator"
	"github.com/sandeepkv93/reminderd/internal/editflow"
	"github.com/sandeepkv93/reminderd/internal/model"
	"github.com/sandeepkv93/reminderd/internal/scheduler"
	"github.com/sandeepkv93/reminderd/internal/store"
)

// Backend is the coordinator surface the UI drives.
type Backend interface {
	TodayList(ctx context.Context) ([]coordinator.Entry, error)
	Entries(ctx context.Context, todos []model.Todo) ([]coordinator.Entry, error)
	OpenEdit(ctx context.Context, id int64) (editflow.Request, error)
	BuildForm(req editflow.Request, form editflow.Form) (editflow.Result, error)
	Submit(ctx context.Context, res editflow.Result) (model.Todo, error)
	MarkComplete(ctx context.Context, todoID int64) (model.History, bool, error)
	UndoComplete(ctx context.Context, todoID int64) error
	Postpone(ctx context.Context, todoID int64, confirmed bool) (coordinator.PostponeOutcome, error)
	Delete(ctx context.Context, todoID int64) error
	History(ctx context.Context, todoID int64) ([]model.History, error)
	Subscribe(ctx context.Context) (<-chan store.Snapshot, func())
}

var _ Backend = (*coordinator.Coordinator)(nil)

type Mode string

const (
	ModeList    Mode = "list"
	ModeForm    Mode = "form"
	ModeConfirm Mode = "confirm"
	ModePalette Mode = "palette"
)

type Scope string

const (
	ScopeToday Scope = "today"
	ScopeAll   Scope = "all"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Add      string
	Edit     string
	Done     string
	Postpone string
	Delete   string
	History  string
	Scope    string
	Complete string
	Palette  string
	Help     string
	Quit     string
}

type Options struct {
	ShowCompleted bool
	MarkdownStyle string
	// Reminders, when set, is drained for due events.
	Reminders <-chan scheduler.DueEvent
	Logger    zerolog.Logger
	Now       func() time.Time
}

type Model struct {
	Mode          Mode
	Scope         Scope
	ShowCompleted bool
	Entries       []coordinator.Entry
	Version       uint64
	SelectedID    int64
	History       map[int64][]model.History
	HistoryShown  bool
	Form          FormState
	Confirm       ConfirmState
	Palette       CommandPaletteState
	HelpVisible   bool
	Reminders     []scheduler.DueEvent
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	backend       Backend
	ctx           context.Context
	snapshots     <-chan store.Snapshot
	unsubscribe   func()
	reminderCh    <-chan scheduler.DueEvent
	markdownStyle string
	logger        zerolog.Logger
	now           func() time.Time

	commandInput textinput.Model
	helpModel    help.Model
}

type FormState struct {
	Request editflow.Request
	Focus   int
	Inputs  [fieldContent]textinput.Model
	Content textarea.Model
	Errors  map[string]string
	Err     string
}

type ConfirmAction string

const (
	ConfirmPostpone ConfirmAction = "postpone"
	ConfirmDelete   ConfirmAction = "delete"
)

type ConfirmState struct {
	Action ConfirmAction
	TodoID int64
	Title  string
}

type CommandPaletteState struct {
	Input string
}

// Messages. Every store call runs in a tea.Cmd and reports back through one
// of these.

type SnapshotMsg struct {
	Snapshot store.Snapshot
}

type EntriesMsg struct {
	Entries []coordinator.Entry
}

type HistoryMsg struct {
	TodoID int64
	Items  []model.History
}

type ReminderDueMsg struct {
	Event scheduler.DueEvent
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type AppErrorMsg struct {
	Err error
}

type OpenFormMsg struct {
	Request editflow.Request
	Title   string
}

type SavedMsg struct {
	Todo model.Todo
	Op   editflow.Op
}

type CompletedMsg struct {
	TodoID  int64
	Created bool
}

type UndoneMsg struct {
	TodoID int64
}

type PostponedMsg struct {
	TodoID  int64
	Outcome coordinator.PostponeOutcome
}

type DeletedMsg struct {
	TodoID int64
}

// NewModel subscribes to backend's todo list. Call Close when the program
// exits.
func NewModel(ctx context.Context, backend Backend, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := Model{
		Mode:          ModeList,
		Scope:         ScopeAll,
		ShowCompleted: opts.ShowCompleted,
		History:       make(map[int64][]model.History),
		Keys: GlobalKeyMap{
			Add:      "a",
			Edit:     "e",
			Done:     "x",
			Postpone: "p",
			Delete:   "d",
			History:  "h",
			Scope:    "t",
			Complete: "c",
			Palette:  "/",
			Help:     "?",
			Quit:     "q",
		},
		backend:       backend,
		ctx:           ctx,
		reminderCh:    opts.Reminders,
		markdownStyle: opts.MarkdownStyle,
		logger:        opts.Logger,
		now:           opts.Now,
	}
	m.snapshots, m.unsubscribe = backend.Subscribe(ctx)
	m.initBubbleComponents()
	return m
}

// Close ends the todo list subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
}
