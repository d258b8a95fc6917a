package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/reminderd/internal/coordinator"
	"github.com/sandeepkv93/reminderd/internal/editflow"
	"github.com/sandeepkv93/reminderd/internal/model"
	"github.com/sandeepkv93/reminderd/internal/views"
)

const upcomingCount = 5

// Visible returns the entries the list pane shows for the current scope and
// completion filter.
func (m Model) Visible() []coordinator.Entry {
	out := make([]coordinator.Entry, 0, len(m.Entries))
	for _, e := range m.Entries {
		if m.Scope == ScopeToday && !e.DueToday {
			continue
		}
		if !m.ShowCompleted && e.Completed {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Selected returns the highlighted entry.
func (m Model) Selected() (coordinator.Entry, bool) {
	for _, e := range m.Entries {
		if e.Todo.ID == m.SelectedID {
			return e, true
		}
	}
	return coordinator.Entry{}, false
}

func (m Model) selectedIndex(rows []coordinator.Entry) int {
	for i, e := range rows {
		if e.Todo.ID == m.SelectedID {
			return i
		}
	}
	return -1
}

// clampSelection keeps SelectedID on a visible row, or clears it.
func (m Model) clampSelection() Model {
	rows := m.Visible()
	if m.selectedIndex(rows) >= 0 {
		return m
	}
	if len(rows) == 0 {
		m.SelectedID = 0
		return m
	}
	m.SelectedID = rows[0].Todo.ID
	return m
}

func (m Model) moveCursor(delta int) Model {
	rows := m.Visible()
	if len(rows) == 0 {
		return m
	}
	i := m.selectedIndex(rows) + delta
	if i < 0 {
		i = 0
	}
	if i >= len(rows) {
		i = len(rows) - 1
	}
	m.SelectedID = rows[i].Todo.ID
	return m
}

func (m Model) askConfirm(action ConfirmAction, id int64) Model {
	title := fmt.Sprintf("#%d", id)
	for _, e := range m.Entries {
		if e.Todo.ID == id {
			title = e.Todo.Title
		}
	}
	m.Confirm = ConfirmState{Action: action, TodoID: id, Title: title}
	m.Mode = ModeConfirm
	m.Status = StatusBar{Text: m.confirmQuestion()}
	return m
}

func (m Model) confirmQuestion() string {
	switch m.Confirm.Action {
	case ConfirmPostpone:
		return fmt.Sprintf("postpone %q by one day?", m.Confirm.Title)
	case ConfirmDelete:
		return fmt.Sprintf("delete %q and its history?", m.Confirm.Title)
	default:
		return ""
	}
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	var yes bool
	switch msg.String() {
	case "y", "Y":
		yes = true
	case "n", "N", "esc":
	default:
		return m, nil
	}

	c := m.Confirm
	m.Confirm = ConfirmState{}
	m.Mode = ModeList

	switch c.Action {
	case ConfirmPostpone:
		return m, m.postponeCmd(c.TodoID, yes)
	case ConfirmDelete:
		if !yes {
			m.Status = StatusBar{Text: "delete cancelled"}
			return m, nil
		}
		return m, m.deleteCmd(c.TodoID)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		return m.moveCursor(1), nil
	case "k", "up":
		return m.moveCursor(-1), nil
	case "g", "home":
		return m.moveCursor(-len(m.Entries)), nil
	case "G", "end":
		return m.moveCursor(len(m.Entries)), nil
	case m.Keys.Add:
		return m.openForm(editflow.NewAdd(), ""), nil
	case m.Keys.Scope:
		if m.Scope == ScopeAll {
			m.Scope = ScopeToday
		} else {
			m.Scope = ScopeAll
		}
		m.Status = StatusBar{Text: fmt.Sprintf("showing %s", m.Scope)}
		return m.clampSelection(), nil
	case m.Keys.Complete:
		m.ShowCompleted = !m.ShowCompleted
		if m.ShowCompleted {
			m.Status = StatusBar{Text: "completed shown"}
		} else {
			m.Status = StatusBar{Text: "completed hidden"}
		}
		return m.clampSelection(), nil
	}

	sel, ok := m.Selected()
	if !ok {
		return m, nil
	}
	id := sel.Todo.ID
	switch msg.String() {
	case m.Keys.Edit, "enter":
		return m, m.openEditCmd(id)
	case m.Keys.Done, " ":
		if sel.Completed {
			return m, m.undoCmd(id)
		}
		return m, m.completeCmd(id)
	case m.Keys.Postpone:
		return m.askConfirm(ConfirmPostpone, id), nil
	case m.Keys.Delete:
		return m.askConfirm(ConfirmDelete, id), nil
	case m.Keys.History:
		m.HistoryShown = !m.HistoryShown
		if m.HistoryShown {
			return m, m.historyCmd(id)
		}
	}
	return m, nil
}

func (m Model) renderListView() string {
	rows := m.Visible()
	data := views.ListPanelData{
		Scope:         string(m.Scope),
		ShowCompleted: m.ShowCompleted,
		SelectedID:    m.SelectedID,
		Rows:          make([]views.ListRowData, 0, len(rows)),
	}
	for _, e := range rows {
		data.Rows = append(data.Rows, views.ListRowData{
			ID:        e.Todo.ID,
			Title:     e.Todo.Title,
			Repeat:    e.Todo.Repeat,
			NextDue:   e.NextDue,
			DueToday:  e.DueToday,
			Completed: e.Completed,
		})
	}
	if !m.ShowCompleted {
		for _, e := range m.Entries {
			if e.Completed && (m.Scope == ScopeAll || e.DueToday) {
				data.Hidden++
			}
		}
	}
	return views.RenderListPanel(data)
}

func (m Model) renderDetailView() string {
	sel, ok := m.Selected()
	if !ok {
		return views.RenderDetailPanel(views.DetailPanelData{})
	}
	t := sel.Todo
	data := views.DetailPanelData{
		ID:           t.ID,
		Title:        t.Title,
		StartedAt:    t.StartedAt,
		Repeat:       t.Repeat,
		Delay:        t.Delay,
		CreatedAt:    t.CreatedAt,
		ContentView:  views.RenderMarkdown(t.Content, m.markdownStyle),
		HistoryShown: m.HistoryShown,
	}
	if dates, err := t.Preview(m.now(), upcomingCount); err == nil {
		data.Upcoming = formatDates(dates)
	}
	for _, h := range m.History[t.ID] {
		data.History = append(data.History, h.Date)
	}
	return views.RenderDetailPanel(data)
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, model.FormatDate(d))
	}
	return out
}
