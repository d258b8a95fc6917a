package update

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/reminderd/internal/coordinator"
	"github.com/sandeepkv93/reminderd/internal/editflow"
	"github.com/sandeepkv93/reminderd/internal/views"
)

const reminderLogSize = 20

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.reloadCmd(),
		waitForSnapshotCmd(m.snapshots),
		waitForReminderCmd(m.reminderCh),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.Mode {
		case ModeForm:
			return m.handleFormKey(typed)
		case ModeConfirm:
			return m.handleConfirmKey(typed)
		case ModePalette:
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case m.Keys.Palette:
			return m.openPalette(), nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		return m.handleListKey(typed)

	case SnapshotMsg:
		m.Version = typed.Snapshot.Version
		return m, tea.Batch(m.entriesForSnapshotCmd(typed.Snapshot), waitForSnapshotCmd(m.snapshots))

	case EntriesMsg:
		m.Entries = typed.Entries
		return m.clampSelection(), nil

	case HistoryMsg:
		m.History[typed.TodoID] = typed.Items
		return m, nil

	case ReminderDueMsg:
		m.Reminders = append(m.Reminders, typed.Event)
		if len(m.Reminders) > reminderLogSize {
			m.Reminders = m.Reminders[len(m.Reminders)-reminderLogSize:]
		}
		m.Status = StatusBar{Text: fmt.Sprintf("reminder: %q is due today", typed.Event.Title)}
		return m, waitForReminderCmd(m.reminderCh)

	case OpenFormMsg:
		return m.openForm(typed.Request, typed.Title), nil

	case SavedMsg:
		m.Mode = ModeList
		m.Form = FormState{}
		m.SelectedID = typed.Todo.ID
		verb := "added"
		if typed.Op == editflow.OpUpdate {
			verb = "updated"
		}
		m.Status = StatusBar{Text: fmt.Sprintf("%s %q", verb, typed.Todo.Title)}
		return m, m.reloadCmd()

	case CompletedMsg:
		if typed.Created {
			m.Status = StatusBar{Text: fmt.Sprintf("#%d completed for today", typed.TodoID)}
		} else {
			m.Status = StatusBar{Text: fmt.Sprintf("#%d was already completed today", typed.TodoID)}
		}
		return m, m.refreshAfterHistoryChange(typed.TodoID)

	case UndoneMsg:
		m.Status = StatusBar{Text: fmt.Sprintf("#%d marked not done", typed.TodoID)}
		return m, m.refreshAfterHistoryChange(typed.TodoID)

	case PostponedMsg:
		if typed.Outcome == coordinator.PostponeAcknowledged {
			m.Status = StatusBar{Text: fmt.Sprintf("#%d postponed by one day", typed.TodoID)}
		} else {
			m.Status = StatusBar{Text: "postpone cancelled"}
		}
		return m, nil

	case DeletedMsg:
		delete(m.History, typed.TodoID)
		m.Status = StatusBar{Text: fmt.Sprintf("#%d deleted", typed.TodoID)}
		return m, m.reloadCmd()

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.logger.Warn().Err(typed.Err).Msg("ui action failed")
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			if m.Mode == ModeForm {
				m.Form.Err = typed.Err.Error()
			}
			if errors.Is(typed.Err, coordinator.ErrNotCompleted) {
				m.Status.Text = "not completed today"
			}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) refreshAfterHistoryChange(id int64) tea.Cmd {
	if m.HistoryShown && m.SelectedID == id {
		return tea.Batch(m.reloadCmd(), m.historyCmd(id))
	}
	return m.reloadCmd()
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}

	left := m.renderListView()
	right := m.renderDetailView()
	switch m.Mode {
	case ModeForm:
		right = m.renderForm()
	case ModeConfirm:
		right = views.RenderConfirm(m.confirmQuestion()) + "\n\n" + right
	case ModePalette:
		right = views.RenderCommandPalette(true, m.commandInput.View()) + "\n\n" + right
	}
	right += m.renderHelpIfVisible()

	notification := ""
	if n := len(m.Reminders); n > 0 {
		last := m.Reminders[n-1]
		notification = views.RenderNotification("reminder", fmt.Sprintf("#%d %s due %s", last.TodoID, last.Title, last.Date))
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("reminder | %s | mode: %s | selected: #%d", m.Scope, m.Mode, m.SelectedID),
		LeftPane:     left,
		RightPane:    right,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: notification,
		Footer: fmt.Sprintf("keys: %s add | %s edit | %s done | %s postpone | %s delete | %s cmd | %s help | %s quit",
			m.Keys.Add, m.Keys.Edit, m.Keys.Done, m.Keys.Postpone, m.Keys.Delete, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}
