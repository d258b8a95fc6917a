package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/reminderd/internal/editflow"
	"github.com/sandeepkv93/reminderd/internal/scheduler"
	"github.com/sandeepkv93/reminderd/internal/store"
)

func waitForSnapshotCmd(ch <-chan store.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

func waitForReminderCmd(ch <-chan scheduler.DueEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func (m Model) entriesForSnapshotCmd(snap store.Snapshot) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		entries, err := backend.Entries(ctx, snap.Todos)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return EntriesMsg{Entries: entries}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		entries, err := backend.TodayList(ctx)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return EntriesMsg{Entries: entries}
	}
}

func (m Model) historyCmd(id int64) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		items, err := backend.History(ctx, id)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return HistoryMsg{TodoID: id, Items: items}
	}
}

func (m Model) openEditCmd(id int64) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		req, err := backend.OpenEdit(ctx, id)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return OpenFormMsg{Request: req}
	}
}

func (m Model) submitCmd(res editflow.Result) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		todo, err := backend.Submit(ctx, res)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return SavedMsg{Todo: todo, Op: res.Op}
	}
}

func (m Model) completeCmd(id int64) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		_, created, err := backend.MarkComplete(ctx, id)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return CompletedMsg{TodoID: id, Created: created}
	}
}

func (m Model) undoCmd(id int64) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		if err := backend.UndoComplete(ctx, id); err != nil {
			return AppErrorMsg{Err: err}
		}
		return UndoneMsg{TodoID: id}
	}
}

func (m Model) postponeCmd(id int64, confirmed bool) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		out, err := backend.Postpone(ctx, id, confirmed)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return PostponedMsg{TodoID: id, Outcome: out}
	}
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		if err := backend.Delete(ctx, id); err != nil {
			return AppErrorMsg{Err: err}
		}
		return DeletedMsg{TodoID: id}
	}
}
