package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/reminderd/internal/commands"
	"github.com/sandeepkv93/reminderd/internal/editflow"
)

func (m Model) openPalette() Model {
	m.Mode = ModePalette
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) closePalette() Model {
	m.Mode = ModeList
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
		} else {
			m.commandInput, _ = m.commandInput.Update(msg)
		}
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
}

// executePaletteCommand runs the typed command. Handlers only decide what
// to do; the store call itself is returned as a tea.Cmd.
func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	parsed, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var cmd tea.Cmd
	res, err := commands.Execute(parsed, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			cmd = func() tea.Msg { return OpenFormMsg{Request: editflow.NewAdd(), Title: a.Title} }
			return commands.Result{Message: fmt.Sprintf("adding %q", a.Title)}, nil
		},
		Edit: func(a commands.TargetArgs) (commands.Result, error) {
			cmd = m.openEditCmd(a.ID)
			return commands.Result{Message: fmt.Sprintf("editing #%d", a.ID)}, nil
		},
		Done: func(a commands.TargetArgs) (commands.Result, error) {
			cmd = m.completeCmd(a.ID)
			return commands.Result{Message: fmt.Sprintf("completing #%d", a.ID)}, nil
		},
		Undo: func(a commands.TargetArgs) (commands.Result, error) {
			cmd = m.undoCmd(a.ID)
			return commands.Result{Message: fmt.Sprintf("undoing #%d", a.ID)}, nil
		},
		Postpone: func(a commands.TargetArgs) (commands.Result, error) {
			m = m.askConfirm(ConfirmPostpone, a.ID)
			return commands.Result{Message: m.Status.Text}, nil
		},
		Delete: func(a commands.TargetArgs) (commands.Result, error) {
			m = m.askConfirm(ConfirmDelete, a.ID)
			return commands.Result{Message: m.Status.Text}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			switch s.Subject {
			case commands.SubjectToday:
				m.Scope = ScopeToday
				m = m.clampSelection()
			case commands.SubjectAll:
				m.Scope = ScopeAll
				m = m.clampSelection()
			case commands.SubjectHistory:
				m.SelectedID = s.ID
				m.HistoryShown = true
				cmd = m.historyCmd(s.ID)
			}
			return commands.Result{Message: fmt.Sprintf("showing %s", s.Subject)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if m.Mode != ModeConfirm {
		m.Status = StatusBar{Text: res.Message}
	}
	return m, cmd
}
