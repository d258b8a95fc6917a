package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/reminderd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.modeBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Mode:     string(m.Mode),
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) modeBindings() []KeyBinding {
	switch m.Mode {
	case ModeForm:
		return []KeyBinding{
			{Key: "tab/shift+tab", Action: "next / previous field"},
			{Key: "enter", Action: "next field"},
			{Key: "ctrl+s", Action: "save"},
			{Key: "esc", Action: "cancel"},
		}
	case ModeConfirm:
		return []KeyBinding{
			{Key: "y", Action: "confirm"},
			{Key: "n/esc", Action: "decline"},
		}
	case ModePalette:
		return []KeyBinding{
			{Key: "enter", Action: "run command"},
			{Key: "esc", Action: "close palette"},
		}
	default:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: m.Keys.Add, Action: "add todo"},
			{Key: m.Keys.Edit + "/enter", Action: "edit todo"},
			{Key: m.Keys.Done + "/space", Action: "complete / undo for today"},
			{Key: m.Keys.Postpone, Action: "postpone one day"},
			{Key: m.Keys.Delete, Action: "delete todo"},
			{Key: m.Keys.History, Action: "toggle history"},
			{Key: m.Keys.Scope, Action: "toggle today / all"},
			{Key: m.Keys.Complete, Action: "show / hide completed"},
			{Key: m.Keys.Palette, Action: "open command palette"},
			{Key: m.Keys.Help, Action: "toggle help"},
			{Key: m.Keys.Quit, Action: "quit"},
		}
	}
}

func (m Model) helpBindings() []key.Binding {
	kbs := m.modeBindings()
	out := make([]key.Binding, 0, len(kbs))
	for _, kb := range kbs {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
