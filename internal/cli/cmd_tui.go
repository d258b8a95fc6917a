package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/reminderd/internal/logging"
	"github.com/sandeepkv93/reminderd/internal/scheduler"
	"github.com/sandeepkv93/reminderd/internal/update"
)

type TuiCmd struct {
	flags *Flags
}

func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	a, err := cmd.flags.App(ctx)
	if err != nil {
		return err
	}

	var reminders <-chan scheduler.DueEvent
	if a.Config.Reminders.Enabled {
		ch, stop, err := a.Reminders(ctx)
		if err != nil {
			return err
		}
		defer stop()
		reminders = ch
	}

	m := update.NewModel(ctx, a.Coordinator, update.Options{
		ShowCompleted: a.Config.TUI.ShowCompleted,
		MarkdownStyle: a.Config.TUI.MarkdownStyle,
		Reminders:     reminders,
		Logger:        logging.Component("tui"),
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
