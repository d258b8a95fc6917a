package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/reminderd/internal/model"
)

type HistoryCmd struct {
	flags *Flags
	date  string
}

func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "history",
		Usage: "Inspect completion history",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List completions of a todo, or of every todo on a date",
				UsageText: "reminder history list <todo-id> | reminder history list --date <YYYY-MM-DD>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "date",
						Aliases:     []string{"d"},
						Usage:       "list completions on this date instead of for one todo",
						Destination: &cmd.date,
					},
				},
				Action: cmd.runList,
			},
		},
	})
	return app
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	a, err := cmd.flags.App(ctx)
	if err != nil {
		return err
	}

	var items []model.History
	if cmd.date != "" {
		if _, err := model.ParseDate(cmd.date); err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		items, err = a.History.ListByDate(ctx, cmd.date)
	} else {
		id, idErr := argID(c, 0, "reminder history list <todo-id>")
		if idErr != nil {
			return idErr
		}
		items, err = a.Coordinator.History(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	for _, h := range items {
		if err := writeJSONLine(c.Root().Writer, h); err != nil {
			return err
		}
	}
	return nil
}
