package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

type WatchCmd struct {
	flags *Flags
	until time.Duration
}

func NewWatchCmd(flags *Flags) *WatchCmd {
	return &WatchCmd{flags: flags}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Print due reminders as JSON lines until interrupted",
		UsageText: "reminder watch [--for <duration>]",
		Description: `Runs the reminder planner in the foreground. Every todo due today that is
not completed yet is printed once at reminders.time_of_day.

Examples:
  reminder watch
  reminder watch --for 8h`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "for",
				Usage:       "stop after this long (0 runs until interrupted)",
				Destination: &cmd.until,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	a, err := cmd.flags.App(ctx)
	if err != nil {
		return err
	}

	if cmd.until > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.until)
		defer cancel()
	}

	due, stop, err := a.Reminders(ctx)
	if err != nil {
		return err
	}
	defer stop()

	log.Info().Str("time_of_day", a.Config.Reminders.TimeOfDay).Msg("watching for due todos")
	for ev := range due {
		if err := writeJSONLine(c.Root().Writer, ev); err != nil {
			return err
		}
	}
	return nil
}
