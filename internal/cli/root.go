// Package cli builds the reminder command line: scriptable subcommands over
// the todo and history stores, plus the TUI as the default action.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/reminderd/internal/config"
	"github.com/sandeepkv93/reminderd/internal/logging"
)

// New returns the root command. Subcommands share flags.
func New(version string) *cli.Command {
	flags := &Flags{}
	var logCloser func()

	root := &cli.Command{
		Name:      "reminder",
		Usage:     "Track recurring todos and get reminded when they are due",
		UsageText: "reminder [global options] command [command options]",
		Description: `reminder keeps a list of recurring todos in a local SQLite database.

Run 'reminder' with no arguments to open the interactive list.
Run 'reminder todo list' to print today's list as JSON lines.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic); overrides log.level",
				Sources:     cli.EnvVars("REMINDER_LOG_LEVEL"),
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/reminder.log)",
				Sources:     cli.EnvVars("REMINDER_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("REMINDER_CONFIG"),
				Value:       config.DefaultPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory; overrides data_dir",
				Sources:     cli.EnvVars("REMINDER_DATA_DIR"),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// config subcommands read and write the file themselves
			if c.Args().First() == "config" {
				return ctx, nil
			}

			cfg, err := flags.loadConfig()
			if err != nil {
				return ctx, err
			}

			logger, closer, err := logging.New(cfg.Log.Level, cfg.LogFile())
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer
			flags.Config = cfg

			log.Debug().Str("config", flags.ConfigPath).Str("data_dir", cfg.DataDir).Msg("config loaded")
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			err := flags.close()
			if err != nil {
				log.Error().Err(err).Msg("failed to close database")
			}
			if logCloser != nil {
				logCloser()
			}
			return err
		},
	}

	root = NewTodoCmd(flags).Register(root)
	root = NewHistoryCmd(flags).Register(root)
	root = NewConfigCmd(flags).Register(root)
	root = NewWatchCmd(flags).Register(root)

	tui := NewTuiCmd(flags)
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'reminder --help' for usage", c.Args().First())
		}
		return tui.Run(ctx, c)
	}

	return root
}

// loadConfig reads the config file and applies the global flag overrides.
func (f *Flags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// argID reads the todo id at position i. A leading '#' is accepted.
func argID(c *cli.Command, i int, usage string) (int64, error) {
	if c.NArg() <= i {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	raw := strings.TrimPrefix(strings.TrimSpace(c.Args().Get(i)), "#")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid todo id %q", c.Args().Get(i))
	}
	return id, nil
}
