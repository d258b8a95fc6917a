package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/reminderd/internal/config"
)

type ConfigCmd struct {
	flags *Flags
	force bool
}

func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write a config file with the default settings",
				UsageText: "reminder config init [--force]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "force",
						Aliases:     []string{"f"},
						Usage:       "overwrite an existing file",
						Destination: &cmd.force,
					},
				},
				Action: cmd.runInit,
			},
			{
				Name:      "show",
				Usage:     "Print the effective configuration as YAML",
				UsageText: "reminder config show",
				Action:    cmd.runShow,
			},
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "reminder config validate",
				Description: "Loads the config file with environment overrides and reports every invalid field.",
				Action:      cmd.runValidate,
			},
		},
	})
	return app
}

func (cmd *ConfigCmd) runInit(_ context.Context, c *cli.Command) error {
	cfg := config.DefaultConfig()
	if cmd.flags.DataDir != "" {
		cfg.DataDir = cmd.flags.DataDir
	}
	if err := cfg.Write(cmd.flags.ConfigPath, cmd.force); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "wrote %s\n", cmd.flags.ConfigPath)
	return nil
}

func (cmd *ConfigCmd) runShow(_ context.Context, c *cli.Command) error {
	cfg, err := cmd.flags.loadConfig()
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = c.Root().Writer.Write(data)
	return err
}

func (cmd *ConfigCmd) runValidate(_ context.Context, c *cli.Command) error {
	if _, err := cmd.flags.loadConfig(); err != nil {
		_, _ = fmt.Fprintf(c.Root().Writer, "invalid: %s\n", cmd.flags.ConfigPath)
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "valid: %s\n", cmd.flags.ConfigPath)
	return nil
}
