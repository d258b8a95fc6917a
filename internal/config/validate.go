package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/reminderd/internal/scheduler"
)

// MarkdownStyles lists the glamour standard styles accepted for tui.markdown_style.
var MarkdownStyles = []string{"auto", "dark", "light", "notty", "ascii", "dracula", "pink", "tokyo-night"}

// Validate checks structural correctness of the configuration.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("reminders.time_of_day", c.Reminders.TimeOfDay, func(s string) error {
			_, err := scheduler.ParseTimeOfDay(s)
			return err
		}),
		criterio.Run("reminders.refresh_spec", c.Reminders.RefreshSpec, scheduler.ValidateSpec),
		criterio.Run("reminders.buffer", c.Reminders.Buffer, func(n int) error {
			if n < 1 {
				return fmt.Errorf("must be at least 1, got %d", n)
			}
			return nil
		}),
		criterio.Run("tui.markdown_style", c.TUI.MarkdownStyle, func(s string) error {
			if !slices.Contains(MarkdownStyles, s) {
				return fmt.Errorf("unknown style %q, expected one of %s", s, strings.Join(MarkdownStyles, ", "))
			}
			return nil
		}),
		criterio.Run("log.level", c.Log.Level, func(s string) error {
			_, err := zerolog.ParseLevel(s)
			return err
		}),
	)
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("is required")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
