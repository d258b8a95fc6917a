// Package config loads the reminder configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	uberconfig "go.uber.org/config"
	"gopkg.in/yaml.v3"
)

const (
	appName        = "reminder"
	configFileName = "config.yaml"
	dbFileName     = "reminder.db"
	logFileName    = "reminder.log"
)

// Config holds the application configuration.
type Config struct {
	DataDir   string    `yaml:"data_dir"`
	Reminders Reminders `yaml:"reminders"`
	TUI       TUI       `yaml:"tui"`
	Log       Log       `yaml:"log"`
}

// Reminders configures the due reminder planner.
type Reminders struct {
	Enabled     bool   `yaml:"enabled"`
	TimeOfDay   string `yaml:"time_of_day"`  // HH:MM
	RefreshSpec string `yaml:"refresh_spec"` // cron spec for replanning
	Buffer      int    `yaml:"buffer"`       // pending event channel size
}

type TUI struct {
	ShowCompleted bool   `yaml:"show_completed"`
	MarkdownStyle string `yaml:"markdown_style"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty means <data_dir>/reminder.log
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir: DefaultDataDir(),
		Reminders: Reminders{
			Enabled:     true,
			TimeOfDay:   "09:00",
			RefreshSpec: "@daily",
			Buffer:      64,
		},
		TUI: TUI{
			ShowCompleted: true,
			MarkdownStyle: "dark",
		},
		Log: Log{Level: "info"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/reminder/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appName, configFileName)
	}
	return filepath.Join(dir, appName, configFileName)
}

// DefaultDataDir is $XDG_DATA_HOME/reminder, or ~/.local/share/reminder.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}

// Load reads path over the defaults, applies REMINDER_* environment
// overrides and validates the result. A missing file is not an error.
// ${VAR} references inside the file are expanded from the environment.
func Load(path string) (*Config, error) {
	opts := []uberconfig.YAMLOption{uberconfig.Static(DefaultConfig())}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			opts = append(opts, uberconfig.File(path), uberconfig.Expand(os.LookupEnv))
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
	}

	provider, err := uberconfig.NewYAML(opts...)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := provider.Get(uberconfig.Root).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("populate config: %w", err)
	}

	cfg.overrideFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// overrideFromEnv applies REMINDER_* variables when present and parseable.
func (c *Config) overrideFromEnv() {
	if v, ok := getEnvString("REMINDER_DATA_DIR"); ok {
		c.DataDir = v
	}
	if v, ok := getEnvBool("REMINDER_REMINDERS_ENABLED"); ok {
		c.Reminders.Enabled = v
	}
	if v, ok := getEnvString("REMINDER_TIME_OF_DAY"); ok {
		c.Reminders.TimeOfDay = v
	}
	if v, ok := getEnvString("REMINDER_REFRESH_SPEC"); ok {
		c.Reminders.RefreshSpec = v
	}
	if v, ok := getEnvInt("REMINDER_SCHEDULER_BUFFER"); ok && v > 0 {
		c.Reminders.Buffer = v
	}
	if v, ok := getEnvBool("REMINDER_SHOW_COMPLETED"); ok {
		c.TUI.ShowCompleted = v
	}
	if v, ok := getEnvString("REMINDER_MARKDOWN_STYLE"); ok {
		c.TUI.MarkdownStyle = v
	}
	if v, ok := getEnvString("REMINDER_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, dbFileName)
}

func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, logFileName)
}

// Write stores c as YAML at path, creating parent directories. An existing
// file is only replaced when overwrite is set.
func (c Config) Write(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
