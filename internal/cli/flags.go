package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandeepkv93/reminderd/internal/app"
	"github.com/sandeepkv93/reminderd/internal/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook for every command outside the
	// config group.
	Config *config.Config

	mu  sync.Mutex
	app *app.App
}

// App opens the database on first use.
func (f *Flags) App(ctx context.Context) (*app.App, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.app != nil {
		return f.app, nil
	}
	if f.Config == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	a, err := app.Open(ctx, f.Config)
	if err != nil {
		return nil, err
	}
	f.app = a
	return a, nil
}

func (f *Flags) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.app == nil {
		return nil
	}
	err := f.app.Close()
	f.app = nil
	return err
}
