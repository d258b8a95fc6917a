package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/sandeepkv93/reminderd/internal/coordinator"
	"github.com/sandeepkv93/reminderd/internal/model"
	"github.com/sandeepkv93/reminderd/internal/storage"
)

type env struct {
	configPath string
	dataDir    string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	return env{
		configPath: filepath.Join(dir, "config.yaml"),
		dataDir:    filepath.Join(dir, "data"),
	}
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := New("test")
	root.Writer = &buf
	root.ErrWriter = &buf

	full := append([]string{"reminder", "--config", e.configPath, "--data-dir", e.dataDir}, args...)
	err := root.Run(context.Background(), full)
	return buf.String(), err
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("reminder %s: unexpected error: %v\noutput: %s", strings.Join(args, " "), err, out)
	}
	return out
}

func decodeLines[T any](t *testing.T, out string) []T {
	t.Helper()
	var items []T
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		items = append(items, v)
	}
	return items
}

func hasFieldError(err error, field string) bool {
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return false
	}
	for _, fe := range fieldErrs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func today() string { return model.FormatDate(time.Now()) }

func TestTodoAddAndList(t *testing.T) {
	e := newEnv(t)

	added := decodeLines[model.Todo](t, e.mustRun(t, "todo", "add", "--title", "Buy milk", "--content", "2 liters"))
	if len(added) != 1 {
		t.Fatalf("expected one todo, got %d", len(added))
	}
	got := added[0]
	if got.ID == 0 || got.Delay != 0 || got.Repeat != 1 || got.StartedAt != today() {
		t.Fatalf("unexpected todo: %+v", got)
	}

	e.mustRun(t, "todo", "add", "--title", "Later", "--content", "x", "--started-at", model.FormatDate(time.Now().AddDate(0, 0, 2)))

	all := decodeLines[coordinator.Entry](t, e.mustRun(t, "todo", "list"))
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}

	due := decodeLines[coordinator.Entry](t, e.mustRun(t, "todo", "list", "--today"))
	if len(due) != 1 || due[0].Todo.Title != "Buy milk" || !due[0].DueToday {
		t.Fatalf("unexpected due list: %+v", due)
	}
}

func TestTodoAddRejectsZeroRepeat(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "todo", "add", "--title", "Bad", "--content", "x", "--repeat", "0")
	if !hasFieldError(err, "repeat") {
		t.Fatalf("expected repeat validation error, got %v", err)
	}

	if out := e.mustRun(t, "todo", "list"); strings.TrimSpace(out) != "" {
		t.Fatalf("expected empty list, got %q", out)
	}
}

func TestTodoEditKeepsIdentity(t *testing.T) {
	e := newEnv(t)
	orig := decodeLines[model.Todo](t, e.mustRun(t, "todo", "add", "--title", "Read", "--content", "a chapter", "--repeat", "2"))[0]

	edited := decodeLines[model.Todo](t, e.mustRun(t, "todo", "edit", "--title", "Read more", "1"))[0]
	if edited.ID != orig.ID || edited.CreatedAt != orig.CreatedAt || edited.Delay != orig.Delay {
		t.Fatalf("identity changed: before %+v after %+v", orig, edited)
	}
	if edited.Title != "Read more" || edited.Repeat != 2 || edited.Content != "a chapter" {
		t.Fatalf("unexpected edit result: %+v", edited)
	}

	if _, err := e.run(t, "todo", "edit", "--title", "x", "9"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTodoDoneUndoAndHistory(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "todo", "add", "--title", "Stretch", "--content", "10 minutes")

	first := decodeLines[completion](t, e.mustRun(t, "todo", "done", "#1"))[0]
	if !first.Created || first.Date != today() || first.TodoID != 1 {
		t.Fatalf("unexpected completion: %+v", first)
	}
	second := decodeLines[completion](t, e.mustRun(t, "todo", "done", "1"))[0]
	if second.Created || second.ID != first.ID {
		t.Fatalf("second completion should return the existing marker: %+v", second)
	}

	history := decodeLines[model.History](t, e.mustRun(t, "history", "list", "1"))
	if len(history) != 1 {
		t.Fatalf("expected one history row, got %d", len(history))
	}
	byDate := decodeLines[model.History](t, e.mustRun(t, "history", "list", "--date", today()))
	if len(byDate) != 1 {
		t.Fatalf("expected one history row for today, got %d", len(byDate))
	}

	if out := e.mustRun(t, "todo", "undo", "1"); strings.TrimSpace(out) != "undone" {
		t.Fatalf("unexpected undo output %q", out)
	}
	if _, err := e.run(t, "todo", "undo", "1"); !errors.Is(err, coordinator.ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
}

func TestTodoDeleteRequiresYes(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "todo", "add", "--title", "Old", "--content", "x")
	e.mustRun(t, "todo", "done", "1")

	if _, err := e.run(t, "todo", "delete", "1"); err == nil {
		t.Fatal("expected delete without --yes to fail")
	}
	e.mustRun(t, "todo", "show", "1")

	if out := e.mustRun(t, "todo", "delete", "--yes", "1"); strings.TrimSpace(out) != "deleted" {
		t.Fatalf("unexpected delete output %q", out)
	}
	if _, err := e.run(t, "todo", "show", "1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if out := e.mustRun(t, "history", "list", "--date", today()); strings.TrimSpace(out) != "" {
		t.Fatalf("history should be removed with the todo, got %q", out)
	}
}

func TestTodoPostponeChangesNothing(t *testing.T) {
	e := newEnv(t)
	before := e.mustRun(t, "todo", "add", "--title", "Call", "--content", "x", "--repeat", "3")

	if out := e.mustRun(t, "todo", "postpone", "--yes", "1"); strings.TrimSpace(out) != "acknowledged" {
		t.Fatalf("unexpected postpone output %q", out)
	}
	if out := e.mustRun(t, "todo", "postpone", "1"); strings.TrimSpace(out) != "declined" {
		t.Fatalf("unexpected postpone output %q", out)
	}

	entry := decodeLines[coordinator.Entry](t, e.mustRun(t, "todo", "show", "1"))[0]
	orig := decodeLines[model.Todo](t, before)[0]
	if entry.Todo != orig {
		t.Fatalf("postpone changed the todo: %+v vs %+v", entry.Todo, orig)
	}
}

func TestTodoShowRender(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "todo", "add", "--title", "Notes", "--content", "# Heading\n\nsome *text*")

	out := e.mustRun(t, "todo", "show", "--render", "1")
	if !strings.Contains(out, "Heading") || strings.Contains(out, "{") {
		t.Fatalf("expected rendered markdown, got %q", out)
	}
}

func TestInvalidIDArgument(t *testing.T) {
	e := newEnv(t)
	for _, args := range [][]string{
		{"todo", "done"},
		{"todo", "done", "abc"},
		{"todo", "done", "0"},
		{"history", "list"},
	} {
		if _, err := e.run(t, args...); err == nil {
			t.Errorf("reminder %s: expected error", strings.Join(args, " "))
		}
	}
}

func TestConfigCommands(t *testing.T) {
	e := newEnv(t)

	if out := e.mustRun(t, "config", "init"); !strings.Contains(out, e.configPath) {
		t.Fatalf("unexpected init output %q", out)
	}
	if _, err := e.run(t, "config", "init"); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	e.mustRun(t, "config", "init", "--force")

	out := e.mustRun(t, "config", "show")
	if !strings.Contains(out, "time_of_day:") || !strings.Contains(out, e.dataDir) {
		t.Fatalf("unexpected config show output:\n%s", out)
	}
	if out := e.mustRun(t, "config", "validate"); !strings.HasPrefix(out, "valid:") {
		t.Fatalf("unexpected validate output %q", out)
	}

	if err := os.WriteFile(e.configPath, []byte("tui:\n  markdown_style: neon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := e.run(t, "config", "validate")
	if !hasFieldError(err, "tui.markdown_style") {
		t.Fatalf("expected markdown_style error, got %v", err)
	}
	if !strings.HasPrefix(out, "invalid:") {
		t.Fatalf("unexpected validate output %q", out)
	}

	if _, err := e.run(t, "todo", "list"); err == nil {
		t.Fatal("expected commands to fail on an invalid config")
	}
}

func TestInvalidLogLevelFlag(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run(t, "--log-level", "loud", "todo", "list"); err == nil {
		t.Fatal("expected invalid log level to fail")
	}
}

func TestWatchPrintsDueTodos(t *testing.T) {
	t.Setenv("REMINDER_TIME_OF_DAY", "00:00")
	e := newEnv(t)
	e.mustRun(t, "todo", "add", "--title", "Stretch", "--content", "x")
	e.mustRun(t, "todo", "add", "--title", "Done already", "--content", "x")
	e.mustRun(t, "todo", "done", "2")

	events := decodeLines[struct {
		TodoID int64  `json:"todo_id"`
		Title  string `json:"title"`
		Date   string `json:"date"`
	}](t, e.mustRun(t, "watch", "--for", "1s"))

	if len(events) != 1 {
		t.Fatalf("expected one due event, got %+v", events)
	}
	if events[0].TodoID != 1 || events[0].Title != "Stretch" || events[0].Date != today() {
		t.Fatalf("unexpected event %+v", events[0])
	}
}

func TestUnknownCommand(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "frobnicate")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}
