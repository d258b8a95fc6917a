package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/reminderd/internal/coordinator"
	"github.com/sandeepkv93/reminderd/internal/editflow"
	"github.com/sandeepkv93/reminderd/internal/model"
	"github.com/sandeepkv93/reminderd/internal/views"
)

// TodoCmd implements the reminder todo command group.
type TodoCmd struct {
	flags *Flags

	// add / edit flags
	title     string
	content   string
	startedAt string
	repeat    int

	// list flags
	listToday   bool
	listPending bool

	// show flags
	render bool

	// delete / postpone flags
	yes bool
}

func NewTodoCmd(flags *Flags) *TodoCmd {
	return &TodoCmd{flags: flags}
}

// Register adds the todo command to the application.
func (cmd *TodoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "todo",
		Usage: "Manage todos",
		Description: `Todo commands print JSON lines so they can be piped to jq.

Examples:
  reminder todo add --title "Water plants" --content "Balcony too" --repeat 3
  reminder todo list --today
  reminder todo done 4
  reminder todo delete --yes 4`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.editCmd(),
			cmd.listCmd(),
			cmd.showCmd(),
			cmd.deleteCmd(),
			cmd.doneCmd(),
			cmd.undoCmd(),
			cmd.postponeCmd(),
		},
	})
	return app
}

func (cmd *TodoCmd) fieldFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Aliases:     []string{"t"},
			Usage:       "todo title",
			Required:    required,
			Destination: &cmd.title,
		},
		&cli.StringFlag{
			Name:        "content",
			Usage:       "todo body, markdown",
			Required:    required,
			Destination: &cmd.content,
		},
		&cli.StringFlag{
			Name:        "started-at",
			Usage:       "first due date, YYYY-MM-DD (defaults to today)",
			Destination: &cmd.startedAt,
		},
		&cli.IntFlag{
			Name:        "repeat",
			Aliases:     []string{"r"},
			Usage:       "repeat every N days",
			Value:       1,
			Destination: &cmd.repeat,
		},
	}
}

func (cmd *TodoCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a todo",
		UsageText: "reminder todo add --title <title> --content <markdown> [--started-at <date>] [--repeat <days>]",
		Flags:     cmd.fieldFlags(true),
		Action:    cmd.runAdd,
	}
}

func (cmd *TodoCmd) editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit a todo; unset flags keep their value",
		UsageText: "reminder todo edit [--title <title>] [--content <markdown>] [--started-at <date>] [--repeat <days>] <id>",
		Flags:     cmd.fieldFlags(false),
		Action:    cmd.runEdit,
	}
}

func (cmd *TodoCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List todos with today's status",
		UsageText: "reminder todo list [--today] [--pending]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "today",
				Usage:       "only todos due today",
				Destination: &cmd.listToday,
			},
			&cli.BoolFlag{
				Name:        "pending",
				Usage:       "hide todos completed today",
				Destination: &cmd.listPending,
			},
		},
		Action: cmd.runList,
	}
}

func (cmd *TodoCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one todo",
		UsageText: "reminder todo show [--render] <id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "render",
				Usage:       "print the rendered markdown body instead of JSON",
				Destination: &cmd.render,
			},
		},
		Action: cmd.runShow,
	}
}

func (cmd *TodoCmd) yesFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:        "yes",
		Aliases:     []string{"y"},
		Usage:       "confirm without prompting",
		Destination: &cmd.yes,
	}
}

func (cmd *TodoCmd) deleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a todo and its completion history",
		UsageText: "reminder todo delete --yes <id>",
		Flags:     []cli.Flag{cmd.yesFlag()},
		Action:    cmd.runDelete,
	}
}

func (cmd *TodoCmd) doneCmd() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Mark a todo completed for today",
		UsageText: "reminder todo done <id>",
		Action:    cmd.runDone,
	}
}

func (cmd *TodoCmd) undoCmd() *cli.Command {
	return &cli.Command{
		Name:      "undo",
		Usage:     "Remove today's completion of a todo",
		UsageText: "reminder todo undo <id>",
		Action:    cmd.runUndo,
	}
}

func (cmd *TodoCmd) postponeCmd() *cli.Command {
	return &cli.Command{
		Name:      "postpone",
		Usage:     "Postpone a todo by one day",
		UsageText: "reminder todo postpone --yes <id>",
		Flags:     []cli.Flag{cmd.yesFlag()},
		Action:    cmd.runPostpone,
	}
}

func (cmd *TodoCmd) coordinator(ctx context.Context) (*coordinator.Coordinator, error) {
	a, err := cmd.flags.App(ctx)
	if err != nil {
		return nil, err
	}
	return a.Coordinator, nil
}

func (cmd *TodoCmd) runAdd(ctx context.Context, c *cli.Command) error {
	coord, err := cmd.coordinator(ctx)
	if err != nil {
		return err
	}

	req := coord.OpenAdd()
	form := editflow.FormFromRequest(req, time.Now())
	form.Title = cmd.title
	form.Content = cmd.content
	form.Repeat = strconv.Itoa(cmd.repeat)
	if cmd.startedAt != "" {
		form.StartedAt = cmd.startedAt
	} else {
		form.StartedAt = coord.Today()
	}

	return cmd.submit(ctx, c, coord, req, form)
}

func (cmd *TodoCmd) runEdit(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "reminder todo edit <id>")
	if err != nil {
		return err
	}
	coord, err := cmd.coordinator(ctx)
	if err != nil {
		return err
	}

	req, err := coord.OpenEdit(ctx, id)
	if err != nil {
		return fmt.Errorf("edit todo %d: %w", id, err)
	}
	form := editflow.FormFromRequest(req, time.Now())
	if c.IsSet("title") {
		form.Title = cmd.title
	}
	if c.IsSet("content") {
		form.Content = cmd.content
	}
	if c.IsSet("started-at") {
		form.StartedAt = cmd.startedAt
	}
	if c.IsSet("repeat") {
		form.Repeat = strconv.Itoa(cmd.repeat)
	}

	return cmd.submit(ctx, c, coord, req, form)
}

func (cmd *TodoCmd) submit(ctx context.Context, c *cli.Command, coord *coordinator.Coordinator, req editflow.Request, form editflow.Form) error {
	res, err := coord.BuildForm(req, form)
	if err != nil {
		return fmt.Errorf("invalid todo: %w", err)
	}
	todo, err := coord.Submit(ctx, res)
	if err != nil {
		return fmt.Errorf("save todo: %w", err)
	}
	log.Debug().Int64("todo_id", todo.ID).Str("op", res.Op.String()).Msg("todo saved from cli")
	return writeJSONLine(c.Root().Writer, todo)
}

func (cmd *TodoCmd) runList(ctx context.Context, c *cli.Command) error {
	coord, err := cmd.coordinator(ctx)
	if err != nil {
		return err
	}
	entries, err := coord.TodayList(ctx)
	if err != nil {
		return fmt.Errorf("list todos: %w", err)
	}
	for _, e := range entries {
		if cmd.listToday && !e.DueToday {
			continue
		}
		if cmd.listPending && e.Completed {
			continue
		}
		if err := writeJSONLine(c.Root().Writer, e); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *TodoCmd) runShow(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "reminder todo show <id>")
	if err != nil {
		return err
	}
	a, err := cmd.flags.App(ctx)
	if err != nil {
		return err
	}
	todo, err := a.Todos.GetOne(ctx, id)
	if err != nil {
		return fmt.Errorf("show todo %d: %w", id, err)
	}

	if cmd.render {
		_, err := fmt.Fprintln(c.Root().Writer, views.RenderMarkdown(todo.Content, a.Config.TUI.MarkdownStyle))
		return err
	}

	entries, err := a.Coordinator.Entries(ctx, []model.Todo{todo})
	if err != nil {
		return fmt.Errorf("show todo %d: %w", id, err)
	}
	return writeJSONLine(c.Root().Writer, entries[0])
}

func (cmd *TodoCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "reminder todo delete --yes <id>")
	if err != nil {
		return err
	}
	if !cmd.yes {
		return fmt.Errorf("refusing to delete todo %d without --yes", id)
	}
	coord, err := cmd.coordinator(ctx)
	if err != nil {
		return err
	}
	if err := coord.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	_, _ = fmt.Fprintln(c.Root().Writer, "deleted")
	return nil
}

type completion struct {
	model.History
	Created bool `json:"created"`
}

func (cmd *TodoCmd) runDone(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "reminder todo done <id>")
	if err != nil {
		return err
	}
	coord, err := cmd.coordinator(ctx)
	if err != nil {
		return err
	}
	h, created, err := coord.MarkComplete(ctx, id)
	if err != nil {
		return fmt.Errorf("complete todo %d: %w", id, err)
	}
	return writeJSONLine(c.Root().Writer, completion{History: h, Created: created})
}

func (cmd *TodoCmd) runUndo(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "reminder todo undo <id>")
	if err != nil {
		return err
	}
	coord, err := cmd.coordinator(ctx)
	if err != nil {
		return err
	}
	if err := coord.UndoComplete(ctx, id); err != nil {
		return fmt.Errorf("undo todo %d: %w", id, err)
	}
	_, _ = fmt.Fprintln(c.Root().Writer, "undone")
	return nil
}

func (cmd *TodoCmd) runPostpone(ctx context.Context, c *cli.Command) error {
	id, err := argID(c, 0, "reminder todo postpone --yes <id>")
	if err != nil {
		return err
	}
	coord, err := cmd.coordinator(ctx)
	if err != nil {
		return err
	}
	out, err := coord.Postpone(ctx, id, cmd.yes)
	if err != nil {
		return fmt.Errorf("postpone todo %d: %w", id, err)
	}
	_, _ = fmt.Fprintln(c.Root().Writer, out.String())
	return nil
}
