package views

import (
	"fmt"
	"strings"
)

type ListRowData struct {
	ID        int64
	Title     string
	Repeat    int
	NextDue   string
	DueToday  bool
	Completed bool
}

type ListPanelData struct {
	Scope         string
	ShowCompleted bool
	Rows          []ListRowData
	SelectedID    int64
	Hidden        int
}

type DetailPanelData struct {
	ID           int64
	Title        string
	StartedAt    string
	Repeat       int
	Delay        int
	CreatedAt    string
	ContentView  string
	Upcoming     []string
	HistoryShown bool
	History      []string
}

type FormFieldData struct {
	Label   string
	View    string
	Error   string
	Focused bool
}

type FormPanelData struct {
	Heading   string
	Fields    []FormFieldData
	FormError string
}

type HelpPanelData struct {
	Mode     string
	Bindings []string
	HelpView string
}

func RenderListPanel(data ListPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("todos (%s):\n", data.Scope))
	if len(data.Rows) == 0 {
		b.WriteString("  (nothing here, press [a] to add)\n")
	}
	for _, row := range data.Rows {
		cursor := " "
		if row.ID == data.SelectedID {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %s #%d %s", cursor, badge(row), row.ID, row.Title)
		switch {
		case row.Completed:
			line = doneStyle.Render(line)
		case row.DueToday:
			line = dueStyle.Render(line)
		}
		b.WriteString(line)
		if !row.DueToday && row.NextDue != "" {
			b.WriteString(fmt.Sprintf(" next:%s", row.NextDue))
		}
		b.WriteString(fmt.Sprintf(" every %s\n", plural(row.Repeat, "day")))
	}
	if data.Hidden > 0 {
		b.WriteString(fmt.Sprintf("\n%d completed hidden, [c] to show\n", data.Hidden))
	}
	return strings.TrimSpace(b.String())
}

func RenderDetailPanel(data DetailPanelData) string {
	if data.ID == 0 {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("id: %d\n", data.ID))
	b.WriteString(fmt.Sprintf("title: %s\n", data.Title))
	b.WriteString(fmt.Sprintf("started: %s\n", data.StartedAt))
	b.WriteString(fmt.Sprintf("repeat: every %s\n", plural(data.Repeat, "day")))
	if data.Delay > 0 {
		b.WriteString(fmt.Sprintf("delay: %s\n", plural(data.Delay, "day")))
	}
	b.WriteString(fmt.Sprintf("created: %s\n", data.CreatedAt))
	if len(data.Upcoming) > 0 {
		b.WriteString("upcoming: " + strings.Join(data.Upcoming, ", ") + "\n")
	}
	b.WriteString("\n" + data.ContentView + "\n")
	if data.HistoryShown {
		b.WriteString("\nhistory:\n")
		if len(data.History) == 0 {
			b.WriteString("  (never completed)\n")
		}
		for _, h := range data.History {
			b.WriteString("  - " + h + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderFormPanel(data FormPanelData) string {
	var b strings.Builder
	b.WriteString(data.Heading + ":\n")
	b.WriteString("keys: [tab] next [shift+tab] prev [ctrl+s] save [esc] cancel\n")
	for _, f := range data.Fields {
		marker := " "
		if f.Focused {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("\n%s %s\n%s\n", marker, f.Label, f.View))
		if f.Error != "" {
			b.WriteString(errorStyle.Render("  "+f.Error) + "\n")
		}
	}
	if data.FormError != "" {
		b.WriteString("\n" + errorStyle.Render(data.FormError) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderConfirm(question string) string {
	if question == "" {
		return ""
	}
	return fmt.Sprintf("confirm: %s [y/n]", question)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\nhelp (%s):\n%s\n%s",
		data.Mode,
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func badge(row ListRowData) string {
	switch {
	case row.Completed:
		return "[DONE]"
	case row.DueToday:
		return "[DUE] "
	default:
		return "[    ]"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
