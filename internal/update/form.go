package update

import (
	"errors"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hay-kot/criterio"

	"github.com/sandeepkv93/reminderd/internal/editflow"
	"github.com/sandeepkv93/reminderd/internal/views"
)

const (
	fieldTitle = iota
	fieldStartedAt
	fieldRepeat
	fieldContent
	fieldCount
)

var formFieldNames = [fieldCount]string{"title", "started_at", "repeat", "content"}

var formFieldLabels = [fieldCount]string{"Title", "Start date (YYYY-MM-DD)", "Repeat every N days", "Content (markdown)"}

func newFormState(req editflow.Request, form editflow.Form) FormState {
	var inputs [fieldContent]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Prompt = "  "
		in.CharLimit = 256
		in.Width = 48
		inputs[i] = in
	}
	inputs[fieldTitle].SetValue(form.Title)
	inputs[fieldStartedAt].SetValue(form.StartedAt)
	inputs[fieldStartedAt].Placeholder = "2006-01-02"
	inputs[fieldRepeat].SetValue(form.Repeat)

	content := textarea.New()
	content.SetWidth(50)
	content.SetHeight(6)
	content.ShowLineNumbers = false
	content.Placeholder = "What needs doing"
	content.SetValue(form.Content)

	fs := FormState{Request: req, Inputs: inputs, Content: content, Errors: map[string]string{}}
	fs.focus(fieldTitle)
	return fs
}

func (f *FormState) focus(i int) {
	f.Focus = (i + fieldCount) % fieldCount
	for j := range f.Inputs {
		if j == f.Focus {
			f.Inputs[j].Focus()
		} else {
			f.Inputs[j].Blur()
		}
	}
	if f.Focus == fieldContent {
		f.Content.Focus()
	} else {
		f.Content.Blur()
	}
}

// Values returns the raw form fields.
func (f FormState) Values() editflow.Form {
	return editflow.Form{
		Title:     f.Inputs[fieldTitle].Value(),
		StartedAt: f.Inputs[fieldStartedAt].Value(),
		Repeat:    f.Inputs[fieldRepeat].Value(),
		Content:   f.Content.Value(),
	}
}

func (m Model) openForm(req editflow.Request, title string) Model {
	form := editflow.FormFromRequest(req, m.now())
	if title != "" {
		form.Title = title
	}
	m.Form = newFormState(req, form)
	m.Mode = ModeForm
	if req.Type == editflow.TypeEdit {
		m.Status = StatusBar{Text: "editing todo"}
	} else {
		m.Status = StatusBar{Text: "new todo"}
	}
	return m
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Mode = ModeList
		m.Form = FormState{}
		m.Status = StatusBar{Text: "edit cancelled"}
		return m, nil
	case "tab":
		m.Form.focus(m.Form.Focus + 1)
		return m, nil
	case "shift+tab":
		m.Form.focus(m.Form.Focus - 1)
		return m, nil
	case "enter":
		if m.Form.Focus != fieldContent {
			m.Form.focus(m.Form.Focus + 1)
			return m, nil
		}
	case "ctrl+s":
		return m.saveForm()
	}

	if m.Form.Focus == fieldContent {
		m.Form.Content, _ = m.Form.Content.Update(msg)
	} else {
		m.Form.Inputs[m.Form.Focus], _ = m.Form.Inputs[m.Form.Focus].Update(msg)
	}
	return m, nil
}

func (m Model) saveForm() (Model, tea.Cmd) {
	res, err := m.backend.BuildForm(m.Form.Request, m.Form.Values())
	if err != nil {
		m.Form.Errors = map[string]string{}
		m.Form.Err = ""
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				m.Form.Errors[fe.Field] = fe.Err.Error()
			}
			m.Status = StatusBar{Text: "fix the highlighted fields", IsError: true}
		} else {
			m.Form.Err = err.Error()
			m.Status = StatusBar{Text: err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, m.submitCmd(res)
}

func (m Model) renderForm() string {
	heading := "new todo"
	if m.Form.Request.Type == editflow.TypeEdit {
		heading = "edit todo"
	}
	fields := make([]views.FormFieldData, 0, fieldCount)
	for i := 0; i < fieldCount; i++ {
		view := ""
		if i == fieldContent {
			view = m.Form.Content.View()
		} else {
			view = m.Form.Inputs[i].View()
		}
		fields = append(fields, views.FormFieldData{
			Label:   formFieldLabels[i],
			View:    view,
			Error:   m.Form.Errors[formFieldNames[i]],
			Focused: m.Form.Focus == i,
		})
	}
	return views.RenderFormPanel(views.FormPanelData{Heading: heading, Fields: fields, FormError: m.Form.Err})
}
