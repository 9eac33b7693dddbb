package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/chatledger/internal/tracker"
)

type previewState int

const (
	previewStateInput previewState = iota
	previewStateRunning
	previewStateResult
)

// PreviewModel classifies typed text against a tracker without writing.
type PreviewModel struct {
	CommonModel
	svc     *tracker.Service
	tracker *tracker.Tracker

	state    previewState
	form     *huh.Form
	viewport viewport.Model
	err      error
}

func NewPreviewModel(svc *tracker.Service, t *tracker.Tracker) PreviewModel {
	m := PreviewModel{
		svc:      svc,
		tracker:  t,
		viewport: viewport.New(80, 20),
	}
	m.form = m.buildForm()

	return m
}

func (m PreviewModel) Title() string { return "Preview " + m.tracker.Name }

func (m PreviewModel) ShortHelp() string {
	if m.state == previewStateResult {
		return "↑/↓: scroll | Enter: new preview | Esc: back"
	}

	return "Alt+Enter / Ctrl+J: new line | Enter: preview | Esc: back"
}

func (m PreviewModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m PreviewModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Key("text").
				Title(fmt.Sprintf("Messages for %s", m.tracker.Name)).
				Description("One entry per line, as they would be sent to the chat.").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("type at least one line")
					}

					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

type previewResultMsg struct {
	res *tracker.Result
	err error
}

func (m PreviewModel) previewCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := RunCtx()
		defer cancel()

		res, err := m.svc.Preview(ctx, m.tracker, text)

		return previewResultMsg{res: res, err: err}
	}
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case previewResultMsg:
		m.state = previewStateResult
		m.err = msg.err

		if msg.err == nil {
			m.viewport.SetContent(FormatResult(msg.res))
		}

		return m, nil
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 6
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if msg.Type == tea.KeyEnter && m.state == previewStateResult {
			m.state = previewStateInput
			m.err = nil
			m.form = m.buildForm()

			return m, m.form.Init()
		}
	}

	if m.state == previewStateRunning {
		return m, nil
	}

	if m.state == previewStateResult {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = previewStateRunning

	return m, m.previewCmd(m.form.GetString("text"))
}

func (m PreviewModel) View() string {
	switch m.state {
	case previewStateInput:
		return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.form.View(),
			"",
			mutedStyle.Render(m.ShortHelp()),
		))
	case previewStateRunning:
		return padded.Render(fmt.Sprintf("Classifying against %s...", m.tracker.Name))
	}

	if m.err != nil {
		return padded.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		"",
		mutedStyle.Render(m.ShortHelp()),
	))
}
