package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/chatledger/internal/tracker"
)

type runState int

const (
	runStateRunning runState = iota
	runStateResult
)

// RunModel runs a tracker once and shows the outcome.
type RunModel struct {
	CommonModel
	svc     *tracker.Service
	tracker *tracker.Tracker
	dryRun  bool

	state    runState
	spinner  spinner.Model
	viewport viewport.Model
	err      error
}

func NewRunModel(svc *tracker.Service, t *tracker.Tracker, dryRun bool) RunModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return RunModel{
		svc:      svc,
		tracker:  t,
		dryRun:   dryRun,
		spinner:  s,
		viewport: viewport.New(80, 20),
	}
}

func (m RunModel) Title() string { return "Run " + m.tracker.Name }

func (m RunModel) ShortHelp() string { return "↑/↓: scroll | Esc: back" }

func (m RunModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runCmd())
}

type runResultMsg struct {
	res *tracker.Result
	err error
}

func (m RunModel) runCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := RunCtx()
		defer cancel()

		res, err := m.svc.Run(ctx, m.tracker, tracker.RunOptions{DryRun: m.dryRun})

		return runResultMsg{res: res, err: err}
	}
}

func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runResultMsg:
		m.state = runStateResult
		m.err = msg.err

		if msg.err == nil {
			m.viewport.SetContent(FormatResult(msg.res))
		}

		return m, nil
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 6

		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && m.state == runStateResult {
			return m, Back
		}
	}

	var cmd tea.Cmd

	switch m.state {
	case runStateRunning:
		m.spinner, cmd = m.spinner.Update(msg)
	case runStateResult:
		m.viewport, cmd = m.viewport.Update(msg)
	}

	return m, cmd
}

func (m RunModel) View() string {
	switch m.state {
	case runStateRunning:
		return padded.Render(fmt.Sprintf("%s Running %s...", m.spinner.View(), m.tracker.Name))
	case runStateResult:
		if m.err != nil {
			return padded.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.viewport.View(),
			"",
			mutedStyle.Render(m.ShortHelp()),
		))
	}

	return ""
}
