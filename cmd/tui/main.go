package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/chatledger/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/chatledger/internal/app"
	"github.com/MrJamesThe3rd/chatledger/internal/config"
	"github.com/MrJamesThe3rd/chatledger/internal/logging"
	"github.com/MrJamesThe3rd/chatledger/internal/tracker"
)

type model struct {
	svc *tracker.Service

	trackersView view.TrackersModel
	// current is the screen on top of the trackers list, nil when none.
	current view.View
	size    tea.WindowSizeMsg
}

func initialModel(ctx context.Context) (model, func() error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logOut := io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}

		logOut = f
	}

	if err := logging.SetupWriter(logOut, cfg.Log.Level, cfg.Log.Format); err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}

	// Replay replies are shown in the result screens, not echoed.
	a, err := app.New(ctx, cfg, io.Discard)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	return model{
		svc:          a.Service,
		trackersView: view.NewTrackersModel(a.Trackers),
	}, a.Close
}

func (m model) Init() tea.Cmd {
	return m.trackersView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.current == nil && msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.size = msg
	case view.OpenRunMsg:
		return m.push(view.NewRunModel(m.svc, msg.Tracker, msg.DryRun))
	case view.OpenPreviewMsg:
		return m.push(view.NewPreviewModel(m.svc, msg.Tracker))
	case view.BackMsg:
		m.current = nil
		return m, nil
	}

	var cmd tea.Cmd

	if m.current != nil {
		var next tea.Model
		next, cmd = m.current.Update(msg)
		m.current = next.(view.View)

		return m, cmd
	}

	next, cmd := m.trackersView.Update(msg)
	m.trackersView = next.(view.TrackersModel)

	return m, cmd
}

func (m model) push(v view.View) (tea.Model, tea.Cmd) {
	m.current = v

	cmds := []tea.Cmd{v.Init()}
	if m.size.Width > 0 {
		size := m.size
		cmds = append(cmds, func() tea.Msg { return size })
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.current != nil {
		return m.current.View()
	}

	return m.trackersView.View()
}

func main() {
	ctx := context.Background()

	m, closeApp := initialModel(ctx)
	defer closeApp()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
