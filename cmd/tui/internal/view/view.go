package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/chatledger/internal/tracker"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// OpenRunMsg asks for a run of Tracker.
type OpenRunMsg struct {
	Tracker *tracker.Tracker
	DryRun  bool
}

// OpenPreviewMsg asks for the preview screen of Tracker.
type OpenPreviewMsg struct {
	Tracker *tracker.Tracker
}
