package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/chatledger/internal/tracker"
)

type TrackersModel struct {
	CommonModel

	trackers []*tracker.Tracker
	table    table.Model

	// confirm is shown before a run that writes and replies.
	confirm *huh.Form
}

func NewTrackersModel(trackers []*tracker.Tracker) TrackersModel {
	columns := []table.Column{
		{Title: "Name", Width: 20},
		{Title: "Kind", Width: 12},
		{Title: "Chat", Width: 16},
	}

	rows := make([]table.Row, 0, len(trackers))
	for _, t := range trackers {
		rows = append(rows, table.Row{t.Name, t.Profile.Kind, strconv.FormatInt(t.ChatID, 10)})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 15)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return TrackersModel{trackers: trackers, table: t}
}

func (m TrackersModel) Title() string { return "Trackers" }

func (m TrackersModel) ShortHelp() string {
	if m.confirm != nil {
		return "Navigate form | Esc: cancel"
	}

	return "Enter: run | d: dry run | p: preview | q: quit"
}

func (m TrackersModel) Init() tea.Cmd {
	return nil
}

func (m TrackersModel) selected() *tracker.Tracker {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.trackers) {
		return nil
	}

	return m.trackers[idx]
}

func (m TrackersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		t := m.selected()

		switch keyMsg.String() {
		case "enter":
			if t == nil {
				return m, nil
			}

			m.confirm = huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Key("confirm").
						Title(fmt.Sprintf("Run %s?", t.Name)).
						Description("New rows are written and the chat gets a reply."),
				),
			).WithWidth(50).WithShowHelp(false)
			m.table.Blur()

			return m, m.confirm.Init()
		case "d":
			if t != nil {
				return m, open(OpenRunMsg{Tracker: t, DryRun: true})
			}
		case "p":
			if t != nil {
				return m, open(OpenPreviewMsg{Tracker: t})
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TrackersModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.confirm = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}

	if m.confirm.State != huh.StateCompleted {
		return m, cmd
	}

	confirmed := m.confirm.GetBool("confirm")

	m.confirm = nil
	m.table.Focus()

	if !confirmed {
		return m, nil
	}

	return m, open(OpenRunMsg{Tracker: m.selected()})
}

func (m TrackersModel) View() string {
	if m.confirm != nil {
		return padded.Render(m.confirm.View())
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("chatledger"),
		"",
		m.table.View(),
		"",
		mutedStyle.Render(m.ShortHelp()),
	))
}

func open(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
