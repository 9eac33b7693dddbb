package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/chatledger/internal/tracker"
)

const runTimeout = 2 * time.Minute

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	padded     = lipgloss.NewStyle().Padding(1)
)

// RunCtx returns a context with the timeout used for tracker runs.
func RunCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), runTimeout)
}

// FormatResult renders the outcome of a run or preview.
func FormatResult(res *tracker.Result) string {
	var sb strings.Builder

	mode := "run"
	if res.DryRun {
		mode = "dry run"
	}

	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", res.Tracker, mode)))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(res.RunID.String()))
	sb.WriteString("\n\n")

	if b := res.Buckets; b != nil {
		fmt.Fprintf(&sb, "uploaded: %d  registered: %d  missing: %d  failed: %d  help: %d\n\n",
			len(b.ToUpload), len(b.NewReferences), len(b.MissingReference), len(b.FailedToParse), len(b.HelpRequested))
	}

	if res.Report == "" && res.Help == "" {
		sb.WriteString(mutedStyle.Render("Nothing to report."))
		return sb.String()
	}

	sb.WriteString(res.Report)

	if res.Help != "" {
		sb.WriteString("\n\n")
		sb.WriteString(res.Help)
	}

	return sb.String()
}
