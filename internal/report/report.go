// Package report renders the chat replies sent after a batch run.
package report

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/chatledger/internal/batch"
	"github.com/MrJamesThe3rd/chatledger/internal/record"
	"github.com/MrJamesThe3rd/chatledger/internal/stats"
)

const bullet = "\t-> "

// ShouldSend reports whether a run produced anything worth a summary reply.
func ShouldSend(b *batch.Buckets) bool {
	return b.Succeeded() || len(b.FailedToParse) > 0 || len(b.MissingReference) > 0
}

// Compose renders the summary of a run. The statistics paragraph is added
// only when something succeeded and s is not nil. flagged lists ledger rows
// that need the user's attention.
func Compose(tpl Templates, b *batch.Buckets, s *stats.Monthly, flagged []string, ref time.Time) string {
	var sb strings.Builder

	sb.WriteString(header(tpl))

	var ok []string
	for _, r := range b.ToUpload {
		ok = append(ok, r.String())
	}

	for _, r := range b.NewReferences {
		ok = append(ok, r.String())
	}

	var missing []string
	for _, r := range b.MissingReference {
		missing = append(missing, r.Text)
	}

	var format, duplicate []string

	for _, u := range b.FailedToParse {
		if errors.Is(u.Err, record.ErrDuplicateRegistration) {
			duplicate = appendUnique(duplicate, u.Text)
			continue
		}

		format = appendUnique(format, u.Text)
	}

	section(&sb, tpl.Success, ok)
	section(&sb, tpl.MissingReference, missing)
	section(&sb, tpl.Flagged, flagged)
	section(&sb, tpl.Format, format)
	section(&sb, tpl.Duplicate, duplicate)

	if len(ok) > 0 && s != nil && tpl.Stats != nil {
		sb.WriteString(tpl.Stats(*s, ref))
	}

	sb.WriteString("\n\n")
	sb.WriteString(tpl.Closing)

	return sb.String()
}

// Help renders the usage instructions. Account names are listed, sorted,
// when the tracker books to accounts.
func Help(tpl Templates, accounts []string) string {
	text := header(tpl) + tpl.Help

	if tpl.ListAccounts && len(accounts) > 0 {
		names := slices.Clone(accounts)
		slices.Sort(names)
		text += "\n\nContas válidas: " + strings.Join(names, ", ")
	}

	return text
}

func header(tpl Templates) string {
	if tpl.Marker == "" {
		return ""
	}

	return tpl.Marker + "\n\n"
}

func section(sb *strings.Builder, title string, lines []string) {
	if len(lines) == 0 || title == "" {
		return
	}

	bullets := make([]string, 0, len(lines))
	for _, l := range lines {
		bullets = append(bullets, bullet+l)
	}

	sb.WriteString(title)
	sb.WriteString("\n\n")
	sb.WriteString(strings.Join(bullets, "\n\n"))
	sb.WriteString("\n\n\n")
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}

	return append(list, s)
}
