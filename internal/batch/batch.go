// Package batch classifies a window of chat messages into typed records and
// partitions the results into outcome buckets.
package batch

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/chatledger/internal/message"
	"github.com/MrJamesThe3rd/chatledger/internal/record"
	"github.com/MrJamesThe3rd/chatledger/internal/reference"
)

// DefaultMarker starts every message the bot sends.
const DefaultMarker = "# MENSAGEM AUTOMATICA #"

// commentPrefix marks manual annotations that are not data.
const commentPrefix = "#"

// Snapshot is the reference data a pass validates against. Registrations
// parsed during the pass are added to Catalog.
type Snapshot struct {
	Catalog  *reference.Catalog
	Accounts *reference.Accounts
}

// Rules select how lines are classified for a tracker.
type Rules struct {
	// Registrations enables "@" calorie registration lines.
	Registrations bool
	// Default is the kind of every line that is neither help nor registration.
	Default record.Kind
	// Marker prefixes the bot's own messages.
	Marker string
	// Location is used to derive entry dates from message timestamps.
	Location *time.Location
}

// Classify picks the record kind a trimmed line should be parsed as.
func (r Rules) Classify(line string) record.Kind {
	switch {
	case record.IsHelpRequest(line):
		return record.KindHelpRequest
	case r.Registrations && record.IsRegistration(line):
		return record.KindRegistration
	default:
		return r.Default
	}
}

// Line is a single classified line of a message.
type Line struct {
	record.Meta
	Text string
	Kind record.Kind
}

// Run is the mutable state of one pass: the growing snapshot, the buckets
// being filled and the ids of messages that received a reply.
type Run struct {
	rules    Rules
	snapshot *Snapshot
	buckets  *Buckets
	answered map[int64]struct{}
}

func NewRun(snap *Snapshot, rules Rules) *Run {
	if snap == nil {
		snap = &Snapshot{}
	}

	if snap.Catalog == nil {
		snap.Catalog = reference.NewCatalog()
	}

	if snap.Accounts == nil {
		snap.Accounts = reference.NewAccounts()
	}

	if rules.Location == nil {
		rules.Location = time.UTC
	}

	return &Run{
		rules:    rules,
		snapshot: snap,
		buckets:  &Buckets{},
		answered: make(map[int64]struct{}),
	}
}

// Process runs one classification pass over msgs, which must be in fetch
// order (newest first). Lines are dispatched oldest first. Messages already in processed are ignored. Parser
// failures never abort the pass; they land in their bucket.
func Process(msgs []message.Message, snap *Snapshot, processed Processed, rules Rules) *Buckets {
	run := NewRun(snap, rules)

	pending := make([]message.Message, 0, len(msgs))

	for _, m := range msgs {
		if !processed.Has(m.ID) {
			pending = append(pending, m)
		}
	}

	if len(pending) == 0 {
		slog.Debug("no new messages")
		return run.buckets
	}

	if run.rules.Marker != "" && strings.HasPrefix(pending[0].Text, run.rules.Marker) {
		slog.Debug("latest message is an automated reply, nothing to do", "message_id", pending[0].ID)
		return run.buckets
	}

	lines := run.Lines(pending)

	// Registrations go first so entries in the same batch can resolve against
	// them. The sort is stable, so the earliest of two registrations wins.
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Kind == record.KindRegistration && lines[j].Kind != record.KindRegistration
	})

	for _, l := range lines {
		run.Dispatch(l)
	}

	return run.Finish()
}

// Lines flattens messages, given newest first, into classified lines in
// chronological order. It records reply targets and skips empty and comment
// messages.
func (r *Run) Lines(msgs []message.Message) []Line {
	var lines []Line

	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]

		if m.IsReply() {
			r.answered[*m.ReplyTo] = struct{}{}
		}

		if m.Text == "" || strings.HasPrefix(m.Text, commentPrefix) {
			continue
		}

		meta := record.Meta{
			MessageID: m.ID,
			Date:      record.Day(m.Date.In(r.rules.Location)),
			ChatID:    m.ChatID,
		}

		for _, raw := range strings.Split(m.Text, "\n") {
			text := strings.TrimSpace(raw)
			if text == "" {
				continue
			}

			lines = append(lines, Line{Meta: meta, Text: text, Kind: r.rules.Classify(text)})
		}
	}

	return lines
}

// Dispatch parses one line and files the result.
func (r *Run) Dispatch(l Line) {
	b := r.buckets

	switch l.Kind {
	case record.KindHelpRequest:
		b.HelpRequested = append(b.HelpRequested, &record.HelpRequest{Meta: l.Meta})

	case record.KindRegistration:
		reg, err := record.ParseRegistration(l.Text, l.Meta, r.snapshot.Catalog)
		if err != nil {
			r.fail(l, err)
			return
		}

		b.NewReferences = append(b.NewReferences, reg)
		r.snapshot.Catalog.Add(reg.Item())

	case record.KindConsumption:
		c, err := record.ParseConsumption(l.Text, l.Meta, r.snapshot.Catalog)
		if err != nil {
			r.fail(l, err)
			return
		}

		b.ToUpload = append(b.ToUpload, c)

	case record.KindExpense:
		e, err := record.ParseExpense(l.Text, l.Meta, r.snapshot.Accounts)
		if err != nil {
			r.fail(l, err)
			return
		}

		b.ToUpload = append(b.ToUpload, e)

	default:
		r.fail(l, errors.New("unsupported record kind "+l.Kind.String()))
	}
}

func (r *Run) fail(l Line, err error) {
	if errors.Is(err, record.ErrMissingReference) {
		slog.Info("missing reference", "message_id", l.MessageID, "text", l.Text, "error", err)

		r.buckets.MissingReference = append(r.buckets.MissingReference,
			&record.MissingReference{Meta: l.Meta, Text: l.Text})

		return
	}

	slog.Warn("failed to parse line", "message_id", l.MessageID, "text", l.Text, "error", err)

	r.buckets.FailedToParse = append(r.buckets.FailedToParse,
		&record.Unparsed{Meta: l.Meta, Text: l.Text, Err: err})
}

// Finish moves help requests that already got a reply out of HelpRequested
// and into Answered.
func (r *Run) Finish() *Buckets {
	b := r.buckets

	pending := make([]*record.HelpRequest, 0, len(b.HelpRequested))

	for _, h := range b.HelpRequested {
		if _, ok := r.answered[h.MessageID]; ok {
			b.Answered = append(b.Answered, h)
			continue
		}

		pending = append(pending, h)
	}

	b.HelpRequested = pending

	return b
}
