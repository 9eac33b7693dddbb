// Package tracker runs the fetch, classify, write and reply cycle of each
// configured tracker.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/chatledger/internal/batch"
	"github.com/MrJamesThe3rd/chatledger/internal/config"
	"github.com/MrJamesThe3rd/chatledger/internal/ledger"
	"github.com/MrJamesThe3rd/chatledger/internal/message"
	"github.com/MrJamesThe3rd/chatledger/internal/record"
	"github.com/MrJamesThe3rd/chatledger/internal/report"
	"github.com/MrJamesThe3rd/chatledger/internal/stats"
	"github.com/MrJamesThe3rd/chatledger/internal/table"
)

var ErrNotFound = errors.New("tracker not found")

//go:generate mockgen -source=tracker.go -destination=mock_tracker.go -package=tracker
type Source interface {
	// FetchRecent returns a bounded window of recent messages, newest first.
	FetchRecent(ctx context.Context, chatID int64) ([]message.Message, error)
	SendReply(ctx context.Context, chatID int64, text string, replyTo *int64) error
}

// Tracker is a configured tracker bound to its chat and ledger.
type Tracker struct {
	Name    string
	ChatID  int64
	Profile Profile
	Book    ledger.Book

	// mu serializes runs so two callers never append the same batch.
	mu sync.Mutex
}

// New builds the tracker described by cfg on store.
func New(cfg config.TrackerConfig, store table.Store) (*Tracker, error) {
	p, ok := Lookup(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("tracker %s: unknown kind %q, want one of %s", cfg.Name, cfg.Kind, strings.Join(Kinds(), ", "))
	}

	return &Tracker{
		Name:    cfg.Name,
		ChatID:  cfg.ChatID,
		Profile: p,
		Book:    p.NewBook(store, cfg.TableID),
	}, nil
}

// Result describes what a run did or, for dry runs, would do.
type Result struct {
	RunID   uuid.UUID
	Tracker string
	DryRun  bool
	Buckets *batch.Buckets
	Stats   *stats.Monthly
	// Report and Help are the replies sent, empty when none was due.
	Report string
	Help   string
}

type Service struct {
	source   Source
	location *time.Location
	now      func() time.Time
}

type Option func(*Service)

// WithClock replaces the wall clock used to date statistics.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone messages and statistics are dated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

func NewService(source Source, opts ...Option) *Service {
	s := &Service{source: source, location: time.UTC, now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type RunOptions struct {
	// DryRun reads and classifies without writing rows or sending replies.
	DryRun bool
}

// Run performs one batch run of t: read the ledger and the chat, classify,
// append entries, registrations and processed statuses, then reply.
func (s *Service) Run(ctx context.Context, t *Tracker, opts RunOptions) (*Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := &Result{RunID: uuid.New(), Tracker: t.Name, DryRun: opts.DryRun}
	log := slog.With("tracker", t.Name, "run_id", res.RunID)

	processed, err := t.Book.Processed(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading processed messages: %w", err)
	}

	snap, err := t.Book.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading reference data: %w", err)
	}

	history, err := t.Book.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	msgs, err := s.source.FetchRecent(ctx, t.ChatID)
	if err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	rules := t.Profile.Rules
	rules.Location = s.location

	res.Buckets = batch.Process(msgs, snap, processed, rules)
	if res.Buckets.Empty() {
		log.Debug("nothing to do", "fetched", len(msgs))
		return res, nil
	}

	log.Info("processed messages",
		"uploads", len(res.Buckets.ToUpload),
		"registrations", len(res.Buckets.NewReferences),
		"missing_reference", len(res.Buckets.MissingReference),
		"failed", len(res.Buckets.FailedToParse),
		"help", len(res.Buckets.HelpRequested),
		"answered", len(res.Buckets.Answered))

	if !opts.DryRun {
		if err := t.Book.Append(ctx, res.Buckets); err != nil {
			return nil, fmt.Errorf("writing entries: %w", err)
		}

		if err := t.Book.MarkProcessed(ctx, res.Buckets.Outcomes()); err != nil {
			return nil, fmt.Errorf("writing processed messages: %w", err)
		}
	}

	today := record.Day(s.now().In(s.location))
	monthly := stats.MonthlyStats(append(history.Points, t.Book.Points(res.Buckets)...), today)
	res.Stats = &monthly

	if report.ShouldSend(res.Buckets) {
		res.Report = report.Compose(t.Profile.Templates, res.Buckets, res.Stats, history.Flagged, today)

		if err := s.reply(ctx, t, opts, res.Report, nil); err != nil {
			return nil, fmt.Errorf("sending report: %w", err)
		}
	}

	if n := len(res.Buckets.HelpRequested); n > 0 {
		newest := res.Buckets.HelpRequested[n-1].MessageID
		res.Help = report.Help(t.Profile.Templates, accountNames(snap))

		if err := s.reply(ctx, t, opts, res.Help, &newest); err != nil {
			return nil, fmt.Errorf("sending help: %w", err)
		}
	}

	return res, nil
}

// Preview classifies text as if it had just been sent to the tracker's chat.
// Nothing is written and no reply is sent.
func (s *Service) Preview(ctx context.Context, t *Tracker, text string) (*Result, error) {
	snap, err := t.Book.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading reference data: %w", err)
	}

	now := s.now()
	msg := message.Message{ID: now.UnixNano(), Date: now, ChatID: t.ChatID, Text: text}

	rules := t.Profile.Rules
	rules.Location = s.location

	b := batch.Process([]message.Message{msg}, snap, nil, rules)

	res := &Result{RunID: uuid.New(), Tracker: t.Name, DryRun: true, Buckets: b}

	if report.ShouldSend(b) {
		res.Report = report.Compose(t.Profile.Templates, b, nil, nil, record.Day(now.In(s.location)))
	}

	if len(b.HelpRequested) > 0 {
		res.Help = report.Help(t.Profile.Templates, accountNames(snap))
	}

	return res, nil
}

// RunAll runs every tracker in order with the same options. A failing tracker
// does not stop the others.
func (s *Service) RunAll(ctx context.Context, trackers []*Tracker, opts RunOptions) error {
	var errs []error

	for _, t := range trackers {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := s.Run(ctx, t, opts); err != nil {
			slog.Error("tracker run failed", "tracker", t.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
		}
	}

	return errors.Join(errs...)
}

func (s *Service) reply(ctx context.Context, t *Tracker, opts RunOptions, text string, replyTo *int64) error {
	if opts.DryRun {
		return nil
	}

	return s.source.SendReply(ctx, t.ChatID, text, replyTo)
}

func accountNames(snap *batch.Snapshot) []string {
	if snap == nil || snap.Accounts == nil {
		return nil
	}

	return snap.Accounts.Names()
}
