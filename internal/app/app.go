// Package app wires the configured message source, table store and trackers.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/chatledger/internal/config"
	"github.com/MrJamesThe3rd/chatledger/internal/database"
	"github.com/MrJamesThe3rd/chatledger/internal/ledger"
	"github.com/MrJamesThe3rd/chatledger/internal/replay"
	"github.com/MrJamesThe3rd/chatledger/internal/retry"
	"github.com/MrJamesThe3rd/chatledger/internal/table"
	"github.com/MrJamesThe3rd/chatledger/internal/table/postgres"
	"github.com/MrJamesThe3rd/chatledger/internal/table/sheets"
	"github.com/MrJamesThe3rd/chatledger/internal/telegram"
	"github.com/MrJamesThe3rd/chatledger/internal/tracker"
)

type App struct {
	Config   *config.Config
	Service  *tracker.Service
	Trackers []*tracker.Tracker

	db *sql.DB
}

// New builds everything cfg describes. Replies of a replay source are
// written to out.
func New(ctx context.Context, cfg *config.Config, out io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	trackerCfgs, err := config.LoadTrackers(cfg.Tracker.File)
	if err != nil {
		return nil, err
	}

	source, err := newSource(cfg, out)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}

	store, err := a.newStore(ctx)
	if err != nil {
		return nil, err
	}

	for _, tc := range trackerCfgs {
		t, err := tracker.New(tc, store)
		if err != nil {
			a.Close()
			return nil, err
		}

		if err := prepare(ctx, t, tc.TableID, store); err != nil {
			a.Close()
			return nil, fmt.Errorf("preparing tracker %s: %w", t.Name, err)
		}

		a.Trackers = append(a.Trackers, t)
	}

	a.Service = tracker.NewService(source, tracker.WithLocation(loc))

	slog.Info("trackers ready",
		"count", len(a.Trackers), "source", cfg.Source.Kind, "store", cfg.Store.Kind, "timezone", loc.String())

	return a, nil
}

// Tracker finds a configured tracker by name.
func (a *App) Tracker(name string) (*tracker.Tracker, error) {
	for _, t := range a.Trackers {
		if t.Name == name {
			return t, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", tracker.ErrNotFound, name)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}

	return a.db.Close()
}

func newSource(cfg *config.Config, out io.Writer) (tracker.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceReplay:
		src, err := replay.Open(cfg.Source.ReplayFile, out, cfg.Tracker.MessageWindow)
		if err != nil {
			return nil, err
		}

		return src, nil
	default:
		return telegram.New(cfg.Telegram.Token,
			telegram.WithBaseURL(cfg.Telegram.APIURL),
			telegram.WithWindow(cfg.Tracker.MessageWindow),
			telegram.WithTimeout(cfg.Telegram.Timeout),
		), nil
	}
}

func (a *App) newStore(ctx context.Context) (table.Store, error) {
	cfg := a.Config
	opts := retry.Options{MaxAttempts: cfg.Store.RetryAttempts}

	switch cfg.Store.Kind {
	case config.StorePostgres:
		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return nil, err
		}

		a.db = db

		store := postgres.New(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, errors.Join(err, db.Close())
		}

		return store, nil
	default:
		srv, err := sheets.NewService(ctx, sheets.Config{
			ServiceAccountPath: cfg.Sheets.ServiceAccountPath,
			ClientID:           cfg.Sheets.ClientID,
			ClientSecret:       cfg.Sheets.ClientSecret,
			RefreshToken:       cfg.Sheets.RefreshToken,
		})
		if err != nil {
			return nil, err
		}

		return sheets.New(srv, opts), nil
	}
}

type headerEnsurer interface {
	EnsureHeader(ctx context.Context, tableID, region string, header []string) error
}

// prepare adapts a tracker to stores that hold plain values: formulas are
// replaced by computed cells and every region gets its header row.
func prepare(ctx context.Context, t *tracker.Tracker, tableID string, store table.Store) error {
	hs, ok := store.(headerEnsurer)
	if !ok {
		return nil
	}

	if c, ok := t.Book.(*ledger.Calories); ok {
		c.Formulas = false
	}

	for _, r := range t.Book.Regions() {
		if err := hs.EnsureHeader(ctx, tableID, r.Name, r.Header); err != nil {
			return err
		}
	}

	return nil
}
