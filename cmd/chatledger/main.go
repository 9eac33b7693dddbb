package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/chatledger/internal/app"
	"github.com/MrJamesThe3rd/chatledger/internal/config"
	"github.com/MrJamesThe3rd/chatledger/internal/logging"
	"github.com/MrJamesThe3rd/chatledger/internal/tracker"
)

// cli holds the persistent flags and the configuration shared by every command.
type cli struct {
	dryRun  bool
	tracker string
	cfg     *config.Config
	out     io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:   "chatledger",
		Short: "Record chat messages as ledger rows",
		Long: `chatledger reads the recent messages of every configured tracker chat,
classifies each line, appends the results to the tracker's ledger and
replies with a summary.

Without a subcommand it runs every tracker once.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: c.initConfig,
		RunE:              c.runOnce,
	}

	root.SetOut(out)

	root.PersistentFlags().BoolVar(&c.dryRun, "dry-run", false, "classify without writing rows or replying")
	root.PersistentFlags().StringVar(&c.tracker, "tracker", "", "run a single tracker by name")

	root.AddCommand(c.watchCmd())
	root.AddCommand(c.previewCmd())
	root.AddCommand(c.tokenCmd())

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) initConfig(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}

	c.cfg = cfg

	return nil
}

func (c *cli) runOptions() tracker.RunOptions {
	return tracker.RunOptions{DryRun: c.dryRun}
}

// open builds the application and narrows it to --tracker when given.
func (c *cli) open(ctx context.Context) (*app.App, []*tracker.Tracker, error) {
	a, err := app.New(ctx, c.cfg, c.out)
	if err != nil {
		return nil, nil, fmt.Errorf("start: %w", err)
	}

	if c.tracker == "" {
		return a, a.Trackers, nil
	}

	t, err := a.Tracker(c.tracker)
	if err != nil {
		_ = a.Close()
		return nil, nil, err
	}

	return a, []*tracker.Tracker{t}, nil
}

func (c *cli) runOnce(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, trackers, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !c.dryRun {
		return a.Service.RunAll(ctx, trackers, c.runOptions())
	}

	for _, t := range trackers {
		res, err := a.Service.Run(ctx, t, c.runOptions())
		if err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}

		if res.Report != "" {
			fmt.Fprintf(c.out, "== %s ==\n%s\n", t.Name, res.Report)
		}

		if res.Help != "" {
			fmt.Fprintf(c.out, "== %s (help) ==\n%s\n", t.Name, res.Help)
		}
	}

	return nil
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the trackers every WATCH_INTERVAL until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, trackers, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if c.dryRun {
				slog.Info("dry run: nothing will be written or sent")
			}

			return tracker.NewWatcher(a.Service, trackers, c.cfg.Tracker.WatchInterval, c.runOptions()).Watch(cmd.Context())
		},
	}
}
