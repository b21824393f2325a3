// Package cmd implements the streaklab CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/streaklab/internal/cli"
	"github.com/theirongolddev/streaklab/internal/config"
	"github.com/theirongolddev/streaklab/internal/logging"
	"github.com/theirongolddev/streaklab/internal/notify"
	"github.com/theirongolddev/streaklab/internal/store"
	"github.com/theirongolddev/streaklab/internal/tracker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagBackend   string
	flagDBPath    string
	flagKey       string
	flagEphemeral bool
	flagQuiet     bool
	flagVerbose   bool
	flagYes       bool
)

var rootCmd = &cobra.Command{
	Use:           "streaklab",
	Short:         "Habit streak tracker",
	Long:          "Track daily habits, streaks and a year-long completion heatmap.",
	RunE:          runList,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: sqlite, redis, postgres, memory")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagKey, "key", "", "Storage key holding the habit document")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep habits in memory only for this run")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation prompts")
}

// loadConfig reads the config file and applies the persistent flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagBackend != "" {
		cfg.Storage.Backend = flagBackend
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagKey != "" {
		cfg.Storage.Key = flagKey
	}
	if flagEphemeral {
		cfg.Storage.Backend = config.BackendMemory
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// session bundles what a command needs to work on the habit document.
type session struct {
	cfg     config.Config
	log     *zap.Logger
	kv      store.KV
	docs    *store.DocumentStore
	tracker *tracker.Tracker
	amqp    *notify.AMQP
}

// openSession is the shared loading path used by all habit commands.
// logPath sends logs to a file instead of stderr; extra celebrators are
// added next to the configured ones.
func openSession(ctx context.Context, logPath string, extra ...tracker.Celebrator) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Path:        logPath,
	})
	if err != nil {
		return nil, err
	}

	kv, err := store.Open(ctx, cfg.Storage, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	policy, err := store.ParseCorruptPolicy(cfg.Storage.OnCorrupt)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	s := &session{
		cfg:  cfg,
		log:  log,
		kv:   kv,
		docs: store.NewDocumentStore(kv, cfg.Storage.Key, policy, log),
	}

	sinks := notify.Multi{}
	if cfg.Celebrate.Log {
		sinks = append(sinks, notify.NewLog(log))
	}
	if cfg.Celebrate.AMQPURL != "" {
		a, err := notify.DialAMQP(cfg.Celebrate.AMQPURL, cfg.Celebrate.Exchange, log)
		if err != nil {
			// Celebrations are best effort; habits still work without them.
			log.Warn("amqp celebrations disabled", zap.Error(err))
		} else {
			s.amqp = a
			sinks = append(sinks, a)
		}
	}
	sinks = append(sinks, extra...)

	opts := []tracker.Option{
		tracker.WithLogger(log),
		tracker.WithCelebrator(sinks),
	}
	if cfg.Appearance.Palette == config.PaletteCycle {
		opts = append(opts, tracker.WithPalette(tracker.CyclePalette(func() int {
			return len(s.tracker.Habits())
		})))
	}

	tr, err := tracker.Open(ctx, s.docs, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.tracker = tr

	if res := tr.Loaded(); res.Corrupt && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Warning: stored habits under %q could not be read (%v); starting empty.\n",
			s.docs.Key(), res.ParseErr)
		if cfg.Storage.OnCorrupt == config.CorruptPreserve {
			fmt.Fprintf(os.Stderr, "  The original value is kept until the next change.\n")
		}
	}
	return s, nil
}

// Close releases the backend and messaging connections.
func (s *session) Close() {
	if s.amqp != nil {
		_ = s.amqp.Close()
	}
	if s.kv != nil {
		_ = s.kv.Close()
	}
	_ = s.log.Sync()
}

// withSession opens a session, runs fn and closes it.
func withSession(fn func(ctx context.Context, s *session) error) error {
	ctx := context.Background()
	s, err := openSession(ctx, "")
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

// findHabit resolves a user reference and explains ambiguity.
func findHabit(tr *tracker.Tracker, ref string) (string, string, error) {
	h, err := tr.FindHabit(ref)
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		return "", "", fmt.Errorf("no habit matches %q (run `streaklab list`)", ref)
	case errors.Is(err, tracker.ErrAmbiguous):
		return "", "", fmt.Errorf("%q matches more than one habit; use more of the id", ref)
	case err != nil:
		return "", "", err
	}
	return h.ID, h.Name, nil
}

func info(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Printf("  "+format+"\n", args...)
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
