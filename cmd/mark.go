package cmd

import (
	"context"

	"github.com/theirongolddev/streaklab/internal/cli"
	"github.com/theirongolddev/streaklab/internal/tracker"

	"github.com/spf13/cobra"
)

var markCmd = &cobra.Command{
	Use:   "mark <habit> [date]",
	Short: "Mark a habit done (today by default)",
	Long: "Mark a habit done on a day. The day may be YYYY-MM-DD, today, " +
		"yesterday or -N for N days ago (after --, as in `mark run -- -2`).",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error { return runMark(args, tracker.Marked) },
}

var unmarkCmd = &cobra.Command{
	Use:   "unmark <habit> [date]",
	Short: "Clear a habit's completion (today by default)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  func(_ *cobra.Command, args []string) error { return runMark(args, tracker.Unmarked) },
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <habit> [date]",
	Short: "Flip a habit's completion for a day",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runToggle,
}

func init() {
	rootCmd.AddCommand(markCmd)
	rootCmd.AddCommand(unmarkCmd)
	rootCmd.AddCommand(toggleCmd)
}

func dayArg(tr *tracker.Tracker, args []string) (string, error) {
	ref := ""
	if len(args) > 1 {
		ref = args[1]
	}
	return tr.ResolveDay(ref)
}

// runMark toggles only when the day is not already in the wanted state.
func runMark(args []string, want tracker.Transition) error {
	return withSession(func(ctx context.Context, s *session) error {
		id, name, err := findHabit(s.tracker, args[0])
		if err != nil {
			return err
		}
		day, err := dayArg(s.tracker, args)
		if err != nil {
			return err
		}

		h, err := s.tracker.Habit(id)
		if err != nil {
			return err
		}
		if h.Has(day) == (want == tracker.Marked) {
			info("%s is already %s on %s", name, want, day)
			return nil
		}

		if _, err := s.tracker.ToggleLog(ctx, id, day); err != nil {
			return err
		}
		return reportToggle(s, id, name, day, want)
	})
}

func runToggle(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		id, name, err := findHabit(s.tracker, args[0])
		if err != nil {
			return err
		}
		day, err := dayArg(s.tracker, args)
		if err != nil {
			return err
		}
		tr, err := s.tracker.ToggleLog(ctx, id, day)
		if err != nil {
			return err
		}
		return reportToggle(s, id, name, day, tr)
	})
}

func reportToggle(s *session, id, name, day string, tr tracker.Transition) error {
	st, err := s.tracker.Stats(id)
	if err != nil {
		return err
	}
	info("%s %s on %s  (current %s, best %s)",
		name, tr, day, cli.FormatStreak(st.Current), cli.FormatStreak(st.Best))
	return nil
}
