package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/streaklab/internal/cli"
	"github.com/theirongolddev/streaklab/internal/pipeline"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagSort   string
	flagFilter string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habits with their streaks",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var addCmd = &cobra.Command{
	Use:   "add <name...>",
	Short: "Create a habit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var renameCmd = &cobra.Command{
	Use:   "rename <habit> <new name...>",
	Short: "Rename a habit",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRename,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <habit>",
	Aliases: []string{"rm"},
	Short:   "Delete a habit and its history",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	listCmd.Flags().StringVar(&flagSort, "sort", "added", "Order: added, best")
	listCmd.Flags().StringVarP(&flagFilter, "filter", "f", "", "Only habits whose name contains this text")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	return withSession(func(_ context.Context, s *session) error {
		sums := s.tracker.Summaries()
		if len(sums) == 0 {
			fmt.Println("\n  No habits yet. Add one with `streaklab add <name>`.")
			return nil
		}
		switch flagSort {
		case "", "added":
		case "best":
			pipeline.SortByBest(sums)
		default:
			return fmt.Errorf("unknown sort %q (want added or best)", flagSort)
		}
		if sums = pipeline.FilterByName(sums, flagFilter); len(sums) == 0 {
			fmt.Printf("\n  No habits match %q.\n", flagFilter)
			return nil
		}

		today := s.tracker.Now()
		todayKey := s.tracker.Today()
		rows := make([][]string, 0, len(sums))
		for _, sum := range sums {
			done := " "
			if sum.Habit.Has(todayKey) {
				done = "✓"
			}
			rows = append(rows, []string{
				done,
				sum.Habit.Name,
				cli.ShortID(sum.Habit.ID),
				cli.FormatStreak(sum.Stats.Current),
				cli.FormatStreak(sum.Stats.Best),
				formatNumber(int64(sum.Stats.Total)),
				cli.FormatPercent(sum.Stats.Rate30),
				cli.FormatLastDone(sum.Stats.LastDone, today),
			})
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("HABITS  %s", todayKey),
			Headers: []string{"", "Habit", "ID", "Current", "Best", "Total", "30d", "Last"},
			Rows:    rows,
		}))

		tot := s.tracker.Totals()
		fmt.Println()
		fmt.Printf("  %d habits  %s completions  today %s",
			tot.Habits, formatNumber(int64(tot.Completions)), cli.RenderProgressBar(tot.DoneToday, tot.Habits, 12))
		if tot.LongestBest > 0 {
			fmt.Printf("  best: %s (%s)", cli.FormatStreak(tot.LongestBest), tot.LongestHabit)
		}
		fmt.Println()
		return nil
	})
}

func runAdd(_ *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	return withSession(func(ctx context.Context, s *session) error {
		h, err := s.tracker.AddHabit(ctx, name)
		if err != nil {
			return err
		}
		info("Added %q (%s)", h.Name, cli.ShortID(h.ID))
		return nil
	})
}

func runRename(_ *cobra.Command, args []string) error {
	name := strings.Join(args[1:], " ")
	return withSession(func(ctx context.Context, s *session) error {
		id, old, err := findHabit(s.tracker, args[0])
		if err != nil {
			return err
		}
		if err := s.tracker.RenameHabit(ctx, id, name); err != nil {
			return err
		}
		info("Renamed %q to %q", old, strings.TrimSpace(name))
		return nil
	})
}

func runDelete(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		id, name, err := findHabit(s.tracker, args[0])
		if err != nil {
			return err
		}
		ok, err := confirm(fmt.Sprintf("Delete %q and all of its history?", name))
		if err != nil || !ok {
			return err
		}
		if err := s.tracker.DeleteHabit(ctx, id); err != nil {
			return err
		}
		info("Deleted %q", name)
		return nil
	})
}

// confirm asks a yes/no question unless --yes was given.
func confirm(question string) (bool, error) {
	if flagYes {
		return true, nil
	}
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	)).WithTheme(huh.ThemeDracula()).Run()
	if err != nil {
		return false, fmt.Errorf("confirmation: %w", err)
	}
	if !ok {
		info("Cancelled.")
	}
	return ok, nil
}
