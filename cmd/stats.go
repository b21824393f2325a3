package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/streaklab/internal/cli"
	"github.com/theirongolddev/streaklab/internal/model"
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [habit]",
	Short: "Detailed streak statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

var gridCmd = &cobra.Command{
	Use:   "grid [habit]",
	Short: "Year heatmap for one habit or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGrid,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(gridCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	return withSession(func(_ context.Context, s *session) error {
		sums := s.tracker.Summaries()
		if len(args) == 1 {
			id, _, err := findHabit(s.tracker, args[0])
			if err != nil {
				return err
			}
			for _, sum := range sums {
				if sum.Habit.ID == id {
					sums = []model.HabitSummary{sum}
					break
				}
			}
		}
		if len(sums) == 0 {
			fmt.Println("\n  No habits yet.")
			return nil
		}

		now := s.tracker.Now()
		for _, sum := range sums {
			st := sum.Stats
			fmt.Println()
			fmt.Println(cli.RenderTitle(sum.Habit.Name))
			fmt.Println()
			fmt.Printf("  ID:             %s\n", sum.Habit.ID)
			fmt.Printf("  Created:        %s\n", sum.Habit.CreatedAt)
			fmt.Printf("  Current streak: %s\n", cli.FormatStreak(st.Current))
			fmt.Printf("  Best streak:    %s\n", cli.FormatStreak(st.Best))
			fmt.Printf("  Completions:    %s\n", formatNumber(int64(st.Total)))
			fmt.Printf("  Last done:      %s\n", cli.FormatLastDone(st.LastDone, now))
			fmt.Println()
			fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%-4s %6s", "7d", cli.FormatPercent(st.Rate7)), st.Rate7, 1, 30))
			fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%-4s %6s", "30d", cli.FormatPercent(st.Rate30)), st.Rate30, 1, 30))
			fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%-4s %6s", "365d", cli.FormatPercent(st.Rate365)), st.Rate365, 1, 30))
		}
		return nil
	})
}

func runGrid(_ *cobra.Command, args []string) error {
	return withSession(func(_ context.Context, s *session) error {
		cfg := s.cfg
		theme.SetActive(cfg.Appearance.Theme)

		habits := s.tracker.Habits()
		title := "ALL HABITS"
		color := theme.Active.Accent
		if len(args) == 1 {
			id, _, err := findHabit(s.tracker, args[0])
			if err != nil {
				return err
			}
			h, err := s.tracker.Habit(id)
			if err != nil {
				return err
			}
			habits = []model.Habit{h}
			title = h.Name
			if len(h.Color) > 0 {
				color = lipgloss.Color(h.Color[0])
			}
		}
		if len(habits) == 0 {
			fmt.Println("\n  No habits yet.")
			return nil
		}

		count := func(day string) int {
			n := 0
			for _, h := range habits {
				if h.Has(day) {
					n++
				}
			}
			return n
		}

		window := s.tracker.Window()
		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s to %s", title, window[0], window[len(window)-1])))
		fmt.Println()
		fmt.Print(cli.RenderHeatmap(window, count, len(habits), color))
		return nil
	})
}
