package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/streaklab/internal/cli"
	"github.com/theirongolddev/streaklab/internal/model"

	"github.com/spf13/cobra"
)

var flagDays int

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Completed habits per day",
	Args:  cobra.NoArgs,
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().IntVarP(&flagDays, "days", "n", 0, "Days to show (default from config)")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
	return withSession(func(_ context.Context, s *session) error {
		n := flagDays
		if n <= 0 {
			n = s.cfg.General.DefaultDays
		}
		if n <= 0 {
			n = 14
		}

		days := s.tracker.Daily(n)
		if len(days) == 0 || days[0].Habits == 0 {
			fmt.Println("\n  No habits yet.")
			return nil
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY  Last %dd", n)))
		fmt.Println()

		trend := make([]float64, len(days))
		for i, d := range days {
			trend[i] = float64(d.Completed)
		}
		fmt.Printf("  %s  oldest to newest\n\n", cli.RenderSparkline(trend))

		rows := make([][]string, 0, len(days))
		for i := len(days) - 1; i >= 0; i-- {
			d := days[i]
			weekday := ""
			if t, err := model.ParseDay(d.Date); err == nil {
				weekday = cli.FormatDayOfWeek(int(t.Weekday()))
			}
			rate := float64(d.Completed) / float64(d.Habits)
			rows = append(rows, []string{
				d.Date,
				weekday,
				fmt.Sprintf("%d/%d", d.Completed, d.Habits),
				cli.FormatPercent(rate),
			})
		}

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Date", "Day", "Done", "Rate"},
			Rows:    rows,
		}))
		return nil
	})
}
