package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/streaklab/internal/cli"
	"github.com/theirongolddev/streaklab/internal/tui/components"
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderBreakdownTab(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder

	// Row 1: completions per day
	if len(a.daily) > 0 {
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Completion (last %dd)", len(a.daily)),
			components.DailyColumns(a.daily, t.Accent, 6),
			cw,
		))
		b.WriteString("\n")
	}

	if len(a.summaries) == 0 {
		b.WriteString(components.ContentCard("Streaks", mutedStyle.Render("Nothing to show yet."), cw))
		return b.String()
	}

	// Row 2: per-habit table
	fixed := 6 + 6 + 7 + 6 + 6 + 6 + 12
	nameW := innerW - fixed
	if nameW < 10 {
		nameW = 10
	}

	var table strings.Builder
	table.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %5s %5s %6s %5s %5s %5s %11s",
		nameW, "Habit", "Cur", "Best", "Total", "7d", "30d", "365d", "Last")))
	table.WriteString("\n")
	table.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	table.WriteString("\n")
	for i, s := range a.summaries {
		st := s.Stats
		nameStyle := lipgloss.NewStyle().Foreground(habitColor(s.Habit)).Background(t.Surface)
		table.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(s.Habit.Name, nameW))))
		table.WriteString(rowStyle.Render(fmt.Sprintf(" %5d %5d %6d %5.0f%% %4.0f%% %4.0f%%",
			st.Current, st.Best, st.Total, st.Rate7*100, st.Rate30*100, st.Rate365*100)))
		table.WriteString(mutedStyle.Render(fmt.Sprintf(" %11s", cli.FormatLastDone(st.LastDone, a.tr.Now()))))
		if i < len(a.summaries)-1 {
			table.WriteString("\n")
		}
	}
	b.WriteString(components.ContentCard("Streaks", table.String(), cw))
	b.WriteString("\n")

	// Row 3: selected habit's rates
	if s, ok := a.selected(); ok {
		barW := innerW - 12 - 6
		if barW < 10 {
			barW = 10
		}
		var rates strings.Builder
		rates.WriteString(components.RateBar("Last 7d", s.Stats.Rate7, 10, barW))
		rates.WriteString("\n")
		rates.WriteString(components.RateBar("Last 30d", s.Stats.Rate30, 10, barW))
		rates.WriteString("\n")
		rates.WriteString(components.RateBar("Last 365d", s.Stats.Rate365, 10, barW))
		if weeks := weeklyCounts(a.window, s.Habit.Has); len(weeks) > 1 {
			rates.WriteString("\n\n")
			rates.WriteString(mutedStyle.Render(fmt.Sprintf("%-10s ", "Weekly")))
			rates.WriteString(components.Sparkline(weeks, habitColor(s.Habit)))
		}
		b.WriteString(components.ContentCard(s.Habit.Name+" · completion", rates.String(), cw))
	}

	return b.String()
}

// weeklyCounts sums completions per 7-day chunk of window, oldest first.
func weeklyCounts(window []string, done func(day string) bool) []float64 {
	var out []float64
	for i := 0; i < len(window); i += 7 {
		n := 0
		for _, d := range window[i:min(i+7, len(window))] {
			if done(d) {
				n++
			}
		}
		out = append(out, float64(n))
	}
	return out
}
