package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/streaklab/internal/cli"
	"github.com/theirongolddev/streaklab/internal/model"
	"github.com/theirongolddev/streaklab/internal/tui/components"
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// stackBelow is the content width under which the habit list and the
// grid card stack vertically instead of sitting side by side.
const stackBelow = 100

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	tot := a.totals
	var b strings.Builder

	// Row 1: Metric cards
	longest := "-"
	if tot.LongestHabit != "" {
		longest = truncStr(tot.LongestHabit, 18)
	}
	cards := []components.Metric{
		{Label: "Habits", Value: cli.FormatNumber(int64(tot.Habits)), Note: fmt.Sprintf("%d on a streak", tot.OnStreak)},
		{Label: "Done today", Value: fmt.Sprintf("%d/%d", tot.DoneToday, tot.Habits)},
		{Label: "Completions", Value: cli.FormatNumber(int64(tot.Completions)), Note: "all time"},
		{Label: "Best streak", Value: cli.FormatStreak(tot.LongestBest), Note: longest},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	if len(a.summaries) == 0 {
		mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		b.WriteString(components.ContentCard("Habits",
			mutedStyle.Render("No habits yet. Press [a] to add one."), cw))
		return b.String()
	}

	// Row 2: habit list + selected habit grid
	gridCardW := components.GridWidth(len(a.window)) + 4
	if cw < stackBelow || cw-gridCardW < 30 {
		b.WriteString(components.ContentCard("Habits", a.renderHabitList(components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
		b.WriteString(a.renderGridCard(cw))
		return b.String()
	}

	listW := cw - gridCardW
	list := components.ContentCard("Habits", a.renderHabitList(components.CardInnerWidth(listW)), listW)
	b.WriteString(components.CardRow([]string{list, a.renderGridCard(gridCardW)}))
	return b.String()
}

func (a App) renderHabitList(innerW int) string {
	t := theme.Active

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	checkStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	day := a.selectedDay()
	statW := 12 // " 🔥 12 / 30"
	nameW := innerW - statW - 6
	if nameW < 8 {
		nameW = 8
	}

	var body strings.Builder
	for i, s := range a.summaries {
		dot := lipgloss.NewStyle().Foreground(habitColor(s.Habit)).Background(t.Surface).Render("●")
		check := mutedStyle.Render("○")
		if s.Habit.Has(day) {
			check = checkStyle.Render("✓")
		}
		name := fmt.Sprintf("%-*s", nameW, truncStr(s.Habit.Name, nameW))
		stats := fmt.Sprintf("%3d / %-3d", s.Stats.Current, s.Stats.Best)

		if i == a.cursor {
			line := markerStyle.Render("▸ ") + dot + selStyle.Render(" "+name+" ") + check + selStyle.Render(" "+stats)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				line += selStyle.Render(strings.Repeat(" ", pad))
			}
			body.WriteString(line)
		} else {
			body.WriteString(rowStyle.Render("  ") + dot + rowStyle.Render(" "+name+" ") + check + mutedStyle.Render(" "+stats))
		}
		if i < len(a.summaries)-1 {
			body.WriteString("\n")
		}
	}
	done := 0
	for _, s := range a.summaries {
		if s.Habit.Has(day) {
			done++
		}
	}
	barW := innerW - 6
	if barW > 30 {
		barW = 30
	}
	body.WriteString("\n\n")
	body.WriteString(components.ProgressBar(float64(done)/float64(len(a.summaries)), barW))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render("current / best   ✓ done on " + day))
	return body.String()
}

func (a App) renderGridCard(outerW int) string {
	t := theme.Active
	s, ok := a.selected()
	if !ok {
		return ""
	}

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	day := a.selectedDay()
	state := "not done"
	if s.Habit.Has(day) {
		state = "done"
	}

	var body strings.Builder
	body.WriteString(components.HabitGrid(a.window, s.Habit, a.dayIdx))
	body.WriteString("\n\n")
	body.WriteString(mutedStyle.Render(dayLabel(day)+" · ") + valueStyle.Render(state))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render("current ") + valueStyle.Render(cli.FormatStreak(s.Stats.Current)) +
		mutedStyle.Render("  best ") + valueStyle.Render(cli.FormatStreak(s.Stats.Best)) +
		mutedStyle.Render("  total ") + valueStyle.Render(cli.FormatNumber(int64(s.Stats.Total))))

	return components.ContentCard(truncStr(s.Habit.Name, outerW-6), body.String(), outerW)
}

// habitColor picks the habit's accent from its palette.
func habitColor(h model.Habit) lipgloss.Color {
	if len(h.Color) > 0 {
		return lipgloss.Color(h.Color[0])
	}
	return theme.Active.Accent
}

func dayLabel(day string) string {
	d, err := model.ParseDay(day)
	if err != nil {
		return day
	}
	return d.Format("Mon Jan 2, 2006")
}
