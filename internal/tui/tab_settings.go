package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/streaklab/internal/config"
	"github.com/theirongolddev/streaklab/internal/tui/components"
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldTheme = iota
	settingsFieldDays
	settingsFieldCelebrateLog
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func (a App) updateSettingsKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter", " ":
		switch a.settings.cursor {
		case settingsFieldTheme:
			a.cfg.Appearance.Theme = theme.Next(a.cfg.Appearance.Theme).Name
			theme.SetActive(a.cfg.Appearance.Theme)
			a.saveSettings()
		case settingsFieldCelebrateLog:
			a.cfg.Celebrate.Log = !a.cfg.Celebrate.Log
			a.saveSettings()
		case settingsFieldDays:
			ti := textinput.New()
			ti.CharLimit = 4
			ti.Width = 10
			ti.Placeholder = "14"
			ti.SetValue(strconv.Itoa(a.cfg.General.DefaultDays))
			ti.CursorEnd()
			ti.Focus()
			a.settings.input = ti
			a.settings.editing = true
			a.settings.saved = false
			return a, textinput.Blink
		}
	}
	return a, nil
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		val := strings.TrimSpace(a.settings.input.Value())
		a.settings.editing = false
		d, err := strconv.Atoi(val)
		if err != nil || d <= 0 || d > 365 {
			a.settings.saveErr = fmt.Errorf("days must be 1-365, got %q", val)
			a.settings.saved = false
			return a, nil
		}
		a.cfg.General.DefaultDays = d
		a.saveSettings()
		a.refresh()
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// saveSettings writes the appearance, general and celebrate sections back
// to disk. Storage settings stay as they are in the file.
func (a *App) saveSettings() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	cfg.Appearance = a.cfg.Appearance
	cfg.General = a.cfg.General
	cfg.Celebrate.Log = a.cfg.Celebrate.Log

	a.settings.saveErr = config.Save(cfg)
	a.settings.saved = a.settings.saveErr == nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	type field struct {
		label string
		value string
	}
	fields := []field{
		{"Theme", a.cfg.Appearance.Theme},
		{"Daily window", fmt.Sprintf("%d days", a.cfg.General.DefaultDays)},
		{"Log celebrations", strconv.FormatBool(a.cfg.Celebrate.Log)},
	}

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if padLen := components.CardInnerWidth(cw) - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] change  [Esc] cancel"))

	st := a.cfg.Storage
	where := st.Path
	switch st.Backend {
	case config.BackendRedis:
		where = st.RedisAddr
	case config.BackendPostgres:
		where = "(from postgres_dsn)"
	case config.BackendMemory:
		where = "(not persisted)"
	default:
		if where == "" {
			where = config.DefaultDBPath()
		}
	}

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Backend:     ") + valueStyle.Render(st.Backend) + "\n")
	infoBody.WriteString(labelStyle.Render("Location:    ") + valueStyle.Render(where) + "\n")
	infoBody.WriteString(labelStyle.Render("Key:         ") + valueStyle.Render(st.Key) + "\n")
	infoBody.WriteString(labelStyle.Render("Habits:      ") + valueStyle.Render(strconv.Itoa(len(a.summaries))) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file: ") + valueStyle.Render(config.Path()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Storage", infoBody.String(), cw))
	return b.String()
}
