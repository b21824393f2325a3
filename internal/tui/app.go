// Package tui provides the interactive Bubble Tea dashboard for streaklab.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/streaklab/internal/config"
	"github.com/theirongolddev/streaklab/internal/model"
	"github.com/theirongolddev/streaklab/internal/notify"
	"github.com/theirongolddev/streaklab/internal/tracker"
	"github.com/theirongolddev/streaklab/internal/tui/components"
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// celebrationMsg carries a newly marked day from the tracker's celebrator.
type celebrationMsg tracker.Celebration

type confettiTickMsg struct{}

type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputRename
)

type confirmKind int

const (
	confirmDelete confirmKind = iota
	confirmReset
)

const (
	tabHabits = iota
	tabStats
	tabSettings
)

const (
	minTerminalWidth = 64
	maxContentWidth  = 160
	minContentHeight = 5

	confettiHeight   = 3
	confettiCount    = 36
	confettiInterval = 50 * time.Millisecond
)

// App is the root Bubble Tea model.
type App struct {
	ctx context.Context
	tr  *tracker.Tracker
	cel *notify.Chan
	cfg config.Config

	// Recomputed after every mutation
	summaries []model.HabitSummary
	totals    model.GlobalStats
	window    []string
	daily     []model.DailyStats
	today     string

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	cursor    int // selected habit
	dayIdx    int // selected day, index into window

	// Add / rename prompt
	mode  inputMode
	input textinput.Model

	// Delete / reset confirmation (huh form)
	confirmForm *huh.Form
	confirmYes  *bool
	confirmKind confirmKind
	confirmID   string

	// First-run setup (huh form)
	// Forms write through pointers; App itself is copied on every Update.
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	settings settingsState

	status    string
	statusErr bool
	confetti  *components.Confetti
}

// NewApp creates the dashboard over tr. cel, when non-nil, must be wired
// into tr as a celebrator; each celebration starts a confetti burst.
func NewApp(ctx context.Context, tr *tracker.Tracker, cel *notify.Chan, cfg config.Config, needSetup bool) App {
	a := App{
		ctx:       ctx,
		tr:        tr,
		cel:       cel,
		cfg:       cfg,
		needSetup: needSetup,
		dayIdx:    -1,
	}
	if needSetup {
		vals := SetupValuesFrom(cfg)
		a.setupVals = &vals
		a.setupForm = NewSetupForm(a.setupVals)
	}
	a.refresh()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if a.cel != nil {
		cmds = append(cmds, waitForCelebration(a.cel.C))
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// refresh recomputes everything derived from the tracker's document.
func (a *App) refresh() {
	today := a.tr.Today()
	rolled := today != a.today
	a.today = today
	a.summaries = a.tr.Summaries()
	a.totals = a.tr.Totals()
	a.window = a.tr.Window()
	a.daily = a.tr.Daily(a.cfg.General.DefaultDays)

	if a.cursor >= len(a.summaries) {
		a.cursor = len(a.summaries) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	if rolled || a.dayIdx < 0 || a.dayIdx >= len(a.window) {
		a.dayIdx = len(a.window) - 1
	}
}

func (a App) selected() (model.HabitSummary, bool) {
	if a.cursor < 0 || a.cursor >= len(a.summaries) {
		return model.HabitSummary{}, false
	}
	return a.summaries[a.cursor], true
}

func (a App) selectedDay() string {
	if a.dayIdx < 0 || a.dayIdx >= len(a.window) {
		return a.today
	}
	return a.window[a.dayIdx]
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.status = errorText(err)
	a.statusErr = true
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case celebrationMsg:
		c := tracker.Celebration(msg)
		a.setStatus(fmt.Sprintf("✦ %s done for %s · %d-day streak", c.HabitName, c.Day, c.Current))
		colors := []string{string(theme.Active.Accent)}
		if h, err := a.tr.Habit(c.HabitID); err == nil && len(h.Color) > 0 {
			colors = h.Color
		}
		w := a.contentWidth()
		if w <= 0 {
			w = minTerminalWidth
		}
		a.confetti = components.NewConfetti(w, confettiHeight, confettiCount, colors, nil)
		return a, tea.Batch(waitForCelebration(a.cel.C), confettiTick())

	case confettiTickMsg:
		if a.confetti == nil {
			return a, nil
		}
		a.confetti.Step()
		if a.confetti.Done() {
			a.confetti = nil
			return a, nil
		}
		return a, confettiTick()

	case tea.MouseMsg:
		if a.showHelp || a.setupForm != nil || a.confirmForm != nil || a.mode != inputNone {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabHabits && a.cursor > 0 {
				a.cursor--
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabHabits && a.cursor < len(a.summaries)-1 {
				a.cursor++
			}
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.confirmForm != nil {
			return a.updateConfirmForm(msg)
		}
		if a.mode != inputNone {
			return a.updateInput(msg)
		}
		if a.activeTab == tabSettings && a.settings.editing {
			return a.updateSettingsInput(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		case "shift+tab":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		}
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
				return a, nil
			}
		}

		switch a.activeTab {
		case tabHabits:
			return a.updateHabitsKeys(key)
		case tabSettings:
			return a.updateSettingsKeys(key)
		}
		return a, nil
	}

	// Forward cursor blinks and the like to whichever form is open.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.confirmForm != nil {
		return a.updateConfirmForm(msg)
	}
	if a.mode != inputNone {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateHabitsKeys(key string) (tea.Model, tea.Cmd) {
	last := len(a.window) - 1

	switch key {
	case "j", "down":
		if a.cursor < len(a.summaries)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "g":
		a.cursor = 0
	case "G":
		a.cursor = max(len(a.summaries)-1, 0)
	case "h", "left":
		a.dayIdx = max(a.dayIdx-1, 0)
	case "l", "right":
		a.dayIdx = min(a.dayIdx+1, last)
	case "H":
		a.dayIdx = max(a.dayIdx-7, 0)
	case "L":
		a.dayIdx = min(a.dayIdx+7, last)
	case "t":
		a.dayIdx = last
	case " ", "enter", "x":
		return a.toggleSelected()
	case "a":
		return a.startInput(inputAdd, "")
	case "r", "e":
		if s, ok := a.selected(); ok {
			return a.startInput(inputRename, s.Habit.Name)
		}
	case "d":
		if s, ok := a.selected(); ok {
			return a.startConfirm(confirmDelete, s.Habit.ID, fmt.Sprintf("Delete %q and its whole history?", s.Habit.Name))
		}
	case "X":
		return a.startConfirm(confirmReset, "", "Erase every habit? This cannot be undone.")
	}
	return a, nil
}

func (a App) toggleSelected() (tea.Model, tea.Cmd) {
	s, ok := a.selected()
	if !ok {
		a.setStatus("No habits yet. Press [a] to add one.")
		return a, nil
	}
	day := a.selectedDay()
	tr, err := a.tr.ToggleLog(a.ctx, s.Habit.ID, day)
	a.refresh()
	if err != nil {
		a.setError(err)
		return a, nil
	}
	if tr == tracker.Unmarked {
		a.setStatus(fmt.Sprintf("Unmarked %s on %s", s.Habit.Name, day))
	} else if a.cel == nil {
		a.setStatus(fmt.Sprintf("Marked %s on %s", s.Habit.Name, day))
	}
	return a, nil
}

func (a App) startInput(mode inputMode, value string) (tea.Model, tea.Cmd) {
	ti := textinput.New()
	ti.CharLimit = 120
	ti.Width = 40
	if mode == inputAdd {
		ti.Placeholder = "Habit name (e.g. Read 20 min)"
	}
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()

	a.mode = mode
	a.input = ti
	return a, textinput.Blink
}

func (a App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = inputNone
		return a, nil
	case "enter":
		name := a.input.Value()
		mode := a.mode
		a.mode = inputNone
		return a.submitInput(mode, name)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) submitInput(mode inputMode, name string) (tea.Model, tea.Cmd) {
	switch mode {
	case inputAdd:
		h, err := a.tr.AddHabit(a.ctx, name)
		a.refresh()
		if err != nil {
			a.setError(err)
			return a, nil
		}
		a.cursor = 0
		a.setStatus(fmt.Sprintf("Added %s", h.Name))
	case inputRename:
		s, ok := a.selected()
		if !ok {
			return a, nil
		}
		err := a.tr.RenameHabit(a.ctx, s.Habit.ID, name)
		a.refresh()
		if err != nil {
			a.setError(err)
			return a, nil
		}
		a.setStatus(fmt.Sprintf("Renamed to %s", strings.TrimSpace(name)))
	}
	return a, nil
}

func (a App) startConfirm(kind confirmKind, id, question string) (tea.Model, tea.Cmd) {
	a.confirmKind = kind
	a.confirmID = id
	a.confirmYes = new(bool)
	a.confirmForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(a.confirmYes),
		),
	).WithShowHelp(false).WithTheme(huh.ThemeDracula())
	return a, a.confirmForm.Init()
}

func (a App) updateConfirmForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.confirmForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.confirmForm = f
	}

	switch a.confirmForm.State {
	case huh.StateCompleted:
		a.confirmForm = nil
		if *a.confirmYes {
			a.applyConfirm()
		}
		return a, nil
	case huh.StateAborted:
		a.confirmForm = nil
		return a, nil
	}
	return a, cmd
}

// applyConfirm runs the confirmed destructive action.
func (a *App) applyConfirm() {
	var err error
	switch a.confirmKind {
	case confirmDelete:
		err = a.tr.DeleteHabit(a.ctx, a.confirmID)
		if err == nil {
			a.setStatus("Habit deleted")
		}
	case confirmReset:
		err = a.tr.Reset(a.ctx)
		if err == nil {
			a.setStatus("All habits erased")
		}
	}
	a.refresh()
	if err != nil {
		a.setError(err)
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := SaveSetup(*a.setupVals); err != nil {
			a.setError(err)
		} else {
			a.setupVals.Apply(&a.cfg)
			a.setStatus("Saved to " + config.Path())
		}
		a.needSetup = false
		a.setupForm = nil
		a.refresh()
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	if a.confirmForm != nil {
		return a.viewOverlay(a.confirmForm.View())
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  streaklab needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewOverlay(body string) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"1 2 3", "Jump to tab"},
			{"Tab", "Next tab"},
			{"j k", "Select habit"},
			{"h l", "Previous / next day"},
			{"H L", "Previous / next week"},
			{"t", "Back to today"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"Space", "Toggle selected day"},
			{"a", "Add habit"},
			{"r", "Rename habit"},
			{"d", "Delete habit"},
			{"X", "Erase all habits"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	var footer []string
	if a.mode != inputNone {
		footer = append(footer, a.viewPrompt(w))
	}
	if a.confetti != nil {
		footer = append(footer, lipgloss.PlaceHorizontal(w, lipgloss.Center, a.confetti.Render(),
			lipgloss.WithWhitespaceBackground(t.Background)))
	}
	footer = append(footer, components.RenderStatusBar(w, a.status, a.statusErr, a.today))
	bottom := lipgloss.JoinVertical(lipgloss.Left, footer...)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(bottom)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabHabits:
		content = a.renderOverviewTab(cw)
	case tabStats:
		content = a.renderBreakdownTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, bottom)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewPrompt(w int) string {
	t := theme.Active
	label := "New habit: "
	if a.mode == inputRename {
		label = "Rename to: "
	}
	labelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	line := labelStyle.Render(" "+label) + a.input.View() + hintStyle.Render("  [Enter] save  [Esc] cancel")
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(line)
}

// ─── Helpers ────────────────────────────────────────────────────

func waitForCelebration(ch <-chan tracker.Celebration) tea.Cmd {
	return func() tea.Msg {
		return celebrationMsg(<-ch)
	}
}

func confettiTick() tea.Cmd {
	return tea.Tick(confettiInterval, func(time.Time) tea.Msg {
		return confettiTickMsg{}
	})
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the same widths RenderTabBar draws.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}

// errorText flattens wrapped tracker errors for the status line.
func errorText(err error) string {
	switch {
	case errors.Is(err, tracker.ErrEmptyName):
		return "Name cannot be empty"
	case errors.Is(err, tracker.ErrNotFound):
		return "Habit no longer exists"
	default:
		return err.Error()
	}
}
