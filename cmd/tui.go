package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/streaklab/internal/config"
	"github.com/theirongolddev/streaklab/internal/notify"
	"github.com/theirongolddev/streaklab/internal/tui"
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Logs would tear the alt screen, so they go to a file.
	if err := os.MkdirAll(config.DataDir(), 0o750); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	logPath := filepath.Join(config.DataDir(), "streaklab.log")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cel := notify.NewChan(8)
	s, err := openSession(ctx, logPath, cel)
	if err != nil {
		return err
	}
	defer s.Close()

	theme.SetActive(s.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(ctx, s.tracker, cel, s.cfg, !config.Exists())
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
