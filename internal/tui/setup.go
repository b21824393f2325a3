package tui

import (
	"fmt"

	"github.com/theirongolddev/streaklab/internal/config"
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	Backend     string
	Theme       string
	DefaultDays int
}

// SetupValuesFrom seeds the form with cfg's current choices.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Backend:     cfg.Storage.Backend,
		Theme:       cfg.Appearance.Theme,
		DefaultDays: cfg.General.DefaultDays,
	}
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	if v.Backend != "" {
		cfg.Storage.Backend = v.Backend
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	if v.DefaultDays > 0 {
		cfg.General.DefaultDays = v.DefaultDays
	}
}

// NewSetupForm builds the first-run form. It writes into vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to streaklab").
				Description("A few choices and you're tracking.\nRun `streaklab setup` anytime to change them."),

			huh.NewSelect[string]().
				Title("Where should habits be stored?").
				Options(
					huh.NewOption("SQLite file (default)", config.BackendSQLite),
					huh.NewOption("Redis", config.BackendRedis),
					huh.NewOption("PostgreSQL", config.BackendPostgres),
					huh.NewOption("Memory only (nothing saved)", config.BackendMemory),
				).
				Value(&vals.Backend),

			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),

			huh.NewSelect[int]().
				Title("Days shown by `streaklab daily`").
				Options(
					huh.NewOption("7 days", 7),
					huh.NewOption("14 days", 14),
					huh.NewOption("30 days", 30),
				).
				Value(&vals.DefaultDays),
		),
	).WithTheme(huh.ThemeDracula())
}

// SaveSetup applies vals to the on-disk config, activates the chosen
// theme and writes the file.
func SaveSetup(vals SetupValues) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	vals.Apply(&cfg)
	theme.SetActive(cfg.Appearance.Theme)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}
