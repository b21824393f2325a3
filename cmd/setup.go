package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/streaklab/internal/config"
	"github.com/theirongolddev/streaklab/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled; nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	if err := tui.SaveSetup(vals); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	if vals.Backend == config.BackendRedis || vals.Backend == config.BackendPostgres {
		fmt.Println("  Set the connection in the [storage] section or via")
		fmt.Println("  STREAKLAB_REDIS_PASSWORD / STREAKLAB_POSTGRES_DSN.")
	}
	fmt.Println("  Run `streaklab setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
