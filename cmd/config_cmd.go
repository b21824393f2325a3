package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/streaklab/internal/config"
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default days: %d\n", cfg.General.DefaultDays)
	fmt.Println()

	st := cfg.Storage
	fmt.Println("  [Storage]")
	fmt.Printf("    Backend:    %s\n", st.Backend)
	fmt.Printf("    Key:        %s\n", st.Key)
	fmt.Printf("    On corrupt: %s\n", st.OnCorrupt)
	switch st.Backend {
	case config.BackendSQLite:
		path := st.Path
		if path == "" {
			path = config.DefaultDBPath()
		}
		fmt.Printf("    Path:       %s\n", path)
	case config.BackendRedis:
		fmt.Printf("    Address:    %s (db %d)\n", st.RedisAddr, st.RedisDB)
		fmt.Printf("    Password:   %s\n", maskSecret(st.RedisPassword))
	case config.BackendPostgres:
		fmt.Printf("    DSN:        %s\n", maskSecret(st.PostgresDSN))
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:   %s  (%s)\n", cfg.Appearance.Theme, strings.Join(theme.Names(), ", "))
	fmt.Printf("    Palette: %s\n", cfg.Appearance.Palette)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Events:   %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Celebrate]")
	fmt.Printf("    Log:      %v\n", cfg.Celebrate.Log)
	if cfg.Celebrate.AMQPURL != "" {
		fmt.Printf("    AMQP:     %s\n", maskSecret(cfg.Celebrate.AMQPURL))
		fmt.Printf("    Exchange: %s\n", cfg.Celebrate.Exchange)
	} else {
		fmt.Println("    AMQP:     not configured")
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	fmt.Println()

	fmt.Println("  Run `streaklab setup` to reconfigure.")
	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return "not set"
	}
	if len(s) > 16 {
		return s[:8] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:4] + "..."
	}
	return "****"
}
