package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/streaklab/internal/snapshot"

	"github.com/spf13/cobra"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a snapshot of every habit to a file",
	Long: "Write a JSON, CSV or YAML snapshot. Without --out the file is named " +
		"after today's date in the current directory; --out - writes stdout.",
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Replace all habits with a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every habit",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "json", "Export format: json, csv, yaml")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output path, or - for stdout")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	format, err := snapshot.ParseFormat(flagExportFormat)
	if err != nil {
		return err
	}
	return withSession(func(_ context.Context, s *session) error {
		doc := s.tracker.ExportSnapshot()
		window := s.tracker.Window()

		if flagExportOut == "-" {
			return snapshot.Write(os.Stdout, format, doc, window)
		}

		path := flagExportOut
		if path == "" {
			path = snapshot.ExportFilename(format, s.tracker.Now())
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		if err := snapshot.Write(f, format, doc, window); err != nil {
			_ = f.Close()
			return fmt.Errorf("writing export: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		info("Exported %d habits to %s", len(doc.Habits), path)
		return nil
	})
}

func runImport(_ *cobra.Command, args []string) error {
	var (
		raw []byte
		err error
	)
	if args[0] == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	// Validate before asking, so a bad file never prompts.
	doc, err := snapshot.Decode(raw)
	if err != nil {
		if errors.Is(err, snapshot.ErrUnparsable) || errors.Is(err, snapshot.ErrMissingHabits) {
			return fmt.Errorf("import rejected: %w", err)
		}
		return err
	}

	return withSession(func(ctx context.Context, s *session) error {
		current := len(s.tracker.Habits())
		if current > 0 {
			ok, err := confirm(fmt.Sprintf("Replace %d habits with %d from the snapshot?", current, len(doc.Habits)))
			if err != nil || !ok {
				return err
			}
		}
		if err := s.tracker.ImportSnapshot(ctx, raw); err != nil {
			return err
		}
		info("Imported %d habits", len(doc.Habits))
		return nil
	})
}

func runReset(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session) error {
		n := len(s.tracker.Habits())
		if n == 0 {
			info("Nothing to reset.")
			return nil
		}
		ok, err := confirm(fmt.Sprintf("Delete all %d habits and their history?", n))
		if err != nil || !ok {
			return err
		}
		if err := s.tracker.Reset(ctx); err != nil {
			return err
		}
		info("All habits deleted.")
		return nil
	})
}
