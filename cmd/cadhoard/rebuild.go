package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cadstack/cadhoard/internal/config"
	"github.com/cadstack/cadhoard/internal/engine"
	"github.com/cadstack/cadhoard/internal/storage"
)

func rebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Reconcile the catalog against the output tree",
		Long: `Rebuild walks the output directory and reconciles it with the catalog:
records pointing at moved files are updated, files missing from disk are
reported, and files on disk with no catalog record are adopted as minimal
records so they are not re-fetched.`,
		RunE: runRebuild,
	}

	cmd.Flags().StringP("output", "o", "downloads", "output directory holding the catalog")
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		return viper.BindPFlag("output_dir", cmd.Flags().Lookup("output"))
	}

	return cmd
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	outputDir := config.ExpandPath(viper.GetString("output_dir"))

	store, err := storage.NewSQLiteStore(filepath.Join(outputDir, catalogFileName), storage.DefaultBatchSize)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer store.Close()

	stats, err := engine.Reconcile(cmd.Context(), store, outputDir, time.Now())
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	fmt.Printf("Reconciled: %d relocated, %d adopted, %d missing, %d outside tree\n",
		stats.Relocated, stats.Adopted, stats.Missing, stats.Outside)
	return nil
}
