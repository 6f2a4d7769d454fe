package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cadstack/cadhoard/internal/classify"
	"github.com/cadstack/cadhoard/internal/config"
	"github.com/cadstack/cadhoard/internal/dedup"
	"github.com/cadstack/cadhoard/internal/engine"
	"github.com/cadstack/cadhoard/internal/lbry"
	"github.com/cadstack/cadhoard/internal/listing"
	"github.com/cadstack/cadhoard/internal/report"
	"github.com/cadstack/cadhoard/internal/service"
	"github.com/cadstack/cadhoard/internal/storage"
)

// catalogFileName is the catalog database inside the output directory.
const catalogFileName = "catalog.db"

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Walk the listing and fetch new items into the catalog",
		RunE:  runFetch,
	}

	cmd.Flags().StringP("output", "o", "downloads", "output directory for fetched files")
	cmd.Flags().Int("pages", 1, "maximum listing pages to walk (25 items per page)")
	cmd.Flags().Duration("max-wait", 5*time.Minute, "maximum wait for a single download")
	cmd.Flags().Int("retries", 3, "resolution attempts per item")
	cmd.Flags().Int("batch-size", storage.DefaultBatchSize, "catalog appends per flush")
	cmd.Flags().StringSlice("exclude", nil, "tags to exclude (items with any of these tags are skipped)")
	cmd.Flags().Duration("delay", 3*time.Second, "pause between items")
	cmd.Flags().String("daemon-url", lbry.DefaultEndpoint, "resolver daemon RPC endpoint")
	cmd.Flags().String("listing-url", listing.DefaultBaseURL, "listing API base URL")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")
	cmd.Flags().Bool("no-reports", false, "skip README/quick-find generation after the run")

	// Bind at invocation time: several commands share keys like
	// output_dir, and viper keeps only the most recent binding.
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		bindings := map[string]string{
			"output_dir":         "output",
			"listing.pages":      "pages",
			"daemon.max_wait":    "max-wait",
			"daemon.retries":     "retries",
			"catalog.batch_size": "batch-size",
			"excluded_tags":      "exclude",
			"delay":              "delay",
			"daemon.url":         "daemon-url",
			"listing.url":        "listing-url",
			"no_progress":        "no-progress",
			"no_reports":         "no-reports",
		}
		for key, flag := range bindings {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return err
			}
		}
		return nil
	}

	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	outputDir := config.ExpandPath(viper.GetString("output_dir"))

	store, err := storage.NewSQLiteStore(filepath.Join(outputDir, catalogFileName), viper.GetInt("catalog.batch_size"))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close catalog", "error", closeErr)
		}
	}()

	classifier, err := classify.New(classify.DefaultRules())
	if err != nil {
		return fmt.Errorf("failed to build classifier: %w", err)
	}

	index := dedup.New(outputDir, store.LoadExisting)
	resolver := lbry.NewClient(viper.GetString("daemon.url"), viper.GetDuration("daemon.max_wait"))
	source := listing.NewClient(viper.GetString("listing.url"), 30*time.Second)

	excluded := viper.GetStringSlice("excluded_tags")
	if len(excluded) > 0 {
		slog.Info("Tag filter active", "excluded", excluded)
	}

	coordinator := engine.NewCoordinator(resolver, store, index, classifier, engine.CoordinatorConfig{
		OutputDir:    outputDir,
		ExcludedTags: excluded,
		RetryOpts: service.RetryOptions{
			MaxAttempts:  viper.GetInt("daemon.retries"),
			InitialDelay: 5 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	})

	runner := engine.NewRunner(source, resolver, store, index, coordinator, engine.RunnerConfig{
		OutputDir:    outputDir,
		MaxPages:     viper.GetInt("listing.pages"),
		Delay:        viper.GetDuration("delay"),
		ShowProgress: !viper.GetBool("no_progress"),
	})

	stats, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	if !viper.GetBool("no_reports") {
		records, loadErr := store.LoadExisting(cmd.Context())
		if loadErr != nil {
			slog.Warn("Skipping report generation", "error", loadErr)
		} else if reportErr := report.Generate(outputDir, records, time.Now()); reportErr != nil {
			slog.Warn("Report generation failed", "error", reportErr)
		}
	}

	fmt.Printf("Done: %d fetched, %d skipped, %d filtered, %d failed (%s)\n",
		stats.Fetched, stats.Skipped, stats.Filtered, stats.Failed,
		stats.Duration.Round(time.Second))

	// Per-item failures are informational; the run itself succeeded.
	return nil
}
