package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cadstack/cadhoard/internal/config"
	"github.com/cadstack/cadhoard/internal/storage"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as CSV",
		Long: `Export writes every catalog record as a CSV spreadsheet.

By default the file is written next to the catalog database as catalog.csv.
Use --stdout to write to standard output instead.`,
		RunE: runExport,
	}

	cmd.Flags().StringP("output", "o", "downloads", "output directory holding the catalog")
	cmd.Flags().String("file", "", "CSV file path (default: catalog.csv in the output directory)")
	cmd.Flags().Bool("stdout", false, "write CSV to standard output")

	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		return viper.BindPFlag("output_dir", cmd.Flags().Lookup("output"))
	}

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	outputDir := config.ExpandPath(viper.GetString("output_dir"))

	store, err := storage.NewSQLiteStore(filepath.Join(outputDir, catalogFileName), storage.DefaultBatchSize)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer store.Close()

	records, err := store.LoadExisting(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if useStdout, _ := cmd.Flags().GetBool("stdout"); useStdout {
		return storage.WriteCSV(os.Stdout, records)
	}

	csvPath, _ := cmd.Flags().GetString("file")
	if csvPath == "" {
		csvPath = filepath.Join(outputDir, "catalog.csv")
	}

	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", csvPath, err)
	}
	defer f.Close()

	if err := storage.WriteCSV(f, records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	fmt.Printf("Exported %d records to %s\n", len(records), csvPath)
	return nil
}
