package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cadstack/cadhoard/internal/listing"
)

func tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Scan the listing and print tag frequencies",
		Long: `Tags walks listing pages and prints every tag seen with its count,
useful for deciding what to pass to fetch --exclude.`,
		RunE: runTags,
	}

	cmd.Flags().Int("pages", 5, "maximum listing pages to scan")
	cmd.Flags().String("listing-url", listing.DefaultBaseURL, "listing API base URL")

	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := viper.BindPFlag("listing.pages", cmd.Flags().Lookup("pages")); err != nil {
			return err
		}
		return viper.BindPFlag("listing.url", cmd.Flags().Lookup("listing-url"))
	}

	return cmd
}

func runTags(cmd *cobra.Command, _ []string) error {
	source := listing.NewClient(viper.GetString("listing.url"), 30*time.Second)

	counts, err := source.ScanTags(cmd.Context(), viper.GetInt("listing.pages"))
	if err != nil {
		return fmt.Errorf("tag scan failed: %w", err)
	}

	type tagCount struct {
		tag   string
		count int
	}
	sorted := make([]tagCount, 0, len(counts))
	for tag, count := range counts {
		sorted = append(sorted, tagCount{tag, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].tag < sorted[j].tag
	})

	for _, tc := range sorted {
		fmt.Printf("%5d  %s\n", tc.count, tc.tag)
	}
	fmt.Printf("\n%d distinct tags\n", len(sorted))
	return nil
}
