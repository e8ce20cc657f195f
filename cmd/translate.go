package cmd

import (
	"fmt"

	"github.com/jjenkins/irisplus/internal/service"
	"github.com/jjenkins/irisplus/internal/store"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate <file>",
	Short: "Apply Korean translations to stored metrics",
	Long: `Translate reads a JSON array of translation results and writes the Korean
title and content onto the matching stored metrics. English content and
scrape metadata are left untouched. Unknown metric ids are reported and
skipped; translations older than the stored one are rejected.

Example:
  ./irisplus translate translations.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := service.NewTranslationService(store.NewMetricStore(db), store.NewRunStore(db))
		stats, err := svc.ApplyFile(ctx, args[0])
		if stats != nil {
			svc.PrintSummary(stats)
		}
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}

		if stats.Failed > 0 || stats.Conflicts > 0 {
			return fmt.Errorf("%d translations failed and %d conflicted", stats.Failed, stats.Conflicts)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)
}
