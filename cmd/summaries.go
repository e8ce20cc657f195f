package cmd

import (
	"github.com/jjenkins/irisplus/internal/service"
	"github.com/jjenkins/irisplus/internal/store"
	"github.com/spf13/cobra"
)

var summariesCmd = &cobra.Command{
	Use:   "load-summaries <file>",
	Short: "Load impact category and SDG goal summaries",
	Long: `Load-summaries replaces the stored impact category and SDG goal summaries
with the contents of a JSON file of the form

  {"impact_categories": [...], "sdg_goals": [...]}

Nothing is written when any entry is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		_, err = service.NewSummaryService(store.NewSummaryStore(db)).LoadFile(ctx, args[0])
		return err
	},
}

func init() {
	rootCmd.AddCommand(summariesCmd)
}
