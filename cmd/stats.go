package cmd

import (
	"github.com/jjenkins/irisplus/internal/service"
	"github.com/jjenkins/irisplus/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print catalog statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := service.NewStatsService(store.NewMetricStore(db), store.NewRunStore(db))
		stats, err := svc.Calculate(ctx)
		if err != nil {
			return err
		}
		svc.PrintStats(stats)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
