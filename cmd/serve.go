package cmd

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jjenkins/irisplus/internal/handlers"
	"github.com/spf13/cobra"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the IRIS+ metric query API",
	Long:  `Start the JSON API serving stored IRIS+ metrics, summaries and catalog statistics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// flag wins over config and PORT
		if !cmd.Flags().Changed("port") {
			port = cfg.Port
		}

		ctx, cancel := signalContext()
		defer cancel()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		app := fiber.New(fiber.Config{
			AppName: "IRIS+ Metrics",
		})

		app.Use(recover.New())
		app.Use(fiberlogger.New())

		handlers.Register(app, db)

		go func() {
			<-ctx.Done()
			_ = app.Shutdown()
		}()

		log.Info("starting server", "port", port)
		return app.Listen(":" + port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on")
}
