package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jjenkins/irisplus/internal/config"
	"github.com/jjenkins/irisplus/internal/store"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/multiversx/mx-chain-logger-go/file"
	"github.com/spf13/cobra"
)

const (
	defaultLogsPath      = "logs"
	logFilePrefix        = "irisplus"
	logFileLifeSpanInSec = 86400 // 24h
	logFileLifeSpanInMB  = 1024  // 1GB
)

var log = logger.GetOrCreate("cmd")

// fileLoggingHandler is the part of the file logger the commands use
type fileLoggingHandler interface {
	ChangeFileLifeSpan(lifeSpan time.Duration, sizeInMB uint64) error
	Close() error
}

var (
	configFile  string
	logLevel    string
	logSave     bool
	workingDir  string
	cfg         config.Config
	fileLogging fileLoggingHandler
)

var rootCmd = &cobra.Command{
	Use:   "irisplus",
	Short: "Scrape, store and serve the IRIS+ impact metric catalog",
	Long: `irisplus keeps a local copy of the IRIS+ metric catalog.

It scrapes the public catalog into a Postgres or SQLite database, applies
Korean translations and aggregated summaries produced by external steps,
and serves the result as a JSON query API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.SetLogLevel(logLevel); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		if err := attachFileLogger(); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if fileLogging != nil {
			_ = fileLogging.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.toml", "Path to the TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "*:"+logger.LogInfo.String(), "Logger level(s), e.g. *:DEBUG or *:INFO,service:DEBUG")
	rootCmd.PersistentFlags().BoolVar(&logSave, "log-save", false, "Also write logs to a file under the working directory")
	rootCmd.PersistentFlags().StringVar(&workingDir, "working-directory", ".", "Directory log files are written to")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func attachFileLogger() error {
	if !logSave {
		return nil
	}

	fl, err := file.NewFileLogging(file.ArgsFileLogging{
		WorkingDir:      workingDir,
		DefaultLogsPath: defaultLogsPath,
		LogFilePrefix:   logFilePrefix,
	})
	if err != nil {
		return fmt.Errorf("%w creating a log file", err)
	}
	fileLogging = fl

	return fileLogging.ChangeFileLifeSpan(time.Second*time.Duration(logFileLifeSpanInSec), uint64(logFileLifeSpanInMB))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			log.Info("received interrupt signal, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// openDB connects to the configured database and brings its schema up to date
func openDB(ctx context.Context) (*store.DB, error) {
	log.Info("connecting to database...")
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
