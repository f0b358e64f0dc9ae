package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seantiz/benchtop/internal/api"
	"github.com/seantiz/benchtop/internal/config"
	"github.com/seantiz/benchtop/internal/session"
	"github.com/seantiz/benchtop/internal/store"
)

var (
	serveAddr   string
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored benchmark results over HTTP",
	Long: `Starts the HTTP API over a results database: paginated run listings,
per-run details with summaries, aggregate statistics, Prometheus metrics
and SSE progress streams for runs started in this process. Runs executed
by other processes appear in listings once stored, but their events are
not streamed.`,
	RunE: serveResults,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from BENCHTOP_LISTEN_ADDR)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "SQLite path (default from BENCHTOP_DB_PATH)")
	rootCmd.AddCommand(serveCmd)
}

func serveResults(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}
	if serveDBPath != "" {
		cfg.DBPath = serveDBPath
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	logger.Info("benchtop: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
	)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	srv := api.NewServer(cfg.ListenAddr, db, session.NewBroker(), logger)
	return srv.Run()
}
