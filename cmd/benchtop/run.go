package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seantiz/benchtop/internal/config"
	"github.com/seantiz/benchtop/internal/model"
	"github.com/seantiz/benchtop/internal/report"
	"github.com/seantiz/benchtop/internal/session"
	"github.com/seantiz/benchtop/internal/store"
)

var (
	runReporter    string
	runOutput      string
	runDBPath      string
	runIncludeData bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the registered benchmark cases",
	Long: `Executes every registered (case, variation) pair with adaptive
scheduling and renders the results with the selected reporter. With --db,
each run is also persisted for later listing and serving.`,
	RunE: runBenchmarks,
}

func init() {
	runCmd.Flags().StringVarP(&runReporter, "reporter", "r", "table", "reporter: table, csv, json or scatter")
	runCmd.Flags().StringVarP(&runOutput, "out", "o", "", "output file (default stdout)")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "SQLite path to persist runs (default none)")
	runCmd.Flags().BoolVar(&runIncludeData, "include-data", false, "embed raw samples in JSON output")
	rootCmd.AddCommand(runCmd)
}

func runBenchmarks(cmd *cobra.Command, args []string) error {
	reporter, err := selectReporter(runReporter)
	if err != nil {
		return err
	}

	cfg := config.Load()
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)

	opts := session.Options{Logger: logger}
	if runDBPath != "" {
		db, err := store.NewSQLiteStore(runDBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		opts.Store = db
	}

	s := session.New(opts)
	if err := registerDemoCases(s); err != nil {
		return fmt.Errorf("register cases: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcomes, err := s.Run(ctx)
	if err != nil {
		return fmt.Errorf("run benchmarks: %w", err)
	}

	var results []*model.Results
	failed := 0
	for _, o := range outcomes {
		if o.Results != nil {
			results = append(results, o.Results)
			continue
		}
		failed++
		fmt.Fprintf(os.Stderr, "failed: %s/%s: %s\n", o.Run.Group, o.Run.Title, o.Run.Error)
	}

	out, closeOut, err := openOutput(runOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := reporter.Report(out, results); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(outcomes))
	}
	return nil
}

func selectReporter(name string) (report.Reporter, error) {
	switch name {
	case "table":
		return report.TableReporter{}, nil
	case "csv":
		return report.CSVReporter{}, nil
	case "json":
		return report.JSONReporter{IncludeData: runIncludeData}, nil
	case "scatter":
		return report.ScatterReporter{}, nil
	default:
		return nil, fmt.Errorf("unknown reporter %q (want table, csv, json or scatter)", name)
	}
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
