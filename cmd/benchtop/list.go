package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seantiz/benchtop/internal/config"
	"github.com/seantiz/benchtop/internal/store"
)

var (
	listDBPath string
	listLimit  int
	listOffset int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored benchmark runs",
	RunE:  listRuns,
}

func init() {
	listCmd.Flags().StringVar(&listDBPath, "db", "", "SQLite path (default from BENCHTOP_DB_PATH)")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum runs to list")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "runs to skip")
	rootCmd.AddCommand(listCmd)
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if listDBPath != "" {
		cfg.DBPath = listDBPath
	}

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	runs, total, err := db.ListRuns(context.Background(), listLimit, listOffset)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tGROUP\tTITLE\tITERS\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Status, r.Group, r.Title, r.Iterations,
			r.CreatedAt.Format(time.RFC3339),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Printf("%d of %d runs\n", len(runs), total)
	return nil
}
