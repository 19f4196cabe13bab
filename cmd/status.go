package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/meridianhq/meridian/internal/config"
	"github.com/meridianhq/meridian/internal/generate"
	"github.com/meridianhq/meridian/internal/store"
)

// statusCmd reports connectivity and per-table row counts.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database connectivity and table counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		dbURL, err := cfg.DatabaseURL()
		if err != nil {
			return err
		}

		ctx := context.Background()
		st := store.New()
		if err := st.Connect(ctx, dbURL); err != nil {
			printError(err)
			return fmt.Errorf("database unreachable")
		}
		defer st.Close()

		// The pool connects lazily, so only a ping proves the database is there.
		if err := st.Ping(ctx); err != nil {
			printError(err)
			return fmt.Errorf("database unreachable")
		}
		color.Green("✓ Connected")

		tables := append(append([]string{}, sourceTables...), generate.WarehouseTables...)
		var total int64
		empty := 0
		for _, t := range tables {
			n, err := st.TableCount(ctx, t)
			if err != nil {
				color.Yellow("  %-45s missing", t)
				continue
			}
			total += n
			if n == 0 {
				empty++
			}
			fmt.Printf("  %-45s %12d\n", t, n)
		}

		fmt.Println()
		fmt.Printf("Total rows: %d across %d tables (%d empty)\n", total, len(tables), empty)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
