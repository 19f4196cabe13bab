package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/config"
	"github.com/meridianhq/meridian/internal/generate"
	"github.com/meridianhq/meridian/internal/registry"
	"github.com/meridianhq/meridian/internal/store"
)

// sourceTables is the reconciliation list for the operational schemas. The
// warehouse tables come from generate.WarehouseTables.
var sourceTables = []string{
	"core_banking.products",
	"core_banking.customers",
	"core_banking.addresses",
	"core_banking.accounts",
	"core_banking.transactions",
	"core_banking.standing_orders",
	"core_banking.direct_debits",
	"crm.contacts",
	"crm.interactions",
	"crm.complaints",
	"crm.marketing_consents",
	"crm.segments",
	"risk.credit_scores",
	"risk.credit_applications",
	"risk.aml_alerts",
	"risk.aml_cases",
	"risk.sanctions_screening",
	"risk.risk_assessments",
	"risk.regulatory_reports",
	"payments.payment_schemes",
	"payments.payment_instructions",
	"payments.payment_receipts",
	"payments.failed_payments",
	"treasury.positions",
	"treasury.fx_rates",
	"treasury.interbank_lending",
	"treasury.liquidity_pool",
	"gl.chart_of_accounts",
	"gl.cost_centres",
	"gl.gl_entries",
	"gl.gl_balances",
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the full synthetic banking dataset",
	Long: `Generate the complete dataset: drop and recreate all schemas, then run
the ten pipeline stages in order, finishing with a table-count
reconciliation summary.

Use --step to resume a failed run from a specific stage, --schema-only
to apply the DDL without generating data, or --no-schema to regenerate
data into an existing schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		schemaOnly, _ := cmd.Flags().GetBool("schema-only")
		noSchema, _ := cmd.Flags().GetBool("no-schema")
		step, _ := cmd.Flags().GetInt("step")
		if schemaOnly && noSchema {
			return fmt.Errorf("--schema-only and --no-schema are mutually exclusive")
		}
		if step < 1 || step > generate.StageCount() {
			return fmt.Errorf("--step must be between 1 and %d, got %d", generate.StageCount(), step)
		}
		if step > 1 && !noSchema {
			return fmt.Errorf("--step %d resumes into existing data, pass --no-schema as well", step)
		}

		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer logger.Sync()

		dbURL, err := cfg.DatabaseURL()
		if err != nil {
			return err
		}

		ctx := context.Background()
		st := store.New()
		if err := st.Connect(ctx, dbURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer st.Close()

		if !noSchema {
			logger.Info("applying schema", zap.String("dir", cfg.SchemaDir))
			if err := st.ApplySchema(ctx, cfg.SchemaDir); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
			color.Green("✓ Schema applied from %s", cfg.SchemaDir)
		}
		if schemaOnly {
			return nil
		}

		runner := &generate.Runner{Cfg: cfg, DB: st, Reg: registry.New(), Log: logger}
		if err := runner.Run(ctx, step); err != nil {
			var stageErr *generate.StageError
			if errors.As(err, &stageErr) {
				printError(err)
				color.Yellow("Resume with: meridian generate --no-schema --step %d", stageErr.Step)
				os.Exit(1)
			}
			return err
		}

		printSummary(ctx, runner)
		color.Green("✓ Generation complete (seed %d, %d customers)",
			cfg.Generation.Seed, cfg.Generation.CustomerCount)
		return nil
	},
}

func printSummary(ctx context.Context, runner *generate.Runner) {
	tables := append(append([]string{}, sourceTables...), generate.WarehouseTables...)
	counts, err := runner.TableCounts(ctx, tables)
	if err != nil {
		color.Yellow("reconciliation summary unavailable: %v", err)
		return
	}

	bold := color.New(color.Bold)
	bold.Println("\nTable counts")
	for _, t := range tables {
		fmt.Printf("  %-45s %12d\n", t, counts[t])
	}
}

func init() {
	generateCmd.Flags().Bool("schema-only", false, "apply DDL and exit without generating data")
	generateCmd.Flags().Bool("no-schema", false, "skip DDL, generate into the existing schema")
	generateCmd.Flags().Int("step", 1, "pipeline step to start from (for resuming)")
	rootCmd.AddCommand(generateCmd)
}
