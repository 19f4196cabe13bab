package generate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/config"
	"github.com/meridianhq/meridian/internal/registry"
)

// DB is the persistence surface stages write through. *store.Store satisfies
// it; tests substitute an in-memory fake.
type DB interface {
	BulkInsert(ctx context.Context, table string, columns []string, records []map[string]any) error
	SelectInt64s(ctx context.Context, sql string, args ...any) ([]int64, error)
	SelectGroupedIDs(ctx context.Context, sql string, args ...any) (map[string][]int64, error)
	SelectRows(ctx context.Context, sql string, args ...any) ([][]any, error)
	Exec(ctx context.Context, sql string, args ...any) error
	TableCount(ctx context.Context, table string) (int64, error)
	DropConstraint(ctx context.Context, table, constraint string) error
	AddConstraintNotValid(ctx context.Context, table, constraint, column, refTable, refColumn string) error
}

// Runner holds everything a stage needs. Stages run strictly in order and
// communicate only through the database and the id registry.
type Runner struct {
	Cfg *config.Config
	DB  DB
	Reg *registry.Registry
	Log *zap.Logger
}

// StageError wraps a stage failure with the step number so the CLI can print
// a resume hint.
type StageError struct {
	Step int
	Name string
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Step, e.Name, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type stage struct {
	name string
	run  func(*Runner, context.Context) error
}

// Stages is the fixed pipeline order. Each stage registers the primary keys
// it creates before any later stage samples them.
var stages = []stage{
	{"reference data", (*Runner).referenceData},
	{"customers and addresses", (*Runner).customers},
	{"accounts", (*Runner).accounts},
	{"risk data", (*Runner).risk},
	{"transactions", (*Runner).transactions},
	{"general ledger", (*Runner).generalLedger},
	{"payments", (*Runner).payments},
	{"treasury", (*Runner).treasury},
	{"crm data", (*Runner).crm},
	{"warehouse layers", (*Runner).warehouse},
}

// StageCount reports how many pipeline steps exist, for CLI flag validation.
func StageCount() int { return len(stages) }

// StageName returns the 1-based stage name.
func StageName(step int) string { return stages[step-1].name }

// Run executes the pipeline from the given 1-based step. When resuming past
// step 1 the registry is rehydrated from rows already persisted.
func (rn *Runner) Run(ctx context.Context, fromStep int) error {
	if fromStep < 1 || fromStep > len(stages) {
		return fmt.Errorf("step must be between 1 and %d, got %d", len(stages), fromStep)
	}
	if fromStep > 1 {
		if err := rn.rehydrate(ctx, fromStep); err != nil {
			return fmt.Errorf("failed to rebuild id registry for resume: %w", err)
		}
	}

	for i := fromStep - 1; i < len(stages); i++ {
		st := stages[i]
		start := time.Now()
		rn.Log.Info("stage starting", zap.Int("step", i+1), zap.String("stage", st.name))
		if err := st.run(rn, ctx); err != nil {
			return &StageError{Step: i + 1, Name: st.name, Err: err}
		}
		rn.Log.Info("stage complete",
			zap.Int("step", i+1),
			zap.String("stage", st.name),
			zap.Duration("elapsed", time.Since(start)))
	}
	return nil
}

// flattenGroups collapses grouped ids into one flat set in sorted group order,
// so the flat registry entry is identical across runs.
func flattenGroups(byGroup map[string][]int64) []int64 {
	keys := make([]string, 0, len(byGroup))
	for k := range byGroup {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var all []int64
	for _, k := range keys {
		all = append(all, byGroup[k]...)
	}
	return all
}

// registerInsertedIDs reads back the serial keys just committed for table,
// ordered by insertion, and registers them under entityType. Serial keys are
// assigned in insert order, so the i-th id pairs with the i-th built record.
func (rn *Runner) registerInsertedIDs(ctx context.Context, entityType, table, pk string) ([]int64, error) {
	ids, err := rn.DB.SelectInt64s(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", pk, table, pk))
	if err != nil {
		return nil, fmt.Errorf("failed to read back %s keys: %w", entityType, err)
	}
	rn.Reg.Register(entityType, ids)
	return ids, nil
}

// rehydrate reloads the registry entries that stages before fromStep would
// have produced, so a resumed run samples the same key sets. Stages that read
// richer account or contact attributes query the database directly and need
// no registry state.
func (rn *Runner) rehydrate(ctx context.Context, fromStep int) error {
	if fromStep > 1 {
		byCategory, err := rn.DB.SelectGroupedIDs(ctx,
			"SELECT category, product_id FROM core_banking.products ORDER BY product_id")
		if err != nil {
			return fmt.Errorf("reloading product ids: %w", err)
		}
		rn.Reg.Register("product", flattenGroups(byCategory))
		rn.Reg.RegisterGroups("product", byCategory)

		schemes, err := rn.DB.SelectInt64s(ctx,
			"SELECT scheme_id FROM payments.payment_schemes ORDER BY scheme_id")
		if err != nil {
			return fmt.Errorf("reloading payment schemes: %w", err)
		}
		rn.Reg.Register("payment_scheme", schemes)
	}
	if fromStep > 2 {
		ids, err := rn.DB.SelectInt64s(ctx,
			"SELECT customer_id FROM core_banking.customers ORDER BY customer_id")
		if err != nil {
			return fmt.Errorf("reloading customer ids: %w", err)
		}
		rn.Reg.Register("customer", ids)

		byType, err := rn.DB.SelectGroupedIDs(ctx,
			"SELECT type, customer_id FROM core_banking.customers ORDER BY customer_id")
		if err != nil {
			return fmt.Errorf("reloading customer groups: %w", err)
		}
		rn.Reg.RegisterGroups("customer", byType)

		active, err := rn.DB.SelectInt64s(ctx,
			"SELECT customer_id FROM core_banking.customers WHERE is_active ORDER BY customer_id")
		if err != nil {
			return fmt.Errorf("reloading active customers: %w", err)
		}
		rn.Reg.Register("customer_active", active)
	}
	if fromStep > 3 {
		ids, err := rn.DB.SelectInt64s(ctx,
			"SELECT account_id FROM core_banking.accounts ORDER BY account_id")
		if err != nil {
			return fmt.Errorf("reloading account ids: %w", err)
		}
		rn.Reg.Register("account", ids)

		active, err := rn.DB.SelectInt64s(ctx,
			"SELECT account_id FROM core_banking.accounts WHERE status IN ('active', 'in_arrears') ORDER BY account_id")
		if err != nil {
			return fmt.Errorf("reloading active accounts: %w", err)
		}
		rn.Reg.Register("account_active", active)
	}
	return nil
}

// TableCounts is the reconciliation summary printed after a full run.
func (rn *Runner) TableCounts(ctx context.Context, tables []string) (map[string]int64, error) {
	out := make(map[string]int64, len(tables))
	for _, t := range tables {
		n, err := rn.DB.TableCount(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}
