package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/config"
	"github.com/meridianhq/meridian/internal/sample"
)

// txnGLMap pairs each transaction type with its (debit, credit) posting codes.
var txnGLMap = map[string][2]string{
	"salary":           {"2110", "4210"},
	"direct_debit":     {"2110", "1120"},
	"standing_order":   {"2110", "1120"},
	"faster_payment":   {"2110", "1120"},
	"card_payment":     {"2110", "4220"},
	"interest":         {"5110", "2120"},
	"fee":              {"4210", "2110"},
	"loan_repayment":   {"1210", "2110"},
	"mortgage_payment": {"1220", "2110"},
	"transfer_in":      {"2110", "1120"},
	"transfer_out":     {"1120", "2110"},
	"bacs":             {"2110", "1120"},
	"chaps":            {"2110", "1120"},
	"atm_withdrawal":   {"2110", "1130"},
}

// glTxnTypes is the fixed iteration order for drawing journal types.
var glTxnTypes = []string{
	"atm_withdrawal", "bacs", "card_payment", "chaps", "direct_debit", "fee",
	"faster_payment", "interest", "loan_repayment", "mortgage_payment",
	"salary", "standing_order", "transfer_in", "transfer_out",
}

var glEntryCols = []string{
	"journal_id", "batch_id", "entry_date", "posting_date", "account_code",
	"cost_centre_code", "debit_amount", "credit_amount", "currency",
	"description", "source_system", "source_reference", "is_manual", "posted_by",
}

const glFlushThreshold = 10000

// generalLedger posts balanced double-entry journals for every day of the
// window, one deliberately unbalanced manual journal, then the monthly
// balance rollup.
func (rn *Runner) generalLedger(ctx context.Context) error {
	if err := rn.glEntries(ctx); err != nil {
		return err
	}
	return rn.glBalances(ctx)
}

func (rn *Runner) glEntries(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 40)

	ccCodes := make([]string, 0, len(config.CostCentres))
	for _, cc := range config.CostCentres {
		ccCodes = append(ccCodes, cc.Code)
	}

	start, _ := rn.Cfg.TxnStart()
	end, _ := rn.Cfg.TxnEnd()

	var records []map[string]any
	journalCounter := 0
	total := 0

	flush := func() error {
		if len(records) == 0 {
			return nil
		}
		if err := rn.DB.BulkInsert(ctx, "gl.gl_entries", glEntryCols, records); err != nil {
			return err
		}
		records = records[:0]
		return nil
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		batchID := "BATCH-" + d.Format("20060102")
		nJournals := sample.IntBetween(r, 150, 250)

		for j := 0; j < nJournals; j++ {
			journalCounter++
			journalID := fmt.Sprintf("JNL-%08d", journalCounter)
			cc := sample.Uniform(r, ccCodes)

			txnType := sample.Uniform(r, glTxnTypes)
			codes := txnGLMap[txnType]

			amount := decimal.NewFromFloat(sample.LogNormal(r, 5.0, 1.2)).Round(2)
			if amount.GreaterThan(decimal.NewFromInt(100000)) {
				amount = decimal.NewFromInt(100000)
			}
			zero := decimal.Zero
			sourceRef := fmt.Sprintf("TXN-%06d", sample.IntBetween(r, 100000, 999999))
			desc := fmt.Sprintf("%s posting", titleCase(txnType))

			records = append(records,
				glLeg(journalID, batchID, dateStr, codes[0], cc, amount, zero, desc, "core_banking", sourceRef, false, "SYSTEM"),
				glLeg(journalID, batchID, dateStr, codes[1], cc, zero, amount, desc, "core_banking", sourceRef, false, "SYSTEM"))
			total += 2
		}

		if len(records) >= glFlushThreshold {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	// One manual journal where the legs do not net to zero. The £500 gap is
	// what trial-balance checks downstream are meant to catch.
	imbalanceBatch := rn.Cfg.Generation.GLImbalanceBatch
	journalCounter++
	records = append(records, glLeg(fmt.Sprintf("JNL-%08d", journalCounter), imbalanceBatch,
		"2024-11-15", "4210", "CC-FIN",
		decimal.NewFromFloat(15000.00), decimal.Zero,
		"IMBALANCED ENTRY - Fee adjustment", "manual", "MANUAL-ERR-001", true, "FIN-003"))
	journalCounter++
	records = append(records, glLeg(fmt.Sprintf("JNL-%08d", journalCounter), imbalanceBatch,
		"2024-11-15", "2110", "CC-FIN",
		decimal.Zero, decimal.NewFromFloat(14500.00),
		"IMBALANCED ENTRY - Fee adjustment", "manual", "MANUAL-ERR-001", true, "FIN-003"))
	total += 2

	if err := flush(); err != nil {
		return err
	}

	rn.Log.Info("gl entries generated",
		zap.Int("entries", total),
		zap.String("imbalance_batch", imbalanceBatch))
	return nil
}

func glLeg(journalID, batchID, dateStr, accountCode, costCentre string,
	debit, credit decimal.Decimal, desc, sourceSystem, sourceRef string,
	manual bool, postedBy string) map[string]any {
	return map[string]any{
		"journal_id":       journalID,
		"batch_id":         batchID,
		"entry_date":       dateStr,
		"posting_date":     dateStr,
		"account_code":     accountCode,
		"cost_centre_code": costCentre,
		"debit_amount":     debit.StringFixed(2),
		"credit_amount":    credit.StringFixed(2),
		"currency":         "GBP",
		"description":      desc,
		"source_system":    sourceSystem,
		"source_reference": sourceRef,
		"is_manual":        manual,
		"posted_by":        postedBy,
	}
}

// glBalances derives the monthly snapshot per (account, cost centre) with
// running opening and closing balances, entirely in SQL.
func (rn *Runner) glBalances(ctx context.Context) error {
	start := time.Now()
	err := rn.DB.Exec(ctx, `
		INSERT INTO gl.gl_balances
			(period_end_date, account_code, cost_centre_code,
			 opening_balance, period_debits, period_credits, closing_balance, currency)
		WITH monthly AS (
			SELECT account_code, cost_centre_code,
			       (DATE_TRUNC('month', entry_date) + INTERVAL '1 month' - INTERVAL '1 day')::date AS period_end,
			       SUM(debit_amount) AS debits,
			       SUM(credit_amount) AS credits
			FROM gl.gl_entries
			GROUP BY account_code, cost_centre_code, DATE_TRUNC('month', entry_date)
		)
		SELECT period_end, account_code, cost_centre_code,
		       COALESCE(SUM(debits - credits) OVER (
		           PARTITION BY account_code, cost_centre_code
		           ORDER BY period_end
		           ROWS BETWEEN UNBOUNDED PRECEDING AND 1 PRECEDING), 0) AS opening_balance,
		       ROUND(debits, 2),
		       ROUND(credits, 2),
		       SUM(debits - credits) OVER (
		           PARTITION BY account_code, cost_centre_code
		           ORDER BY period_end) AS closing_balance,
		       'GBP'
		FROM monthly
		ORDER BY period_end, account_code`)
	if err != nil {
		return fmt.Errorf("failed to build gl balances: %w", err)
	}
	n, err := rn.DB.TableCount(ctx, "gl.gl_balances")
	if err != nil {
		return err
	}
	rn.Log.Info("gl balances rolled up",
		zap.Int64("snapshots", n),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
