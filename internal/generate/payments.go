package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/sample"
)

// paymentUETR derives the scheme end-to-end reference as a name-based UUID so
// regenerating with the same seed yields the same identifiers.
func paymentUETR(seed int64, n int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("meridian:pay:%d:%d", seed, n)))
}

// schemeWeights follows config.PaymentSchemes order: FPS dominates retail
// volume, BACS and DD carry the batch traffic.
var schemeWeights = []float64{0.30, 0.20, 0.15, 0.05, 0.02, 0.10, 0.08, 0.05, 0.03, 0.02}

var standingOrderPayees = []string{
	"Landlord", "Savings Transfer", "Charity Donation", "Gym Membership",
	"Insurance Premium", "Child Maintenance", "Parent Support",
}

type ddOriginator struct {
	name string
	sun  string
}

var ddOriginators = []ddOriginator{
	{"British Gas", "SUN-001"}, {"EDF Energy", "SUN-002"}, {"Thames Water", "SUN-003"},
	{"Sky TV", "SUN-004"}, {"BT", "SUN-005"}, {"Council Tax", "SUN-006"},
	{"HMRC", "SUN-007"}, {"Netflix", "SUN-008"}, {"Spotify", "SUN-009"},
	{"Virgin Media", "SUN-010"}, {"Admiral Insurance", "SUN-011"},
	{"Aviva", "SUN-012"}, {"PureGym", "SUN-013"},
}

// payments generates standing orders and direct debit mandates on current
// accounts, then the outbound/inbound scheme flows and the failed-payment
// records hanging off rejected instructions.
func (rn *Runner) payments(ctx context.Context) error {
	currentAccounts, err := rn.DB.SelectInt64s(ctx, `
		SELECT a.account_id FROM core_banking.accounts a
		JOIN core_banking.products p ON a.product_id = p.product_id
		WHERE p.category IN ('current_account', 'business_current') AND a.status = 'active'
		ORDER BY a.account_id`)
	if err != nil {
		return fmt.Errorf("failed to load current accounts: %w", err)
	}

	if err := rn.standingOrders(ctx, currentAccounts); err != nil {
		return err
	}
	if err := rn.directDebits(ctx, currentAccounts); err != nil {
		return err
	}
	return rn.paymentFlows(ctx)
}

func (rn *Runner) standingOrders(ctx context.Context, accounts []int64) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 70)

	amounts := []float64{25, 50, 100, 150, 200, 300, 500, 750, 1000}
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"account_id", "payee_name", "payee_account", "payee_sort_code",
		"amount", "currency", "frequency", "start_date", "end_date",
		"next_payment_date", "reference", "status"}

	var records []map[string]any
	for _, aid := range accounts {
		n := sample.Poisson(r, 1.5)
		for i := 0; i < n; i++ {
			start := base.AddDate(0, 0, r.Intn(730))
			var endDate any
			if sample.Bernoulli(r, 0.2) {
				endDate = start.AddDate(0, 0, sample.IntBetween(r, 180, 730)).Format("2006-01-02")
			}
			records = append(records, map[string]any{
				"account_id":        aid,
				"payee_name":        sample.Uniform(r, standingOrderPayees),
				"payee_account":     accountNumber(r),
				"payee_sort_code":   sortCode(r),
				"amount":            sample.Uniform(r, amounts),
				"currency":          "GBP",
				"frequency":         sample.Weighted(r, []string{"monthly", "weekly", "quarterly"}, []float64{0.70, 0.15, 0.15}),
				"start_date":        start.Format("2006-01-02"),
				"end_date":          endDate,
				"next_payment_date": "2025-01-15",
				"reference":         fmt.Sprintf("SO-%05d", sample.IntBetween(r, 10000, 99999)),
				"status":            sample.Uniform(r, []string{"active", "active", "active", "cancelled"}),
			})
		}
	}
	if err := rn.DB.BulkInsert(ctx, "core_banking.standing_orders", cols, records); err != nil {
		return err
	}
	rn.Log.Info("standing orders generated", zap.Int("count", len(records)))
	return nil
}

func (rn *Runner) directDebits(ctx context.Context, accounts []int64) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 71)

	cols := []string{"account_id", "originator_name", "originator_id", "reference",
		"mandate_date", "first_collection", "last_collection", "status"}
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	var records []map[string]any
	for _, aid := range accounts {
		n := sample.Poisson(r, 3)
		for _, orig := range sample.WithoutReplacement(r, ddOriginators, n) {
			mandate := base.AddDate(0, 0, r.Intn(1800))
			records = append(records, map[string]any{
				"account_id":       aid,
				"originator_name":  orig.name,
				"originator_id":    orig.sun,
				"reference":        fmt.Sprintf("DD-%06d", sample.IntBetween(r, 100000, 999999)),
				"mandate_date":     mandate.Format("2006-01-02"),
				"first_collection": mandate.AddDate(0, 0, sample.IntBetween(r, 14, 45)).Format("2006-01-02"),
				"last_collection":  "2024-12-15",
				"status": sample.Weighted(r,
					[]string{"active", "active", "active", "cancelled", "suspended"},
					[]float64{0.60, 0.20, 0.05, 0.10, 0.05}),
			})
		}
	}
	if err := rn.DB.BulkInsert(ctx, "core_banking.direct_debits", cols, records); err != nil {
		return err
	}
	rn.Log.Info("direct debits generated", zap.Int("count", len(records)))
	return nil
}

const maxFailedPayments = 5000

func (rn *Runner) paymentFlows(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 72)

	// Scheme keys were registered in insert order during the reference stage,
	// which follows config.PaymentSchemes order, so they line up with
	// schemeWeights positionally.
	schemeIDs, err := rn.Reg.IDs("payment_scheme")
	if err != nil {
		return fmt.Errorf("failed to load payment schemes: %w", err)
	}
	if len(schemeIDs) != len(schemeWeights) {
		return fmt.Errorf("expected %d payment schemes, registry holds %d", len(schemeWeights), len(schemeIDs))
	}

	activeAccounts, err := rn.DB.SelectInt64s(ctx,
		"SELECT account_id FROM core_banking.accounts WHERE status = 'active' ORDER BY account_id")
	if err != nil {
		return fmt.Errorf("failed to load active accounts: %w", err)
	}

	jul24 := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	// Outbound instructions. Rejected ones are remembered by position so the
	// failed-payment records can reference their assigned keys afterwards.
	instructionCols := []string{"account_id", "scheme_id", "instruction_date", "uetr", "amount",
		"currency", "beneficiary_name", "beneficiary_account", "beneficiary_sort_code",
		"reference", "payment_type", "priority", "status", "settlement_date"}

	type rejected struct {
		index  int
		amount float64
	}
	var rejectedInstructions []rejected

	var records []map[string]any
	nInstructions := rn.Cfg.Generation.PaymentInstructions
	for i := 0; i < nInstructions; i++ {
		instDate := jul24.AddDate(0, 0, r.Intn(183))
		amount := sample.Round2(sample.LogNormal(r, 5, 1.2))
		status := sample.Weighted(r,
			[]string{"settled", "settled", "settled", "sent", "rejected"},
			[]float64{0.80, 0.08, 0.05, 0.05, 0.02})
		if status == "rejected" {
			rejectedInstructions = append(rejectedInstructions, rejected{index: i, amount: amount})
		}

		records = append(records, map[string]any{
			"account_id":            sample.Uniform(r, activeAccounts),
			"scheme_id":             sample.Weighted(r, schemeIDs, schemeWeights),
			"instruction_date":      fmt.Sprintf("%s %02d:%02d:00", instDate.Format("2006-01-02"), sample.IntBetween(r, 8, 18), r.Intn(59)),
			"uetr":                  paymentUETR(rn.Cfg.Generation.Seed, i).String(),
			"amount":                amount,
			"currency":              "GBP",
			"beneficiary_name":      sample.Uniform(r, retailCounterparties),
			"beneficiary_account":   accountNumber(r),
			"beneficiary_sort_code": sortCode(r),
			"reference":             fmt.Sprintf("PAY-%06d", sample.IntBetween(r, 100000, 999999)),
			"payment_type":          sample.Weighted(r, []string{"single", "bulk", "standing_order"}, []float64{0.70, 0.15, 0.15}),
			"priority":              sample.Weighted(r, []string{"normal", "urgent"}, []float64{0.92, 0.08}),
			"status":                status,
			"settlement_date":       instDate.AddDate(0, 0, r.Intn(3)).Format("2006-01-02"),
		})

		if len(records) >= txnFlushThreshold {
			if err := rn.DB.BulkInsert(ctx, "payments.payment_instructions", instructionCols, records); err != nil {
				return err
			}
			records = records[:0]
		}
	}
	if len(records) > 0 {
		if err := rn.DB.BulkInsert(ctx, "payments.payment_instructions", instructionCols, records); err != nil {
			return err
		}
		records = records[:0]
	}

	// Inbound receipts.
	receiptCols := []string{"account_id", "scheme_id", "receipt_date", "amount", "currency",
		"sender_name", "sender_account", "sender_sort_code", "reference", "status"}

	nReceipts := rn.Cfg.Generation.PaymentReceipts
	for i := 0; i < nReceipts; i++ {
		rcptDate := jul24.AddDate(0, 0, r.Intn(183))
		records = append(records, map[string]any{
			"account_id":       sample.Uniform(r, activeAccounts),
			"scheme_id":        sample.Weighted(r, schemeIDs, schemeWeights),
			"receipt_date":     fmt.Sprintf("%s %02d:%02d:00", rcptDate.Format("2006-01-02"), sample.IntBetween(r, 8, 18), r.Intn(59)),
			"amount":           sample.Round2(sample.LogNormal(r, 5, 1.2)),
			"currency":         "GBP",
			"sender_name":      sample.Uniform(r, retailCounterparties),
			"sender_account":   accountNumber(r),
			"sender_sort_code": sortCode(r),
			"reference":        fmt.Sprintf("RCV-%06d", sample.IntBetween(r, 100000, 999999)),
			"status":           sample.Weighted(r, []string{"applied", "applied", "applied", "received"}, []float64{0.85, 0.05, 0.05, 0.05}),
		})

		if len(records) >= txnFlushThreshold {
			if err := rn.DB.BulkInsert(ctx, "payments.payment_receipts", receiptCols, records); err != nil {
				return err
			}
			records = records[:0]
		}
	}
	if len(records) > 0 {
		if err := rn.DB.BulkInsert(ctx, "payments.payment_receipts", receiptCols, records); err != nil {
			return err
		}
		records = records[:0]
	}

	// Failed payments: serial keys are assigned in insert order, so the i-th
	// read-back id belongs to the i-th built instruction.
	instructionIDs, err := rn.DB.SelectInt64s(ctx,
		"SELECT instruction_id FROM payments.payment_instructions ORDER BY instruction_id")
	if err != nil {
		return fmt.Errorf("failed to read back instruction ids: %w", err)
	}

	failureReasons := []string{"insufficient_funds", "invalid_account", "invalid_sort_code",
		"account_closed", "amount_limit_exceeded", "technical_error"}
	reasonWs := []float64{0.40, 0.15, 0.10, 0.10, 0.10, 0.15}
	failedCols := []string{"instruction_id", "failure_date", "failure_reason",
		"original_amount", "currency", "resolution_status"}

	if len(rejectedInstructions) > maxFailedPayments {
		rejectedInstructions = rejectedInstructions[:maxFailedPayments]
	}
	for _, rej := range rejectedInstructions {
		records = append(records, map[string]any{
			"instruction_id":    instructionIDs[rej.index],
			"failure_date":      fmt.Sprintf("2024-%02d-%02d 14:00:00", sample.IntBetween(r, 7, 12), sample.IntBetween(r, 1, 28)),
			"failure_reason":    sample.Weighted(r, failureReasons, reasonWs),
			"original_amount":   rej.amount,
			"currency":          "GBP",
			"resolution_status": sample.Weighted(r, []string{"unresolved", "retried", "reversed"}, []float64{0.30, 0.40, 0.30}),
		})
	}
	if err := rn.DB.BulkInsert(ctx, "payments.failed_payments", failedCols, records); err != nil {
		return err
	}

	rn.Log.Info("payment flows generated",
		zap.Int("instructions", nInstructions),
		zap.Int("receipts", nReceipts),
		zap.Int("failed", len(records)))
	return nil
}
