package generate

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/sample"
)

// txnTypeMix is the transaction type distribution for one product category.
type txnTypeMix struct {
	types   []string
	weights []float64
}

var txnTypeMixes = map[string]txnTypeMix{
	"current_account": {
		types: []string{"direct_debit", "standing_order", "faster_payment", "card_payment",
			"atm_withdrawal", "salary", "transfer_out", "transfer_in", "bacs", "fee"},
		weights: []float64{0.15, 0.08, 0.20, 0.25, 0.05, 0.08, 0.05, 0.05, 0.07, 0.02},
	},
	"savings": {
		types:   []string{"transfer_in", "transfer_out", "interest", "faster_payment"},
		weights: []float64{0.40, 0.35, 0.15, 0.10},
	},
	"personal_loan": {
		types:   []string{"loan_repayment", "interest", "fee"},
		weights: []float64{0.70, 0.20, 0.10},
	},
	"mortgage": {
		types:   []string{"mortgage_payment", "interest", "fee"},
		weights: []float64{0.70, 0.20, 0.10},
	},
	"credit_card": {
		types:   []string{"card_payment", "faster_payment", "interest", "fee", "transfer_in"},
		weights: []float64{0.55, 0.10, 0.15, 0.05, 0.15},
	},
	"business_current": {
		types: []string{"direct_debit", "faster_payment", "bacs", "chaps", "card_payment",
			"salary", "transfer_out", "transfer_in", "fee"},
		weights: []float64{0.12, 0.20, 0.15, 0.05, 0.15, 0.10, 0.08, 0.10, 0.05},
	},
	"business_loan": {
		types:   []string{"loan_repayment", "interest", "fee"},
		weights: []float64{0.70, 0.20, 0.10},
	},
	"business_savings": {
		types:   []string{"transfer_in", "transfer_out", "interest"},
		weights: []float64{0.45, 0.40, 0.15},
	},
}

// amountParams are lognormal (mu, sigma) pairs per transaction type.
var amountParams = map[string][2]float64{
	"direct_debit":     {4.0, 0.8},
	"standing_order":   {5.0, 0.5},
	"faster_payment":   {4.5, 1.0},
	"card_payment":     {3.0, 0.9},
	"atm_withdrawal":   {3.3, 0.3},
	"salary":           {7.5, 0.4},
	"transfer_out":     {5.0, 1.2},
	"transfer_in":      {5.0, 1.2},
	"bacs":             {5.5, 1.0},
	"chaps":            {9.0, 1.5},
	"interest":         {2.0, 1.0},
	"fee":              {1.5, 0.5},
	"loan_repayment":   {5.8, 0.3},
	"mortgage_payment": {6.7, 0.3},
}

var txnChannels = []string{"online", "mobile", "branch", "atm", "phone", "api", "batch"}
var txnChannelWs = []float64{0.25, 0.35, 0.05, 0.05, 0.03, 0.12, 0.15}

var creditTxnTypes = map[string]bool{"salary": true, "transfer_in": true, "interest": true}

var transactionCols = []string{
	"account_id", "txn_date", "txn_timestamp", "value_date", "amount", "currency",
	"txn_type", "description", "counterparty_name", "counterparty_account",
	"counterparty_sort_code", "channel", "reference", "status", "balance_after",
}

// txnFlushThreshold bounds in-memory record buildup before a bulk insert.
const txnFlushThreshold = 50000

// transactions generates activity for every active account over the
// configured window. Volume and type mix depend on the product category;
// a bounded number of zero-amount rows are injected as a completeness defect.
func (rn *Runner) transactions(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 20)

	byCategory, err := rn.DB.SelectGroupedIDs(ctx, `
		SELECT p.category, a.account_id
		FROM core_banking.accounts a
		JOIN core_banking.products p ON a.product_id = p.product_id
		WHERE a.status IN ('active', 'in_arrears')
		ORDER BY a.account_id`)
	if err != nil {
		return fmt.Errorf("failed to load active accounts: %w", err)
	}

	businessIDs, err := rn.DB.SelectInt64s(ctx, `
		SELECT a.account_id
		FROM core_banking.accounts a
		JOIN core_banking.customers c ON a.customer_id = c.customer_id
		WHERE c.type = 'business' AND a.status IN ('active', 'in_arrears')
		ORDER BY a.account_id`)
	if err != nil {
		return fmt.Errorf("failed to load business accounts: %w", err)
	}
	businessSet := make(map[int64]bool, len(businessIDs))
	for _, id := range businessIDs {
		businessSet[id] = true
	}

	start, _ := rn.Cfg.TxnStart()
	end, _ := rn.Cfg.TxnEnd()
	nDays := int(end.Sub(start).Hours()/24) + 1

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var records []map[string]any
	total := 0
	zeroInserted := 0

	for _, cat := range categories {
		mix, ok := txnTypeMixes[cat]
		if !ok {
			mix = txnTypeMixes["current_account"]
		}
		avgMonthly := monthlyVolume(cat, rn.Cfg.Generation.AvgTxnPerMonth)

		for _, accountID := range byCategory[cat] {
			n := sample.Poisson(r, avgMonthly*float64(rn.Cfg.Generation.TransactionMonths))
			if n < 1 {
				n = 1
			}

			offsets := make([]int, n)
			for i := range offsets {
				offsets[i] = r.Intn(nDays)
			}
			sort.Ints(offsets)

			isBusiness := businessSet[accountID]

			for _, off := range offsets {
				txnType := sample.Weighted(r, mix.types, mix.weights)
				txnDate := start.AddDate(0, 0, off)

				amount := txnAmount(r, txnType)
				if zeroInserted < rn.Cfg.Generation.ZeroAmountTxns && sample.Bernoulli(r, 0.0001) {
					amount = 0
					zeroInserted++
				}
				if !creditTxnTypes[txnType] {
					amount = -amount
				}

				hour := int(sample.NormalClamped(r, 13, 4, 0, 23))
				ts := time.Date(txnDate.Year(), txnDate.Month(), txnDate.Day(), hour, r.Intn(60), 0, 0, time.UTC)

				status := "completed"
				if sample.Bernoulli(r, 0.005) {
					status = sample.Uniform(r, []string{"failed", "reversed", "disputed"})
				}

				cp := counterparty(r, txnType, isBusiness)

				var cpAccount, cpSortCode any
				if sample.Bernoulli(r, 0.7) {
					cpAccount = accountNumber(r)
				}
				if sample.Bernoulli(r, 0.7) {
					cpSortCode = sortCode(r)
				}

				records = append(records, map[string]any{
					"account_id":             accountID,
					"txn_date":               txnDate.Format("2006-01-02"),
					"txn_timestamp":          ts.Format("2006-01-02 15:04:05"),
					"value_date":             txnDate.Format("2006-01-02"),
					"amount":                 amount,
					"currency":               "GBP",
					"txn_type":               txnType,
					"description":            fmt.Sprintf("%s - %s", titleCase(txnType), cp),
					"counterparty_name":      cp,
					"counterparty_account":   cpAccount,
					"counterparty_sort_code": cpSortCode,
					"channel":                txnChannel(r, txnType),
					"reference":              fmt.Sprintf("REF%06d", sample.IntBetween(r, 100000, 999999)),
					"status":                 status,
					"balance_after":          nil,
				})
				total++
			}

			if len(records) >= txnFlushThreshold {
				if err := rn.DB.BulkInsert(ctx, "core_banking.transactions", transactionCols, records); err != nil {
					return err
				}
				records = records[:0]
			}
		}
	}

	if len(records) > 0 {
		if err := rn.DB.BulkInsert(ctx, "core_banking.transactions", transactionCols, records); err != nil {
			return err
		}
	}

	rn.Log.Info("transactions generated",
		zap.Int("count", total),
		zap.Int("zero_amount", zeroInserted))
	return nil
}

func monthlyVolume(category string, configured float64) float64 {
	switch category {
	case "savings", "business_savings":
		return 3
	case "personal_loan", "mortgage", "business_loan":
		return 2
	case "credit_card":
		return 15
	default:
		return configured
	}
}

// txnAmount draws a positive amount for the type, capped at £500k, with ATM
// withdrawals rounded to £10 notes between £10 and £500.
func txnAmount(r *rand.Rand, txnType string) float64 {
	params, ok := amountParams[txnType]
	if !ok {
		params = [2]float64{4.0, 0.8}
	}
	amount := sample.Round2(sample.LogNormal(r, params[0], params[1]))
	if amount > 500000 {
		amount = 500000
	}
	if txnType == "atm_withdrawal" {
		amount = float64(int(amount/10+0.5)) * 10
		if amount < 10 {
			amount = 10
		}
		if amount > 500 {
			amount = 500
		}
	}
	return amount
}

func txnChannel(r *rand.Rand, txnType string) string {
	switch txnType {
	case "direct_debit", "standing_order", "bacs", "interest", "fee":
		return "batch"
	case "atm_withdrawal":
		return "atm"
	case "card_payment":
		return sample.Weighted(r, []string{"mobile", "online", "branch"}, []float64{0.4, 0.3, 0.3})
	case "salary":
		if sample.Bernoulli(r, 0.5) {
			return "api"
		}
		return "batch"
	case "chaps":
		return "api"
	default:
		return sample.Weighted(r, txnChannels, txnChannelWs)
	}
}

// titleCase turns a snake_case transaction type into a display label.
func titleCase(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
