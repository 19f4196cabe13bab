package generate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/sample"
)

var accountCols = []string{
	"customer_id", "product_id", "account_number", "sort_code", "account_name",
	"status", "currency", "credit_limit", "overdraft_limit", "opened_date",
	"closed_date", "last_transaction_date",
}

var creditCardLimits = []float64{1000, 2000, 3000, 5000, 7500, 10000, 15000}
var overdraftLimits = []float64{250, 500, 1000, 1500, 2000, 3000}

// accountAllocator hands out (account number, sort code) pairs that are
// unique across the whole run.
type accountAllocator struct {
	used map[string]bool
}

func newAccountAllocator() *accountAllocator {
	return &accountAllocator{used: make(map[string]bool)}
}

func (a *accountAllocator) next(r *rand.Rand) (string, string) {
	for {
		an := accountNumber(r)
		sc := sortCode(r)
		key := an + "-" + sc
		if !a.used[key] {
			a.used[key] = true
			return an, sc
		}
	}
}

// accounts assigns a product mix to every customer, injects a configured
// number of accounts pointing at non-existent customers, and re-declares the
// customer foreign key as NOT VALID so those rows survive.
func (rn *Runner) accounts(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 10)

	custGroups, err := rn.Reg.Groups("customer")
	if err != nil {
		return err
	}
	personal := custGroups["personal"]
	business := custGroups["business"]

	productGroups, err := rn.Reg.Groups("product")
	if err != nil {
		return err
	}
	creditCardProducts := make(map[int64]bool)
	for _, pid := range productGroups["credit_card"] {
		creditCardProducts[pid] = true
	}

	alloc := newAccountAllocator()
	var records []map[string]any

	build := func(cid, productID int64, status string, opened time.Time) map[string]any {
		opened = clampDate(opened)
		an, sc := alloc.next(r)

		var closed any
		if status == "closed" {
			closed = opened.AddDate(0, 0, sample.IntBetween(r, 90, 2000)).Format("2006-01-02")
		}
		var creditLimit any
		if creditCardProducts[productID] {
			creditLimit = sample.Uniform(r, creditCardLimits)
		}
		var overdraft any
		if sample.Bernoulli(r, 0.3) {
			overdraft = sample.Uniform(r, overdraftLimits)
		}

		return map[string]any{
			"customer_id":           cid,
			"product_id":            productID,
			"account_number":        an,
			"sort_code":             sc,
			"account_name":          nil,
			"status":                status,
			"currency":              "GBP",
			"credit_limit":          creditLimit,
			"overdraft_limit":       overdraft,
			"opened_date":           opened.Format("2006-01-02"),
			"closed_date":           closed,
			"last_transaction_date": nil,
		}
	}

	arrears := rn.Cfg.Generation.ArrearsRatio

	for _, cid := range personal {
		base := clampDate(onboardingStart.AddDate(0, 0, r.Intn(3650)))

		// Everyone holds a current account.
		status := "active"
		if !sample.Bernoulli(r, rn.Cfg.Generation.ActiveAccountRatio) {
			status = sample.Uniform(r, []string{"dormant", "closed"})
		}
		records = append(records, build(cid, sample.Uniform(r, productGroups["current_account"]), status, base))

		if sample.Bernoulli(r, 0.60) {
			records = append(records, build(cid, sample.Uniform(r, productGroups["savings"]),
				"active", base.AddDate(0, 0, r.Intn(365))))
		}
		if sample.Bernoulli(r, 0.20) {
			cat := sample.Weighted(r, []string{"personal_loan", "mortgage"}, []float64{0.6, 0.4})
			status := "active"
			if sample.Bernoulli(r, arrears) {
				status = sample.Weighted(r, []string{"in_arrears", "default"}, []float64{0.8, 0.2})
			}
			records = append(records, build(cid, sample.Uniform(r, productGroups[cat]),
				status, base.AddDate(0, 0, sample.IntBetween(r, 30, 1000))))
		}
		if sample.Bernoulli(r, 0.30) {
			records = append(records, build(cid, sample.Uniform(r, productGroups["credit_card"]),
				"active", base.AddDate(0, 0, r.Intn(730))))
		}
	}

	for _, cid := range business {
		base := clampDate(onboardingStart.AddDate(0, 0, r.Intn(3650)))

		records = append(records, build(cid, sample.Uniform(r, productGroups["business_current"]), "active", base))

		if sample.Bernoulli(r, 0.50) {
			records = append(records, build(cid, sample.Uniform(r, productGroups["business_savings"]),
				"active", base.AddDate(0, 0, r.Intn(365))))
		}
		if sample.Bernoulli(r, 0.30) {
			status := "active"
			if sample.Bernoulli(r, arrears) {
				status = "in_arrears"
			}
			records = append(records, build(cid, sample.Uniform(r, productGroups["business_loan"]),
				status, base.AddDate(0, 0, sample.IntBetween(r, 30, 730))))
		}
	}

	// Orphaned accounts reference customer ids that were never issued. Either
	// group may be empty when the personal ratio is at an extreme, so take the
	// max across both rather than indexing the tails.
	var maxCustomerID int64
	for _, group := range [][]int64{personal, business} {
		if n := len(group); n > 0 && group[n-1] > maxCustomerID {
			maxCustomerID = group[n-1]
		}
	}
	for i := 0; i < rn.Cfg.Generation.OrphanedAccounts; i++ {
		an, sc := alloc.next(r)
		records = append(records, map[string]any{
			"customer_id":           maxCustomerID + 1000 + int64(i),
			"product_id":            sample.Uniform(r, productGroups["current_account"]),
			"account_number":        an,
			"sort_code":             sc,
			"account_name":          fmt.Sprintf("Orphaned Account %d", i+1),
			"status":                "active",
			"currency":              "GBP",
			"credit_limit":          nil,
			"overdraft_limit":       nil,
			"opened_date":           "2023-06-15",
			"closed_date":           nil,
			"last_transaction_date": nil,
		})
	}

	if err := rn.DB.DropConstraint(ctx, "core_banking.accounts", "accounts_customer_id_fkey"); err != nil {
		return fmt.Errorf("failed to drop customer fk: %w", err)
	}
	if err := rn.DB.BulkInsert(ctx, "core_banking.accounts", accountCols, records); err != nil {
		return err
	}
	if err := rn.DB.AddConstraintNotValid(ctx, "core_banking.accounts", "accounts_customer_id_fkey",
		"customer_id", "core_banking.customers", "customer_id"); err != nil {
		return fmt.Errorf("failed to restore customer fk: %w", err)
	}

	ids, err := rn.registerInsertedIDs(ctx, "account", "core_banking.accounts", "account_id")
	if err != nil {
		return err
	}

	active := make([]int64, 0, len(ids))
	for i, rec := range records {
		if s := rec["status"].(string); s == "active" || s == "in_arrears" {
			active = append(active, ids[i])
		}
	}
	rn.Reg.Register("account_active", active)

	rn.Log.Info("accounts generated",
		zap.Int("total", len(ids)),
		zap.Int("active", len(active)),
		zap.Int("orphaned", rn.Cfg.Generation.OrphanedAccounts))
	return nil
}
