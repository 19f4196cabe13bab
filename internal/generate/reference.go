package generate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/config"
)

// ukBankHolidays covers the major English holidays inside the date dimension
// window that the reporting layer cares about.
var ukBankHolidays = map[string]bool{
	"2024-01-01": true, "2024-03-29": true, "2024-04-01": true,
	"2024-05-06": true, "2024-05-27": true, "2024-08-26": true,
	"2024-12-25": true, "2024-12-26": true,
	"2025-01-01": true, "2025-04-18": true, "2025-04-21": true,
	"2025-05-05": true, "2025-05-26": true, "2025-08-25": true,
	"2025-12-25": true, "2025-12-26": true,
}

// referenceData writes every static lookup table and the date dimension, then
// registers the lookup keys later stages draw from.
func (rn *Runner) referenceData(ctx context.Context) error {
	if err := rn.products(ctx); err != nil {
		return err
	}
	if err := rn.chartOfAccounts(ctx); err != nil {
		return err
	}
	if err := rn.costCentres(ctx); err != nil {
		return err
	}
	if err := rn.paymentSchemes(ctx); err != nil {
		return err
	}
	if err := rn.branches(ctx); err != nil {
		return err
	}
	return rn.dateDimension(ctx)
}

func (rn *Runner) products(ctx context.Context) error {
	cols := []string{"product_code", "name", "category", "interest_rate", "currency",
		"min_balance", "is_active", "launched_date", "description"}
	records := make([]map[string]any, 0, len(config.Products))
	for _, p := range config.Products {
		records = append(records, map[string]any{
			"product_code":  p.Code,
			"name":          p.Name,
			"category":      p.Category,
			"interest_rate": p.Rate,
			"currency":      p.Currency,
			"min_balance":   p.MinBalance,
			"is_active":     true,
			"launched_date": p.Launched,
			"description":   fmt.Sprintf("%s - Meridian Community Bank", p.Name),
		})
	}
	if err := rn.DB.BulkInsert(ctx, "core_banking.products", cols, records); err != nil {
		return err
	}

	byCategory, err := rn.DB.SelectGroupedIDs(ctx,
		"SELECT category, product_id FROM core_banking.products ORDER BY product_id")
	if err != nil {
		return fmt.Errorf("failed to read back product ids: %w", err)
	}
	rn.Reg.Register("product", flattenGroups(byCategory))
	rn.Reg.RegisterGroups("product", byCategory)
	rn.Log.Info("products loaded", zap.Int("count", len(records)))
	return nil
}

func (rn *Runner) chartOfAccounts(ctx context.Context) error {
	cols := []string{"account_code", "account_name", "account_type", "account_subtype",
		"parent_code", "hierarchy_level", "is_posting_account", "is_active"}
	records := make([]map[string]any, 0, len(config.ChartOfAccounts))
	posting := 0
	for _, a := range config.ChartOfAccounts {
		isPosting := a.Level >= 2
		if isPosting {
			posting++
		}
		records = append(records, map[string]any{
			"account_code":       a.Code,
			"account_name":       a.Name,
			"account_type":       a.Type,
			"account_subtype":    nullIfEmpty(a.Subtype),
			"parent_code":        nullIfEmpty(a.Parent),
			"hierarchy_level":    a.Level,
			"is_posting_account": isPosting,
			"is_active":          true,
		})
	}
	if err := rn.DB.BulkInsert(ctx, "gl.chart_of_accounts", cols, records); err != nil {
		return err
	}
	rn.Log.Info("chart of accounts loaded",
		zap.Int("count", len(records)), zap.Int("posting_accounts", posting))
	return nil
}

func (rn *Runner) costCentres(ctx context.Context) error {
	cols := []string{"cost_centre_code", "cost_centre_name", "department", "manager", "is_active"}
	records := make([]map[string]any, 0, len(config.CostCentres))
	for _, c := range config.CostCentres {
		records = append(records, map[string]any{
			"cost_centre_code": c.Code,
			"cost_centre_name": c.Name,
			"department":       c.Department,
			"manager":          c.Manager,
			"is_active":        true,
		})
	}
	if err := rn.DB.BulkInsert(ctx, "gl.cost_centres", cols, records); err != nil {
		return err
	}
	rn.Log.Info("cost centres loaded", zap.Int("count", len(records)))
	return nil
}

func (rn *Runner) paymentSchemes(ctx context.Context) error {
	cols := []string{"scheme_code", "scheme_name", "scheme_type", "max_amount",
		"settlement_cycle", "operating_hours", "is_active"}
	records := make([]map[string]any, 0, len(config.PaymentSchemes))
	for _, s := range config.PaymentSchemes {
		var maxAmount any
		if s.MaxAmount > 0 {
			maxAmount = s.MaxAmount
		}
		records = append(records, map[string]any{
			"scheme_code":      s.Code,
			"scheme_name":      s.Name,
			"scheme_type":      s.Type,
			"max_amount":       maxAmount,
			"settlement_cycle": s.SettlementCycle,
			"operating_hours":  s.OperatingHours,
			"is_active":        true,
		})
	}
	if err := rn.DB.BulkInsert(ctx, "payments.payment_schemes", cols, records); err != nil {
		return err
	}
	if _, err := rn.registerInsertedIDs(ctx, "payment_scheme", "payments.payment_schemes", "scheme_id"); err != nil {
		return err
	}
	rn.Log.Info("payment schemes loaded", zap.Int("count", len(records)))
	return nil
}

func (rn *Runner) branches(ctx context.Context) error {
	cols := []string{"branch_code", "branch_name", "region", "city", "postcode", "branch_type", "is_active"}
	records := make([]map[string]any, 0, len(config.Branches))
	for _, b := range config.Branches {
		records = append(records, map[string]any{
			"branch_code": b.Code,
			"branch_name": b.Name,
			"region":      b.Region,
			"city":        b.City,
			"postcode":    b.Postcode,
			"branch_type": b.Type,
			"is_active":   true,
		})
	}
	if err := rn.DB.BulkInsert(ctx, "warehouse_core.dim_branch", cols, records); err != nil {
		return err
	}
	rn.Log.Info("branches loaded", zap.Int("count", len(records)))
	return nil
}

// dateDimension covers 2020-01-01 through 2026-12-31 with UK fiscal-year
// attributes (fiscal year starts in April).
func (rn *Runner) dateDimension(ctx context.Context) error {
	cols := []string{"date_key", "full_date", "day_of_week", "day_name", "day_of_month",
		"day_of_year", "week_of_year", "iso_week", "month_number", "month_name",
		"month_short", "quarter", "quarter_name", "year", "fiscal_year",
		"fiscal_quarter", "is_weekend", "is_bank_holiday", "is_month_end",
		"is_quarter_end", "is_year_end"}

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	var records []map[string]any
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		isoDow := int(d.Weekday())
		if isoDow == 0 {
			isoDow = 7
		}
		_, isoWeek := d.ISOWeek()
		quarter := (int(d.Month())-1)/3 + 1
		isMonthEnd := d.AddDate(0, 0, 1).Month() != d.Month()
		fiscalYear := d.Year()
		if d.Month() < time.April {
			fiscalYear--
		}
		fiscalQuarter := ((int(d.Month())-4+12)%12)/3 + 1

		records = append(records, map[string]any{
			"date_key":        d.Year()*10000 + int(d.Month())*100 + d.Day(),
			"full_date":       d.Format("2006-01-02"),
			"day_of_week":     isoDow,
			"day_name":        d.Weekday().String(),
			"day_of_month":    d.Day(),
			"day_of_year":     d.YearDay(),
			"week_of_year":    isoWeek,
			"iso_week":        isoWeek,
			"month_number":    int(d.Month()),
			"month_name":      d.Month().String(),
			"month_short":     d.Format("Jan"),
			"quarter":         quarter,
			"quarter_name":    fmt.Sprintf("Q%d", quarter),
			"year":            d.Year(),
			"fiscal_year":     fiscalYear,
			"fiscal_quarter":  fiscalQuarter,
			"is_weekend":      isoDow >= 6,
			"is_bank_holiday": ukBankHolidays[d.Format("2006-01-02")],
			"is_month_end":    isMonthEnd,
			"is_quarter_end":  isMonthEnd && quarter*3 == int(d.Month()),
			"is_year_end":     d.Month() == time.December && d.Day() == 31,
		})
	}
	if err := rn.DB.BulkInsert(ctx, "warehouse_core.dim_date", cols, records); err != nil {
		return err
	}
	rn.Log.Info("date dimension loaded", zap.Int("days", len(records)))
	return nil
}

// nullIfEmpty maps empty reference fields to SQL NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
