package generate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/sample"
)

type treasuryInstrument struct {
	instrumentType string
	book           string
	minPositions   int
	maxPositions   int
}

var treasuryInstruments = []treasuryInstrument{
	{"gilt", "banking_book", 10, 50},
	{"corporate_bond", "banking_book", 5, 30},
	{"money_market", "banking_book", 1, 20},
	{"certificate_of_deposit", "liquidity_buffer", 1, 10},
	{"repo", "banking_book", 5, 50},
	{"interest_rate_swap", "banking_book", 10, 100},
}

var treasuryCounterparties = []string{
	"Barclays", "HSBC", "Lloyds", "NatWest", "Standard Chartered",
	"Goldman Sachs", "JP Morgan", "Deutsche Bank", "BNP Paribas",
}

var interbankCounterparties = []string{"Barclays", "HSBC", "Lloyds", "NatWest", "Santander UK"}

// treasury generates the bank's own book: month-end positions, daily FX
// rates, interbank trades and the liquidity buffer composition.
func (rn *Runner) treasury(ctx context.Context) error {
	if err := rn.treasuryPositions(ctx); err != nil {
		return err
	}
	if err := rn.fxRates(ctx); err != nil {
		return err
	}
	if err := rn.interbank(ctx); err != nil {
		return err
	}
	return rn.liquidityPool(ctx)
}

func (rn *Runner) treasuryPositions(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 50)

	cols := []string{"position_date", "instrument_type", "instrument_ref", "counterparty",
		"notional_amount", "currency", "market_value", "book", "maturity_date", "yield_rate"}

	var records []map[string]any
	for month := time.July; month <= time.December; month++ {
		posDate := time.Date(2024, month, 28, 0, 0, 0, 0, time.UTC)
		for _, inst := range treasuryInstruments {
			n := sample.IntBetween(r, inst.minPositions, inst.maxPositions)
			for i := 0; i < n; i++ {
				notional := sample.Round2(sample.LogNormal(r, 14, 1.5))
				if notional > 500_000_000 {
					notional = 500_000_000
				}
				records = append(records, map[string]any{
					"position_date":   posDate.Format("2006-01-02"),
					"instrument_type": inst.instrumentType,
					"instrument_ref":  fmt.Sprintf("%s-%04d", strings.ToUpper(inst.instrumentType[:3]), sample.IntBetween(r, 1000, 9999)),
					"counterparty":    sample.Uniform(r, treasuryCounterparties),
					"notional_amount": notional,
					"currency":        sample.Uniform(r, []string{"GBP", "GBP", "GBP", "USD", "EUR"}),
					"market_value":    sample.Round2(notional * sample.FloatBetween(r, 0.85, 1.15)),
					"book":            inst.book,
					"maturity_date":   posDate.AddDate(0, 0, sample.IntBetween(r, 30, 3650)).Format("2006-01-02"),
					"yield_rate":      round6(sample.FloatBetween(r, 0.01, 0.08)),
				})
			}
		}
	}
	if err := rn.DB.BulkInsert(ctx, "treasury.positions", cols, records); err != nil {
		return err
	}
	rn.Log.Info("treasury positions generated", zap.Int("count", len(records)))
	return nil
}

// fxRates walks each pair from its base with small daily drift, weekdays only.
func (rn *Runner) fxRates(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 51)

	currencies := []string{"USD", "EUR", "JPY", "CHF", "AUD", "CAD", "SEK", "NOK", "DKK", "PLN"}
	rates := map[string]float64{
		"USD": 1.27, "EUR": 1.16, "JPY": 188.5, "CHF": 1.12,
		"AUD": 1.93, "CAD": 1.72, "SEK": 13.2, "NOK": 13.5,
		"DKK": 8.65, "PLN": 5.05,
	}

	cols := []string{"rate_date", "base_currency", "quote_currency", "spot_rate", "source"}
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	var records []map[string]any
	for day := 0; day < 184; day++ {
		d := start.AddDate(0, 0, day)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		for _, ccy := range currencies {
			drift := r.NormFloat64() * 0.003
			rates[ccy] *= 1 + drift
			records = append(records, map[string]any{
				"rate_date":      d.Format("2006-01-02"),
				"base_currency":  "GBP",
				"quote_currency": ccy,
				"spot_rate":      round6(rates[ccy]),
				"source":         "ECB",
			})
		}
	}
	if err := rn.DB.BulkInsert(ctx, "treasury.fx_rates", cols, records); err != nil {
		return err
	}
	rn.Log.Info("fx rates generated", zap.Int("count", len(records)))
	return nil
}

func (rn *Runner) interbank(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 52)

	cols := []string{"trade_date", "settlement_date", "maturity_date", "direction",
		"counterparty", "principal_amount", "currency", "interest_rate", "status"}
	terms := []int{7, 14, 30, 60, 90, 180, 365}
	principals := []float64{5, 10, 15, 20, 25, 50}

	var records []map[string]any
	for month := time.July; month <= time.December; month++ {
		n := sample.IntBetween(r, 10, 25)
		for i := 0; i < n; i++ {
			tradeDate := time.Date(2024, month, sample.IntBetween(r, 1, 28), 0, 0, 0, 0, time.UTC)
			term := sample.Uniform(r, terms)
			status := "active"
			if month < time.November {
				status = sample.Weighted(r, []string{"active", "matured"}, []float64{0.3, 0.7})
			}
			records = append(records, map[string]any{
				"trade_date":       tradeDate.Format("2006-01-02"),
				"settlement_date":  tradeDate.AddDate(0, 0, 2).Format("2006-01-02"),
				"maturity_date":    tradeDate.AddDate(0, 0, term).Format("2006-01-02"),
				"direction":        sample.Weighted(r, []string{"lend", "borrow"}, []float64{0.55, 0.45}),
				"counterparty":     sample.Uniform(r, interbankCounterparties),
				"principal_amount": sample.Uniform(r, principals) * 1_000_000,
				"currency":         "GBP",
				"interest_rate":    round6(sample.FloatBetween(r, 0.04, 0.06)),
				"status":           status,
			})
		}
	}
	if err := rn.DB.BulkInsert(ctx, "treasury.interbank_lending", cols, records); err != nil {
		return err
	}
	rn.Log.Info("interbank trades generated", zap.Int("count", len(records)))
	return nil
}

type liquidityAsset struct {
	assetClass string
	haircut    float64
	valMin     float64
	valMax     float64
}

var liquidityAssets = []liquidityAsset{
	{"cash_central_bank", 0, 200_000_000, 500_000_000},
	{"level_1_hqla", 0, 500_000_000, 1_500_000_000},
	{"level_2a_hqla", 0.15, 100_000_000, 400_000_000},
	{"level_2b_hqla", 0.50, 50_000_000, 150_000_000},
	{"other_liquid_assets", 0, 20_000_000, 80_000_000},
}

func (rn *Runner) liquidityPool(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 53)

	cols := []string{"report_date", "asset_class", "instrument_type", "nominal_value",
		"market_value", "haircut_pct", "adjusted_value", "currency"}

	var records []map[string]any
	for month := time.July; month <= time.December; month++ {
		reportDate := time.Date(2024, month, 28, 0, 0, 0, 0, time.UTC)
		for _, asset := range liquidityAssets {
			nominal := sample.Round2(sample.FloatBetween(r, asset.valMin, asset.valMax))
			marketVal := sample.Round2(nominal * sample.FloatBetween(r, 0.95, 1.05))
			records = append(records, map[string]any{
				"report_date":     reportDate.Format("2006-01-02"),
				"asset_class":     asset.assetClass,
				"instrument_type": asset.assetClass + " instruments",
				"nominal_value":   nominal,
				"market_value":    marketVal,
				"haircut_pct":     asset.haircut * 100,
				"adjusted_value":  sample.Round2(marketVal * (1 - asset.haircut)),
				"currency":        "GBP",
			})
		}
	}
	if err := rn.DB.BulkInsert(ctx, "treasury.liquidity_pool", cols, records); err != nil {
		return err
	}
	rn.Log.Info("liquidity pool generated", zap.Int("count", len(records)))
	return nil
}

func round6(v float64) float64 {
	return math.Round(v*1000000) / 1000000
}
