package generate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/sample"
)

const reportDate = "2024-12-31"

// staleStagingTables are re-stamped with an old batch so freshness checks in
// downstream tooling have something real to catch.
var staleStagingTables = []string{
	"warehouse_staging.stg_credit_scores",
	"warehouse_staging.stg_risk_assessments",
	"warehouse_staging.stg_aml_alerts",
}

const (
	staleBatchID    = "BATCH-20241220-001"
	staleIngestedAt = "2024-12-20 02:00:00"
)

// WarehouseTables lists every warehouse-layer table in truncation order, used
// both when the stage re-runs and by the reconciliation summary.
var WarehouseTables = []string{
	"warehouse_reporting.rpt_arrears_ageing",
	"warehouse_reporting.rpt_regulatory_capital",
	"warehouse_reporting.rpt_liquidity_coverage",
	"warehouse_reporting.rpt_product_performance",
	"warehouse_reporting.rpt_aml_summary",
	"warehouse_reporting.rpt_daily_pnl",
	"warehouse_reporting.rpt_customer_360",
	"warehouse_core.bridge_customer_account",
	"warehouse_core.fact_gl_entries",
	"warehouse_core.fact_transactions",
	"warehouse_core.dim_geography",
	"warehouse_core.dim_account",
	"warehouse_core.dim_customer",
	"warehouse_core.dim_product",
	"warehouse_staging.stg_gl_entries",
	"warehouse_staging.stg_risk_assessments",
	"warehouse_staging.stg_aml_alerts",
	"warehouse_staging.stg_credit_scores",
	"warehouse_staging.stg_interactions",
	"warehouse_staging.stg_contacts",
	"warehouse_staging.stg_transactions",
	"warehouse_staging.stg_accounts",
	"warehouse_staging.stg_customers",
}

type stagingCopy struct {
	table string
	sql   string
}

// stagingCopies load each source table into its staging twin with ingestion
// metadata: the batch id, the originating system and a row hash over the
// columns that drive downstream change detection.
var stagingCopies = []stagingCopy{
	{"warehouse_staging.stg_customers",
		`INSERT INTO warehouse_staging.stg_customers
		   (customer_id, customer_ref, type, title, first_name, last_name, full_name,
		    date_of_birth, gender, nationality, ni_number, email, phone_mobile,
		    kyc_status, kyc_verified_date, risk_rating, customer_segment, is_active,
		    onboarded_date, closed_date, _batch_id, _source_system, _record_hash)
		 SELECT customer_id, customer_ref, type, title, first_name, last_name, full_name,
		        date_of_birth, gender, nationality, ni_number, email, phone_mobile,
		        kyc_status, kyc_verified_date, risk_rating, customer_segment, is_active,
		        onboarded_date, closed_date, '%s', 'core_banking',
		        md5(ROW(customer_id, full_name, kyc_status, risk_rating)::text)
		 FROM core_banking.customers`},

	{"warehouse_staging.stg_accounts",
		`INSERT INTO warehouse_staging.stg_accounts
		   (account_id, customer_id, product_id, account_number, sort_code, account_name,
		    status, currency, credit_limit, overdraft_limit, opened_date, closed_date,
		    last_transaction_date, _batch_id, _source_system, _record_hash)
		 SELECT account_id, customer_id, product_id, account_number, sort_code, account_name,
		        status, currency, credit_limit, overdraft_limit, opened_date, closed_date,
		        last_transaction_date, '%s', 'core_banking',
		        md5(ROW(account_id, status, credit_limit)::text)
		 FROM core_banking.accounts`},

	{"warehouse_staging.stg_transactions",
		`INSERT INTO warehouse_staging.stg_transactions
		   (txn_id, account_id, txn_date, txn_timestamp, value_date, amount, currency,
		    txn_type, description, counterparty_name, channel, reference, status,
		    balance_after, _batch_id, _source_system, _record_hash)
		 SELECT txn_id, account_id, txn_date, txn_timestamp, value_date, amount, currency,
		        txn_type, description, counterparty_name, channel, reference, status,
		        balance_after, '%s', 'core_banking',
		        md5(ROW(txn_id, amount, status)::text)
		 FROM core_banking.transactions`},

	{"warehouse_staging.stg_contacts",
		`INSERT INTO warehouse_staging.stg_contacts
		   (contact_id, customer_id, contact_name, email_primary, phone_primary,
		    preferred_channel, relationship_manager, assigned_branch,
		    _batch_id, _source_system, _record_hash)
		 SELECT contact_id, customer_id, contact_name, email_primary, phone_primary,
		        preferred_channel, relationship_manager, assigned_branch,
		        '%s', 'crm',
		        md5(ROW(contact_id, contact_name)::text)
		 FROM crm.contacts`},

	{"warehouse_staging.stg_interactions",
		`INSERT INTO warehouse_staging.stg_interactions
		   (interaction_id, contact_id, customer_id, interaction_date, channel,
		    category, subject, resolved, sentiment_score,
		    _batch_id, _source_system, _record_hash)
		 SELECT interaction_id, contact_id, customer_id, interaction_date, channel,
		        category, subject, resolved, sentiment_score,
		        '%s', 'crm',
		        md5(ROW(interaction_id, resolved)::text)
		 FROM crm.interactions`},

	{"warehouse_staging.stg_credit_scores",
		`INSERT INTO warehouse_staging.stg_credit_scores
		   (score_id, customer_id, score_date, score_value, score_band,
		    model_name, is_current, _batch_id, _source_system, _record_hash)
		 SELECT score_id, customer_id, score_date, score_value, score_band,
		        model_name, is_current, '%s', 'risk_engine',
		        md5(ROW(score_id, score_value)::text)
		 FROM risk.credit_scores`},

	{"warehouse_staging.stg_aml_alerts",
		`INSERT INTO warehouse_staging.stg_aml_alerts
		   (alert_id, customer_id, alert_date, alert_type, rule_id, risk_score,
		    status, resolution_date, _batch_id, _source_system, _record_hash)
		 SELECT alert_id, customer_id, alert_date, alert_type, rule_id, risk_score,
		        status, resolution_date, '%s', 'risk_engine',
		        md5(ROW(alert_id, status)::text)
		 FROM risk.aml_alerts`},

	{"warehouse_staging.stg_risk_assessments",
		`INSERT INTO warehouse_staging.stg_risk_assessments
		   (assessment_id, customer_id, assessment_date, assessment_type, overall_risk,
		    pep_status, adverse_media, next_review_date,
		    _batch_id, _source_system, _record_hash)
		 SELECT assessment_id, customer_id, assessment_date, assessment_type, overall_risk,
		        pep_status, adverse_media, next_review_date,
		        '%s', 'risk_engine',
		        md5(ROW(assessment_id, overall_risk)::text)
		 FROM risk.risk_assessments`},

	{"warehouse_staging.stg_gl_entries",
		`INSERT INTO warehouse_staging.stg_gl_entries
		   (entry_id, journal_id, batch_id, entry_date, posting_date, account_code,
		    cost_centre_code, debit_amount, credit_amount, currency, description,
		    source_system, source_reference, _batch_id, _source_system, _record_hash)
		 SELECT entry_id, journal_id, batch_id, entry_date, posting_date, account_code,
		        cost_centre_code, debit_amount, credit_amount, currency, description,
		        source_system, source_reference, '%s', 'gl',
		        md5(ROW(entry_id, debit_amount, credit_amount)::text)
		 FROM gl.gl_entries`},
}

// warehouse derives the three warehouse layers from the operational schemas.
// The layers are truncated first so the stage is a pure rebuild and can be
// re-run on its own.
func (rn *Runner) warehouse(ctx context.Context) error {
	for _, t := range WarehouseTables {
		if err := rn.DB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", t)); err != nil {
			return fmt.Errorf("truncating %s: %w", t, err)
		}
	}

	if err := rn.loadStaging(ctx); err != nil {
		return err
	}
	if err := rn.buildDimensions(ctx); err != nil {
		return err
	}
	if err := rn.buildFacts(ctx); err != nil {
		return err
	}
	return rn.buildReporting(ctx)
}

func (rn *Runner) loadStaging(ctx context.Context) error {
	batchDate, err := rn.Cfg.WarehouseBatch()
	if err != nil {
		return err
	}
	batchID := fmt.Sprintf("BATCH-%s-001", batchDate.Format("20060102"))

	stale := make(map[string]bool, len(staleStagingTables))
	for _, t := range staleStagingTables {
		stale[t] = true
	}

	for _, sc := range stagingCopies {
		useBatch := batchID
		if stale[sc.table] {
			useBatch = staleBatchID
		}
		if err := rn.DB.Exec(ctx, fmt.Sprintf(sc.sql, useBatch)); err != nil {
			return fmt.Errorf("loading %s: %w", sc.table, err)
		}
		n, err := rn.DB.TableCount(ctx, sc.table)
		if err != nil {
			return err
		}
		rn.Log.Info("staging table loaded",
			zap.String("table", sc.table),
			zap.Int64("rows", n),
			zap.Bool("stale", stale[sc.table]))
	}

	// Back-date the ingestion timestamp so the stale tables read as stale.
	for _, t := range staleStagingTables {
		if err := rn.DB.Exec(ctx, fmt.Sprintf("UPDATE %s SET _ingested_at = '%s'", t, staleIngestedAt)); err != nil {
			return fmt.Errorf("back-dating %s: %w", t, err)
		}
	}
	return nil
}

func (rn *Runner) buildDimensions(ctx context.Context) error {
	dims := []stagingCopy{
		{"warehouse_core.dim_product",
			`INSERT INTO warehouse_core.dim_product
			   (product_id, product_code, product_name, product_category,
			    interest_rate, currency, is_active, launched_date)
			 SELECT product_id, product_code, name, category,
			        interest_rate, currency, is_active, launched_date
			 FROM core_banking.products`},

		{"warehouse_core.dim_customer",
			`INSERT INTO warehouse_core.dim_customer
			   (customer_id, customer_ref, customer_type, full_name, date_of_birth,
			    nationality, email, phone, postcode, city,
			    preferred_channel, relationship_manager, assigned_branch,
			    kyc_status, risk_rating, credit_score_band, credit_score_value,
			    pep_status, customer_segment,
			    effective_from, effective_to, is_current, _source_systems)
			 SELECT
			     sc.customer_id, sc.customer_ref, sc.type, sc.full_name, sc.date_of_birth,
			     sc.nationality, sc.email, sc.phone_mobile,
			     a.postcode, a.city,
			     c.preferred_channel, c.relationship_manager, c.assigned_branch,
			     sc.kyc_status, sc.risk_rating,
			     cs.score_band, cs.score_value,
			     COALESCE(ra.pep_status, FALSE),
			     sc.customer_segment,
			     COALESCE(sc.onboarded_date, '2015-01-01'), NULL, TRUE,
			     ARRAY['core_banking', 'crm', 'risk']
			 FROM warehouse_staging.stg_customers sc
			 LEFT JOIN (
			     SELECT customer_id, postcode, city
			     FROM core_banking.addresses
			     WHERE is_primary = TRUE
			 ) a ON sc.customer_id = a.customer_id
			 LEFT JOIN warehouse_staging.stg_contacts c ON sc.customer_id = c.customer_id
			 LEFT JOIN warehouse_staging.stg_credit_scores cs
			     ON sc.customer_id = cs.customer_id AND cs.is_current = TRUE
			 LEFT JOIN warehouse_staging.stg_risk_assessments ra
			     ON sc.customer_id = ra.customer_id`},

		{"warehouse_core.dim_account",
			`INSERT INTO warehouse_core.dim_account
			   (account_id, customer_id, account_number, sort_code,
			    product_code, product_name, product_category,
			    account_status, currency, credit_limit, overdraft_limit,
			    opened_date, closed_date,
			    effective_from, effective_to, is_current)
			 SELECT
			     sa.account_id, sa.customer_id, sa.account_number, sa.sort_code,
			     p.product_code, p.name, p.category,
			     sa.status, sa.currency, sa.credit_limit, sa.overdraft_limit,
			     sa.opened_date, sa.closed_date,
			     COALESCE(sa.opened_date, '2015-01-01'), NULL, TRUE
			 FROM warehouse_staging.stg_accounts sa
			 JOIN core_banking.products p ON sa.product_id = p.product_id`},

		{"warehouse_core.dim_geography",
			`INSERT INTO warehouse_core.dim_geography
			   (postcode_area, city, region, country)
			 SELECT DISTINCT
			     SPLIT_PART(postcode, ' ', 1) as postcode_area,
			     city,
			     CASE
			         WHEN city IN ('London') THEN 'London'
			         WHEN city IN ('Manchester', 'Liverpool') THEN 'North West'
			         WHEN city IN ('Birmingham', 'Coventry') THEN 'West Midlands'
			         WHEN city IN ('Edinburgh', 'Glasgow') THEN 'Scotland'
			         WHEN city IN ('Cardiff', 'Swansea') THEN 'Wales'
			         WHEN city IN ('Bristol', 'Bath') THEN 'South West'
			         WHEN city IN ('Leeds', 'Sheffield') THEN 'Yorkshire and the Humber'
			         ELSE 'Other'
			     END as region,
			     'England' as country
			 FROM core_banking.addresses
			 WHERE postcode IS NOT NULL
			 LIMIT 500`},
	}

	for _, d := range dims {
		if err := rn.DB.Exec(ctx, d.sql); err != nil {
			return fmt.Errorf("building %s: %w", d.table, err)
		}
		n, err := rn.DB.TableCount(ctx, d.table)
		if err != nil {
			return err
		}
		rn.Log.Info("dimension built", zap.String("table", d.table), zap.Int64("rows", n))
	}
	return nil
}

func (rn *Runner) buildFacts(ctx context.Context) error {
	facts := []stagingCopy{
		{"warehouse_core.fact_transactions",
			`INSERT INTO warehouse_core.fact_transactions
			   (txn_id, date_key, customer_key, account_key, product_key,
			    txn_date, txn_timestamp, amount, amount_abs, is_credit,
			    currency, txn_type, channel, status, counterparty_name, balance_after)
			 SELECT
			     st.txn_id,
			     TO_CHAR(st.txn_date, 'YYYYMMDD')::INTEGER as date_key,
			     dc.customer_key,
			     da.account_key,
			     dp.product_key,
			     st.txn_date, st.txn_timestamp, st.amount, ABS(st.amount),
			     st.amount > 0,
			     st.currency, st.txn_type, st.channel, st.status,
			     st.counterparty_name, st.balance_after
			 FROM warehouse_staging.stg_transactions st
			 JOIN warehouse_core.dim_account da
			     ON st.account_id = da.account_id AND da.is_current = TRUE
			 JOIN warehouse_core.dim_customer dc
			     ON da.customer_id = dc.customer_id AND dc.is_current = TRUE
			 LEFT JOIN warehouse_core.dim_product dp
			     ON da.product_code = dp.product_code`},

		{"warehouse_core.fact_gl_entries",
			`INSERT INTO warehouse_core.fact_gl_entries
			   (entry_id, date_key, account_code, cost_centre_code,
			    journal_id, batch_id, debit_amount, credit_amount, net_amount,
			    currency, source_system, description)
			 SELECT
			     entry_id,
			     TO_CHAR(entry_date, 'YYYYMMDD')::INTEGER,
			     account_code, cost_centre_code,
			     journal_id, batch_id, debit_amount, credit_amount,
			     debit_amount - credit_amount,
			     currency, source_system, description
			 FROM warehouse_staging.stg_gl_entries`},

		{"warehouse_core.bridge_customer_account",
			`INSERT INTO warehouse_core.bridge_customer_account
			   (customer_key, account_key, relationship_type, effective_from, is_current)
			 SELECT DISTINCT
			     dc.customer_key, da.account_key, 'primary',
			     da.opened_date, TRUE
			 FROM warehouse_core.dim_account da
			 JOIN warehouse_core.dim_customer dc
			     ON da.customer_id = dc.customer_id AND dc.is_current = TRUE
			 WHERE da.is_current = TRUE`},
	}

	for _, f := range facts {
		if err := rn.DB.Exec(ctx, f.sql); err != nil {
			return fmt.Errorf("building %s: %w", f.table, err)
		}
		n, err := rn.DB.TableCount(ctx, f.table)
		if err != nil {
			return err
		}
		rn.Log.Info("fact built", zap.String("table", f.table), zap.Int64("rows", n))
	}
	return nil
}

func (rn *Runner) buildReporting(ctx context.Context) error {
	aggregates := []stagingCopy{
		{"warehouse_reporting.rpt_customer_360", fmt.Sprintf(
			`INSERT INTO warehouse_reporting.rpt_customer_360
			   (customer_key, customer_id, customer_ref, full_name, customer_type,
			    age, postcode, city, region,
			    onboarded_date, tenure_months, num_active_accounts, num_products,
			    total_balance, txn_count_3m, txn_total_credit_3m, txn_total_debit_3m,
			    last_txn_date,
			    risk_rating, kyc_status, credit_score_band, aml_alert_count,
			    segment, preferred_channel, complaint_count,
			    _report_date)
			 SELECT
			     dc.customer_key, dc.customer_id, dc.customer_ref, dc.full_name, dc.customer_type,
			     EXTRACT(YEAR FROM AGE('%[1]s'::date, dc.date_of_birth))::INTEGER,
			     dc.postcode, dc.city, 'Unknown',
			     dc.effective_from,
			     (EXTRACT(YEAR FROM AGE('%[1]s'::date, dc.effective_from)) * 12
			      + EXTRACT(MONTH FROM AGE('%[1]s'::date, dc.effective_from)))::INTEGER,
			     COALESCE(accts.active_count, 0),
			     COALESCE(accts.product_count, 0),
			     0,
			     COALESCE(txns.txn_count, 0),
			     COALESCE(txns.credit_total, 0),
			     COALESCE(txns.debit_total, 0),
			     txns.last_txn,
			     dc.risk_rating, dc.kyc_status, dc.credit_score_band,
			     COALESCE(aml.alert_count, 0),
			     dc.customer_segment, dc.preferred_channel,
			     COALESCE(comp.complaint_count, 0),
			     '%[1]s'
			 FROM warehouse_core.dim_customer dc
			 LEFT JOIN (
			     SELECT customer_id,
			            COUNT(*) FILTER (WHERE account_status = 'active') as active_count,
			            COUNT(DISTINCT product_category) as product_count
			     FROM warehouse_core.dim_account WHERE is_current = TRUE
			     GROUP BY customer_id
			 ) accts ON dc.customer_id = accts.customer_id
			 LEFT JOIN (
			     SELECT dc2.customer_key,
			            COUNT(*) as txn_count,
			            SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END) as credit_total,
			            SUM(CASE WHEN amount < 0 THEN ABS(amount) ELSE 0 END) as debit_total,
			            MAX(txn_date) as last_txn
			     FROM warehouse_core.fact_transactions ft
			     JOIN warehouse_core.dim_customer dc2 ON ft.customer_key = dc2.customer_key
			     WHERE ft.txn_date >= '%[1]s'::date - INTERVAL '3 months'
			     GROUP BY dc2.customer_key
			 ) txns ON dc.customer_key = txns.customer_key
			 LEFT JOIN (
			     SELECT customer_id, COUNT(*) as alert_count
			     FROM risk.aml_alerts GROUP BY customer_id
			 ) aml ON dc.customer_id = aml.customer_id
			 LEFT JOIN (
			     SELECT customer_id, COUNT(*) as complaint_count
			     FROM crm.complaints GROUP BY customer_id
			 ) comp ON dc.customer_id = comp.customer_id
			 WHERE dc.is_current = TRUE`, reportDate)},

		{"warehouse_reporting.rpt_daily_pnl",
			`INSERT INTO warehouse_reporting.rpt_daily_pnl
			   (report_date, category, subcategory, gl_account_code, cost_centre_code, amount, currency)
			 SELECT
			     entry_date as report_date,
			     coa.account_type as category,
			     coa.account_subtype as subcategory,
			     ge.account_code as gl_account_code,
			     ge.cost_centre_code,
			     SUM(ge.debit_amount - ge.credit_amount) as amount,
			     'GBP'
			 FROM gl.gl_entries ge
			 JOIN gl.chart_of_accounts coa ON ge.account_code = coa.account_code
			 WHERE coa.account_type IN ('revenue', 'expense')
			 GROUP BY entry_date, coa.account_type, coa.account_subtype, ge.account_code, ge.cost_centre_code`},

		{"warehouse_reporting.rpt_aml_summary",
			`INSERT INTO warehouse_reporting.rpt_aml_summary
			   (report_month, total_alerts, alerts_open, alerts_closed,
			    alerts_escalated, sars_filed, false_positive_rate,
			    avg_resolution_days, cases_opened, cases_closed,
			    high_risk_customers, total_suspicious_amount)
			 SELECT
			     DATE_TRUNC('month', alert_date)::date as report_month,
			     COUNT(*) as total_alerts,
			     COUNT(*) FILTER (WHERE status = 'open') as alerts_open,
			     COUNT(*) FILTER (WHERE status = 'closed') as alerts_closed,
			     COUNT(*) FILTER (WHERE status = 'escalated') as alerts_escalated,
			     COUNT(*) FILTER (WHERE status = 'sar_filed') as sars_filed,
			     ROUND(COUNT(*) FILTER (WHERE status = 'false_positive')::numeric / NULLIF(COUNT(*), 0) * 100, 2),
			     AVG(EXTRACT(DAY FROM (resolution_date - alert_date)))::numeric(5,1),
			     0, 0,
			     COUNT(DISTINCT customer_id) FILTER (WHERE risk_score > 70),
			     SUM(trigger_amount)
			 FROM risk.aml_alerts
			 GROUP BY DATE_TRUNC('month', alert_date)`},

		{"warehouse_reporting.rpt_product_performance",
			`INSERT INTO warehouse_reporting.rpt_product_performance
			   (report_month, product_code, product_name, product_category,
			    active_accounts, new_accounts, closed_accounts, total_balance)
			 SELECT
			     DATE_TRUNC('month', CURRENT_DATE)::date,
			     da.product_code, da.product_name, da.product_category,
			     COUNT(*) FILTER (WHERE da.account_status = 'active'),
			     COUNT(*) FILTER (WHERE da.opened_date >= DATE_TRUNC('month', CURRENT_DATE)),
			     COUNT(*) FILTER (WHERE da.account_status = 'closed'),
			     0
			 FROM warehouse_core.dim_account da
			 WHERE da.is_current = TRUE
			 GROUP BY da.product_code, da.product_name, da.product_category`},
	}

	for _, a := range aggregates {
		if err := rn.DB.Exec(ctx, a.sql); err != nil {
			return fmt.Errorf("building %s: %w", a.table, err)
		}
		n, err := rn.DB.TableCount(ctx, a.table)
		if err != nil {
			return err
		}
		rn.Log.Info("report built", zap.String("table", a.table), zap.Int64("rows", n))
	}

	// The remaining prudential reports draw from one stream in a fixed order.
	r := sample.Stream(rn.Cfg.Generation.Seed, 80)

	if err := rn.liquidityCoverage(ctx, r); err != nil {
		return err
	}
	if err := rn.regulatoryCapital(ctx, r); err != nil {
		return err
	}
	return rn.arrearsAgeing(ctx, r)
}

func (rn *Runner) liquidityCoverage(ctx context.Context, r *rand.Rand) error {
	for month := time.July; month <= time.December; month++ {
		rd := time.Date(2024, month, 28, 0, 0, 0, 0, time.UTC).Format("2006-01-02")

		rows, err := rn.DB.SelectRows(ctx,
			`SELECT asset_class, SUM(adjusted_value)::float8
			 FROM treasury.liquidity_pool
			 WHERE report_date = $1
			 GROUP BY asset_class`, rd)
		if err != nil {
			return fmt.Errorf("reading liquidity pool for %s: %w", rd, err)
		}

		hqla := make(map[string]float64, len(rows))
		totalHQLA := 0.0
		for _, row := range rows {
			v := asFloat64(row[1])
			hqla[row[0].(string)] = v
			totalHQLA += v
		}

		outflows := totalHQLA * sample.FloatBetween(r, 0.6, 0.85)
		inflows := outflows * sample.FloatBetween(r, 0.3, 0.5)
		netOut := outflows - inflows
		lcr := 999.0
		if netOut > 0 {
			lcr = totalHQLA / netOut * 100
		}

		err = rn.DB.Exec(ctx,
			`INSERT INTO warehouse_reporting.rpt_liquidity_coverage
			   (report_date, hqla_level1, hqla_level2a, hqla_level2b, total_hqla,
			    total_outflows, total_inflows, net_outflows, lcr_ratio, is_compliant)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			rd,
			hqla["level_1_hqla"]+hqla["cash_central_bank"],
			hqla["level_2a_hqla"],
			hqla["level_2b_hqla"],
			totalHQLA, outflows, inflows, netOut,
			round4(lcr), lcr >= 100)
		if err != nil {
			return fmt.Errorf("writing liquidity coverage for %s: %w", rd, err)
		}
	}
	rn.Log.Info("report built", zap.String("table", "warehouse_reporting.rpt_liquidity_coverage"), zap.Int64("rows", 6))
	return nil
}

func (rn *Runner) regulatoryCapital(ctx context.Context, r *rand.Rand) error {
	for month := time.July; month <= time.December; month++ {
		rd := time.Date(2024, month, 28, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		cet1 := sample.FloatBetween(r, 180_000_000, 220_000_000)
		rwa := sample.FloatBetween(r, 1_200_000_000, 1_500_000_000)

		err := rn.DB.Exec(ctx,
			`INSERT INTO warehouse_reporting.rpt_regulatory_capital
			   (report_date, cet1_capital, at1_capital, tier2_capital, total_capital,
			    rwa_credit, rwa_market, rwa_operational, total_rwa,
			    cet1_ratio, total_capital_ratio, leverage_ratio, is_compliant)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, TRUE)`,
			rd,
			cet1, cet1*0.05, cet1*0.1, cet1*1.15,
			rwa*0.85, rwa*0.05, rwa*0.10, rwa,
			round4(cet1/rwa*100), round4(cet1*1.15/rwa*100),
			round4(sample.FloatBetween(r, 4, 6)))
		if err != nil {
			return fmt.Errorf("writing regulatory capital for %s: %w", rd, err)
		}
	}
	rn.Log.Info("report built", zap.String("table", "warehouse_reporting.rpt_regulatory_capital"), zap.Int64("rows", 6))
	return nil
}

func (rn *Runner) arrearsAgeing(ctx context.Context, r *rand.Rand) error {
	buckets := []string{"1-30_days", "31-60_days", "61-90_days", "91-180_days", "181-365_days", "over_365_days"}
	categories := []string{"personal_loan", "mortgage", "business_loan", "credit_card"}

	rows := 0
	for _, cat := range categories {
		for i, bucket := range buckets {
			count := int(sample.NormalClamped(r, float64(50-i*8), 10, 0, 1_000_000))
			amount := sample.Round2(sample.LogNormal(r, 10, 1) * float64(count))

			err := rn.DB.Exec(ctx,
				`INSERT INTO warehouse_reporting.rpt_arrears_ageing
				   (report_date, product_category, ageing_bucket, account_count,
				    total_arrears_amount, total_outstanding, provision_amount)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				reportDate, cat, bucket, count,
				amount, sample.Round2(amount*1.5), sample.Round2(amount*0.3))
			if err != nil {
				return fmt.Errorf("writing arrears ageing: %w", err)
			}
			rows++
		}
	}
	rn.Log.Info("report built", zap.String("table", "warehouse_reporting.rpt_arrears_ageing"), zap.Int64("rows", int64(rows)))
	return nil
}

func asFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		var f float64
		fmt.Sscan(fmt.Sprint(n), &f)
		return f
	}
}
