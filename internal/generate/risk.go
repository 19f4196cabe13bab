package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/sample"
)

// risk generates the compliance surface: credit scores and applications, AML
// alerts and cases, sanctions screening, CDD assessments, and the regulatory
// report register.
func (rn *Runner) risk(ctx context.Context) error {
	active, err := rn.Reg.IDs("customer_active")
	if err != nil {
		return err
	}

	if err := rn.creditScores(ctx, active); err != nil {
		return err
	}
	if err := rn.creditApplications(ctx, active); err != nil {
		return err
	}
	flagged, err := rn.amlAlerts(ctx, active)
	if err != nil {
		return err
	}
	if err := rn.amlCases(ctx, flagged); err != nil {
		return err
	}
	if err := rn.sanctionsScreening(ctx, active); err != nil {
		return err
	}
	if err := rn.riskAssessments(ctx, active); err != nil {
		return err
	}
	return rn.regulatoryReports(ctx)
}

func scoreBand(score int) string {
	switch {
	case score <= 299:
		return "very_poor"
	case score <= 499:
		return "poor"
	case score <= 649:
		return "fair"
	case score <= 799:
		return "good"
	default:
		return "excellent"
	}
}

func scoreFactors(score int) []string {
	switch {
	case score < 500:
		return []string{"missed_payments", "high_utilisation", "short_credit_history"}
	case score < 700:
		return []string{"moderate_utilisation", "limited_credit_mix"}
	default:
		return []string{"low_utilisation", "long_credit_history", "diverse_credit_mix"}
	}
}

func (rn *Runner) creditScores(ctx context.Context, customers []int64) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 30)
	cols := []string{"customer_id", "score_date", "score_value", "score_band",
		"model_name", "model_version", "factors", "is_current"}

	records := make([]map[string]any, 0, len(customers))
	for _, cid := range customers {
		score := int(sample.NormalClamped(r, 650, 150, 0, 999))
		factors, _ := json.Marshal(scoreFactors(score))
		records = append(records, map[string]any{
			"customer_id":   cid,
			"score_date":    "2024-12-01",
			"score_value":   score,
			"score_band":    scoreBand(score),
			"model_name":    "MCB_SCORE_V3",
			"model_version": "3.2.1",
			"factors":       string(factors),
			"is_current":    true,
		})
	}
	if err := rn.DB.BulkInsert(ctx, "risk.credit_scores", cols, records); err != nil {
		return err
	}
	rn.Log.Info("credit scores generated", zap.Int("count", len(records)))
	return nil
}

func (rn *Runner) creditApplications(ctx context.Context, customers []int64) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 31)

	loanProducts, err := rn.Reg.Groups("product")
	if err != nil {
		return err
	}
	var loanIDs []int64
	for _, cat := range []string{"personal_loan", "mortgage", "business_loan"} {
		loanIDs = append(loanIDs, loanProducts[cat]...)
	}

	applicants := sample.WithoutReplacement(r, customers, int(float64(len(customers))*0.30))

	decisions := []string{"approved", "approved", "approved", "declined", "declined", "referred", "withdrawn"}
	purposes := []string{"home_improvement", "car_purchase", "debt_consolidation", "business_expansion",
		"property_purchase", "education", "medical", "other"}
	employment := []string{"employed", "self_employed", "retired", "student", "unemployed"}
	employmentWs := []float64{0.65, 0.15, 0.10, 0.05, 0.05}
	terms := []int{12, 24, 36, 48, 60, 120, 180, 240, 300}

	year2024 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"customer_id", "product_id", "application_date", "requested_amount",
		"approved_amount", "term_months", "interest_rate", "purpose", "employment_status",
		"annual_income", "credit_score_at_application", "decision", "decision_date",
		"decision_reason", "affordability_ratio", "underwriter"}

	records := make([]map[string]any, 0, len(applicants))
	for _, cid := range applicants {
		appDate := year2024.AddDate(0, 0, r.Intn(365))
		amount := sample.Round2(sample.LogNormal(r, 9.0, 1.2))
		if amount > 2000000 {
			amount = 2000000
		}
		decision := sample.Uniform(r, decisions)
		var approved any
		reason := "Policy criteria not met"
		if decision == "approved" {
			approved = sample.Round2(amount * sample.FloatBetween(r, 0.7, 1.0))
			reason = "Automated approval"
		}
		records = append(records, map[string]any{
			"customer_id":                 cid,
			"product_id":                  sample.Uniform(r, loanIDs),
			"application_date":            appDate.Format("2006-01-02"),
			"requested_amount":            amount,
			"approved_amount":             approved,
			"term_months":                 sample.Uniform(r, terms),
			"interest_rate":               round4(sample.FloatBetween(r, 0.03, 0.15)),
			"purpose":                     sample.Uniform(r, purposes),
			"employment_status":           sample.Weighted(r, employment, employmentWs),
			"annual_income":               sample.Round2(sample.LogNormal(r, 10.3, 0.6)),
			"credit_score_at_application": int(sample.NormalClamped(r, 650, 150, 0, 999)),
			"decision":                    decision,
			"decision_date":               appDate.AddDate(0, 0, sample.IntBetween(r, 1, 14)).Format("2006-01-02"),
			"decision_reason":             reason,
			"affordability_ratio":         sample.Round2(sample.FloatBetween(r, 0.15, 0.55)),
			"underwriter":                 fmt.Sprintf("UW-%03d", sample.IntBetween(r, 1, 20)),
		})
	}
	if err := rn.DB.BulkInsert(ctx, "risk.credit_applications", cols, records); err != nil {
		return err
	}
	rn.Log.Info("credit applications generated", zap.Int("count", len(records)))
	return nil
}

func (rn *Runner) amlAlerts(ctx context.Context, customers []int64) ([]int64, error) {
	r := sample.Stream(rn.Cfg.Generation.Seed, 32)

	gen := rn.Cfg.Generation
	nFlagged := int(float64(gen.CustomerCount) * gen.AMLFlagRatio)
	flagged := sample.WithoutReplacement(r, customers, nFlagged)
	nAlerts := nFlagged * 5

	alertTypes := []string{"unusual_activity", "large_cash", "structuring", "rapid_movement",
		"high_risk_jurisdiction", "sanctions_hit", "pep_activity", "dormant_reactivation"}
	alertWs := []float64{0.30, 0.20, 0.15, 0.10, 0.08, 0.05, 0.07, 0.05}
	statuses := []string{"open", "investigating", "escalated", "sar_filed", "false_positive", "closed"}
	statusWs := []float64{0.10, 0.15, 0.05, 0.05, 0.35, 0.30}

	jul24 := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"customer_id", "alert_date", "alert_type", "rule_id", "rule_name",
		"trigger_amount", "trigger_details", "risk_score", "status",
		"assigned_to", "resolution_date", "resolution_notes"}

	records := make([]map[string]any, 0, nAlerts)
	for i := 0; i < nAlerts; i++ {
		cid := sample.Uniform(r, flagged)
		alertDate := jul24.AddDate(0, 0, r.Intn(183))
		status := sample.Weighted(r, statuses, statusWs)

		var resolutionDate, resolutionNotes any
		if status == "false_positive" || status == "closed" || status == "sar_filed" {
			resolutionDate = alertDate.AddDate(0, 0, sample.IntBetween(r, 1, 60)).Format("2006-01-02") + " 17:00:00"
			if status != "sar_filed" {
				resolutionNotes = "Reviewed and resolved"
			}
		}
		ruleNum := sample.IntBetween(r, 1, 50)
		records = append(records, map[string]any{
			"customer_id":      cid,
			"alert_date":       fmt.Sprintf("%s %02d:%02d:00", alertDate.Format("2006-01-02"), sample.IntBetween(r, 8, 18), r.Intn(59)),
			"alert_type":       sample.Weighted(r, alertTypes, alertWs),
			"rule_id":          fmt.Sprintf("AML-R%03d", ruleNum),
			"rule_name":        fmt.Sprintf("Rule %d", ruleNum),
			"trigger_amount":   sample.Round2(sample.LogNormal(r, 8, 1.5)),
			"trigger_details":  "Automated alert from transaction monitoring system",
			"risk_score":       sample.Round2(sample.FloatBetween(r, 10, 95)),
			"status":           status,
			"assigned_to":      fmt.Sprintf("MLRO-%03d", sample.IntBetween(r, 1, 8)),
			"resolution_date":  resolutionDate,
			"resolution_notes": resolutionNotes,
		})
	}
	if err := rn.DB.BulkInsert(ctx, "risk.aml_alerts", cols, records); err != nil {
		return nil, err
	}
	rn.Log.Info("aml alerts generated",
		zap.Int("alerts", len(records)), zap.Int("flagged_customers", nFlagged))
	return flagged, nil
}

func (rn *Runner) amlCases(ctx context.Context, flagged []int64) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 33)

	nCases := len(flagged) / 2
	if nCases < 50 {
		nCases = 50
	}
	caseCustomers := sample.WithoutReplacement(r, flagged, nCases)

	caseStatuses := []string{"open", "investigating", "pending_sar", "sar_filed", "closed_no_action", "closed_action_taken"}
	caseStatusWs := []float64{0.15, 0.20, 0.05, 0.10, 0.35, 0.15}
	jul24 := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"case_ref", "customer_id", "opened_date", "case_type", "priority",
		"description", "total_suspicious_amount", "status", "sar_reference",
		"assigned_to", "closed_date", "outcome_notes"}

	records := make([]map[string]any, 0, len(caseCustomers))
	for i, cid := range caseCustomers {
		opened := jul24.AddDate(0, 0, r.Intn(183))
		status := sample.Weighted(r, caseStatuses, caseStatusWs)
		isClosed := status == "closed_no_action" || status == "closed_action_taken"

		var sarRef, closedDate, outcome any
		if status == "sar_filed" || status == "pending_sar" {
			sarRef = fmt.Sprintf("SAR-2024-%d", sample.IntBetween(r, 1000, 9999))
		}
		if isClosed {
			closedDate = opened.AddDate(0, 0, sample.IntBetween(r, 14, 90)).Format("2006-01-02")
			outcome = "Case resolved"
		}
		records = append(records, map[string]any{
			"case_ref":                fmt.Sprintf("AML-2024-%04d", i+1),
			"customer_id":             cid,
			"opened_date":             opened.Format("2006-01-02"),
			"case_type":               sample.Weighted(r, []string{"investigation", "enhanced_monitoring", "sar", "referral"}, []float64{0.50, 0.25, 0.15, 0.10}),
			"priority":                sample.Weighted(r, []string{"low", "medium", "high", "critical"}, []float64{0.20, 0.40, 0.30, 0.10}),
			"description":             "Suspicious transaction pattern identified by monitoring system",
			"total_suspicious_amount": sample.Round2(sample.LogNormal(r, 9, 1.5)),
			"status":                  status,
			"sar_reference":           sarRef,
			"assigned_to":             fmt.Sprintf("MLRO-%03d", sample.IntBetween(r, 1, 5)),
			"closed_date":             closedDate,
			"outcome_notes":           outcome,
		})
	}
	if err := rn.DB.BulkInsert(ctx, "risk.aml_cases", cols, records); err != nil {
		return err
	}
	rn.Log.Info("aml cases generated", zap.Int("count", len(records)))
	return nil
}

func (rn *Runner) sanctionsScreening(ctx context.Context, customers []int64) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 34)

	lists := []string{"OFSI", "EU Sanctions", "UN Sanctions", "OFAC SDN"}
	year2024 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"customer_id", "screening_date", "screening_type", "list_checked",
		"match_found", "match_score", "match_details", "status", "reviewed_by", "review_date"}

	records := make([]map[string]any, 0, len(customers))
	for _, cid := range customers {
		screenDate := year2024.AddDate(0, 0, r.Intn(365))
		matchFound := sample.Bernoulli(r, 0.003)

		status := "clear"
		var matchScore, matchDetails, reviewedBy, reviewDate any
		if matchFound {
			status = sample.Weighted(r, []string{"potential_match", "false_positive"}, []float64{0.3, 0.7})
			matchScore = sample.Round2(sample.FloatBetween(r, 70, 99))
			matchDetails = "Potential name match - requires manual review"
			reviewedBy = fmt.Sprintf("COMP-%03d", sample.IntBetween(r, 1, 10))
			reviewDate = screenDate.AddDate(0, 0, sample.IntBetween(r, 1, 5)).Format("2006-01-02") + " 14:00:00"
		}
		records = append(records, map[string]any{
			"customer_id":    cid,
			"screening_date": screenDate.Format("2006-01-02") + " 02:00:00",
			"screening_type": sample.Weighted(r, []string{"periodic", "batch", "onboarding"}, []float64{0.60, 0.30, 0.10}),
			"list_checked":   sample.Uniform(r, lists),
			"match_found":    matchFound,
			"match_score":    matchScore,
			"match_details":  matchDetails,
			"status":         status,
			"reviewed_by":    reviewedBy,
			"review_date":    reviewDate,
		})
	}
	if err := rn.DB.BulkInsert(ctx, "risk.sanctions_screening", cols, records); err != nil {
		return err
	}
	rn.Log.Info("sanctions screening generated", zap.Int("count", len(records)))
	return nil
}

func (rn *Runner) riskAssessments(ctx context.Context, customers []int64) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 35)

	levels := []string{"low", "medium", "high", "very_high"}
	levelWs := []float64{0.35, 0.40, 0.20, 0.05}
	year2024 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"customer_id", "assessment_date", "assessment_type", "overall_risk",
		"country_risk", "product_risk", "channel_risk", "occupation_risk",
		"source_of_funds", "source_of_wealth", "pep_status", "adverse_media",
		"next_review_date", "assessed_by", "notes"}

	records := make([]map[string]any, 0, len(customers))
	for _, cid := range customers {
		assessDate := year2024.AddDate(0, 0, r.Intn(365))
		overall := sample.Weighted(r, levels, levelWs)
		isEDD := overall == "high" || overall == "very_high"

		assessType := "standard_cdd"
		reviewAfter := 365
		if isEDD {
			assessType = "enhanced_edd"
			reviewAfter = 180
		}
		records = append(records, map[string]any{
			"customer_id":      cid,
			"assessment_date":  assessDate.Format("2006-01-02"),
			"assessment_type":  assessType,
			"overall_risk":     overall,
			"country_risk":     sample.Weighted(r, levels[:3], []float64{0.60, 0.30, 0.10}),
			"product_risk":     sample.Weighted(r, levels[:3], []float64{0.50, 0.35, 0.15}),
			"channel_risk":     sample.Weighted(r, []string{"low", "medium"}, []float64{0.70, 0.30}),
			"occupation_risk":  sample.Weighted(r, levels[:3], []float64{0.55, 0.30, 0.15}),
			"source_of_funds":  sample.Uniform(r, []string{"employment", "business", "investments", "inheritance", "pension"}),
			"source_of_wealth": sample.Uniform(r, []string{"salary", "business_profits", "property", "investments", "inheritance"}),
			"pep_status":       sample.Bernoulli(r, 0.02),
			"adverse_media":    sample.Bernoulli(r, 0.01),
			"next_review_date": assessDate.AddDate(0, 0, reviewAfter).Format("2006-01-02"),
			"assessed_by":      fmt.Sprintf("COMP-%03d", sample.IntBetween(r, 1, 10)),
			"notes":            nil,
		})
	}
	if err := rn.DB.BulkInsert(ctx, "risk.risk_assessments", cols, records); err != nil {
		return err
	}
	rn.Log.Info("risk assessments generated", zap.Int("count", len(records)))
	return nil
}

type reportDef struct {
	code      string
	name      string
	regulator string
	frequency string
}

var regulatoryReportDefs = []reportDef{
	{"COREP", "Common Reporting - Own Funds", "PRA", "quarterly"},
	{"FINREP", "Financial Reporting", "PRA", "quarterly"},
	{"LCR", "Liquidity Coverage Ratio", "PRA", "monthly"},
	{"NSFR", "Net Stable Funding Ratio", "PRA", "quarterly"},
	{"ALMM", "Additional Liquidity Monitoring", "PRA", "monthly"},
	{"MLAR", "Mortgage Lending & Admin Return", "FCA", "quarterly"},
	{"CCR", "Client Money & Assets Report", "FCA", "monthly"},
	{"STR", "Suspicious Transaction Report", "FCA", "ad_hoc"},
	{"GABRIEL", "FCA Regulatory Returns", "FCA", "quarterly"},
	{"BOESTAT", "Bank of England Statistical Returns", "BoE", "monthly"},
}

func (rn *Runner) regulatoryReports(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 36)

	cols := []string{"report_code", "report_name", "regulator", "frequency",
		"reporting_period", "submission_deadline", "actual_submission", "status",
		"prepared_by", "approved_by", "notes"}

	var records []map[string]any
	for _, def := range regulatoryReportDefs {
		var periods []time.Time
		switch def.frequency {
		case "monthly":
			for m := time.January; m <= time.December; m++ {
				periods = append(periods, time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC))
			}
		case "quarterly":
			for _, m := range []time.Month{time.March, time.June, time.September, time.December} {
				periods = append(periods, time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC))
			}
		case "ad_hoc":
			n := sample.IntBetween(r, 2, 8)
			for i := 0; i < n; i++ {
				periods = append(periods, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, r.Intn(365)))
			}
		default:
			periods = append(periods, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
		}

		for _, period := range periods {
			deadline := period.AddDate(0, 0, sample.IntBetween(r, 20, 45))
			submitted := !sample.Bernoulli(r, 0.05)
			status := "submitted"
			var actual, approvedBy any
			if submitted {
				actual = deadline.AddDate(0, 0, -sample.IntBetween(r, 1, 10)).Format("2006-01-02") + " 16:00:00"
				approvedBy = "David Okonkwo"
			} else {
				status = sample.Uniform(r, []string{"draft", "in_review"})
			}
			records = append(records, map[string]any{
				"report_code":         def.code,
				"report_name":         def.name,
				"regulator":           def.regulator,
				"frequency":           def.frequency,
				"reporting_period":    period.Format("2006-01-02"),
				"submission_deadline": deadline.Format("2006-01-02"),
				"actual_submission":   actual,
				"status":              status,
				"prepared_by":         fmt.Sprintf("FIN-%03d", sample.IntBetween(r, 1, 5)),
				"approved_by":         approvedBy,
				"notes":               nil,
			})
		}
	}
	if err := rn.DB.BulkInsert(ctx, "risk.regulatory_reports", cols, records); err != nil {
		return err
	}
	rn.Log.Info("regulatory reports generated", zap.Int("count", len(records)))
	return nil
}

func round4(v float64) float64 {
	return float64(int(v*10000+0.5)) / 10000
}
