package generate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/sample"
)

var (
	crmBranches = []string{
		"London City", "London West End", "Manchester", "Birmingham",
		"Edinburgh", "Bristol", "Leeds", "Cardiff", "Digital Hub",
	}

	contactChannels = []string{"email", "phone", "sms", "post", "app"}
	contactChannelW = []float64{0.35, 0.20, 0.15, 0.05, 0.25}

	interactionChannels = []string{
		"phone_inbound", "phone_outbound", "email_inbound", "email_outbound",
		"branch_visit", "webchat", "app_message", "letter",
	}
	interactionChannelW = []float64{0.20, 0.10, 0.15, 0.10, 0.08, 0.15, 0.17, 0.05}

	interactionCategories = []string{
		"enquiry", "service_request", "product_enquiry", "account_maintenance",
		"complaint", "feedback", "outbound_campaign",
	}
	interactionCategoryW = []float64{0.30, 0.20, 0.15, 0.15, 0.05, 0.05, 0.10}

	interactionSubjects = []string{
		"Query about account charges on recent statement",
		"Request to update correspondence address",
		"Question about mortgage overpayment options",
		"Interest rate enquiry for fixed rate saver",
		"Card not working at merchant terminal",
		"Request for duplicate statement copy",
		"Direct debit amendment request",
		"Enquiry about opening a business savings account",
		"Mobile app login issue reported",
		"Overdraft limit increase discussion",
		"Standing order cancellation request",
		"Travel notification for upcoming trip",
		"Complaint about branch waiting times",
		"Follow up on loan application status",
		"Product offer discussed during campaign call",
		"Request to order replacement debit card",
	}

	complaintCategories = []string{
		"charges_fees", "service_quality", "product_mis_sell", "fraud",
		"payment_issue", "lending_decision", "other",
	}
	complaintCategoryW = []float64{0.25, 0.20, 0.10, 0.10, 0.15, 0.10, 0.10}

	complaintDescriptions = []string{
		"Customer disputes unarranged overdraft fees applied to their current account. States the charges were not clearly explained at account opening.",
		"Customer unhappy with the time taken to process a payment. Funds were delayed beyond the expected settlement window.",
		"Customer believes the product sold was unsuitable for their circumstances. Requests a full review of the original sale.",
		"Customer reports an unrecognised transaction on their account. Card has been blocked pending investigation.",
		"Customer dissatisfied with service received in branch. States staff could not resolve a routine account query.",
		"Customer disputes the outcome of a recent lending decision. Requests the underwriting rationale be reviewed.",
		"Customer reports repeated failures when attempting to log in to online banking over several days.",
	}

	complaintResolutions = []string{
		"Fees refunded in full and goodwill payment applied.",
		"Payment traced and released, customer notified of outcome.",
		"Review completed, original sale found to be compliant.",
		"Transaction confirmed fraudulent, funds reimbursed under scheme rules.",
		"Apology issued and branch process feedback logged.",
		"Decision upheld after second review, rationale shared with customer.",
		"Access restored and root cause fixed in a subsequent release.",
	}

	consentTypes = []string{
		"email_marketing", "sms_marketing", "phone_marketing",
		"post_marketing", "third_party_sharing", "profiling", "analytics",
	}

	segmentDisplayNames = map[string]string{
		"mass_market":        "Mass Market",
		"mass_affluent":      "Mass Affluent",
		"high_net_worth":     "High Net Worth",
		"young_professional": "Young Professional",
		"student":            "Student",
		"retired":            "Retired",
		"small_business":     "Small Business",
		"growing_business":   "Growing Business",
	}
)

// crm generates the relationship layer: one contact record per customer,
// their interaction history, formal complaints, GDPR consents and the
// segmentation assignments.
func (rn *Runner) crm(ctx context.Context) error {
	if err := rn.contacts(ctx); err != nil {
		return err
	}
	if err := rn.interactions(ctx); err != nil {
		return err
	}
	if err := rn.complaints(ctx); err != nil {
		return err
	}
	if err := rn.marketingConsents(ctx); err != nil {
		return err
	}
	return rn.segments(ctx)
}

func (rn *Runner) contacts(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 60)

	rows, err := rn.DB.SelectRows(ctx,
		"SELECT customer_id, full_name, email, phone_mobile FROM core_banking.customers ORDER BY customer_id")
	if err != nil {
		return fmt.Errorf("reading customer contact details: %w", err)
	}

	cols := []string{"customer_id", "contact_name", "email_primary", "email_secondary",
		"phone_primary", "phone_secondary", "preferred_channel", "language_pref",
		"relationship_manager", "assigned_branch"}

	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		var emailSecondary any
		if sample.Bernoulli(r, 0.2) {
			emailSecondary = secondaryEmail(r)
		}
		var phoneSecondary any
		if sample.Bernoulli(r, 0.3) {
			phoneSecondary = ukMobile(r)
		}
		records = append(records, map[string]any{
			"customer_id":          row[0],
			"contact_name":         row[1],
			"email_primary":        row[2],
			"email_secondary":      emailSecondary,
			"phone_primary":        row[3],
			"phone_secondary":      phoneSecondary,
			"preferred_channel":    sample.Weighted(r, contactChannels, contactChannelW),
			"language_pref":        "en",
			"relationship_manager": fmt.Sprintf("RM-%03d", sample.IntBetween(r, 1, 30)),
			"assigned_branch":      sample.Uniform(r, crmBranches),
		})
	}
	if err := rn.DB.BulkInsert(ctx, "crm.contacts", cols, records); err != nil {
		return err
	}
	rn.Log.Info("crm contacts generated", zap.Int("count", len(records)))
	return nil
}

func (rn *Runner) interactions(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 61)

	contacts, err := rn.DB.SelectRows(ctx,
		"SELECT contact_id, customer_id FROM crm.contacts ORDER BY contact_id")
	if err != nil {
		return fmt.Errorf("reading contacts: %w", err)
	}

	cols := []string{"contact_id", "customer_id", "interaction_date", "channel", "category",
		"subject", "resolved", "handled_by", "duration_seconds", "sentiment_score"}
	yearStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var records []map[string]any
	total := 0
	for _, row := range contacts {
		n := sample.Poisson(r, 4)
		for i := 0; i < n; i++ {
			d := yearStart.AddDate(0, 0, sample.IntBetween(r, 0, 365))
			var duration any
			if sample.Bernoulli(r, 0.7) {
				duration = int(sample.LogNormal(r, 5, 0.8))
			}
			records = append(records, map[string]any{
				"contact_id":  row[0],
				"customer_id": row[1],
				"interaction_date": fmt.Sprintf("%s %02d:%02d:00",
					d.Format("2006-01-02"), sample.IntBetween(r, 8, 18), sample.IntBetween(r, 0, 59)),
				"channel":          sample.Weighted(r, interactionChannels, interactionChannelW),
				"category":         sample.Weighted(r, interactionCategories, interactionCategoryW),
				"subject":          sample.Uniform(r, interactionSubjects),
				"resolved":         sample.Bernoulli(r, 0.85),
				"handled_by":       fmt.Sprintf("AGENT-%03d", sample.IntBetween(r, 1, 50)),
				"duration_seconds": duration,
				"sentiment_score":  sample.Round2(sample.FloatBetween(r, -0.5, 1.0)),
			})
		}
		if len(records) >= txnFlushThreshold {
			if err := rn.DB.BulkInsert(ctx, "crm.interactions", cols, records); err != nil {
				return err
			}
			total += len(records)
			records = records[:0]
		}
	}
	if err := rn.DB.BulkInsert(ctx, "crm.interactions", cols, records); err != nil {
		return err
	}
	total += len(records)
	rn.Log.Info("crm interactions generated", zap.Int("count", total))
	return nil
}

func (rn *Runner) complaints(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 62)

	activeIDs, err := rn.Reg.IDs("customer_active")
	if err != nil {
		return err
	}
	n := int(float64(len(activeIDs)) * rn.Cfg.Generation.ComplaintRatio)
	complainants, err := rn.Reg.RandomIDs(r, "customer_active", n)
	if err != nil {
		return err
	}

	cols := []string{"customer_id", "complaint_date", "category", "severity", "description",
		"root_cause", "status", "resolution_date", "resolution_notes",
		"compensation_amount", "fos_referral", "assigned_to"}
	rootCauses := []string{"process_failure", "system_error", "staff_error", "policy_gap", ""}
	yearStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	records := make([]map[string]any, 0, len(complainants))
	for _, cid := range complainants {
		compDate := yearStart.AddDate(0, 0, sample.IntBetween(r, 0, 365))
		status := sample.Weighted(r,
			[]string{"open", "investigating", "resolved", "closed", "referred_to_fos"},
			[]float64{0.10, 0.15, 0.40, 0.30, 0.05})
		resolved := status == "resolved" || status == "closed" || status == "referred_to_fos"

		var resolutionDate, resolutionNotes any
		compensation := 0.0
		if resolved {
			resolutionDate = compDate.AddDate(0, 0, sample.IntBetween(r, 1, 60)).Format("2006-01-02")
			resolutionNotes = sample.Uniform(r, complaintResolutions)
			if sample.Bernoulli(r, 0.4) {
				compensation = sample.Round2(sample.LogNormal(r, 3, 1))
			}
		}

		records = append(records, map[string]any{
			"customer_id":    cid,
			"complaint_date": compDate.Format("2006-01-02"),
			"category":       sample.Weighted(r, complaintCategories, complaintCategoryW),
			"severity": sample.Weighted(r,
				[]string{"low", "medium", "high", "critical"},
				[]float64{0.30, 0.40, 0.25, 0.05}),
			"description":         sample.Uniform(r, complaintDescriptions),
			"root_cause":          nullIfEmpty(sample.Uniform(r, rootCauses)),
			"status":              status,
			"resolution_date":     resolutionDate,
			"resolution_notes":    resolutionNotes,
			"compensation_amount": compensation,
			"fos_referral":        status == "referred_to_fos",
			"assigned_to":         fmt.Sprintf("COMP-%03d", sample.IntBetween(r, 1, 15)),
		})
	}
	if err := rn.DB.BulkInsert(ctx, "crm.complaints", cols, records); err != nil {
		return err
	}
	rn.Log.Info("complaints generated", zap.Int("count", len(records)))
	return nil
}

func (rn *Runner) marketingConsents(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 63)

	customerIDs, err := rn.Reg.IDs("customer")
	if err != nil {
		return err
	}

	cols := []string{"customer_id", "consent_type", "is_consented", "consent_date",
		"withdrawal_date", "consent_source", "lawful_basis"}
	gdprStart := time.Date(2018, 5, 25, 0, 0, 0, 0, time.UTC)
	sources := []string{"onboarding", "online_update", "branch", "campaign_response"}

	var records []map[string]any
	total := 0
	for _, cid := range customerIDs {
		for _, ct := range consentTypes {
			consented := sample.Bernoulli(r, 0.65)
			consentDate := gdprStart.AddDate(0, 0, sample.IntBetween(r, 0, 2400))

			var withdrawal any
			if !consented && sample.Bernoulli(r, 0.5) {
				withdrawal = consentDate.AddDate(0, 0, sample.IntBetween(r, 30, 730)).Format("2006-01-02") + " 12:00:00"
			}
			basis := "consent"
			if !consented {
				basis = sample.Uniform(r, []string{"consent", "legitimate_interest"})
			}

			records = append(records, map[string]any{
				"customer_id":     cid,
				"consent_type":    ct,
				"is_consented":    consented,
				"consent_date":    consentDate.Format("2006-01-02") + " 12:00:00",
				"withdrawal_date": withdrawal,
				"consent_source":  sample.Uniform(r, sources),
				"lawful_basis":    basis,
			})
		}
		if len(records) >= txnFlushThreshold {
			if err := rn.DB.BulkInsert(ctx, "crm.marketing_consents", cols, records); err != nil {
				return err
			}
			total += len(records)
			records = records[:0]
		}
	}
	if err := rn.DB.BulkInsert(ctx, "crm.marketing_consents", cols, records); err != nil {
		return err
	}
	total += len(records)
	rn.Log.Info("marketing consents generated", zap.Int("count", total))
	return nil
}

func (rn *Runner) segments(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 64)

	rows, err := rn.DB.SelectRows(ctx,
		"SELECT customer_id, customer_segment FROM core_banking.customers WHERE is_active ORDER BY customer_id")
	if err != nil {
		return fmt.Errorf("reading customer segments: %w", err)
	}

	cols := []string{"customer_id", "segment_code", "segment_name", "assigned_date",
		"score", "is_current", "model_version"}

	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		seg, _ := row[1].(string)
		if seg == "" {
			continue
		}
		name, ok := segmentDisplayNames[seg]
		if !ok {
			name = seg
		}
		records = append(records, map[string]any{
			"customer_id":   row[0],
			"segment_code":  seg,
			"segment_name":  name,
			"assigned_date": "2024-01-15",
			"score":         sample.Round2(sample.FloatBetween(r, 0, 100)),
			"is_current":    true,
			"model_version": "SEG_V2.1",
		})
	}
	if err := rn.DB.BulkInsert(ctx, "crm.segments", cols, records); err != nil {
		return err
	}
	rn.Log.Info("segments generated", zap.Int("count", len(records)))
	return nil
}

func secondaryEmail(r *rand.Rand) string {
	first := sample.Uniform(r, maleFirstNames)
	if sample.Bernoulli(r, 0.5) {
		first = sample.Uniform(r, femaleFirstNames)
	}
	last := sample.Uniform(r, lastNames)
	return fmt.Sprintf("%s.%s%d@%s", emailLocal(first), emailLocal(last),
		sample.IntBetween(r, 1, 99), sample.Uniform(r, freeEmailDomains))
}
