package generate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/sample"
)

var customerCols = []string{
	"customer_ref", "type", "title", "first_name", "last_name", "full_name",
	"date_of_birth", "gender", "nationality", "ni_number", "email",
	"phone_mobile", "phone_home", "company_name", "company_reg_number",
	"sic_code", "kyc_status", "kyc_verified_date", "risk_rating",
	"customer_segment", "is_active", "onboarded_date", "closed_date",
}

var (
	ageBrackets   = [][2]int{{18, 25}, {26, 35}, {36, 50}, {51, 65}, {66, 85}}
	ageWeights    = []float64{0.15, 0.25, 0.30, 0.20, 0.10}
	riskRatings   = []string{"low", "standard", "medium", "high", "pep", "sanctioned"}
	riskWeights   = []float64{0.25, 0.55, 0.12, 0.05, 0.02, 0.01}
	kycStatuses   = []string{"verified", "verified", "verified", "verified", "verified", "verified", "verified", "enhanced_due_diligence", "pending", "expired"}
	otherNations  = []string{"Irish", "Polish", "Indian", "Pakistani", "Nigerian", "Romanian", "Italian", "Portuguese", "French", "German"}
	sicCodes      = []string{"62020", "47110", "56101", "41201", "69201", "86210", "96020", "55100", "49410", "01110", "74909", "82990"}
	personalSegs  = []string{"mass_market", "mass_affluent", "high_net_worth", "young_professional", "student", "retired"}
	personalSegWs = []float64{0.45, 0.25, 0.05, 0.12, 0.05, 0.08}
	businessSegs  = []string{"small_business", "growing_business"}
	businessSegWs = []float64{0.70, 0.30}
)

var refDate = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
var latestDate = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
var onboardingStart = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

// customers generates the customer master split into personal and business
// books, then one or two addresses per customer.
func (rn *Runner) customers(ctx context.Context) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 0)

	nPersonal := rn.Cfg.PersonalCustomers()
	nBusiness := rn.Cfg.BusinessCustomers()

	records := make([]map[string]any, 0, nPersonal+nBusiness)
	records = append(records, buildPersonalCustomers(r, nPersonal)...)
	records = append(records, buildBusinessCustomers(r, nBusiness, nPersonal)...)

	if err := rn.DB.BulkInsert(ctx, "core_banking.customers", customerCols, records); err != nil {
		return err
	}

	ids, err := rn.registerInsertedIDs(ctx, "customer", "core_banking.customers", "customer_id")
	if err != nil {
		return err
	}
	byType := map[string][]int64{
		"personal": ids[:nPersonal],
		"business": ids[nPersonal:],
	}
	rn.Reg.RegisterGroups("customer", byType)

	active := make([]int64, 0, len(ids))
	for i, rec := range records {
		if rec["is_active"].(bool) {
			active = append(active, ids[i])
		}
	}
	rn.Reg.Register("customer_active", active)

	rn.Log.Info("customers generated",
		zap.Int("personal", nPersonal),
		zap.Int("business", nBusiness),
		zap.Int("active", len(active)))

	return rn.addresses(ctx, ids)
}

func buildPersonalCustomers(r *rand.Rand, n int) []map[string]any {
	records := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		bracket := sample.Weighted(r, ageBrackets, ageWeights)
		age := sample.IntBetween(r, bracket[0], bracket[1]+1)
		dob := refDate.AddDate(0, 0, -(age*365 + r.Intn(365)))

		onboarded := clampDate(onboardingStart.AddDate(0, 0, r.Intn(3650)))

		var first, title string
		gender := sample.Uniform(r, []string{"male", "female"})
		if gender == "male" {
			first = sample.Uniform(r, maleFirstNames)
			title = sample.Uniform(r, []string{"Mr", "Mr", "Mr", "Dr"})
		} else {
			first = sample.Uniform(r, femaleFirstNames)
			title = sample.Uniform(r, []string{"Ms", "Mrs", "Miss", "Dr"})
		}
		last := sample.Uniform(r, lastNames)

		kyc := sample.Uniform(r, kycStatuses)
		var kycVerified any
		if kyc == "verified" {
			kycVerified = onboarded.AddDate(0, 0, sample.IntBetween(r, 1, 30)).Format("2006-01-02")
		}

		nationality := "British"
		if sample.Bernoulli(r, 0.15) {
			nationality = sample.Uniform(r, otherNations)
		}

		isActive := !sample.Bernoulli(r, 0.08)
		var closed any
		if !isActive {
			closed = onboarded.AddDate(0, 0, sample.IntBetween(r, 180, 3000)).Format("2006-01-02")
		}

		var phoneHome any
		if sample.Bernoulli(r, 0.4) {
			phoneHome = ukLandline(r)
		}

		records = append(records, map[string]any{
			"customer_ref":       fmt.Sprintf("MCB-%d", 10000001+i),
			"type":               "personal",
			"title":              title,
			"first_name":         first,
			"last_name":          last,
			"full_name":          fmt.Sprintf("%s %s %s", title, first, last),
			"date_of_birth":      dob.Format("2006-01-02"),
			"gender":             gender,
			"nationality":        nationality,
			"ni_number":          niNumber(r),
			"email":              fmt.Sprintf("%s.%s%d@%s", emailLocal(first), emailLocal(last), 1+r.Intn(998), sample.Uniform(r, freeEmailDomains)),
			"phone_mobile":       ukMobile(r),
			"phone_home":         phoneHome,
			"company_name":       nil,
			"company_reg_number": nil,
			"sic_code":           nil,
			"kyc_status":         kyc,
			"kyc_verified_date":  kycVerified,
			"risk_rating":        sample.Weighted(r, riskRatings, riskWeights),
			"customer_segment":   sample.Weighted(r, personalSegs, personalSegWs),
			"is_active":          isActive,
			"onboarded_date":     onboarded.Format("2006-01-02"),
			"closed_date":        closed,
		})
	}
	return records
}

func buildBusinessCustomers(r *rand.Rand, n, refOffset int) []map[string]any {
	records := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		company := companyName(r)
		onboarded := clampDate(onboardingStart.AddDate(0, 0, r.Intn(3650)))

		isActive := !sample.Bernoulli(r, 0.10)
		var closed any
		if !isActive {
			closed = onboarded.AddDate(0, 0, sample.IntBetween(r, 180, 2000)).Format("2006-01-02")
		}

		var phoneHome any
		if sample.Bernoulli(r, 0.6) {
			phoneHome = ukLandline(r)
		}

		local := emailLocal(company)
		if len(local) > 20 {
			local = local[:20]
		}

		records = append(records, map[string]any{
			"customer_ref":       fmt.Sprintf("MCB-%d", 10000001+refOffset+i),
			"type":               "business",
			"title":              nil,
			"first_name":         nil,
			"last_name":          nil,
			"full_name":          company,
			"date_of_birth":      nil,
			"gender":             nil,
			"nationality":        nil,
			"ni_number":          nil,
			"email":              fmt.Sprintf("info@%s.co.uk", local),
			"phone_mobile":       ukMobile(r),
			"phone_home":         phoneHome,
			"company_name":       company,
			"company_reg_number": fmt.Sprintf("%08d", sample.IntBetween(r, 1000000, 99999999)),
			"sic_code":           sample.Uniform(r, sicCodes),
			"kyc_status":         sample.Uniform(r, []string{"verified", "verified", "verified", "enhanced_due_diligence"}),
			"kyc_verified_date":  onboarded.AddDate(0, 0, sample.IntBetween(r, 1, 30)).Format("2006-01-02"),
			"risk_rating":        sample.Weighted(r, riskRatings[:4], []float64{0.20, 0.50, 0.20, 0.10}),
			"customer_segment":   sample.Weighted(r, businessSegs, businessSegWs),
			"is_active":          isActive,
			"onboarded_date":     onboarded.Format("2006-01-02"),
			"closed_date":        closed,
		})
	}
	return records
}

var addressCols = []string{
	"customer_id", "address_type", "line1", "line2", "line3", "city", "county",
	"postcode", "country", "is_primary", "valid_from", "valid_to",
}

// addresses writes one primary address per customer plus an occasional
// correspondence address. A fixed number of primaries get a NULL postcode so
// downstream completeness checks have something to find.
func (rn *Runner) addresses(ctx context.Context, customerIDs []int64) error {
	r := sample.Stream(rn.Cfg.Generation.Seed, 1)

	missing := make(map[int64]bool, rn.Cfg.Generation.MissingPostcodeCount)
	for _, id := range sample.WithoutReplacement(r, customerIDs, rn.Cfg.Generation.MissingPostcodeCount) {
		missing[id] = true
	}

	records := make([]map[string]any, 0, len(customerIDs))
	for _, cid := range customerIDs {
		var line2 any
		if sample.Bernoulli(r, 0.4) {
			line2 = secondaryAddress(r)
		}
		var county any
		if sample.Bernoulli(r, 0.7) {
			county = sample.Uniform(r, ukCounties)
		}
		var postcode any
		if !missing[cid] {
			postcode = ukPostcode(r)
		}

		primary := map[string]any{
			"customer_id":  cid,
			"address_type": "home",
			"line1":        streetAddress(r),
			"line2":        line2,
			"line3":        nil,
			"city":         sample.Uniform(r, ukCities),
			"county":       county,
			"postcode":     postcode,
			"country":      "United Kingdom",
			"is_primary":   true,
			"valid_from":   "2015-01-01",
			"valid_to":     nil,
		}
		records = append(records, primary)

		if sample.Bernoulli(r, 0.3) {
			corr := make(map[string]any, len(primary))
			for k, v := range primary {
				corr[k] = v
			}
			corr["address_type"] = "correspondence"
			corr["line1"] = streetAddress(r)
			corr["city"] = sample.Uniform(r, ukCities)
			corr["postcode"] = ukPostcode(r)
			corr["is_primary"] = false
			records = append(records, corr)
		}
	}

	if err := rn.DB.BulkInsert(ctx, "core_banking.addresses", addressCols, records); err != nil {
		return err
	}
	rn.Log.Info("addresses generated",
		zap.Int("count", len(records)),
		zap.Int("missing_postcodes", len(missing)))
	return nil
}

func clampDate(d time.Time) time.Time {
	if d.After(latestDate) {
		return latestDate
	}
	return d
}
