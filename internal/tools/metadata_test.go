package tools

import (
	"testing"
)

func testCatalog() *Catalog {
	return &Catalog{
		Datasets: []Dataset{
			{Name: "core_banking.customers", Description: "Master customer record", Domain: "Retail Banking", Tags: []string{"PII", "Sensitive"}},
			{Name: "core_banking.accounts", Description: "Product holdings per customer", Domain: "Retail Banking", Tags: []string{"Financial"}},
			{Name: "risk.aml_alerts", Description: "Transaction monitoring alerts", Domain: "Risk & Compliance", Tags: []string{"Sensitive", "Regulatory"}},
			{Name: "warehouse_reporting.rpt_customer_360", Description: "Single customer view", Domain: "Data Warehouse", Tags: []string{"PII", "Derived"}},
		},
		Owners: []Owner{
			{Name: "Sarah Okafor", Role: "Head of Retail Data", Datasets: []string{"core_banking.*"}},
			{Name: "Marcus Little", Role: "Chief Data Officer", Datasets: []string{"*"}},
			{Name: "Priya Raman", Role: "Head of Financial Crime Analytics", Datasets: []string{"risk.aml_alerts"}},
		},
		Glossary: []GlossaryTerm{
			{Term: "AML", Definition: "Anti-Money Laundering monitoring and alerting"},
			{Term: "KYC", Definition: "Know Your Customer identity verification"},
		},
		Flows: []LineageFlow{
			{Name: "customer_dimension", Edges: []LineageEdge{
				{Upstream: "core_banking.customers", Downstream: "warehouse_core.dim_customer"},
			}},
		},
		Gaps: []LineageGap{
			{Dataset: "payments.payment_instructions", Note: "No documented flow into the warehouse"},
		},
		Assertions: []QualityAssertion{
			{Dataset: "core_banking.accounts", Name: "customer_fk_valid", Status: "FAIL"},
			{Dataset: "core_banking.customers", Name: "customer_id_unique", Status: "PASS"},
			{Dataset: "gl.gl_entries", Name: "journal_debits_equal_credits", Status: "FAIL"},
		},
	}
}

func TestSearchRanksNameAboveDescription(t *testing.T) {
	c := testCatalog()
	res := c.Search("customer", SearchOptions{})

	if len(res.Datasets) < 3 {
		t.Fatalf("expected at least 3 customer matches, got %d", len(res.Datasets))
	}
	// Name+description hits (15) outrank name-only (10) which outranks
	// description-only (5).
	if res.Datasets[0].Name != "core_banking.customers" {
		t.Errorf("top result = %s", res.Datasets[0].Name)
	}
	for i := 1; i < len(res.Datasets); i++ {
		if res.Datasets[i].Relevance > res.Datasets[i-1].Relevance {
			t.Fatalf("results not sorted by relevance at index %d", i)
		}
	}
	last := res.Datasets[len(res.Datasets)-1]
	if last.Name != "core_banking.accounts" {
		t.Errorf("description-only match should rank last, got %s", last.Name)
	}
}

func TestSearchTagFilter(t *testing.T) {
	c := testCatalog()
	res := c.Search("", SearchOptions{FilterTags: []string{"PII"}})

	if len(res.Datasets) != 2 {
		t.Fatalf("expected 2 PII datasets, got %d", len(res.Datasets))
	}
	for _, ds := range res.Datasets {
		found := false
		for _, tag := range ds.Tags {
			if tag == "PII" {
				found = true
			}
		}
		if !found {
			t.Errorf("%s returned without the PII tag", ds.Name)
		}
	}
}

func TestSearchDomainFilterIsCaseInsensitive(t *testing.T) {
	c := testCatalog()
	res := c.Search("customer", SearchOptions{FilterDomain: "retail banking"})

	for _, ds := range res.Datasets {
		if ds.Domain != "Retail Banking" {
			t.Errorf("domain filter let through %s (%s)", ds.Name, ds.Domain)
		}
	}
	if len(res.Datasets) != 2 {
		t.Errorf("expected the 2 retail datasets, got %d", len(res.Datasets))
	}
}

func TestSearchOwnerAttribution(t *testing.T) {
	c := testCatalog()
	res := c.Search("aml", SearchOptions{})

	if len(res.Datasets) != 1 {
		t.Fatalf("expected only risk.aml_alerts, got %d results", len(res.Datasets))
	}
	owners := res.Datasets[0].Owners
	foundExact, foundWildcard := false, false
	for _, o := range owners {
		if o == "Priya Raman (Head of Financial Crime Analytics)" {
			foundExact = true
		}
		if o == "Marcus Little (Chief Data Officer)" {
			foundWildcard = true
		}
	}
	if !foundExact || !foundWildcard {
		t.Errorf("expected exact and '*' owners attached, got %v", owners)
	}
}

func TestSearchOwnerFilter(t *testing.T) {
	c := testCatalog()
	res := c.Search("customer", SearchOptions{FilterOwner: "okafor"})

	for _, ds := range res.Datasets {
		if ds.Name == "warehouse_reporting.rpt_customer_360" {
			t.Error("schema wildcard core_banking.* should not cover the warehouse")
		}
	}
	if len(res.Datasets) == 0 {
		t.Fatal("owner filter removed everything, expected core_banking datasets")
	}
}

func TestSearchGlossary(t *testing.T) {
	c := testCatalog()
	res := c.Search("identity", SearchOptions{})

	if len(res.GlossaryMatches) != 1 || res.GlossaryMatches[0].Term != "KYC" {
		t.Errorf("expected KYC via definition match, got %v", res.GlossaryMatches)
	}
}

func TestSearchLineage(t *testing.T) {
	c := testCatalog()
	res := c.Search("payment", SearchOptions{IncludeLineage: true})

	foundGap := false
	for _, m := range res.Lineage {
		if m.Gap != nil && m.Gap.Dataset == "payments.payment_instructions" {
			foundGap = true
		}
	}
	if !foundGap {
		t.Error("expected the undocumented payments gap in lineage results")
	}

	res = c.Search("payment", SearchOptions{})
	if len(res.Lineage) != 0 {
		t.Error("lineage should be omitted unless requested")
	}
}

func TestSearchQualityFailureProbe(t *testing.T) {
	c := testCatalog()

	res := c.Search("quality failures", SearchOptions{IncludeQuality: true})
	fails := 0
	for _, a := range res.QualityAssertions {
		if a.Status == "FAIL" {
			fails++
		}
	}
	if fails != 2 {
		t.Errorf("failure probe should surface both FAIL assertions, got %d", fails)
	}

	res = c.Search("gl_entries", SearchOptions{IncludeQuality: true})
	if len(res.QualityAssertions) != 1 || res.QualityAssertions[0].Dataset != "gl.gl_entries" {
		t.Errorf("dataset substring should match its assertions, got %v", res.QualityAssertions)
	}
}
