package generate

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/meridianhq/meridian/internal/config"
	"github.com/meridianhq/meridian/internal/registry"
)

// fakeDB is an in-memory DB implementation. Bulk inserts accumulate rows per
// table; id read-backs emulate serial key assignment in insert order. Queries
// a stage issues beyond that are answered from the programmed maps, matched
// by substring.
type fakeDB struct {
	tables      map[string][]map[string]any
	grouped     map[string]map[string][]int64
	int64s      map[string][]int64
	rows        map[string][][]any
	execs       []string
	constraints []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		tables:  make(map[string][]map[string]any),
		grouped: make(map[string]map[string][]int64),
		int64s:  make(map[string][]int64),
		rows:    make(map[string][][]any),
	}
}

func (f *fakeDB) BulkInsert(ctx context.Context, table string, columns []string, records []map[string]any) error {
	for _, rec := range records {
		copied := make(map[string]any, len(rec))
		for k, v := range rec {
			copied[k] = v
		}
		f.tables[table] = append(f.tables[table], copied)
	}
	return nil
}

func (f *fakeDB) SelectInt64s(ctx context.Context, sql string, args ...any) ([]int64, error) {
	for key, ids := range f.int64s {
		if strings.Contains(sql, key) {
			return ids, nil
		}
	}
	// Serial read-back: "SELECT <pk> FROM <table> ORDER BY <pk>".
	fields := strings.Fields(sql)
	if len(fields) >= 4 && fields[0] == "SELECT" && fields[2] == "FROM" {
		rows := f.tables[fields[3]]
		ids := make([]int64, len(rows))
		for i := range ids {
			ids[i] = int64(i + 1)
		}
		return ids, nil
	}
	return nil, nil
}

func (f *fakeDB) SelectGroupedIDs(ctx context.Context, sql string, args ...any) (map[string][]int64, error) {
	for key, g := range f.grouped {
		if strings.Contains(sql, key) {
			return g, nil
		}
	}
	return map[string][]int64{}, nil
}

func (f *fakeDB) SelectRows(ctx context.Context, sql string, args ...any) ([][]any, error) {
	for key, rows := range f.rows {
		if strings.Contains(sql, key) {
			return rows, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) error {
	f.execs = append(f.execs, sql)
	return nil
}

func (f *fakeDB) TableCount(ctx context.Context, table string) (int64, error) {
	return int64(len(f.tables[table])), nil
}

func (f *fakeDB) DropConstraint(ctx context.Context, table, constraint string) error {
	f.constraints = append(f.constraints, "drop:"+table+":"+constraint)
	return nil
}

func (f *fakeDB) AddConstraintNotValid(ctx context.Context, table, constraint, column, refTable, refColumn string) error {
	f.constraints = append(f.constraints, "add:"+table+":"+constraint)
	return nil
}

// failingDB rejects inserts into one table so error paths through the
// pipeline can be exercised.
type failingDB struct {
	*fakeDB
	failTable string
}

func (f *failingDB) BulkInsert(ctx context.Context, table string, columns []string, records []map[string]any) error {
	if table == f.failTable {
		return errors.New("insert rejected")
	}
	return f.fakeDB.BulkInsert(ctx, table, columns, records)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Generation.CustomerCount = 1000
	cfg.Generation.MissingPostcodeCount = 10
	cfg.Generation.OrphanedAccounts = 5
	cfg.Generation.ZeroAmountTxns = 3
	return cfg
}

func newTestRunner(cfg *config.Config) (*Runner, *fakeDB) {
	db := newFakeDB()
	return &Runner{Cfg: cfg, DB: db, Reg: registry.New(), Log: zap.NewNop()}, db
}

func TestCustomersSplitAndDefects(t *testing.T) {
	cfg := testConfig()
	rn, db := newTestRunner(cfg)

	if err := rn.customers(context.Background()); err != nil {
		t.Fatalf("customers stage failed: %v", err)
	}

	rows := db.tables["core_banking.customers"]
	if len(rows) != 1000 {
		t.Fatalf("expected 1000 customers, got %d", len(rows))
	}

	personal, business := 0, 0
	for i, row := range rows {
		switch row["type"] {
		case "personal":
			personal++
			if i >= 850 {
				t.Fatalf("personal customer at index %d, expected business block", i)
			}
		case "business":
			business++
		default:
			t.Fatalf("unexpected customer type %v", row["type"])
		}
	}
	if personal != 850 || business != 150 {
		t.Errorf("expected 850/150 split, got %d/%d", personal, business)
	}

	if got := rows[0]["customer_ref"]; got != "MCB-10000001" {
		t.Errorf("first customer_ref = %v, want MCB-10000001", got)
	}
	if rows[999]["company_name"] == nil {
		t.Error("business customers should carry a company name")
	}
	if rows[0]["company_name"] != nil {
		t.Error("personal customers should not carry a company name")
	}

	addrs := db.tables["core_banking.addresses"]
	primaries, missing := 0, 0
	for _, a := range addrs {
		if a["is_primary"].(bool) {
			primaries++
			if a["postcode"] == nil {
				missing++
			}
		} else if a["postcode"] == nil {
			t.Error("correspondence addresses should always have a postcode")
		}
	}
	if primaries != 1000 {
		t.Errorf("expected one primary address per customer, got %d", primaries)
	}
	if missing != cfg.Generation.MissingPostcodeCount {
		t.Errorf("expected %d missing postcodes, got %d", cfg.Generation.MissingPostcodeCount, missing)
	}

	groups, err := rn.Reg.Groups("customer")
	if err != nil {
		t.Fatalf("customer groups not registered: %v", err)
	}
	if len(groups["personal"]) != 850 || len(groups["business"]) != 150 {
		t.Errorf("registry groups %d/%d, want 850/150", len(groups["personal"]), len(groups["business"]))
	}

	active, err := rn.Reg.IDs("customer_active")
	if err != nil {
		t.Fatalf("customer_active not registered: %v", err)
	}
	if len(active) == 0 || len(active) >= 1000 {
		t.Errorf("active customer count %d should be positive and below the total", len(active))
	}
}

func TestCustomersDeterministic(t *testing.T) {
	cfg := testConfig()

	runA, dbA := newTestRunner(cfg)
	runB, dbB := newTestRunner(cfg)
	if err := runA.customers(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := runB.customers(context.Background()); err != nil {
		t.Fatal(err)
	}

	a := dbA.tables["core_banking.customers"]
	b := dbB.tables["core_banking.customers"]
	for _, i := range []int{0, 499, 999} {
		if a[i]["full_name"] != b[i]["full_name"] || a[i]["email"] != b[i]["email"] {
			t.Fatalf("row %d differs between identically seeded runs", i)
		}
	}
}

func registerAccountFixtures(rn *Runner, personalN, businessN int) {
	personal := make([]int64, personalN)
	business := make([]int64, businessN)
	all := make([]int64, 0, personalN+businessN)
	for i := range personal {
		personal[i] = int64(i + 1)
		all = append(all, int64(i+1))
	}
	for i := range business {
		business[i] = int64(personalN + 1 + i)
		all = append(all, int64(personalN+1+i))
	}
	rn.Reg.Register("customer", all)
	rn.Reg.RegisterGroups("customer", map[string][]int64{
		"personal": personal,
		"business": business,
	})

	rn.Reg.Register("product", []int64{1, 2, 3, 4, 5, 6, 7, 8})
	rn.Reg.RegisterGroups("product", map[string][]int64{
		"current_account":  {1},
		"savings":          {2},
		"personal_loan":    {3},
		"mortgage":         {4},
		"credit_card":      {5},
		"business_current": {6},
		"business_savings": {7},
		"business_loan":    {8},
	})
}

func TestAccountsOrphansAndUniqueness(t *testing.T) {
	cfg := testConfig()
	rn, db := newTestRunner(cfg)
	registerAccountFixtures(rn, 850, 150)

	if err := rn.accounts(context.Background()); err != nil {
		t.Fatalf("accounts stage failed: %v", err)
	}

	rows := db.tables["core_banking.accounts"]
	if len(rows) < 1000 {
		t.Fatalf("expected at least one account per customer, got %d rows", len(rows))
	}

	seen := map[string]bool{}
	for _, row := range rows {
		key := row["account_number"].(string) + "-" + row["sort_code"].(string)
		if seen[key] {
			t.Fatalf("duplicate account number/sort code pair %s", key)
		}
		seen[key] = true
	}

	orphans := rows[len(rows)-cfg.Generation.OrphanedAccounts:]
	for i, row := range orphans {
		want := int64(1000 + 1000 + i)
		if row["customer_id"] != want {
			t.Errorf("orphan %d customer_id = %v, want %d", i, row["customer_id"], want)
		}
		if name, _ := row["account_name"].(string); !strings.HasPrefix(name, "Orphaned Account") {
			t.Errorf("orphan %d account_name = %v", i, row["account_name"])
		}
	}
	for _, row := range rows[:len(rows)-cfg.Generation.OrphanedAccounts] {
		if cid := row["customer_id"].(int64); cid < 1 || cid > 1000 {
			t.Fatalf("non-orphan account references unknown customer %d", cid)
		}
	}

	if len(db.constraints) != 2 ||
		db.constraints[0] != "drop:core_banking.accounts:accounts_customer_id_fkey" ||
		db.constraints[1] != "add:core_banking.accounts:accounts_customer_id_fkey" {
		t.Errorf("expected fk drop then NOT VALID re-add, got %v", db.constraints)
	}

	active, err := rn.Reg.IDs("account_active")
	if err != nil {
		t.Fatalf("account_active not registered: %v", err)
	}
	wantActive := 0
	for _, row := range rows {
		if s := row["status"].(string); s == "active" || s == "in_arrears" {
			wantActive++
		}
	}
	if len(active) != wantActive {
		t.Errorf("registered %d active accounts, rows say %d", len(active), wantActive)
	}
}

func TestTransactionsAmountsAndDefects(t *testing.T) {
	cfg := testConfig()
	rn, db := newTestRunner(cfg)

	accounts := make([]int64, 60)
	for i := range accounts {
		accounts[i] = int64(i + 1)
	}
	db.grouped["p.category"] = map[string][]int64{
		"current_account": accounts[:50],
		"savings":         accounts[50:],
	}
	db.int64s["business"] = nil

	if err := rn.transactions(context.Background()); err != nil {
		t.Fatalf("transactions stage failed: %v", err)
	}

	rows := db.tables["core_banking.transactions"]
	if len(rows) == 0 {
		t.Fatal("no transactions generated")
	}

	start, _ := cfg.TxnStart()
	end, _ := cfg.TxnEnd()
	zeros := 0
	for _, row := range rows {
		amount := row["amount"].(float64)
		if amount == 0 {
			zeros++
			continue
		}
		if amount > 500000 || amount < -500000 {
			t.Fatalf("amount %v exceeds cap", amount)
		}

		txnType := row["txn_type"].(string)
		if creditTxnTypes[txnType] && amount < 0 {
			t.Fatalf("%s should credit the account, got %v", txnType, amount)
		}
		if !creditTxnTypes[txnType] && amount > 0 {
			t.Fatalf("%s should debit the account, got %v", txnType, amount)
		}

		if txnType == "atm_withdrawal" {
			abs := -amount
			if abs < 10 || abs > 500 || abs != float64(int(abs/10))*10 {
				t.Fatalf("atm withdrawal %v not a note multiple in [10,500]", abs)
			}
		}

		d, err := time.Parse("2006-01-02", row["txn_date"].(string))
		if err != nil {
			t.Fatalf("bad txn_date %v", row["txn_date"])
		}
		if d.Before(start) || d.After(end) {
			t.Fatalf("txn_date %v outside window", row["txn_date"])
		}
	}
	if zeros > cfg.Generation.ZeroAmountTxns {
		t.Errorf("%d zero-amount transactions, cap is %d", zeros, cfg.Generation.ZeroAmountTxns)
	}
}

func TestGLEntriesBalancePerJournal(t *testing.T) {
	cfg := testConfig()
	cfg.Generation.TxnDateStart = "2024-07-01"
	cfg.Generation.TxnDateEnd = "2024-07-02"
	rn, db := newTestRunner(cfg)

	if err := rn.glEntries(context.Background()); err != nil {
		t.Fatalf("gl entries failed: %v", err)
	}

	rows := db.tables["gl.gl_entries"]
	if len(rows) < 600 {
		t.Fatalf("expected several hundred entries over two days, got %d", len(rows))
	}

	parse := func(v any) float64 {
		f, err := strconv.ParseFloat(v.(string), 64)
		if err != nil {
			t.Fatalf("unparseable amount %v", v)
		}
		return f
	}

	type net struct{ debit, credit float64 }
	byJournal := map[string]*net{}
	journalBatch := map[string]string{}
	var imbalanceNet float64

	for _, row := range rows {
		j := row["journal_id"].(string)
		if byJournal[j] == nil {
			byJournal[j] = &net{}
		}
		byJournal[j].debit += parse(row["debit_amount"])
		byJournal[j].credit += parse(row["credit_amount"])
		journalBatch[j] = row["batch_id"].(string)

		if row["batch_id"] == cfg.Generation.GLImbalanceBatch {
			if row["is_manual"] != true {
				t.Error("imbalance legs should be flagged manual")
			}
			imbalanceNet += parse(row["debit_amount"]) - parse(row["credit_amount"])
		}
	}

	for j, n := range byJournal {
		if journalBatch[j] == cfg.Generation.GLImbalanceBatch {
			continue
		}
		if diff := n.debit - n.credit; diff > 0.001 || diff < -0.001 {
			t.Fatalf("journal %s does not balance: debit %v credit %v", j, n.debit, n.credit)
		}
	}

	if imbalanceNet < 499.99 || imbalanceNet > 500.01 {
		t.Errorf("imbalance batch nets %v, want a £500 debit overhang", imbalanceNet)
	}
}

func TestFxRatesWeekdaysOnly(t *testing.T) {
	cfg := testConfig()
	rn, db := newTestRunner(cfg)

	if err := rn.fxRates(context.Background()); err != nil {
		t.Fatalf("fx rates failed: %v", err)
	}

	rows := db.tables["treasury.fx_rates"]
	if len(rows) == 0 {
		t.Fatal("no fx rates generated")
	}
	perDay := map[string]int{}
	for _, row := range rows {
		d, err := time.Parse("2006-01-02", row["rate_date"].(string))
		if err != nil {
			t.Fatalf("bad rate_date %v", row["rate_date"])
		}
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("rate published on a weekend: %v", row["rate_date"])
		}
		if row["base_currency"] != "GBP" {
			t.Fatalf("unexpected base currency %v", row["base_currency"])
		}
		if rate := row["spot_rate"].(float64); rate <= 0 {
			t.Fatalf("non-positive spot rate %v", rate)
		}
		perDay[row["rate_date"].(string)]++
	}
	for day, n := range perDay {
		if n != 10 {
			t.Fatalf("expected 10 currency pairs on %s, got %d", day, n)
		}
	}
}

func TestLiquidityPoolHaircuts(t *testing.T) {
	cfg := testConfig()
	rn, db := newTestRunner(cfg)

	if err := rn.liquidityPool(context.Background()); err != nil {
		t.Fatalf("liquidity pool failed: %v", err)
	}

	rows := db.tables["treasury.liquidity_pool"]
	if len(rows) != 6*len(liquidityAssets) {
		t.Fatalf("expected %d rows (six monthly snapshots), got %d", 6*len(liquidityAssets), len(rows))
	}
	for _, row := range rows {
		market := row["market_value"].(float64)
		adjusted := row["adjusted_value"].(float64)
		haircut := row["haircut_pct"].(float64) / 100

		want := market * (1 - haircut)
		if diff := adjusted - want; diff > 0.011 || diff < -0.011 {
			t.Errorf("%v: adjusted %v, want market %v less %v%% haircut",
				row["asset_class"], adjusted, market, row["haircut_pct"])
		}
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"atm_withdrawal":   "Atm Withdrawal",
		"faster_payment":   "Faster Payment",
		"fee":              "Fee",
		"mortgage_payment": "Mortgage Payment",
	}
	for in, want := range cases {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStageOrderAndCount(t *testing.T) {
	if StageCount() != 10 {
		t.Fatalf("pipeline has %d stages, expected 10", StageCount())
	}
	if StageName(1) != "reference data" {
		t.Errorf("stage 1 = %q", StageName(1))
	}
	if StageName(10) != "warehouse layers" {
		t.Errorf("stage 10 = %q", StageName(10))
	}
}

func TestRunReportsFailingStep(t *testing.T) {
	cfg := testConfig()
	rn, db := newTestRunner(cfg)
	rn.DB = &failingDB{fakeDB: db, failTable: "core_banking.products"}

	err := rn.Run(context.Background(), 1)
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected a stage error, got %v", err)
	}
	if se.Step != 1 || se.Name != "reference data" {
		t.Errorf("failure attributed to step %d (%s), want step 1 (reference data)", se.Step, se.Name)
	}

	if err := rn.Run(context.Background(), 0); err == nil {
		t.Error("step 0 should be rejected")
	}
	if err := rn.Run(context.Background(), StageCount()+1); err == nil {
		t.Error("step past the pipeline end should be rejected")
	}
}

func TestAccountsOrphansWithoutBusinessCustomers(t *testing.T) {
	cfg := testConfig()
	rn, db := newTestRunner(cfg)
	registerAccountFixtures(rn, 1000, 0)

	if err := rn.accounts(context.Background()); err != nil {
		t.Fatalf("accounts stage failed: %v", err)
	}

	rows := db.tables["core_banking.accounts"]
	if len(rows) < 1000 {
		t.Fatalf("expected at least one account per customer, got %d rows", len(rows))
	}
	orphans := rows[len(rows)-cfg.Generation.OrphanedAccounts:]
	for i, row := range orphans {
		want := int64(1000 + 1000 + i)
		if row["customer_id"] != want {
			t.Errorf("orphan %d customer_id = %v, want %d", i, row["customer_id"], want)
		}
	}
}

func TestProductRegistryOrderStable(t *testing.T) {
	byCategory := map[string][]int64{
		"savings":         {4, 5},
		"current_account": {1, 2, 3},
		"mortgage":        {6},
	}
	want := []int64{1, 2, 3, 6, 4, 5}

	cfg := testConfig()
	rn, db := newTestRunner(cfg)
	db.grouped["core_banking.products"] = byCategory
	if err := rn.products(context.Background()); err != nil {
		t.Fatalf("products failed: %v", err)
	}
	ids, err := rn.Reg.IDs("product")
	if err != nil {
		t.Fatalf("product ids not registered: %v", err)
	}
	if len(ids) != len(want) {
		t.Fatalf("registered %d product ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("product ids %v, want category-sorted %v", ids, want)
		}
	}

	// A resumed run must rebuild the identical flat set.
	resumed, resumedDB := newTestRunner(cfg)
	resumedDB.grouped["core_banking.products"] = byCategory
	if err := resumed.rehydrate(context.Background(), 2); err != nil {
		t.Fatalf("rehydrate failed: %v", err)
	}
	ids2, err := resumed.Reg.IDs("product")
	if err != nil {
		t.Fatalf("product ids not rebuilt: %v", err)
	}
	for i := range want {
		if ids2[i] != want[i] {
			t.Fatalf("resumed product ids %v, want %v", ids2, want)
		}
	}
}

func TestPaymentFlowsUseRegisteredSchemes(t *testing.T) {
	cfg := testConfig()
	cfg.Generation.PaymentInstructions = 300
	cfg.Generation.PaymentReceipts = 150
	rn, db := newTestRunner(cfg)

	schemes := make([]int64, len(schemeWeights))
	valid := map[int64]bool{}
	for i := range schemes {
		schemes[i] = int64(11 + i)
		valid[schemes[i]] = true
	}
	rn.Reg.Register("payment_scheme", schemes)
	db.int64s["status = 'active'"] = []int64{1, 2, 3, 4, 5}

	if err := rn.paymentFlows(context.Background()); err != nil {
		t.Fatalf("payment flows failed: %v", err)
	}

	instructions := db.tables["payments.payment_instructions"]
	if len(instructions) != cfg.Generation.PaymentInstructions {
		t.Fatalf("expected %d instructions, got %d", cfg.Generation.PaymentInstructions, len(instructions))
	}
	for _, row := range instructions {
		if !valid[row["scheme_id"].(int64)] {
			t.Fatalf("instruction uses unregistered scheme %v", row["scheme_id"])
		}
	}
	for _, row := range db.tables["payments.payment_receipts"] {
		if !valid[row["scheme_id"].(int64)] {
			t.Fatalf("receipt uses unregistered scheme %v", row["scheme_id"])
		}
	}

	bare, bareDB := newTestRunner(cfg)
	bareDB.int64s["status = 'active'"] = []int64{1}
	if err := bare.paymentFlows(context.Background()); err == nil {
		t.Error("expected an error when scheme keys were never registered")
	}
}
