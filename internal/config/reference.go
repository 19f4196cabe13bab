package config

// Static reference tables. These are part of the configuration surface, not
// generated data: the reference stage writes them verbatim, one row per entry.

type Product struct {
	Code       string
	Name       string
	Category   string
	Rate       float64
	Currency   string
	MinBalance float64
	Launched   string
}

var Products = []Product{
	{"CA-STD-001", "Meridian Current Account", "current_account", 0.0, "GBP", 0, "2015-01-01"},
	{"CA-PRM-001", "Meridian Premium Current", "current_account", 0.005, "GBP", 5000, "2018-03-01"},
	{"CA-STU-001", "Student Current Account", "current_account", 0.0, "GBP", 0, "2016-09-01"},
	{"SA-ISA-001", "Meridian Cash ISA", "savings", 0.042, "GBP", 1, "2015-01-01"},
	{"SA-EAS-001", "Easy Saver", "savings", 0.031, "GBP", 1, "2015-01-01"},
	{"SA-FIX-001", "Fixed Rate Saver 1yr", "savings", 0.048, "GBP", 1000, "2020-01-01"},
	{"SA-FIX-002", "Fixed Rate Saver 2yr", "savings", 0.051, "GBP", 1000, "2020-01-01"},
	{"SA-NOT-001", "Notice Saver 90 Day", "savings", 0.044, "GBP", 500, "2019-06-01"},
	{"PL-UNS-001", "Personal Loan", "personal_loan", 0.069, "GBP", 0, "2015-01-01"},
	{"PL-UNS-002", "Personal Loan Plus", "personal_loan", 0.049, "GBP", 0, "2020-01-01"},
	{"MG-RES-001", "Residential Mortgage 2yr Fix", "mortgage", 0.0449, "GBP", 0, "2015-01-01"},
	{"MG-RES-002", "Residential Mortgage 5yr Fix", "mortgage", 0.0479, "GBP", 0, "2015-01-01"},
	{"MG-BTL-001", "Buy to Let Mortgage", "mortgage", 0.0549, "GBP", 0, "2017-01-01"},
	{"MG-RES-003", "Tracker Mortgage", "mortgage", 0.0429, "GBP", 0, "2015-01-01"},
	{"CC-STD-001", "Meridian Credit Card", "credit_card", 0.199, "GBP", 0, "2016-01-01"},
	{"CC-RWD-001", "Rewards Credit Card", "credit_card", 0.229, "GBP", 0, "2019-01-01"},
	{"BC-STD-001", "Business Current Account", "business_current", 0.0, "GBP", 0, "2015-01-01"},
	{"BC-PRM-001", "Business Premium Account", "business_current", 0.005, "GBP", 10000, "2018-01-01"},
	{"BL-SME-001", "SME Business Loan", "business_loan", 0.079, "GBP", 0, "2015-01-01"},
	{"BL-GRO-001", "Growth Finance Loan", "business_loan", 0.065, "GBP", 0, "2021-01-01"},
	{"BS-SME-001", "Business Savings Account", "business_savings", 0.035, "GBP", 1, "2015-01-01"},
}

type GLAccount struct {
	Code    string
	Name    string
	Type    string
	Subtype string // empty for none
	Parent  string // empty for top level
	Level   int
}

var ChartOfAccounts = []GLAccount{
	{"1000", "Assets", "asset", "", "", 0},
	{"2000", "Liabilities", "liability", "", "", 0},
	{"3000", "Equity", "equity", "", "", 0},
	{"4000", "Revenue", "revenue", "", "", 0},
	{"5000", "Expenses", "expense", "", "", 0},
	{"1100", "Cash and Balances", "asset", "cash", "1000", 1},
	{"1200", "Loans and Advances", "asset", "loans", "1000", 1},
	{"1300", "Investment Securities", "asset", "investments", "1000", 1},
	{"1400", "Fixed Assets", "asset", "fixed", "1000", 1},
	{"1500", "Other Assets", "asset", "other", "1000", 1},
	{"1110", "Cash at Bank of England", "asset", "cash", "1100", 2},
	{"1120", "Nostro Accounts", "asset", "cash", "1100", 2},
	{"1130", "ATM Holdings", "asset", "cash", "1100", 2},
	{"1210", "Personal Loans", "asset", "loans", "1200", 2},
	{"1220", "Mortgages", "asset", "loans", "1200", 2},
	{"1230", "Business Loans", "asset", "loans", "1200", 2},
	{"1240", "Credit Card Receivables", "asset", "loans", "1200", 2},
	{"1250", "Overdrafts", "asset", "loans", "1200", 2},
	{"1260", "Loan Loss Provisions", "asset", "provisions", "1200", 2},
	{"1310", "Government Bonds (Gilts)", "asset", "investments", "1300", 2},
	{"1320", "Corporate Bonds", "asset", "investments", "1300", 2},
	{"1330", "Money Market Instruments", "asset", "investments", "1300", 2},
	{"2100", "Customer Deposits", "liability", "deposits", "2000", 1},
	{"2200", "Wholesale Funding", "liability", "funding", "2000", 1},
	{"2300", "Other Liabilities", "liability", "other", "2000", 1},
	{"2110", "Current Account Deposits", "liability", "deposits", "2100", 2},
	{"2120", "Savings Deposits", "liability", "deposits", "2100", 2},
	{"2130", "Fixed Term Deposits", "liability", "deposits", "2100", 2},
	{"2140", "Business Deposits", "liability", "deposits", "2100", 2},
	{"2210", "Interbank Borrowings", "liability", "funding", "2200", 2},
	{"2220", "Repo Agreements", "liability", "funding", "2200", 2},
	{"3100", "Share Capital", "equity", "", "3000", 1},
	{"3200", "Retained Earnings", "equity", "", "3000", 1},
	{"3300", "Reserves", "equity", "", "3000", 1},
	{"4100", "Interest Income", "revenue", "interest", "4000", 1},
	{"4200", "Fee and Commission Income", "revenue", "fees", "4000", 1},
	{"4300", "Trading Income", "revenue", "trading", "4000", 1},
	{"4400", "Other Income", "revenue", "other", "4000", 1},
	{"4110", "Interest on Loans", "revenue", "interest", "4100", 2},
	{"4120", "Interest on Mortgages", "revenue", "interest", "4100", 2},
	{"4130", "Interest on Investments", "revenue", "interest", "4100", 2},
	{"4140", "Interest on Interbank", "revenue", "interest", "4100", 2},
	{"4210", "Account Fees", "revenue", "fees", "4200", 2},
	{"4220", "Card Interchange Fees", "revenue", "fees", "4200", 2},
	{"4230", "Payment Fees", "revenue", "fees", "4200", 2},
	{"4240", "Lending Arrangement Fees", "revenue", "fees", "4200", 2},
	{"5100", "Interest Expense", "expense", "interest", "5000", 1},
	{"5200", "Staff Costs", "expense", "staff", "5000", 1},
	{"5300", "Premises and Equipment", "expense", "premises", "5000", 1},
	{"5400", "Technology Costs", "expense", "technology", "5000", 1},
	{"5500", "Marketing", "expense", "marketing", "5000", 1},
	{"5600", "Regulatory and Compliance", "expense", "regulatory", "5000", 1},
	{"5700", "Depreciation", "expense", "depreciation", "5000", 1},
	{"5800", "Impairment Charges", "expense", "impairment", "5000", 1},
	{"5900", "Other Operating Expenses", "expense", "other", "5000", 1},
	{"5110", "Interest on Deposits", "expense", "interest", "5100", 2},
	{"5120", "Interest on Wholesale Funding", "expense", "interest", "5100", 2},
	{"5130", "Interest on Subordinated Debt", "expense", "interest", "5100", 2},
}

type CostCentre struct {
	Code       string
	Name       string
	Department string
	Manager    string
}

var CostCentres = []CostCentre{
	{"CC-EXC", "Executive Office", "Executive", "CEO"},
	{"CC-RET", "Retail Banking", "Retail", "Head of Retail"},
	{"CC-BUS", "Business Banking", "Business", "Head of Business"},
	{"CC-TRE", "Treasury", "Treasury", "Head of Treasury"},
	{"CC-RIS", "Risk Management", "Risk", "CRO"},
	{"CC-COM", "Compliance", "Compliance", "Head of Compliance"},
	{"CC-FIN", "Finance", "Finance", "CFO"},
	{"CC-HRM", "Human Resources", "HR", "Head of HR"},
	{"CC-TEC", "Technology", "IT", "CTO"},
	{"CC-OPS", "Operations", "Operations", "COO"},
	{"CC-MKT", "Marketing", "Marketing", "Head of Marketing"},
	{"CC-LEG", "Legal", "Legal", "General Counsel"},
	{"CC-AUD", "Internal Audit", "Audit", "Head of Audit"},
	{"CC-CRD", "Credit Operations", "Credit", "Head of Credit"},
	{"CC-PAY", "Payments", "Payments", "Head of Payments"},
	{"CC-BR1", "London Branch", "Branch", "Branch Manager London"},
	{"CC-BR2", "Manchester Branch", "Branch", "Branch Manager Manchester"},
	{"CC-BR3", "Birmingham Branch", "Branch", "Branch Manager Birmingham"},
	{"CC-BR4", "Edinburgh Branch", "Branch", "Branch Manager Edinburgh"},
	{"CC-BR5", "Bristol Branch", "Branch", "Branch Manager Bristol"},
}

type PaymentScheme struct {
	Code            string
	Name            string
	Type            string
	MaxAmount       float64 // 0 means no scheme limit
	SettlementCycle string
	OperatingHours  string
}

var PaymentSchemes = []PaymentScheme{
	{"FPS", "Faster Payments", "real_time", 250000, "Near instant", "24/7"},
	{"BACS", "BACS Direct Credit", "batch", 0, "3 working days", "Working days"},
	{"DD", "Direct Debit", "batch", 0, "3 working days", "Working days"},
	{"CHAPS", "CHAPS", "high_value", 0, "Same day", "06:00-18:00"},
	{"SWIFT", "SWIFT International", "international", 0, "1-5 working days", "Working days"},
	{"MC", "Mastercard", "real_time", 0, "Real-time auth", "24/7"},
	{"VISA", "Visa", "real_time", 0, "Real-time auth", "24/7"},
	{"SO", "Standing Order", "batch", 0, "Scheduled", "As scheduled"},
	{"LINK", "LINK ATM Network", "real_time", 500, "Instant", "24/7"},
	{"SEPA", "SEPA Credit Transfer", "batch", 0, "1-2 working days", "Working days"},
}

type Branch struct {
	Code     string
	Name     string
	Region   string
	City     string
	Postcode string
	Type     string
}

var Branches = []Branch{
	{"BR-LON-01", "London City", "London", "London", "EC2V 8AS", "full_service"},
	{"BR-LON-02", "London West End", "London", "London", "W1D 3QR", "full_service"},
	{"BR-MAN-01", "Manchester Deansgate", "North West", "Manchester", "M3 4LQ", "full_service"},
	{"BR-BIR-01", "Birmingham City", "West Midlands", "Birmingham", "B2 5DB", "full_service"},
	{"BR-EDI-01", "Edinburgh George St", "Scotland", "Edinburgh", "EH2 2PQ", "full_service"},
	{"BR-BRI-01", "Bristol Harbourside", "South West", "Bristol", "BS1 5DB", "full_service"},
	{"BR-LEE-01", "Leeds City Square", "Yorkshire and the Humber", "Leeds", "LS1 5AB", "full_service"},
	{"BR-CAR-01", "Cardiff Queen St", "Wales", "Cardiff", "CF10 2BU", "full_service"},
	{"BR-DIG-01", "Digital Hub", "London", "London", "EC1V 9NR", "digital_hub"},
	{"BR-HQ-01", "Head Office", "London", "London", "EC2N 1HQ", "head_office"},
}

var UKRegions = []string{
	"London", "South East", "South West", "East of England",
	"West Midlands", "East Midlands", "Yorkshire and the Humber",
	"North West", "North East", "Scotland", "Wales", "Northern Ireland",
}

var CustomerSegments = []string{
	"mass_market", "mass_affluent", "high_net_worth",
	"young_professional", "student", "retired",
	"small_business", "growing_business",
}
