package generate

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/meridianhq/meridian/internal/sample"
)

// UK-flavoured fake data pools. Everything here is drawn through the calling
// stage's random stream so the whole dataset stays reproducible from one seed.

var maleFirstNames = []string{
	"James", "Oliver", "George", "Harry", "Jack", "Thomas", "Charlie", "Oscar",
	"William", "Henry", "Leo", "Alfie", "Joshua", "Freddie", "Archie", "Noah",
	"Ethan", "Daniel", "Samuel", "Alexander", "Mohammed", "Edward", "Joseph",
	"David", "Benjamin", "Adam", "Lucas", "Ryan", "Nathan", "Matthew", "Liam",
	"Luke", "Michael", "Connor", "Jamie", "Callum", "Aaron", "Kieran", "Robert",
	"Andrew", "Paul", "Mark", "Stephen", "Richard", "Peter", "Ian", "Graham",
	"Colin", "Derek", "Brian",
}

var femaleFirstNames = []string{
	"Olivia", "Amelia", "Isla", "Emily", "Ava", "Sophia", "Grace", "Lily",
	"Freya", "Mia", "Ella", "Charlotte", "Poppy", "Evie", "Isabella", "Daisy",
	"Alice", "Florence", "Sophie", "Jessica", "Ruby", "Chloe", "Hannah",
	"Lucy", "Megan", "Katie", "Lauren", "Rebecca", "Bethany", "Amy", "Emma",
	"Laura", "Rachel", "Sarah", "Claire", "Nicola", "Karen", "Susan", "Julie",
	"Helen", "Patricia", "Margaret", "Janet", "Carol", "Linda", "Diane",
	"Sandra", "Pauline", "Sheila", "Joan",
}

var lastNames = []string{
	"Smith", "Jones", "Taylor", "Brown", "Williams", "Wilson", "Johnson",
	"Davies", "Robinson", "Wright", "Thompson", "Evans", "Walker", "White",
	"Roberts", "Green", "Hall", "Wood", "Jackson", "Clarke", "Patel", "Khan",
	"Lewis", "James", "Phillips", "Mason", "Mitchell", "Rose", "Davis",
	"Rodgers", "Hunt", "Carter", "Morgan", "Bell", "Murphy", "Bailey", "Cook",
	"King", "Parker", "Price", "Shaw", "Watson", "Hughes", "Bennett", "Ali",
	"Harrison", "Turner", "Cooper", "Hill", "Ward", "Moore", "Clark", "Baker",
	"Singh", "Begum", "Hussain", "Allen", "Young", "Scott", "Adams",
}

var streetNames = []string{
	"High Street", "Station Road", "Church Lane", "Victoria Road", "Green Lane",
	"Manor Road", "Kings Road", "Queens Road", "New Road", "Mill Lane",
	"Park Avenue", "The Crescent", "Springfield Road", "Albert Road",
	"Main Street", "Park Road", "York Road", "London Road", "Windsor Close",
	"Grange Road", "Richmond Avenue", "Chester Road", "Elm Grove",
	"Willow Close", "Oak Drive", "Birch Avenue", "Meadow View", "Orchard Way",
	"The Green", "School Lane",
}

var ukCities = []string{
	"London", "Birmingham", "Manchester", "Leeds", "Glasgow", "Sheffield",
	"Liverpool", "Bristol", "Edinburgh", "Cardiff", "Leicester", "Coventry",
	"Nottingham", "Newcastle upon Tyne", "Sunderland", "Brighton", "Hull",
	"Plymouth", "Stoke-on-Trent", "Wolverhampton", "Derby", "Swansea",
	"Southampton", "Salford", "Aberdeen", "Portsmouth", "York", "Peterborough",
	"Dundee", "Lancaster", "Oxford", "Cambridge", "Norwich", "Exeter",
	"Gloucester", "Bath", "Preston", "Reading", "Luton", "Milton Keynes",
}

var ukCounties = []string{
	"Greater London", "West Midlands", "Greater Manchester", "West Yorkshire",
	"Merseyside", "South Yorkshire", "Kent", "Essex", "Hampshire", "Surrey",
	"Lancashire", "Hertfordshire", "Norfolk", "Suffolk", "Devon", "Somerset",
	"Cheshire", "Staffordshire", "Nottinghamshire", "Derbyshire",
	"Leicestershire", "Lincolnshire", "Cumbria", "Durham", "Northumberland",
	"Oxfordshire", "Cambridgeshire", "Gloucestershire", "Wiltshire", "Dorset",
}

var postcodeAreas = []string{
	"AB", "B", "BA", "BD", "BN", "BR", "BS", "CB", "CF", "CH", "CM", "CR",
	"CV", "DE", "DN", "E", "EC", "EH", "EX", "G", "GL", "GU", "HA", "HD",
	"HP", "HU", "IG", "IP", "KT", "L", "LA", "LE", "LN", "LS", "LU", "M",
	"ME", "MK", "N", "NE", "NG", "NN", "NR", "NW", "OL", "OX", "PE", "PL",
	"PO", "PR", "RG", "RH", "S", "SE", "SG", "SK", "SL", "SN", "SO", "SR",
	"SS", "ST", "SW", "TN", "W", "WA", "WF", "WN", "YO",
}

var companySuffixes = []string{"Ltd", "Limited", "PLC", "LLP", "& Sons", "Group", "Holdings"}

var companyStems = []string{
	"Ashworth", "Brampton", "Caldwell", "Dunmore", "Eastgate", "Fairfield",
	"Granville", "Hartley", "Ivybridge", "Kingsmead", "Langdale", "Merrow",
	"Northfield", "Oakhurst", "Pennington", "Redbrook", "Stanfield",
	"Thornbury", "Underwood", "Wexford", "Albion", "Britannia", "Sterling",
	"Pinnacle", "Vanguard", "Summit", "Beacon", "Harbour", "Keystone",
	"Crestwood",
}

var companyTrades = []string{
	"Consulting", "Engineering", "Logistics", "Catering", "Construction",
	"Property", "Motors", "Electrical", "Plumbing", "Landscapes", "Media",
	"Software", "Recruitment", "Cleaning", "Security", "Haulage", "Interiors",
	"Printing", "Accountancy", "Surveyors",
}

// meridianSortCodes are the bank's own sort codes, one block per branch area.
var meridianSortCodes = []string{
	"200100", "200101", "200102", "200103", "200104",
	"200200", "200201",
	"200300", "200301",
	"200400",
	"200500",
	"200600",
	"200700",
	"200800",
}

var retailCounterparties = []string{
	"Tesco Stores", "Sainsbury's", "ASDA", "Morrisons", "Aldi", "Lidl",
	"Marks & Spencer", "Waitrose", "Co-op Food",
	"Amazon.co.uk", "ASOS.com", "John Lewis", "Argos", "Currys",
	"Shell", "BP", "Esso", "Texaco",
	"Costa Coffee", "Starbucks", "Greggs", "Pret A Manger", "Nandos",
	"Deliveroo", "Just Eat", "Uber Eats",
	"Netflix", "Spotify", "Apple", "Google",
	"Sky", "BT", "Virgin Media", "EE", "Three", "Vodafone",
	"British Gas", "EDF Energy", "SSE", "Octopus Energy",
	"Thames Water", "Severn Trent", "United Utilities",
	"Council Tax", "HMRC", "DVLA",
	"Aviva", "Direct Line", "Admiral", "AA",
	"PureGym", "David Lloyd", "Gymshark",
	"TfL", "Trainline", "National Rail",
	"NHS", "Boots Pharmacy",
}

var businessCounterparties = []string{
	"HMRC VAT", "HMRC Corporation Tax", "HMRC PAYE",
	"Companies House", "Business Rates",
	"AWS", "Microsoft Azure", "Google Cloud",
	"Royal Mail", "DHL", "FedEx",
	"Sage Accounting", "Xero", "QuickBooks",
	"Barclaycard Merchant", "Worldpay", "Stripe",
}

var salaryPayers = []string{
	"Meridian Bank Payroll", "Tesco PLC Payroll", "NHS Trust Payroll",
	"Barclays Payroll", "BT Group Payroll", "Unilever Payroll",
	"GSK Payroll", "Rolls Royce Payroll", "BAE Systems Payroll",
	"Lloyds Banking Payroll", "JCB Payroll", "Astra Zeneca Payroll",
	"Royal Mail Payroll", "Network Rail Payroll", "BBC Payroll",
}

var freeEmailDomains = []string{
	"gmail.com", "hotmail.com", "outlook.com", "yahoo.co.uk", "hotmail.co.uk",
	"icloud.com", "btinternet.com", "sky.com",
}

const niPrefixLetters = "ABCEGHJKLMNPRSTWXYZ"
const niSuffixLetters = "ABCD"

func sortCode(r *rand.Rand) string {
	return sample.Uniform(r, meridianSortCodes)
}

func accountNumber(r *rand.Rand) string {
	return fmt.Sprintf("%d", 10000000+r.Intn(90000000))
}

func niNumber(r *rand.Rand) string {
	return fmt.Sprintf("%c%c%06d%c",
		niPrefixLetters[r.Intn(len(niPrefixLetters))],
		niPrefixLetters[r.Intn(len(niPrefixLetters))],
		100000+r.Intn(900000),
		niSuffixLetters[r.Intn(len(niSuffixLetters))])
}

func ukPostcode(r *rand.Rand) string {
	area := sample.Uniform(r, postcodeAreas)
	return fmt.Sprintf("%s%d %d%c%c", area, 1+r.Intn(20), r.Intn(10),
		'A'+rune(r.Intn(26)), 'A'+rune(r.Intn(26)))
}

func ukMobile(r *rand.Rand) string {
	return fmt.Sprintf("07%03d %06d", r.Intn(1000), r.Intn(1000000))
}

func ukLandline(r *rand.Rand) string {
	return fmt.Sprintf("01%03d %06d", r.Intn(1000), r.Intn(1000000))
}

func streetAddress(r *rand.Rand) string {
	return fmt.Sprintf("%d %s", 1+r.Intn(200), sample.Uniform(r, streetNames))
}

func secondaryAddress(r *rand.Rand) string {
	return fmt.Sprintf("Flat %d", 1+r.Intn(40))
}

func companyName(r *rand.Rand) string {
	stem := sample.Uniform(r, companyStems)
	trade := sample.Uniform(r, companyTrades)
	return fmt.Sprintf("%s %s %s", stem, trade, sample.Uniform(r, companySuffixes))
}

// emailLocal lowercases and strips the characters that never appear in a
// generated address.
func emailLocal(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "&", "")
	s = strings.ReplaceAll(s, "'", "")
	return s
}

// counterparty picks a plausible payee or payer name for a transaction.
func counterparty(r *rand.Rand, txnType string, isBusiness bool) string {
	if txnType == "salary" {
		return sample.Uniform(r, salaryPayers)
	}
	if isBusiness {
		pool := make([]string, 0, len(businessCounterparties)+10)
		pool = append(pool, businessCounterparties...)
		pool = append(pool, retailCounterparties[:10]...)
		return sample.Uniform(r, pool)
	}
	return sample.Uniform(r, retailCounterparties)
}
