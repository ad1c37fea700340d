package domain

import "time"

const (
	QuorumSubcategory = "Quorum"
	QuorumCategory    = "Quorum"
	QuorumBudgetType  = "Additional"

	UncategorizedSubcategory = "Uncategorized"
	UnexpectedCategory       = "Unexpected"
	UnexpectedBudgetType     = "Unexpected"
)

// CategoryMapping resolves a subcategory to its category and budget type.
type CategoryMapping struct {
	Subcategory string `yaml:"subcategory" json:"subcategory"`
	Category    string `yaml:"category" json:"category"`
	BudgetType  string `yaml:"budget_type" json:"budget_type"`
}

// MerchantPattern maps an uppercase description token to a subcategory.
type MerchantPattern struct {
	Pattern     string    `json:"pattern"`
	Subcategory string    `json:"subcategory"`
	Confidence  int       `json:"confidence"`
	LastUsed    time.Time `json:"last_used"`
}

// DefaultCategories is the category table seeded by `cli init`.
func DefaultCategories() []CategoryMapping {
	rows := [][3]string{
		{"Savings", "Personal funds", "Base fund"},
		{"Savings", "Roth IRA", "Roth IRA"},
		{"Savings", "Investments", "Brokerage account"},
		{"Savings", "Savings goals", "Emergency fund"},

		{"Needs", "Rent", "Rent"},
		{"Needs", "Groceries & Living", "Supermarket"},
		{"Needs", "Groceries & Living", "Pharmacy"},
		{"Needs", "Groceries & Living", "Household expenses"},
		{"Needs", "Groceries & Living", "Haircut"},
		{"Needs", "Phone Bill", "O2"},
		{"Needs", "Taxes", "Rundfunkbeitrag"},
		{"Needs", "Transportation", "D-Ticket Job"},
		{"Needs", "Transportation", "Transportation"},

		{"Wants", "Shopping", "Online Shopping"},
		{"Wants", "Shopping", "Clothing"},
		{"Wants", "Shopping", "Technology"},
		{"Wants", "Shopping", "Hobbies"},
		{"Wants", "Restaurants", "Restaurant"},
		{"Wants", "Restaurants", "Fast Food"},
		{"Wants", "Restaurants", "Take-in"},
		{"Wants", "Restaurants", "Work Kantina"},
		{"Wants", "Subscriptions", "Monthly subscriptions"},
		{"Wants", "Subscriptions", "Annual subscriptions"},
		{"Wants", "Travel", "Train ticket"},
		{"Wants", "Travel", "Airfare"},
		{"Wants", "Travel", "Transportation (travel)"},
		{"Wants", "Travel", "Hotel"},
		{"Wants", "Travel", "Car Rental"},
		{"Wants", "Entertainment", "Social activities"},
		{"Wants", "Entertainment", "Movies"},
		{"Wants", "Entertainment", "Amusement"},

		{QuorumBudgetType, QuorumCategory, QuorumSubcategory},

		{"Unexpected", "Unexpected", "Home repairs"},
		{"Unexpected", "Unexpected", "Insurance fees"},
		{"Unexpected", "Unexpected", "Unexpected travel"},
		{"Unexpected", "Unexpected", "Medical bills"},
		{"Unexpected", "Unexpected", "Migration fees"},
		{UnexpectedBudgetType, UnexpectedCategory, UncategorizedSubcategory},
	}

	out := make([]CategoryMapping, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategoryMapping{BudgetType: r[0], Category: r[1], Subcategory: r[2]})
	}
	return out
}
