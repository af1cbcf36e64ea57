package model

import "github.com/shopspring/decimal"

// Totals is the sum of all income and all expense values.
type Totals struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
}

// Balance returns income minus expense.
func (t Totals) Balance() decimal.Decimal {
	return t.TotalIncome.Sub(t.TotalExpense)
}

// PeriodSum is the sum of one transaction type inside a calendar period.
// Month is zero for yearly sums.
type PeriodSum struct {
	Type  TransactionType
	Year  int
	Month int
	Total decimal.Decimal
}

// MonthlyBucket is one row of the monthly report.
type MonthlyBucket struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// AnnualBucket is one row of the annual report.
type AnnualBucket struct {
	Year    int             `json:"year"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// AggregateFilter narrows aggregates to one owner.
// An empty UserID aggregates over every user.
type AggregateFilter struct {
	UserID string
}
