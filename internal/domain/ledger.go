package domain

import "github.com/shopspring/decimal"

type Income struct {
	Key    string          `json:"key"`
	Source string          `json:"source"`
	Value  decimal.Decimal `json:"value"`
}

type Expense struct {
	Key         string          `json:"key"`
	Source      string          `json:"source"`
	Value       decimal.Decimal `json:"value"`
	CategoryKey string          `json:"categoryKey,omitempty"`
}

// Uncategorized reports whether the expense references no category
func (e Expense) Uncategorized() bool {
	return e.CategoryKey == ""
}

type Category struct {
	Key    string          `json:"key"`
	Name   string          `json:"name"`
	Budget decimal.Decimal `json:"budget"`
}

// BudgetLine is one row of a budget report
type BudgetLine struct {
	CategoryKey  string          `json:"categoryKey"`
	CategoryName string          `json:"categoryName"`
	Budget       decimal.Decimal `json:"budget"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// Overspent reports whether spending exceeded the budget
func (l BudgetLine) Overspent() bool {
	return l.Remaining.IsNegative()
}

// PeriodSummary holds the calculated totals for one period
type PeriodSummary struct {
	Period             Period          `json:"period"`
	Incomes            []Income        `json:"incomes"`
	Expenses           []Expense       `json:"expenses"`
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses"`
	Balance            decimal.Decimal `json:"balance"`
	Budget             []BudgetLine    `json:"budget"`
	TotalBudget        decimal.Decimal `json:"totalBudget"`
	UncategorizedSpent decimal.Decimal `json:"uncategorizedSpent"`
}

func (i Income) Record() Record {
	return Record{Key: i.Key, Label: i.Source, Amount: i.Value}
}

func (e Expense) Record() Record {
	return Record{Key: e.Key, Label: e.Source, Amount: e.Value, CategoryKey: e.CategoryKey}
}

func (c Category) Record() Record {
	return Record{Key: c.Key, Label: c.Name, Amount: c.Budget}
}

func IncomeFromRecord(r Record) Income {
	return Income{Key: r.Key, Source: r.Label, Value: r.Amount}
}

func ExpenseFromRecord(r Record) Expense {
	return Expense{Key: r.Key, Source: r.Label, Value: r.Amount, CategoryKey: r.CategoryKey}
}

func CategoryFromRecord(r Record) Category {
	return Category{Key: r.Key, Name: r.Label, Budget: r.Amount}
}

// IncomesFromRecords converts stored records into incomes, keeping order
func IncomesFromRecords(records []Record) []Income {
	out := make([]Income, len(records))
	for i, r := range records {
		out[i] = IncomeFromRecord(r)
	}
	return out
}

// ExpensesFromRecords converts stored records into expenses, keeping order
func ExpensesFromRecords(records []Record) []Expense {
	out := make([]Expense, len(records))
	for i, r := range records {
		out[i] = ExpenseFromRecord(r)
	}
	return out
}

// CategoriesFromRecords converts stored records into categories, keeping order
func CategoriesFromRecords(records []Record) []Category {
	out := make([]Category, len(records))
	for i, r := range records {
		out[i] = CategoryFromRecord(r)
	}
	return out
}
