package export

import (
	"time"

	"github.com/dafibh/ledger/internal/domain"
)

// Document is the exported form of a period summary. Amounts are fixed to two
// decimals so the file reads the same as the console.
type Document struct {
	Period             string         `json:"period"`
	ExportedAt         time.Time      `json:"exportedAt"`
	Incomes            []DocumentItem `json:"incomes"`
	Expenses           []DocumentItem `json:"expenses"`
	TotalIncome        string         `json:"totalIncome"`
	TotalExpenses      string         `json:"totalExpenses"`
	Balance            string         `json:"balance"`
	Budget             []DocumentLine `json:"budget"`
	TotalBudget        string         `json:"totalBudget"`
	UncategorizedSpent string         `json:"uncategorizedSpent"`
}

type DocumentItem struct {
	Source   string `json:"source"`
	Value    string `json:"value"`
	Category string `json:"category,omitempty"`
}

type DocumentLine struct {
	Category  string `json:"category"`
	Budget    string `json:"budget"`
	Spent     string `json:"spent"`
	Remaining string `json:"remaining"`
}

// NewDocument converts summary; expense categories are written by name
func NewDocument(summary *domain.PeriodSummary, exportedAt time.Time) Document {
	names := make(map[string]string, len(summary.Budget))
	budget := make([]DocumentLine, len(summary.Budget))
	for i, line := range summary.Budget {
		names[line.CategoryKey] = line.CategoryName
		budget[i] = DocumentLine{
			Category:  line.CategoryName,
			Budget:    line.Budget.StringFixed(2),
			Spent:     line.Spent.StringFixed(2),
			Remaining: line.Remaining.StringFixed(2),
		}
	}

	incomes := make([]DocumentItem, len(summary.Incomes))
	for i, income := range summary.Incomes {
		incomes[i] = DocumentItem{Source: income.Source, Value: income.Value.StringFixed(2)}
	}

	expenses := make([]DocumentItem, len(summary.Expenses))
	for i, expense := range summary.Expenses {
		expenses[i] = DocumentItem{
			Source:   expense.Source,
			Value:    expense.Value.StringFixed(2),
			Category: names[expense.CategoryKey],
		}
	}

	return Document{
		Period:             summary.Period.String(),
		ExportedAt:         exportedAt.UTC(),
		Incomes:            incomes,
		Expenses:           expenses,
		TotalIncome:        summary.TotalIncome.StringFixed(2),
		TotalExpenses:      summary.TotalExpenses.StringFixed(2),
		Balance:            summary.Balance.StringFixed(2),
		Budget:             budget,
		TotalBudget:        summary.TotalBudget.StringFixed(2),
		UncategorizedSpent: summary.UncategorizedSpent.StringFixed(2),
	}
}
