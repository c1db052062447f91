package service

import (
	"github.com/dafibh/ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Sum adds up the amounts of records; an empty slice sums to zero
func Sum(records []domain.Record) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}
	return total
}

// TotalIncome adds up income values
func TotalIncome(incomes []domain.Income) decimal.Decimal {
	records := make([]domain.Record, len(incomes))
	for i, income := range incomes {
		records[i] = income.Record()
	}
	return Sum(records)
}

// TotalExpenses adds up expense values
func TotalExpenses(expenses []domain.Expense) decimal.Decimal {
	records := make([]domain.Record, len(expenses))
	for i, expense := range expenses {
		records[i] = expense.Record()
	}
	return Sum(records)
}

// Balance returns incomeTotal - expenseTotal
func Balance(incomeTotal, expenseTotal decimal.Decimal) decimal.Decimal {
	return incomeTotal.Sub(expenseTotal)
}

// BudgetReport compares each category's budget with what was spent against it.
// Lines follow the order of categories; uncategorized expenses are not reported.
func BudgetReport(categories []domain.Category, expenses []domain.Expense) []domain.BudgetLine {
	spent := make(map[string]decimal.Decimal, len(categories))
	for _, expense := range expenses {
		if expense.Uncategorized() {
			continue
		}
		spent[expense.CategoryKey] = spent[expense.CategoryKey].Add(expense.Value)
	}

	lines := make([]domain.BudgetLine, 0, len(categories))
	for _, category := range categories {
		categorySpent := spent[category.Key]
		lines = append(lines, domain.BudgetLine{
			CategoryKey:  category.Key,
			CategoryName: category.Name,
			Budget:       category.Budget,
			Spent:        categorySpent,
			Remaining:    category.Budget.Sub(categorySpent),
		})
	}
	return lines
}

// Summarize calculates every total shown for a period
func Summarize(period domain.Period, incomes []domain.Income, expenses []domain.Expense, categories []domain.Category) *domain.PeriodSummary {
	totalIncome := TotalIncome(incomes)
	totalExpenses := TotalExpenses(expenses)

	known := make(map[string]bool, len(categories))
	totalBudget := decimal.Zero
	for _, category := range categories {
		known[category.Key] = true
		totalBudget = totalBudget.Add(category.Budget)
	}

	// Expenses pointing at a category that no longer exists count as uncategorized
	uncategorized := decimal.Zero
	for _, expense := range expenses {
		if expense.Uncategorized() || !known[expense.CategoryKey] {
			uncategorized = uncategorized.Add(expense.Value)
		}
	}

	return &domain.PeriodSummary{
		Period:             period,
		Incomes:            incomes,
		Expenses:           expenses,
		TotalIncome:        totalIncome,
		TotalExpenses:      totalExpenses,
		Balance:            Balance(totalIncome, totalExpenses),
		Budget:             BudgetReport(categories, expenses),
		TotalBudget:        totalBudget,
		UncategorizedSpent: uncategorized,
	}
}
