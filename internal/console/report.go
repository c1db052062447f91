package console

import (
	"context"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/dafibh/ledger/internal/util"
)

const separator = "--------------------------------------------"

func (m *Menu) printSummary() {
	snap := m.session.Snapshot()
	summary := snap.Summary()

	m.printf("SUMMARY %s\n", summary.Period)
	m.printIncomes(snap, false)
	m.println()
	m.printExpenses(snap, false)
	m.println(separator)
	m.printf("FINAL BALANCE: %s\n", util.FormatMoney(summary.Balance))
	m.println(separator)
}

func (m *Menu) printBudgetReport() {
	summary := m.session.Snapshot().Summary()

	m.printf("BUDGET REPORT %s\n", summary.Period)
	if len(summary.Budget) == 0 {
		m.println("No categories for this period.")
	}
	for _, line := range summary.Budget {
		m.printBudgetLine(line)
	}
	m.println(separator)
	m.printf("TOTAL BUDGET: %s\n", util.FormatMoney(summary.TotalBudget))
	m.printf("UNCATEGORIZED SPENT: %s\n", util.FormatMoney(summary.UncategorizedSpent))
}

func (m *Menu) printBudgetLine(line domain.BudgetLine) {
	m.printf("%s - budget %s, spent %s, remaining %s",
		line.CategoryName,
		util.FormatMoney(line.Budget),
		util.FormatMoney(line.Spent),
		util.FormatMoney(line.Remaining),
	)
	if line.Overspent() {
		m.printf(" (OVER BUDGET)")
	}
	m.println()
}

func (m *Menu) export(ctx context.Context) error {
	if m.exporter == nil {
		return domain.ErrExportDisabled
	}

	location, err := m.exporter.Export(ctx, m.session.Snapshot().Summary())
	if err != nil {
		return err
	}
	m.printf("Summary exported to %s\n", location)
	return nil
}
