package console

import (
	"context"
	"strconv"

	"github.com/dafibh/ledger/internal/service"
	"github.com/dafibh/ledger/internal/session"
	"github.com/dafibh/ledger/internal/util"
)

func (m *Menu) addIncomes(ctx context.Context) error {
	period := m.session.Period()
	m.println("ADD INCOMES")
	for {
		source, ok, err := m.readText("Income Source (ENTER to cancel):")
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		value, ok, err := m.readMoney("Income Value (ENTER to cancel):")
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		if _, err := m.ledger.AddIncome(ctx, period, source, value); err != nil {
			m.println(describe(err))
		}

		more, err := m.continueAdding("income")
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	m.printIncomes(m.session.Snapshot(), false)
	return nil
}

func (m *Menu) addExpenses(ctx context.Context) error {
	period := m.session.Period()
	m.println("ADD EXPENSES")
	for {
		source, ok, err := m.readText("Expense Source (ENTER to cancel):")
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		value, ok, err := m.readMoney("Expense Value (ENTER to cancel):")
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		categoryKey, _, err := m.readCategory(m.session.Snapshot(), "")
		if err != nil {
			return err
		}

		if _, err := m.ledger.AddExpense(ctx, period, source, value, categoryKey); err != nil {
			m.println(describe(err))
		}

		more, err := m.continueAdding("expense")
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	m.printExpenses(m.session.Snapshot(), false)
	return nil
}

// readCategory lets the user tag an expense. It is skipped when the period has
// no categories. ENTER keeps current, 0 removes the category.
func (m *Menu) readCategory(snap session.Snapshot, current string) (string, bool, error) {
	categories := snap.Categories()
	if len(categories) == 0 {
		return current, false, nil
	}

	m.println("Category (ENTER to keep, 0 for none):")
	m.println("0) No category")
	for i, category := range categories {
		m.printf("%d) %s\n", i+1, category.Name)
	}
	for {
		line, err := m.readLine()
		if err != nil {
			return "", false, err
		}
		if line == "" {
			return current, false, nil
		}
		choice, ok := parseIndex(line, len(categories))
		if !ok {
			m.println(msgInvalidOption)
			continue
		}
		if choice == 0 {
			return "", true, nil
		}
		category, _ := snap.Category(choice - 1)
		return category.Key, true, nil
	}
}

func (m *Menu) editIncomes(ctx context.Context) error {
	period := m.session.Period()
	snap := m.session.Snapshot()
	if len(snap.Incomes()) == 0 {
		m.println("No incomes recorded for this period.")
		return nil
	}

	m.printIncomes(snap, true)
	m.println("1) Edit an Income\n2) Delete an Income\n3) Delete All Incomes\n4) Back")
	action, err := m.readChoice(1, 4)
	if err != nil || action == 4 {
		return err
	}

	if action == 3 {
		ok, err := m.confirm("Delete all incomes of " + period.String() + "?")
		if err != nil || !ok {
			return err
		}
		if err := m.ledger.DeleteAllIncomes(ctx, period); err != nil {
			m.println(describe(err))
		}
		m.println("All incomes deleted.")
		return nil
	}

	m.printf("Select an income (1-%d, 0 to go back):\n", len(snap.Incomes()))
	choice, err := m.readChoice(0, len(snap.Incomes()))
	if err != nil || choice == 0 {
		return err
	}
	income, _ := snap.Income(choice - 1)

	if action == 2 {
		ok, err := m.confirm("Delete \"" + income.Source + "\"?")
		if err != nil || !ok {
			return err
		}
		if err := m.ledger.DeleteIncome(ctx, period, income.Key); err != nil {
			return err
		}
		m.println("Income deleted.")
		return nil
	}

	source, ok, err := m.readText("New source (ENTER to keep \"" + income.Source + "\"):")
	if err != nil {
		return err
	}
	if !ok {
		source = income.Source
	}
	value, ok, err := m.readMoney("New value (ENTER to keep " + util.FormatMoney(income.Value) + "):")
	if err != nil {
		return err
	}
	if !ok {
		value = income.Value
	}

	if err := m.ledger.EditIncome(ctx, period, income.Key, source, value); err != nil {
		return err
	}
	m.println("Income updated.")
	return nil
}

func (m *Menu) editExpenses(ctx context.Context) error {
	period := m.session.Period()
	snap := m.session.Snapshot()
	if len(snap.Expenses()) == 0 {
		m.println("No expenses recorded for this period.")
		return nil
	}

	m.printExpenses(snap, true)
	m.println("1) Edit an Expense\n2) Delete an Expense\n3) Delete All Expenses\n4) Back")
	action, err := m.readChoice(1, 4)
	if err != nil || action == 4 {
		return err
	}

	if action == 3 {
		ok, err := m.confirm("Delete all expenses of " + period.String() + "?")
		if err != nil || !ok {
			return err
		}
		if err := m.ledger.DeleteAllExpenses(ctx, period); err != nil {
			m.println(describe(err))
		}
		m.println("All expenses deleted.")
		return nil
	}

	m.printf("Select an expense (1-%d, 0 to go back):\n", len(snap.Expenses()))
	choice, err := m.readChoice(0, len(snap.Expenses()))
	if err != nil || choice == 0 {
		return err
	}
	expense, _ := snap.Expense(choice - 1)

	if action == 2 {
		ok, err := m.confirm("Delete \"" + expense.Source + "\"?")
		if err != nil || !ok {
			return err
		}
		if err := m.ledger.DeleteExpense(ctx, period, expense.Key); err != nil {
			return err
		}
		m.println("Expense deleted.")
		return nil
	}

	source, ok, err := m.readText("New source (ENTER to keep \"" + expense.Source + "\"):")
	if err != nil {
		return err
	}
	if !ok {
		source = expense.Source
	}
	value, ok, err := m.readMoney("New value (ENTER to keep " + util.FormatMoney(expense.Value) + "):")
	if err != nil {
		return err
	}
	if !ok {
		value = expense.Value
	}
	categoryKey, _, err := m.readCategory(snap, expense.CategoryKey)
	if err != nil {
		return err
	}

	if err := m.ledger.EditExpense(ctx, period, expense.Key, source, value, categoryKey); err != nil {
		return err
	}
	m.println("Expense updated.")
	return nil
}

// printIncomes lists the incomes of snap; numbered lists are used for selection
func (m *Menu) printIncomes(snap session.Snapshot, numbered bool) {
	incomes := snap.Incomes()
	m.println("YOUR INCOMES:")
	for i, income := range incomes {
		if numbered {
			m.printf("%d) ", i+1)
		}
		m.printf("%s - %s\n", income.Source, util.FormatMoney(income.Value))
	}
	m.printf("INCOMES TOTAL: %s\n", util.FormatMoney(service.TotalIncome(incomes)))
}

func (m *Menu) printExpenses(snap session.Snapshot, numbered bool) {
	expenses := snap.Expenses()
	m.println("YOUR EXPENSES:")
	for i, expense := range expenses {
		if numbered {
			m.printf("%d) ", i+1)
		}
		line := expense.Source + " - " + util.FormatMoney(expense.Value)
		if name := snap.CategoryName(expense.CategoryKey); name != "" {
			line += " [" + name + "]"
		}
		m.println(line)
	}
	m.printf("EXPENSES TOTAL: %s\n", util.FormatMoney(service.TotalExpenses(expenses)))
}

// parseIndex accepts a number within [0, high]
func parseIndex(line string, high int) (int, bool) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 0 || n > high {
		return 0, false
	}
	return n, true
}
