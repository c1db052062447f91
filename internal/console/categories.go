package console

import (
	"context"

	"github.com/dafibh/ledger/internal/session"
	"github.com/dafibh/ledger/internal/util"
)

var categoryMenu = []string{
	"Add Category",
	"Rename Category",
	"Set Category Budget",
	"Delete Category",
	"Delete All Categories",
	"Copy Categories From Previous Period",
	"Back",
}

func (m *Menu) manageCategories(ctx context.Context) error {
	for {
		snap := m.session.Snapshot()
		m.println("MANAGE CATEGORIES")
		m.printCategories(snap)
		for i, label := range categoryMenu {
			m.printf("%d) %s\n", i+1, label)
		}

		choice, err := m.readChoice(1, len(categoryMenu))
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = m.addCategory(ctx)
		case 2:
			err = m.renameCategory(ctx, snap)
		case 3:
			err = m.setCategoryBudget(ctx, snap)
		case 4:
			err = m.deleteCategory(ctx, snap)
		case 5:
			err = m.deleteAllCategories(ctx)
		case 6:
			err = m.copyCategories(ctx)
		case 7:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) printCategories(snap session.Snapshot) {
	categories := snap.Categories()
	if len(categories) == 0 {
		m.println("No categories for this period.")
		return
	}
	for i, category := range categories {
		m.printf("%d) %s - budget %s\n", i+1, category.Name, util.FormatMoney(category.Budget))
	}
}

func (m *Menu) addCategory(ctx context.Context) error {
	name, ok, err := m.readText("Category Name (ENTER to cancel):")
	if err != nil || !ok {
		return err
	}
	budget, ok, err := m.readMoney("Category Budget (ENTER to cancel):")
	if err != nil || !ok {
		return err
	}

	if _, err := m.categories.CreateCategory(ctx, m.session.Period(), name, budget); err != nil {
		m.println(describe(err))
		return nil
	}
	m.println("Category added.")
	return nil
}

// selectCategory asks for a position in snap; ok is false when the user goes back
func (m *Menu) selectCategory(snap session.Snapshot) (key, name string, ok bool, err error) {
	categories := snap.Categories()
	if len(categories) == 0 {
		m.println("No categories for this period.")
		return "", "", false, nil
	}

	m.printf("Select a category (1-%d, 0 to go back):\n", len(categories))
	choice, err := m.readChoice(0, len(categories))
	if err != nil || choice == 0 {
		return "", "", false, err
	}
	category, _ := snap.Category(choice - 1)
	return category.Key, category.Name, true, nil
}

func (m *Menu) renameCategory(ctx context.Context, snap session.Snapshot) error {
	key, _, ok, err := m.selectCategory(snap)
	if err != nil || !ok {
		return err
	}
	name, ok, err := m.readText("New name (ENTER to cancel):")
	if err != nil || !ok {
		return err
	}

	if _, err := m.categories.RenameCategory(ctx, m.session.Period(), key, name); err != nil {
		m.println(describe(err))
		return nil
	}
	m.println("Category renamed.")
	return nil
}

func (m *Menu) setCategoryBudget(ctx context.Context, snap session.Snapshot) error {
	key, _, ok, err := m.selectCategory(snap)
	if err != nil || !ok {
		return err
	}
	budget, ok, err := m.readMoney("New budget (ENTER to cancel):")
	if err != nil || !ok {
		return err
	}

	if _, err := m.categories.SetBudget(ctx, m.session.Period(), key, budget); err != nil {
		m.println(describe(err))
		return nil
	}
	m.println("Budget updated.")
	return nil
}

func (m *Menu) deleteCategory(ctx context.Context, snap session.Snapshot) error {
	key, name, ok, err := m.selectCategory(snap)
	if err != nil || !ok {
		return err
	}
	ok, err = m.confirm("Delete category \"" + name + "\"? Its expenses become uncategorized.")
	if err != nil || !ok {
		return err
	}

	if err := m.categories.DeleteCategory(ctx, m.session.Period(), key); err != nil {
		m.println(describe(err))
		return nil
	}
	m.println("Category deleted.")
	return nil
}

func (m *Menu) deleteAllCategories(ctx context.Context) error {
	period := m.session.Period()
	ok, err := m.confirm("Delete all categories of " + period.String() + "?")
	if err != nil || !ok {
		return err
	}

	if err := m.categories.DeleteAllCategories(ctx, period); err != nil {
		m.println(describe(err))
	}
	m.println("All categories deleted.")
	return nil
}

func (m *Menu) copyCategories(ctx context.Context) error {
	copied, err := m.categories.CopyFromPreviousPeriod(ctx, m.session.Period())
	if err != nil {
		m.println(describe(err))
	}
	m.printf("Copied %d categories from %s.\n", copied, util.PreviousPeriod(m.session.Period()))
	return nil
}
