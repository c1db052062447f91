package session

import (
	"sync"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/dafibh/ledger/internal/service"
)

// Cache holds the latest records pushed by the store for one period.
// Push handlers replace whole lists; readers take a Snapshot.
type Cache struct {
	mu         sync.RWMutex
	period     domain.Period
	incomes    []domain.Income
	expenses   []domain.Expense
	categories []domain.Category
}

// NewCache creates an empty cache for period
func NewCache(period domain.Period) *Cache {
	return &Cache{period: period}
}

// Reset empties the cache and points it at period. Pushes for any other
// period are ignored from now on.
func (c *Cache) Reset(period domain.Period) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.period = period
	c.incomes = nil
	c.expenses = nil
	c.categories = nil
}

// Apply replaces the list of scope's collection with records
func (c *Cache) Apply(scope domain.Scope, records []domain.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if scope.Period != c.period {
		return
	}
	switch scope.Collection {
	case domain.CollectionIncome:
		c.incomes = domain.IncomesFromRecords(records)
	case domain.CollectionExpense:
		c.expenses = domain.ExpensesFromRecords(records)
	case domain.CollectionCategories:
		c.categories = domain.CategoriesFromRecords(records)
	}
}

// Snapshot copies the current lists
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		period:     c.period,
		incomes:    append([]domain.Income(nil), c.incomes...),
		expenses:   append([]domain.Expense(nil), c.expenses...),
		categories: append([]domain.Category(nil), c.categories...),
	}
}

// Snapshot is a point-in-time copy of the cache. Positions in a snapshot stay
// valid however the store changes afterwards.
type Snapshot struct {
	period     domain.Period
	incomes    []domain.Income
	expenses   []domain.Expense
	categories []domain.Category
}

func (s Snapshot) Period() domain.Period {
	return s.period
}

func (s Snapshot) Incomes() []domain.Income {
	return append([]domain.Income(nil), s.incomes...)
}

func (s Snapshot) Expenses() []domain.Expense {
	return append([]domain.Expense(nil), s.expenses...)
}

func (s Snapshot) Categories() []domain.Category {
	return append([]domain.Category(nil), s.categories...)
}

// Income returns the income at position i (zero-based)
func (s Snapshot) Income(i int) (domain.Income, bool) {
	if i < 0 || i >= len(s.incomes) {
		return domain.Income{}, false
	}
	return s.incomes[i], true
}

// Expense returns the expense at position i (zero-based)
func (s Snapshot) Expense(i int) (domain.Expense, bool) {
	if i < 0 || i >= len(s.expenses) {
		return domain.Expense{}, false
	}
	return s.expenses[i], true
}

// Category returns the category at position i (zero-based)
func (s Snapshot) Category(i int) (domain.Category, bool) {
	if i < 0 || i >= len(s.categories) {
		return domain.Category{}, false
	}
	return s.categories[i], true
}

// CategoryName resolves a category key, "" when the key is empty or unknown
func (s Snapshot) CategoryName(key string) string {
	if key == "" {
		return ""
	}
	for _, category := range s.categories {
		if category.Key == key {
			return category.Name
		}
	}
	return ""
}

// Summary calculates the period totals from the snapshot
func (s Snapshot) Summary() *domain.PeriodSummary {
	return service.Summarize(s.period, s.incomes, s.expenses, s.categories)
}
