package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LedgerService handles incomes, expenses and period totals
type LedgerService struct {
	store domain.RecordStore
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(store domain.RecordStore) *LedgerService {
	return &LedgerService{store: store}
}

// AddIncome records an income in period
func (s *LedgerService) AddIncome(ctx context.Context, period domain.Period, source string, value decimal.Decimal) (*domain.Income, error) {
	source, err := validateName(source)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(value); err != nil {
		return nil, err
	}

	income := domain.Income{Source: source, Value: value}
	key, err := s.store.Add(ctx, domain.NewScope(period, domain.CollectionIncome), income.Record())
	if err != nil {
		return nil, err
	}
	income.Key = key
	return &income, nil
}

// EditIncome replaces the source and value of an existing income
func (s *LedgerService) EditIncome(ctx context.Context, period domain.Period, key, source string, value decimal.Decimal) error {
	source, err := validateName(source)
	if err != nil {
		return err
	}
	if err := validateAmount(value); err != nil {
		return err
	}

	income := domain.Income{Key: key, Source: source, Value: value}
	return s.store.Update(ctx, domain.NewScope(period, domain.CollectionIncome), key, income.Record())
}

// DeleteIncome removes an income; deleting a missing key succeeds
func (s *LedgerService) DeleteIncome(ctx context.Context, period domain.Period, key string) error {
	return s.store.Delete(ctx, domain.NewScope(period, domain.CollectionIncome), key)
}

// DeleteAllIncomes removes every income of period
func (s *LedgerService) DeleteAllIncomes(ctx context.Context, period domain.Period) error {
	return s.deleteAll(ctx, domain.NewScope(period, domain.CollectionIncome))
}

// GetIncomes lists the incomes of period in insertion order
func (s *LedgerService) GetIncomes(ctx context.Context, period domain.Period) ([]domain.Income, error) {
	records, err := s.store.List(ctx, domain.NewScope(period, domain.CollectionIncome))
	if err != nil {
		return nil, err
	}
	return domain.IncomesFromRecords(records), nil
}

// AddExpense records an expense in period. categoryKey may be empty; otherwise
// it must name a category of the same period.
func (s *LedgerService) AddExpense(ctx context.Context, period domain.Period, source string, value decimal.Decimal, categoryKey string) (*domain.Expense, error) {
	source, err := validateName(source)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(value); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, period, categoryKey); err != nil {
		return nil, err
	}

	expense := domain.Expense{Source: source, Value: value, CategoryKey: categoryKey}
	key, err := s.store.Add(ctx, domain.NewScope(period, domain.CollectionExpense), expense.Record())
	if err != nil {
		return nil, err
	}
	expense.Key = key
	return &expense, nil
}

// EditExpense replaces an existing expense
func (s *LedgerService) EditExpense(ctx context.Context, period domain.Period, key, source string, value decimal.Decimal, categoryKey string) error {
	source, err := validateName(source)
	if err != nil {
		return err
	}
	if err := validateAmount(value); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, period, categoryKey); err != nil {
		return err
	}

	expense := domain.Expense{Key: key, Source: source, Value: value, CategoryKey: categoryKey}
	return s.store.Update(ctx, domain.NewScope(period, domain.CollectionExpense), key, expense.Record())
}

// DeleteExpense removes an expense; deleting a missing key succeeds
func (s *LedgerService) DeleteExpense(ctx context.Context, period domain.Period, key string) error {
	return s.store.Delete(ctx, domain.NewScope(period, domain.CollectionExpense), key)
}

// DeleteAllExpenses removes every expense of period
func (s *LedgerService) DeleteAllExpenses(ctx context.Context, period domain.Period) error {
	return s.deleteAll(ctx, domain.NewScope(period, domain.CollectionExpense))
}

// GetExpenses lists the expenses of period in insertion order
func (s *LedgerService) GetExpenses(ctx context.Context, period domain.Period) ([]domain.Expense, error) {
	records, err := s.store.List(ctx, domain.NewScope(period, domain.CollectionExpense))
	if err != nil {
		return nil, err
	}
	return domain.ExpensesFromRecords(records), nil
}

// DeletePeriod removes every record of period. It keeps going when a collection
// fails and returns all failures joined; nothing is rolled back.
func (s *LedgerService) DeletePeriod(ctx context.Context, period domain.Period) error {
	var errs []error
	for _, collection := range domain.Collections {
		if err := s.deleteAll(ctx, domain.NewScope(period, collection)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetSummary reads the period from the store and calculates its totals
func (s *LedgerService) GetSummary(ctx context.Context, period domain.Period) (*domain.PeriodSummary, error) {
	records, err := s.store.LoadPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	return Summarize(period,
		domain.IncomesFromRecords(records.Incomes),
		domain.ExpensesFromRecords(records.Expenses),
		domain.CategoriesFromRecords(records.Categories),
	), nil
}

func (s *LedgerService) checkCategory(ctx context.Context, period domain.Period, categoryKey string) error {
	if categoryKey == "" {
		return nil
	}

	records, err := s.store.List(ctx, domain.NewScope(period, domain.CollectionCategories))
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Key == categoryKey {
			return nil
		}
	}
	return domain.ErrCategoryNotFound
}

// deleteAll logs failures here because bulk deletes are reported to the user as
// finished either way
func (s *LedgerService) deleteAll(ctx context.Context, scope domain.Scope) error {
	if err := s.store.DeleteAll(ctx, scope); err != nil {
		log.Error().Err(err).Str("scope", scope.Path()).Msg("Failed to delete all records")
		return fmt.Errorf("delete all %s: %w", scope.Collection, err)
	}
	log.Info().Str("scope", scope.Path()).Msg("Deleted all records")
	return nil
}
