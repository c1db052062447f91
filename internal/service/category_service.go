package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/dafibh/ledger/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CategoryService handles budget categories and keeps expense references consistent
type CategoryService struct {
	store domain.RecordStore
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(store domain.RecordStore) *CategoryService {
	return &CategoryService{store: store}
}

// CreateCategory adds a category with a budget to period
func (s *CategoryService) CreateCategory(ctx context.Context, period domain.Period, name string, budget decimal.Decimal) (*domain.Category, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(budget); err != nil {
		return nil, err
	}

	category := domain.Category{Name: name, Budget: budget}
	key, err := s.store.Add(ctx, categoryScope(period), category.Record())
	if err != nil {
		return nil, err
	}
	category.Key = key
	return &category, nil
}

// GetCategories lists the categories of period in insertion order
func (s *CategoryService) GetCategories(ctx context.Context, period domain.Period) ([]domain.Category, error) {
	records, err := s.store.List(ctx, categoryScope(period))
	if err != nil {
		return nil, err
	}
	return domain.CategoriesFromRecords(records), nil
}

// GetCategoryByKey finds a category of period
func (s *CategoryService) GetCategoryByKey(ctx context.Context, period domain.Period, key string) (*domain.Category, error) {
	categories, err := s.GetCategories(ctx, period)
	if err != nil {
		return nil, err
	}
	for _, category := range categories {
		if category.Key == key {
			return &category, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// RenameCategory changes a category's name. Expenses reference categories by
// key, so they need no update.
func (s *CategoryService) RenameCategory(ctx context.Context, period domain.Period, key, name string) (*domain.Category, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	category, err := s.GetCategoryByKey(ctx, period, key)
	if err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.store.Update(ctx, categoryScope(period), key, category.Record()); err != nil {
		return nil, err
	}
	return category, nil
}

// SetBudget changes a category's budget
func (s *CategoryService) SetBudget(ctx context.Context, period domain.Period, key string, budget decimal.Decimal) (*domain.Category, error) {
	if err := validateAmount(budget); err != nil {
		return nil, err
	}

	category, err := s.GetCategoryByKey(ctx, period, key)
	if err != nil {
		return nil, err
	}

	category.Budget = budget
	if err := s.store.Update(ctx, categoryScope(period), key, category.Record()); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory clears the category from every expense that references it and
// then deletes it. Deleting a missing category succeeds.
func (s *CategoryService) DeleteCategory(ctx context.Context, period domain.Period, key string) error {
	cleared, err := s.clearReferences(ctx, period, func(categoryKey string) bool {
		return categoryKey == key
	})
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, categoryScope(period), key); err != nil {
		return err
	}

	log.Debug().
		Str("period", period.String()).
		Str("category_key", key).
		Int("expenses_cleared", cleared).
		Msg("Deleted category")
	return nil
}

// DeleteAllCategories uncategorizes every expense of period and removes all categories
func (s *CategoryService) DeleteAllCategories(ctx context.Context, period domain.Period) error {
	if _, err := s.clearReferences(ctx, period, func(categoryKey string) bool {
		return categoryKey != ""
	}); err != nil {
		log.Error().Err(err).Str("period", period.String()).Msg("Failed to clear expense categories")
		return fmt.Errorf("clear expense categories: %w", err)
	}

	if err := s.store.DeleteAll(ctx, categoryScope(period)); err != nil {
		log.Error().Err(err).Str("period", period.String()).Msg("Failed to delete all categories")
		return fmt.Errorf("delete all categories: %w", err)
	}
	return nil
}

// CopyFromPreviousPeriod copies the categories of the period before period,
// skipping names period already has (case-insensitive). Returns how many were copied.
func (s *CategoryService) CopyFromPreviousPeriod(ctx context.Context, period domain.Period) (int, error) {
	previous, err := s.GetCategories(ctx, util.PreviousPeriod(period))
	if err != nil {
		return 0, err
	}
	current, err := s.GetCategories(ctx, period)
	if err != nil {
		return 0, err
	}

	existing := make(map[string]bool, len(current))
	for _, category := range current {
		existing[strings.ToLower(category.Name)] = true
	}

	copied := 0
	for _, category := range previous {
		if existing[strings.ToLower(category.Name)] {
			continue
		}
		if _, err := s.CreateCategory(ctx, period, category.Name, category.Budget); err != nil {
			return copied, err
		}
		existing[strings.ToLower(category.Name)] = true
		copied++
	}
	return copied, nil
}

// clearReferences uncategorizes the expenses of period whose category key matches
func (s *CategoryService) clearReferences(ctx context.Context, period domain.Period, match func(string) bool) (int, error) {
	scope := domain.NewScope(period, domain.CollectionExpense)
	records, err := s.store.List(ctx, scope)
	if err != nil {
		return 0, err
	}

	cleared := 0
	for _, rec := range records {
		if !match(rec.CategoryKey) {
			continue
		}
		rec.CategoryKey = ""
		if err := s.store.Update(ctx, scope, rec.Key, rec); err != nil {
			return cleared, fmt.Errorf("clear category of expense %s: %w", rec.Key, err)
		}
		cleared++
	}
	return cleared, nil
}

func categoryScope(period domain.Period) domain.Scope {
	return domain.NewScope(period, domain.CollectionCategories)
}
