package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/dafibh/ledger/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// PeriodHandler serves read-only views of a period
type PeriodHandler struct {
	ledgerService *service.LedgerService
	store         domain.RecordStore
	now           func() time.Time
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler(ledgerService *service.LedgerService, store domain.RecordStore) *PeriodHandler {
	return &PeriodHandler{
		ledgerService: ledgerService,
		store:         store,
		now:           time.Now,
	}
}

// EntryResponse represents an income or expense in API responses
type EntryResponse struct {
	Key         string `json:"key"`
	Source      string `json:"source"`
	Value       string `json:"value"`
	CategoryKey string `json:"categoryKey,omitempty"`
}

// SummaryResponse represents the totals of a period
type SummaryResponse struct {
	Period        string          `json:"period"`
	Incomes       []EntryResponse `json:"incomes"`
	Expenses      []EntryResponse `json:"expenses"`
	TotalIncome   string          `json:"totalIncome"`
	TotalExpenses string          `json:"totalExpenses"`
	Balance       string          `json:"balance"`
}

// BudgetLineResponse represents one category of a budget report
type BudgetLineResponse struct {
	CategoryKey  string `json:"categoryKey"`
	CategoryName string `json:"categoryName"`
	Budget       string `json:"budget"`
	Spent        string `json:"spent"`
	Remaining    string `json:"remaining"`
	Overspent    bool   `json:"overspent"`
}

// BudgetResponse represents the budget report of a period
type BudgetResponse struct {
	Period             string               `json:"period"`
	Lines              []BudgetLineResponse `json:"lines"`
	TotalBudget        string               `json:"totalBudget"`
	UncategorizedSpent string               `json:"uncategorizedSpent"`
}

// RecordResponse represents a stored record
type RecordResponse struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Amount      string `json:"amount"`
	CategoryKey string `json:"categoryKey,omitempty"`
}

// GetSummary handles GET /api/v1/periods/:year/:month/summary
func (h *PeriodHandler) GetSummary(c echo.Context) error {
	period, validationErrors := h.parsePeriod(c)
	if validationErrors != nil {
		return NewValidationError(c, "Invalid period", validationErrors)
	}

	summary, err := h.ledgerService.GetSummary(c.Request().Context(), period)
	if err != nil {
		log.Error().Err(err).Str("period", period.String()).Msg("Failed to get summary")
		return NewInternalError(c, "Failed to get summary")
	}

	return c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// GetBudget handles GET /api/v1/periods/:year/:month/budget
func (h *PeriodHandler) GetBudget(c echo.Context) error {
	period, validationErrors := h.parsePeriod(c)
	if validationErrors != nil {
		return NewValidationError(c, "Invalid period", validationErrors)
	}

	summary, err := h.ledgerService.GetSummary(c.Request().Context(), period)
	if err != nil {
		log.Error().Err(err).Str("period", period.String()).Msg("Failed to get budget report")
		return NewInternalError(c, "Failed to get budget report")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(summary))
}

// GetRecords handles GET /api/v1/periods/:year/:month/records/:collection
func (h *PeriodHandler) GetRecords(c echo.Context) error {
	period, validationErrors := h.parsePeriod(c)
	if validationErrors != nil {
		return NewValidationError(c, "Invalid period", validationErrors)
	}

	collection := domain.Collection(c.Param("collection"))
	if !collection.Valid() {
		return NewNotFoundError(c, "Unknown collection")
	}

	records, err := h.store.List(c.Request().Context(), domain.NewScope(period, collection))
	if err != nil {
		log.Error().Err(err).Str("period", period.String()).Str("collection", string(collection)).Msg("Failed to list records")
		return NewInternalError(c, "Failed to list records")
	}

	response := make([]RecordResponse, len(records))
	for i, rec := range records {
		response[i] = RecordResponse{
			Key:         rec.Key,
			Label:       rec.Label,
			Amount:      rec.Amount.StringFixed(2),
			CategoryKey: rec.CategoryKey,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// parsePeriod reads the :year and :month path params. Future years are rejected.
func (h *PeriodHandler) parsePeriod(c echo.Context) (domain.Period, []ValidationError) {
	var errs []ValidationError

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 || year > h.now().Year() {
		errs = append(errs, ValidationError{Field: "year", Message: "Year must be a number no later than the current year"})
	}

	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		errs = append(errs, ValidationError{Field: "month", Message: "Month must be between 1 and 12"})
	}

	if errs != nil {
		return domain.Period{}, errs
	}
	return domain.Period{Year: year, Month: month}, nil
}

func toSummaryResponse(s *domain.PeriodSummary) SummaryResponse {
	incomes := make([]EntryResponse, len(s.Incomes))
	for i, income := range s.Incomes {
		incomes[i] = EntryResponse{
			Key:    income.Key,
			Source: income.Source,
			Value:  income.Value.StringFixed(2),
		}
	}

	expenses := make([]EntryResponse, len(s.Expenses))
	for i, expense := range s.Expenses {
		expenses[i] = EntryResponse{
			Key:         expense.Key,
			Source:      expense.Source,
			Value:       expense.Value.StringFixed(2),
			CategoryKey: expense.CategoryKey,
		}
	}

	return SummaryResponse{
		Period:        s.Period.String(),
		Incomes:       incomes,
		Expenses:      expenses,
		TotalIncome:   s.TotalIncome.StringFixed(2),
		TotalExpenses: s.TotalExpenses.StringFixed(2),
		Balance:       s.Balance.StringFixed(2),
	}
}

func toBudgetResponse(s *domain.PeriodSummary) BudgetResponse {
	lines := make([]BudgetLineResponse, len(s.Budget))
	for i, line := range s.Budget {
		lines[i] = BudgetLineResponse{
			CategoryKey:  line.CategoryKey,
			CategoryName: line.CategoryName,
			Budget:       line.Budget.StringFixed(2),
			Spent:        line.Spent.StringFixed(2),
			Remaining:    line.Remaining.StringFixed(2),
			Overspent:    line.Overspent(),
		}
	}

	return BudgetResponse{
		Period:             s.Period.String(),
		Lines:              lines,
		TotalBudget:        s.TotalBudget.StringFixed(2),
		UncategorizedSpent: s.UncategorizedSpent.StringFixed(2),
	}
}
