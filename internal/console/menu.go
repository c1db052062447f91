package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/dafibh/ledger/internal/service"
	"github.com/dafibh/ledger/internal/session"
	"github.com/dafibh/ledger/internal/util"
	"github.com/rs/zerolog/log"
)

// Exporter publishes a period summary and returns where it was written
type Exporter interface {
	Export(ctx context.Context, summary *domain.PeriodSummary) (string, error)
}

const (
	optAddIncomes = iota + 1
	optAddExpenses
	optManageCategories
	optEditIncome
	optEditExpense
	optSummary
	optBudgetReport
	optChangePeriod
	optDeletePeriod
	optExport
	optExit
)

var mainMenu = []string{
	"Add Incomes",
	"Add Expenses",
	"Manage Categories",
	"Edit/Delete Income",
	"Edit/Delete Expense",
	"Display Summary",
	"Budget Report",
	"Change Period",
	"Delete All Records in Period",
	"Export Period",
	"Exit Program",
}

// Menu is the interactive console of the ledger
type Menu struct {
	scanner    *bufio.Scanner
	out        io.Writer
	session    *session.Session
	ledger     *service.LedgerService
	categories *service.CategoryService
	exporter   Exporter
	now        func() time.Time
}

// New creates a Menu reading from in and writing to out. exporter may be nil,
// in which case the export option reports that exporting is disabled.
func New(in io.Reader, out io.Writer, sess *session.Session, ledger *service.LedgerService, categories *service.CategoryService, exporter Exporter) *Menu {
	return &Menu{
		scanner:    bufio.NewScanner(in),
		out:        out,
		session:    sess,
		ledger:     ledger,
		categories: categories,
		exporter:   exporter,
		now:        time.Now,
	}
}

// Run asks for a period and serves the main menu until the user exits or the
// input ends. Errors of single operations are printed and the menu goes on.
func (m *Menu) Run(ctx context.Context) error {
	m.println("PERSONAL LEDGER")
	if err := m.openPeriod(ctx); err != nil {
		return ignoreClosed(err)
	}
	defer m.session.Close()

	for {
		m.printMainMenu()
		choice, err := m.readChoice(optAddIncomes, optExit)
		if err != nil {
			return ignoreClosed(err)
		}
		if choice == optExit {
			m.println("Goodbye!")
			return nil
		}

		if err := m.dispatch(ctx, choice); err != nil {
			if errors.Is(err, errInputClosed) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Int("option", choice).Msg("Menu operation failed")
			m.println(describe(err))
		}
	}
}

func (m *Menu) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case optAddIncomes:
		return m.addIncomes(ctx)
	case optAddExpenses:
		return m.addExpenses(ctx)
	case optManageCategories:
		return m.manageCategories(ctx)
	case optEditIncome:
		return m.editIncomes(ctx)
	case optEditExpense:
		return m.editExpenses(ctx)
	case optSummary:
		m.printSummary()
		return nil
	case optBudgetReport:
		m.printBudgetReport()
		return nil
	case optChangePeriod:
		return m.changePeriod(ctx)
	case optDeletePeriod:
		return m.deletePeriod(ctx)
	case optExport:
		return m.export(ctx)
	}
	return nil
}

func (m *Menu) printMainMenu() {
	m.println()
	m.printf("PERIOD %s\n", m.session.Period())
	for i, label := range mainMenu {
		m.printf("%d) %s\n", i+1, label)
	}
	m.println("Choose an option:")
}

// readPeriod re-prompts until a valid MM-YYYY period is entered
func (m *Menu) readPeriod() (domain.Period, error) {
	m.println("Enter period (MM-YYYY):")
	for {
		line, err := m.readLine()
		if err != nil {
			return domain.Period{}, err
		}
		period, err := util.ParsePeriodAt(line, m.now())
		if err == nil {
			return period, nil
		}
		m.println(msgInvalidPeriod)
	}
}

func (m *Menu) openPeriod(ctx context.Context) error {
	period, err := m.readPeriod()
	if err != nil {
		return err
	}
	return m.session.Open(ctx, period)
}

func (m *Menu) changePeriod(ctx context.Context) error {
	previous := m.session.Period()
	period, err := m.readPeriod()
	if err != nil {
		return err
	}

	if err := m.session.Open(ctx, period); err != nil {
		if reopenErr := m.session.Open(ctx, previous); reopenErr != nil {
			return errors.Join(err, reopenErr)
		}
		return err
	}
	m.printf("Now working on %s\n", period)
	return nil
}

func (m *Menu) deletePeriod(ctx context.Context) error {
	period := m.session.Period()
	ok, err := m.confirm("Delete ALL incomes, expenses and categories of " + period.String() + "?")
	if err != nil || !ok {
		return err
	}

	if err := m.ledger.DeletePeriod(ctx, period); err != nil {
		m.printf("Some records could not be deleted: %v\n", err)
	}
	m.printf("Records of %s deleted.\n", period)
	return nil
}

func ignoreClosed(err error) error {
	if errors.Is(err, errInputClosed) {
		return nil
	}
	return err
}

// describe turns an operation error into the line shown to the user
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return "Name cannot be empty."
	case errors.Is(err, domain.ErrNameTooLong):
		return fmt.Sprintf("Name must be at most %d characters.", domain.MaxNameLength)
	case errors.Is(err, domain.ErrInvalidAmount):
		return fmt.Sprintf("Amount must be between 0 and %s with at most 2 decimal places.", util.FormatMoney(domain.MaxAmount))
	case errors.Is(err, domain.ErrRecordNotFound):
		return "That record no longer exists."
	case errors.Is(err, domain.ErrCategoryNotFound):
		return "That category no longer exists."
	case errors.Is(err, domain.ErrExportDisabled):
		return "Export is disabled. Set EXPORT_S3_BUCKET to enable it."
	}
	return "Error: " + err.Error()
}
