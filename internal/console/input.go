package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dafibh/ledger/internal/util"
	"github.com/shopspring/decimal"
)

// errInputClosed ends the menu loop when the input reaches EOF
var errInputClosed = errors.New("input closed")

const (
	msgInvalidOption = "Invalid option. Please try again:"
	msgInvalidValue  = "Invalid value. Please try again:"
	msgInvalidPeriod = "Invalid period. Please try again:"
)

func (m *Menu) println(a ...any) {
	fmt.Fprintln(m.out, a...)
}

func (m *Menu) printf(format string, a ...any) {
	fmt.Fprintf(m.out, format, a...)
}

// readLine returns the next input line without surrounding spaces
func (m *Menu) readLine() (string, error) {
	if !m.scanner.Scan() {
		if err := m.scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(m.scanner.Text()), nil
}

// readChoice re-prompts until the line is a number within [low, high]
func (m *Menu) readChoice(low, high int) (int, error) {
	for {
		line, err := m.readLine()
		if err != nil {
			return 0, err
		}
		choice, err := strconv.Atoi(line)
		if err == nil && choice >= low && choice <= high {
			return choice, nil
		}
		m.println(msgInvalidOption)
	}
}

// readText prompts for a free text value. ok is false when the line is empty.
func (m *Menu) readText(prompt string) (text string, ok bool, err error) {
	m.println(prompt)
	line, err := m.readLine()
	if err != nil {
		return "", false, err
	}
	return line, line != "", nil
}

// readMoney re-prompts until the line is a valid amount. An empty line cancels
// and reports ok=false; zero is a valid amount.
func (m *Menu) readMoney(prompt string) (decimal.Decimal, bool, error) {
	m.println(prompt)
	for {
		line, err := m.readLine()
		if err != nil {
			return decimal.Zero, false, err
		}
		if line == "" {
			return decimal.Zero, false, nil
		}
		amount, err := util.ParseMoney(line)
		if err == nil {
			return amount, true, nil
		}
		m.println(msgInvalidValue)
	}
}

// confirm asks a yes/no question until the answer is y or n
func (m *Menu) confirm(question string) (bool, error) {
	m.printf("%s (y/n)\n", question)
	for {
		line, err := m.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		m.println("Please answer 'y' or 'n':")
	}
}

// continueAdding reads the "another one?" answer of the add loops
func (m *Menu) continueAdding(noun string) (bool, error) {
	m.printf("To add another %s, press ENTER. To finish, press 'q' then ENTER\n", noun)
	line, err := m.readLine()
	if err != nil {
		return false, err
	}
	return !strings.EqualFold(line, "q"), nil
}
