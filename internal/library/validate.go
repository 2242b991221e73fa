package library

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeText trims surrounding whitespace and applies NFC so visually equal
// titles and names compare equal in SQLite.
func normalizeText(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}

// requiredText returns the normalized value, or false when absent, null or blank.
func requiredText(field Optional[string]) (string, bool) {
	value, ok := field.Get()
	if !ok {
		return "", false
	}
	value = normalizeText(value)
	return value, value != ""
}

func missingFields(message string) *Error {
	return invalidInput(CodeMissingField, message)
}

func invalidField(name, reason string) *Error {
	return invalidInput(CodeInvalidField, fmt.Sprintf("%s %s", name, reason))
}

type nullCheck struct {
	name string
	null bool
}

func isNull[T any](name string, field Optional[T]) nullCheck {
	return nullCheck{name: name, null: field.Set && field.Null}
}

// rejectNull reports the first field that was explicitly sent as null.
func rejectNull(checks ...nullCheck) error {
	for _, check := range checks {
		if check.null {
			return invalidField(check.name, "must not be null")
		}
	}
	return nil
}

func validateStock(stock int) error {
	if stock < 0 {
		return invalidField("stock", "must be zero or greater")
	}
	return nil
}

func validateAge(age int) error {
	if age < 0 {
		return invalidField("age", "must be zero or greater")
	}
	return nil
}

// validateLoanLength enforces the configured inclusive loan length range.
func (s *Store) validateLoanLength(length int) error {
	minDays, maxDays := s.loans.MinLengthDays, s.loans.MaxLengthDays
	if minDays <= 0 {
		minDays = 1
	}
	if maxDays < minDays {
		maxDays = 365
	}
	if length < minDays || length > maxDays {
		return invalidInput(CodeLoanLengthRange,
			fmt.Sprintf("Loan length must be between %d and %d days", minDays, maxDays))
	}
	return nil
}

func (s *Store) defaultStock() int {
	if s.loans.DefaultBookStock < 0 {
		return 0
	}
	return s.loans.DefaultBookStock
}

func validateNewBook(in NewBook) (title, author string, year int, err error) {
	title, okTitle := requiredText(in.Title)
	author, okAuthor := requiredText(in.Author)
	year, okYear := in.YearPublished.Get()
	if !okTitle || !okAuthor || !okYear {
		return "", "", 0, missingFields("Title, author and publishing year are required fields")
	}
	if err := rejectNull(isNull("stock", in.Stock)); err != nil {
		return "", "", 0, err
	}
	if stock, ok := in.Stock.Get(); ok {
		if err := validateStock(stock); err != nil {
			return "", "", 0, err
		}
	}
	return title, author, year, nil
}

func validateNewUser(in NewUser) (name, city string, age int, err error) {
	name, okName := requiredText(in.Name)
	city, okCity := requiredText(in.City)
	age, okAge := in.Age.Get()
	if !okName || !okCity || !okAge {
		return "", "", 0, missingFields("Full name, city and age are required fields")
	}
	if err := validateAge(age); err != nil {
		return "", "", 0, err
	}
	return name, city, age, nil
}

func validateNewLoan(in NewLoan) error {
	if !in.BookID.Present() || !in.UserID.Present() || !in.LoanDate.Present() || !in.LoanLength.Present() {
		return missingFields("Book ID, user ID, loan date and loan length are required.")
	}
	return nil
}

// patchText validates an optional text field: null and blank values are rejected.
func patchText(name string, field Optional[string]) (string, bool, error) {
	if !field.Set {
		return "", false, nil
	}
	if field.Null {
		return "", false, invalidField(name, "must not be null")
	}
	value := normalizeText(field.Value)
	if value == "" {
		return "", false, invalidField(name, "must not be empty")
	}
	return value, true, nil
}
