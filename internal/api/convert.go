package api

import "libris/internal/library"

// FromBook converts a library book into its transport form.
func FromBook(book *library.Book) Book {
	if book == nil {
		return Book{}
	}
	return Book{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		YearPublished: book.YearPublished,
		Stock:         book.Stock,
	}
}

// FromBooks converts a slice, never returning nil so lists encode as [].
func FromBooks(books []*library.Book) []Book {
	out := make([]Book, 0, len(books))
	for _, book := range books {
		if book == nil {
			continue
		}
		out = append(out, FromBook(book))
	}
	return out
}

func FromUser(user *library.User) User {
	if user == nil {
		return User{}
	}
	return User{ID: user.ID, Name: user.Name, City: user.City, Age: user.Age}
}

func FromUsers(users []*library.User) []User {
	out := make([]User, 0, len(users))
	for _, user := range users {
		if user == nil {
			continue
		}
		out = append(out, FromUser(user))
	}
	return out
}

func FromLoan(loan *library.Loan) Loan {
	if loan == nil {
		return Loan{}
	}
	return Loan{
		ID:         loan.ID,
		BookID:     loan.BookID,
		UserID:     loan.UserID,
		LoanDate:   loan.LoanDate,
		LoanLength: loan.LoanLength,
		Returned:   loan.Returned,
	}
}

func FromLoans(loans []*library.Loan) []Loan {
	out := make([]Loan, 0, len(loans))
	for _, loan := range loans {
		if loan == nil {
			continue
		}
		out = append(out, FromLoan(loan))
	}
	return out
}

// FromStats converts store counts.
func FromStats(stats library.Stats) Stats {
	return Stats{
		Books:         stats.Books,
		Users:         stats.Users,
		Loans:         stats.Loans,
		ActiveLoans:   stats.ActiveLoans,
		CopiesOnShelf: stats.CopiesOnShelf,
	}
}

// FromHealth converts a database health report.
func FromHealth(health library.DatabaseHealth) DatabaseHealth {
	return DatabaseHealth{
		Path:             health.DBPath,
		Healthy:          health.Healthy(),
		DatabaseExists:   health.DatabaseExists,
		DatabaseReadable: health.DatabaseReadable,
		SchemaVersion:    health.SchemaVersion,
		MissingTables:    append([]string(nil), health.MissingTables...),
		IntegrityCheck:   health.IntegrityCheck,
		Error:            health.Error,
	}
}

// FromError builds the error body for a domain failure. Anything that is not
// a *library.Error is reported generically so storage details stay private.
func FromError(err error) ErrorResponse {
	if domainErr, ok := library.AsError(err); ok {
		return ErrorResponse{Error: domainErr.Message, Code: domainErr.Code}
	}
	return ErrorResponse{Error: "Internal server error"}
}
