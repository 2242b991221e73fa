package testsupport

import (
	"context"
	"testing"

	"libris/internal/config"
	"libris/internal/library"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedBook adds a book with the given stock.
func SeedBook(t testing.TB, store *library.Store, title string, stock int) *library.Book {
	t.Helper()

	book, err := store.AddBook(context.Background(), library.NewBook{
		Title:         library.Some(title),
		Author:        library.Some("Test Author"),
		YearPublished: library.Some(2001),
		Stock:         library.Some(stock),
	})
	if err != nil {
		t.Fatalf("store.AddBook: %v", err)
	}
	return book
}

// SeedUser adds a user with placeholder city and age.
func SeedUser(t testing.TB, store *library.Store, name string) *library.User {
	t.Helper()

	user, err := store.AddUser(context.Background(), library.NewUser{
		Name: library.Some(name),
		City: library.Some("Springfield"),
		Age:  library.Some(30),
	})
	if err != nil {
		t.Fatalf("store.AddUser: %v", err)
	}
	return user
}

// SeedLoan issues a 14 day loan dated 20240101.
func SeedLoan(t testing.TB, store *library.Store, bookID, userID int64) *library.Loan {
	t.Helper()

	loan, err := store.CreateLoan(context.Background(), library.NewLoan{
		BookID:     library.Some(bookID),
		UserID:     library.Some(userID),
		LoanDate:   library.Some(int64(20240101)),
		LoanLength: library.Some(14),
	})
	if err != nil {
		t.Fatalf("store.CreateLoan: %v", err)
	}
	return loan
}
