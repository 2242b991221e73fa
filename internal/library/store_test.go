package library_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"libris/internal/library"
	"libris/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.Healthy() {
		t.Fatalf("expected healthy database, got %#v", health)
	}
	if health.SchemaVersion != 1 {
		t.Fatalf("expected schema version 1, got %d", health.SchemaVersion)
	}
	if store.Path() != cfg.DatabasePath() {
		t.Fatalf("unexpected path %q", store.Path())
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	book := testsupport.SeedBook(t, store, "Persisted", 2)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	fetched, err := reopened.GetBook(context.Background(), book.ID)
	if err != nil {
		t.Fatalf("GetBook after reopen failed: %v", err)
	}
	if fetched.Title != "Persisted" || fetched.Stock != 2 {
		t.Fatalf("unexpected book after reopen: %#v", fetched)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", cfg.DatabasePath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := library.Open(cfg); !errors.Is(err, library.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestAddBookNormalizesAndDefaultsStock(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDefaultStock(3))
	store := testsupport.MustOpenStore(t, cfg)

	book, err := store.AddBook(context.Background(), library.NewBook{
		Title:         library.Some("  Cafe\u0301 Stories  "),
		Author:        library.Some("A. Writer"),
		YearPublished: library.Some(1999),
	})
	if err != nil {
		t.Fatalf("AddBook failed: %v", err)
	}
	if book.Title != "Caf\u00e9 Stories" {
		t.Fatalf("expected trimmed NFC title, got %q", book.Title)
	}
	if book.Stock != 3 {
		t.Fatalf("expected default stock 3, got %d", book.Stock)
	}
	if book.CreatedAt.IsZero() || book.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps, got %#v", book)
	}
}

func TestAddBookValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	cases := []struct {
		name string
		in   library.NewBook
		code string
	}{
		{
			name: "missing title",
			in:   library.NewBook{Author: library.Some("a"), YearPublished: library.Some(2000)},
			code: library.CodeMissingField,
		},
		{
			name: "blank author",
			in:   library.NewBook{Title: library.Some("t"), Author: library.Some("   "), YearPublished: library.Some(2000)},
			code: library.CodeMissingField,
		},
		{
			name: "null year",
			in:   library.NewBook{Title: library.Some("t"), Author: library.Some("a"), YearPublished: library.Null[int]()},
			code: library.CodeMissingField,
		},
		{
			name: "negative stock",
			in:   library.NewBook{Title: library.Some("t"), Author: library.Some("a"), YearPublished: library.Some(2000), Stock: library.Some(-1)},
			code: library.CodeInvalidField,
		},
		{
			name: "null stock",
			in:   library.NewBook{Title: library.Some("t"), Author: library.Some("a"), YearPublished: library.Some(2000), Stock: library.Null[int]()},
			code: library.CodeInvalidField,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.AddBook(ctx, tc.in)
			assertDomainError(t, err, library.ErrInvalidInput, tc.code)
		})
	}

	books, err := store.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks failed: %v", err)
	}
	if len(books) != 0 {
		t.Fatalf("expected no books persisted, got %d", len(books))
	}
}

func TestAddBookAcceptsZeroYearAndStock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	book, err := store.AddBook(context.Background(), library.NewBook{
		Title:         library.Some("Ancient"),
		Author:        library.Some("Unknown"),
		YearPublished: library.Some(0),
		Stock:         library.Some(0),
	})
	if err != nil {
		t.Fatalf("AddBook failed: %v", err)
	}
	if book.YearPublished != 0 || book.Stock != 0 {
		t.Fatalf("expected zero values preserved, got %#v", book)
	}
}

func TestUpdateBookAppliesOnlyPresentFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	book := testsupport.SeedBook(t, store, "Original", 4)

	updated, err := store.UpdateBook(ctx, book.ID, library.BookPatch{
		Title: library.Some("Renamed"),
		Stock: library.Some(0),
	})
	if err != nil {
		t.Fatalf("UpdateBook failed: %v", err)
	}
	if updated.Title != "Renamed" || updated.Stock != 0 {
		t.Fatalf("expected title and stock changed, got %#v", updated)
	}
	if updated.Author != book.Author || updated.YearPublished != book.YearPublished {
		t.Fatalf("expected absent fields untouched, got %#v", updated)
	}

	if _, err := store.UpdateBook(ctx, book.ID, library.BookPatch{Title: library.Null[string]()}); !errors.Is(err, library.ErrInvalidInput) {
		t.Fatalf("expected invalid input for null title, got %v", err)
	}
	if _, err := store.UpdateBook(ctx, book.ID, library.BookPatch{Title: library.Some(" ")}); !errors.Is(err, library.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank title, got %v", err)
	}
	if _, err := store.UpdateBook(ctx, 999, library.BookPatch{Title: library.Some("x")}); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetBookNotFoundMessage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.GetBook(context.Background(), 999)
	domainErr, ok := library.AsError(err)
	if !ok {
		t.Fatalf("expected domain error, got %v", err)
	}
	if domainErr.Message != "Book not found" || domainErr.Code != "" {
		t.Fatalf("unexpected error %#v", domainErr)
	}
}

func TestUserLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.AddUser(ctx, library.NewUser{Name: library.Some("Ann"), Age: library.Some(40)}); !errors.Is(err, library.ErrInvalidInput) {
		t.Fatalf("expected missing city to be rejected, got %v", err)
	}
	if _, err := store.AddUser(ctx, library.NewUser{Name: library.Some("Ann"), City: library.Some("Oslo"), Age: library.Some(-2)}); !errors.Is(err, library.ErrInvalidInput) {
		t.Fatalf("expected negative age to be rejected, got %v", err)
	}

	user, err := store.AddUser(ctx, library.NewUser{Name: library.Some("Ann"), City: library.Some("Oslo"), Age: library.Some(40)})
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	updated, err := store.UpdateUser(ctx, user.ID, library.UserPatch{Age: library.Some(0)})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if updated.Age != 0 || updated.Name != "Ann" || updated.City != "Oslo" {
		t.Fatalf("unexpected updated user %#v", updated)
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 || users[0].ID != user.ID {
		t.Fatalf("unexpected users %#v", users)
	}

	if _, err := store.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := store.GetUser(ctx, user.ID); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
	if _, err := store.DeleteUser(ctx, user.ID); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeleteRejectsActiveLoans(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	book := testsupport.SeedBook(t, store, "Busy", 1)
	user := testsupport.SeedUser(t, store, "Reader")
	loan := testsupport.SeedLoan(t, store, book.ID, user.ID)

	_, err := store.DeleteBook(ctx, book.ID)
	assertDomainError(t, err, library.ErrInvalidState, library.CodeActiveLoans)
	_, err = store.DeleteUser(ctx, user.ID)
	assertDomainError(t, err, library.ErrInvalidState, library.CodeActiveLoans)

	if _, err := store.ReturnLoan(ctx, loan.ID); err != nil {
		t.Fatalf("ReturnLoan failed: %v", err)
	}
	if _, err := store.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("DeleteBook after return failed: %v", err)
	}
	if _, err := store.GetLoan(ctx, loan.ID); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected returned loan removed with its book, got %v", err)
	}
}

func TestStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	book := testsupport.SeedBook(t, store, "Counted", 3)
	testsupport.SeedBook(t, store, "Other", 2)
	user := testsupport.SeedUser(t, store, "Reader")
	testsupport.SeedLoan(t, store, book.ID, user.ID)

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := library.Stats{Books: 2, Users: 1, Loans: 1, ActiveLoans: 1, CopiesOnShelf: 4}
	if stats != want {
		t.Fatalf("Stats = %#v, want %#v", stats, want)
	}
}

func assertDomainError(t *testing.T, err error, kind error, code string) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	domainErr, ok := library.AsError(err)
	if !ok {
		t.Fatalf("expected *library.Error, got %T", err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %q, got %q (%v)", code, domainErr.Code, err)
	}
}

func mustStock(t *testing.T, store *library.Store, bookID int64) int {
	t.Helper()
	book, err := store.GetBook(context.Background(), bookID)
	if err != nil {
		t.Fatalf("GetBook(%d): %v", bookID, err)
	}
	return book.Stock
}
