package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	bookColumns = "id, title, author, year_published, stock, created_at, updated_at"
	userColumns = "id, name, city, age, created_at, updated_at"
	loanColumns = "id, book_id, user_id, loan_date, loan_length, returned, copy_held, created_at, updated_at"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanBook(scanner rowScanner) (*Book, error) {
	var (
		book                   Book
		createdRaw, updatedRaw string
	)
	if err := scanner.Scan(&book.ID, &book.Title, &book.Author, &book.YearPublished, &book.Stock, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	book.CreatedAt, _ = parseTimeString(createdRaw)
	book.UpdatedAt, _ = parseTimeString(updatedRaw)
	return &book, nil
}

func scanUser(scanner rowScanner) (*User, error) {
	var (
		user                   User
		createdRaw, updatedRaw string
	)
	if err := scanner.Scan(&user.ID, &user.Name, &user.City, &user.Age, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	user.CreatedAt, _ = parseTimeString(createdRaw)
	user.UpdatedAt, _ = parseTimeString(updatedRaw)
	return &user, nil
}

func scanLoan(scanner rowScanner) (*Loan, error) {
	var (
		loan                   Loan
		returned, copyHeld     int
		createdRaw, updatedRaw string
	)
	if err := scanner.Scan(&loan.ID, &loan.BookID, &loan.UserID, &loan.LoanDate, &loan.LoanLength, &returned, &copyHeld, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	loan.Returned = returned != 0
	loan.CopyHeld = copyHeld != 0
	loan.CreatedAt, _ = parseTimeString(createdRaw)
	loan.UpdatedAt, _ = parseTimeString(updatedRaw)
	return &loan, nil
}

// fetchBook loads a book by id, returning NotFound("Book") when absent.
func fetchBook(ctx context.Context, q queryer, id int64) (*Book, error) {
	book, err := scanBook(q.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM book WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("Book")
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return book, nil
}

func fetchUser(ctx context.Context, q queryer, id int64) (*User, error) {
	user, err := scanUser(q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM user WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("User")
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

func fetchLoan(ctx context.Context, q queryer, id int64) (*Loan, error) {
	loan, err := scanLoan(q.QueryRowContext(ctx, "SELECT "+loanColumns+" FROM loan WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("Loan")
	}
	if err != nil {
		return nil, fmt.Errorf("get loan %d: %w", id, err)
	}
	return loan, nil
}

func countActiveLoans(ctx context.Context, q queryer, column string, id int64) (int, error) {
	var count int
	query := "SELECT COUNT(1) FROM loan WHERE returned = 0 AND " + column + " = ?"
	if err := q.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active loans: %w", err)
	}
	return count, nil
}

// takeCopy decrements a book's stock only when a copy is available.
func takeCopy(ctx context.Context, tx *sql.Tx, bookID int64, now string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE book SET stock = stock - 1, updated_at = ? WHERE id = ? AND stock > 0", now, bookID)
	if err != nil {
		return fmt.Errorf("decrement stock for book %d: %w", bookID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock for book %d: %w", bookID, err)
	}
	if affected == 0 {
		return outOfStock()
	}
	return nil
}

// restoreCopy puts a held copy back on the shelf. A missing book is ignored.
func restoreCopy(ctx context.Context, tx *sql.Tx, bookID int64, now string) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE book SET stock = stock + 1, updated_at = ? WHERE id = ?", now, bookID); err != nil {
		return fmt.Errorf("restore stock for book %d: %w", bookID, err)
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
