package library

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ListLoans returns loans matching filter ordered by id.
func (s *Store) ListLoans(ctx context.Context, filter LoanFilter) ([]*Loan, error) {
	ctx = ensureContext(ctx)

	var (
		clauses []string
		args    []any
	)
	if filter.Returned != nil {
		clauses = append(clauses, "returned = ?")
		args = append(args, boolToInt(*filter.Returned))
	}
	if filter.BookID != nil {
		clauses = append(clauses, "book_id = ?")
		args = append(args, *filter.BookID)
	}
	if filter.UserID != nil {
		clauses = append(clauses, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	query := "SELECT " + loanColumns + " FROM loan"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []*Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// GetLoan fetches a loan by id.
func (s *Store) GetLoan(ctx context.Context, id int64) (*Loan, error) {
	return fetchLoan(ensureContext(ctx), s.db, id)
}

// CreateLoan issues a book to a user. Preconditions are checked in order:
// the book exists, the user exists, a copy is on the shelf, and the loan
// length is in range. The loan row and the stock decrement commit together.
func (s *Store) CreateLoan(ctx context.Context, in NewLoan) (*Loan, error) {
	if err := validateNewLoan(in); err != nil {
		return nil, err
	}
	bookID, userID := in.BookID.Value, in.UserID.Value

	var loan *Loan
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		book, err := fetchBook(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if _, err := fetchUser(ctx, tx, userID); err != nil {
			return err
		}
		if book.Stock <= 0 {
			return outOfStock()
		}
		if err := s.validateLoanLength(in.LoanLength.Value); err != nil {
			return err
		}

		now := timestamp()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO loan (book_id, user_id, loan_date, loan_length, returned, copy_held, created_at, updated_at)
			 VALUES (?, ?, ?, ?, 0, 1, ?, ?)`,
			bookID, userID, in.LoanDate.Value, in.LoanLength.Value, now, now)
		if err != nil {
			return fmt.Errorf("insert loan: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("loan id: %w", err)
		}
		if err := takeCopy(ctx, tx, bookID, now); err != nil {
			return err
		}
		loan, err = fetchLoan(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// UpdateLoan applies the present fields of patch.
//
// Stock follows the copy the loan holds:
//   - returned false->true puts the copy back on the loan's book, once;
//   - returned true->false takes nothing from the shelf;
//   - moving an unreturned loan to another book moves the copy with it, failing
//     with OutOfStock when the new book has none.
//
// When one patch both moves and returns a loan, the copy moves first and is
// then returned to the new book, so the move still needs a copy on its shelf.
func (s *Store) UpdateLoan(ctx context.Context, id int64, patch LoanPatch) (*Loan, error) {
	if err := rejectNull(
		isNull("book_id", patch.BookID),
		isNull("user_id", patch.UserID),
		isNull("loan_date", patch.LoanDate),
		isNull("loan_length", patch.LoanLength),
		isNull("returned", patch.Returned),
	); err != nil {
		return nil, err
	}

	var loan *Loan
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current, err := fetchLoan(ctx, tx, id)
		if err != nil {
			return err
		}
		next := *current

		if bookID, ok := patch.BookID.Get(); ok && bookID != current.BookID {
			if _, err := fetchBook(ctx, tx, bookID); err != nil {
				return err
			}
			next.BookID = bookID
		}
		if userID, ok := patch.UserID.Get(); ok && userID != current.UserID {
			if _, err := fetchUser(ctx, tx, userID); err != nil {
				return err
			}
			next.UserID = userID
		}
		if length, ok := patch.LoanLength.Get(); ok {
			if err := s.validateLoanLength(length); err != nil {
				return err
			}
			next.LoanLength = length
		}
		if date, ok := patch.LoanDate.Get(); ok {
			next.LoanDate = date
		}
		if returned, ok := patch.Returned.Get(); ok {
			next.Returned = returned
		}

		now := timestamp()
		if current.CopyHeld && next.BookID != current.BookID {
			if err := restoreCopy(ctx, tx, current.BookID, now); err != nil {
				return err
			}
			if err := takeCopy(ctx, tx, next.BookID, now); err != nil {
				return err
			}
		}
		if current.CopyHeld && !current.Returned && next.Returned {
			if err := restoreCopy(ctx, tx, next.BookID, now); err != nil {
				return err
			}
			next.CopyHeld = false
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE loan SET book_id = ?, user_id = ?, loan_date = ?, loan_length = ?, returned = ?, copy_held = ?, updated_at = ?
			 WHERE id = ?`,
			next.BookID, next.UserID, next.LoanDate, next.LoanLength,
			boolToInt(next.Returned), boolToInt(next.CopyHeld), now, id); err != nil {
			return fmt.Errorf("update loan %d: %w", id, err)
		}
		loan, err = fetchLoan(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// ReturnLoan marks a loan returned.
func (s *Store) ReturnLoan(ctx context.Context, id int64) (*Loan, error) {
	return s.UpdateLoan(ctx, id, LoanPatch{Returned: Some(true)})
}

// DeleteLoan removes a loan. A copy still held by the loan goes back on the
// shelf in the same transaction.
func (s *Store) DeleteLoan(ctx context.Context, id int64) (*Loan, error) {
	var loan *Loan
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current, err := fetchLoan(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM loan WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete loan %d: %w", id, err)
		}
		if current.CopyHeld {
			if err := restoreCopy(ctx, tx, current.BookID, timestamp()); err != nil {
				return err
			}
		}
		loan = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}
