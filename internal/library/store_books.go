package library

import (
	"context"
	"database/sql"
	"fmt"
)

// ListBooks returns every book ordered by id.
func (s *Store) ListBooks(ctx context.Context) ([]*Book, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT "+bookColumns+" FROM book ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// GetBook fetches a book by id.
func (s *Store) GetBook(ctx context.Context, id int64) (*Book, error) {
	return fetchBook(ensureContext(ctx), s.db, id)
}

// AddBook inserts a book. Stock falls back to the configured default.
func (s *Store) AddBook(ctx context.Context, in NewBook) (*Book, error) {
	title, author, year, err := validateNewBook(in)
	if err != nil {
		return nil, err
	}
	stock := s.defaultStock()
	if value, ok := in.Stock.Get(); ok {
		stock = value
	}

	var book *Book
	err = s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		now := timestamp()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO book (title, author, year_published, stock, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			title, author, year, stock, now, now)
		if err != nil {
			return fmt.Errorf("insert book: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("book id: %w", err)
		}
		book, err = fetchBook(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook applies the present fields of patch to the book.
func (s *Store) UpdateBook(ctx context.Context, id int64, patch BookPatch) (*Book, error) {
	if err := rejectNull(isNull("year_published", patch.YearPublished), isNull("stock", patch.Stock)); err != nil {
		return nil, err
	}
	title, hasTitle, err := patchText("title", patch.Title)
	if err != nil {
		return nil, err
	}
	author, hasAuthor, err := patchText("author", patch.Author)
	if err != nil {
		return nil, err
	}
	if stock, ok := patch.Stock.Get(); ok {
		if err := validateStock(stock); err != nil {
			return nil, err
		}
	}

	var book *Book
	err = s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current, err := fetchBook(ctx, tx, id)
		if err != nil {
			return err
		}
		if hasTitle {
			current.Title = title
		}
		if hasAuthor {
			current.Author = author
		}
		if year, ok := patch.YearPublished.Get(); ok {
			current.YearPublished = year
		}
		if stock, ok := patch.Stock.Get(); ok {
			current.Stock = stock
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE book SET title = ?, author = ?, year_published = ?, stock = ?, updated_at = ? WHERE id = ?`,
			current.Title, current.Author, current.YearPublished, current.Stock, timestamp(), id); err != nil {
			return fmt.Errorf("update book %d: %w", id, err)
		}
		book, err = fetchBook(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a book and its returned loans. Books with unreturned
// loans are rejected with ActiveLoans.
func (s *Store) DeleteBook(ctx context.Context, id int64) (*Book, error) {
	var book *Book
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current, err := fetchBook(ctx, tx, id)
		if err != nil {
			return err
		}
		active, err := countActiveLoans(ctx, tx, "book_id", id)
		if err != nil {
			return err
		}
		if active > 0 {
			return invalidState(CodeActiveLoans,
				fmt.Sprintf("Book has %d active loan(s); return them before deleting", active))
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM book WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete book %d: %w", id, err)
		}
		book = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}
