package api

import (
	"context"
	"log/slog"

	"libris/internal/library"
	"libris/internal/logging"
)

// Store abstracts the library persistence operations used by the service.
type Store interface {
	ListBooks(ctx context.Context) ([]*library.Book, error)
	GetBook(ctx context.Context, id int64) (*library.Book, error)
	AddBook(ctx context.Context, in library.NewBook) (*library.Book, error)
	UpdateBook(ctx context.Context, id int64, patch library.BookPatch) (*library.Book, error)
	DeleteBook(ctx context.Context, id int64) (*library.Book, error)

	ListUsers(ctx context.Context) ([]*library.User, error)
	GetUser(ctx context.Context, id int64) (*library.User, error)
	AddUser(ctx context.Context, in library.NewUser) (*library.User, error)
	UpdateUser(ctx context.Context, id int64, patch library.UserPatch) (*library.User, error)
	DeleteUser(ctx context.Context, id int64) (*library.User, error)

	ListLoans(ctx context.Context, filter library.LoanFilter) ([]*library.Loan, error)
	GetLoan(ctx context.Context, id int64) (*library.Loan, error)
	CreateLoan(ctx context.Context, in library.NewLoan) (*library.Loan, error)
	UpdateLoan(ctx context.Context, id int64, patch library.LoanPatch) (*library.Loan, error)
	ReturnLoan(ctx context.Context, id int64) (*library.Loan, error)
	DeleteLoan(ctx context.Context, id int64) (*library.Loan, error)

	Stats(ctx context.Context) (library.Stats, error)
	CheckHealth(ctx context.Context) (library.DatabaseHealth, error)
}

// LibraryService exposes library operations returning API DTOs.
type LibraryService struct {
	store  Store
	logger *slog.Logger
}

// NewLibraryService constructs a LibraryService around the provided store.
func NewLibraryService(store Store, logger *slog.Logger) *LibraryService {
	if store == nil {
		return nil
	}
	return &LibraryService{store: store, logger: logging.NewComponentLogger(logger, "library")}
}

func (s *LibraryService) event(ctx context.Context, msg, eventType string, attrs ...logging.Attr) {
	attrs = append(attrs, logging.Event(eventType))
	logging.WithContext(ctx, s.logger).InfoContext(ctx, msg, logging.Args(attrs...)...)
}

// ListBooks returns every book.
func (s *LibraryService) ListBooks(ctx context.Context) (BookList, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return BookList{}, err
	}
	return BookList{Books: FromBooks(books)}, nil
}

// GetBook returns one book.
func (s *LibraryService) GetBook(ctx context.Context, id int64) (Book, error) {
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		return Book{}, err
	}
	return FromBook(book), nil
}

func (s *LibraryService) AddBook(ctx context.Context, in library.NewBook) (BookResponse, error) {
	book, err := s.store.AddBook(ctx, in)
	if err != nil {
		return BookResponse{}, err
	}
	s.event(ctx, "book added", "book_added", logging.BookID(book.ID), logging.Int("stock", book.Stock))
	dto := FromBook(book)
	return BookResponse{Message: "Book added successfully", Book: &dto}, nil
}

func (s *LibraryService) UpdateBook(ctx context.Context, id int64, patch library.BookPatch) (BookResponse, error) {
	book, err := s.store.UpdateBook(ctx, id, patch)
	if err != nil {
		return BookResponse{}, err
	}
	s.event(ctx, "book updated", "book_updated", logging.BookID(book.ID))
	dto := FromBook(book)
	return BookResponse{Message: "Book updated successfully", Book: &dto}, nil
}

func (s *LibraryService) DeleteBook(ctx context.Context, id int64) (BookResponse, error) {
	book, err := s.store.DeleteBook(ctx, id)
	if err != nil {
		return BookResponse{}, err
	}
	s.event(ctx, "book deleted", "book_deleted", logging.BookID(book.ID))
	dto := FromBook(book)
	return BookResponse{Message: "Book deleted successfully", Book: &dto}, nil
}

// ListUsers returns every user.
func (s *LibraryService) ListUsers(ctx context.Context) (UserList, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return UserList{}, err
	}
	return UserList{Users: FromUsers(users)}, nil
}

// GetUser returns one user.
func (s *LibraryService) GetUser(ctx context.Context, id int64) (User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	return FromUser(user), nil
}

func (s *LibraryService) AddUser(ctx context.Context, in library.NewUser) (UserResponse, error) {
	user, err := s.store.AddUser(ctx, in)
	if err != nil {
		return UserResponse{}, err
	}
	s.event(ctx, "user added", "user_added", logging.UserID(user.ID))
	dto := FromUser(user)
	return UserResponse{Message: "User added successfully", User: &dto}, nil
}

func (s *LibraryService) UpdateUser(ctx context.Context, id int64, patch library.UserPatch) (UserResponse, error) {
	user, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return UserResponse{}, err
	}
	s.event(ctx, "user updated", "user_updated", logging.UserID(user.ID))
	dto := FromUser(user)
	return UserResponse{Message: "User updated successfully", User: &dto}, nil
}

func (s *LibraryService) DeleteUser(ctx context.Context, id int64) (UserResponse, error) {
	user, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	s.event(ctx, "user deleted", "user_deleted", logging.UserID(user.ID))
	dto := FromUser(user)
	return UserResponse{Message: "User deleted successfully", User: &dto}, nil
}

// ListLoans returns loans matching filter.
func (s *LibraryService) ListLoans(ctx context.Context, filter library.LoanFilter) (LoanList, error) {
	loans, err := s.store.ListLoans(ctx, filter)
	if err != nil {
		return LoanList{}, err
	}
	return LoanList{Loans: FromLoans(loans)}, nil
}

// GetLoan returns one loan.
func (s *LibraryService) GetLoan(ctx context.Context, id int64) (Loan, error) {
	loan, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return Loan{}, err
	}
	return FromLoan(loan), nil
}

// CreateLoan issues a book.
func (s *LibraryService) CreateLoan(ctx context.Context, in library.NewLoan) (LoanResponse, error) {
	loan, err := s.store.CreateLoan(ctx, in)
	if err != nil {
		return LoanResponse{}, err
	}
	s.event(ctx, "loan created", "loan_created",
		logging.LoanID(loan.ID), logging.BookID(loan.BookID), logging.UserID(loan.UserID))
	dto := FromLoan(loan)
	return LoanResponse{Message: "Loan added successfully", Loan: &dto}, nil
}

// UpdateLoan applies a partial update. A loan that becomes returned is
// logged as a return.
func (s *LibraryService) UpdateLoan(ctx context.Context, id int64, patch library.LoanPatch) (LoanResponse, error) {
	before, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return LoanResponse{}, err
	}
	loan, err := s.store.UpdateLoan(ctx, id, patch)
	if err != nil {
		return LoanResponse{}, err
	}
	eventType := "loan_updated"
	if !before.Returned && loan.Returned {
		eventType = "loan_returned"
	}
	s.event(ctx, "loan updated", eventType, logging.LoanID(loan.ID), logging.BookID(loan.BookID))
	dto := FromLoan(loan)
	return LoanResponse{Message: "Loan updated successfully", Loan: &dto}, nil
}

// ReturnLoan marks a loan returned.
func (s *LibraryService) ReturnLoan(ctx context.Context, id int64) (LoanResponse, error) {
	loan, err := s.store.ReturnLoan(ctx, id)
	if err != nil {
		return LoanResponse{}, err
	}
	s.event(ctx, "loan returned", "loan_returned", logging.LoanID(loan.ID), logging.BookID(loan.BookID))
	dto := FromLoan(loan)
	return LoanResponse{Message: "Loan returned successfully", Loan: &dto}, nil
}

// DeleteLoan removes a loan.
func (s *LibraryService) DeleteLoan(ctx context.Context, id int64) (LoanResponse, error) {
	loan, err := s.store.DeleteLoan(ctx, id)
	if err != nil {
		return LoanResponse{}, err
	}
	s.event(ctx, "loan deleted", "loan_deleted",
		logging.LoanID(loan.ID), logging.BookID(loan.BookID), logging.Bool("copy_restored", loan.CopyHeld))
	dto := FromLoan(loan)
	return LoanResponse{Message: "Loan deleted successfully", Loan: &dto}, nil
}

// Stats returns store counts.
func (s *LibraryService) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return FromStats(stats), nil
}

// Health returns the database health report. The report is returned even
// when the check itself fails part way.
func (s *LibraryService) Health(ctx context.Context) (DatabaseHealth, error) {
	health, err := s.store.CheckHealth(ctx)
	return FromHealth(health), err
}
