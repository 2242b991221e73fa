package library

import "time"

// Book is a catalogued title with a count of copies on the shelf.
type Book struct {
	ID            int64
	Title         string
	Author        string
	YearPublished int
	Stock         int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// User is a library member.
type User struct {
	ID        int64
	Name      string
	City      string
	Age       int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Loan associates one book with one user. CopyHeld is true while the loan
// still holds the copy decremented from the book's stock at issuance.
type Loan struct {
	ID         int64
	BookID     int64
	UserID     int64
	LoanDate   int64
	LoanLength int
	Returned   bool
	CopyHeld   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBook is the input for AddBook. Stock defaults to the configured value
// when absent.
type NewBook struct {
	Title         Optional[string] `json:"title"`
	Author        Optional[string] `json:"author"`
	YearPublished Optional[int]    `json:"year_published"`
	Stock         Optional[int]    `json:"stock"`
}

// BookPatch lists the book fields an update may change.
type BookPatch struct {
	Title         Optional[string] `json:"title"`
	Author        Optional[string] `json:"author"`
	YearPublished Optional[int]    `json:"year_published"`
	Stock         Optional[int]    `json:"stock"`
}

// NewUser is the input for AddUser.
type NewUser struct {
	Name Optional[string] `json:"name"`
	City Optional[string] `json:"city"`
	Age  Optional[int]    `json:"age"`
}

// UserPatch lists the user fields an update may change.
type UserPatch struct {
	Name Optional[string] `json:"name"`
	City Optional[string] `json:"city"`
	Age  Optional[int]    `json:"age"`
}

// NewLoan is the input for CreateLoan.
type NewLoan struct {
	BookID     Optional[int64] `json:"book_id"`
	UserID     Optional[int64] `json:"user_id"`
	LoanDate   Optional[int64] `json:"loan_date"`
	LoanLength Optional[int]   `json:"loan_length"`
}

// LoanPatch lists the loan fields an update may change.
type LoanPatch struct {
	BookID     Optional[int64] `json:"book_id"`
	UserID     Optional[int64] `json:"user_id"`
	LoanDate   Optional[int64] `json:"loan_date"`
	LoanLength Optional[int]   `json:"loan_length"`
	Returned   Optional[bool]  `json:"returned"`
}

// LoanFilter narrows ListLoans. Nil fields do not filter.
type LoanFilter struct {
	Returned *bool
	BookID   *int64
	UserID   *int64
}

// Stats summarizes the store contents.
type Stats struct {
	Books         int
	Users         int
	Loans         int
	ActiveLoans   int
	CopiesOnShelf int
}

// DatabaseHealth captures diagnostic information about the library database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	TablesPresent    []string
	MissingTables    []string
	IntegrityCheck   bool
	Error            string
}

// Healthy reports whether every check passed.
func (h DatabaseHealth) Healthy() bool {
	return h.DatabaseExists && h.DatabaseReadable && len(h.MissingTables) == 0 && h.IntegrityCheck && h.Error == ""
}
