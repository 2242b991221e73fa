package api

// Book describes a catalogued title.
type Book struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	YearPublished int    `json:"year_published"`
	Stock         int    `json:"stock"`
}

// User describes a library member.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
	Age  int    `json:"age"`
}

// Loan describes a book issued to a user.
type Loan struct {
	ID         int64 `json:"id"`
	BookID     int64 `json:"book_id"`
	UserID     int64 `json:"user_id"`
	LoanDate   int64 `json:"loan_date"`
	LoanLength int   `json:"loan_length"`
	Returned   bool  `json:"returned"`
}

// BookList wraps a collection of books.
type BookList struct {
	Books []Book `json:"books"`
}

// UserList wraps a collection of users.
type UserList struct {
	Users []User `json:"users"`
}

// LoanList wraps a collection of loans.
type LoanList struct {
	Loans []Loan `json:"loans"`
}

// BookResponse reports a book mutation.
type BookResponse struct {
	Message string `json:"message"`
	Book    *Book  `json:"book,omitempty"`
}

// UserResponse reports a user mutation.
type UserResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}

// LoanResponse reports a loan mutation.
type LoanResponse struct {
	Message string `json:"message"`
	Loan    *Loan  `json:"loan,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Stats summarizes store contents.
type Stats struct {
	Books         int `json:"books"`
	Users         int `json:"users"`
	Loans         int `json:"loans"`
	ActiveLoans   int `json:"active_loans"`
	CopiesOnShelf int `json:"copies_on_shelf"`
}

// DatabaseHealth mirrors library.DatabaseHealth for transport.
type DatabaseHealth struct {
	Path             string   `json:"path"`
	Healthy          bool     `json:"healthy"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	SchemaVersion    int      `json:"schema_version"`
	MissingTables    []string `json:"missing_tables,omitempty"`
	IntegrityCheck   bool     `json:"integrity_check"`
	Error            string   `json:"error,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"database_path"`
	LockFilePath string         `json:"lock_file_path"`
	Bind         string         `json:"bind"`
	Stats        Stats          `json:"stats"`
	Health       DatabaseHealth `json:"health"`
}
