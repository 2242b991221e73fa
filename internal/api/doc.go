// Package api defines wire-format types and converters for the HTTP API and
// CLI. It translates library models into transport-friendly DTOs so handlers
// and commands render them without coupling to storage types.
//
// # Key Types
//
// Book, User, Loan: entity payloads with snake_case fields matching the
// historical wire format (year_published, book_id, loan_length, ...).
//
// BookList, UserList, LoanList: list envelopes keyed by the plural entity name.
//
// BookResponse, UserResponse, LoanResponse: a success message plus the record
// that was added, changed or removed.
//
// ErrorResponse: {"error": "...", "code": "..."} with the code omitted for
// not-found failures.
//
// # Service
//
// LibraryService wraps a Store and returns DTOs, logging one structured event
// per successful mutation. It holds no state beyond its collaborators.
package api
