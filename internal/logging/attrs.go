package logging

import (
	"log/slog"
	"time"
)

// Structured logging keys shared across packages.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldBookID    = "book_id"
	FieldUserID    = "user_id"
	FieldLoanID    = "loan_id"
	// FieldEventType names the domain event being logged (loan_created, book_deleted, ...).
	FieldEventType = "event_type"
	FieldError     = "error"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func BookID(id int64) Attr { return slog.Int64(FieldBookID, id) }

func UserID(id int64) Attr { return slog.Int64(FieldUserID, id) }

func LoanID(id int64) Attr { return slog.Int64(FieldLoanID, id) }

func Event(eventType string) Attr { return slog.String(FieldEventType, eventType) }

func Error(err error) Attr {
	if err == nil {
		return slog.String(FieldError, "<nil>")
	}
	return slog.Any(FieldError, err)
}

// Args converts attributes into the variadic form accepted by slog.Logger methods.
func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}
