package pkg

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Reusable errors
var (
	SqlErrForeignKeyViolation = errors.New("foreign key violation")
	SqlError                  = errors.New("sql error")
	ErrRateLimitExceeded      = errors.New("rate limit exceeded")
)

// Kind tags the variant of an AppError.
type Kind string

const (
	KindGeneric         Kind = "AppError"
	KindNotFound        Kind = "NotFoundError"
	KindValidation      Kind = "ValidationError"
	KindUnauthorized    Kind = "UnauthorizedError"
	KindForbidden       Kind = "ForbiddenError"
	KindConflict        Kind = "ConflictError"
	KindTooManyRequests Kind = "TooManyRequestsError"
)

const (
	DefaultResource         = "Resource"
	ValidationFailedMessage = "Validation failed"
	RateLimitedMessage      = "Too many requests from this IP, please try again later"
)

// maxStackDepth bounds the number of frames recorded per error.
const maxStackDepth = 32

// AppError is an application-level failure that maps onto an HTTP response.
// Operational errors are anticipated conditions whose message is safe to show to clients;
// non-operational ones are defects.
type AppError struct {
	Kind        Kind
	Message     string // public-facing message
	StatusCode  int
	Operational bool
	Details     []any  // validation failures, only set for KindValidation
	Cause       error  // internal cause (wrapped)
	Stack       string // captured at construction, diagnostics only
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// StackTrace returns the trace recorded when the error was created.
func (e *AppError) StackTrace() string { return e.Stack }

// Option customizes an AppError at construction.
type Option func(*AppError)

// WithCause attaches an internal cause that is reachable through errors.Is/As but never serialized.
func WithCause(cause error) Option {
	return func(e *AppError) {
		e.Cause = cause
	}
}

// NewAppError creates an operational error with the given public message and status.
func NewAppError(message string, statusCode int, opts ...Option) *AppError {
	return newAppError(KindGeneric, message, statusCode, true, opts...)
}

// NewProgrammerError creates a non-operational error, used for defects and unexpected failures.
func NewProgrammerError(message string, statusCode int, opts ...Option) *AppError {
	return newAppError(KindGeneric, message, statusCode, false, opts...)
}

// NewNotFoundError reports a missing resource as "<resource> not found" with status 404.
func NewNotFoundError(resource string, opts ...Option) *AppError {
	if strings.TrimSpace(resource) == "" {
		resource = DefaultResource
	}
	return newAppError(KindNotFound, resource+" not found", http.StatusNotFound, true, opts...)
}

// NewValidationError reports field level failures with status 400. Details keep their order.
func NewValidationError(details []any, opts ...Option) *AppError {
	if details == nil {
		details = []any{}
	}
	e := newAppError(KindValidation, ValidationFailedMessage, http.StatusBadRequest, true, opts...)
	e.Details = details
	return e
}

func NewUnauthorizedError(message string, opts ...Option) *AppError {
	return newAppError(KindUnauthorized, orDefault(message, "Unauthorized"), http.StatusUnauthorized, true, opts...)
}

func NewForbiddenError(message string, opts ...Option) *AppError {
	return newAppError(KindForbidden, orDefault(message, "Forbidden"), http.StatusForbidden, true, opts...)
}

func NewConflictError(message string, opts ...Option) *AppError {
	return newAppError(KindConflict, orDefault(message, "Conflict"), http.StatusConflict, true, opts...)
}

func NewTooManyRequestsError(message string, opts ...Option) *AppError {
	opts = append([]Option{WithCause(ErrRateLimitExceeded)}, opts...)
	return newAppError(KindTooManyRequests, orDefault(message, RateLimitedMessage), http.StatusTooManyRequests, true, opts...)
}

// newAppError must be called directly by the exported constructors so the recorded
// trace starts at their caller.
func newAppError(kind Kind, message string, statusCode int, operational bool, opts ...Option) *AppError {
	e := &AppError{
		Kind:        kind,
		Message:     message,
		StatusCode:  statusCode,
		Operational: operational,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Stack = captureStack(kind, message, 4)
	return e
}

// captureStack renders the current call stack, skipping the given number of frames.
func captureStack(kind Kind, message string, skip int) string {
	var b strings.Builder
	b.WriteString(string(kind))
	b.WriteString(": ")
	b.WriteString(message)

	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return b.String()
	}
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "\n    at %s (%s:%d)", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

func orDefault(s, d string) string {
	if strings.TrimSpace(s) == "" {
		return d
	}
	return s
}

// HandleSQLError maps pg errors -> AppError with proper codes/status
func HandleSQLError(traceId string, logger *zap.Logger, err error) error {
	var pgErr *pgconn.PgError
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Warn("sql error : no records found", zap.String(TraceId, traceId))
		return NewNotFoundError("Record", WithCause(err))
	}
	if !errors.As(err, &pgErr) {
		logger.Error("sql error : unknown", zap.String(TraceId, traceId), zap.Error(err))
		return NewProgrammerError("sql error", http.StatusInternalServerError, WithCause(err))
	}

	// Log rich pg error context
	logger.Error("sql error",
		zap.String(TraceId, traceId),
		zap.String("code", pgErr.Code),
		zap.String("message", pgErr.Message),
		zap.String("detail", pgErr.Detail),
		zap.String("table", pgErr.TableName),
		zap.String("column", pgErr.ColumnName),
		zap.String("constraint", pgErr.ConstraintName),
	)

	switch pgErr.Code {
	case "23505": // unique_violation
		return NewConflictError("duplicate value violates unique constraint", WithCause(SqlError))
	case "23503": // foreign_key_violation
		return NewConflictError("foreign key violation", WithCause(SqlErrForeignKeyViolation))
	case "22P02": // invalid_text_representation Ex: bad UUID
		return NewAppError("invalid input syntax", http.StatusBadRequest, WithCause(SqlError))
	case "22001": // string_data_right_truncation
		return NewAppError("value too long for column", http.StatusBadRequest, WithCause(SqlError))
	case "22003": // numeric_value_out_of_range
		return NewAppError("numeric value out of range", http.StatusBadRequest, WithCause(SqlError))
	default:
		return NewProgrammerError("sql error", http.StatusInternalServerError, WithCause(SqlError))
	}
}
