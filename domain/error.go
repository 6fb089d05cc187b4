package domain

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Code is the closed set of transport independent error codes raised by
// business logic.
type Code string

const (
	InternalServerError Code = "INTERNAL_SERVER_ERROR"
	NotFoundCode        Code = "NOT_FOUND"
	UnprocessableCode   Code = "UNPROCESSABLE"
	ConflictCode        Code = "CONFLICT"
	NotImplementedCode  Code = "NOT_IMPLEMENTED"
	InvalidCode         Code = "INVALID"
	ForbiddenCode       Code = "FORBIDDEN"
)

var defaultMessages = map[Code]string{
	InternalServerError: "Generic error",
	NotFoundCode:        "Not found",
	UnprocessableCode:   "Request well formed but with semantic errors",
	ConflictCode:        "Conflict with the current state of the target resource",
	NotImplementedCode:  "Request method not recognized or lacking the ability to fulfill it",
	InvalidCode:         "Invalid request",
	ForbiddenCode:       "The principal is not authorized to execute this task",
}

// now is replaced in tests.
var now = time.Now

// Codes returns every known code.
func Codes() []Code {
	return []Code{
		InternalServerError,
		NotFoundCode,
		UnprocessableCode,
		ConflictCode,
		NotImplementedCode,
		InvalidCode,
		ForbiddenCode,
	}
}

// Valid returns true if c is one of the known codes.
func (c Code) Valid() bool {
	_, ok := defaultMessages[c]
	return ok
}

// DefaultMessage returns the message used when an error of the given code is
// created without one.
func DefaultMessage(c Code) string {
	return defaultMessages[c]
}

// Error is the error raised by business logic. It carries a code, a human
// message, an ordered list of causes and the time it was created.
type Error struct {
	Code      Code      `json:"code"`
	Message   string    `json:"message"`
	Causes    []string  `json:"causes"`
	Timestamp time.Time `json:"timestamp"`
}

// New returns an Error for code. An unknown code becomes
// InternalServerError and an empty message becomes the code's default
// message.
func New(code Code, message string, causes ...string) *Error {
	if !code.Valid() {
		code = InternalServerError
	}

	if message == "" {
		message = DefaultMessage(code)
	}

	e := &Error{
		Code:      code,
		Message:   message,
		Causes:    []string{},
		Timestamp: now(),
	}

	if len(causes) > 0 {
		e.Causes = append(e.Causes, causes...)
	}

	return e
}

// Newf returns an Error for code with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Error returns a string representation of the error.
func (e *Error) Error() string {
	return "NspError: " + e.Message
}

// NotFound returns a NOT_FOUND error.
func NotFound(message string, causes ...string) *Error {
	return New(NotFoundCode, message, causes...)
}

// Invalid returns an INVALID error.
func Invalid(message string, causes ...string) *Error {
	return New(InvalidCode, message, causes...)
}

// Forbidden returns a FORBIDDEN error.
func Forbidden(message string, causes ...string) *Error {
	return New(ForbiddenCode, message, causes...)
}

// Conflict returns a CONFLICT error.
func Conflict(message string, causes ...string) *Error {
	return New(ConflictCode, message, causes...)
}

// Unprocessable returns an UNPROCESSABLE error.
func Unprocessable(message string, causes ...string) *Error {
	return New(UnprocessableCode, message, causes...)
}

// NotImplemented returns a NOT_IMPLEMENTED error.
func NotImplemented(message string, causes ...string) *Error {
	return New(NotImplementedCode, message, causes...)
}

// Internal returns an INTERNAL_SERVER_ERROR error.
func Internal(message string, causes ...string) *Error {
	return New(InternalServerError, message, causes...)
}

// CodeOf returns the code of the first *Error found in err's chain and true,
// or InternalServerError and false when there is none.
func CodeOf(err error) (Code, bool) {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code, true
	}

	return InternalServerError, false
}
