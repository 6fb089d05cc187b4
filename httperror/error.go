// Package httperror classifies errors into the http status taxonomy used by
// the proxy responses.
package httperror

import (
	"net/http"
	"reflect"
	"time"

	"github.com/pkg/errors"

	"github.com/neosperience/serverless-starter/domain"
)

const (
	StatusBadRequest           = http.StatusBadRequest
	StatusUnauthorized         = http.StatusUnauthorized
	StatusForbidden            = http.StatusForbidden
	StatusNotFound             = http.StatusNotFound
	StatusMethodNotAllowed     = http.StatusMethodNotAllowed
	StatusConflict             = http.StatusConflict
	StatusUnsupportedMediaType = http.StatusUnsupportedMediaType
	StatusUnprocessableEntity  = http.StatusUnprocessableEntity
	StatusInternalServerError  = http.StatusInternalServerError
)

var statusReasons = map[int]string{
	StatusBadRequest:           "Bad request",
	StatusUnauthorized:         "Unauthorized",
	StatusForbidden:            "Forbidden",
	StatusNotFound:             "Not found",
	StatusMethodNotAllowed:     "Method not allowed",
	StatusConflict:             "Conflict",
	StatusUnsupportedMediaType: "Unsupported media type",
	StatusUnprocessableEntity:  "Unprocessable entity",
	StatusInternalServerError:  "Internal server error",
}

var codeStatuses = map[domain.Code]int{
	domain.InvalidCode:         StatusBadRequest,
	domain.NotFoundCode:        StatusNotFound,
	domain.ForbiddenCode:       StatusForbidden,
	domain.ConflictCode:        StatusConflict,
	domain.UnprocessableCode:   StatusUnprocessableEntity,
	domain.NotImplementedCode:  StatusMethodNotAllowed,
	domain.InternalServerError: StatusInternalServerError,
}

// now is replaced in tests.
var now = time.Now

// Error is an error that knows the http status it should be answered with.
// It is serialized as the body of error responses.
type Error struct {
	StatusCode   int           `json:"statusCode"`
	StatusReason string        `json:"statusReason"`
	Timestamp    time.Time     `json:"timestamp"`
	Message      string        `json:"message"`
	Causes       []interface{} `json:"causes"`
	Code         domain.Code   `json:"code,omitempty"`
	Method       string        `json:"method,omitempty"`
	Resource     string        `json:"resource,omitempty"`
}

// New returns an Error for statusCode. A single slice cause is flattened into
// the cause list, any other causes are kept in order.
func New(statusCode int, message string, causes ...interface{}) *Error {
	return &Error{
		StatusCode:   statusCode,
		StatusReason: StatusReason(statusCode),
		Timestamp:    now(),
		Message:      message,
		Causes:       normalizeCauses(causes),
	}
}

// Error returns a string representation of the error.
func (e *Error) Error() string {
	return "HttpError: " + e.Message
}

// StatusReason returns the human readable phrase for statusCode.
func StatusReason(statusCode int) string {
	if reason, ok := statusReasons[statusCode]; ok {
		return reason
	}

	return http.StatusText(statusCode)
}

// StatusFor maps a domain code to its http status. Unknown codes map to 500.
func StatusFor(code domain.Code) int {
	if status, ok := codeStatuses[code]; ok {
		return status
	}

	return StatusInternalServerError
}

// Wrap classifies err. An *Error found in the chain is returned as is, a
// *domain.Error is translated using its code and anything else becomes an
// internal server error carrying the original message.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var herr *Error
	if errors.As(err, &herr) {
		return herr
	}

	var derr *domain.Error
	if !errors.As(err, &derr) {
		derr = domain.New(domain.InternalServerError, err.Error())
	}

	causes := make([]interface{}, 0, len(derr.Causes))
	for _, c := range derr.Causes {
		causes = append(causes, c)
	}

	wrapped := New(StatusFor(derr.Code), derr.Message, causes)
	wrapped.Code = derr.Code
	if !derr.Timestamp.IsZero() {
		wrapped.Timestamp = derr.Timestamp
	}

	return wrapped
}

// StatusCode returns the status err would be answered with.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	return Wrap(err).StatusCode
}

func normalizeCauses(causes []interface{}) []interface{} {
	if len(causes) == 1 && causes[0] != nil {
		v := reflect.ValueOf(causes[0])
		if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
			flattened := make([]interface{}, 0, v.Len())
			for i := 0; i < v.Len(); i++ {
				flattened = append(flattened, v.Index(i).Interface())
			}
			return flattened
		}
	}

	normalized := make([]interface{}, 0, len(causes))
	for _, c := range causes {
		if c != nil {
			normalized = append(normalized, c)
		}
	}

	return normalized
}
