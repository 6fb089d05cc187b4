package proxy

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/neosperience/serverless-starter/httperror"
)

var serializedDateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)

// Layouts tried by ParseDate after the http date formats. Values without a
// zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
}

// ParseDate parses ISO 8601 date-times and the date formats allowed in http
// headers.
func ParseDate(s string) (time.Time, error) {
	if t, err := http.ParseTime(s); err == nil {
		return t, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse %q as a date", s)
}

// WasModifiedSince reports whether lastModified comes after ifModifiedSince.
// An empty ifModifiedSince always reports a modification.
//
// lastModified is truncated to the second first, since http dates have no
// sub-second precision. An unparsable ifModifiedSince is answered with 400.
func WasModifiedSince(lastModified time.Time, ifModifiedSince string) (bool, error) {
	if ifModifiedSince == "" {
		return true, nil
	}

	since, err := ParseDate(ifModifiedSince)
	if err != nil {
		return false, httperror.New(httperror.StatusBadRequest, MsgIfModifiedSinceInvalid+`"`+ifModifiedSince+`"`)
	}

	return lastModified.Truncate(time.Second).After(since), nil
}

// DeserializeDate returns the time value holds when it is a string in the
// YYYY-MM-DDThh:mm:ss format, value untouched otherwise.
func DeserializeDate(value interface{}) interface{} {
	s, ok := value.(string)
	if !ok || !serializedDateRegexp.MatchString(s) {
		return value
	}

	t, err := ParseDate(s)
	if err != nil {
		return value
	}

	return t
}

// MangleDates replaces, in place, every string value of entity that holds a
// YYYY-MM-DDThh:mm:ss date with its time.Time.
func MangleDates(entity map[string]interface{}) {
	for key, value := range entity {
		if t, ok := DeserializeDate(value).(time.Time); ok {
			entity[key] = t
		}
	}
}
