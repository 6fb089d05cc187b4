package proxy

import "strings"

// HttpMethod is an enum of the standard Http Methods.
type HttpMethod int

const (
	GET HttpMethod = iota
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH
)

var httpMethodNames = [...]string{"GET", "HEAD", "POST", "PUT", "DELETE", "CONNECT", "OPTIONS", "TRACE", "PATCH"}

// String returns the method name as it appears in requests.
func (m HttpMethod) String() string {
	if m < 0 || int(m) >= len(httpMethodNames) {
		return "UNKNOWN"
	}

	return httpMethodNames[m]
}

// ParseHttpMethod returns the HttpMethod named s, ignoring case.
func ParseHttpMethod(s string) (HttpMethod, bool) {
	for i, name := range httpMethodNames {
		if strings.EqualFold(name, s) {
			return HttpMethod(i), true
		}
	}

	return 0, false
}
