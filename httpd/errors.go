package httpd

import "errors"

// Parse errors. Any of them is answered with 400 Bad Request and the
// connection is closed.
var (
	ErrMalformedRequestLine = errors.New("httpd: malformed request line")
	ErrIncompleteHeaders    = errors.New("httpd: incomplete headers")
	ErrTruncatedBody        = errors.New("httpd: truncated body")
)

var ErrServerClosed = errors.New("httpd: server closed")

func isParseError(err error) bool {
	return errors.Is(err, ErrMalformedRequestLine) ||
		errors.Is(err, ErrIncompleteHeaders) ||
		errors.Is(err, ErrTruncatedBody)
}
