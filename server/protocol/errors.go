package protocol

import "errors"

// errors for parsing and response writing
var (
	ErrEmptyHeaderName  = errors.New("empty header name")
	ErrHeadersSent      = errors.New("headers already sent")
	ErrTokenTooLong     = errors.New("token too long")
	ErrURITooLong       = errors.New("request target too long")
	ErrHeaderTooLarge   = errors.New("header too large")
	ErrMalformedLine    = errors.New("malformed request line")
	ErrMalformedHeader  = errors.New("malformed header line")
	ErrBadContentLength = errors.New("invalid content length")
	ErrBodyTooLarge     = errors.New("request body too large")
)

// status code for a parse error, every parse error ends the connection
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrURITooLong):
		return 414
	case errors.Is(err, ErrHeaderTooLarge):
		return 431
	case errors.Is(err, ErrBodyTooLarge):
		return 413
	case errors.Is(err, ErrTokenTooLong),
		errors.Is(err, ErrMalformedLine),
		errors.Is(err, ErrMalformedHeader),
		errors.Is(err, ErrBadContentLength):
		return 400
	}
	return 500
}
