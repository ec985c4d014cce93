package engine

import "fmt"

// kind of transport failure
type TransportError int

const (
	BindFailure TransportError = iota
	PollFailure
	AcceptFailure
	ReadFailure
	WriteFailure
	CloseFailure
	ConnectionClosed
)

func (e TransportError) Error() string {
	switch e {
	case BindFailure:
		return "socket bind failed"
	case PollFailure:
		return "epoll failed"
	case AcceptFailure:
		return "accept failed"
	case ReadFailure:
		return "socket read failed"
	case WriteFailure:
		return "socket write failed"
	case CloseFailure:
		return "socket close failed"
	case ConnectionClosed:
		return "connection closed"
	default:
		return fmt.Sprintf("unknown transport error: %d", int(e))
	}
}

// transport error with cause
type Error struct {
	Kind       TransportError
	underlying error
}

func (e *Error) Error() string {
	if e.underlying != nil {
		return fmt.Sprintf("%s: %v", e.Kind.Error(), e.underlying)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error {
	return e.underlying
}

// errors.Is(err, engine.WriteFailure) matches on kind
func (e *Error) Is(target error) bool {
	k, ok := target.(TransportError)
	return ok && k == e.Kind
}

func newError(kind TransportError, underlying error) *Error {
	return &Error{Kind: kind, underlying: underlying}
}
