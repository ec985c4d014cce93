package engine

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// in-memory transport
type fakeConn struct {
	out    bytes.Buffer
	closes int
	linger time.Duration
}

func (c *fakeConn) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *fakeConn) Close(linger time.Duration) error {
	c.closes++
	c.linger = linger
	return nil
}

func TestSessionClose(t *testing.T) {
	pool := NewFramePool(32)
	fc := &fakeConn{}
	s := NewSession(fc, pool.CheckOut(), zerolog.Nop())
	s.linger = 600 * time.Millisecond

	finished := 0
	s.onFinish = func(*Session) { finished++ }

	s.Pending.Write([]byte("leftover"))
	if err := s.Write([]byte("bye")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if !s.Close(true) {
		t.Fatal("first close returned false")
	}
	if s.Close(true) || s.Close(false) {
		t.Error("second close returned true")
	}

	if finished != 1 {
		t.Errorf("onFinish called %d times", finished)
	}
	if fc.closes != 1 || fc.linger != s.linger {
		t.Errorf("transport closes = %d linger = %v", fc.closes, fc.linger)
	}
	if s.Frame != nil || pool.Stats().CheckedOut != 0 {
		t.Error("frame not returned to pool")
	}
	if s.Pending.Len() != 0 {
		t.Error("pending bytes survived close")
	}

	err := s.Write([]byte("late"))
	if !errors.Is(err, ConnectionClosed) {
		t.Errorf("write after close = %v, want ConnectionClosed", err)
	}
	if fc.out.String() != "bye" {
		t.Errorf("transport got %q", fc.out.String())
	}
}

func TestSessionHardClose(t *testing.T) {
	fc := &fakeConn{}
	s := NewSession(fc, nil, zerolog.Nop())
	s.linger = time.Second

	s.Close(false)
	if fc.linger != 0 {
		t.Errorf("hard close linger = %v, want 0", fc.linger)
	}
	if !s.Finishing() {
		t.Error("Finishing = false after close")
	}
}

func TestSessionIdleTimer(t *testing.T) {
	s := NewSession(&fakeConn{}, nil, zerolog.Nop())

	fired := make(chan struct{}, 1)
	s.armTimer(20*time.Millisecond, func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("idle timer did not fire")
	}
	if !s.idleExpired() {
		t.Error("deadline not expired after timer fired")
	}

	// rearm pushes deadline forward, a stale callback must see it
	s.armTimer(time.Hour, func() {})
	if s.idleExpired() {
		t.Error("deadline expired right after rearm")
	}
	s.Close(false)
}

func TestErrorKind(t *testing.T) {
	cause := errors.New("boom")
	err := error(newError(WriteFailure, cause))

	if !errors.Is(err, WriteFailure) {
		t.Error("errors.Is(kind) = false")
	}
	if errors.Is(err, ReadFailure) {
		t.Error("matched wrong kind")
	}
	if !errors.Is(err, cause) {
		t.Error("cause is not unwrapped")
	}
	if got := err.Error(); got != "socket write failed: boom" {
		t.Errorf("Error() = %q", got)
	}
	if got := newError(ConnectionClosed, nil).Error(); got != "connection closed" {
		t.Errorf("Error() = %q", got)
	}
}
