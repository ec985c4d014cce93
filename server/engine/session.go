// session state, one per accepted socket
package engine

import (
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// byte sink under the session: real socket in engine, fake conn in tests
type Transport interface {
	Write(p []byte) (int, error)
	// close socket, linger > 0 means half-close first and hard close after linger
	Close(linger time.Duration) error
}

// session is per-connection mutable state, it lives from accept to close
// and is reused between keep-alive requests
// only one worker or the idle timer touch it at once, see mu
type Session struct {
	Fd            int
	Local, Remote netip.AddrPort

	Frame   *Frame    // receive buffer, refilled per read
	Pending ByteQueue // bytes not consumed by protocol yet

	// protocol half of the state (parse stage, request etc), owned by Protocol
	State any

	Log zerolog.Logger

	tr     Transport
	linger time.Duration

	mu        sync.Mutex
	finishing atomic.Bool
	timer     *time.Timer
	deadline  time.Time

	onFinish func(s *Session) // unregister from engine, called once
}

// new detached session, engine sets fd, addresses and hooks after it
func NewSession(tr Transport, frame *Frame, log zerolog.Logger) *Session {
	return &Session{
		Fd:    -1,
		Frame: frame,
		Log:   log,
		tr:    tr,
	}
}

// write all bytes to peer
func (s *Session) Write(p []byte) error {
	if s.finishing.Load() {
		return newError(ConnectionClosed, nil)
	}
	if _, err := s.tr.Write(p); err != nil {
		return err
	}
	return nil
}

// true once Close was called
func (s *Session) Finishing() bool {
	return s.finishing.Load()
}

// close session exactly once, graceful close gives kernel linger time to flush last bytes
// caller should hold the session (worker or timer), this is the only "finishing" CAS
func (s *Session) Close(graceful bool) bool {
	if !s.finishing.CompareAndSwap(false, true) {
		return false
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.onFinish != nil {
		s.onFinish(s)
	}
	if s.Frame != nil {
		s.Frame.Release()
		s.Frame = nil
	}
	s.Pending.Reset()

	linger := time.Duration(0)
	if graceful {
		linger = s.linger
	}
	if err := s.tr.Close(linger); err != nil {
		s.Log.Debug().Err(err).Msg("close")
	}
	return true
}

// (re)arm idle timer, fn runs in its own goroutine
func (s *Session) armTimer(d time.Duration, fn func()) {
	if d <= 0 {
		return
	}
	s.deadline = time.Now().Add(d)
	if s.timer == nil {
		s.timer = time.AfterFunc(d, fn)
		return
	}
	s.timer.Reset(d)
}

// timer may fire right before a read rearms it, callback checks this under lock
func (s *Session) idleExpired() bool {
	return !time.Now().Before(s.deadline)
}

// lock session for a worker or timer callback
func (s *Session) lock()   { s.mu.Lock() }
func (s *Session) unlock() { s.mu.Unlock() }
