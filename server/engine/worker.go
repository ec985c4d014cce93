// worker logic: read -> protocol -> rearm
package engine

import (
	"golang.org/x/sys/unix"
)

// start simple worker pool for handling ready descriptors
func (e *Engine) startWorkerPool() {
	for range e.cfg.Workers {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.workerEpoll()
		}()
	}
}

// handle ready fd: read into session frame, feed protocol, rearm
func (e *Engine) workerEpoll() {
	for fd := range e.jobs {
		s, ok := e.sessions.Load(fd)
		if !ok {
			// closed by timer while event was queued
			continue
		}
		// a stale job may hit a new session on a reused fd number,
		// the read gets EAGAIN and receive rearms it, keep that rearm
		e.receive(s)
	}
}

func (e *Engine) receive(s *Session) {
	s.lock()
	defer s.unlock()

	if s.Finishing() {
		return
	}

	f := s.Frame
	n, err := readAvailable(s.Fd, f.Buf)
	switch {
	case err == unix.EAGAIN:
		// spurious wakeup, nothing to read yet
		e.rearm(s)
		return
	case err != nil:
		s.Log.Debug().Err(newError(ReadFailure, err)).Msg("read")
		s.Close(false)
		return
	case n == 0:
		// orderly close by peer
		s.Close(false)
		return
	}

	f.SetContentSize(n)
	s.Pending.Write(f.Content())
	f.SetContentSize(0)

	e.proto.Serve(s)

	if !s.Finishing() {
		s.armTimer(e.cfg.IdleTimeout, func() { e.timeout(s) })
		e.rearm(s)
	}
}

// next one shot read for descriptor
func (e *Engine) rearm(s *Session) {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLONESHOT,
		Fd:     int32(s.Fd),
	}
	if err := unix.EpollCtl(e.epfd, unix.EPOLL_CTL_MOD, s.Fd, &ev); err != nil {
		s.Log.Warn().Err(newError(PollFailure, err)).Msg("rearm")
		s.Close(false)
	}
}
