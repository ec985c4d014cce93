// file with epoll settings and accept loop
// engine works only with bytes, no HTTP logic here
package engine

import (
	"context"
	"net/netip"
	"runtime"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const (
	maxEvents = 128
	pollTick  = 100 // ms, how often loop checks for shutdown
	jobsQueue = 1024
)

// engine settings, zero values are replaced by defaults in New
type Config struct {
	Addr    netip.Addr // zero means any
	Port    int
	Backlog int
	Workers int

	FrameSize    int           // receive buffer capacity
	IdleTimeout  time.Duration // no bytes for this long -> Protocol.Timeout and close
	WriteTimeout time.Duration
	Linger       time.Duration // delay between half-close and hard close

	Frames *FramePool // shared with the protocol writer, nil means own pool of FrameSize
}

func (c *Config) normalize() {
	if c.Backlog <= 0 {
		c.Backlog = 16
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.FrameSize <= 0 {
		c.FrameSize = defaultFrameSize
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.Linger < 0 {
		c.Linger = 0
	}
}

// byte stream consumer, protocol layer implements it
// all three are called with the session held, never concurrently for one session
type Protocol interface {
	// new connection accepted, set up s.State
	Open(s *Session)
	// new bytes in s.Pending
	Serve(s *Session)
	// idle timer fired, engine closes session after it
	Timeout(s *Session)
}

type Engine struct {
	cfg   Config
	proto Protocol
	log   zerolog.Logger

	frames   *FramePool
	sessions *xsync.MapOf[int, *Session]

	lfd, epfd int
	addr      netip.AddrPort

	jobs chan int
	wg   sync.WaitGroup

	accepted *xsync.Counter
	timeouts *xsync.Counter
}

func New(cfg Config, proto Protocol, log zerolog.Logger) *Engine {
	cfg.normalize()
	frames := cfg.Frames
	if frames == nil {
		frames = NewFramePool(cfg.FrameSize)
	}
	return &Engine{
		cfg:      cfg,
		proto:    proto,
		log:      log,
		frames:   frames,
		sessions: xsync.NewMapOf[int, *Session](),
		lfd:      -1,
		epfd:     -1,
		accepted: xsync.NewCounter(),
		timeouts: xsync.NewCounter(),
	}
}

// bound address, valid after Listen
func (e *Engine) Addr() netip.AddrPort {
	return e.addr
}

func (e *Engine) Frames() *FramePool {
	return e.frames
}

// engine counters
type Stats struct {
	Accepted int64
	Active   int
	Timeouts int64
	Pool     PoolStats
}

func (e *Engine) Stats() Stats {
	return Stats{
		Accepted: e.accepted.Value(),
		Active:   e.sessions.Size(),
		Timeouts: e.timeouts.Value(),
		Pool:     e.frames.Stats(),
	}
}

// bind listening socket and create epoll instance
func (e *Engine) Listen() error {
	fd, err := listenSocket(e.cfg.Addr, e.cfg.Port, e.cfg.Backlog)
	if err != nil {
		return newError(BindFailure, err)
	}

	// creating new epoll instance
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		unix.Close(fd)
		return newError(PollFailure, err)
	}

	// register listening socket to epoll
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
	}); err != nil {
		unix.Close(fd)
		unix.Close(epfd)
		return newError(PollFailure, err)
	}

	e.lfd, e.epfd = fd, epfd
	e.addr = localAddr(fd)
	e.log.Info().Str("addr", e.addr.String()).Msg("listening")
	return nil
}

// accept loop, blocks until ctx is done
func (e *Engine) Serve(ctx context.Context) error {
	if e.lfd < 0 {
		if err := e.Listen(); err != nil {
			return err
		}
	}

	e.jobs = make(chan int, jobsQueue)
	e.startWorkerPool()
	defer e.shutdown()

	events := make([]unix.EpollEvent, maxEvents)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// number of ready descriptors
		n, err := unix.EpollWait(e.epfd, events, pollTick)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return newError(PollFailure, err)
		}

		for i := range n {
			efd := int(events[i].Fd) // current event descriptor

			if efd == e.lfd {
				e.acceptAll()
			} else {
				e.jobs <- efd
			}
		}
	}
}

// starting our server: listen + serve
func StartEpoll(ctx context.Context, cfg Config, proto Protocol, log zerolog.Logger) error {
	return New(cfg, proto, log).Serve(ctx)
}

// accept until kernel queue is empty, listener is non-blocking
func (e *Engine) acceptAll() {
	for {
		nfd, sa, err := unix.Accept4(e.lfd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				return
			}
			if err == unix.ECONNABORTED {
				continue
			}
			e.log.Warn().Err(newError(AcceptFailure, err)).Msg("accept")
			return
		}
		e.open(nfd, sa)
	}
}

// new session for accepted descriptor
func (e *Engine) open(nfd int, sa unix.Sockaddr) {
	unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

	remote := addrPort(sa)
	s := NewSession(&fdConn{fd: nfd, writeTimeout: e.cfg.WriteTimeout}, e.frames.CheckOut(),
		e.log.With().Int("fd", nfd).Str("remote", remote.String()).Logger())
	s.Fd = nfd
	s.Local = localAddr(nfd)
	s.Remote = remote
	s.linger = e.cfg.Linger
	s.onFinish = e.finish

	e.sessions.Store(nfd, s)
	e.accepted.Inc()

	s.lock()
	defer s.unlock()

	e.proto.Open(s)
	s.armTimer(e.cfg.IdleTimeout, func() { e.timeout(s) })

	// adding new descriptor to epoll, one shot so only one worker reads it at a time
	if err := unix.EpollCtl(e.epfd, unix.EPOLL_CTL_ADD, nfd, &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLONESHOT,
		Fd:     int32(nfd),
	}); err != nil {
		s.Log.Warn().Err(newError(PollFailure, err)).Msg("register")
		s.Close(false)
		return
	}
	s.Log.Debug().Msg("connected")
}

// unregister closed session, runs inside Session.Close
func (e *Engine) finish(s *Session) {
	e.sessions.Compute(s.Fd, func(old *Session, loaded bool) (*Session, bool) {
		if loaded && old != s {
			return old, false
		}
		return nil, true
	})
	if e.epfd >= 0 {
		unix.EpollCtl(e.epfd, unix.EPOLL_CTL_DEL, s.Fd, nil)
	}
	s.Log.Debug().Msg("disconnected")
}

// idle timer callback
func (e *Engine) timeout(s *Session) {
	s.lock()
	defer s.unlock()

	if s.Finishing() || !s.idleExpired() {
		return
	}
	e.timeouts.Inc()
	s.Log.Debug().Dur("after", e.cfg.IdleTimeout).Msg("idle timeout")

	e.proto.Timeout(s)
	s.Close(true)
}

// stop workers, close every session and release descriptors
func (e *Engine) shutdown() {
	close(e.jobs)
	e.wg.Wait()

	e.sessions.Range(func(_ int, s *Session) bool {
		s.lock()
		s.Close(false)
		s.unlock()
		return true
	})

	unix.Close(e.lfd)
	unix.Close(e.epfd)
	e.log.Info().Msg("stopped")
}
