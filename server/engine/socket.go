// low level socket functional: listen, accept, read, write, close
package engine

import (
	"errors"
	"net/netip"
	"time"

	"golang.org/x/sys/unix"
)

// create new socket, bind and start listening
// tries dual stack (v6 socket with V6ONLY off) first and falls back to plain v4
func listenSocket(addr netip.Addr, port, backlog int) (int, error) {
	if !addr.IsValid() || addr.Is6() || addr.IsUnspecified() {
		fd, err := listen6(addr, port, backlog)
		if err == nil || addr.Is6() && !addr.Is4In6() && !addr.IsUnspecified() {
			return fd, err
		}
	}

	v4 := netip.IPv4Unspecified()
	if addr.IsValid() && (addr.Is4() || addr.Is4In6()) {
		v4 = addr.Unmap()
	}

	// SOCK_STREAM = TCP
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: v4.As4()}); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, backlog); err != nil { // start listening on addr:port
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

func listen6(addr netip.Addr, port, backlog int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET6, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}
	// 0 = accept v4 mapped addresses too
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, err
	}

	sa := &unix.SockaddrInet6{Port: port}
	if addr.IsValid() && !addr.IsUnspecified() {
		sa.Addr = addr.As16()
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// sockaddr -> netip, v4 mapped addresses are unmapped
func addrPort(sa unix.Sockaddr) netip.AddrPort {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port))
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr).Unmap(), uint16(a.Port))
	}
	return netip.AddrPort{}
}

func localAddr(fd int) netip.AddrPort {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return netip.AddrPort{}
	}
	return addrPort(sa)
}

// read as many bytes as kernel has right now, bounded by dst
// n == 0 with nil error is orderly close by peer
func readAvailable(fd int, dst []byte) (int, error) {
	want := len(dst)
	if avail, err := unix.IoctlGetInt(fd, unix.SIOCINQ); err == nil && avail > 0 && avail < want {
		want = avail
	}

	for {
		n, err := unix.Read(fd, dst[:want])
		if err == unix.EINTR {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

// transport over raw non-blocking socket fd
type fdConn struct {
	fd           int
	writeTimeout time.Duration
}

// write everything, waits for POLLOUT when socket buffer is full
func (c *fdConn) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		n, err := unix.Write(c.fd, p)
		if n > 0 {
			total += n
			p = p[n:]
		}
		switch {
		case err == nil:
		case err == unix.EINTR:
		case err == unix.EAGAIN:
			if werr := c.waitWritable(); werr != nil {
				return total, newError(WriteFailure, werr)
			}
		case errors.Is(err, unix.EPIPE) || errors.Is(err, unix.ECONNRESET):
			return total, newError(ConnectionClosed, err)
		default:
			return total, newError(WriteFailure, err)
		}
	}
	return total, nil
}

var errWriteTimeout = errors.New("write timeout")

func (c *fdConn) waitWritable() error {
	timeout := -1
	if c.writeTimeout > 0 {
		timeout = int(c.writeTimeout / time.Millisecond)
	}
	fds := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLOUT}}
	for {
		n, err := unix.Poll(fds, timeout)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return errWriteTimeout
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP) != 0 {
			return unix.EPIPE
		}
		return nil
	}
}

// graceful close: stop sending (FIN after queued bytes) and hard close after linger
func (c *fdConn) Close(linger time.Duration) error {
	fd := c.fd
	if linger <= 0 {
		if err := unix.Close(fd); err != nil {
			return newError(CloseFailure, err)
		}
		return nil
	}

	if err := unix.Shutdown(fd, unix.SHUT_WR); err != nil {
		unix.Close(fd)
		return newError(CloseFailure, err)
	}
	time.AfterFunc(linger, func() {
		unix.Close(fd)
	})
	return nil
}
