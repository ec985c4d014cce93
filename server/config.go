package server

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/s00inx/sockhttp/server/engine"
	"github.com/s00inx/sockhttp/server/protocol"
)

// server settings
// zero values mean engine/protocol defaults, except Port: 0 asks kernel for a free port
type Config struct {
	Addr    string // IP literal, "" is any (dual stack when possible)
	Port    int
	Backlog int
	Workers int

	FrameSize    int
	IdleTimeout  time.Duration
	WriteTimeout time.Duration
	Linger       time.Duration

	MaxTokenSize int
	MaxBodySize  int64
	ServerName   string
}

func DefaultConfig() Config {
	return Config{
		Port:         80,
		Backlog:      16,
		FrameSize:    8 << 10,
		IdleTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Second,
		Linger:       600 * time.Millisecond,
		MaxTokenSize: 8 << 10,
		MaxBodySize:  1 << 20,
		ServerName:   "sockhttp",
	}
}

func (c Config) engineConfig() (engine.Config, error) {
	ec := engine.Config{
		Port:         c.Port,
		Backlog:      c.Backlog,
		Workers:      c.Workers,
		FrameSize:    c.FrameSize,
		IdleTimeout:  c.IdleTimeout,
		WriteTimeout: c.WriteTimeout,
		Linger:       c.Linger,
	}
	if c.Port < 0 || c.Port > 0xffff {
		return ec, fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.Addr != "" {
		addr, err := netip.ParseAddr(c.Addr)
		if err != nil {
			return ec, fmt.Errorf("config: listen address: %w", err)
		}
		ec.Addr = addr
	}
	return ec, nil
}

func (c Config) protocolConfig() protocol.Config {
	return protocol.Config{
		MaxTokenSize: c.MaxTokenSize,
		MaxBodySize:  c.MaxBodySize,
		ServerName:   c.ServerName,
	}
}
