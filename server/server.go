package server

import (
	"context"
	"net/netip"

	"github.com/rs/zerolog"

	"github.com/s00inx/sockhttp/server/engine"
	"github.com/s00inx/sockhttp/server/protocol"
	"github.com/s00inx/sockhttp/server/router"
)

// New(cfg, opts...)  - engine + HTTP protocol + router
// Listen()           - bind socket (optional, Run does it)
// Run(ctx)           - serve until ctx is done, then close every connection
// R.Get(path, h)     - register handler, see router.HTTPRouter

type Server struct {
	R *router.HTTPRouter

	cfg       Config
	log       zerolog.Logger
	validator protocol.Validator
	handler   protocol.Handler

	http *protocol.HTTP
	eng  *engine.Engine
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// replace protocol.DefaultValidator
func WithValidator(v protocol.Validator) Option {
	return func(s *Server) { s.validator = v }
}

// resource layer other than the built-in router
func WithHandler(h protocol.Handler) Option {
	return func(s *Server) { s.handler = h }
}

func New(cfg Config, opts ...Option) (*Server, error) {
	s := &Server{
		R:   router.NewHTTPRouter(),
		cfg: cfg,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.handler == nil {
		s.handler = s.R
	}

	ec, err := cfg.engineConfig()
	if err != nil {
		return nil, err
	}

	// one frame pool for receive buffers and response heads
	frames := engine.NewFramePool(cfg.FrameSize)
	ec.Frames = frames
	pc := cfg.protocolConfig()
	pc.Frames = frames

	s.http = protocol.NewHTTP(pc, s.validator, s.handler)
	s.eng = engine.New(ec, s.http, s.log)
	return s, nil
}

func (s *Server) Listen() error {
	return s.eng.Listen()
}

// bound address, valid after Listen
func (s *Server) Addr() netip.AddrPort {
	return s.eng.Addr()
}

func (s *Server) Run(ctx context.Context) error {
	return s.eng.Serve(ctx)
}

func (s *Server) Stats() engine.Stats {
	return s.eng.Stats()
}
