package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/s00inx/sockhttp/server"
	"github.com/s00inx/sockhttp/server/router"
)

func main() {
	def := server.DefaultConfig()
	cfg := def

	flag.StringVar(&cfg.Addr, "addr", def.Addr, "listen address, empty for any")
	flag.IntVar(&cfg.Port, "port", def.Port, "listen port")
	flag.IntVar(&cfg.Backlog, "backlog", def.Backlog, "listen backlog")
	flag.IntVar(&cfg.Workers, "workers", def.Workers, "receive workers, 0 for one per CPU")
	flag.IntVar(&cfg.FrameSize, "frame-size", def.FrameSize, "receive buffer size in bytes")
	flag.DurationVar(&cfg.IdleTimeout, "idle-timeout", def.IdleTimeout, "idle receive timeout")
	flag.DurationVar(&cfg.WriteTimeout, "write-timeout", def.WriteTimeout, "blocked write timeout")
	flag.DurationVar(&cfg.Linger, "linger", def.Linger, "delay before hard close")
	flag.IntVar(&cfg.MaxTokenSize, "max-token", def.MaxTokenSize, "max request line token / header line size")
	flag.Int64Var(&cfg.MaxBodySize, "max-body", def.MaxBodySize, "max request body size")
	flag.StringVar(&cfg.ServerName, "server-name", def.ServerName, "Server header value")
	level := flag.String("log-level", "info", "log level")
	pretty := flag.Bool("pretty", false, "human readable logs")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if *pretty {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		log.Fatal().Err(err).Msg("log level")
	}
	log = log.Level(lvl)

	srv, err := server.New(cfg, server.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	srv.R.Get("/", func(c *router.Context) {
		c.String(200, "OK\n")
	})
	srv.R.Get("/echo/:word", func(c *router.Context) {
		c.String(200, c.Param("word")+"\n")
	})
	srv.R.Get("/stats", func(c *router.Context) {
		st := srv.Stats()
		c.SetHeader("Content-Type", "application/json")
		c.Send(200, fmt.Appendf(nil, `{"accepted":%d,"active":%d,"timeouts":%d,"frames":%d}`,
			st.Accepted, st.Active, st.Timeouts, st.Pool.Allocated))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
