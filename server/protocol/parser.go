// incremental HTTP/1.x parser: bytes from session queue -> Request, one byte at a time
// only parser logic, responses go through ResponseWriter
package protocol

import (
	"bytes"

	"github.com/s00inx/sockhttp/server/engine"
)

// shorter pending input is not worth a parse attempt while still at Method
const MinRequestLength = 31

var headEnd = []byte("\r\n\r\n")

// parser settings, zero values are replaced by defaults
type Config struct {
	MaxTokenSize int   // method, url, version, one header line
	MaxBodySize  int64 // Content-Length limit
	ServerName   string

	Frames *engine.FramePool // scratch frames for response heads, nil means own pool
}

func (c *Config) normalize() {
	if c.MaxTokenSize <= 0 {
		c.MaxTokenSize = 8 << 10
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = 1 << 20
	}
	if c.ServerName == "" {
		c.ServerName = "sockhttp"
	}
}

// resource resolution, called only for requests that passed validation
type Handler interface {
	ProcessRequest(req *Request, resp *Response)
}

type HandlerFunc func(req *Request, resp *Response)

func (f HandlerFunc) ProcessRequest(req *Request, resp *Response) {
	f(req, resp)
}

// HTTP/1.x protocol for the engine
type HTTP struct {
	cfg       Config
	validator Validator
	handler   Handler
	writer    *ResponseWriter
}

// nil validator means DefaultValidator
func NewHTTP(cfg Config, v Validator, h Handler) *HTTP {
	cfg.normalize()
	if v == nil {
		v = NewDefaultValidator()
	}
	if h == nil {
		h = HandlerFunc(func(_ *Request, resp *Response) { resp.Error(404, "") })
	}
	return &HTTP{
		cfg:       cfg,
		validator: v,
		handler:   h,
		writer:    NewResponseWriter(cfg.ServerName, cfg.Frames),
	}
}

func (p *HTTP) Writer() *ResponseWriter {
	return p.writer
}

func (p *HTTP) Open(s *engine.Session) {
	s.State = newConn(s)
}

func (p *HTTP) conn(s *engine.Session) *Conn {
	c, ok := s.State.(*Conn)
	if !ok {
		c = newConn(s)
		s.State = c
	}
	return c
}

// parse everything pending, one response per complete request
// after a response the scanner is entered again cold for pipelined bytes
func (p *HTTP) Serve(s *engine.Session) {
	c := p.conn(s)
	for !s.Finishing() && s.Pending.Len() > 0 {
		if !gateOpen(c, &s.Pending) {
			return
		}
		if !p.scan(c, s) {
			return
		}
	}
}

// idle connection: one 408 and engine closes it
func (p *HTTP) Timeout(s *engine.Session) {
	resp := NewResponse()
	resp.Error(408, "")
	resp.Close = true
	if err := p.writer.Send(s, nil, resp); err != nil {
		s.Log.Debug().Err(err).Msg("send timeout")
	}
}

// don't start on a short request line unless it is already complete
func gateOpen(c *Conn, q *engine.ByteQueue) bool {
	if c.Stage != StageMethod {
		return true
	}
	if len(c.token)+q.Len() >= MinRequestLength {
		return true
	}
	return q.Contains(headEnd)
}

// consume pending bytes through the stage machine
// returns true when a request cycle ended (response sent or connection closed),
// false when pending ran out mid-request
func (p *HTTP) scan(c *Conn, s *engine.Session) bool {
	limit := p.cfg.MaxTokenSize
	for {
		b, err := s.Pending.ReadByte()
		if err != nil {
			return false
		}
		c.raw.WriteByte(b)

		fresh := true // b not consumed by a terminator yet
		for repeat := true; repeat; {
			repeat = false

			switch c.Stage {
			case StageMethod:
				switch {
				case b == ' ':
					c.Req.setMethod(string(c.token))
					c.clearToken()
					c.Stage = StageURI
				case len(c.token) == 0 && (b == '\r' || b == '\n'):
					// empty lines before request line
				case b == '\n':
					return p.abort(c, s, ErrMalformedLine)
				case !c.push(b, limit):
					return p.abort(c, s, ErrTokenTooLong)
				}

			case StageURI:
				switch {
				case b == ' ':
					c.Req.setURL(string(c.token))
					c.clearToken()
					c.Stage = StageVersion
				case b == '\r' || b == '\n':
					return p.abort(c, s, ErrMalformedLine)
				case !c.push(b, limit):
					return p.abort(c, s, ErrURITooLong)
				}

			case StageVersion:
				if b != '\n' {
					if !c.push(b, limit) {
						return p.abort(c, s, ErrTokenTooLong)
					}
					break
				}
				if !c.tokenEnds("\r") {
					return p.abort(c, s, ErrMalformedLine)
				}
				c.Req.setVersion(string(c.token[:len(c.token)-1]))
				c.clearToken()
				c.Stage = StageHeaderName

			case StageHeaderName:
				switch {
				case b == '\n' && len(c.token) == 1 && c.token[0] == '\r':
					// empty line, headers are over
					c.clearToken()
					fresh = false
					if err := p.headersDone(c); err != nil {
						return p.abort(c, s, err)
					}
					repeat = true
				case b == ':':
					if len(c.token) == 0 || bytes.ContainsAny(c.token, " \t\r") {
						return p.abort(c, s, ErrMalformedHeader)
					}
					c.name = string(c.token)
					c.clearToken()
					c.Stage = StageHeaderValue
				case b == '\n':
					return p.abort(c, s, ErrMalformedHeader)
				case !c.push(b, limit):
					return p.abort(c, s, ErrHeaderTooLarge)
				}

			case StageHeaderValue:
				// CR only as part of the line end
				if b != '\n' && c.tokenEnds("\r") {
					return p.abort(c, s, ErrMalformedHeader)
				}
				if !c.push(b, limit) {
					return p.abort(c, s, ErrHeaderTooLarge)
				}
				if b != '\n' {
					break
				}
				if !c.tokenEnds("\r\n") {
					return p.abort(c, s, ErrMalformedHeader)
				}

				value := bytes.TrimSpace(c.token[:len(c.token)-2])
				c.Req.Headers.Add(c.name, string(value))
				c.name = ""
				c.clearToken()
				fresh = false

				// blank line right behind this one: \r\n\r\n, headers are over
				if bytes.Equal(s.Pending.Peek(2), crlf) {
					s.Pending.Discard(2)
					c.raw.Write(crlf)
					if err := p.headersDone(c); err != nil {
						return p.abort(c, s, err)
					}
					repeat = true
				} else {
					c.Stage = StageHeaderName
				}

			case StageContent:
				need := c.Req.ContentLength
				if need > 0 && fresh {
					fresh = false
					c.Req.Body = append(c.Req.Body, b)

					// rest of the body that is already here
					if rem := int(need) - len(c.Req.Body); rem > 0 {
						chunk := s.Pending.Peek(rem)
						c.Req.Body = append(c.Req.Body, chunk...)
						c.raw.Write(chunk)
						s.Pending.Discard(len(chunk))
					}
				}
				if int64(len(c.Req.Body)) >= need {
					c.Stage = StageCreateResponse
					repeat = true
				}

			case StageCreateResponse:
				p.respond(c, s)
				return true

			default:
				panic("protocol: unreachable parse stage " + c.Stage.String())
			}
		}
	}
}

// append byte to token unless token is at max size
func (c *Conn) push(b byte, limit int) bool {
	if limit > 0 && len(c.token) >= limit {
		return false
	}
	c.token = append(c.token, b)
	return true
}

func (p *HTTP) headersDone(c *Conn) error {
	if err := c.Req.finishHeaders(p.cfg.MaxBodySize); err != nil {
		return err
	}
	if c.Req.ContentLength > 0 {
		c.Req.Body = make([]byte, 0, c.Req.ContentLength)
	}
	c.Stage = StageContent
	return nil
}

// validate, process, send, then reset for keep-alive or close
func (p *HTTP) respond(c *Conn, s *engine.Session) {
	req, resp := c.Req, c.Resp
	req.resolveURL()

	if p.validator.Validate(req, resp) {
		p.process(s, req, resp)
	} else {
		// rejected requests never keep the connection
		resp.Close = true
	}
	resp.Close = !KeepAlive(req, resp)

	if err := p.writer.Send(s, req, resp); err != nil {
		s.Log.Debug().Err(err).Msg("send")
		s.Close(false)
		return
	}
	resp.Complete = true

	s.Log.Debug().
		Str("method", req.RawMethod).
		Str("url", req.RawURL).
		Int("status", resp.Status).
		Msg("request")

	if resp.Close {
		s.Close(true)
		return
	}
	c.reset(s)
}

// handler panic is a 500, not a dead worker
func (p *HTTP) process(s *engine.Session, req *Request, resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			s.Log.Error().Interface("panic", r).Str("url", req.RawURL).Msg("handler")
			resp.Error(500, "")
			resp.Close = true
		}
	}()
	p.handler.ProcessRequest(req, resp)
}

// protocol error: plain text status, then close
func (p *HTTP) abort(c *Conn, s *engine.Session, err error) bool {
	status := statusFor(err)
	s.Log.Debug().Err(err).Stringer("stage", c.Stage).Int("status", status).Msg("bad request")

	resp := c.Resp
	resp.Error(status, err.Error())
	resp.Close = true
	if werr := p.writer.Send(s, c.Req, resp); werr != nil {
		s.Close(false)
		return true
	}
	s.Close(true)
	return true
}

// keep connection after resp: client wants it and nobody asked to close
func KeepAlive(req *Request, resp *Response) bool {
	return req != nil && req.KeepAlive && !resp.Close
}
