package protocol

import (
	"bytes"

	"github.com/s00inx/sockhttp/server/engine"
)

// parser position
type Stage uint8

const (
	StageMethod Stage = iota
	StageURI
	StageVersion
	StageHeaderName
	StageHeaderValue
	StageContent
	StageCreateResponse
)

var stageNames = [...]string{
	StageMethod:         "Method",
	StageURI:            "Uri",
	StageVersion:        "Version",
	StageHeaderName:     "HeaderName",
	StageHeaderValue:    "HeaderValue",
	StageContent:        "Content",
	StageCreateResponse: "CreateResponse",
}

func (st Stage) String() string {
	if int(st) < len(stageNames) {
		return stageNames[st]
	}
	return "Stage(" + string(AppendUint(nil, uint(st))) + ")"
}

// protocol half of the session state, lives in engine.Session.State
// reset between keep-alive requests
type Conn struct {
	Stage Stage

	token []byte // current token, reset on each terminator
	name  string // completed header name waiting for its value

	Req  *Request
	Resp *Response

	raw bytes.Buffer // every consumed byte of the current request
}

func newConn(s *engine.Session) *Conn {
	c := &Conn{token: make([]byte, 0, 64)}
	c.reset(s)
	return c
}

// fresh request/response, back to Method
func (c *Conn) reset(s *engine.Session) {
	c.Stage = StageMethod
	c.token = c.token[:0]
	c.name = ""
	c.raw.Reset()

	c.Req = NewRequest()
	c.Req.LocalAddr = s.Local
	c.Req.RemoteAddr = s.Remote
	c.Resp = NewResponse()
}

// current token, valid until next byte
func (c *Conn) Token() []byte {
	return c.token
}

// raw bytes consumed for the current request
func (c *Conn) RawRequest() []byte {
	return c.raw.Bytes()
}

func (c *Conn) clearToken() {
	c.token = c.token[:0]
}

// tail of token equals suffix
func (c *Conn) tokenEnds(suffix string) bool {
	n := len(c.token)
	if n < len(suffix) {
		return false
	}
	return string(c.token[n-len(suffix):]) == suffix
}
