// context is Request + Response for one handler call
package router

import (
	"strings"

	"github.com/s00inx/sockhttp/server/protocol"
)

type Param struct {
	Key, Val string
}

type Context struct {
	Req  *protocol.Request
	Resp *protocol.Response

	params []Param
}

// rebind pooled context
func (c *Context) Reset(req *protocol.Request, resp *protocol.Response) {
	c.Req = req
	c.Resp = resp
	c.params = c.params[:0]
}

// !! Context as abstraction upon Request (getters)
func (c *Context) Method() protocol.Method {
	return c.Req.Method
}

func (c *Context) Path() string {
	return c.Req.URL.Path
}

func (c *Context) Query() string {
	return c.Req.URL.RawQuery
}

// first value of key in raw query, not unescaped
func (c *Context) QueryGet(key string) string {
	q := c.Req.URL.RawQuery
	for len(q) > 0 {
		var pair string
		pair, q, _ = strings.Cut(q, "&")

		before, after, ok := strings.Cut(pair, "=")
		if ok && before == key {
			return after
		}
	}
	return ""
}

func (c *Context) Protocol() string {
	return c.Req.RawVersion
}

func (c *Context) Params() []Param {
	return c.params
}

func (c *Context) Param(key string) string {
	for _, p := range c.params {
		if p.Key == key {
			return p.Val
		}
	}
	return ""
}

func (c *Context) Header(key string) string {
	return c.Req.Header(key)
}

func (c *Context) Body() []byte {
	return c.Req.Body
}

// ! Context as response writer (setters)
func (c *Context) SetCode(code int) {
	c.Resp.Status = code
}

func (c *Context) SetHeader(key, val string) {
	c.Resp.SetHeader(key, val)
}

// status + body, Content-Length is added by the response writer
func (c *Context) Send(code int, body []byte) {
	c.Resp.Status = code
	c.Resp.Write(body)
}

func (c *Context) String(code int, s string) {
	c.Resp.Status = code
	c.Resp.MimeType = "text/plain; charset=utf-8"
	c.Resp.WriteString(s)
}
