package protocol

import (
	"time"

	"github.com/s00inx/sockhttp/server/engine"
)

const dateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// serializes responses onto a session
// status line and headers go out once, body can be sent in several calls
type ResponseWriter struct {
	ServerName string

	frames *engine.FramePool // scratch frames for status line + headers
	now    func() time.Time
}

// nil frames means own pool
func NewResponseWriter(serverName string, frames *engine.FramePool) *ResponseWriter {
	if frames == nil {
		frames = engine.NewFramePool(4 << 10)
	}
	return &ResponseWriter{
		ServerName: serverName,
		frames:     frames,
		now:        time.Now,
	}
}

func (w *ResponseWriter) Frames() *engine.FramePool {
	return w.frames
}

// write head (once) and buffered body, then clear the body buffer
// req may be nil (timeouts), HEAD requests get no body bytes
func (w *ResponseWriter) Send(s *engine.Session, req *Request, resp *Response) error {
	body := resp.Output()
	if !bodyAllowed(resp.Status) || req != nil && req.Method == MethodHead {
		body = nil
	}

	if !resp.HeadersSent {
		w.injectDefaults(req, resp)

		f := w.frames.CheckOut()
		buf := AppendHead(f.Buf[:0], resp.Status, resp.Headers)
		if len(buf)+len(body) <= f.Cap() {
			// small body goes out in the same write
			buf = append(buf, body...)
			body = nil
		}
		err := s.Write(buf)
		f.Release()
		if err != nil {
			return err
		}
		resp.HeadersSent = true
	}

	if len(body) > 0 {
		if err := s.Write(body); err != nil {
			return err
		}
	}
	resp.ResetOutput()
	return nil
}

// defaults for headers the handler didn't set
func (w *ResponseWriter) injectDefaults(req *Request, resp *Response) {
	hs := resp.Headers

	if bodyAllowed(resp.Status) {
		if !hs.Has("Content-Length") {
			hs.Set("Content-Length", contentLength(resp))
		}
		if resp.MimeType != "" {
			if ct, ok := hs.Get("Content-Type"); !ok || ct != resp.MimeType {
				hs.Set("Content-Type", resp.MimeType)
			}
		}
	}
	if !hs.Has("Server") && w.ServerName != "" {
		hs.Set("Server", w.ServerName)
	}
	if !hs.Has("Date") {
		hs.Set("Date", w.now().UTC().Format(dateFormat))
	}

	switch {
	case resp.Close:
		hs.Set("Connection", "close")
	case req != nil && req.Version == HTTP10:
		hs.Set("Connection", "keep-alive")
	}
}
