package protocol

import (
	"testing"
)

func validRequest() *Request {
	r := NewRequest()
	r.setMethod("POST")
	r.setURL("/upload")
	r.setVersion("HTTP/1.1")
	r.Headers.Add("Host", "h")
	return r
}

func TestDefaultValidator(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Request)
		status int // 0 means valid
	}{
		{"valid", func(*Request) {}, 0},
		{"version", func(r *Request) { r.setVersion("HTTP/3.0") }, 505},
		{"target", func(r *Request) { r.setURL("upload") }, 400},
		{"no host", func(r *Request) { r.Headers.Del("Host") }, 400},
		{"method", func(r *Request) { r.setMethod("SPLICE") }, 501},
		{"transfer coding", func(r *Request) { r.Headers.Add("Transfer-Encoding", "gzip") }, 501},
		{"json body", func(r *Request) {
			r.ContentLength, r.ContentType = 2, "Application/JSON; charset=utf-8"
		}, 0},
		{"untyped body", func(r *Request) { r.ContentLength = 2 }, 0},
		{"png body", func(r *Request) { r.ContentLength, r.ContentType = 2, "image/png" }, 501},
		{"png without body", func(r *Request) { r.ContentType = "image/png" }, 0},
	}

	v := NewDefaultValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.modify(r)
			r.resolveURL()

			resp := NewResponse()
			ok := v.Validate(r, resp)
			if ok != (tt.status == 0) {
				t.Fatalf("Validate = %v, response %d %q", ok, resp.Status, resp.Output())
			}
			if !ok && resp.Status != tt.status {
				t.Errorf("status = %d, want %d", resp.Status, tt.status)
			}
		})
	}
}

func TestValidatorContentTypes(t *testing.T) {
	v := NewDefaultValidator("image/png")

	r := validRequest()
	r.ContentLength, r.ContentType = 1, "image/png"
	r.resolveURL()
	if !v.Validate(r, NewResponse()) {
		t.Error("configured type rejected")
	}

	r.ContentType = "application/json"
	if v.Validate(r, NewResponse()) {
		t.Error("type outside the configured set accepted")
	}
}
