package protocol

import "strconv"

const (
	DefaultMimeType = "text/html; charset=utf-8"
	textMimeType    = "text/plain; charset=utf-8"
)

// response accumulates status, headers and body until the writer sends it
// headers must not change once HeadersSent is true
type Response struct {
	Status   int
	Headers  *Headers
	MimeType string

	HeadersSent bool
	Complete    bool
	Close       bool // close connection after this response

	output []byte
}

func NewResponse() *Response {
	return &Response{
		Status:   200,
		Headers:  NewHeaders(),
		MimeType: DefaultMimeType,
	}
}

func (r *Response) Write(p []byte) (int, error) {
	r.output = append(r.output, p...)
	return len(p), nil
}

func (r *Response) WriteString(s string) (int, error) {
	r.output = append(r.output, s...)
	return len(s), nil
}

// buffered body, not sent yet
func (r *Response) Output() []byte {
	return r.output
}

func (r *Response) ResetOutput() {
	r.output = r.output[:0]
}

// Content-Type set here also becomes the MimeType
func (r *Response) SetHeader(name, value string) error {
	if r.HeadersSent {
		return ErrHeadersSent
	}
	if key(name) == "content-type" {
		r.MimeType = value
	}
	return r.Headers.Set(name, value)
}

func (r *Response) AddHeader(name, value string) error {
	if r.HeadersSent {
		return ErrHeadersSent
	}
	if key(name) == "content-type" {
		r.MimeType = value
	}
	return r.Headers.Add(name, value)
}

func (r *Response) DelHeader(name string) error {
	if r.HeadersSent {
		return ErrHeadersSent
	}
	r.Headers.Del(name)
	return nil
}

// replace body with plain text diagnostic for status
func (r *Response) Error(status int, msg string) {
	if r.HeadersSent {
		return
	}
	r.Status = status
	r.MimeType = textMimeType
	r.Headers.Del("Content-Type")
	r.Headers.Del("Content-Length")

	r.ResetOutput()
	r.output = append(r.output, StatusText(status)...)
	if msg != "" {
		r.output = append(r.output, "\n\n"...)
		r.output = append(r.output, msg...)
	}
	r.output = append(r.output, '\n')
}

// body-less statuses
func bodyAllowed(status int) bool {
	return status >= 200 && status != 204 && status != 304
}

func contentLength(r *Response) string {
	return strconv.Itoa(len(r.output))
}
