package protocol

import "strings"

// request check before processing, on failure it fills resp with the error
type Validator interface {
	Validate(req *Request, resp *Response) bool
}

type ValidatorFunc func(req *Request, resp *Response) bool

func (f ValidatorFunc) Validate(req *Request, resp *Response) bool {
	return f(req, resp)
}

// media types accepted in request bodies by default
var defaultContentTypes = []string{
	"application/x-www-form-urlencoded",
	"application/json",
	"application/xml",
	"application/octet-stream",
	"text/plain",
	"text/xml",
}

// protocol level checks: version, target, Host, method, body encoding
type DefaultValidator struct {
	ContentTypes map[string]struct{}
}

func NewDefaultValidator(contentTypes ...string) *DefaultValidator {
	if len(contentTypes) == 0 {
		contentTypes = defaultContentTypes
	}
	v := &DefaultValidator{ContentTypes: make(map[string]struct{}, len(contentTypes))}
	for _, ct := range contentTypes {
		v.ContentTypes[mediaType(ct)] = struct{}{}
	}
	return v
}

func (v *DefaultValidator) Validate(req *Request, resp *Response) bool {
	switch {
	case !req.Version.Supported():
		resp.Error(505, "unsupported protocol version "+quote(req.RawVersion))
	case req.URL == nil:
		resp.Error(400, "malformed request target "+quote(req.RawURL))
	case !req.Headers.Has("Host"):
		resp.Error(400, "missing Host header")
	case req.AbsoluteURL == nil:
		resp.Error(400, "invalid Host header "+quote(req.Host()))
	case req.Method == MethodUnknown:
		resp.Error(501, "method "+quote(req.RawMethod)+" is not implemented")
	case req.Headers.Has("Transfer-Encoding"):
		resp.Error(501, "transfer codings are not implemented")
	case req.ContentLength > 0 && !v.supported(req.ContentType):
		resp.Error(501, "content type "+quote(req.ContentType)+" is not implemented")
	default:
		return true
	}
	return false
}

// no Content-Type on a body means octet stream
func (v *DefaultValidator) supported(ct string) bool {
	mt := mediaType(ct)
	if mt == "" {
		mt = "application/octet-stream"
	}
	_, ok := v.ContentTypes[mt]
	return ok
}

// "Text/Plain; charset=utf-8" -> "text/plain"
func mediaType(ct string) string {
	mt, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func quote(s string) string {
	return "\"" + s + "\""
}
