package protocol

import (
	"net/netip"
	"net/url"
	"strconv"
	"strings"
)

// protocol version, zero value means version was not parsed
type Version struct {
	Major, Minor int
}

var (
	HTTP09 = Version{0, 9}
	HTTP10 = Version{1, 0}
	HTTP11 = Version{1, 1}
)

// parse "HTTP/x.y"
func ParseVersion(raw string) (Version, bool) {
	rest, ok := strings.CutPrefix(raw, "HTTP/")
	if !ok {
		return Version{}, false
	}
	maj, min, ok := strings.Cut(rest, ".")
	if !ok || len(maj) != 1 || len(min) != 1 {
		return Version{}, false
	}
	if maj[0] < '0' || maj[0] > '9' || min[0] < '0' || min[0] > '9' {
		return Version{}, false
	}
	return Version{int(maj[0] - '0'), int(min[0] - '0')}, true
}

func (v Version) String() string {
	return "HTTP/" + strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

func (v Version) AtLeast(major, minor int) bool {
	return v.Major > major || v.Major == major && v.Minor >= minor
}

// versions this server speaks
func (v Version) Supported() bool {
	return v == HTTP09 || v == HTTP10 || v == HTTP11
}

// request is built up by the parser: method, url and version exactly
// once and in that order, then headers, then body
type Request struct {
	RawMethod string
	Method    Method

	RawURL      string
	URL         *url.URL // nil when RawURL is not a valid request target
	AbsoluteURL *url.URL // Host + URL, set once headers are done

	RawVersion string
	Version    Version

	Headers       *Headers
	ContentLength int64 // -1 if no Content-Length
	ContentType   string
	KeepAlive     bool
	Body          []byte

	LocalAddr  netip.AddrPort
	RemoteAddr netip.AddrPort
	Secure     bool // no TLS here, always false
}

func NewRequest() *Request {
	return &Request{
		Headers:       NewHeaders(),
		ContentLength: -1,
	}
}

// comma-joined header value or ""
func (r *Request) Header(name string) string {
	v, _ := r.Headers.Get(name)
	return v
}

func (r *Request) Host() string {
	return r.Header("Host")
}

func (r *Request) setMethod(raw string) {
	r.RawMethod = raw
	r.Method = ParseMethod(raw)
}

func (r *Request) setURL(raw string) {
	r.RawURL = raw
	r.URL = nil
	if raw == "*" {
		r.URL = &url.URL{Path: "*"}
		return
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return
	}
	r.URL = u
}

func (r *Request) setVersion(raw string) {
	r.RawVersion = raw
	if v, ok := ParseVersion(raw); ok {
		r.Version = v
	}
}

// headers are complete: pull out length, type and connection semantics
func (r *Request) finishHeaders(maxBody int64) error {
	if cl, ok := r.Headers.Get("Content-Length"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return ErrBadContentLength
		}
		if maxBody > 0 && n > maxBody {
			return ErrBodyTooLarge
		}
		r.ContentLength = n
	}
	r.ContentType = r.Header("Content-Type")

	switch {
	case r.Version.AtLeast(1, 1):
		r.KeepAlive = !r.Headers.HasToken("Connection", "close")
	case r.Version == HTTP10:
		r.KeepAlive = r.Headers.HasToken("Connection", "keep-alive")
	default:
		r.KeepAlive = false
	}
	return nil
}

// compose absolute url from Host header and request target
// absolute-form targets are taken as is, no Host means no absolute url
func (r *Request) resolveURL() {
	r.AbsoluteURL = nil
	if r.URL == nil {
		return
	}
	if r.URL.IsAbs() {
		u := *r.URL
		r.AbsoluteURL = &u
		return
	}

	host := strings.TrimSpace(r.Host())
	if host == "" {
		return
	}
	base, err := url.Parse("http://" + host)
	if err != nil || base.Host != host || base.Path != "" {
		return
	}

	u := *r.URL
	u.Scheme = "http"
	u.Host = host
	r.AbsoluteURL = &u
}
