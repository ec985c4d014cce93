package protocol

// lookup table for status lines
// i use flat list instead of map bc codes is fixed
var statusTable = [600]string{
	// 1xx
	100: "100 Continue",
	101: "101 Switching Protocols",

	// 2xx
	200: "200 OK",
	201: "201 Created",
	202: "202 Accepted",
	203: "203 Non-Authoritative Information",
	204: "204 No Content",
	206: "206 Partial Content",
	207: "207 Multi-Status",

	// 3xx
	300: "300 Multiple Choices",
	301: "301 Moved Permanently",
	302: "302 Found",
	303: "303 See Other",
	304: "304 Not Modified",
	307: "307 Temporary Redirect",
	308: "308 Permanent Redirect",

	// 4xx
	400: "400 Bad Request",
	401: "401 Unauthorized",
	403: "403 Forbidden",
	404: "404 Not Found",
	405: "405 Method Not Allowed",
	406: "406 Not Acceptable",
	408: "408 Request Timeout",
	409: "409 Conflict",
	410: "410 Gone",
	411: "411 Length Required",
	412: "412 Precondition Failed",
	413: "413 Payload Too Large",
	414: "414 URI Too Long",
	415: "415 Unsupported Media Type",
	417: "417 Expectation Failed",
	423: "423 Locked",
	429: "429 Too Many Requests",
	431: "431 Request Header Fields Too Large",

	// 5xx
	500: "500 Internal Server Error",
	501: "501 Not Implemented",
	502: "502 Bad Gateway",
	503: "503 Service Unavailable",
	504: "504 Gateway Timeout",
	505: "505 HTTP Version Not Supported",
	507: "507 Insufficient Storage",
}

// for fast access
var (
	proto = []byte("HTTP/1.1 ")
	crlf  = []byte("\r\n")
	colon = []byte(": ")
)

// status line text without protocol, like "404 Not Found"
// codes out of 100..599 become 500
func StatusText(code int) string {
	if code < 100 || code > 599 {
		return statusTable[500]
	}
	if st := statusTable[code]; st != "" {
		return st
	}
	return string(AppendUint(nil, uint(code))) + " Unknown"
}

// append decimal n to buf w/o strconv, zero-alloc if buf has room
// n should be uint bc / 10 (and % 10) for uints is faster
func AppendUint(buf []byte, n uint) []byte {
	if n == 0 {
		return append(buf, '0')
	}

	var tmp [20]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte(n%10) + '0'
		n /= 10
	}
	return append(buf, tmp[i:]...)
}

// append status line, headers and the blank line to dst
// dst is normally a pooled frame so small heads don't alloc
func AppendHead(dst []byte, code int, headers *Headers) []byte {
	dst = append(dst, proto...)
	dst = append(dst, StatusText(code)...)
	dst = append(dst, crlf...)

	for _, h := range headers.All() {
		dst = append(dst, h.name...)
		dst = append(dst, colon...)
		dst = append(dst, h.Value...)
		for _, v := range h.Values {
			dst = append(dst, ", "...)
			dst = append(dst, v...)
		}
		dst = append(dst, crlf...)
	}

	return append(dst, crlf...)
}
