package protocol

// request method, MethodUnknown keeps the raw token in Request.RawMethod
type Method uint8

const (
	MethodUnknown Method = iota
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodTrace
	MethodOptions
	MethodConnect
	MethodPatch

	// WebDAV
	MethodPropfind
	MethodProppatch
	MethodMkcol
	MethodCopy
	MethodMove
	MethodLock
	MethodUnlock
)

var methodNames = [...]string{
	MethodUnknown:   "UNKNOWN",
	MethodGet:       "GET",
	MethodHead:      "HEAD",
	MethodPost:      "POST",
	MethodPut:       "PUT",
	MethodDelete:    "DELETE",
	MethodTrace:     "TRACE",
	MethodOptions:   "OPTIONS",
	MethodConnect:   "CONNECT",
	MethodPatch:     "PATCH",
	MethodPropfind:  "PROPFIND",
	MethodProppatch: "PROPPATCH",
	MethodMkcol:     "MKCOL",
	MethodCopy:      "COPY",
	MethodMove:      "MOVE",
	MethodLock:      "LOCK",
	MethodUnlock:    "UNLOCK",
}

// methods are case-sensitive
var methodTable = func() map[string]Method {
	m := make(map[string]Method, len(methodNames))
	for i, name := range methodNames {
		if Method(i) != MethodUnknown {
			m[name] = Method(i)
		}
	}
	return m
}()

func ParseMethod(raw string) Method {
	return methodTable[raw]
}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return methodNames[MethodUnknown]
}
