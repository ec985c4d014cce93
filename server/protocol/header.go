package protocol

import (
	"strings"
)

// header with fixed name, Value is primary value and Values are
// the secondary ones of a repeated list-valued header
type Header struct {
	name   string
	Value  string
	Values []string
}

func (h *Header) Name() string {
	return h.name
}

// all values comma-joined
func (h *Header) String() string {
	if len(h.Values) == 0 {
		return h.Value
	}

	var sb strings.Builder
	sb.WriteString(h.Value)
	for _, v := range h.Values {
		sb.WriteString(", ")
		sb.WriteString(v)
	}
	return sb.String()
}

// headers that can't be a list, repeating them replaces the value
var singletonHeaders = map[string]struct{}{
	"host":                {},
	"content-length":      {},
	"content-type":        {},
	"authorization":       {},
	"proxy-authorization": {},
	"user-agent":          {},
	"referer":             {},
	"from":                {},
	"if-modified-since":   {},
	"if-unmodified-since": {},
	"max-forwards":        {},
	"range":               {},
	"age":                 {},
	"etag":                {},
	"expires":             {},
	"last-modified":       {},
	"location":            {},
	"retry-after":         {},
	"server":              {},
	"date":                {},
}

// order preserving header collection, names are case-insensitive and unique
type Headers struct {
	list  []*Header
	index map[string]int // lower-case name -> position in list
}

func NewHeaders() *Headers {
	return &Headers{index: make(map[string]int, 8)}
}

func key(name string) string {
	return strings.ToLower(name)
}

func (hs *Headers) Len() int {
	return len(hs.list)
}

// add value, repeated name appends a secondary value (list headers)
// or replaces it (singleton headers)
func (hs *Headers) Add(name, value string) error {
	if name == "" {
		return ErrEmptyHeaderName
	}

	k := key(name)
	if i, ok := hs.index[k]; ok {
		h := hs.list[i]
		if _, single := singletonHeaders[k]; single {
			h.Value = value
			h.Values = nil
		} else {
			h.Values = append(h.Values, value)
		}
		return nil
	}

	hs.index[k] = len(hs.list)
	hs.list = append(hs.list, &Header{name: name, Value: value})
	return nil
}

// replace all values of name, position of existing header is kept
func (hs *Headers) Set(name, value string) error {
	if name == "" {
		return ErrEmptyHeaderName
	}

	k := key(name)
	if i, ok := hs.index[k]; ok {
		hs.list[i].Value = value
		hs.list[i].Values = nil
		return nil
	}

	hs.index[k] = len(hs.list)
	hs.list = append(hs.list, &Header{name: name, Value: value})
	return nil
}

func (hs *Headers) Header(name string) *Header {
	if i, ok := hs.index[key(name)]; ok {
		return hs.list[i]
	}
	return nil
}

// comma-joined value
func (hs *Headers) Get(name string) (string, bool) {
	h := hs.Header(name)
	if h == nil {
		return "", false
	}
	return h.String(), true
}

func (hs *Headers) Has(name string) bool {
	_, ok := hs.index[key(name)]
	return ok
}

func (hs *Headers) Del(name string) {
	k := key(name)
	i, ok := hs.index[k]
	if !ok {
		return
	}

	copy(hs.list[i:], hs.list[i+1:])
	hs.list[len(hs.list)-1] = nil
	hs.list = hs.list[:len(hs.list)-1]

	delete(hs.index, k)
	for j := i; j < len(hs.list); j++ {
		hs.index[key(hs.list[j].name)] = j
	}
}

// headers in insertion order, slice must not be modified
func (hs *Headers) All() []*Header {
	return hs.list
}

// true if comma separated value of name has token (case-insensitive)
func (hs *Headers) HasToken(name, token string) bool {
	h := hs.Header(name)
	if h == nil {
		return false
	}

	check := func(v string) bool {
		for part := range strings.SplitSeq(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
		return false
	}

	if check(h.Value) {
		return true
	}
	for _, v := range h.Values {
		if check(v) {
			return true
		}
	}
	return false
}

func (hs *Headers) Reset() {
	clear(hs.list)
	hs.list = hs.list[:0]
	clear(hs.index)
}
