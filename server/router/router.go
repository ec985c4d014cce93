package router

import (
	"slices"
	"strings"
	"sync"

	"github.com/s00inx/sockhttp/server/protocol"
)

// handler func signature, it works only with context
type Handler func(c *Context)

// method -> path tree, it resolves requests for the protocol layer
type HTTPRouter struct {
	trees map[protocol.Method]*node

	NotFound Handler
}

// init a new router
func NewHTTPRouter() *HTTPRouter {
	return &HTTPRouter{
		trees: make(map[protocol.Method]*node),
	}
}

func (r *HTTPRouter) Handle(m protocol.Method, path string, h Handler) {
	root, ok := r.trees[m]
	if !ok {
		root = &node{}
		r.trees[m] = root
	}
	root.insert(path, h)
}

func (r *HTTPRouter) Get(path string, h Handler)    { r.Handle(protocol.MethodGet, path, h) }
func (r *HTTPRouter) Post(path string, h Handler)   { r.Handle(protocol.MethodPost, path, h) }
func (r *HTTPRouter) Put(path string, h Handler)    { r.Handle(protocol.MethodPut, path, h) }
func (r *HTTPRouter) Patch(path string, h Handler)  { r.Handle(protocol.MethodPatch, path, h) }
func (r *HTTPRouter) Delete(path string, h Handler) { r.Handle(protocol.MethodDelete, path, h) }

var ctxPool = sync.Pool{
	New: func() any {
		return &Context{params: make([]Param, 0, 8)}
	},
}

// find handler for req, params go to ps
// HEAD falls back to GET routes
func (r *HTTPRouter) Serve(req *protocol.Request, ps *[]Param) Handler {
	if req.URL == nil {
		return nil
	}
	path := req.URL.Path

	if root, ok := r.trees[req.Method]; ok {
		if h := root.match(path, ps); h != nil {
			return h
		}
	}
	if req.Method == protocol.MethodHead {
		if root, ok := r.trees[protocol.MethodGet]; ok {
			*ps = (*ps)[:0]
			return root.match(path, ps)
		}
	}
	return nil
}

// methods that have a route for path, for 405 Allow
func (r *HTTPRouter) allowed(path string) []string {
	var allow []string
	var ps []Param
	for m, root := range r.trees {
		ps = ps[:0]
		if root.match(path, &ps) != nil {
			allow = append(allow, m.String())
		}
	}
	slices.Sort(allow)
	return allow
}

// ProcessRequest makes router a protocol.Handler
func (r *HTTPRouter) ProcessRequest(req *protocol.Request, resp *protocol.Response) {
	// a custom validator may let an unparsed target through
	if req.URL == nil {
		resp.Error(400, "malformed request target "+req.RawURL)
		return
	}

	c := ctxPool.Get().(*Context)
	c.Reset(req, resp)
	defer ctxPool.Put(c)

	if h := r.Serve(req, &c.params); h != nil {
		h(c)
		return
	}

	if allow := r.allowed(req.URL.Path); len(allow) > 0 {
		resp.Error(405, "")
		resp.SetHeader("Allow", strings.Join(allow, ", "))
		return
	}
	if r.NotFound != nil {
		r.NotFound(c)
		return
	}
	resp.Error(404, "no resource at "+req.URL.Path)
}
