package router

import (
	"net/url"
	"testing"

	"github.com/s00inx/sockhttp/server/protocol"
)

func TestTrieMatch(t *testing.T) {
	root := &node{}

	called := ""
	mk := func(name string) Handler { return func(*Context) { called = name } }

	root.insert("/api/v1/user", mk("user"))
	root.insert("/api/v1/order", mk("order"))
	root.insert("/api/v1/user/:id", mk("user-id"))
	root.insert("/api/v1/user/me", mk("me"))
	root.insert("/files/:dir/list", mk("list"))
	root.insert("/files/:dir/:name", mk("file"))
	root.insert("/", mk("root"))

	tests := []struct {
		name       string
		path       string
		want       string
		wantParams map[string]string
	}{
		{"static", "/api/v1/user", "user", nil},
		{"static order", "/api/v1/order", "order", nil},
		{"trailing slash", "/api/v1/order/", "order", nil},
		{"param", "/api/v1/user/123", "user-id", map[string]string{"id": "123"}},
		{"static beats param", "/api/v1/user/me", "me", nil},
		{"param then static", "/files/docs/list", "list", map[string]string{"dir": "docs"}},
		{"two params", "/files/docs/readme", "file", map[string]string{"dir": "docs", "name": "readme"}},
		{"root", "/", "root", nil},
		{"no match", "/api/v1/unknown", "", nil},
		{"partial", "/api/v1", "", nil},
		{"prefix is not a segment", "/api/v1/users", "", nil},
		{"too deep", "/api/v1/user/1/2", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = ""
			var ps []Param

			h := root.match(tt.path, &ps)
			if (h != nil) != (tt.want != "") {
				t.Fatalf("match(%q) found = %v, want %q", tt.path, h != nil, tt.want)
			}
			if h == nil {
				return
			}
			h(nil)
			if called != tt.want {
				t.Errorf("handler = %q, want %q", called, tt.want)
			}

			if len(ps) != len(tt.wantParams) {
				t.Fatalf("params = %v, want %v", ps, tt.wantParams)
			}
			for _, p := range ps {
				if tt.wantParams[p.Key] != p.Val {
					t.Errorf("param %s = %q, want %q", p.Key, p.Val, tt.wantParams[p.Key])
				}
			}
		})
	}
}

func request(t *testing.T, method protocol.Method, target string) (*protocol.Request, *protocol.Response) {
	t.Helper()

	u, err := url.ParseRequestURI(target)
	if err != nil {
		t.Fatal(err)
	}
	req := protocol.NewRequest()
	req.Method = method
	req.RawMethod = method.String()
	req.URL = u
	req.RawURL = target
	req.RawVersion = "HTTP/1.1"
	return req, protocol.NewResponse()
}

func TestRouterProcessRequest(t *testing.T) {
	r := NewHTTPRouter()
	r.Get("/users/:id", func(c *Context) {
		c.String(200, "user "+c.Param("id")+" "+c.QueryGet("fields"))
	})
	r.Post("/users", func(c *Context) {
		c.SetHeader("Location", "/users/1")
		c.Send(201, c.Body())
	})
	r.Delete("/users/:id", func(c *Context) { c.SetCode(204) })

	t.Run("get with param and query", func(t *testing.T) {
		req, resp := request(t, protocol.MethodGet, "/users/42?x=1&fields=name")
		r.ProcessRequest(req, resp)
		if resp.Status != 200 || string(resp.Output()) != "user 42 name" {
			t.Errorf("got %d %q", resp.Status, resp.Output())
		}
		if resp.MimeType != "text/plain; charset=utf-8" {
			t.Errorf("mime = %q", resp.MimeType)
		}
	})

	t.Run("post", func(t *testing.T) {
		req, resp := request(t, protocol.MethodPost, "/users")
		req.Body = []byte(`{"name":"x"}`)
		r.ProcessRequest(req, resp)
		if resp.Status != 201 || string(resp.Output()) != `{"name":"x"}` {
			t.Errorf("got %d %q", resp.Status, resp.Output())
		}
		if v, _ := resp.Headers.Get("location"); v != "/users/1" {
			t.Errorf("Location = %q", v)
		}
	})

	t.Run("head falls back to get", func(t *testing.T) {
		req, resp := request(t, protocol.MethodHead, "/users/7")
		r.ProcessRequest(req, resp)
		if resp.Status != 200 || string(resp.Output()) != "user 7 " {
			t.Errorf("got %d %q", resp.Status, resp.Output())
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		req, resp := request(t, protocol.MethodPut, "/users/7")
		r.ProcessRequest(req, resp)
		if resp.Status != 405 {
			t.Errorf("status = %d", resp.Status)
		}
		if allow, _ := resp.Headers.Get("Allow"); allow != "DELETE, GET" {
			t.Errorf("Allow = %q", allow)
		}
	})

	t.Run("not found", func(t *testing.T) {
		req, resp := request(t, protocol.MethodGet, "/nothing")
		r.ProcessRequest(req, resp)
		if resp.Status != 404 || string(resp.Output()) != "404 Not Found\n\nno resource at /nothing\n" {
			t.Errorf("got %d %q", resp.Status, resp.Output())
		}
	})

	t.Run("no parsed target", func(t *testing.T) {
		req, resp := request(t, protocol.MethodGet, "/users/1")
		req.URL = nil
		req.RawURL = "users/1"
		r.ProcessRequest(req, resp)
		if resp.Status != 400 {
			t.Errorf("status = %d", resp.Status)
		}
	})

	t.Run("custom not found", func(t *testing.T) {
		r := NewHTTPRouter()
		r.NotFound = func(c *Context) { c.String(404, "nope "+c.Path()) }

		req, resp := request(t, protocol.MethodGet, "/x")
		r.ProcessRequest(req, resp)
		if string(resp.Output()) != "nope /x" {
			t.Errorf("got %q", resp.Output())
		}
	})
}

func TestContextAccessors(t *testing.T) {
	req, resp := request(t, protocol.MethodGet, "/a?k=v&empty=&k=w")
	req.Headers.Add("X-Id", "9")

	c := &Context{}
	c.Reset(req, resp)

	if c.Method() != protocol.MethodGet || c.Path() != "/a" || c.Protocol() != "HTTP/1.1" {
		t.Errorf("method %v path %q proto %q", c.Method(), c.Path(), c.Protocol())
	}
	if c.Query() != "k=v&empty=&k=w" {
		t.Errorf("query = %q", c.Query())
	}
	if c.QueryGet("k") != "v" || c.QueryGet("empty") != "" || c.QueryGet("missing") != "" {
		t.Error("QueryGet")
	}
	if c.Header("x-id") != "9" {
		t.Errorf("header = %q", c.Header("x-id"))
	}
	if len(c.Params()) != 0 || c.Param("id") != "" {
		t.Error("params after reset")
	}
}

func BenchmarkRouterMatchStatic(b *testing.B) {
	root := &node{}
	root.insert("/api/v1/user/profile/settings", func(*Context) {})
	ps := make([]Param, 0, 5)

	b.ReportAllocs()
	for b.Loop() {
		ps = ps[:0]
		root.match("/api/v1/user/profile/settings", &ps)
	}
}

func BenchmarkRouterMatchParam(b *testing.B) {
	root := &node{}
	root.insert("/api/v1/user/:id/posts/:post_id", func(*Context) {})
	ps := make([]Param, 0, 5)

	b.ReportAllocs()
	for b.Loop() {
		ps = ps[:0]
		root.match("/api/v1/user/123/posts/456", &ps)
	}
}
