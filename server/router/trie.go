// prefix tree for router logic, it is not acessible from upper packages so use an abstraction: Router
package router

import (
	"strings"
)

// tree node
type node struct {
	prefix  string
	ch      []node  // children in flat area for data locality to not miss the cache
	handler Handler // our handler func
	isparam bool    // is node prefix param?
}

// insert node to tree that means link path and handler
func (n *node) insert(path string, h Handler) {
	// cut first slash
	path = strings.TrimPrefix(path, "/")

	// split our url to segments /api/handler -> {api, handler}
	cur := n
	for s := range strings.SplitSeq(path, "/") {
		// skip empty route (/)
		if len(s) == 0 {
			continue
		}

		// params starting from : (:id, :name)
		isparam, pref := s[0] == ':', s
		if isparam {
			pref = s[1:]
		}

		// find child index in flat child array
		idx := -1
		for i := range cur.ch {
			if cur.ch[i].prefix == pref && cur.ch[i].isparam == isparam {
				idx = i
				break
			}
		}

		// if no target -> make new node
		if idx == -1 {
			cur.ch = append(cur.ch, node{prefix: pref, isparam: isparam})
			idx = len(cur.ch) - 1
		}
		cur = &cur.ch[idx]
	}
	// set node handler
	cur.handler = h
}

// check if path match any route and collect params,
// static children win over params, params backtrack on dead ends
func (n *node) match(path string, params *[]Param) Handler {
	return n.find(path, params)
}

func (n *node) find(fp string, params *[]Param) Handler {
	fp = strings.TrimPrefix(fp, "/")

	if len(fp) == 0 {
		return n.handler
	}
	for i := range n.ch {
		c := &n.ch[i]
		if !c.isparam && strings.HasPrefix(fp, c.prefix) {
			rem := fp[len(c.prefix):]
			if len(rem) == 0 || rem[0] == '/' {
				if h := c.find(rem, params); h != nil {
					return h
				}
			}
		}
	}

	for i := range n.ch {
		c := &n.ch[i]
		if c.isparam {
			end := strings.IndexByte(fp, '/')
			if end == -1 {
				end = len(fp)
			}

			pIdx := len(*params)
			*params = append(*params, Param{Key: c.prefix, Val: fp[:end]})

			if h := c.find(fp[end:], params); h != nil {
				return h
			}

			*params = (*params)[:pIdx]
		}
	}

	return nil
}
