// frame pool: fixed-size byte buffers reused across connections
package engine

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

const (
	defaultFrameSize = 1 << 13
)

// frame is a fixed capacity buffer checked out from a FramePool,
// ContentSize is the count of valid bytes at the start of Buf
type Frame struct {
	Buf         []byte
	ContentSize int

	pool *FramePool
}

// valid bytes of frame
func (f *Frame) Content() []byte {
	return f.Buf[:f.ContentSize]
}

func (f *Frame) Cap() int {
	return len(f.Buf)
}

// set content size, clamped to [0, Cap]
func (f *Frame) SetContentSize(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(f.Buf) {
		n = len(f.Buf)
	}
	f.ContentSize = n
}

// give frame back to its pool
func (f *Frame) Release() {
	if f.pool != nil {
		f.pool.CheckIn(f)
	}
}

// pool for frames
// i don't use sync.Pool here bc idle frames must survive GC, pool only grows
type FramePool struct {
	size int

	mu   sync.Mutex
	idle []*Frame // LIFO so hot frames stay in cache

	allocated *xsync.Counter
	out       *xsync.Counter
}

func NewFramePool(size int) *FramePool {
	if size <= 0 {
		size = defaultFrameSize
	}
	return &FramePool{
		size:      size,
		allocated: xsync.NewCounter(),
		out:       xsync.NewCounter(),
	}
}

// frame size for this pool
func (p *FramePool) Size() int {
	return p.size
}

// get idle frame or alloc new one if there is no idle frames
func (p *FramePool) CheckOut() *Frame {
	p.out.Inc()

	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		f := p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return f
	}
	p.mu.Unlock()

	p.allocated.Inc()
	return &Frame{Buf: make([]byte, p.size), pool: p}
}

// put frame back, frame must not be used by caller after it
func (p *FramePool) CheckIn(f *Frame) {
	if f == nil || f.pool != p {
		return
	}
	f.ContentSize = 0
	p.out.Dec()

	p.mu.Lock()
	p.idle = append(p.idle, f)
	p.mu.Unlock()
}

// pool counters
type PoolStats struct {
	Allocated  int64
	CheckedOut int64
	Idle       int
}

func (p *FramePool) Stats() PoolStats {
	p.mu.Lock()
	idle := len(p.idle)
	p.mu.Unlock()

	return PoolStats{
		Allocated:  p.allocated.Value(),
		CheckedOut: p.out.Value(),
		Idle:       idle,
	}
}
