package engine

import (
	"bytes"
	"io"
)

// FIFO of received bytes not consumed by protocol yet
// head is read position, data before head is dead and compacted on write
type ByteQueue struct {
	buf  []byte
	head int
}

func (q *ByteQueue) Len() int {
	return len(q.buf) - q.head
}

// append bytes to tail
func (q *ByteQueue) Write(p []byte) (int, error) {
	if q.head > 0 && q.head >= len(q.buf)/2 {
		n := copy(q.buf, q.buf[q.head:])
		q.buf = q.buf[:n]
		q.head = 0
	}
	q.buf = append(q.buf, p...)
	return len(p), nil
}

// pop one byte from head
func (q *ByteQueue) ReadByte() (byte, error) {
	if q.head >= len(q.buf) {
		return 0, io.EOF
	}
	b := q.buf[q.head]
	q.head++
	if q.head == len(q.buf) {
		q.buf = q.buf[:0]
		q.head = 0
	}
	return b, nil
}

// view of n bytes from head without consuming them, less if queue is shorter
func (q *ByteQueue) Peek(n int) []byte {
	if n > q.Len() {
		n = q.Len()
	}
	return q.buf[q.head : q.head+n]
}

// all unconsumed bytes, valid until next Write or ReadByte
func (q *ByteQueue) Bytes() []byte {
	return q.buf[q.head:]
}

func (q *ByteQueue) Contains(sep []byte) bool {
	return bytes.Contains(q.buf[q.head:], sep)
}

func (q *ByteQueue) Reset() {
	q.buf = q.buf[:0]
	q.head = 0
}

// drop n bytes from head
func (q *ByteQueue) Discard(n int) {
	if n > q.Len() {
		n = q.Len()
	}
	q.head += n
	if q.head == len(q.buf) {
		q.buf = q.buf[:0]
		q.head = 0
	}
}
