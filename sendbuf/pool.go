package sendbuf

// Buffer is a single growable write destination with a tail cursor, as
// required by the buffer-pool collaborator contract in the specification.
// respwire's own pool allocates plain byte slices; a host embedding the
// engine in a larger cooperative-I/O runtime may substitute a pooled
// implementation that recycles backing arrays instead.
type Buffer struct {
	data []byte
	tail int
	pool *Pool
}

// Bytes returns the written prefix of the buffer.
func (b *Buffer) Bytes() []byte { return b.data[:b.tail] }

// Full returns the entire backing array, including unwritten capacity past
// the tail. Encoders write into this directly, starting at Tail().
func (b *Buffer) Full() []byte { return b.data }

// Cap returns the buffer's total capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Tail returns the current write cursor.
func (b *Buffer) Tail() int { return b.tail }

// SetTail repositions the write cursor, e.g. to roll back a partial write.
func (b *Buffer) SetTail(n int) { b.tail = n }

// WriteRemaining returns how many more bytes can be written before the
// buffer is full.
func (b *Buffer) WriteRemaining() int { return len(b.data) - b.tail }

// CanRead reports whether the buffer holds any written bytes.
func (b *Buffer) CanRead() bool { return b.tail > 0 }

// Recycle returns the buffer to its pool's free list.
func (b *Buffer) Recycle() {
	if b.pool != nil {
		b.pool.put(b)
	}
}

// Pool allocates Buffers. The default implementation is an unbounded
// free-list allocator over recycled Buffers; it exists mainly so Session and Buffer don't
// hard-code an allocation strategy, matching the "buffer pool collaborator"
// contract the specification calls out as external to the core.
type Pool struct {
	free []*Buffer
}

// NewPool returns an empty Pool.
func NewPool() *Pool { return &Pool{} }

// Allocate returns a Buffer with at least capacity bytes of backing
// storage, reusing a recycled one if one of sufficient size is free.
func (p *Pool) Allocate(capacity int) *Buffer {
	for i, b := range p.free {
		if cap(b.data) >= capacity {
			p.free[i] = p.free[len(p.free)-1]
			p.free = p.free[:len(p.free)-1]
			b.data = b.data[:capacity]
			b.tail = 0
			b.pool = p
			return b
		}
	}
	return &Buffer{data: make([]byte, capacity), pool: p}
}

func (p *Pool) put(b *Buffer) {
	b.tail = 0
	p.free = append(p.free, b)
}
