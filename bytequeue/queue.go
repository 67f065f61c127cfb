// Package bytequeue implements the ordered byte-chunk collaborator that
// resp.Decoder consumes from. It holds an ordered sequence of immutable
// byte chunks handed in from a transport and lets the decoder peek, take
// exact sizes, and drain bytes without ever copying a chunk it doesn't
// have to.
package bytequeue

// Queue is an ordered, amortised-O(1) sequence of byte chunks. Chunks are
// treated as immutable once added: the Queue never mutates a chunk handed
// to it by Add, and callers must not mutate a chunk after adding it.
//
// A Queue is owned by exactly one Decoder/Session at a time; it is not
// safe for concurrent use.
type Queue struct {
	chunks [][]byte
	head   int // index into chunks of the first non-empty chunk
	off    int // byte offset into chunks[head]
	total  int // remaining bytes across all chunks
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{}
}

// IsEmpty reports whether the queue holds no unread bytes.
func (q *Queue) IsEmpty() bool {
	return q.total == 0
}

// RemainingBytes returns the number of unread bytes currently queued.
func (q *Queue) RemainingBytes() int {
	return q.total
}

// HasRemainingBytes reports whether at least n unread bytes are queued.
func (q *Queue) HasRemainingBytes(n int) bool {
	return q.total >= n
}

// Add appends a chunk to the tail of the queue. An empty chunk is ignored.
func (q *Queue) Add(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	q.chunks = append(q.chunks, chunk)
	q.total += len(chunk)
}

// GetByte consumes and returns the next unread byte. ok is false if the
// queue is empty.
func (q *Queue) GetByte() (b byte, ok bool) {
	q.skipEmptyChunks()
	if q.total == 0 {
		return 0, false
	}
	b = q.chunks[q.head][q.off]
	q.off++
	q.total--
	q.skipEmptyChunks()
	return b, true
}

// PeekByte returns the next unread byte without consuming it. ok is false
// if the queue is empty.
func (q *Queue) PeekByte() (b byte, ok bool) {
	q.skipEmptyChunks()
	if q.total == 0 {
		return 0, false
	}
	return q.chunks[q.head][q.off], true
}

// TakeExactSize consumes and returns exactly n bytes as a single contiguous
// slice. The caller must have already checked HasRemainingBytes(n); if
// fewer than n bytes are queued, TakeExactSize takes everything available
// and returns a shorter slice.
//
// When the requested range lies entirely within one chunk, the returned
// slice aliases that chunk (no copy). Otherwise a fresh slice is allocated
// and the spanning bytes are copied into it.
func (q *Queue) TakeExactSize(n int) []byte {
	q.skipEmptyChunks()
	if n <= 0 || q.total == 0 {
		return nil
	}
	if n > q.total {
		n = q.total
	}

	first := q.chunks[q.head][q.off:]
	if len(first) >= n {
		out := first[:n]
		q.off += n
		q.total -= n
		q.skipEmptyChunks()
		return out
	}

	out := make([]byte, n)
	taken := q.DrainTo(out, n)
	return out[:taken]
}

// DrainTo copies up to n bytes into dst, consuming them from the queue, and
// returns the number of bytes actually copied. It never copies more than
// len(dst) or n bytes, whichever is smaller.
func (q *Queue) DrainTo(dst []byte, n int) int {
	if n > len(dst) {
		n = len(dst)
	}

	copied := 0
	for copied < n {
		q.skipEmptyChunks()
		if q.total == 0 {
			break
		}

		chunk := q.chunks[q.head][q.off:]
		want := n - copied
		if want > len(chunk) {
			want = len(chunk)
		}

		copy(dst[copied:copied+want], chunk[:want])
		q.off += want
		q.total -= want
		copied += want
	}

	q.skipEmptyChunks()
	return copied
}

// Recycle discards all queued chunks, returning the Queue to its initial
// empty state so it can be reused.
func (q *Queue) Recycle() {
	q.chunks = nil
	q.head = 0
	q.off = 0
	q.total = 0
}

// Iterator returns the remaining unread chunks, oldest first, each
// trimmed to its unread suffix. It is used when a caller wants to drain
// whatever bytes the queue already holds before falling through to the
// transport, e.g. when switching to a raw binary stream.
func (q *Queue) Iterator() [][]byte {
	q.skipEmptyChunks()
	if q.total == 0 {
		return nil
	}

	out := make([][]byte, 0, len(q.chunks)-q.head)
	out = append(out, q.chunks[q.head][q.off:])
	out = append(out, q.chunks[q.head+1:]...)
	return out
}

// skipEmptyChunks advances head past any chunks that have been fully
// consumed, so lookups never have to skip over them repeatedly.
func (q *Queue) skipEmptyChunks() {
	for q.head < len(q.chunks) && q.off >= len(q.chunks[q.head]) {
		q.head++
		q.off = 0
	}
	if q.head == len(q.chunks) {
		q.chunks = nil
		q.head = 0
	}
}
