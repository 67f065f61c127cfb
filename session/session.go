// Package session implements the duplex controller that binds one
// Transport to a resp.Decoder and a sendbuf.Send, exposing the messaging
// operations a Redis-compatible client pipeline needs: receive, send,
// graceful half-close, and the raw-byte escape hatches used by commands
// whose replies aren't RESP framed (e.g. a client library's RESTORE/DUMP
// payloads tunnelled alongside ordinary replies).
package session

import (
	"errors"
	"io"
	"sync"

	"github.com/luma/respwire/bytequeue"
	"github.com/luma/respwire/reactor"
	"github.com/luma/respwire/resp"
	"github.com/luma/respwire/sendbuf"
)

// ErrClosed is returned by any operation on a Session that has already
// closed, cleanly or otherwise.
var ErrClosed = errors.New("session: closed")

type prefetchResult struct {
	chunk []byte
	err   error
}

// Session is the duplex controller described in the specification: it
// prefetches reads, decodes one response per Receive, batches Sends into
// deferred flushes, and implements orderly half-close.
//
// A Session is single-owner: all of its methods are meant to be called
// from one logical flow (directly mirroring the single-threaded
// cooperative event loop the specification assumes), though the internal
// mutex makes it safe for the prefetch goroutine to observe and update
// shared state concurrently with that owner.
type Session struct {
	transport Transport
	queue     *bytequeue.Queue
	decoder   resp.Decoder
	sendBuf   *sendbuf.Send
	loop      *reactor.Loop

	mu          sync.Mutex
	flushPosted bool
	readDone    bool
	writeDone   bool
	closed      bool
	closeErr    error

	prefetchInFlight bool
	prefetchCh       chan prefetchResult
}

// Options configures a new Session. A zero Options uses the package
// defaults.
type Options struct {
	// InitialBufferSize seeds the adaptive send buffer's target capacity.
	// Zero selects sendbuf.DefaultSize.
	InitialBufferSize int

	// Pool allocates the send buffer's backing storage. Nil allocates a
	// private sendbuf.Pool for this Session alone.
	Pool *sendbuf.Pool
}

// New binds a Session to transport and immediately issues the first
// prefetch read, mirroring RedisMessaging.create in the protocol this
// engine is grounded on.
func New(transport Transport, opts Options) *Session {
	pool := opts.Pool
	if pool == nil {
		pool = sendbuf.NewPool()
	}

	s := &Session{
		transport:  transport,
		queue:      bytequeue.New(),
		loop:       reactor.New(),
		prefetchCh: make(chan prefetchResult, 1),
	}
	s.sendBuf = sendbuf.New(pool, s, opts.InitialBufferSize)
	s.startPrefetch()
	return s
}

// Flush implements sendbuf.Flusher: it hands a filled buffer's bytes to
// the transport and recycles the buffer once the write completes.
func (s *Session) Flush(buf *sendbuf.Buffer) error {
	err := s.transport.Write(buf.Bytes())
	buf.Recycle()
	if err != nil {
		return wrapTransportErr(err)
	}
	return nil
}

// Send stages cmd in the adaptive send buffer and schedules exactly one
// deferred flush for the current turn. Errors encoding or flushing the
// command do not surface through Send's return value; they close the
// session, as the specification requires ("errors surface via the shared
// close path, not via this ack").
func (s *Session) Send(cmd resp.Command) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	if err := s.sendBuf.Append(cmd); err != nil {
		s.closeEx(err)
		return nil
	}

	s.mu.Lock()
	alreadyPosted := s.flushPosted
	s.flushPosted = true
	s.mu.Unlock()

	if !alreadyPosted {
		s.loop.PostLast(func() {
			s.mu.Lock()
			s.flushPosted = false
			s.mu.Unlock()

			if err := s.sendBuf.Flush(); err != nil {
				s.closeEx(err)
			}
		})
	}

	return nil
}

// Receive returns the next complete response. It drains any deferred
// flush first -- a reply can't arrive for a command the peer hasn't seen
// yet -- then feeds the decoder from the queue, reading more from the
// transport as needed, and finally issues a prefetch read if the queue
// has run dry.
func (s *Session) Receive() (resp.Response, error) {
	s.mu.Lock()
	if s.closed {
		err := s.closeErr
		s.mu.Unlock()
		if err == nil {
			err = ErrClosed
		}
		return resp.Response{}, err
	}
	s.mu.Unlock()

	s.loop.Drain()

	for {
		val, ok, err := s.decoder.TryDecode(s.queue)
		if err != nil {
			s.closeEx(err)
			return resp.Response{}, err
		}
		if ok {
			s.prefetchIfEmpty()
			return val, nil
		}

		chunk, rerr := s.nextChunk()
		if rerr != nil {
			werr := wrapTransportErr(rerr)
			s.closeEx(werr)
			return resp.Response{}, werr
		}

		if chunk == nil {
			truncated := !s.decoder.Idle()

			s.mu.Lock()
			s.readDone = true
			s.mu.Unlock()

			if truncated {
				terr := &resp.TruncatedError{}
				s.closeEx(terr)
				return resp.Response{}, terr
			}

			s.closeIfDone()
			return resp.Response{}, ErrClosed
		}

		s.queue.Add(chunk)
	}
}

// SendEndOfStream writes the transport's end-of-write marker and marks the
// write half of the session done.
func (s *Session) SendEndOfStream() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	if err := s.transport.WriteEndOfStream(); err != nil {
		werr := wrapTransportErr(err)
		s.closeEx(werr)
		return werr
	}

	s.mu.Lock()
	s.writeDone = true
	s.mu.Unlock()

	s.closeIfDone()
	return nil
}

// SendBinaryStream returns a writer that tunnels raw bytes directly to the
// transport, bypassing the RESP encoder and the adaptive send buffer.
// Closing it marks the write half of the session done.
func (s *Session) SendBinaryStream() io.WriteCloser {
	return &binaryWriter{s: s}
}

// ReceiveBinaryStream returns a reader that first drains whatever bytes
// the queue already holds (so prefetched data isn't lost), then reads
// directly from the transport. Reaching end-of-stream marks the read half
// of the session done.
func (s *Session) ReceiveBinaryStream() io.Reader {
	return &binaryReader{s: s}
}

// Close closes the session cleanly, as if both halves had finished
// normally. It is idempotent.
func (s *Session) Close() error {
	return s.closeEx(nil)
}

func (s *Session) closeIfDone() {
	s.mu.Lock()
	done := s.readDone && s.writeDone
	s.mu.Unlock()
	if done {
		s.closeEx(nil)
	}
}

// closeEx closes the session exceptionally (err != nil) or cleanly
// (err == nil), recycling the queue and transferring the error to the
// transport. It is idempotent: later calls are no-ops.
func (s *Session) closeEx(err error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.closeErr
	}
	s.closed = true
	s.closeErr = err
	s.mu.Unlock()

	s.queue.Recycle()
	return s.transport.CloseEx(err)
}

func (s *Session) prefetchIfEmpty() {
	s.mu.Lock()
	empty := s.queue.IsEmpty()
	inFlight := s.prefetchInFlight
	s.mu.Unlock()

	if empty && !inFlight {
		s.startPrefetch()
	}
}

func (s *Session) startPrefetch() {
	s.mu.Lock()
	s.prefetchInFlight = true
	s.mu.Unlock()

	go func() {
		chunk, err := s.transport.Read()
		s.prefetchCh <- prefetchResult{chunk: chunk, err: err}
	}()
}

// nextChunk returns the next chunk of input, whether that means waiting on
// an already in-flight prefetch read or issuing a fresh synchronous one.
func (s *Session) nextChunk() ([]byte, error) {
	s.mu.Lock()
	inFlight := s.prefetchInFlight
	s.mu.Unlock()

	if inFlight {
		res := <-s.prefetchCh
		s.mu.Lock()
		s.prefetchInFlight = false
		s.mu.Unlock()
		return res.chunk, res.err
	}

	return s.transport.Read()
}

type binaryWriter struct {
	s *Session
}

func (w *binaryWriter) Write(p []byte) (int, error) {
	if err := w.s.transport.Write(p); err != nil {
		werr := wrapTransportErr(err)
		w.s.closeEx(werr)
		return 0, werr
	}
	return len(p), nil
}

func (w *binaryWriter) Close() error {
	w.s.mu.Lock()
	w.s.writeDone = true
	w.s.mu.Unlock()
	w.s.closeIfDone()
	return nil
}

type binaryReader struct {
	s *Session
}

func (r *binaryReader) Read(p []byte) (int, error) {
	s := r.s

	if !s.queue.IsEmpty() {
		n := s.queue.DrainTo(p, len(p))
		return n, nil
	}

	chunk, err := s.nextChunk()
	if err != nil {
		werr := wrapTransportErr(err)
		s.closeEx(werr)
		return 0, werr
	}

	if chunk == nil {
		s.mu.Lock()
		s.readDone = true
		s.mu.Unlock()
		s.closeIfDone()
		return 0, io.EOF
	}

	n := copy(p, chunk)
	if n < len(chunk) {
		s.queue.Add(chunk[n:])
	}
	return n, nil
}
