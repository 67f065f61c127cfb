// Package sendbuf implements the adaptive write-staging buffer that sits
// between a Session's Send calls and the transport. It grows on evidence
// (an under-estimated command retried into a bigger buffer) and decays
// geometrically back toward its configured default after each flush.
package sendbuf

import (
	"github.com/luma/respwire/resp"
)

// DefaultSize is the initial and floor target capacity, matching the
// specification's default of 16 KiB. It is overridable per Send via New.
// The respwire CLI reads the RESPWIRE_SEND_BUFFER_SIZE environment
// variable (see internal/env) and passes it in through session.Options.
const DefaultSize = 16 * 1024

// Flusher writes a filled buffer to the transport. Sender implementations
// hand ownership of buf to Flush; Send must not touch buf again afterward.
type Flusher interface {
	Flush(buf *Buffer) error
}

// Send is the adaptive write-staging buffer described in the
// specification: one growable contiguous buffer with a write cursor,
// whose target capacity adapts to the sizes of the commands flowing
// through it.
type Send struct {
	pool    *Pool
	flusher Flusher

	defaultSize int
	bufferSize  int
	buffer      *Buffer
}

// New returns a Send buffer backed by pool, handing flushed buffers to
// flusher. defaultSize <= 0 falls back to DefaultSize.
func New(pool *Pool, flusher Flusher, defaultSize int) *Send {
	if defaultSize <= 0 {
		defaultSize = DefaultSize
	}
	return &Send{
		pool:        pool,
		flusher:     flusher,
		defaultSize: defaultSize,
		bufferSize:  defaultSize,
		buffer:      pool.Allocate(defaultSize),
	}
}

// BufferSize returns the buffer's current adapted target capacity.
func (s *Send) BufferSize() int { return s.bufferSize }

// Append encodes cmd into the staging buffer, growing and flushing as
// needed when the buffer underestimated the command's size. It never
// performs a synchronous flush to the transport itself on the happy path;
// that only happens as a side effect of an under-estimate retry.
func (s *Send) Append(cmd resp.Command) error {
	for {
		begin := s.buffer.Tail()

		newTail, err := resp.Encode(s.buffer.Full(), begin, cmd)
		if err == nil {
			s.buffer.SetTail(newTail)
			size := newTail - begin
			if size > s.bufferSize {
				s.bufferSize = size
			}
			return nil
		}

		if _, ok := err.(resp.ErrShortBuffer); !ok {
			return err
		}

		s.buffer.SetTail(begin)
		writeRemaining := s.buffer.WriteRemaining()

		if err := s.flush(); err != nil {
			return err
		}

		grown := writeRemaining + writeRemaining/2 + 1
		if s.bufferSize > grown {
			grown = s.bufferSize
		}
		s.buffer = s.pool.Allocate(grown)
	}
}

// Flush hands the staging buffer to the transport if it holds any bytes,
// recycles it otherwise, and decays bufferSize geometrically back toward
// its default. A fresh buffer of the (possibly decayed) target size is
// always allocated for subsequent appends.
func (s *Send) Flush() error {
	return s.flush()
}

func (s *Send) flush() error {
	buf := s.buffer

	if buf.CanRead() {
		if err := s.flusher.Flush(buf); err != nil {
			return err
		}
		if s.bufferSize > s.defaultSize {
			s.bufferSize = s.bufferSize - s.bufferSize/256
			if s.bufferSize < s.defaultSize {
				s.bufferSize = s.defaultSize
			}
		}
	} else {
		buf.Recycle()
	}

	s.buffer = s.pool.Allocate(s.bufferSize)
	return nil
}
