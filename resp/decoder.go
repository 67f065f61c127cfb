package resp

import (
	"strconv"

	"github.com/luma/respwire/bytequeue"
)

const (
	maxStringLen  = 512 * 1024 * 1024 // simple strings / errors, bytes before CR LF
	maxIntegerLen = 20                // len(strconv.FormatInt(math.MinInt64, 10))
	maxBulkLen    = 512 * 1024 * 1024 // bulk string payload, bytes
)

type bulkPhase int

const (
	bulkNone bulkPhase = iota
	bulkBodyPending
	bulkCRLFPending
)

type frame struct {
	remaining int
	arr       *Response
}

// Decoder is a resumable RESP v2 streaming decoder. Each call to TryDecode
// consumes bytes from the queue until it either has a complete top-level
// Response, which it returns (leaving any later bytes queued), or runs out
// of bytes, in which case it stashes its partial progress and returns
// ok=false so the caller can feed it more bytes later.
//
// A Decoder must not be shared between goroutines, and its zero value is
// ready to use.
type Decoder struct {
	marker byte // 0 means idle: no value is currently being read

	line []byte // accumulator shared by line-mode reads (strings, errors, integers, lengths)

	bulkPh    bulkPhase
	bulkBuf   []byte
	bulkFill  int
	bulkLeft  int

	stack []frame
}

// Idle reports whether the decoder is between top-level values: no bytes
// of a new response have been consumed yet. A transport reaching
// end-of-stream while Idle is a clean close; while !Idle it is truncation.
func (d *Decoder) Idle() bool {
	return d.marker == 0 && len(d.stack) == 0
}

// TryDecode attempts to decode one complete top-level Response from q. It
// returns ok=false (with a zero Response and nil error) if q does not yet
// contain a complete value. It returns a non-nil error for any protocol
// violation, at which point the Decoder must not be reused.
func (d *Decoder) TryDecode(q *bytequeue.Queue) (Response, bool, error) {
	for {
		if d.marker == 0 {
			b, ok := q.GetByte()
			if !ok {
				return Response{}, false, nil
			}
			d.marker = b
		}

		switch d.marker {
		case '+', '-':
			payload, ok, err := d.feedLine(q, maxStringLen)
			if err != nil {
				return Response{}, false, err
			}
			if !ok {
				return Response{}, false, nil
			}

			var val Response
			if d.marker == '+' {
				val = SimpleString(string(payload))
			} else {
				val = ServerError(string(payload))
			}
			d.resetValue()

			if done, top := d.complete(val); done {
				return top, true, nil
			}
			continue

		case ':':
			payload, ok, err := d.feedLine(q, maxIntegerLen)
			if err != nil {
				return Response{}, false, err
			}
			if !ok {
				return Response{}, false, nil
			}

			n, perr := strconv.ParseInt(string(payload), 10, 64)
			if perr != nil {
				return Response{}, false, malformed("invalid integer %q", payload)
			}
			d.resetValue()

			if done, top := d.complete(Integer(n)); done {
				return top, true, nil
			}
			continue

		case '$':
			val, ok, err := d.feedBulk(q)
			if err != nil {
				return Response{}, false, err
			}
			if !ok {
				return Response{}, false, nil
			}
			d.resetValue()

			if done, top := d.complete(val); done {
				return top, true, nil
			}
			continue

		case '*':
			val, pushed, ok, err := d.feedArrayHeader(q)
			if err != nil {
				return Response{}, false, err
			}
			if !ok {
				return Response{}, false, nil
			}
			if pushed {
				// A non-empty array header was parsed; the stack now holds a
				// frame for it and decoding continues with its first element.
				d.marker = 0
				continue
			}
			d.resetValue()

			if done, top := d.complete(val); done {
				return top, true, nil
			}
			continue

		default:
			return Response{}, false, malformed("unknown first byte %q", d.marker)
		}
	}
}

// feedLine accumulates bytes until a CR LF pair terminates the line, or
// fails if the payload would exceed maxLen bytes before one is found. It
// is resumable: partial progress lives in d.line across calls.
func (d *Decoder) feedLine(q *bytequeue.Queue, maxLen int) ([]byte, bool, error) {
	for {
		b, ok := q.GetByte()
		if !ok {
			return nil, false, nil
		}

		d.line = append(d.line, b)
		if len(d.line) > maxLen+2 {
			return nil, false, malformed("line exceeded %d bytes without CR LF", maxLen)
		}

		if b == '\n' && len(d.line) >= 2 && d.line[len(d.line)-2] == '\r' {
			payload := make([]byte, len(d.line)-2)
			copy(payload, d.line[:len(d.line)-2])
			d.line = d.line[:0]
			return payload, true, nil
		}
	}
}

// feedBulk decodes a "$..." bulk string or nil, resuming across the length
// line, the body copy, and the trailing CR LF as needed.
func (d *Decoder) feedBulk(q *bytequeue.Queue) (Response, bool, error) {
	if d.bulkPh == bulkNone {
		payload, ok, err := d.feedLine(q, maxIntegerLen)
		if err != nil {
			return Response{}, false, err
		}
		if !ok {
			return Response{}, false, nil
		}

		n, perr := strconv.ParseInt(string(payload), 10, 64)
		if perr != nil {
			return Response{}, false, malformed("invalid bulk string length %q", payload)
		}
		if n < -1 {
			return Response{}, false, &InvalidSizeError{Size: n}
		}
		if n == -1 {
			return Nil(), true, nil
		}
		if n > maxBulkLen {
			return Response{}, false, &InvalidSizeError{Size: n}
		}

		d.bulkBuf = make([]byte, n)
		d.bulkFill = 0
		d.bulkLeft = int(n)
		d.bulkPh = bulkBodyPending
	}

	if d.bulkPh == bulkBodyPending {
		if d.bulkLeft > 0 {
			got := q.DrainTo(d.bulkBuf[d.bulkFill:], d.bulkLeft)
			d.bulkFill += got
			d.bulkLeft -= got
			if d.bulkLeft > 0 {
				return Response{}, false, nil
			}
		}
		d.bulkPh = bulkCRLFPending
	}

	if !q.HasRemainingBytes(2) {
		return Response{}, false, nil
	}

	cr, _ := q.GetByte()
	lf, _ := q.GetByte()
	if cr != '\r' || lf != '\n' {
		return Response{}, false, malformed("missing CR LF after bulk string body")
	}

	val := BulkBytes(d.bulkBuf)
	d.bulkPh = bulkNone
	d.bulkBuf = nil
	d.bulkFill = 0
	d.bulkLeft = 0
	return val, true, nil
}

// feedArrayHeader decodes a "*..." length line. For length -1 or 0 it
// returns the finished value directly (pushed=false). For a positive
// length it pushes a frame onto the nesting stack and returns
// pushed=true, signalling the caller to continue decoding the array's
// first element without returning.
func (d *Decoder) feedArrayHeader(q *bytequeue.Queue) (Response, bool, bool, error) {
	payload, ok, err := d.feedLine(q, maxIntegerLen)
	if err != nil {
		return Response{}, false, false, err
	}
	if !ok {
		return Response{}, false, false, nil
	}

	n, perr := strconv.ParseInt(string(payload), 10, 64)
	if perr != nil {
		return Response{}, false, false, malformed("invalid array length %q", payload)
	}
	if n < -1 {
		return Response{}, false, false, &InvalidSizeError{Size: n}
	}
	if n == -1 {
		return Nil(), false, true, nil
	}
	if n == 0 {
		return Response{Kind: KindArray, Array: []Response{}}, false, true, nil
	}

	d.stack = append(d.stack, frame{
		remaining: int(n),
		arr:       &Response{Kind: KindArray, Array: make([]Response, 0, n)},
	})
	return Response{}, true, true, nil
}

// complete folds a just-decoded leaf or array value into the enclosing
// array, if any, cascading the completion of any ancestor arrays whose
// last element this was. done is true once the top-level value is ready.
func (d *Decoder) complete(val Response) (done bool, top Response) {
	if len(d.stack) == 0 {
		return true, val
	}

	idx := len(d.stack) - 1
	d.stack[idx].arr.Array = append(d.stack[idx].arr.Array, val)

	for {
		idx = len(d.stack) - 1
		d.stack[idx].remaining--
		if d.stack[idx].remaining > 0 {
			return false, Response{}
		}

		finished := *d.stack[idx].arr
		d.stack = d.stack[:idx]

		if len(d.stack) == 0 {
			return true, finished
		}

		parent := len(d.stack) - 1
		d.stack[parent].arr.Array = append(d.stack[parent].arr.Array, finished)
	}
}

// resetValue clears per-value scratch state once a leaf value's bytes
// have all been consumed, readying the decoder for the next marker byte.
func (d *Decoder) resetValue() {
	d.marker = 0
	d.line = d.line[:0]
	d.bulkPh = bulkNone
	d.bulkBuf = nil
	d.bulkFill = 0
	d.bulkLeft = 0
}
