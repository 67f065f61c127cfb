package resp

import "fmt"

// MalformedError signals a protocol parse error: an unknown type marker, a
// non-numeric integer or length field, or a bulk string whose body is not
// followed by CR LF. It is always terminal for the session that produced it.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("resp: malformed input: %s", e.Reason)
}

// InvalidSizeError signals that a bulk string or array length field was
// less than -1, or that a bulk string length exceeded 512 MiB. Only -1
// (decoded as Nil) is accepted as a negative length.
type InvalidSizeError struct {
	Size int64
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("resp: invalid size: %d", e.Size)
}

// TruncatedError signals that the transport reached end-of-stream while the
// decoder was mid-value, or while a caller was waiting for the next
// response. A clean end-of-stream while the decoder is idle is not an
// error; see session.Session.Receive for that distinction.
type TruncatedError struct{}

func (e *TruncatedError) Error() string {
	return "resp: truncated stream: connection closed mid-value"
}

func malformed(format string, args ...interface{}) error {
	return &MalformedError{Reason: fmt.Sprintf(format, args...)}
}
