package session

import "fmt"

// Transport is the full-duplex byte-oriented collaborator a Session binds
// to. It models a reliable, order-preserving stream: one socket, one pipe,
// one in-memory test double, anything that can hand over raw chunks.
//
// Read returns (nil, nil) on a clean end-of-stream; any other error is
// surfaced to the Session's close path wrapped in a TransportError. Read
// and Write are never called concurrently with themselves by a Session,
// but a Session may call Write (e.g. during a deferred flush) while a
// background goroutine is blocked in Read on its behalf (prefetch), so a
// Transport implementation must tolerate a concurrent Read and Write pair.
type Transport interface {
	Read() ([]byte, error)
	Write(chunk []byte) error
	WriteEndOfStream() error
	CloseEx(err error) error
}

// TransportError wraps any error returned by the Transport collaborator.
// It is always terminal for the Session that observed it.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("session: transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func wrapTransportErr(err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Err: err}
}
