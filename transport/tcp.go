// Package transport provides the real TCP-backed implementation of
// session.Transport, plus a small reuseport-backed listener used to stand
// up a local peer for tests. Everything here is a
// collaborator the specification treats as external to the core engine:
// it exists to exercise session.Session end-to-end, not to reimplement
// the wire protocol itself.
package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// readChunkSize is how much we ask the kernel for per Read call. It has no
// bearing on protocol framing: resp.Decoder tolerates chunks of any size,
// including ones smaller or larger than a single RESP value.
const readChunkSize = 4096

// TCP adapts a *net.TCPConn to the session.Transport contract.
type TCP struct {
	conn *net.TCPConn
	log  *zap.Logger

	closeOnce sync.Once
}

// Dial connects to addr and returns a Transport wrapping the connection.
func Dial(ctx context.Context, addr string, log *zap.Logger) (*TCP, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		conn.Close()
		return nil, errors.New("transport: dialed connection is not TCP")
	}

	return &TCP{conn: tcpConn, log: log.Named("transport")}, nil
}

// Read implements session.Transport. It returns (nil, nil) on a clean
// end-of-stream.
func (t *TCP) Read() ([]byte, error) {
	buf := make([]byte, readChunkSize)
	n, err := t.conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return nil, err
}

// Write implements session.Transport.
func (t *TCP) Write(chunk []byte) error {
	_, err := t.conn.Write(chunk)
	return err
}

// WriteEndOfStream implements session.Transport by half-closing the
// connection's write side, letting the peer observe EOF while reads keep
// working.
func (t *TCP) WriteEndOfStream() error {
	return t.conn.CloseWrite()
}

// CloseEx implements session.Transport. It is idempotent: only the first
// call actually closes the connection.
func (t *TCP) CloseEx(reason error) error {
	var result error
	t.closeOnce.Do(func() {
		if reason != nil {
			t.log.Warn("closing connection", zap.Error(reason))
		} else {
			t.log.Debug("closing connection cleanly")
		}

		if err := t.conn.Close(); err != nil {
			result = multierr.Append(result, err)
		}
		if err := t.log.Sync(); err != nil {
			result = multierr.Append(result, err)
		}
	})
	return result
}
