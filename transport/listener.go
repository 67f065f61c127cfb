package transport

import (
	"errors"
	"net"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/zap"
)

// Listener accepts inbound TCP connections and hands each one back as a
// Transport, wrapped exactly as Dial wraps an outbound one. It exists for
// tests, which need a peer to talk to; it is not part of the wire-protocol
// engine itself, and the CLI does not use it.
type Listener struct {
	ln  net.Listener
	log *zap.Logger
}

// Listen starts listening on addr. When reuseport is true the socket is
// opened with SO_REUSEPORT, letting multiple listeners share the port.
func Listen(addr string, reuseport bool, log *zap.Logger) (*Listener, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ln, err := newListener(addr, reuseport)
	if err != nil {
		return nil, err
	}

	return &Listener{ln: ln, log: log.Named("transport")}, nil
}

func newListener(addr string, useReuseport bool) (net.Listener, error) {
	if useReuseport {
		return reuseport.Listen("tcp", addr)
	}
	return net.Listen("tcp", addr)
}

// Addr reports the listener's bound address, useful when addr was given
// with port 0.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept blocks for the next inbound connection and wraps it as a
// Transport.
func (l *Listener) Accept() (*TCP, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		conn.Close()
		return nil, errors.New("transport: accepted connection is not TCP")
	}

	return &TCP{conn: tcpConn, log: l.log}, nil
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}
