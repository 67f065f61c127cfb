package session_test

import (
	"bytes"
	"io"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/respwire/redis"
	"github.com/luma/respwire/resp"
	"github.com/luma/respwire/session"
)

var _ = Describe("Session", func() {
	It("sends a command and receives the decoded reply", func() {
		tr := newFakeTransport()
		sess := session.New(tr, session.Options{})
		defer sess.Close()

		Expect(sess.Send(redis.Ping())).To(Succeed())

		tr.feed([]byte("+PONG\r\n"))

		reply, err := sess.Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Equal(resp.SimpleString("PONG"))).To(BeTrue())

		Expect(tr.writeCount()).To(Equal(1))
		Expect(string(tr.lastWrite())).To(Equal("*1\r\n$4\r\nPING\r\n"))
	})

	It("coalesces multiple sends issued before the next receive into one write", func() {
		tr := newFakeTransport()
		sess := session.New(tr, session.Options{})
		defer sess.Close()

		Expect(sess.Send(redis.Get("a"))).To(Succeed())
		Expect(sess.Send(redis.Get("b"))).To(Succeed())

		// Flushes are deferred: nothing has been written to the transport
		// yet, even though two commands are staged.
		Expect(tr.writeCount()).To(Equal(0))

		tr.feed([]byte("$1\r\nx\r\n$1\r\ny\r\n"))

		first, err := sess.Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Equal(resp.BulkBytes([]byte("x")))).To(BeTrue())

		Expect(tr.writeCount()).To(Equal(1))
		Expect(string(tr.lastWrite())).To(Equal(
			"*2\r\n$3\r\nGET\r\n$1\r\na\r\n" + "*2\r\n$3\r\nGET\r\n$1\r\nb\r\n"))

		second, err := sess.Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Equal(resp.BulkBytes([]byte("y")))).To(BeTrue())

		// No further writes were triggered by draining the already-flushed
		// buffer.
		Expect(tr.writeCount()).To(Equal(1))
	})

	It("decodes a reply delivered across several transport reads", func() {
		tr := newFakeTransport()
		sess := session.New(tr, session.Options{})
		defer sess.Close()

		Expect(sess.Send(redis.Get("foo"))).To(Succeed())

		tr.feed([]byte("$5\r\nhel"))
		tr.feed([]byte("lo\r\n"))

		reply, err := sess.Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Equal(resp.BulkBytes([]byte("hello")))).To(BeTrue())
	})

	It("fails with a truncation error when the peer closes mid-value", func() {
		tr := newFakeTransport()
		sess := session.New(tr, session.Options{})

		tr.feed([]byte("*2\r\n+a\r\n"))
		tr.feedEOF()

		_, err := sess.Receive()
		Expect(err).To(BeAssignableToTypeOf(&resp.TruncatedError{}))
		Expect(tr.isClosed()).To(BeTrue())
	})

	It("treats end-of-stream while idle as a clean read-half close, not an error session state", func() {
		tr := newFakeTransport()
		sess := session.New(tr, session.Options{})

		tr.feedEOF()

		_, err := sess.Receive()
		Expect(err).To(Equal(session.ErrClosed))
	})

	It("closes the transport with the decode error on malformed input", func() {
		tr := newFakeTransport()
		sess := session.New(tr, session.Options{})

		tr.feed([]byte("!bogus\r\n"))

		_, err := sess.Receive()
		Expect(err).To(BeAssignableToTypeOf(&resp.MalformedError{}))
		Expect(tr.isClosed()).To(BeTrue())
	})

	It("rejects operations after Close", func() {
		tr := newFakeTransport()
		sess := session.New(tr, session.Options{})
		tr.feedEOF() // let the initial prefetch goroutine unblock

		Expect(sess.Close()).To(Succeed())
		Expect(sess.Close()).To(Succeed()) // idempotent

		Expect(sess.Send(redis.Ping())).To(Equal(session.ErrClosed))
		_, err := sess.Receive()
		Expect(err).To(Equal(session.ErrClosed))
	})

	It("SendEndOfStream marks the write half done and writes the transport marker", func() {
		tr := newFakeTransport()
		sess := session.New(tr, session.Options{})
		tr.feedEOF()
		defer sess.Close()

		Expect(sess.SendEndOfStream()).To(Succeed())
		Expect(tr.eosWritten).To(BeTrue())
	})

	It("SendBinaryStream tunnels raw bytes past the encoder", func() {
		tr := newFakeTransport()
		sess := session.New(tr, session.Options{})
		tr.feedEOF()
		defer sess.Close()

		w := sess.SendBinaryStream()
		n, err := w.Write([]byte("raw payload"))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(len("raw payload")))
		Expect(w.Close()).To(Succeed())

		Expect(string(tr.lastWrite())).To(Equal("raw payload"))
	})

	It("ReceiveBinaryStream drains queued bytes before reading the transport", func() {
		tr := newFakeTransport()
		sess := session.New(tr, session.Options{})
		defer sess.Close()

		tr.feed([]byte("abc"))

		r := sess.ReceiveBinaryStream()
		var buf bytes.Buffer
		n, err := io.CopyN(&buf, r, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(3)))
		Expect(buf.String()).To(Equal("abc"))

		tr.feedEOF()
		_, err = r.Read(make([]byte, 1))
		Expect(err).To(Equal(io.EOF))
	})
})
