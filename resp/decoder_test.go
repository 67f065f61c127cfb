package resp_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/respwire/bytequeue"
	"github.com/luma/respwire/resp"
)

// decodeChunked feeds data into a fresh Decoder in pieces of chunkSize
// bytes (the last piece may be shorter), returning the first complete
// top-level value it produces.
func decodeChunked(data []byte, chunkSize int) (resp.Response, error) {
	q := bytequeue.New()
	var dec resp.Decoder

	for offset := 0; offset < len(data); offset += chunkSize {
		end := offset + chunkSize
		if end > len(data) {
			end = len(data)
		}
		q.Add(data[offset:end])

		val, ok, err := dec.TryDecode(q)
		if err != nil {
			return resp.Response{}, err
		}
		if ok {
			return val, nil
		}
	}

	return resp.Response{}, errNoValue
}

var errNoValue = &noValueError{}

type noValueError struct{}

func (*noValueError) Error() string { return "no complete value produced" }

var _ = Describe("Decoder", func() {
	type scenario struct {
		name      string
		wire      string
		chunkSize int
		expected  resp.Response
	}

	scenarios := []scenario{
		{"simple string, whole", "+OK\r\n", 1 << 20, resp.SimpleString("OK")},
		{"simple string, byte at a time", "+OK\r\n", 1, resp.SimpleString("OK")},
		{"integer max", ":9223372036854775807\r\n", 1 << 20, resp.Integer(9223372036854775807)},
		{"integer min", ":-9223372036854775808\r\n", 1 << 20, resp.Integer(-9223372036854775808)},
		{"bulk string with embedded CRLF", "$14\r\nhello \r\n world\r\n", 1 << 20,
			resp.BulkBytes([]byte("hello \r\n world"))},
		{"bulk string with embedded CRLF, chunked mid-payload", "$14\r\nhello \r\n world\r\n", 4,
			resp.BulkBytes([]byte("hello \r\n world"))},
		{"null bulk", "$-1\r\n", 1 << 20, resp.Nil()},
		{"null array", "*-1\r\n", 1 << 20, resp.Nil()},
		{"nested array", "*2\r\n*1\r\n+a\r\n$-1\r\n", 1 << 20,
			resp.ArrayOf(resp.ArrayOf(resp.SimpleString("a")), resp.Nil())},
		{"nested array, byte at a time", "*2\r\n*1\r\n+a\r\n$-1\r\n", 1,
			resp.ArrayOf(resp.ArrayOf(resp.SimpleString("a")), resp.Nil())},
	}

	for _, sc := range scenarios {
		sc := sc
		It(sc.name, func() {
			got, err := decodeChunked([]byte(sc.wire), sc.chunkSize)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Equal(sc.expected)).To(BeTrue(), "got %+v, want %+v", got, sc.expected)
		})
	}

	It("rejects a non-numeric integer", func() {
		_, err := decodeChunked([]byte(":abc\r\n"), 1<<20)
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&resp.MalformedError{}))
	})

	It("rejects an unknown type marker", func() {
		_, err := decodeChunked([]byte("!nope\r\n"), 1<<20)
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&resp.MalformedError{}))
	})

	It("rejects a bulk string length below -1", func() {
		_, err := decodeChunked([]byte("$-2\r\n"), 1<<20)
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&resp.InvalidSizeError{}))
	})

	It("rejects a bulk string body not followed by CR LF", func() {
		_, err := decodeChunked([]byte("$3\r\nabcXX"), 1<<20)
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&resp.MalformedError{}))
	})

	It("decodes six levels of nested singleton arrays", func() {
		wire := "*1\r\n*1\r\n*1\r\n*1\r\n*1\r\n*1\r\n+test\r\n"
		want := resp.ArrayOf(resp.ArrayOf(resp.ArrayOf(resp.ArrayOf(resp.ArrayOf(resp.ArrayOf(
			resp.SimpleString("test")))))))

		got, err := decodeChunked([]byte(wire), 1<<20)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(want)).To(BeTrue())
	})

	It("decodes an empty array", func() {
		got, err := decodeChunked([]byte("*0\r\n"), 1<<20)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(resp.ArrayOf())).To(BeTrue())
	})

	It("is chunk-invariant across many random-ish chunk sizes", func() {
		wire := "*3\r\n:1\r\n$5\r\nhello\r\n*2\r\n+a\r\n-oops\r\n"
		want, err := decodeChunked([]byte(wire), 1<<20)
		Expect(err).NotTo(HaveOccurred())

		for _, size := range []int{1, 2, 3, 5, 7, 11, 13} {
			got, err := decodeChunked([]byte(wire), size)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Equal(want)).To(BeTrue(), "chunk size %d produced %+v", size, got)
		}
	})

	It("treats a stray CR not followed by LF as ordinary line content", func() {
		// Per the design notes: the terminator search only stops on CR
		// immediately followed by LF, so a lone CR is just data.
		got, err := decodeChunked([]byte("+a\rb\r\n"), 1<<20)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(resp.SimpleString("a\rb"))).To(BeTrue())
	})

	It("reports Idle between top-level values and not-Idle mid-value", func() {
		var dec resp.Decoder
		Expect(dec.Idle()).To(BeTrue())

		q := bytequeue.New()
		q.Add([]byte("*2\r\n+a\r\n"))
		_, ok, err := dec.TryDecode(q)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(dec.Idle()).To(BeFalse())

		q.Add([]byte("+b\r\n"))
		_, ok, err = dec.TryDecode(q)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(dec.Idle()).To(BeTrue())
	})
})
