package resp_test

import (
	"strconv"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/respwire/bytequeue"
	"github.com/luma/respwire/resp"
)

var _ = Describe("Encode", func() {
	It("encodes GET foo to the canonical wire form", func() {
		cmd := resp.NewCommandString("GET", "foo")

		buf := make([]byte, 64)
		n, err := resp.Encode(buf, 0, cmd)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"))
	})

	It("encodes a multi-verb-token command such as CLIENT GETNAME", func() {
		cmd := resp.NewCommand([][]byte{[]byte("CLIENT"), []byte("GETNAME")})

		buf := make([]byte, 64)
		n, err := resp.Encode(buf, 0, cmd)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("*2\r\n$6\r\nCLIENT\r\n$7\r\nGETNAME\r\n"))
	})

	It("is deterministic across repeated calls", func() {
		cmd := resp.NewCommandString("SET", "foo", "bar")

		buf1 := make([]byte, 64)
		n1, err := resp.Encode(buf1, 0, cmd)
		Expect(err).NotTo(HaveOccurred())

		buf2 := make([]byte, 64)
		n2, err := resp.Encode(buf2, 0, cmd)
		Expect(err).NotTo(HaveOccurred())

		Expect(n1).To(Equal(n2))
		Expect(buf1[:n1]).To(Equal(buf2[:n2]))
	})

	It("returns ErrShortBuffer without producing partial output the caller should trust", func() {
		cmd := resp.NewCommandString("GET", "foo")

		buf := make([]byte, 5)
		_, err := resp.Encode(buf, 0, cmd)
		Expect(err).To(Equal(resp.ErrShortBuffer{}))
	})

	It("writes starting at a nonzero offset", func() {
		cmd := resp.NewCommandString("PING")

		buf := make([]byte, 64)
		buf[0] = 'X'
		n, err := resp.Encode(buf, 1, cmd)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(buf[1:n])).To(Equal("*1\r\n$4\r\nPING\r\n"))
	})

	It("round-trips through the decoder for every Response variant", func() {
		values := []resp.Response{
			resp.SimpleString("OK"),
			resp.Nil(),
			resp.Integer(42),
			resp.Integer(-9223372036854775808),
			resp.BulkBytes([]byte("hello \r\n world")),
			resp.ArrayOf(resp.Integer(1), resp.BulkBytes([]byte("x")), resp.ArrayOf()),
		}

		for _, v := range values {
			encoded := encodeResponseForTest(v)

			q := bytequeue.New()
			q.Add(encoded)
			var dec resp.Decoder
			got, ok, err := dec.TryDecode(q)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(got.Equal(v)).To(BeTrue(), "round-trip mismatch for %+v: got %+v", v, got)
		}
	})
})

// encodeResponseForTest renders a Response back to RESP v2 bytes. It exists
// only to exercise the round-trip law in tests; production code never needs
// to serialise a Response, only a Command.
func encodeResponseForTest(r resp.Response) []byte {
	switch r.Kind {
	case resp.KindSimpleString:
		return []byte("+" + r.Str + "\r\n")
	case resp.KindError:
		return []byte("-" + r.Str + "\r\n")
	case resp.KindInteger:
		return []byte(":" + itoaForTest(r.Int) + "\r\n")
	case resp.KindBytes:
		return append([]byte("$"+itoaForTest(int64(len(r.Bytes)))+"\r\n"), append(append([]byte{}, r.Bytes...), "\r\n"...)...)
	case resp.KindNil:
		return []byte("$-1\r\n")
	case resp.KindArray:
		out := []byte("*" + itoaForTest(int64(len(r.Array))) + "\r\n")
		for _, elem := range r.Array {
			out = append(out, encodeResponseForTest(elem)...)
		}
		return out
	default:
		panic("unreachable")
	}
}

func itoaForTest(n int64) string {
	return strconv.FormatInt(n, 10)
}
