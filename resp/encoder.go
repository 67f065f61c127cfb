package resp

import "strconv"

// ErrShortBuffer is returned by Encode when dst is too small to hold the
// command's RESP frame starting at offset. The caller must not assume any
// bytes were written past offset; see sendbuf.Send.Append for the retry
// protocol built around this signal.
type ErrShortBuffer struct{}

func (ErrShortBuffer) Error() string { return "resp: buffer too small to encode command" }

// Encode writes the complete RESP v2 frame for cmd into dst starting at
// offset, and returns the offset just past the written bytes.
//
// The frame is:
//
//	*<N>\r\n
//	$<len(tok)>\r\n<tok>\r\n      (once per verb token)
//	$<len(arg)>\r\n<arg>\r\n      (once per argument)
//
// Encode writes speculatively and may run off the end of dst partway
// through; in that case it returns ErrShortBuffer and the caller must
// discard dst entirely rather than trust any prefix of it.
func Encode(dst []byte, offset int, cmd Command) (int, error) {
	o := offset

	o = appendByte(dst, o, '*')
	if o < 0 {
		return 0, ErrShortBuffer{}
	}
	o = appendInt(dst, o, cmd.tokenCount())
	if o < 0 {
		return 0, ErrShortBuffer{}
	}
	o = appendCRLF(dst, o)
	if o < 0 {
		return 0, ErrShortBuffer{}
	}

	for _, tok := range cmd.verbs {
		var err error
		o, err = appendBulk(dst, o, tok)
		if err != nil {
			return 0, err
		}
	}
	for _, arg := range cmd.args {
		var err error
		o, err = appendBulk(dst, o, arg)
		if err != nil {
			return 0, err
		}
	}

	return o, nil
}

func appendBulk(dst []byte, o int, token []byte) (int, error) {
	o = appendByte(dst, o, '$')
	if o < 0 {
		return 0, ErrShortBuffer{}
	}
	o = appendInt(dst, o, len(token))
	if o < 0 {
		return 0, ErrShortBuffer{}
	}
	o = appendCRLF(dst, o)
	if o < 0 {
		return 0, ErrShortBuffer{}
	}
	o = appendBytes(dst, o, token)
	if o < 0 {
		return 0, ErrShortBuffer{}
	}
	o = appendCRLF(dst, o)
	if o < 0 {
		return 0, ErrShortBuffer{}
	}
	return o, nil
}

func appendByte(dst []byte, o int, b byte) int {
	if o >= len(dst) {
		return -1
	}
	dst[o] = b
	return o + 1
}

func appendCRLF(dst []byte, o int) int {
	if o+2 > len(dst) {
		return -1
	}
	dst[o] = '\r'
	dst[o+1] = '\n'
	return o + 2
}

func appendBytes(dst []byte, o int, b []byte) int {
	if o+len(b) > len(dst) {
		return -1
	}
	copy(dst[o:], b)
	return o + len(b)
}

// appendInt writes the decimal ASCII representation of n (n >= 0, the only
// values the encoder ever produces: token counts and lengths) starting at
// o, returning the new offset or -1 if dst is too small.
func appendInt(dst []byte, o int, n int) int {
	// strconv.AppendInt would require a slice with spare capacity tracked
	// separately from our fixed-size destination; format into a small
	// stack buffer instead so the bounds check stays exact.
	var tmp [20]byte
	b := strconv.AppendInt(tmp[:0], int64(n), 10)
	return appendBytes(dst, o, b)
}
