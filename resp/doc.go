// Package resp implements the wire-level encoding and decoding for the
// subset of RESP (REdis Serialization Protocol) version 2 that respwire
// speaks to a Redis-compatible server.
//
// The protocol is a length-prefixed, CR/LF-framed, textually introduced
// binary protocol.
//
//   - `Command`  - a client instruction, made up of one or more verb
//     tokens (e.g. "CLIENT", "GETNAME") plus an ordered list of
//     argument byte strings.
//   - `Response` - a tagged union of the value types the server can
//     reply with: SimpleString, Error, Integer, Bytes, Nil and Array.
//
// === Wire syntax
//
// Every command is sent as a RESP array of bulk strings:
//
//	*<N>\r\n
//	$<len(tok_0)>\r\n<tok_0>\r\n
//	...
//	$<len(arg_k)>\r\n<arg_k>\r\n
//
// Every reply begins with a single type-marker byte:
//
//	+ simple string   +<string>\r\n
//	- error           -<message>\r\n
//	: integer         :<decimal>\r\n
//	$ bulk string     $<len>\r\n<payload>\r\n  ($-1\r\n is Nil)
//	* array           *<count>\r\n<count replies>  (*-1\r\n is Nil)
//
// Arrays nest to arbitrary depth; elements are themselves Responses.
//
// The Decoder in this package is a resumable state machine: it never
// blocks and never recurses across an I/O boundary, so it tolerates
// input delivered in chunks of any size, including one byte at a time.
package resp
