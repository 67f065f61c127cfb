package resp

import "bytes"

// Kind identifies which variant of the Response union a value holds.
type Kind int

const (
	KindSimpleString Kind = iota
	KindError
	KindInteger
	KindBytes
	KindNil
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "SimpleString"
	case KindError:
		return "Error"
	case KindInteger:
		return "Integer"
	case KindBytes:
		return "Bytes"
	case KindNil:
		return "Nil"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Response is a decoded RESP v2 reply. Exactly one of the fields below is
// meaningful, selected by Kind:
//
//	KindSimpleString / KindError -> Str
//	KindInteger                  -> Int
//	KindBytes                    -> Bytes
//	KindNil                      -> (nothing)
//	KindArray                    -> Array, whose elements may themselves
//	                                 be KindNil or KindArray, recursively
//
// Nil may have originated from either a null bulk string ($-1) or a null
// array (*-1); the distinction is not retained.
type Response struct {
	Kind  Kind
	Str   string
	Int   int64
	Bytes []byte
	Array []Response
}

// SimpleString builds a SimpleString response.
func SimpleString(s string) Response { return Response{Kind: KindSimpleString, Str: s} }

// ServerError builds an Error response carrying a server-formatted message.
func ServerError(message string) Response { return Response{Kind: KindError, Str: message} }

// Integer builds an Integer response.
func Integer(i int64) Response { return Response{Kind: KindInteger, Int: i} }

// BulkBytes builds a Bytes response.
func BulkBytes(b []byte) Response { return Response{Kind: KindBytes, Bytes: b} }

// Nil builds the distinguished absence value.
func Nil() Response { return Response{Kind: KindNil} }

// ArrayOf builds an Array response from its elements.
func ArrayOf(elems ...Response) Response { return Response{Kind: KindArray, Array: elems} }

// IsNil reports whether r is the distinguished absence value.
func (r Response) IsNil() bool { return r.Kind == KindNil }

// IsError reports whether r is a well-formed server error reply.
func (r Response) IsError() bool { return r.Kind == KindError }

// AsError returns r as a Go error if it is a KindError response, else nil.
// A ServerError is data, not a protocol failure: callers choose whether to
// propagate it.
func (r Response) AsError() error {
	if r.Kind != KindError {
		return nil
	}
	return &ServerReplyError{Message: r.Str}
}

// ServerReplyError wraps a well-formed "-" reply from the server. Unlike
// MalformedError, InvalidSizeError and TruncatedError it is never raised by
// the decoder itself; it only exists so callers that want an error value
// from Response.AsError have one to use.
type ServerReplyError struct {
	Message string
}

func (e *ServerReplyError) Error() string { return e.Message }

// Equal reports deep structural equality between two Responses. It exists
// for tests exercising the encode/decode round-trip law; production code
// has no need to compare full response trees.
func (r Response) Equal(other Response) bool {
	if r.Kind != other.Kind {
		return false
	}
	switch r.Kind {
	case KindSimpleString, KindError:
		return r.Str == other.Str
	case KindInteger:
		return r.Int == other.Int
	case KindBytes:
		return bytes.Equal(r.Bytes, other.Bytes)
	case KindNil:
		return true
	case KindArray:
		if len(r.Array) != len(other.Array) {
			return false
		}
		for i := range r.Array {
			if !r.Array[i].Equal(other.Array[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
