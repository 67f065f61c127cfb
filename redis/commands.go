// Package redis is a deliberately small command catalogue on top of
// resp.Command. The specification this module implements treats "the
// complete Redis command catalogue" and "high-level client façades" as
// out of scope, to be stubbed with trivial equivalents; this package is
// that stub, just enough to exercise session.Session and the CLI without
// pretending to be a full client.
package redis

import "github.com/luma/respwire/resp"

// Ping builds the PING command.
func Ping() resp.Command {
	return resp.NewCommandString("PING")
}

// Get builds the GET command for key.
func Get(key string) resp.Command {
	return resp.NewCommandString("GET", key)
}

// Set builds the SET command for key and value.
func Set(key, value string) resp.Command {
	return resp.NewCommandString("SET", key, value)
}

// Del builds the DEL command for one or more keys.
func Del(keys ...string) resp.Command {
	return resp.NewCommandString("DEL", keys...)
}

// ClientGetName builds the two-word "CLIENT GETNAME" command, exercising
// the multi-verb-token shape resp.Command supports.
func ClientGetName() resp.Command {
	return resp.NewCommand([][]byte{[]byte("CLIENT"), []byte("GETNAME")})
}

// Quit builds the QUIT command.
func Quit() resp.Command {
	return resp.NewCommandString("QUIT")
}
