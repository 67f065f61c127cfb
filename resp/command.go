package resp

// Command is a single client instruction: a fixed sequence of verb tokens
// (allowing multi-word verbs such as "CLIENT GETNAME") plus an ordered list
// of opaque argument byte strings. The caller chooses how text arguments
// are turned into bytes, typically via a configured charset.
type Command struct {
	verbs [][]byte
	args  [][]byte
}

// NewCommand builds a Command from one or more verb tokens and zero or more
// argument byte strings.
func NewCommand(verbs [][]byte, args ...[]byte) Command {
	return Command{verbs: verbs, args: args}
}

// NewCommandString is a convenience constructor that converts its verb and
// arguments to bytes with a plain []byte(string) conversion, i.e. as the
// UTF-8 bytes of the Go strings. It exists so the
// trivial command catalogue used by tests and the CLI doesn't need to
// hand-encode byte strings everywhere.
func NewCommandString(verb string, args ...string) Command {
	argBytes := make([][]byte, len(args))
	for i, a := range args {
		argBytes[i] = []byte(a)
	}
	return Command{verbs: [][]byte{[]byte(verb)}, args: argBytes}
}

// Verbs returns the command's verb tokens, in order.
func (c Command) Verbs() [][]byte { return c.verbs }

// Args returns the command's arguments, in order.
func (c Command) Args() [][]byte { return c.args }

// tokenCount is the number of bulk strings this command serialises to:
// one per verb token plus one per argument.
func (c Command) tokenCount() int {
	return len(c.verbs) + len(c.args)
}
