package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/respwire/internal/env"
	"github.com/luma/respwire/redis"
	"github.com/luma/respwire/resp"
	"github.com/luma/respwire/session"
	"github.com/luma/respwire/transport"
)

var addr string

func init() {
	flags := ReplCmd.PersistentFlags()
	flags.StringVarP(&addr, "addr", "a", "127.0.0.1:6379", "address of the RESP server to connect to")
}

var ReplCmd = &cobra.Command{
	Use:   "repl",
	Short: "Open an interactive RESP session against a server",
	Long: `Dial a RESP v2 server and read whitespace-separated commands from
stdin, one per line, printing the decoded response for each.

Usage
	respwire repl --addr 127.0.0.1:6379
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		log, err := env.MakeLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		tr, err := transport.Dial(ctx, addr, log)
		if err != nil {
			return err
		}

		sess := session.New(tr, session.Options{InitialBufferSize: conf.SendBufferSize})
		defer sess.Close()

		log.Info("connected", zap.String("addr", addr), zap.Int("sendBufferSize", conf.SendBufferSize))

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			command := commandFromLine(line)

			if err := sess.Send(command); err != nil {
				return err
			}

			reply, err := sess.Receive()
			if err != nil {
				return err
			}

			printResponse(reply)
		}

		return sess.SendEndOfStream()
	},
}

func commandFromLine(line string) resp.Command {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return redis.Ping()
	}
	return resp.NewCommandString(tokens[0], tokens[1:]...)
}

func printResponse(r resp.Response) {
	switch {
	case r.IsNil():
		fmt.Println("(nil)")
	case r.IsError():
		fmt.Println("(error)", r.AsError())
	default:
		switch r.Kind {
		case resp.KindSimpleString:
			fmt.Println(r.Str)
		case resp.KindInteger:
			fmt.Println(r.Int)
		case resp.KindBytes:
			fmt.Printf("%q\n", r.Bytes)
		case resp.KindArray:
			fmt.Printf("(array of %d)\n", len(r.Array))
			for _, child := range r.Array {
				printResponse(child)
			}
		}
	}
}
