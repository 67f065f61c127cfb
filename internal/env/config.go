package env

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// SendBufferSize is the process-wide default for a Session's adaptive
	// send buffer (see sendbuf.DefaultSize). The specification models the
	// initial-buffer-size tunable as process-wide; we surface it as a
	// per-session option with this environment-variable default.
	SendBufferSize int `env:"RESPWIRE_SEND_BUFFER_SIZE,default=16384"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			panic(err)
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
