package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the defaults of the global flags. Every value can be set in
// the environment or in a .env file next to the binary.
type Config struct {
	DecodeURL    string        `env:"LNURLPAY_DECODE_URL" envDefault:"https://api.getalby.com"`
	LocalDecode  bool          `env:"LNURLPAY_LOCAL_DECODE" envDefault:"false"`
	Network      string        `env:"LNURLPAY_NETWORK" envDefault:"mainnet"`
	FetchTimeout time.Duration `env:"LNURLPAY_FETCH_TIMEOUT" envDefault:"3s"`
	Insecure     bool          `env:"LNURLPAY_INSECURE" envDefault:"false"`
	Logger       Logger
}

type Logger struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

func loadConfig(envPath string) (Config, error) {
	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	c, err := env.ParseAsWithOptions[Config](env.Options{
		RequiredIfNoDef: true,
	})
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

// newLogger returns a logger writing to stderr so that command output on
// stdout stays clean.
func newLogger(level, format string) (*slog.Logger, error) {
	var sLevel slog.Level
	if err := sLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: sLevel}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text", "":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}

	return slog.New(handler), nil
}
