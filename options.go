package lnurlpay

import (
	"log/slog"
	"net/http"
)

type config struct {
	transport      http.RoundTripper
	fetchClient    *http.Client
	callbackClient *http.Client
	decoder        Decoder
	codec          PointerCodec
	logger         *slog.Logger
	scheme         string
}

// Option configures the clients built by Build, NewPayServiceClient and
// NewKeysendResolver.
type Option func(*config)

// WithHTTPClient overrides the client used for discovery and keysend
// lookups.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.fetchClient = c
	}
}

// WithTransport sets the round tripper underneath the default clients. It
// has no effect on clients given with WithHTTPClient or WithCallbackClient.
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *config) {
		cfg.transport = rt
	}
}

// WithCallbackClient overrides the client used for the invoice callback.
func WithCallbackClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.callbackClient = c
	}
}

// WithDecoder sets the payment request decoder used for the amount
// cross-check.
func WithDecoder(d Decoder) Option {
	return func(cfg *config) {
		cfg.decoder = d
	}
}

func WithCodec(c PointerCodec) Option {
	return func(cfg *config) {
		cfg.codec = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithScheme sets the scheme used for well-known lightning address URLs.
// It defaults to https; http is only useful against local services.
func WithScheme(scheme string) Option {
	return func(cfg *config) {
		cfg.scheme = scheme
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		codec:  Bech32Codec{},
		scheme: "https",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.fetchClient == nil {
		cfg.fetchClient = NewFetchClient(cfg.transport, cfg.logger)
	}
	if cfg.callbackClient == nil {
		cfg.callbackClient = NewCallbackClient(cfg.transport, cfg.logger)
	}
	if cfg.decoder == nil {
		cfg.decoder = NewRemoteDecoder(cfg.callbackClient)
	}

	return cfg
}
