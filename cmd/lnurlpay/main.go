package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ellemouton/lnurlpay"
)

func main() {
	cfg, err := loadConfig(".env")
	if err != nil {
		fatal(err)
	}

	app := cli.NewApp()

	app.Name = "lnurlpay"
	app.Usage = "Resolve LNURLs and lightning addresses into invoices"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "decodeurl",
			Value: cfg.DecodeURL,
			Usage: "base URL of the bolt11 decode service",
		},
		&cli.BoolFlag{
			Name:  "localdecode",
			Value: cfg.LocalDecode,
			Usage: "decode payment requests locally instead of " +
				"asking the decode service",
		},
		&cli.StringFlag{
			Name:  "network",
			Value: cfg.Network,
			Usage: "the network used for local decoding",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: cfg.FetchTimeout,
			Usage: "timeout for pay metadata and keysend lookups",
		},
		&cli.BoolFlag{
			Name:  "notls",
			Value: cfg.Insecure,
			Usage: "set to true to use http instead of https for " +
				"lightning addresses",
		},
		&cli.StringFlag{
			Name:  "loglevel",
			Value: cfg.Logger.Level,
			Usage: "debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:  "logformat",
			Value: cfg.Logger.Format,
			Usage: "text or json",
		},
	}
	app.Commands = append(app.Commands,
		infoCommand,
		payRequestCommand,
		decodeCommand,
		encodeCommand,
		fiatCommand,
	)

	err = app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[lnurlpay] %v\n", err)
	os.Exit(1)
}

// getOptions builds the resolver options from the global flags.
func getOptions(ctx *cli.Context) ([]lnurlpay.Option, *slog.Logger, error) {
	logger, err := newLogger(ctx.String("loglevel"),
		ctx.String("logformat"))
	if err != nil {
		return nil, nil, err
	}

	fetchClient := lnurlpay.NewFetchClient(http.DefaultTransport, logger)
	fetchClient.Timeout = ctx.Duration("timeout")

	callbackClient := lnurlpay.NewCallbackClient(
		http.DefaultTransport, logger,
	)

	decoder, err := getDecoder(ctx, callbackClient)
	if err != nil {
		return nil, nil, err
	}

	opts := []lnurlpay.Option{
		lnurlpay.WithLogger(logger),
		lnurlpay.WithHTTPClient(fetchClient),
		lnurlpay.WithCallbackClient(callbackClient),
		lnurlpay.WithDecoder(decoder),
	}
	if ctx.Bool("notls") {
		opts = append(opts, lnurlpay.WithScheme("http"))
	}

	return opts, logger, nil
}

func getDecoder(ctx *cli.Context, client *http.Client) (lnurlpay.Decoder,
	error) {

	if ctx.Bool("localdecode") {
		params, err := lnurlpay.NetworkParams(ctx.String("network"))
		if err != nil {
			return nil, err
		}

		return &lnurlpay.Zpay32Decoder{Network: params}, nil
	}

	return &lnurlpay.RemoteDecoder{
		BaseURL: ctx.String("decodeurl"),
		Client:  client,
	}, nil
}
