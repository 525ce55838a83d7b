package main

import (
	"fmt"
	"net/http"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"

	"github.com/ellemouton/lnurlpay/rates"
)

var fiatCommand = &cli.Command{
	Name:  "fiat",
	Usage: "Convert an amount of sats to fiat",
	Flags: []cli.Flag{
		&cli.Int64Flag{
			Name:     "amt",
			Usage:    "The amt of sats to convert",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "currency",
			Value: "usd",
			Usage: "the fiat currency code",
		},
	},
	Action: convertToFiat,
}

func convertToFiat(ctx *cli.Context) error {
	_, logger, err := getOptions(ctx)
	if err != nil {
		return err
	}

	provider := rates.NewProvider(http.DefaultTransport, logger)

	sats := btcutil.Amount(ctx.Int64("amt"))
	currency := ctx.String("currency")

	value, err := provider.FiatValue(ctx.Context, currency, sats)
	if err != nil {
		return err
	}

	fmt.Printf("%s = %s\n", rates.FormatSats(sats),
		rates.FormatFiat(value, currency))

	return nil
}
