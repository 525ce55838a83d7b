// Command server runs a fake LNURL-pay service for trying out the lnurlpay
// client against a local endpoint.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/skip2/go-qrcode"
	"github.com/urfave/cli/v2"

	"github.com/ellemouton/lnurlpay"
	"github.com/ellemouton/lnurlpay/lnurltest"
)

func main() {
	app := cli.NewApp()

	app.Name = "lnurlpay-server"
	app.Usage = "Serve a fake LNURL-pay service"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Value: "localhost",
		},
		&cli.IntFlag{
			Name:  "port",
			Value: 8080,
		},
		&cli.StringFlag{
			Name:  "user",
			Value: "satoshi",
			Usage: "the username printed in the welcome message",
		},
		&cli.Int64Flag{
			Name:  "minsendable",
			Value: 1,
			Usage: "min amount in sats",
		},
		&cli.Int64Flag{
			Name:  "maxsendable",
			Value: 1_000_000,
			Usage: "max amount in sats",
		},
		&cli.IntFlag{
			Name:  "commentallowed",
			Value: 140,
		},
		&cli.StringFlag{
			Name:  "qrfile",
			Usage: "write the LNURL as a PNG QR code to this path",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx *cli.Context) error {
	cfg := lnurltest.DefaultConfig()
	cfg.MinSendable = lnwire.NewMSatFromSatoshis(
		btcutil.Amount(ctx.Int64("minsendable")),
	)
	cfg.MaxSendable = lnwire.NewMSatFromSatoshis(
		btcutil.Amount(ctx.Int64("maxsendable")),
	)
	cfg.CommentAllowed = ctx.Int("commentallowed")

	addr := fmt.Sprintf("%s:%d", ctx.String("host"), ctx.Int("port"))
	if err := printHello(addr, ctx.String("user"),
		ctx.String("qrfile")); err != nil {

		return err
	}

	return http.ListenAndServe(addr, lnurltest.NewServer(cfg))
}

func printHello(addr, user, qrFile string) error {
	payCode := fmt.Sprintf("http://%s/.well-known/lnurlp/%s", addr, user)

	payLNURL, err := lnurlpay.EncodeURL(payCode)
	if err != nil {
		return err
	}

	if qrFile != "" {
		err := qrcode.WriteFile(payLNURL, qrcode.Medium, 256, qrFile)
		if err != nil {
			return err
		}
	}

	fmt.Printf(
		""+
			"=======================================\n"+
			"Welcome to lnurlpay-server!\n"+
			"Your static LNURL-pay code is: \n"+
			"- %s\n"+
			"- lightning:%s\n"+
			"- %s\n"+
			"Decode service: http://%s\n"+
			"=======================================\n",
		payLNURL, payLNURL, strings.Replace(
			payCode, "http", "lnurlp", 1,
		), addr,
	)

	return nil
}
