package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/skip2/go-qrcode"
	"github.com/urfave/cli/v2"

	"github.com/ellemouton/lnurlpay"
	"github.com/ellemouton/lnurlpay/rates"
)

// qrSize is the side of generated QR code images in pixels.
const qrSize = 256

var payRequestCommand = &cli.Command{
	Name:      "invoice",
	Usage:     "Request an invoice from an LNURL or lightning address",
	ArgsUsage: "<lnurl|address>",
	Description: `Fetch the pay parameters of the recipient, request an
	invoice for the given amount and check that the returned payment
	request is for exactly that amount.`,
	Flags: []cli.Flag{
		&cli.Int64Flag{
			Name:  "amt",
			Usage: "The amt of sats to request",
		},
		&cli.StringFlag{
			Name:  "comment",
			Usage: "optional comment for the recipient",
		},
		&cli.StringFlag{
			Name:  "payerdata",
			Usage: "optional payer data as a JSON object",
		},
		&cli.StringFlag{
			Name:  "currency",
			Usage: "also show the invoice amount in this fiat currency",
		},
		&cli.StringFlag{
			Name:  "qrfile",
			Usage: "also write the payment request as a PNG QR code",
		},
	},
	Action: requestInvoice,
}

func requestInvoice(ctx *cli.Context) error {
	raw := ctx.Args().First()
	if raw == "" {
		return fmt.Errorf("missing recipient argument")
	}

	opts, logger, err := getOptions(ctx)
	if err != nil {
		return err
	}

	recipient, err := lnurlpay.Build(raw, opts...)
	if err != nil {
		return err
	}

	meta, err := recipient.FetchMetadata(ctx.Context)
	if err != nil {
		return err
	}

	// Check if the user specified an amount in the original call. If they
	// did not or if the specified amount is not within the bounds specified
	// by the service, ask the user to enter a valid amount.
	minSats := meta.MinSendable.ToSatoshis()
	maxSats := meta.MaxSendable.ToSatoshis()
	if meta.MinSendable%1000 != 0 {
		minSats++
	}

	sats := btcutil.Amount(ctx.Int64("amt"))
	for sats < minSats || sats > maxSats || sats <= 0 {
		reader := bufio.NewReader(os.Stdin)
		fmt.Printf("Enter an amount (in satoshis) between "+
			"%d and %d\n", int64(minSats), int64(maxSats))

		userInput, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("could not read from console: %w",
				err)
		}
		userInput = strings.TrimSpace(userInput)

		parsed, err := strconv.ParseInt(userInput, 10, 64)
		if err != nil {
			fmt.Printf("error parsing input: %v\n", err)
			continue
		}
		sats = btcutil.Amount(parsed)
	}

	req := lnurlpay.InvoiceRequest{
		Amount:  sats,
		Comment: ctx.String("comment"),
	}

	if payerData := ctx.String("payerdata"); payerData != "" {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(payerData), &data); err != nil {
			return fmt.Errorf("could not parse payer data: %w", err)
		}
		req.PayerData = data
	}

	invoice, err := recipient.RequestInvoice(ctx.Context, req)
	if err != nil {
		return err
	}

	amount := rates.FormatSats(sats)
	if currency := ctx.String("currency"); currency != "" {
		provider := rates.NewProvider(http.DefaultTransport, logger)

		value, err := provider.FiatValue(ctx.Context, currency, sats)
		if err != nil {
			logger.Warn("no fiat value for invoice", "error", err)
		} else {
			amount = fmt.Sprintf("%s (%s)", amount,
				rates.FormatFiat(value, currency))
		}
	}

	fmt.Printf("Invoice for %s from %s:\n%s\n", amount, recipient,
		invoice.PaymentRequest)

	if path := ctx.String("qrfile"); path != "" {
		err := qrcode.WriteFile(
			strings.ToUpper(invoice.PaymentRequest), qrcode.Medium,
			qrSize, path,
		)
		if err != nil {
			return fmt.Errorf("could not write QR code: %w", err)
		}
	}

	if invoice.Verify != "" {
		fmt.Printf("Verify URL: %s\n", invoice.Verify)
	}

	if invoice.Decoded.DescriptionHash != "" &&
		!meta.MatchesDescriptionHash(invoice.Decoded.DescriptionHash) {

		fmt.Println("Warning: invoice description hash does not " +
			"match the pay metadata")
	}

	return nil
}
