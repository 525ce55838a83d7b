package main

import (
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/ellemouton/lnurlpay"
)

var decodeCommand = &cli.Command{
	Name:      "decode",
	Usage:     "Decode a payment request",
	ArgsUsage: "<payment request>",
	Action:    decodePaymentRequest,
}

func decodePaymentRequest(ctx *cli.Context) error {
	pr := ctx.Args().First()
	if !lnurlpay.LooksLikePaymentRequest(pr) {
		return fmt.Errorf("not a payment request: %q", pr)
	}

	_, logger, err := getOptions(ctx)
	if err != nil {
		return err
	}

	decoder, err := getDecoder(
		ctx, lnurlpay.NewCallbackClient(http.DefaultTransport, logger),
	)
	if err != nil {
		return err
	}

	decoded, err := decoder.Decode(ctx.Context, pr)
	if err != nil {
		return err
	}

	fmt.Printf("Amount:           %v\n", decoded.Amount)
	fmt.Printf("Description:      %s\n", decoded.Description)
	if decoded.DescriptionHash != "" {
		fmt.Printf("Description hash: %s\n", decoded.DescriptionHash)
	}
	fmt.Printf("Payment hash:     %s\n", decoded.PaymentHash)

	return nil
}

var encodeCommand = &cli.Command{
	Name:      "encode",
	Usage:     "Encode a URL as an LNURL",
	ArgsUsage: "<url>",
	Action: func(ctx *cli.Context) error {
		url := ctx.Args().First()
		if url == "" {
			return fmt.Errorf("missing url argument")
		}

		lnurl, err := lnurlpay.EncodeURL(url)
		if err != nil {
			return err
		}

		fmt.Println(lnurl)

		return nil
	},
}
