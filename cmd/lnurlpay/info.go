package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ellemouton/lnurlpay"
)

var infoCommand = &cli.Command{
	Name:      "info",
	Usage:     "Show what an LNURL or lightning address publishes",
	ArgsUsage: "<lnurl|address>",
	Action:    showInfo,
}

func showInfo(ctx *cli.Context) error {
	raw := ctx.Args().First()
	if raw == "" {
		return fmt.Errorf("missing recipient argument")
	}

	opts, _, err := getOptions(ctx)
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

	fmt.Printf("Recipient:       %s (%s)\n", recipient, recipient.Kind())
	fmt.Printf("Domain:          %s\n", meta.Domain)
	fmt.Printf("Description:     %s\n", meta.Description)
	if meta.Identifier != "" {
		fmt.Printf("Identifier:      %s\n", meta.Identifier)
	}
	if meta.Fixed {
		fmt.Printf("Amount:          %v (fixed)\n", meta.MinSendable)
	} else {
		fmt.Printf("Amount:          %v - %v\n", meta.MinSendable,
			meta.MaxSendable)
	}
	fmt.Printf("Comment allowed: %d\n", meta.CommentAllowed)
	fmt.Printf("Allows nostr:    %v\n", meta.AllowsNostr)
	if len(meta.PayerDataSchema) > 0 {
		fmt.Printf("Payer data:      %s\n",
			strings.Join(meta.PayerDataSchema, ", "))
	}
	fmt.Printf("Metadata hash:   %s\n", meta.MetadataHash)

	address, ok := recipient.(*lnurlpay.LightningAddressRecipient)
	if !ok {
		return nil
	}

	// Keysend is optional, most addresses don't publish it.
	if keysend := address.TryKeysend(ctx.Context); keysend != nil {
		fmt.Printf("Keysend pubkey:  %s\n", keysend.Destination)
		fmt.Printf("Keysend record:  %s=%s\n", keysend.CustomKey,
			keysend.CustomValue)
	}

	return nil
}
