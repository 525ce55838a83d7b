package lnurlpay

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/zpay32"
)

// Zpay32Decoder decodes bolt11 payment requests locally. Unlike
// RemoteDecoder it checks the request belongs to Network.
type Zpay32Decoder struct {
	Network *chaincfg.Params
}

var _ Decoder = (*Zpay32Decoder)(nil)

// NetworkParams maps a network name to its chain parameters.
func NetworkParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "mainnet", "":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "simnet":
		return &chaincfg.SimNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network: %s", network)
	}
}

func (d *Zpay32Decoder) Decode(_ context.Context,
	pr string) (*DecodedPaymentRequest, error) {

	network := d.Network
	if network == nil {
		network = &chaincfg.MainNetParams
	}

	inv, err := zpay32.Decode(pr, network)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	decoded := &DecodedPaymentRequest{}
	if inv.MilliSat != nil {
		decoded.Amount = inv.MilliSat.ToSatoshis()
		decoded.AmountMsat = *inv.MilliSat
	}
	if inv.Description != nil {
		decoded.Description = *inv.Description
	}
	if inv.DescriptionHash != nil {
		decoded.DescriptionHash = hex.EncodeToString(
			inv.DescriptionHash[:],
		)
	}
	if inv.PaymentHash != nil {
		decoded.PaymentHash = hex.EncodeToString(inv.PaymentHash[:])
	}

	return decoded, nil
}
