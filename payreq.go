package lnurlpay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lnwire"
)

// DefaultDecodeURL is the public bolt11 decode service RemoteDecoder uses
// unless told otherwise.
const DefaultDecodeURL = "https://api.getalby.com"

var bolt11Regex = regexp.MustCompile(`^lnbc[0-9a-z]+$`)

// LooksLikePaymentRequest is a purely syntactic check for a mainnet bolt11
// string. It says nothing about whether the request is payable.
func LooksLikePaymentRequest(s string) bool {
	return bolt11Regex.MatchString(strings.ToLower(s))
}

// DecodedPaymentRequest holds the fields of a payment request the resolver
// cares about.
type DecodedPaymentRequest struct {
	Amount btcutil.Amount

	// AmountMsat is the exact amount when the decoder knows it, zero
	// otherwise.
	AmountMsat lnwire.MilliSatoshi

	Description     string
	DescriptionHash string
	PaymentHash     string
}

// Decoder decodes a payment request string.
type Decoder interface {
	Decode(ctx context.Context, pr string) (*DecodedPaymentRequest, error)
}

// RemoteDecoder decodes payment requests with a remote decode service. Every
// call is a network round trip.
type RemoteDecoder struct {
	BaseURL string
	Client  *http.Client
}

var _ Decoder = (*RemoteDecoder)(nil)

func NewRemoteDecoder(client *http.Client) *RemoteDecoder {
	return &RemoteDecoder{
		BaseURL: DefaultDecodeURL,
		Client:  client,
	}
}

func (d *RemoteDecoder) Decode(ctx context.Context,
	pr string) (*DecodedPaymentRequest, error) {

	base := d.BaseURL
	if base == "" {
		base = DefaultDecodeURL
	}

	decodeURL, err := url.JoinPath(
		base, "decode", "bolt11", strings.ToLower(pr),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	var resp DecodeResponse
	if err := getJSON(ctx, client, decodeURL, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	return &DecodedPaymentRequest{
		Amount:          btcutil.Amount(resp.Amount),
		Description:     resp.Description,
		DescriptionHash: resp.DescriptionHash,
		PaymentHash:     resp.PaymentHash,
	}, nil
}
