package lnurlpay_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"github.com/ellemouton/lnurlpay"
)

func TestLooksLikePaymentRequest(t *testing.T) {
	tests := []struct {
		pr    string
		match bool
	}{
		{"lnbc10n1pjq8xyz", true},
		{"LNBC2500U1PVJLUEZPP5QQQSYQCYQ5RQWZQFQQQSYQ", true},
		{"lnbc", false},
		{"lntb10n1pjq8xyz", false},
		{"lnbc10n1 pjq8xyz", false},
		{"lightning:lnbc10n1pjq8xyz", false},
		{"", false},
	}

	for _, test := range tests {
		require.Equal(t, test.match,
			lnurlpay.LooksLikePaymentRequest(test.pr), "input %q",
			test.pr)
	}
}

func TestRemoteDecoder(t *testing.T) {
	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			paths <- r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"amount": 1500,
				"description": "coffee",
				"description_hash": "abcd",
				"payment_hash": "0011",
				"unknown": true
			}`))
		},
	))
	t.Cleanup(srv.Close)

	decoder := lnurlpay.NewRemoteDecoder(srv.Client())
	decoder.BaseURL = srv.URL

	decoded, err := decoder.Decode(context.Background(), "LNBC15U1PEXAMPLE")
	require.NoError(t, err)
	require.Equal(t, "/decode/bolt11/lnbc15u1pexample", <-paths)
	require.Equal(t, &lnurlpay.DecodedPaymentRequest{
		Amount:          1500,
		Description:     "coffee",
		DescriptionHash: "abcd",
		PaymentHash:     "0011",
	}, decoded)
}

func TestRemoteDecoderFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(srv.Close)

		decoder := &lnurlpay.RemoteDecoder{BaseURL: srv.URL}
		_, err := decoder.Decode(ctx, "lnbc1p")
		require.ErrorIs(t, err, lnurlpay.ErrDecodeFailed)
	})

	t.Run("not json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html></html>"))
			},
		))
		t.Cleanup(srv.Close)

		decoder := &lnurlpay.RemoteDecoder{BaseURL: srv.URL}
		_, err := decoder.Decode(ctx, "lnbc1p")
		require.ErrorIs(t, err, lnurlpay.ErrDecodeFailed)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		decoder := &lnurlpay.RemoteDecoder{BaseURL: srv.URL}
		_, err := decoder.Decode(ctx, "lnbc1p")
		require.ErrorIs(t, err, lnurlpay.ErrDecodeFailed)
	})
}

// Signed mainnet invoices committing to the lnurltest default metadata,
// one for 1000 sat and one for 1000.999 sat.
const (
	invoice1000Sat = "lnbc10u1pj48ugqpp5smxr56sg4c3e8yn3h0kryg9safsfme" +
		"svzkfwsuqptgzv0hq432ushp5xcmv3tg4jfwzqk2da07pekxh4sle9r7tq2" +
		"2vmeewq80x7rkl3x6ssp5laqn2t9kev9hevutwuhws9wkwte7s6rwaey2nj" +
		"35q5vphcgcr32qxqrrsscqzpgmdf36n853sgps4ejqalgef6yxpfssn39kf" +
		"7kvtaa4ltftnfr05243ttggnf4hpqccjkyk32svsg8uzpwdzcclgtsfa8d2" +
		"672mkrcq0spgjlqdh"

	invoiceSubSat = "lnbc10009990p1pj48ugqpp5smxr56sg4c3e8yn3h0kryg9saf" +
		"sfmesvzkfwsuqptgzv0hq432ushp5xcmv3tg4jfwzqk2da07pekxh4sle9r" +
		"7tq22vmeewq80x7rkl3x6ssp5laqn2t9kev9hevutwuhws9wkwte7s6rwae" +
		"y2nj35q5vphcgcr32qxqrrsscqzpg76ak5df6mzwtxw8gltpuz9p47sxzwg" +
		"w2u87c2fxg3737snh3l4z5kmjylrnp2aaawnzul759lut2xgefsn9nueggk" +
		"0xmmw7rt8tsrhspklfrwv"

	invoicePaymentHash = "86cc3a6a08ae23939271bbec3220b0ea609de60c1592" +
		"e870015a04c7dc158ab9"
)

func TestZpay32Decoder(t *testing.T) {
	ctx := context.Background()
	decoder := &lnurlpay.Zpay32Decoder{Network: &chaincfg.MainNetParams}
	descHash := lnurlpay.MetadataHash(
		`[["text/plain","Pay to lnurltest"]]`,
	).String()

	decoded, err := decoder.Decode(ctx, invoice1000Sat)
	require.NoError(t, err)
	require.Equal(t, &lnurlpay.DecodedPaymentRequest{
		Amount:          1000,
		AmountMsat:      1_000_000,
		DescriptionHash: descHash,
		PaymentHash:     invoicePaymentHash,
	}, decoded)

	// The satoshi amount is truncated, the exact amount is kept.
	decoded, err = decoder.Decode(ctx, invoiceSubSat)
	require.NoError(t, err)
	require.EqualValues(t, 1000, decoded.Amount)
	require.EqualValues(t, 1_000_999, decoded.AmountMsat)
	require.Equal(t, descHash, decoded.DescriptionHash)

	// A mainnet invoice is not valid on testnet.
	testnet := &lnurlpay.Zpay32Decoder{Network: &chaincfg.TestNet3Params}
	_, err = testnet.Decode(ctx, invoice1000Sat)
	require.ErrorIs(t, err, lnurlpay.ErrDecodeFailed)
}

func TestZpay32DecoderRejects(t *testing.T) {
	decoder := &lnurlpay.Zpay32Decoder{}

	_, err := decoder.Decode(context.Background(), "lnbc1notaninvoice")
	require.ErrorIs(t, err, lnurlpay.ErrDecodeFailed)

	_, err = decoder.Decode(context.Background(), "")
	require.ErrorIs(t, err, lnurlpay.ErrDecodeFailed)
}

func TestNetworkParams(t *testing.T) {
	params, err := lnurlpay.NetworkParams("")
	require.NoError(t, err)
	require.Equal(t, chaincfg.MainNetParams.Name, params.Name)

	params, err = lnurlpay.NetworkParams("regtest")
	require.NoError(t, err)
	require.Equal(t, chaincfg.RegressionNetParams.Name, params.Name)

	_, err = lnurlpay.NetworkParams("dogenet")
	require.Error(t, err)
}
