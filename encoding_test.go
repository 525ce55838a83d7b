package lnurlpay_test

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/require"

	"github.com/ellemouton/lnurlpay"
)

func TestEncodeDecodeURL(t *testing.T) {
	// Well past the 90 character limit of segwit addresses.
	u := "https://service.com/api?q=3fc3645b439ce8e7f2553a69e5267081d96d" +
		"cd340693afabe04be7b0ccd178df"

	lnurl, err := lnurlpay.EncodeURL(u)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(lnurl, "LNURL1"))
	require.Greater(t, len(lnurl), 90)

	decoded, err := lnurlpay.DecodeURL(lnurl)
	require.NoError(t, err)
	require.Equal(t, u, decoded)

	decoded, err = lnurlpay.DecodeURL(strings.ToLower(lnurl))
	require.NoError(t, err)
	require.Equal(t, u, decoded)

	require.True(t, lnurlpay.ValidURL(lnurl))
	require.True(t, lnurlpay.Bech32Codec{}.Valid(strings.ToLower(lnurl)))
}

func TestDecodeURLRejects(t *testing.T) {
	data, err := bech32.ConvertBits([]byte("https://svc.example"), 8, 5, true)
	require.NoError(t, err)

	wrongHRP, err := bech32.Encode("lnbc", data)
	require.NoError(t, err)

	_, err = lnurlpay.DecodeURL(wrongHRP)
	require.ErrorContains(t, err, "incorrect hrp")
	require.False(t, lnurlpay.ValidURL(wrongHRP))

	_, err = lnurlpay.DecodeURL("lnurl1notbech32")
	require.Error(t, err)

	// Valid bech32, but not a web URL.
	notWeb, err := lnurlpay.EncodeURL("ftp://svc.example/file")
	require.NoError(t, err)
	require.False(t, lnurlpay.ValidURL(notWeb))

	noHost, err := lnurlpay.EncodeURL("https:///path")
	require.NoError(t, err)
	require.False(t, lnurlpay.ValidURL(noHost))
}
