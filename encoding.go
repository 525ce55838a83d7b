package lnurlpay

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const humanReadablePart = "lnurl"

// PointerCodec translates a bech32 service pointer into the URL it encodes.
type PointerCodec interface {
	Valid(raw string) bool
	Decode(raw string) (string, error)
}

// Bech32Codec is the default PointerCodec. It accepts LNURL strings in either
// case.
type Bech32Codec struct{}

var _ PointerCodec = Bech32Codec{}

func (Bech32Codec) Valid(raw string) bool {
	return ValidURL(raw)
}

func (Bech32Codec) Decode(raw string) (string, error) {
	return DecodeURL(raw)
}

// ValidURL reports whether lnurl decodes to an absolute http(s) URL.
func ValidURL(lnurl string) bool {
	decoded, err := DecodeURL(lnurl)
	if err != nil {
		return false
	}

	return isWebURL(decoded)
}

func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

func DecodeURL(lnurl string) (string, error) {
	// LNURLs are routinely longer than the 90 characters bech32 allows for
	// segwit addresses.
	hrp, data, err := bech32.DecodeNoLimit(strings.ToLower(lnurl))
	if err != nil {
		return "", err
	}

	if hrp != humanReadablePart {
		return "", fmt.Errorf("incorrect hrp for LNURL. Expected "+
			"'%s', got '%s'", humanReadablePart, hrp)
	}

	data, err = bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func EncodeURL(url string) (string, error) {
	converted, err := bech32.ConvertBits([]byte(url), 8, 5, true)
	if err != nil {
		return "", err
	}

	str, err := bech32.Encode(humanReadablePart, converted)
	if err != nil {
		return "", err
	}

	return strings.ToUpper(str), nil
}
