// Package rates converts satoshi amounts to fiat using public BTC tickers.
// Bitstamp is asked first for the currencies it lists, CoinDesk is the
// fallback. Rates are cached in memory for ten minutes.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ellemouton/lnurlpay"
)

const (
	DefaultBitstampURL = "https://www.bitstamp.net"
	DefaultCoindeskURL = "https://api.coindesk.com"

	DefaultTTL = 10 * time.Minute

	requestTimeout = 10 * time.Second
)

var ErrRateUnavailable = errors.New("no exchange rate available")

var (
	satsPerBTC = decimal.New(btcutil.SatoshiPerBitcoin, 0)
	hundred    = decimal.New(100, 0)

	// bitstampCurrencies are the only pairs Bitstamp is asked for.
	bitstampCurrencies = map[string]bool{"usd": true, "eur": true, "gbp": true}
)

// Rate is the price of one bitcoin in Code.
type Rate struct {
	Code      string
	Rate      decimal.Decimal
	UpdatedAt time.Time
}

type Provider struct {
	BitstampURL string
	CoindeskURL string
	TTL         time.Duration

	client *http.Client
	log    *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]*Rate
}

func NewProvider(transport http.RoundTripper, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}

	return &Provider{
		BitstampURL: DefaultBitstampURL,
		CoindeskURL: DefaultCoindeskURL,
		TTL:         DefaultTTL,
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: lnurlpay.NewLoggingRoundTripper(
				transport, logger,
			),
		},
		log:   logger,
		now:   time.Now,
		cache: make(map[string]*Rate),
	}
}

// Rate returns the current BTC price in currency, from cache when fresh.
func (p *Provider) Rate(ctx context.Context, currency string) (*Rate, error) {
	currency = strings.ToLower(currency)

	if rate := p.cached(currency); rate != nil {
		return rate, nil
	}

	price, err := p.fresh(ctx, currency)
	if err != nil {
		return nil, err
	}

	rate := &Rate{
		Code:      strings.ToUpper(currency),
		Rate:      price,
		UpdatedAt: p.now(),
	}

	p.mu.Lock()
	p.cache[currency] = rate
	p.mu.Unlock()

	return rate, nil
}

func (p *Provider) cached(currency string) *Rate {
	p.mu.Lock()
	defer p.mu.Unlock()

	rate, ok := p.cache[currency]
	if !ok || p.now().Sub(rate.UpdatedAt) >= p.TTL {
		return nil
	}

	return rate
}

func (p *Provider) fresh(ctx context.Context,
	currency string) (decimal.Decimal, error) {

	var errs []error

	if bitstampCurrencies[currency] {
		price, err := p.fromBitstamp(ctx, currency)
		if err == nil {
			return price, nil
		}

		p.log.DebugContext(ctx, "bitstamp rate lookup failed",
			"currency", currency, "error", err)
		errs = append(errs, fmt.Errorf("bitstamp: %w", err))
	}

	price, err := p.fromCoindesk(ctx, currency)
	if err == nil {
		return price, nil
	}
	errs = append(errs, fmt.Errorf("coindesk: %w", err))

	return decimal.Decimal{}, fmt.Errorf("%w for %s: %w",
		ErrRateUnavailable, currency, errors.Join(errs...))
}

func (p *Provider) fromBitstamp(ctx context.Context,
	currency string) (decimal.Decimal, error) {

	var ticker struct {
		Last string `json:"last"`
	}

	url := fmt.Sprintf("%s/api/v2/ticker/btc%s", p.BitstampURL, currency)
	if err := p.get(ctx, url, &ticker); err != nil {
		return decimal.Decimal{}, err
	}

	return decimal.NewFromString(ticker.Last)
}

func (p *Provider) fromCoindesk(ctx context.Context,
	currency string) (decimal.Decimal, error) {

	var resp struct {
		BPI map[string]struct {
			RateFloat float64 `json:"rate_float"`
		} `json:"bpi"`
	}

	url := fmt.Sprintf("%s/v1/bpi/currentprice/%s.json", p.CoindeskURL,
		currency)
	if err := p.get(ctx, url, &resp); err != nil {
		return decimal.Decimal{}, err
	}

	bpi, ok := resp.BPI[strings.ToUpper(currency)]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("no %s price in response",
			currency)
	}

	return decimal.NewFromFloat(bpi.RateFloat), nil
}

func (p *Provider) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad response status %d: %s", resp.StatusCode,
			body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// FiatValue converts sats to currency, rounding up to the next cent.
func (p *Provider) FiatValue(ctx context.Context, currency string,
	sats btcutil.Amount) (decimal.Decimal, error) {

	rate, err := p.Rate(ctx, currency)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return FiatValue(rate, sats), nil
}

func FiatValue(rate *Rate, sats btcutil.Amount) decimal.Decimal {
	cents := rate.Rate.Mul(hundred).
		Mul(decimal.New(int64(sats), 0)).
		Div(satsPerBTC).
		Ceil()

	return cents.Div(hundred)
}

// FormatFiat renders a fiat amount as "12.34 USD".
func FormatFiat(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", amount.StringFixed(2),
		strings.ToUpper(currency))
}

// FormatSats renders an amount as "1,234 sats".
func FormatSats(amount btcutil.Amount) string {
	p := message.NewPrinter(language.English)

	return p.Sprintf("%d sats", int64(amount))
}
