package lnurlpay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// fetchTimeout bounds discovery and keysend lookups.
	fetchTimeout = 3 * time.Second

	maxRedirects = 4
)

var errTooManyRedirects = fmt.Errorf("stopped after %d redirects",
	maxRedirects)

// statusError is returned by getJSON for non-2xx responses.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("bad response status %d: %s", e.code, e.body)
}

// NewFetchClient returns the client used for discovery lookups: a three
// second timeout and at most four redirects.
func NewFetchClient(transport http.RoundTripper,
	logger *slog.Logger) *http.Client {

	return &http.Client{
		Timeout:       fetchTimeout,
		Transport:     NewLoggingRoundTripper(transport, logger),
		CheckRedirect: limitRedirects,
	}
}

// NewCallbackClient returns the client used for invoice callbacks and
// remote decoding. It has no timeout of its own; callers bound it with the
// request context.
func NewCallbackClient(transport http.RoundTripper,
	logger *slog.Logger) *http.Client {

	return &http.Client{
		Transport: NewLoggingRoundTripper(transport, logger),
	}
}

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) > maxRedirects {
		return errTooManyRedirects
	}

	return nil
}

// LoggingRoundTripper logs every outgoing request and its response status.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Logger    *slog.Logger
}

func NewLoggingRoundTripper(transport http.RoundTripper,
	logger *slog.Logger) *LoggingRoundTripper {

	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingRoundTripper{Transport: transport, Logger: logger}
}

func (l *LoggingRoundTripper) RoundTrip(r *http.Request) (*http.Response,
	error) {

	ctx := r.Context()
	target := fmt.Sprintf("%s %s", r.Method, r.URL.Redacted())

	l.Logger.DebugContext(ctx, "outgoing request", "request", target)

	resp, err := l.Transport.RoundTrip(r)
	if err != nil {
		l.Logger.DebugContext(ctx, "request failed", "request", target,
			"error", err)

		return nil, fmt.Errorf("round trip: %w", err)
	}

	l.Logger.DebugContext(ctx, "incoming response", "response", target,
		"status", resp.StatusCode)

	return resp, nil
}

// getJSON issues a GET against url and unmarshals a 2xx body into out. Any
// network failure or non-2xx status is returned unwrapped so callers can tag
// it with their own sentinel.
func getJSON(ctx context.Context, client *http.Client, url string,
	out interface{}) error {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode, body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
