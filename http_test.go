package lnurlpay_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ellemouton/lnurlpay"
)

func TestLoggingRoundTripper(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		},
	))
	t.Cleanup(srv.Close)

	client := &http.Client{
		Transport: lnurlpay.NewLoggingRoundTripper(nil, logger),
	}

	req, err := http.NewRequestWithContext(
		context.Background(), http.MethodGet, srv.URL+"/test", nil,
	)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fmt.Sprintf(
		`{"level":"DEBUG","msg":"outgoing request","request":"GET %s/test"}
{"level":"DEBUG","msg":"incoming response","response":"GET %s/test","status":418}
`, srv.URL, srv.URL), buf.String())
}

func TestLoggingRoundTripperError(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := &http.Client{
		Transport: lnurlpay.NewLoggingRoundTripper(nil, logger),
	}

	req, err := http.NewRequestWithContext(
		context.Background(), http.MethodGet, srv.URL, nil,
	)
	require.NoError(t, err)

	_, err = client.Do(req)
	require.ErrorContains(t, err, "round trip")
	require.Contains(t, buf.String(), `msg="request failed"`)
}
