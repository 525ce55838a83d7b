package lnurltest

import (
	"net/http"
	"net/url"
)

// RewriteTransport sends every request to Target whatever host it was
// addressed to, keeping the original Host header. It lets code that builds
// https://domain/... URLs talk to an httptest server.
type RewriteTransport struct {
	Target *url.URL
	Base   http.RoundTripper
}

func NewRewriteTransport(target string) (*RewriteTransport, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	return &RewriteTransport{Target: u, Base: http.DefaultTransport}, nil
}

func (t *RewriteTransport) RoundTrip(r *http.Request) (*http.Response,
	error) {

	req := r.Clone(r.Context())
	req.Host = r.URL.Host
	req.URL.Scheme = t.Target.Scheme
	req.URL.Host = t.Target.Host

	return t.Base.RoundTrip(req)
}
