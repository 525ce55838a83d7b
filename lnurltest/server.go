// Package lnurltest provides an in-process LNURL-pay service for tests and
// local demos. It serves pay metadata, invoices, keysend records and a bolt11
// decode endpoint that knows the invoices it issued.
package lnurltest

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/ellemouton/lnurlpay"
)

type Config struct {
	MinSendable lnwire.MilliSatoshi
	MaxSendable lnwire.MilliSatoshi

	CommentAllowed int
	Description    string
	Identifier     string
	PayerData      map[string]json.RawMessage
	AllowsNostr    bool

	// Tag overrides the payRequest tag, to simulate a non-pay service.
	Tag lnurlpay.Type

	// ErrorReason makes the callback answer {"status":"ERROR"}.
	ErrorReason string

	// AmountSkew is added to the amount of every issued invoice, to
	// simulate a service that does not honour the requested amount.
	AmountSkew btcutil.Amount

	// EmptyInvoice makes the callback answer without a pr.
	EmptyInvoice bool

	// Verify is returned as the invoice verify URL when set.
	Verify string

	KeysendPubkey      string
	KeysendCustomKey   string
	KeysendCustomValue string
}

// DefaultConfig returns a service accepting 1 to 1,000,000 sats with 140
// character comments.
func DefaultConfig() *Config {
	return &Config{
		MinSendable:        1_000,
		MaxSendable:        1_000_000_000,
		CommentAllowed:     140,
		Description:        "Pay to lnurltest",
		KeysendPubkey:      "030a58b8653d32b99200a2334cfe913e51dc7d155aa0116c176657a4f1722677a3",
		KeysendCustomKey:   "696969",
		KeysendCustomValue: "017rsl75kNnSke4mMHYE",
	}
}

type metadata struct {
	data      string
	createdAt time.Time
}

type invoice struct {
	amount   btcutil.Amount
	descHash string
}

// Server is an http.Handler implementing the pay service side of the
// protocol.
type Server struct {
	cfg *Config
	mux *http.ServeMux

	mu              sync.Mutex
	paymentMetadata map[string]*metadata
	invoices        map[string]*invoice
	callbacks       []url.Values
	hits            map[string]int
}

func NewServer(cfg *Config) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:             cfg,
		mux:             http.NewServeMux(),
		paymentMetadata: make(map[string]*metadata),
		invoices:        make(map[string]*invoice),
		hits:            make(map[string]int),
	}

	s.mux.HandleFunc("GET /.well-known/lnurlp/{username}", s.pay)
	s.mux.HandleFunc("GET /invoice", s.invoice)
	s.mux.HandleFunc("GET /.well-known/keysend/{username}", s.keysend)
	s.mux.HandleFunc("GET /decode/bolt11/{pr}", s.decode)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	s.mu.Unlock()

	s.mux.ServeHTTP(w, r)
}

// Hits returns how many requests were made to path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hits[path]
}

// Callbacks returns the query of every invoice callback received so far.
func (s *Server) Callbacks() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]url.Values(nil), s.callbacks...)
}

// Metadata returns the metadata string the service publishes.
func (s *Server) Metadata() string {
	entries := [][2]string{{"text/plain", s.cfg.Description}}
	if s.cfg.Identifier != "" {
		entries = append(entries, [2]string{
			"text/identifier", s.cfg.Identifier,
		})
	}

	b, _ := json.Marshal(entries)

	return string(b)
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func (s *Server) pay(w http.ResponseWriter, r *http.Request) {
	id, err := randomHex(10)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	meta := &metadata{
		data:      s.Metadata(),
		createdAt: time.Now(),
	}

	s.mu.Lock()
	s.paymentMetadata[id] = meta
	s.mu.Unlock()

	tag := s.cfg.Tag
	if tag == "" {
		tag = lnurlpay.TypePayRequest
	}

	resp := &lnurlpay.PayResponse{
		Callback: fmt.Sprintf("%s/invoice?id=%s", baseURL(r), id),
		MinSendable: json.Number(
			strconv.FormatUint(uint64(s.cfg.MinSendable), 10),
		),
		MaxSendable: json.Number(
			strconv.FormatUint(uint64(s.cfg.MaxSendable), 10),
		),
		Metadata:       meta.data,
		CommentAllowed: s.cfg.CommentAllowed,
		AllowsNostr:    s.cfg.AllowsNostr,
		PayerData:      s.cfg.PayerData,
		Tag:            tag,
	}

	writeJSON(w, resp)
}

func (s *Server) invoice(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	s.mu.Lock()
	s.callbacks = append(s.callbacks, query)
	meta, ok := s.paymentMetadata[query.Get("id")]
	s.mu.Unlock()

	if !ok {
		writeError(w, "unknown id")
		return
	}

	if s.cfg.ErrorReason != "" {
		writeError(w, s.cfg.ErrorReason)
		return
	}

	milliSats, err := strconv.ParseUint(query.Get("amount"), 10, 64)
	if err != nil {
		writeError(w, "expected 'amount' field")
		return
	}

	amt := lnwire.MilliSatoshi(milliSats)
	if amt < s.cfg.MinSendable || amt > s.cfg.MaxSendable {
		writeError(w, "amount out of range")
		return
	}

	comment := []rune(query.Get("comment"))
	if s.cfg.CommentAllowed > 0 && len(comment) > s.cfg.CommentAllowed {
		writeError(w, "comment too long")
		return
	}

	if s.cfg.EmptyInvoice {
		writeJSON(w, &lnurlpay.InvoiceResponse{Routes: []string{}})
		return
	}

	sats := amt.ToSatoshis() + s.cfg.AmountSkew
	suffix, err := randomHex(20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	pr := fmt.Sprintf("lnbc%dn1p%s", int64(sats)*10, suffix)

	s.mu.Lock()
	s.invoices[pr] = &invoice{
		amount:   sats,
		descHash: lnurlpay.MetadataHash(meta.data).String(),
	}
	s.mu.Unlock()

	writeJSON(w, &lnurlpay.InvoiceResponse{
		PayRequest: pr,
		Verify:     s.cfg.Verify,
		Routes:     []string{},
	})
}

func (s *Server) keysend(w http.ResponseWriter, _ *http.Request) {
	resp := &lnurlpay.KeysendResponse{
		Tag:    lnurlpay.TypeKeysend,
		Status: lnurlpay.StatusOK,
	}
	if s.cfg.KeysendPubkey != "" {
		pubkey := s.cfg.KeysendPubkey
		resp.Pubkey = &pubkey
	}
	if s.cfg.KeysendCustomKey != "" {
		resp.CustomData = []lnurlpay.CustomData{{
			CustomKey:   s.cfg.KeysendCustomKey,
			CustomValue: s.cfg.KeysendCustomValue,
		}}
	}

	writeJSON(w, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) {
	pr := r.PathValue("pr")

	s.mu.Lock()
	inv, ok := s.invoices[pr]
	s.mu.Unlock()

	if !ok {
		http.Error(w, "unknown invoice", http.StatusNotFound)
		return
	}

	writeJSON(w, &lnurlpay.DecodeResponse{
		Amount:          int64(inv.amount),
		Description:     s.cfg.Description,
		DescriptionHash: inv.descHash,
		PaymentHash:     pr[len(pr)-40:],
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, reason string) {
	writeJSON(w, &lnurlpay.Error{
		Status: lnurlpay.StatusError,
		Reason: reason,
	})
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
