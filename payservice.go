package lnurlpay

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
)

// State is the lifecycle position of a PayServiceClient.
type State uint8

const (
	StateUnfetched State = iota
	StateFetching
	StateFetched
	StateFetchFailed
	StateRequestingInvoice
	StateInvoiceIssued
	StateRequestFailed
)

func (s State) String() string {
	switch s {
	case StateUnfetched:
		return "Unfetched"
	case StateFetching:
		return "Fetching"
	case StateFetched:
		return "Fetched"
	case StateFetchFailed:
		return "FetchFailed"
	case StateRequestingInvoice:
		return "RequestingInvoice"
	case StateInvoiceIssued:
		return "InvoiceIssued"
	case StateRequestFailed:
		return "RequestFailed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// PayMetadata is the validated form of a service's pay parameters.
type PayMetadata struct {
	Callback *url.URL

	// Domain is the host of the callback URL.
	Domain string

	MinSendable lnwire.MilliSatoshi
	MaxSendable lnwire.MilliSatoshi

	// Fixed is set when the service only accepts a single amount.
	Fixed bool

	// CommentAllowed is the maximum comment length. Zero means the service
	// does not take comments.
	CommentAllowed int

	AllowsNostr bool
	NostrPubkey string

	// MetadataRaw is the metadata string exactly as it was received and
	// MetadataHash is its SHA-256.
	MetadataRaw  string
	MetadataHash lntypes.Hash

	Description string
	Identifier  string

	// Image is a data URI, or empty when the service publishes none.
	Image string

	PayerData       map[string]json.RawMessage
	PayerDataSchema []string
}

// MatchesDescriptionHash reports whether a hex encoded description hash, as
// carried by a payment request, commits to this metadata.
func (m *PayMetadata) MatchesDescriptionHash(hexHash string) bool {
	return strings.EqualFold(hexHash, m.MetadataHash.String())
}

// InvoiceRequest is what a caller wants the service to issue.
type InvoiceRequest struct {
	Amount btcutil.Amount

	// Comment is only sent when non-empty.
	Comment string

	// PayerData is JSON encoded into the payerdata parameter when set.
	PayerData interface{}
}

// Invoice is a payment request that passed the amount cross-check.
type Invoice struct {
	PaymentRequest string
	Verify         string
	Preimage       string

	Decoded *DecodedPaymentRequest
}

// PayServiceClient talks to a single LNURL-pay service. It fetches the pay
// metadata at most once and requests invoices against it.
type PayServiceClient struct {
	discoveryURL string
	cfg          *config
	log          *slog.Logger

	mu       sync.Mutex
	state    State
	metadata *PayMetadata
	fetchErr error
}

// NewPayServiceClient creates a client for the pay service published at
// discoveryURL.
func NewPayServiceClient(discoveryURL string,
	opts ...Option) *PayServiceClient {

	return newPayServiceClient(discoveryURL, newConfig(opts))
}

func newPayServiceClient(discoveryURL string,
	cfg *config) *PayServiceClient {

	return &PayServiceClient{
		discoveryURL: discoveryURL,
		cfg:          cfg,
		log:          cfg.logger.With("lnurlp", discoveryURL),
	}
}

// DiscoveryURL is the URL the pay metadata is fetched from.
func (c *PayServiceClient) DiscoveryURL() string {
	return c.discoveryURL
}

func (c *PayServiceClient) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// FetchMetadata returns the service's pay metadata. The first call performs
// the lookup; later calls return the stored document or the stored error.
func (c *PayServiceClient) FetchMetadata(ctx context.Context) (*PayMetadata,
	error) {

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fetchMetadataLocked(ctx)
}

// TryFetchMetadata is FetchMetadata with any error turned into nil.
func (c *PayServiceClient) TryFetchMetadata(ctx context.Context) *PayMetadata {
	return Lenient(c.FetchMetadata(ctx))
}

func (c *PayServiceClient) fetchMetadataLocked(
	ctx context.Context) (*PayMetadata, error) {

	switch c.state {
	case StateUnfetched:
	case StateFetchFailed:
		return nil, c.fetchErr
	default:
		return c.metadata, nil
	}

	c.state = StateFetching

	meta, err := c.fetchMetadata(ctx)
	if err != nil {
		c.log.DebugContext(ctx, "pay metadata fetch failed", "error", err)

		c.state = StateFetchFailed
		c.fetchErr = err

		return nil, err
	}

	c.state = StateFetched
	c.metadata = meta

	return meta, nil
}

func (c *PayServiceClient) fetchMetadata(
	ctx context.Context) (*PayMetadata, error) {

	var payResp PayResponse
	err := getJSON(ctx, c.cfg.fetchClient, c.discoveryURL, &payResp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	return ParsePayResponse(&payResp)
}

// ParsePayResponse validates a pay service response and derives its
// PayMetadata.
func ParsePayResponse(payResp *PayResponse) (*PayMetadata, error) {
	if payResp.Tag != TypePayRequest {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidServiceTag,
			payResp.Tag)
	}

	callback, err := parseCallback(payResp.Callback)
	if err != nil {
		return nil, err
	}

	minSendable, maxSendable, err := parseAmountRange(
		payResp.MinSendable, payResp.MaxSendable,
	)
	if err != nil {
		return nil, err
	}

	meta := &PayMetadata{
		Callback:       callback,
		Domain:         callback.Hostname(),
		MinSendable:    minSendable,
		MaxSendable:    maxSendable,
		Fixed:          minSendable == maxSendable,
		CommentAllowed: payResp.CommentAllowed,
		AllowsNostr:    payResp.AllowsNostr,
		NostrPubkey:    payResp.NostrPubkey,
		MetadataRaw:    payResp.Metadata,
		MetadataHash:   MetadataHash(payResp.Metadata),
		PayerData:      payResp.PayerData,
	}

	if err := meta.parseMetadataEntries(); err != nil {
		return nil, err
	}

	meta.PayerDataSchema = make([]string, 0, len(payResp.PayerData))
	for key := range payResp.PayerData {
		meta.PayerDataSchema = append(meta.PayerDataSchema, key)
	}
	sort.Strings(meta.PayerDataSchema)

	return meta, nil
}

// MetadataHash hashes a metadata string as received on the wire. Hashing a
// re-encoded copy would not match the description hash of the invoice.
func MetadataHash(raw string) lntypes.Hash {
	return lntypes.Hash(sha256.Sum256([]byte(raw)))
}

func parseCallback(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)

	callback, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}

	if callback.Scheme == "" || callback.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute",
			ErrInvalidCallback, raw)
	}

	return callback, nil
}

func parseAmountRange(minRaw, maxRaw json.Number) (lnwire.MilliSatoshi,
	lnwire.MilliSatoshi, error) {

	if minRaw == "" || maxRaw == "" {
		return 0, 0, fmt.Errorf("%w: missing min or max sendable",
			ErrInvalidAmountRange)
	}

	minF, err := strconv.ParseFloat(string(minRaw), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: minSendable: %v",
			ErrInvalidAmountRange, err)
	}

	maxF, err := strconv.ParseFloat(string(maxRaw), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: maxSendable: %v",
			ErrInvalidAmountRange, err)
	}

	minF, maxF = math.Ceil(minF), math.Floor(maxF)
	if minF < 0 || minF > maxF || maxF > math.MaxInt64 {
		return 0, 0, fmt.Errorf("%w: min %v, max %v",
			ErrInvalidAmountRange, minF, maxF)
	}

	return lnwire.MilliSatoshi(minF), lnwire.MilliSatoshi(maxF), nil
}

// parseMetadataEntries reads the [type, value] pairs of MetadataRaw. Entries
// of unknown type or shape are skipped.
func (m *PayMetadata) parseMetadataEntries() error {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(m.MetadataRaw), &entries); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}

	for _, raw := range entries {
		var entry []interface{}
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if len(entry) != 2 {
			continue
		}

		kind, ok := entry[0].(string)
		if !ok {
			continue
		}

		value := metadataValue(entry[1])

		switch kind {
		case "text/plain":
			m.Description = value
		case "text/identifier":
			m.Identifier = value
		case "image/png;base64", "image/jpeg;base64":
			m.Image = fmt.Sprintf("data:%s,%s", kind, value)
		}
	}

	return nil
}

func metadataValue(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// RequestInvoice asks the service for a payment request of req.Amount and
// returns it once its decoded amount matches what was asked for. The pay
// metadata is fetched first if it has not been yet.
func (c *PayServiceClient) RequestInvoice(ctx context.Context,
	req InvoiceRequest) (*Invoice, error) {

	c.mu.Lock()
	defer c.mu.Unlock()

	meta, err := c.fetchMetadataLocked(ctx)
	if err != nil {
		return nil, err
	}

	c.state = StateRequestingInvoice

	invoice, err := c.requestInvoice(ctx, meta, req)
	if err != nil {
		c.log.DebugContext(ctx, "invoice request failed", "error", err)
		c.state = StateRequestFailed

		return nil, err
	}

	c.log.DebugContext(ctx, "invoice issued",
		"amount_sat", int64(req.Amount))
	c.state = StateInvoiceIssued

	return invoice, nil
}

func (c *PayServiceClient) requestInvoice(ctx context.Context,
	meta *PayMetadata, req InvoiceRequest) (*Invoice, error) {

	params, err := invoiceParams(meta, req)
	if err != nil {
		return nil, err
	}

	callbackURL := *meta.Callback
	callbackURL.RawQuery = params.Encode()

	var invoiceResp InvoiceResponse
	err = getJSON(
		ctx, c.cfg.callbackClient, callbackURL.String(), &invoiceResp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if invoiceResp.Status == StatusError {
		return nil, &ServiceError{Reason: invoiceResp.Reason}
	}

	pr := strings.TrimSpace(invoiceResp.PayRequest)
	if pr == "" {
		return nil, ErrEmptyInvoice
	}

	decoded, err := c.cfg.decoder.Decode(ctx, pr)
	if err != nil {
		return nil, err
	}

	if decoded.Amount != req.Amount {
		return nil, fmt.Errorf("%w (%d != %d)", ErrAmountMismatch,
			int64(decoded.Amount), int64(req.Amount))
	}

	// A sub-satoshi remainder is invisible in the satoshi comparison.
	wantMsat := lnwire.NewMSatFromSatoshis(req.Amount)
	if decoded.AmountMsat != 0 && decoded.AmountMsat != wantMsat {
		return nil, fmt.Errorf("%w (%v != %v)", ErrAmountMismatch,
			decoded.AmountMsat, wantMsat)
	}

	return &Invoice{
		PaymentRequest: strings.ToLower(pr),
		Verify:         invoiceResp.Verify,
		Decoded:        decoded,
	}, nil
}

// invoiceParams checks req against meta and builds the callback query.
func invoiceParams(meta *PayMetadata, req InvoiceRequest) (url.Values,
	error) {

	// Bound the amount in satoshi first, converting an arbitrary amount to
	// msat can overflow.
	if req.Amount <= 0 || req.Amount > meta.MaxSendable.ToSatoshis() {
		return nil, fmt.Errorf("%w: %v not within [%v, %v]",
			ErrAmountOutOfRange, req.Amount, meta.MinSendable,
			meta.MaxSendable)
	}

	amount := lnwire.NewMSatFromSatoshis(req.Amount)
	if amount < meta.MinSendable {
		return nil, fmt.Errorf("%w: %v not within [%v, %v]",
			ErrAmountOutOfRange, amount, meta.MinSendable,
			meta.MaxSendable)
	}

	if req.Comment != "" && meta.CommentAllowed > 0 &&
		len([]rune(req.Comment)) > meta.CommentAllowed {

		return nil, fmt.Errorf("%w: the comment length must be %d "+
			"characters or fewer", ErrCommentTooLong,
			meta.CommentAllowed)
	}

	// Callback URLs may carry their own query parameters (e.g. an id)
	// which must survive.
	params := meta.Callback.Query()
	params.Set("amount", strconv.FormatUint(uint64(amount), 10))

	if req.Comment != "" {
		params.Set("comment", req.Comment)
	}

	if req.PayerData != nil {
		payerData, err := json.Marshal(req.PayerData)
		if err != nil {
			return nil, fmt.Errorf("encode payer data: %w", err)
		}
		params.Set("payerdata", string(payerData))
	}

	return params, nil
}
