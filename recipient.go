package lnurlpay

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Kind tells which form a recipient was given in.
type Kind uint8

const (
	KindServicePointer Kind = iota + 1
	KindLightningAddress
)

func (k Kind) String() string {
	switch k {
	case KindServicePointer:
		return "ServicePointer"
	case KindLightningAddress:
		return "LightningAddress"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

const (
	lightningURIPrefix = "lightning:"
	lud17Scheme        = "lnurlp://"
)

var lnAddressRegex = regexp.MustCompile(
	`(?i)^([\w+\-.]+)@([a-z\d_\-]+(?:\.[a-z\d_\-]+)*\.[a-z]+)$`,
)

// Recipient is a classified payment target.
type Recipient struct {
	// Raw is the normalized input: without a lightning: prefix and, for
	// lightning addresses, lower-cased.
	Raw  string
	Kind Kind

	// Username and Domain are only set for lightning addresses.
	Username string
	Domain   string
}

func (r Recipient) String() string {
	return r.Raw
}

// ValidLightningAddress reports whether s has the user@domain form.
func ValidLightningAddress(s string) bool {
	return lnAddressRegex.MatchString(s)
}

// Classify decides whether raw is a service pointer or a lightning address.
// Service pointers win when both could apply.
func Classify(raw string, codec PointerCodec) (Recipient, error) {
	if codec == nil {
		codec = Bech32Codec{}
	}

	s := strings.TrimSpace(raw)
	if len(s) >= len(lightningURIPrefix) &&
		strings.EqualFold(s[:len(lightningURIPrefix)], lightningURIPrefix) {

		s = s[len(lightningURIPrefix):]
	}

	switch {
	case codec.Valid(s):
		return Recipient{Raw: s, Kind: KindServicePointer}, nil

	case validLUD17(s):
		return Recipient{Raw: s, Kind: KindServicePointer}, nil
	}

	address := strings.ToLower(s)
	match := lnAddressRegex.FindStringSubmatch(address)
	if match == nil {
		return Recipient{}, fmt.Errorf("%w: %q", ErrUnrecognizedRecipient,
			raw)
	}

	return Recipient{
		Raw:      address,
		Kind:     KindLightningAddress,
		Username: match[1],
		Domain:   match[2],
	}, nil
}

// validLUD17 reports whether s is an lnurlp:// URL with a host.
func validLUD17(s string) bool {
	if !strings.HasPrefix(strings.ToLower(s), lud17Scheme) {
		return false
	}

	return isWebURL("https://" + s[len(lud17Scheme):])
}

// PayableRecipient is anything an invoice can be requested from.
type PayableRecipient interface {
	fmt.Stringer

	Kind() Kind
	Recipient() Recipient

	FetchMetadata(ctx context.Context) (*PayMetadata, error)
	TryFetchMetadata(ctx context.Context) *PayMetadata

	// RequestInvoice has no lenient form: a failed invoice request must
	// always reach the caller.
	RequestInvoice(ctx context.Context, req InvoiceRequest) (*Invoice,
		error)
}

// Build classifies raw and returns the matching recipient.
func Build(raw string, opts ...Option) (PayableRecipient, error) {
	cfg := newConfig(opts)

	r, err := Classify(raw, cfg.codec)
	if err != nil {
		return nil, err
	}

	switch r.Kind {
	case KindServicePointer:
		return newServicePointerRecipient(r, cfg)

	default:
		return newLightningAddressRecipient(r, cfg), nil
	}
}

// ServicePointerRecipient is a recipient given as an LNURL.
type ServicePointerRecipient struct {
	*PayServiceClient

	recipient Recipient
}

var _ PayableRecipient = (*ServicePointerRecipient)(nil)

func newServicePointerRecipient(r Recipient,
	cfg *config) (*ServicePointerRecipient, error) {

	var (
		discoveryURL string
		err          error
	)
	if strings.HasPrefix(strings.ToLower(r.Raw), lud17Scheme) {
		discoveryURL = cfg.scheme + "://" + r.Raw[len(lud17Scheme):]
	} else {
		discoveryURL, err = cfg.codec.Decode(r.Raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedRecipient,
				err)
		}
	}

	return &ServicePointerRecipient{
		PayServiceClient: newPayServiceClient(discoveryURL, cfg),
		recipient:        r,
	}, nil
}

func (s *ServicePointerRecipient) String() string {
	return s.recipient.String()
}

func (s *ServicePointerRecipient) Kind() Kind {
	return KindServicePointer
}

func (s *ServicePointerRecipient) Recipient() Recipient {
	return s.recipient
}

// LightningAddressRecipient is a recipient given as user@domain. Besides
// LNURL-pay it may publish a keysend destination.
type LightningAddressRecipient struct {
	*PayServiceClient

	recipient Recipient
	keysend   *KeysendResolver
}

var _ PayableRecipient = (*LightningAddressRecipient)(nil)

func newLightningAddressRecipient(r Recipient,
	cfg *config) *LightningAddressRecipient {

	return &LightningAddressRecipient{
		PayServiceClient: newPayServiceClient(
			wellKnownURL(cfg.scheme, r.Domain, "lnurlp", r.Username),
			cfg,
		),
		recipient: r,
		keysend: newKeysendResolver(
			wellKnownURL(cfg.scheme, r.Domain, "keysend", r.Username),
			cfg,
		),
	}
}

func (l *LightningAddressRecipient) String() string {
	return l.recipient.String()
}

func (l *LightningAddressRecipient) Kind() Kind {
	return KindLightningAddress
}

func (l *LightningAddressRecipient) Recipient() Recipient {
	return l.recipient
}

func (l *LightningAddressRecipient) Username() string {
	return l.recipient.Username
}

func (l *LightningAddressRecipient) Domain() string {
	return l.recipient.Domain
}

// Keysend returns the address's keysend destination.
func (l *LightningAddressRecipient) Keysend(
	ctx context.Context) (*KeysendTarget, error) {

	return l.keysend.Fetch(ctx)
}

func (l *LightningAddressRecipient) TryKeysend(
	ctx context.Context) *KeysendTarget {

	return l.keysend.TryFetch(ctx)
}

// AddressInfo is everything a lightning address publishes.
type AddressInfo struct {
	Metadata *PayMetadata
	Keysend  *KeysendTarget
}

// Fetch looks up both the pay metadata and the keysend destination,
// stopping at the first error.
func (l *LightningAddressRecipient) Fetch(ctx context.Context) (*AddressInfo,
	error) {

	meta, err := l.FetchMetadata(ctx)
	if err != nil {
		return nil, err
	}

	keysend, err := l.Keysend(ctx)
	if err != nil {
		return nil, err
	}

	return &AddressInfo{Metadata: meta, Keysend: keysend}, nil
}

// TryFetch looks up both documents, leaving either nil if it fails. It
// returns nil when neither could be fetched.
func (l *LightningAddressRecipient) TryFetch(ctx context.Context) *AddressInfo {
	info := &AddressInfo{
		Metadata: l.TryFetchMetadata(ctx),
		Keysend:  l.TryKeysend(ctx),
	}
	if info.Metadata == nil && info.Keysend == nil {
		return nil
	}

	return info
}
