package lnurlpay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// KeysendTarget is where a keysend payment to a lightning address goes.
type KeysendTarget struct {
	Destination string
	CustomKey   string
	CustomValue string
}

// KeysendResolver looks up the keysend destination a lightning address
// publishes. Like PayServiceClient it fetches at most once.
type KeysendResolver struct {
	keysendURL string
	cfg        *config
	log        *slog.Logger

	mu      sync.Mutex
	fetched bool
	target  *KeysendTarget
	err     error
}

// NewKeysendResolver creates a resolver for username@domain.
func NewKeysendResolver(username, domain string,
	opts ...Option) *KeysendResolver {

	cfg := newConfig(opts)

	return newKeysendResolver(
		wellKnownURL(cfg.scheme, domain, "keysend", username), cfg,
	)
}

func newKeysendResolver(keysendURL string, cfg *config) *KeysendResolver {
	return &KeysendResolver{
		keysendURL: keysendURL,
		cfg:        cfg,
		log:        cfg.logger.With("keysend", keysendURL),
	}
}

func (k *KeysendResolver) URL() string {
	return k.keysendURL
}

// Fetch returns the keysend target, performing the lookup on first use.
func (k *KeysendResolver) Fetch(ctx context.Context) (*KeysendTarget, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.fetched {
		return k.target, k.err
	}

	k.target, k.err = k.fetch(ctx)
	k.fetched = true

	if k.err != nil {
		k.log.DebugContext(ctx, "keysend fetch failed", "error", k.err)
	}

	return k.target, k.err
}

// TryFetch is Fetch with any error turned into nil.
func (k *KeysendResolver) TryFetch(ctx context.Context) *KeysendTarget {
	return Lenient(k.Fetch(ctx))
}

func (k *KeysendResolver) fetch(ctx context.Context) (*KeysendTarget, error) {
	var resp KeysendResponse
	if err := getJSON(ctx, k.cfg.fetchClient, k.keysendURL, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	return ParseKeysendResponse(&resp)
}

// ParseKeysendResponse validates a keysend response. Only the first custom
// data record is used.
func ParseKeysendResponse(resp *KeysendResponse) (*KeysendTarget, error) {
	if resp.Tag != TypeKeysend || resp.Status != StatusOK {
		return nil, fmt.Errorf("%w: tag %q, status %q",
			ErrInvalidKeysendResponse, resp.Tag, resp.Status)
	}

	if resp.Pubkey == nil {
		return nil, ErrMissingPubkey
	}

	if len(resp.CustomData) == 0 {
		return nil, ErrMissingCustomData
	}

	return &KeysendTarget{
		Destination: *resp.Pubkey,
		CustomKey:   resp.CustomData[0].CustomKey,
		CustomValue: resp.CustomData[0].CustomValue,
	}, nil
}

func wellKnownURL(scheme, domain, kind, username string) string {
	return fmt.Sprintf("%s://%s/.well-known/%s/%s", scheme, domain, kind,
		username)
}
