package lnurlpay

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedRecipient  = errors.New("not a valid LNURL or lightning address")
	ErrFetchFailed            = errors.New("connection problem or invalid LNURL / lightning address")
	ErrInvalidServiceTag      = errors.New("LNURL service doesn't have pay request tag")
	ErrInvalidCallback        = errors.New("invalid callback url")
	ErrInvalidAmountRange     = errors.New("invalid pay parameters")
	ErrInvalidMetadata        = errors.New("invalid pay metadata")
	ErrAmountOutOfRange       = errors.New("invalid amount")
	ErrCommentTooLong         = errors.New("comment too long")
	ErrRequestFailed          = errors.New("failed to fetch invoice information")
	ErrServiceReported        = errors.New("pay service reported an error")
	ErrEmptyInvoice           = errors.New("invalid pay service invoice")
	ErrAmountMismatch         = errors.New("payment request: invalid amount")
	ErrInvalidKeysendResponse = errors.New("invalid keysend parameters")
	ErrMissingPubkey          = errors.New("pubkey does not exist")
	ErrMissingCustomData      = errors.New("keysend response has no custom data")
	ErrDecodeFailed           = errors.New("failed to fetch bolt11 information")
)

// ServiceError carries the reason a pay service gave in a
// {"status":"ERROR"} response.
type ServiceError struct {
	Reason string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%v: %s", ErrServiceReported, e.Reason)
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrServiceReported
}
