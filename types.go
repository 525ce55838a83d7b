package lnurlpay

import (
	"encoding/json"
)

type PayResponse struct {
	// Callback is the URL from LN SERVICE which will accept the pay request
	// parameters
	Callback string `json:"callback"`

	// MaxSendable is the max amount LN SERVICE is willing to receive.
	// Services send it either as a number or as a string.
	MaxSendable json.Number `json:"maxSendable"`

	// MinSendable is the min amount LN SERVICE is willing to receive, can
	// not be less than 1 or more than `maxSendable`
	MinSendable json.Number `json:"minSendable"`

	// Metadata json which must be presented as raw string here, this is
	// required to pass signature verification at a later step.
	Metadata string `json:"metadata"`

	// CommentAllowed is the max comment length, 0 means comments are not
	// supported.
	CommentAllowed int `json:"commentAllowed,omitempty"`

	AllowsNostr bool   `json:"allowsNostr,omitempty"`
	NostrPubkey string `json:"nostrPubkey,omitempty"`

	// PayerData describes the payer identity fields the service accepts.
	PayerData map[string]json.RawMessage `json:"payerData,omitempty"`

	// Type of LNURL
	Tag Type `json:"tag"`
}

type InvoiceResponse struct {
	// PayRequest is a bech32-serialized lightning invoice.
	PayRequest string `json:"pr"`

	// Verify is an optional LUD-21 URL to poll for settlement.
	Verify string `json:"verify,omitempty"`

	// Routes an empty array.
	Routes []string `json:"routes"`

	Error
}

type KeysendResponse struct {
	Tag        Type         `json:"tag"`
	Status     string       `json:"status"`
	Pubkey     *string      `json:"pubkey"`
	CustomData []CustomData `json:"customData"`
}

type CustomData struct {
	CustomKey   string `json:"customKey"`
	CustomValue string `json:"customValue"`
}

type DecodeResponse struct {
	Amount          int64  `json:"amount"`
	Description     string `json:"description"`
	DescriptionHash string `json:"description_hash,omitempty"`
	PaymentHash     string `json:"payment_hash"`
}

type Type string

const (
	TypePayRequest Type = "payRequest"
	TypeKeysend    Type = "keysend"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

type Error struct {
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}
