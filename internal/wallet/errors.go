package wallet

import "errors"

// Sentinel errors surfaced by the transfer engine. Storage-level failures
// (insufficient funds, concurrent modification) come from the store package
// and are re-surfaced unwrapped so callers can use errors.Is on either.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidRecipient    = errors.New("invalid recipient")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrCurrencyMismatch    = errors.New("currency mismatch")
	ErrInvalidRate         = errors.New("invalid exchange rate")
	ErrUnauthorized        = errors.New("caller not authorized")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrBusy                = errors.New("account busy")
	ErrUnknownKind         = errors.New("unknown transfer kind")
)
