package wallet

import (
	"context"

	"wallet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Notifier is told about every appended transaction record so affected
// account owners can be signalled (realtime UI refresh, webhooks, ...).
// Delivery is at-most-once: the engine logs failures and never retries
// or surfaces them to the caller.
type Notifier interface {
	TransactionsRecorded(ctx context.Context, records []models.Transaction) error
}

// NopNotifier discards all notifications
type NopNotifier struct{}

func (NopNotifier) TransactionsRecorded(context.Context, []models.Transaction) error {
	return nil
}

// RateSource supplies exchange rates for conversions. Treated as a pure
// function at call time; the engine implies no caching contract.
type RateSource interface {
	Rate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
}
