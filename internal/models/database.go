package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a wallet holder in the system
type User struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Admin     bool      `db:"admin"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// AccountBalance represents current balance state for one (owner, currency) pair
type AccountBalance struct {
	Id                string          `db:"id"`
	OwnerId           string          `db:"owner_id"`
	Currency          string          `db:"currency"`
	Balance           decimal.Decimal `db:"balance"`
	LastTransactionId string          `db:"last_transaction_id"`
	Version           int64           `db:"version"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// Transaction represents an immutable balance-affecting event.
// A single logical transfer produces one row per affected account,
// filed under UserId and linked by matching SenderId/RecipientId.
type Transaction struct {
	Id          string          `db:"id"`
	Type        string          `db:"type"`
	Status      string          `db:"status"`
	Amount      decimal.Decimal `db:"amount"`
	Currency    string          `db:"currency"`
	IsCrypto    bool            `db:"is_crypto"`
	SenderId    string          `db:"sender_id"`
	RecipientId string          `db:"recipient_id"`
	UserId      string          `db:"user_id"`
	Description string          `db:"description"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// Transaction type labels
const (
	TxTypeSend            = "send"
	TxTypeReceive         = "receive"
	TxTypeConvert         = "convert"
	TxTypeAdminDeposit    = "admin_deposit"
	TxTypeAdminWithdrawal = "admin_withdrawal"
	TxTypeCardFund        = "card_fund"
	TxTypeCardWithdraw    = "card_withdraw"
	TxTypeCardTransfer    = "card_transfer"
)

// Transaction statuses. The engine only writes completed rows; pending and
// failed exist for imports and future two-phase flows.
const (
	TxStatusCompleted = "completed"
	TxStatusPending   = "pending"
	TxStatusFailed    = "failed"
)

// VirtualCard represents a virtual payment card. The card is an account
// holder: its balance lives in the ledger keyed by the card id, never on
// this row.
type VirtualCard struct {
	Id         string    `db:"id"`
	UserId     string    `db:"user_id"`
	Name       string    `db:"name"`
	CardNumber string    `db:"card_number"`
	Cvv        string    `db:"cvv"`
	ExpiryDate time.Time `db:"expiry_date"`
	Currency   string    `db:"currency"`
	Active     bool      `db:"active"`
	CreatedAt  time.Time `db:"created_at"`
}
