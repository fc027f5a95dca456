/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package store

import (
	"context"
	"errors"

	"wallet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInvalidInitialBalance  = errors.New("invalid initial balance")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrAccountExists          = errors.New("account already exists")
	ErrUserNotFound           = errors.New("user not found")
	ErrCardNotFound           = errors.New("card not found")
)

// AccountRef identifies one ledger account. The owner is either a user id
// or a virtual-card id.
type AccountRef struct {
	OwnerId  string
	Currency string
}

// Ledger is the balance-of-record store. An account with no row implicitly
// has balance zero and is materialized on first credit.
type Ledger interface {
	// GetBalance returns the current balance, decimal.Zero if absent.
	GetBalance(ctx context.Context, account AccountRef) (decimal.Decimal, error)

	// Adjust applies delta atomically and returns the new balance. A delta
	// that would take the balance negative fails with ErrInsufficientFunds
	// and leaves the balance unchanged. Concurrent adjustments on the same
	// account that lose the version race fail with ErrConcurrentModification.
	Adjust(ctx context.Context, account AccountRef, delta decimal.Decimal, lastTransactionId string) (decimal.Decimal, error)

	// Create materializes an account with an explicit opening balance.
	// Negative opening balances fail with ErrInvalidInitialBalance.
	Create(ctx context.Context, account AccountRef, initialBalance decimal.Decimal) error

	// GetAllBalances returns all non-zero balances for an owner.
	GetAllBalances(ctx context.Context, ownerId string) ([]models.AccountBalance, error)
}

// TransactionLog is the append-only audit trail. Records are immutable once
// appended; no update or delete operation exists.
type TransactionLog interface {
	Append(ctx context.Context, record models.Transaction) (*models.Transaction, error)

	// AppendPair writes the debit and credit records of one transfer
	// atomically. Either both become durable or neither does; a reader
	// never observes one side without the other.
	AppendPair(ctx context.Context, debit, credit models.Transaction) (*models.Transaction, *models.Transaction, error)

	// Query returns records where ownerId is the filer, sender or recipient,
	// newest first.
	Query(ctx context.Context, ownerId string, limit, offset int) ([]models.Transaction, error)
}

// Directory resolves user identities and recipient identifiers.
type Directory interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, userId, name, email string, admin bool) (*models.User, error)
}

// CardStore persists virtual card records. Card balances live in the Ledger
// keyed by card id, never on the card row.
type CardStore interface {
	InsertCard(ctx context.Context, card models.VirtualCard) error
	GetCardById(ctx context.Context, cardId string) (*models.VirtualCard, error)
	GetCardByNumber(ctx context.Context, cardNumber string) (*models.VirtualCard, error)
	GetUserCards(ctx context.Context, userId string) ([]models.VirtualCard, error)
	DeactivateCard(ctx context.Context, cardId string) error
}
