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

package wallet

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Kind tags a transfer request. The kinds differ only in which side is
// optional, which record types are written and who may invoke them.
type Kind string

const (
	KindUserPayment     Kind = "user_payment"
	KindAdminDeposit    Kind = "admin_deposit"
	KindAdminWithdrawal Kind = "admin_withdrawal"
	KindCardFund        Kind = "card_fund"
	KindCardWithdraw    Kind = "card_withdraw"
	KindCardToCard      Kind = "card_to_card"
)

// Caller is the authenticated identity behind a request. The engine trusts
// it; authentication happens upstream.
type Caller struct {
	Id    string
	Admin bool
}

// Request describes one logical transfer. From is nil for admin deposits
// (funds originate outside the ledger), To is nil for admin withdrawals.
type Request struct {
	Kind        Kind
	Caller      Caller
	From        *store.AccountRef
	To          *store.AccountRef
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// Result reports the outcome of a successful transfer
type Result struct {
	TransactionId       string
	NewSenderBalance    *decimal.Decimal
	NewRecipientBalance *decimal.Decimal
}

type kindSpec struct {
	debitType  string
	creditType string
	needsFrom  bool
	needsTo    bool
	adminOnly  bool
	debitDesc  string
	creditDesc string
}

var kindSpecs = map[Kind]kindSpec{
	KindUserPayment:     {models.TxTypeSend, models.TxTypeReceive, true, true, false, "Payment sent", "Payment received"},
	KindAdminDeposit:    {"", models.TxTypeAdminDeposit, false, true, true, "", "Admin deposit"},
	KindAdminWithdrawal: {models.TxTypeAdminWithdrawal, "", true, false, true, "Admin withdrawal", ""},
	KindCardFund:        {models.TxTypeCardFund, models.TxTypeCardFund, true, true, false, "Card funding", "Card funding"},
	KindCardWithdraw:    {models.TxTypeCardWithdraw, models.TxTypeCardWithdraw, true, true, false, "Card withdrawal", "Card withdrawal"},
	KindCardToCard:      {models.TxTypeCardTransfer, models.TxTypeCardTransfer, true, true, false, "Card transfer", "Card transfer"},
}

// EngineParams collects the collaborators of the transfer engine
type EngineParams struct {
	Ledger     store.Ledger
	Log        store.TransactionLog
	Directory  store.Directory
	Currencies *common.CurrencyRegistry
	Rates      RateSource
	Notifier   Notifier
	MaxRetries int
}

// Engine orchestrates transfers as all-or-nothing operations: validate,
// debit, credit, append audit records, and compensate any applied side
// when a later step fails.
type Engine struct {
	ledger     store.Ledger
	log        store.TransactionLog
	directory  store.Directory
	currencies *common.CurrencyRegistry
	rates      RateSource
	notifier   Notifier
	maxRetries int
}

func NewEngine(params EngineParams) (*Engine, error) {
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger store is required")
	}
	if params.Log == nil {
		return nil, fmt.Errorf("transaction log is required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("directory is required")
	}
	if params.Currencies == nil {
		return nil, fmt.Errorf("currency registry is required")
	}
	if params.Notifier == nil {
		params.Notifier = NopNotifier{}
	}
	if params.MaxRetries <= 0 {
		params.MaxRetries = 5
	}

	return &Engine{
		ledger:     params.Ledger,
		log:        params.Log,
		directory:  params.Directory,
		currencies: params.Currencies,
		rates:      params.Rates,
		notifier:   params.Notifier,
		maxRetries: params.MaxRetries,
	}, nil
}

// SendPayment moves funds from the caller to another user. The recipient is
// resolved through the directory before any validation.
func (e *Engine) SendPayment(ctx context.Context, caller Caller, recipientId string, amount decimal.Decimal, currency, description string) (*Result, error) {
	if recipientId == "" {
		return nil, fmt.Errorf("%w: empty recipient", ErrInvalidRecipient)
	}
	if _, err := e.directory.GetUserById(ctx, recipientId); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecipientNotFound, recipientId)
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	return e.Transfer(ctx, Request{
		Kind:        KindUserPayment,
		Caller:      caller,
		From:        &store.AccountRef{OwnerId: caller.Id, Currency: currency},
		To:          &store.AccountRef{OwnerId: recipientId, Currency: currency},
		Amount:      amount,
		Currency:    currency,
		Description: description,
	})
}

// AdminDeposit credits a user from outside the ledger
func (e *Engine) AdminDeposit(ctx context.Context, caller Caller, userId string, amount decimal.Decimal, currency, description string) (*Result, error) {
	if _, err := e.directory.GetUserById(ctx, userId); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecipientNotFound, userId)
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return e.Transfer(ctx, Request{
		Kind:        KindAdminDeposit,
		Caller:      caller,
		To:          &store.AccountRef{OwnerId: userId, Currency: currency},
		Amount:      amount,
		Currency:    currency,
		Description: description,
	})
}

// AdminWithdrawal debits a user; the funds leave the ledger
func (e *Engine) AdminWithdrawal(ctx context.Context, caller Caller, userId string, amount decimal.Decimal, currency, description string) (*Result, error) {
	if _, err := e.directory.GetUserById(ctx, userId); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecipientNotFound, userId)
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return e.Transfer(ctx, Request{
		Kind:        KindAdminWithdrawal,
		Caller:      caller,
		From:        &store.AccountRef{OwnerId: userId, Currency: currency},
		Amount:      amount,
		Currency:    currency,
		Description: description,
	})
}

// Transfer runs the uniform transfer pipeline for any kind
func (e *Engine) Transfer(ctx context.Context, req Request) (*Result, error) {
	spec, ok := kindSpecs[req.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}

	if req.Caller.Id == "" {
		return nil, fmt.Errorf("%w: missing caller identity", ErrUnauthorized)
	}
	if spec.adminOnly && !req.Caller.Admin {
		return nil, fmt.Errorf("%w: %s requires admin rights", ErrUnauthorized, req.Kind)
	}
	if req.Kind == KindUserPayment && req.From != nil && req.From.OwnerId != req.Caller.Id {
		return nil, fmt.Errorf("%w: caller may only send own funds", ErrUnauthorized)
	}

	if !e.currencies.IsSupported(req.Currency) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, req.Currency)
	}
	amount := e.currencies.Quantize(req.Currency, req.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, req.Amount.String())
	}

	if spec.needsFrom && req.From == nil {
		return nil, fmt.Errorf("%s requires a source account", req.Kind)
	}
	if spec.needsTo && req.To == nil {
		return nil, fmt.Errorf("%s requires a destination account", req.Kind)
	}
	if req.From != nil && req.To != nil && req.From.OwnerId == req.To.OwnerId && req.From.Currency == req.To.Currency {
		return nil, fmt.Errorf("%w: self-transfer", ErrInvalidRecipient)
	}

	// Advisory pre-check: detected here means no mutation at all. The
	// adjust below re-checks atomically under the account's version lock.
	if req.From != nil {
		balance, err := e.ledger.GetBalance(ctx, *req.From)
		if err != nil {
			return nil, fmt.Errorf("failed to read sender balance: %w", err)
		}
		if balance.LessThan(amount) {
			return nil, fmt.Errorf("%w: have %s, need %s %s",
				store.ErrInsufficientFunds, balance.String(), amount.String(), req.Currency)
		}
	}

	senderId := req.Caller.Id
	if req.From != nil {
		senderId = req.From.OwnerId
	}
	recipientId := req.Caller.Id
	if req.To != nil {
		recipientId = req.To.OwnerId
	}

	debitTxId := uuid.New().String()
	creditTxId := uuid.New().String()

	var result Result

	// Step 3: debit
	if req.From != nil {
		newBalance, err := e.adjustWithRetry(ctx, *req.From, amount.Neg(), debitTxId)
		if err != nil {
			return nil, err
		}
		result.NewSenderBalance = &newBalance
	}

	// Step 4: credit, compensating the debit on failure
	if req.To != nil {
		newBalance, err := e.adjustWithRetry(ctx, *req.To, amount, creditTxId)
		if err != nil {
			if req.From != nil {
				e.compensate(ctx, *req.From, amount, debitTxId)
			}
			return nil, err
		}
		result.NewRecipientBalance = &newBalance
	}

	// Step 5: append the audit records. Two-sided transfers write both rows
	// atomically, so a failed recording never leaves an orphaned side behind.
	var debitRecord, creditRecord models.Transaction
	if req.From != nil {
		debitRecord = models.Transaction{
			Id:          debitTxId,
			Type:        spec.debitType,
			Amount:      amount,
			Currency:    req.Currency,
			IsCrypto:    e.currencies.IsCrypto(req.Currency),
			SenderId:    senderId,
			RecipientId: recipientId,
			UserId:      req.From.OwnerId,
			Description: defaultDescription(req.Description, spec.debitDesc),
		}
	}
	if req.To != nil {
		creditRecord = models.Transaction{
			Id:          creditTxId,
			Type:        spec.creditType,
			Amount:      amount,
			Currency:    req.Currency,
			IsCrypto:    e.currencies.IsCrypto(req.Currency),
			SenderId:    senderId,
			RecipientId: recipientId,
			UserId:      req.To.OwnerId,
			Description: defaultDescription(req.Description, spec.creditDesc),
		}
	}

	var recorded []models.Transaction
	switch {
	case req.From != nil && req.To != nil:
		debitRow, creditRow, err := e.log.AppendPair(ctx, debitRecord, creditRecord)
		if err != nil {
			e.compensateTransfer(ctx, req, amount, debitTxId, creditTxId)
			return nil, fmt.Errorf("failed to record transfer: %w", err)
		}
		recorded = append(recorded, *debitRow, *creditRow)
		result.TransactionId = debitRow.Id
	case req.From != nil:
		row, err := e.log.Append(ctx, debitRecord)
		if err != nil {
			e.compensateTransfer(ctx, req, amount, debitTxId, creditTxId)
			return nil, fmt.Errorf("failed to record debit: %w", err)
		}
		recorded = append(recorded, *row)
		result.TransactionId = row.Id
	case req.To != nil:
		row, err := e.log.Append(ctx, creditRecord)
		if err != nil {
			e.compensateTransfer(ctx, req, amount, debitTxId, creditTxId)
			return nil, fmt.Errorf("failed to record credit: %w", err)
		}
		recorded = append(recorded, *row)
		result.TransactionId = row.Id
	}

	e.notify(ctx, recorded)

	zap.L().Info("Transfer completed",
		zap.String("kind", string(req.Kind)),
		zap.String("transaction_id", result.TransactionId),
		zap.String("sender_id", senderId),
		zap.String("recipient_id", recipientId),
		zap.String("currency", req.Currency),
		zap.String("amount", amount.String()))

	return &result, nil
}

// Convert exchanges between two of the caller's own currency balances,
// logged as a single convert record with no counterparty.
func (e *Engine) Convert(ctx context.Context, caller Caller, amount decimal.Decimal, fromCurrency, toCurrency string) (*Result, error) {
	if caller.Id == "" {
		return nil, fmt.Errorf("%w: missing caller identity", ErrUnauthorized)
	}
	if e.rates == nil {
		return nil, fmt.Errorf("no exchange rate source configured")
	}
	if !e.currencies.IsSupported(fromCurrency) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, fromCurrency)
	}
	if !e.currencies.IsSupported(toCurrency) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, toCurrency)
	}
	if fromCurrency == toCurrency {
		return nil, fmt.Errorf("%w: cannot convert %s to itself", ErrCurrencyMismatch, fromCurrency)
	}

	debitAmount := e.currencies.Quantize(fromCurrency, amount)
	if !debitAmount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}

	rate, err := e.rates.Rate(ctx, fromCurrency, toCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}
	if !rate.IsPositive() {
		return nil, fmt.Errorf("%w: %s->%s rate %s", ErrInvalidRate, fromCurrency, toCurrency, rate.String())
	}
	creditAmount := e.currencies.Quantize(toCurrency, debitAmount.Mul(rate))

	fromAccount := store.AccountRef{OwnerId: caller.Id, Currency: fromCurrency}
	toAccount := store.AccountRef{OwnerId: caller.Id, Currency: toCurrency}

	balance, err := e.ledger.GetBalance(ctx, fromAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	if balance.LessThan(debitAmount) {
		return nil, fmt.Errorf("%w: have %s, need %s %s",
			store.ErrInsufficientFunds, balance.String(), debitAmount.String(), fromCurrency)
	}

	txId := uuid.New().String()

	newFromBalance, err := e.adjustWithRetry(ctx, fromAccount, debitAmount.Neg(), txId)
	if err != nil {
		return nil, err
	}

	newToBalance, err := e.adjustWithRetry(ctx, toAccount, creditAmount, txId)
	if err != nil {
		e.compensate(ctx, fromAccount, debitAmount, txId)
		return nil, err
	}

	row, err := e.log.Append(ctx, models.Transaction{
		Id:       txId,
		Type:     models.TxTypeConvert,
		Amount:   debitAmount,
		Currency: fromCurrency,
		IsCrypto: e.currencies.IsCrypto(fromCurrency),
		UserId:   caller.Id,
		Description: fmt.Sprintf("Converted %s %s to %s %s",
			debitAmount.String(), fromCurrency, creditAmount.String(), toCurrency),
	})
	if err != nil {
		e.compensate(ctx, toAccount, creditAmount.Neg(), txId)
		e.compensate(ctx, fromAccount, debitAmount, txId)
		return nil, fmt.Errorf("failed to record conversion: %w", err)
	}

	e.notify(ctx, []models.Transaction{*row})

	zap.L().Info("Conversion completed",
		zap.String("transaction_id", txId),
		zap.String("user_id", caller.Id),
		zap.String("from", fromCurrency),
		zap.String("to", toCurrency),
		zap.String("debited", debitAmount.String()),
		zap.String("credited", creditAmount.String()))

	return &Result{
		TransactionId:       txId,
		NewSenderBalance:    &newFromBalance,
		NewRecipientBalance: &newToBalance,
	}, nil
}

// adjustWithRetry retries lost version races up to maxRetries before
// giving up with ErrBusy.
func (e *Engine) adjustWithRetry(ctx context.Context, account store.AccountRef, delta decimal.Decimal, txId string) (decimal.Decimal, error) {
	var lastErr error
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		newBalance, err := e.ledger.Adjust(ctx, account, delta, txId)
		if err == nil {
			return newBalance, nil
		}
		if !errors.Is(err, store.ErrConcurrentModification) {
			return decimal.Zero, err
		}
		lastErr = err
	}
	return decimal.Zero, fmt.Errorf("%w: %s/%s after %d attempts (%v)",
		ErrBusy, account.OwnerId, account.Currency, e.maxRetries, lastErr)
}

// compensate reverses one applied adjustment. Failure here means manual
// reconciliation; it is logged loudly and not surfaced further.
func (e *Engine) compensate(ctx context.Context, account store.AccountRef, amount decimal.Decimal, originalTxId string) {
	if _, err := e.adjustWithRetry(ctx, account, amount, originalTxId+"-reversal"); err != nil {
		zap.L().Error("Compensation failed, ledger requires reconciliation",
			zap.String("owner_id", account.OwnerId),
			zap.String("currency", account.Currency),
			zap.String("amount", amount.String()),
			zap.String("original_tx", originalTxId),
			zap.Error(err))
	}
}

// compensateTransfer reverses both sides of a transfer after a failure
// past the balance mutations.
func (e *Engine) compensateTransfer(ctx context.Context, req Request, amount decimal.Decimal, debitTxId, creditTxId string) {
	if req.To != nil {
		e.compensate(ctx, *req.To, amount.Neg(), creditTxId)
	}
	if req.From != nil {
		e.compensate(ctx, *req.From, amount, debitTxId)
	}
}

func (e *Engine) notify(ctx context.Context, records []models.Transaction) {
	if len(records) == 0 {
		return
	}
	if err := e.notifier.TransactionsRecorded(ctx, records); err != nil {
		zap.L().Warn("Notification delivery failed", zap.Error(err))
	}
}

func defaultDescription(description, fallback string) string {
	if description != "" {
		return description
	}
	return fallback
}
