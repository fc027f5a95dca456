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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SendPaymentSchema is the body of POST /transfers
type SendPaymentSchema struct {
	RecipientId string          `json:"recipient_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Currency    string          `json:"currency" validate:"required"`
	Description string          `json:"description"`
}

// ConvertSchema is the body of POST /convert
type ConvertSchema struct {
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	FromCurrency string          `json:"from_currency" validate:"required"`
	ToCurrency   string          `json:"to_currency" validate:"required"`
}

// AdminAdjustSchema is the body of POST /admin/adjust
type AdminAdjustSchema struct {
	UserId      string          `json:"user_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Currency    string          `json:"currency" validate:"required"`
	Direction   string          `json:"direction" validate:"required,oneof=deposit withdrawal"`
	Description string          `json:"description"`
}

// CreateCardSchema is the body of POST /cards
type CreateCardSchema struct {
	Name     string `json:"name" validate:"required"`
	Currency string `json:"currency" validate:"required"`
}

// FundCardSchema is the body of POST /cards/{id}/fund
type FundCardSchema struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Currency  string          `json:"currency" validate:"required"`
	Direction string          `json:"direction" validate:"required,oneof=account_to_card card_to_account"`
}

// CardTransferSchema is the body of POST /cards/{id}/transfer
type CardTransferSchema struct {
	RecipientCardNumber string          `json:"recipient_card_number" validate:"required"`
	Amount              decimal.Decimal `json:"amount" validate:"required"`
	Description         string          `json:"description"`
}

// TransferResponse is returned for every successful engine invocation
type TransferResponse struct {
	TransactionId       string           `json:"transaction_id"`
	NewSenderBalance    *decimal.Decimal `json:"new_sender_balance,omitempty"`
	NewRecipientBalance *decimal.Decimal `json:"new_recipient_balance,omitempty"`
}

// BalancesResponse maps every supported currency to a balance, zero-filled
type BalancesResponse struct {
	OwnerId  string                     `json:"owner_id"`
	Balances map[string]decimal.Decimal `json:"balances"`
}

// TransactionRecord represents a transaction in an owner's history
type TransactionRecord struct {
	Id          string          `json:"id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	IsCrypto    bool            `json:"is_crypto"`
	SenderId    string          `json:"sender_id,omitempty"`
	RecipientId string          `json:"recipient_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CardResponse is the public view of a virtual card (no CVV)
type CardResponse struct {
	Id         string          `json:"id"`
	Name       string          `json:"name"`
	CardNumber string          `json:"card_number"`
	ExpiryDate time.Time       `json:"expiry_date"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	Active     bool            `json:"active"`
}
