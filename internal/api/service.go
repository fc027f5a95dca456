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

package api

import (
	"context"
	"fmt"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WalletService is the outward read facade: balances zero-filled across
// every supported currency, and paginated history.
type WalletService struct {
	ledger     store.Ledger
	log        store.TransactionLog
	directory  store.Directory
	currencies *common.CurrencyRegistry
}

func NewWalletService(ledger store.Ledger, log store.TransactionLog, directory store.Directory, currencies *common.CurrencyRegistry) *WalletService {
	return &WalletService{
		ledger:     ledger,
		log:        log,
		directory:  directory,
		currencies: currencies,
	}
}

func (s *WalletService) HealthCheck(ctx context.Context) error {
	if _, err := s.directory.GetUsers(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// GetBalances returns currency -> balance for every supported currency,
// zero-filled for currencies the owner holds no record in.
func (s *WalletService) GetBalances(ctx context.Context, ownerId string) (map[string]decimal.Decimal, error) {
	if ownerId == "" {
		return nil, fmt.Errorf("owner_id is required")
	}

	balances := make(map[string]decimal.Decimal, len(s.currencies.Codes()))
	for _, code := range s.currencies.Codes() {
		balances[code] = decimal.Zero
	}

	held, err := s.ledger.GetAllBalances(ctx, ownerId)
	if err != nil {
		zap.L().Error("Failed to get balances", zap.String("owner_id", ownerId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve balances")
	}
	for _, b := range held {
		balances[b.Currency] = b.Balance
	}

	return balances, nil
}

// ListTransactions returns paginated history for an owner, newest first
func (s *WalletService) ListTransactions(ctx context.Context, ownerId string, limit, offset int) ([]models.TransactionRecord, error) {
	if ownerId == "" {
		return nil, fmt.Errorf("owner_id is required")
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := s.log.Query(ctx, ownerId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get transaction history",
			zap.String("owner_id", ownerId),
			zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve transaction history")
	}

	result := make([]models.TransactionRecord, len(transactions))
	for i, tx := range transactions {
		result[i] = models.TransactionRecord{
			Id:          tx.Id,
			Type:        tx.Type,
			Status:      tx.Status,
			Amount:      tx.Amount,
			Currency:    tx.Currency,
			IsCrypto:    tx.IsCrypto,
			SenderId:    tx.SenderId,
			RecipientId: tx.RecipientId,
			Description: tx.Description,
			CreatedAt:   tx.CreatedAt,
		}
	}

	return result, nil
}
