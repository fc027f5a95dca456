package database

import (
	"context"
	"database/sql"
	"fmt"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetBalance returns current balance for an account (O(1) lookup)
func (s *Service) GetBalance(ctx context.Context, account store.AccountRef) (decimal.Decimal, error) {
	var balanceStr string
	err := s.db.QueryRowContext(ctx, queryGetBalance, account.OwnerId, account.Currency).Scan(&balanceStr)
	if err == sql.ErrNoRows {
		// No balance record means zero balance
		return decimal.Zero, nil
	}
	if err != nil {
		zap.L().Error("Failed to get balance",
			zap.String("owner_id", account.OwnerId),
			zap.String("currency", account.Currency),
			zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
	}

	return balance, nil
}

// Adjust applies delta to an account balance atomically. The row is read and
// written inside one database transaction guarded by an optimistic version
// check, so concurrent adjustments on the same account serialize: the loser
// of the version race gets store.ErrConcurrentModification and can retry.
func (s *Service) Adjust(ctx context.Context, account store.AccountRef, delta decimal.Decimal, lastTransactionId string) (decimal.Decimal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var accountId, currentBalanceStr string
	var version int64

	err = tx.QueryRowContext(ctx, queryGetAccountBalance, account.OwnerId, account.Currency).
		Scan(&accountId, &currentBalanceStr, &version)

	var currentBalance decimal.Decimal
	if err == sql.ErrNoRows {
		// Materialize the account on first touch
		accountId = uuid.New().String()
		currentBalance = decimal.Zero
		version = 1

		if _, err := tx.ExecContext(ctx, queryInsertAccountBalance, accountId, account.OwnerId, account.Currency, "0", 1); err != nil {
			return decimal.Zero, fmt.Errorf("failed to create account balance: %w", err)
		}
	} else if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get current balance: %w", err)
	} else {
		currentBalance, err = decimal.NewFromString(currentBalanceStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse current balance '%s': %w", currentBalanceStr, err)
		}
	}

	newBalance := currentBalance.Add(delta)
	if newBalance.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: balance %s, delta %s",
			store.ErrInsufficientFunds, currentBalance.String(), delta.String())
	}

	result, err := tx.ExecContext(ctx, queryUpdateAccountBalance,
		newBalance.String(), lastTransactionId, account.OwnerId, account.Currency, version)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return decimal.Zero, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Debug("Balance adjusted",
		zap.String("owner_id", account.OwnerId),
		zap.String("currency", account.Currency),
		zap.String("delta", delta.String()),
		zap.String("new_balance", newBalance.String()))

	return newBalance, nil
}

// Create materializes an account with an explicit opening balance.
func (s *Service) Create(ctx context.Context, account store.AccountRef, initialBalance decimal.Decimal) error {
	if initialBalance.IsNegative() {
		return fmt.Errorf("%w: %s", store.ErrInvalidInitialBalance, initialBalance.String())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingId string
	err = tx.QueryRowContext(ctx, queryGetAccountBalance, account.OwnerId, account.Currency).
		Scan(&existingId, new(string), new(int64))
	if err == nil {
		return fmt.Errorf("%w: %s/%s", store.ErrAccountExists, account.OwnerId, account.Currency)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing account: %w", err)
	}

	if _, err := tx.ExecContext(ctx, queryInsertAccountBalance,
		uuid.New().String(), account.OwnerId, account.Currency, initialBalance.String(), 1); err != nil {
		return fmt.Errorf("failed to create account balance: %w", err)
	}

	return tx.Commit()
}

// GetAllBalances returns all non-zero balances for an owner
func (s *Service) GetAllBalances(ctx context.Context, ownerId string) ([]models.AccountBalance, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAllOwnerBalances, ownerId)
	if err != nil {
		zap.L().Error("Failed to get all balances", zap.String("owner_id", ownerId), zap.Error(err))
		return nil, fmt.Errorf("failed to get all balances: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var balances []models.AccountBalance
	for rows.Next() {
		var balance models.AccountBalance
		var balanceStr string
		err := rows.Scan(&balance.Id, &balance.OwnerId, &balance.Currency, &balanceStr,
			&balance.LastTransactionId, &balance.Version, &balance.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}

		balance.Balance, err = decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
		}

		balances = append(balances, balance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}

	return balances, nil
}
