package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wallet-ledger-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Append writes one immutable transaction record. There is no update or
// delete path; compensation for failed transfers happens in the ledger,
// never by rewriting history.
func (s *Service) Append(ctx context.Context, record models.Transaction) (*models.Transaction, error) {
	record = withRecordDefaults(record)

	inserted, err := insertTransaction(ctx, s.db, record)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Transaction recorded",
		zap.String("transaction_id", inserted.Id),
		zap.String("type", inserted.Type),
		zap.String("user_id", inserted.UserId),
		zap.String("currency", inserted.Currency),
		zap.String("amount", inserted.Amount.String()))

	return inserted, nil
}

// AppendPair writes the two records of one transfer inside a single database
// transaction. A failure on either insert rolls both back, so the log never
// holds a debit row without its credit counterpart.
func (s *Service) AppendPair(ctx context.Context, debit, credit models.Transaction) (*models.Transaction, *models.Transaction, error) {
	debit = withRecordDefaults(debit)
	credit = withRecordDefaults(credit)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	debitRow, err := insertTransaction(ctx, tx, debit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert debit record: %w", err)
	}

	creditRow, err := insertTransaction(ctx, tx, credit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert credit record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction pair: %w", err)
	}

	zap.L().Info("Transaction pair recorded",
		zap.String("debit_id", debitRow.Id),
		zap.String("credit_id", creditRow.Id),
		zap.String("currency", debitRow.Currency),
		zap.String("amount", debitRow.Amount.String()))

	return debitRow, creditRow, nil
}

// Query returns paginated transaction history for an owner, newest first.
// The owner matches as filer, sender or recipient.
func (s *Service) Query(ctx context.Context, ownerId string, limit, offset int) ([]models.Transaction, error) {
	zap.L().Debug("Getting transaction history",
		zap.String("owner_id", ownerId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	rows, err := s.db.QueryContext(ctx, queryGetOwnerTransactions, ownerId, ownerId, ownerId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var amountStr string
		err := rows.Scan(&tx.Id, &tx.Type, &tx.Status, &amountStr, &tx.Currency,
			&tx.IsCrypto, &tx.SenderId, &tx.RecipientId, &tx.UserId,
			&tx.Description, &tx.CreatedAt, &tx.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}

		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

func withRecordDefaults(record models.Transaction) models.Transaction {
	if record.Id == "" {
		record.Id = uuid.New().String()
	}
	if record.Status == "" {
		record.Status = models.TxStatusCompleted
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	return record
}

// rowQueryer is satisfied by both *sql.DB and *sql.Tx
type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertTransaction(ctx context.Context, q rowQueryer, record models.Transaction) (*models.Transaction, error) {
	inserted := &models.Transaction{}
	var amountStr string
	err := q.QueryRowContext(ctx, queryInsertTransaction,
		record.Id, record.Type, record.Status, record.Amount.String(), record.Currency,
		record.IsCrypto, record.SenderId, record.RecipientId, record.UserId,
		record.Description, record.CreatedAt, record.UpdatedAt).
		Scan(&inserted.Id, &inserted.Type, &inserted.Status, &amountStr, &inserted.Currency,
			&inserted.IsCrypto, &inserted.SenderId, &inserted.RecipientId, &inserted.UserId,
			&inserted.Description, &inserted.CreatedAt, &inserted.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	inserted.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse returned amount: %w", err)
	}

	return inserted, nil
}
