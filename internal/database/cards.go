package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
)

func (s *Service) InsertCard(ctx context.Context, card models.VirtualCard) error {
	_, err := s.db.ExecContext(ctx, queryInsertCard,
		card.Id, card.UserId, card.Name, card.CardNumber, card.Cvv,
		card.ExpiryDate, card.Currency, card.Active)
	if err != nil {
		zap.L().Error("Failed to insert card",
			zap.String("card_id", card.Id),
			zap.String("user_id", card.UserId),
			zap.Error(err))
		return fmt.Errorf("unable to insert card: %w", err)
	}

	zap.L().Info("Virtual card created",
		zap.String("card_id", card.Id),
		zap.String("user_id", card.UserId),
		zap.String("currency", card.Currency))
	return nil
}

func (s *Service) GetCardById(ctx context.Context, cardId string) (*models.VirtualCard, error) {
	return s.scanCard(s.db.QueryRowContext(ctx, queryGetCardById, cardId), cardId)
}

func (s *Service) GetCardByNumber(ctx context.Context, cardNumber string) (*models.VirtualCard, error) {
	return s.scanCard(s.db.QueryRowContext(ctx, queryGetCardByNumber, cardNumber), cardNumber)
}

func (s *Service) GetUserCards(ctx context.Context, userId string) ([]models.VirtualCard, error) {
	rows, err := s.db.QueryContext(ctx, queryGetUserCards, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query cards: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var cards []models.VirtualCard
	for rows.Next() {
		var card models.VirtualCard
		err := rows.Scan(&card.Id, &card.UserId, &card.Name, &card.CardNumber, &card.Cvv,
			&card.ExpiryDate, &card.Currency, &card.Active, &card.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan card row: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card rows: %w", err)
	}

	return cards, nil
}

func (s *Service) DeactivateCard(ctx context.Context, cardId string) error {
	result, err := s.db.ExecContext(ctx, queryDeactivateCard, cardId)
	if err != nil {
		return fmt.Errorf("unable to deactivate card: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrCardNotFound, cardId)
	}

	zap.L().Info("Virtual card deactivated", zap.String("card_id", cardId))
	return nil
}

func (s *Service) scanCard(row *sql.Row, key string) (*models.VirtualCard, error) {
	var card models.VirtualCard
	err := row.Scan(&card.Id, &card.UserId, &card.Name, &card.CardNumber, &card.Cvv,
		&card.ExpiryDate, &card.Currency, &card.Active, &card.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrCardNotFound, key)
		}
		return nil, fmt.Errorf("unable to query card: %w", err)
	}
	return &card, nil
}
