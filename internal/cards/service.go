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

package cards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"
	"wallet-ledger-go/internal/wallet"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrCardInactive rejects any transfer touching a deactivated card
var ErrCardInactive = errors.New("card inactive")

// Funding directions between a user account and their own card
const (
	DirectionAccountToCard = "account_to_card"
	DirectionCardToAccount = "card_to_account"
)

// Service is the card sub-ledger: it maps card ids to ledger accounts and
// routes every balance movement through the transfer engine.
type Service struct {
	cards      store.CardStore
	ledger     store.Ledger
	engine     *wallet.Engine
	currencies *common.CurrencyRegistry
	issuer     *Issuer
}

func NewService(cardStore store.CardStore, ledger store.Ledger, engine *wallet.Engine, currencies *common.CurrencyRegistry) *Service {
	return &Service{
		cards:      cardStore,
		ledger:     ledger,
		engine:     engine,
		currencies: currencies,
		issuer:     NewIssuer(),
	}
}

// Create issues a new virtual card for the caller with a zero opening
// balance.
func (s *Service) Create(ctx context.Context, caller wallet.Caller, name, currency string) (*models.VirtualCard, error) {
	if caller.Id == "" {
		return nil, fmt.Errorf("%w: missing caller identity", wallet.ErrUnauthorized)
	}
	if name == "" {
		return nil, fmt.Errorf("card name is required")
	}
	if !s.currencies.IsSupported(currency) {
		return nil, fmt.Errorf("%w: %s", wallet.ErrUnsupportedCurrency, currency)
	}

	number, err := s.issuer.CardNumber()
	if err != nil {
		return nil, err
	}
	cvv, err := s.issuer.Cvv()
	if err != nil {
		return nil, err
	}

	card := models.VirtualCard{
		Id:         uuid.New().String(),
		UserId:     caller.Id,
		Name:       name,
		CardNumber: number,
		Cvv:        cvv,
		ExpiryDate: s.issuer.ExpiryDate(time.Now().UTC()),
		Currency:   currency,
		Active:     true,
	}

	if err := s.cards.InsertCard(ctx, card); err != nil {
		return nil, err
	}
	if err := s.ledger.Create(ctx, s.accountFor(&card), decimal.Zero); err != nil {
		return nil, fmt.Errorf("failed to materialize card account: %w", err)
	}

	return &card, nil
}

// GetCard returns a caller-owned card together with its ledger balance
func (s *Service) GetCard(ctx context.Context, caller wallet.Caller, cardId string) (*models.VirtualCard, decimal.Decimal, error) {
	card, err := s.ownedCard(ctx, caller, cardId)
	if err != nil {
		return nil, decimal.Zero, err
	}
	balance, err := s.Balance(ctx, card)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return card, balance, nil
}

// ListCards returns all of the caller's cards
func (s *Service) ListCards(ctx context.Context, caller wallet.Caller) ([]models.VirtualCard, error) {
	return s.cards.GetUserCards(ctx, caller.Id)
}

// Balance reads the card's ledger account. The card row never stores a
// balance; the ledger is the single source of truth.
func (s *Service) Balance(ctx context.Context, card *models.VirtualCard) (decimal.Decimal, error) {
	return s.ledger.GetBalance(ctx, s.accountFor(card))
}

// Fund moves funds between the caller's user account and the caller's own
// card, in either direction.
func (s *Service) Fund(ctx context.Context, caller wallet.Caller, cardId string, amount decimal.Decimal, currency, direction string) (*wallet.Result, error) {
	card, err := s.ownedCard(ctx, caller, cardId)
	if err != nil {
		return nil, err
	}
	if !card.Active {
		return nil, fmt.Errorf("%w: %s", ErrCardInactive, card.Id)
	}
	if card.Currency != currency {
		return nil, fmt.Errorf("%w: card holds %s, requested %s", wallet.ErrCurrencyMismatch, card.Currency, currency)
	}

	userAccount := store.AccountRef{OwnerId: caller.Id, Currency: currency}
	cardAccount := s.accountFor(card)

	var req wallet.Request
	switch direction {
	case DirectionAccountToCard:
		req = wallet.Request{
			Kind:     wallet.KindCardFund,
			Caller:   caller,
			From:     &userAccount,
			To:       &cardAccount,
			Amount:   amount,
			Currency: currency,
		}
	case DirectionCardToAccount:
		req = wallet.Request{
			Kind:     wallet.KindCardWithdraw,
			Caller:   caller,
			From:     &cardAccount,
			To:       &userAccount,
			Amount:   amount,
			Currency: currency,
		}
	default:
		return nil, fmt.Errorf("invalid direction %q", direction)
	}

	return s.engine.Transfer(ctx, req)
}

// CardToCard transfers between two cards. The recipient is located by card
// number and must be active and hold the same currency.
func (s *Service) CardToCard(ctx context.Context, caller wallet.Caller, cardId, recipientCardNumber string, amount decimal.Decimal, description string) (*wallet.Result, error) {
	sender, err := s.ownedCard(ctx, caller, cardId)
	if err != nil {
		return nil, err
	}
	if !sender.Active {
		return nil, fmt.Errorf("%w: %s", ErrCardInactive, sender.Id)
	}

	recipient, err := s.cards.GetCardByNumber(ctx, recipientCardNumber)
	if err != nil {
		return nil, err
	}
	if sender.Currency != recipient.Currency {
		return nil, fmt.Errorf("%w: sender %s, recipient %s",
			wallet.ErrCurrencyMismatch, sender.Currency, recipient.Currency)
	}
	if !recipient.Active {
		return nil, fmt.Errorf("%w: %s", ErrCardInactive, recipient.Id)
	}

	return s.engine.Transfer(ctx, wallet.Request{
		Kind:        wallet.KindCardToCard,
		Caller:      caller,
		From:        &store.AccountRef{OwnerId: sender.Id, Currency: sender.Currency},
		To:          &store.AccountRef{OwnerId: recipient.Id, Currency: recipient.Currency},
		Amount:      amount,
		Currency:    sender.Currency,
		Description: description,
	})
}

// Deactivate turns a card off; further transfers touching it are rejected
func (s *Service) Deactivate(ctx context.Context, caller wallet.Caller, cardId string) error {
	card, err := s.ownedCard(ctx, caller, cardId)
	if err != nil {
		return err
	}

	if err := s.cards.DeactivateCard(ctx, card.Id); err != nil {
		return err
	}

	zap.L().Info("Card deactivated",
		zap.String("card_id", card.Id),
		zap.String("user_id", caller.Id))
	return nil
}

func (s *Service) ownedCard(ctx context.Context, caller wallet.Caller, cardId string) (*models.VirtualCard, error) {
	card, err := s.cards.GetCardById(ctx, cardId)
	if err != nil {
		return nil, err
	}
	if card.UserId != caller.Id {
		return nil, fmt.Errorf("%w: card %s does not belong to caller", wallet.ErrUnauthorized, cardId)
	}
	return card, nil
}

func (s *Service) accountFor(card *models.VirtualCard) store.AccountRef {
	return store.AccountRef{OwnerId: card.Id, Currency: card.Currency}
}
