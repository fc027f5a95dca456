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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"wallet-ledger-go/internal/cards"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"
	"wallet-ledger-go/internal/wallet"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// userIdHeader carries the authenticated caller identity. Authentication is
// terminated upstream; this service trusts the header.
const userIdHeader = "X-User-Id"

type Handler struct {
	engine    *wallet.Engine
	cards     *cards.Service
	wallets   *WalletService
	directory store.Directory
	validate  *validator.Validate
}

func NewHandler(engine *wallet.Engine, cardService *cards.Service, wallets *WalletService, directory store.Directory) *Handler {
	return &Handler{
		engine:    engine,
		cards:     cardService,
		wallets:   wallets,
		directory: directory,
		validate:  validator.New(),
	}
}

// RegisterRoutes wires every endpoint onto the router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.instrument("health", h.handleHealth)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/transfers", h.instrument("transfers", h.handleSendPayment)).Methods(http.MethodPost)
	r.HandleFunc("/convert", h.instrument("convert", h.handleConvert)).Methods(http.MethodPost)
	r.HandleFunc("/admin/adjust", h.instrument("admin_adjust", h.handleAdminAdjust)).Methods(http.MethodPost)

	r.HandleFunc("/balances", h.instrument("balances", h.handleGetBalances)).Methods(http.MethodGet)
	r.HandleFunc("/transactions", h.instrument("transactions", h.handleListTransactions)).Methods(http.MethodGet)

	r.HandleFunc("/cards", h.instrument("cards_create", h.handleCreateCard)).Methods(http.MethodPost)
	r.HandleFunc("/cards", h.instrument("cards_list", h.handleListCards)).Methods(http.MethodGet)
	r.HandleFunc("/cards/{id}", h.instrument("cards_get", h.handleGetCard)).Methods(http.MethodGet)
	r.HandleFunc("/cards/{id}/fund", h.instrument("cards_fund", h.handleFundCard)).Methods(http.MethodPost)
	r.HandleFunc("/cards/{id}/transfer", h.instrument("cards_transfer", h.handleCardTransfer)).Methods(http.MethodPost)
	r.HandleFunc("/cards/{id}", h.instrument("cards_deactivate", h.handleDeactivateCard)).Methods(http.MethodDelete)
}

// instrument wraps a handler with request counting and latency observation
func (h *Handler) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r)
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(recorder.status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.wallets.HealthCheck(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSendPayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	var req models.SendPaymentSchema
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.engine.SendPayment(r.Context(), caller, req.RecipientId, req.Amount, req.Currency, req.Description)
	observeTransfer(string(wallet.KindUserPayment), err)
	if err != nil {
		respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transferResponse(result))
}

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	var req models.ConvertSchema
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.engine.Convert(r.Context(), caller, req.Amount, req.FromCurrency, req.ToCurrency)
	observeTransfer("convert", err)
	if err != nil {
		respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transferResponse(result))
}

func (h *Handler) handleAdminAdjust(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	var req models.AdminAdjustSchema
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var (
		result *wallet.Result
		err    error
	)
	switch req.Direction {
	case "deposit":
		result, err = h.engine.AdminDeposit(r.Context(), caller, req.UserId, req.Amount, req.Currency, req.Description)
		observeTransfer(string(wallet.KindAdminDeposit), err)
	case "withdrawal":
		result, err = h.engine.AdminWithdrawal(r.Context(), caller, req.UserId, req.Amount, req.Currency, req.Description)
		observeTransfer(string(wallet.KindAdminWithdrawal), err)
	}
	if err != nil {
		respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transferResponse(result))
}

func (h *Handler) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	ownerId := caller.Id
	if requested := r.URL.Query().Get("owner_id"); requested != "" && requested != caller.Id {
		if !caller.Admin {
			respondError(w, http.StatusForbidden, "only admins may read other owners' balances")
			return
		}
		ownerId = requested
	}

	balances, err := h.wallets.GetBalances(r.Context(), ownerId)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve balances")
		return
	}
	respondJSON(w, http.StatusOK, models.BalancesResponse{OwnerId: ownerId, Balances: balances})
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	ownerId := caller.Id
	if requested := r.URL.Query().Get("owner_id"); requested != "" && requested != caller.Id {
		if !caller.Admin {
			respondError(w, http.StatusForbidden, "only admins may read other owners' history")
			return
		}
		ownerId = requested
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	records, err := h.wallets.ListTransactions(r.Context(), ownerId, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve transaction history")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	var req models.CreateCardSchema
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cards.Create(r.Context(), caller, req.Name, req.Currency)
	if err != nil {
		respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cardResponse(card, decimal.Zero))
}

func (h *Handler) handleListCards(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	userCards, err := h.cards.ListCards(r.Context(), caller)
	if err != nil {
		respondWalletError(w, err)
		return
	}

	response := make([]models.CardResponse, 0, len(userCards))
	for i := range userCards {
		balance, err := h.cards.Balance(r.Context(), &userCards[i])
		if err != nil {
			respondWalletError(w, err)
			return
		}
		response = append(response, cardResponse(&userCards[i], balance))
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *Handler) handleGetCard(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	card, balance, err := h.cards.GetCard(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cardResponse(card, balance))
}

func (h *Handler) handleFundCard(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	var req models.FundCardSchema
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.cards.Fund(r.Context(), caller, mux.Vars(r)["id"], req.Amount, req.Currency, req.Direction)
	observeTransfer(string(wallet.KindCardFund), err)
	if err != nil {
		respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transferResponse(result))
}

func (h *Handler) handleCardTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	var req models.CardTransferSchema
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.cards.CardToCard(r.Context(), caller, mux.Vars(r)["id"], req.RecipientCardNumber, req.Amount, req.Description)
	observeTransfer(string(wallet.KindCardToCard), err)
	if err != nil {
		respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transferResponse(result))
}

func (h *Handler) handleDeactivateCard(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	if err := h.cards.Deactivate(r.Context(), caller, mux.Vars(r)["id"]); err != nil {
		respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// resolveCaller loads the caller identity from the trusted header and the
// user directory. The admin flag always comes from the directory, never
// from the request.
func (h *Handler) resolveCaller(w http.ResponseWriter, r *http.Request) (wallet.Caller, bool) {
	userId := r.Header.Get(userIdHeader)
	if userId == "" {
		respondError(w, http.StatusUnauthorized, "missing "+userIdHeader+" header")
		return wallet.Caller{}, false
	}

	user, err := h.directory.GetUserById(r.Context(), userId)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, "unknown user")
			return wallet.Caller{}, false
		}
		zap.L().Error("Failed to resolve caller", zap.String("user_id", userId), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to resolve caller")
		return wallet.Caller{}, false
	}

	return wallet.Caller{Id: user.Id, Admin: user.Admin}, true
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

// respondWalletError maps domain sentinels onto HTTP status codes
func respondWalletError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wallet.ErrUnauthorized):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, wallet.ErrRecipientNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrCardNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, wallet.ErrBusy):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInsufficientFunds),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, wallet.ErrInvalidRecipient),
		errors.Is(err, wallet.ErrCurrencyMismatch),
		errors.Is(err, wallet.ErrUnsupportedCurrency),
		errors.Is(err, wallet.ErrInvalidRate),
		errors.Is(err, cards.ErrCardInactive):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		zap.L().Error("Request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("Failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func transferResponse(result *wallet.Result) models.TransferResponse {
	return models.TransferResponse{
		TransactionId:       result.TransactionId,
		NewSenderBalance:    result.NewSenderBalance,
		NewRecipientBalance: result.NewRecipientBalance,
	}
}

func cardResponse(card *models.VirtualCard, balance decimal.Decimal) models.CardResponse {
	return models.CardResponse{
		Id:         card.Id,
		Name:       card.Name,
		CardNumber: card.CardNumber,
		ExpiryDate: card.ExpiryDate,
		Currency:   card.Currency,
		Balance:    balance,
		Active:     card.Active,
	}
}
