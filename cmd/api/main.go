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

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wallet-ledger-go/internal/api"
	"wallet-ledger-go/internal/cards"
	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"
	"wallet-ledger-go/internal/notify"
	"wallet-ledger-go/internal/rates"
	"wallet-ledger-go/internal/wallet"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	logger.Info("Starting wallet API server")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	currencies, err := common.LoadCurrencyRegistry(cfg.Wallet.CurrenciesFile)
	if err != nil {
		logger.Fatal("Failed to load currency registry", zap.Error(err))
	}

	rateSource, err := rates.LoadStaticSource(cfg.Wallet.RatesFile)
	if err != nil {
		logger.Fatal("Failed to load exchange rates", zap.Error(err))
	}

	var notifier wallet.Notifier = wallet.NopNotifier{}
	if cfg.Wallet.WebhookUrl != "" {
		logger.Info("Webhook notifications enabled", zap.String("url", cfg.Wallet.WebhookUrl))
		notifier = notify.NewWebhookNotifier(cfg.Wallet.WebhookUrl)
	}

	engine, err := wallet.NewEngine(wallet.EngineParams{
		Ledger:     dbService,
		Log:        dbService,
		Directory:  dbService,
		Currencies: currencies,
		Rates:      rateSource,
		Notifier:   notifier,
		MaxRetries: cfg.Wallet.MaxRetries,
	})
	if err != nil {
		logger.Fatal("Failed to build transfer engine", zap.Error(err))
	}

	cardService := cards.NewService(dbService, dbService, engine, currencies)
	walletService := api.NewWalletService(dbService, dbService, dbService, currencies)
	handler := api.NewHandler(engine, cardService, walletService, dbService)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("addr", cfg.Server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed, closing", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Error("Forced close failed", zap.Error(err))
			}
		}
	}

	logger.Info("Server stopped")
}
