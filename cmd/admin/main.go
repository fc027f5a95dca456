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
	"flag"
	"fmt"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"
	"wallet-ledger-go/internal/wallet"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	adminFlag := flag.String("admin", "", "Email of the admin performing the adjustment (required)")
	userFlag := flag.String("user", "", "Email of the user to adjust (required)")
	amountFlag := flag.String("amount", "", "Amount to deposit or withdraw (required)")
	currencyFlag := flag.String("currency", "", "Currency code, e.g. USD or BTC (required)")
	actionFlag := flag.String("action", "deposit", "Adjustment action: deposit or withdrawal")
	descriptionFlag := flag.String("description", "", "Optional description recorded on the transaction")
	flag.Parse()

	if *adminFlag == "" || *userFlag == "" || *amountFlag == "" || *currencyFlag == "" {
		logger.Fatal("Required flags: --admin, --user, --amount and --currency")
	}
	if *actionFlag != "deposit" && *actionFlag != "withdrawal" {
		logger.Fatal("Invalid action, expected deposit or withdrawal", zap.String("action", *actionFlag))
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		logger.Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	currencies, err := common.LoadCurrencyRegistry(cfg.Wallet.CurrenciesFile)
	if err != nil {
		logger.Fatal("Failed to load currency registry", zap.Error(err))
	}

	engine, err := wallet.NewEngine(wallet.EngineParams{
		Ledger:     dbService,
		Log:        dbService,
		Directory:  dbService,
		Currencies: currencies,
		MaxRetries: cfg.Wallet.MaxRetries,
	})
	if err != nil {
		logger.Fatal("Failed to build transfer engine", zap.Error(err))
	}

	admin, err := dbService.GetUserByEmail(ctx, *adminFlag)
	if err != nil {
		logger.Fatal("Failed to resolve admin", zap.String("email", *adminFlag), zap.Error(err))
	}
	if !admin.Admin {
		logger.Fatal("User has no admin rights", zap.String("email", *adminFlag))
	}

	user, err := dbService.GetUserByEmail(ctx, *userFlag)
	if err != nil {
		logger.Fatal("Failed to resolve user", zap.String("email", *userFlag), zap.Error(err))
	}

	caller := wallet.Caller{Id: admin.Id, Admin: admin.Admin}

	var result *wallet.Result
	switch *actionFlag {
	case "deposit":
		result, err = engine.AdminDeposit(ctx, caller, user.Id, amount, *currencyFlag, *descriptionFlag)
	case "withdrawal":
		result, err = engine.AdminWithdrawal(ctx, caller, user.Id, amount, *currencyFlag, *descriptionFlag)
	}
	if err != nil {
		logger.Fatal("Adjustment failed", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("ADMIN ADJUSTMENT COMPLETED", common.DefaultWidth)
	fmt.Printf("Action:         %s\n", *actionFlag)
	fmt.Printf("User:           %s (%s)\n", user.Name, user.Email)
	fmt.Printf("Amount:         %s %s\n", amount.String(), *currencyFlag)
	fmt.Printf("Transaction ID: %s\n", result.TransactionId)
	if result.NewRecipientBalance != nil {
		fmt.Printf("New balance:    %s %s\n", result.NewRecipientBalance.String(), *currencyFlag)
	}
	if result.NewSenderBalance != nil {
		fmt.Printf("New balance:    %s %s\n", result.NewSenderBalance.String(), *currencyFlag)
	}
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	logger.Info("Adjustment recorded",
		zap.String("action", *actionFlag),
		zap.String("user_id", user.Id),
		zap.String("transaction_id", result.TransactionId))
}
