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
	"wallet-ledger-go/internal/database"
	"wallet-ledger-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers        int
	totalBalances     int
	usersWithBalances int
}

func printBalances(balances []models.AccountBalance) {
	for i, balance := range balances {
		isLast := i == len(balances)-1
		fmt.Println(common.FormatBalanceLine(balance, isLast))
	}
}

func printUserHeader(user models.User, balanceCount int) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Currencies: %d\n", balanceCount)
	common.PrintBoxSeparator(78)
}

func processUser(ctx context.Context, user models.User, dbService *database.Service, logger *zap.Logger) (int, error) {
	balances, err := dbService.GetAllBalances(ctx, user.Id)
	if err != nil {
		return 0, fmt.Errorf("failed to get balances: %w", err)
	}

	if len(balances) == 0 {
		return 0, nil
	}

	printUserHeader(user, len(balances))
	printBalances(balances)

	return len(balances), nil
}

func processUsersAndGenerateReport(ctx context.Context, users []models.User, dbService *database.Service, logger *zap.Logger) balanceStats {
	stats := balanceStats{}

	for _, user := range users {
		stats.totalUsers++

		balanceCount, err := processUser(ctx, user, dbService, logger)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("user_name", user.Name),
				zap.Error(err))
			continue
		}

		if balanceCount > 0 {
			stats.usersWithBalances++
			stats.totalBalances += balanceCount
		}
	}

	return stats
}

func loadUsers(ctx context.Context, dbService *database.Service, emailFilter string) ([]models.User, error) {
	if emailFilter != "" {
		user, err := dbService.GetUserByEmail(ctx, emailFilter)
		if err != nil {
			return nil, fmt.Errorf("failed to find user %s: %w", emailFilter, err)
		}
		return []models.User{*user}, nil
	}
	return dbService.GetUsers(ctx)
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	flag.Parse()

	logger.Info("Starting balance query")

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

	users, err := loadUsers(ctx, dbService, *emailFlag)
	if err != nil {
		logger.Fatal("Failed to load users", zap.Error(err))
	}

	// Print header
	common.PrintHeader("USER BALANCE REPORT", common.DefaultWidth)

	stats := processUsersAndGenerateReport(ctx, users, dbService, logger)

	// Print footer summary
	summary := fmt.Sprintf("SUMMARY: %d users with balances (%d total balances across %d users queried)",
		stats.usersWithBalances, stats.totalBalances, stats.totalUsers)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_balances", stats.usersWithBalances),
		zap.Int("total_balances", stats.totalBalances))
}
