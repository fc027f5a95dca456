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

package database

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (id, name, email, admin) VALUES (?, ?, ?, ?)
		RETURNING id, name, email, admin, created_at, updated_at`

	queryGetUsers = `
		SELECT id, name, email, admin, created_at, updated_at
		FROM users
		ORDER BY created_at`

	queryGetUserById = `
		SELECT id, name, email, admin, created_at, updated_at
		FROM users
		WHERE id = ?`

	queryGetUserByEmail = `
		SELECT id, name, email, admin, created_at, updated_at
		FROM users
		WHERE email = ?`

	// Balance queries
	queryGetBalance = `
		SELECT balance
		FROM account_balances
		WHERE owner_id = ? AND currency = ?`

	queryGetAccountBalance = `
		SELECT id, balance, version
		FROM account_balances
		WHERE owner_id = ? AND currency = ?`

	queryInsertAccountBalance = `
		INSERT INTO account_balances (id, owner_id, currency, balance, version)
		VALUES (?, ?, ?, ?, ?)`

	queryUpdateAccountBalance = `
		UPDATE account_balances
		SET balance = ?, last_transaction_id = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE owner_id = ? AND currency = ? AND version = ?`

	queryGetAllOwnerBalances = `
		SELECT id, owner_id, currency, balance, COALESCE(last_transaction_id, ''), version, updated_at
		FROM account_balances
		WHERE owner_id = ? AND CAST(balance AS REAL) != 0
		ORDER BY currency`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (
			id, type, status, amount, currency, is_crypto,
			sender_id, recipient_id, user_id, description, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, type, status, amount, currency, is_crypto,
		          sender_id, recipient_id, user_id, description, created_at, updated_at`

	queryGetOwnerTransactions = `
		SELECT id, type, status, amount, currency, is_crypto,
		       sender_id, recipient_id, user_id, description, created_at, updated_at
		FROM transactions
		WHERE user_id = ? OR sender_id = ? OR recipient_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`

	// Card queries
	queryInsertCard = `
		INSERT INTO virtual_cards (id, user_id, name, card_number, cvv, expiry_date, currency, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetCardById = `
		SELECT id, user_id, name, card_number, cvv, expiry_date, currency, active, created_at
		FROM virtual_cards
		WHERE id = ?`

	queryGetCardByNumber = `
		SELECT id, user_id, name, card_number, cvv, expiry_date, currency, active, created_at
		FROM virtual_cards
		WHERE card_number = ?`

	queryGetUserCards = `
		SELECT id, user_id, name, card_number, cvv, expiry_date, currency, active, created_at
		FROM virtual_cards
		WHERE user_id = ?
		ORDER BY created_at`

	queryDeactivateCard = `
		UPDATE virtual_cards
		SET active = 0
		WHERE id = ?`
)
