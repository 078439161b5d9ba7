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

import (
	"context"
	"database/sql"
	"fmt"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.MarketStore.
var _ store.MarketStore = (*Service)(nil)

type Service struct {
	db *sql.DB
}

// queryer is satisfied by both *sql.DB and *sql.Tx so read helpers work inside and outside a unit of work.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

// dsn builds the go-sqlite3 connection string. Every transaction is opened
// with BEGIN IMMEDIATE so the write lock is held before the first read.
func dsn(cfg models.DatabaseConfig) string {
	busy := cfg.BusyTimeout.Milliseconds()
	if busy <= 0 {
		busy = 5000
	}
	return fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=1&_txlock=immediate&_busy_timeout=%d",
		cfg.Path, busy)
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

// WithTx runs fn inside a single immediate transaction. Any error from fn rolls everything back.
func (s *Service) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Service) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		steam_id TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'User' CHECK (role IN ('User', 'Admin')),
		balance TEXT NOT NULL DEFAULT '0',
		balance_version INTEGER NOT NULL DEFAULT 1,
		trade_url TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		last_sync TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		app_id INTEGER NOT NULL DEFAULT 0,
		logo_url TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		game_id TEXT NOT NULL REFERENCES games(id),
		type TEXT NOT NULL DEFAULT '',
		rarity TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		icon_url TEXT NOT NULL DEFAULT '',
		market_hash_name TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_game_id ON items(game_id);

	CREATE TABLE IF NOT EXISTS inventory_items (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES items(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		is_tradable BOOLEAN NOT NULL DEFAULT 1,
		acquired_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_inventory_items_user_id ON inventory_items(user_id);
	CREATE INDEX IF NOT EXISTS idx_inventory_items_item_id ON inventory_items(item_id);

	-- One row per inventory item; relisting reuses it.
	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		inventory_item_id TEXT NOT NULL UNIQUE REFERENCES inventory_items(id),
		seller_id TEXT NOT NULL REFERENCES users(id),
		buyer_id TEXT REFERENCES users(id),
		price TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('Active', 'Sold', 'Cancelled')),
		listed_at TIMESTAMP NOT NULL,
		sold_at TIMESTAMP,
		updated_at TIMESTAMP NOT NULL,
		version INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);
	CREATE INDEX IF NOT EXISTS idx_listings_seller_id ON listings(seller_id);

	CREATE TABLE IF NOT EXISTS cart_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		added_at TIMESTAMP NOT NULL,
		UNIQUE(user_id, listing_id)
	);

	CREATE INDEX IF NOT EXISTS idx_cart_entries_listing_id ON cart_entries(listing_id);

	-- Append-only; SUM(amount) per user equals users.balance.
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		amount TEXT NOT NULL,
		category TEXT NOT NULL CHECK (category IN ('purchase', 'sale', 'deposit', 'withdrawal')),
		description TEXT NOT NULL DEFAULT '',
		reference TEXT NOT NULL DEFAULT '',
		balance_before TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		mirrored_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_entries_user_id ON ledger_entries(user_id);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_reference ON ledger_entries(reference);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_unmirrored ON ledger_entries(created_at) WHERE mirrored_at IS NULL;

	CREATE TABLE IF NOT EXISTS marketplaces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		website_url TEXT NOT NULL DEFAULT '',
		is_enabled BOOLEAN NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS price_listings (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES items(id),
		marketplace_id TEXT NOT NULL REFERENCES marketplaces(id),
		price TEXT NOT NULL,
		float_value REAL,
		currency_code TEXT NOT NULL DEFAULT 'USD',
		listing_url TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_price_listings_item_id ON price_listings(item_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}
