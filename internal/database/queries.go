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
	userColumns = `id, username, steam_id, display_name, role, balance, balance_version,
		trade_url, avatar_url, last_sync, created_at`

	queryInsertUser = `
		INSERT INTO users (id, username, steam_id, display_name, role, balance, balance_version,
			trade_url, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?, '0', 1, ?, ?, ?)`

	queryGetUserById = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = ?`

	queryFindUserByIdentifier = `
		SELECT ` + userColumns + `
		FROM users
		WHERE steam_id = ? OR username = ?
		ORDER BY CASE WHEN steam_id = ? THEN 0 ELSE 1 END
		LIMIT 1`

	queryListUsers = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY username`

	queryUpdateUserRole = `
		UPDATE users SET role = ? WHERE id = ?`

	queryCountUsers = `
		SELECT COUNT(*) FROM users`

	// Balance and ledger queries
	queryGetUserBalance = `
		SELECT balance, balance_version
		FROM users
		WHERE id = ?`

	queryUpdateUserBalance = `
		UPDATE users
		SET balance = ?, balance_version = balance_version + 1
		WHERE id = ? AND balance_version = ?`

	ledgerColumns = `id, user_id, amount, category, description, reference,
		balance_before, balance_after, created_at, mirrored_at`

	queryInsertLedgerEntry = `
		INSERT INTO ledger_entries (id, user_id, amount, category, description, reference,
			balance_before, balance_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + ledgerColumns

	queryGetLedgerHistory = `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	queryLedgerAmounts = `
		SELECT amount
		FROM ledger_entries
		WHERE user_id = ?`

	queryListUnmirroredEntries = `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE mirrored_at IS NULL
		ORDER BY created_at, rowid
		LIMIT ?`

	queryMarkEntryMirrored = `
		UPDATE ledger_entries SET mirrored_at = ? WHERE id = ? AND mirrored_at IS NULL`

	// Catalog queries
	queryInsertGame = `
		INSERT INTO games (id, name, app_id, logo_url) VALUES (?, ?, ?, ?)`

	queryListGames = `
		SELECT id, name, app_id, logo_url
		FROM games
		ORDER BY name`

	queryInsertItem = `
		INSERT INTO items (id, game_id, type, rarity, name, description, icon_url, market_hash_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryInsertInventoryItem = `
		INSERT INTO inventory_items (id, item_id, user_id, is_tradable, acquired_at)
		VALUES (?, ?, ?, ?, ?)`

	queryGetInventoryItem = `
		SELECT id, item_id, user_id, is_tradable, acquired_at
		FROM inventory_items
		WHERE id = ?`

	queryTransferInventoryItem = `
		UPDATE inventory_items
		SET user_id = ?, acquired_at = ?
		WHERE id = ? AND user_id = ?`

	queryListInventory = `
		SELECT ii.id, i.id, i.name, g.name, i.rarity, ii.is_tradable, ii.acquired_at,
		       COALESCE(l.id, ''), l.price
		FROM inventory_items ii
		JOIN items i ON i.id = ii.item_id
		JOIN games g ON g.id = i.game_id
		LEFT JOIN listings l ON l.inventory_item_id = ii.id AND l.status = 'Active'
		WHERE ii.user_id = ?
		ORDER BY g.name, i.name, ii.acquired_at`

	queryListItemTypes = `
		SELECT DISTINCT type FROM items WHERE type <> '' ORDER BY type`

	queryListItemRarities = `
		SELECT DISTINCT rarity FROM items WHERE rarity <> '' ORDER BY rarity`

	// Listing queries
	listingColumns = `id, inventory_item_id, seller_id, COALESCE(buyer_id, ''), price, status,
		listed_at, sold_at, updated_at, version`

	queryGetListing = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE id = ?`

	queryGetListingByInventoryItem = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE inventory_item_id = ?`

	queryInsertListing = `
		INSERT INTO listings (id, inventory_item_id, seller_id, price, status, listed_at, updated_at, version)
		VALUES (?, ?, ?, ?, 'Active', ?, ?, 1)`

	queryRelistListing = `
		UPDATE listings
		SET seller_id = ?, price = ?, status = 'Active', buyer_id = NULL, sold_at = NULL,
		    listed_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ? AND status <> 'Active'`

	queryMarkListingSold = `
		UPDATE listings
		SET status = 'Sold', buyer_id = ?, sold_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ? AND status = 'Active'`

	queryCancelListing = `
		UPDATE listings
		SET status = 'Cancelled', updated_at = ?, version = version + 1
		WHERE id = ? AND version = ? AND status = 'Active'`

	queryListCatalog = `
		SELECT l.id, ii.id, i.id, i.name, i.type, i.rarity, i.icon_url, g.id, g.name,
		       u.id, u.username, l.price, l.listed_at
		FROM listings l
		JOIN inventory_items ii ON ii.id = l.inventory_item_id
		JOIN items i ON i.id = ii.item_id
		JOIN games g ON g.id = i.game_id
		JOIN users u ON u.id = l.seller_id
		WHERE l.status = 'Active'
		  AND (? = '' OR g.id = ?)
		  AND (? = '' OR i.name LIKE '%' || ? || '%' OR i.market_hash_name LIKE '%' || ? || '%')`

	queryListAllListings = `
		SELECT l.id, l.inventory_item_id, l.seller_id, COALESCE(l.buyer_id, ''), l.price, l.status,
		       l.listed_at, l.sold_at, l.updated_at, l.version,
		       i.name, g.name, s.username, COALESCE(b.username, '')
		FROM listings l
		JOIN inventory_items ii ON ii.id = l.inventory_item_id
		JOIN items i ON i.id = ii.item_id
		JOIN games g ON g.id = i.game_id
		JOIN users s ON s.id = l.seller_id
		LEFT JOIN users b ON b.id = l.buyer_id
		ORDER BY l.listed_at DESC`

	queryActiveListingCountsBySeller = `
		SELECT u.id, u.username, COUNT(l.id)
		FROM listings l
		JOIN users u ON u.id = l.seller_id
		WHERE l.status = 'Active'
		GROUP BY u.id, u.username
		ORDER BY COUNT(l.id) DESC, u.username`

	queryCountListingsByStatus = `
		SELECT status, COUNT(*) FROM listings GROUP BY status`

	// Cart queries
	queryInsertCartEntry = `
		INSERT INTO cart_entries (id, user_id, listing_id, added_at) VALUES (?, ?, ?, ?)`

	queryDeleteCartEntry = `
		DELETE FROM cart_entries WHERE user_id = ? AND listing_id = ?`

	queryDeleteCartEntriesForListing = `
		DELETE FROM cart_entries WHERE listing_id = ?`

	queryListCart = `
		SELECT c.id, l.id, i.name, g.name, u.username, l.price, l.status, c.added_at
		FROM cart_entries c
		JOIN listings l ON l.id = c.listing_id
		JOIN inventory_items ii ON ii.id = l.inventory_item_id
		JOIN items i ON i.id = ii.item_id
		JOIN games g ON g.id = i.game_id
		JOIN users u ON u.id = l.seller_id
		WHERE c.user_id = ?
		ORDER BY c.added_at, c.rowid`

	// Price queries
	queryInsertMarketplace = `
		INSERT INTO marketplaces (id, name, website_url, is_enabled) VALUES (?, ?, ?, ?)`

	queryInsertPriceListing = `
		INSERT INTO price_listings (id, item_id, marketplace_id, price, float_value, currency_code,
			listing_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryBestInternalPrice = `
		SELECT l.price
		FROM listings l
		JOIN inventory_items ii ON ii.id = l.inventory_item_id
		WHERE ii.item_id = ? AND l.status = 'Active'
		ORDER BY CAST(l.price AS REAL), l.listed_at
		LIMIT 1`

	queryBestExternalPrice = `
		SELECT p.price, m.name, p.currency_code, p.listing_url, p.updated_at
		FROM price_listings p
		JOIN marketplaces m ON m.id = p.marketplace_id
		WHERE p.item_id = ? AND m.is_enabled = 1
		ORDER BY CAST(p.price AS REAL), p.updated_at DESC
		LIMIT 1`

	queryListPriceComparisons = `
		WITH ranked AS (
			SELECT p.item_id, p.price, p.currency_code, p.listing_url, p.updated_at,
			       m.name AS marketplace, m.website_url,
			       ROW_NUMBER() OVER (PARTITION BY p.item_id ORDER BY CAST(p.price AS REAL), p.updated_at DESC) AS rn,
			       COUNT(*) OVER (PARTITION BY p.item_id) AS offers
			FROM price_listings p
			JOIN marketplaces m ON m.id = p.marketplace_id
			WHERE m.is_enabled = 1
		)
		SELECT i.id, i.name, i.market_hash_name, g.name, i.type, i.rarity,
		       r.price, r.currency_code, r.marketplace, r.website_url, r.listing_url, r.offers, r.updated_at
		FROM ranked r
		JOIN items i ON i.id = r.item_id
		JOIN games g ON g.id = i.game_id
		WHERE r.rn = 1
		  AND (? = '' OR g.id = ?)
		  AND (? = '' OR i.type = ?)
		  AND (? = '' OR i.rarity = ?)
		  AND (? IS NULL OR CAST(r.price AS REAL) >= ?)
		  AND (? IS NULL OR CAST(r.price AS REAL) <= ?)
		  AND (? = '' OR i.name LIKE '%' || ? || '%' OR i.market_hash_name LIKE '%' || ? || '%')
		ORDER BY CAST(r.price AS REAL), i.name`

	// Report queries
	queryListSales = `
		SELECT e.reference, g.id, g.name, e.amount, e.created_at
		FROM ledger_entries e
		JOIN listings l ON l.id = e.reference
		JOIN inventory_items ii ON ii.id = l.inventory_item_id
		JOIN items i ON i.id = ii.item_id
		JOIN games g ON g.id = i.game_id
		WHERE e.category = 'purchase'
		ORDER BY e.created_at`
)
