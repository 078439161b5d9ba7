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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog sort orders
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// CatalogFilter narrows the active listing catalog
type CatalogFilter struct {
	GameId string `json:"game_id,omitempty"`
	Search string `json:"search,omitempty"`
	SortBy string `json:"sort_by,omitempty"`
}

// CatalogEntry is an Active listing joined with its item, game and seller
type CatalogEntry struct {
	ListingId       string          `json:"listing_id"`
	InventoryItemId string          `json:"inventory_item_id"`
	ItemId          string          `json:"item_id"`
	ItemName        string          `json:"item_name"`
	ItemType        string          `json:"item_type"`
	Rarity          string          `json:"rarity"`
	IconUrl         string          `json:"icon_url,omitempty"`
	GameId          string          `json:"game_id"`
	GameName        string          `json:"game_name"`
	SellerId        string          `json:"seller_id"`
	SellerName      string          `json:"seller_name"`
	Price           decimal.Decimal `json:"price"`
	ListedAt        time.Time       `json:"listed_at"`
}

// ListingView is a listing of any status with display names, for admin screens
type ListingView struct {
	Listing
	ItemName   string `json:"item_name"`
	GameName   string `json:"game_name"`
	SellerName string `json:"seller_name"`
	BuyerName  string `json:"buyer_name,omitempty"`
}

// CartLine is one cart entry with the state of the listing it points to
type CartLine struct {
	CartEntryId string          `json:"cart_entry_id"`
	ListingId   string          `json:"listing_id"`
	ItemName    string          `json:"item_name"`
	GameName    string          `json:"game_name"`
	SellerName  string          `json:"seller_name"`
	Price       decimal.Decimal `json:"price"`
	Status      ListingStatus   `json:"status"`
	AddedAt     time.Time       `json:"added_at"`
}

// InventoryLine is an owned inventory item and its current asking price, if listed
type InventoryLine struct {
	InventoryItemId string           `json:"inventory_item_id"`
	ItemId          string           `json:"item_id"`
	ItemName        string           `json:"item_name"`
	GameName        string           `json:"game_name"`
	Rarity          string           `json:"rarity"`
	IsTradable      bool             `json:"is_tradable"`
	AcquiredAt      time.Time        `json:"acquired_at"`
	ListingId       string           `json:"listing_id,omitempty"`
	ListedPrice     *decimal.Decimal `json:"listed_price,omitempty"`
}

// PriceQuote is the best known price for an item from one source
type PriceQuote struct {
	ItemId      string          `json:"item_id"`
	Found       bool            `json:"found"`
	Price       decimal.Decimal `json:"price"`
	Marketplace string          `json:"marketplace,omitempty"`
	Currency    string          `json:"currency,omitempty"`
	ListingUrl  string          `json:"listing_url,omitempty"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// PriceFilter narrows external price comparisons
type PriceFilter struct {
	GameId   string           `json:"game_id,omitempty"`
	Type     string           `json:"type,omitempty"`
	Rarity   string           `json:"rarity,omitempty"`
	MinPrice *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`
	Search   string           `json:"search,omitempty"`
}

// PriceComparison is the cheapest external offer for one item
type PriceComparison struct {
	ItemId         string          `json:"item_id"`
	ItemName       string          `json:"item_name"`
	MarketHashName string          `json:"market_hash_name"`
	GameName       string          `json:"game_name"`
	Type           string          `json:"type"`
	Rarity         string          `json:"rarity"`
	BestPrice      decimal.Decimal `json:"best_price"`
	Currency       string          `json:"currency"`
	Marketplace    string          `json:"marketplace"`
	MarketplaceUrl string          `json:"marketplace_url,omitempty"`
	ListingUrl     string          `json:"listing_url,omitempty"`
	OfferCount     int             `json:"offer_count"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Receipt is the outcome of a completed purchase
type Receipt struct {
	ListingId       string          `json:"listing_id"`
	InventoryItemId string          `json:"inventory_item_id"`
	BuyerId         string          `json:"buyer_id"`
	SellerId        string          `json:"seller_id"`
	Price           decimal.Decimal `json:"price"`
	Commission      decimal.Decimal `json:"commission"`
	SellerAmount    decimal.Decimal `json:"seller_amount"`
	BuyerBalance    decimal.Decimal `json:"buyer_balance"`
	SellerBalance   decimal.Decimal `json:"seller_balance"`
	SoldAt          time.Time       `json:"sold_at"`
}

// CheckoutLine is the per-listing outcome of buying a whole cart
type CheckoutLine struct {
	ListingId string   `json:"listing_id"`
	Receipt   *Receipt `json:"receipt,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// GameTurnover aggregates sold listings for one game
type GameTurnover struct {
	GameId    string          `json:"game_id"`
	GameName  string          `json:"game_name"`
	SoldCount int             `json:"sold_count"`
	Turnover  decimal.Decimal `json:"turnover"`
}

// Summary is the admin report consumed by document renderers
type Summary struct {
	TotalUsers     int             `json:"total_users"`
	ActiveListings int             `json:"active_listings"`
	SoldListings   int             `json:"sold_listings"`
	Turnover       decimal.Decimal `json:"turnover"`
	Commission     decimal.Decimal `json:"commission"`
	SellerRevenue  decimal.Decimal `json:"seller_revenue"`
	TopGames       []GameTurnover  `json:"top_games"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// Statement is a user's balance history, newest first
type Statement struct {
	User        User            `json:"user"`
	Entries     []LedgerEntry   `json:"entries"`
	Credits     decimal.Decimal `json:"credits"`
	Debits      decimal.Decimal `json:"debits"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// SellerListingCount is the number of Active listings per seller
type SellerListingCount struct {
	SellerId    string `json:"seller_id"`
	Username    string `json:"username"`
	ActiveCount int    `json:"active_count"`
}

// ReconcileResult compares a live balance with the ledger sum
type ReconcileResult struct {
	UserId    string          `json:"user_id"`
	Username  string          `json:"username"`
	Balance   decimal.Decimal `json:"balance"`
	LedgerSum decimal.Decimal `json:"ledger_sum"`
}

// Matches reports whether the balance equals the ledger sum.
func (r ReconcileResult) Matches() bool {
	return r.Balance.Equal(r.LedgerSum)
}

// Difference is balance minus ledger sum.
func (r ReconcileResult) Difference() decimal.Decimal {
	return r.Balance.Sub(r.LedgerSum)
}
