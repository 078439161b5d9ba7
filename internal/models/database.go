package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role is the closed set of account roles.
type Role uint8

const (
	RoleUser Role = iota
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	default:
		return "User"
	}
}

// ParseRole accepts "user" or "admin" in any case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	}
	return RoleUser, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ListingStatus is the lifecycle state of a market listing
type ListingStatus string

const (
	ListingActive    ListingStatus = "Active"
	ListingSold      ListingStatus = "Sold"
	ListingCancelled ListingStatus = "Cancelled"
)

// Ledger entry categories
const (
	LedgerPurchase   = "purchase"
	LedgerSale       = "sale"
	LedgerDeposit    = "deposit"
	LedgerWithdrawal = "withdrawal"
)

// User represents a marketplace account
type User struct {
	Id             string          `db:"id" json:"id"`
	Username       string          `db:"username" json:"username"`
	SteamId        string          `db:"steam_id" json:"steam_id"`
	DisplayName    string          `db:"display_name" json:"display_name"`
	Role           Role            `db:"role" json:"role"`
	Balance        decimal.Decimal `db:"balance" json:"balance"`
	BalanceVersion int64           `db:"balance_version" json:"-"`
	TradeUrl       string          `db:"trade_url" json:"trade_url,omitempty"`
	AvatarUrl      string          `db:"avatar_url" json:"avatar_url,omitempty"`
	LastSync       *time.Time      `db:"last_sync" json:"last_sync,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// IsAdmin reports whether the user carries the Admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Game is a title whose items are traded
type Game struct {
	Id      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	AppId   int64  `db:"app_id" json:"app_id"`
	LogoUrl string `db:"logo_url" json:"logo_url,omitempty"`
}

// Item is the immutable catalog definition shared by all inventory copies
type Item struct {
	Id             string `db:"id" json:"id"`
	GameId         string `db:"game_id" json:"game_id"`
	Type           string `db:"type" json:"type"`
	Rarity         string `db:"rarity" json:"rarity"`
	Name           string `db:"name" json:"name"`
	Description    string `db:"description" json:"description,omitempty"`
	IconUrl        string `db:"icon_url" json:"icon_url,omitempty"`
	MarketHashName string `db:"market_hash_name" json:"market_hash_name"`
}

// InventoryItem is one owned unit of an Item
type InventoryItem struct {
	Id         string    `db:"id" json:"id"`
	ItemId     string    `db:"item_id" json:"item_id"`
	UserId     string    `db:"user_id" json:"user_id"`
	IsTradable bool      `db:"is_tradable" json:"is_tradable"`
	AcquiredAt time.Time `db:"acquired_at" json:"acquired_at"`
}

// Listing is an offer to sell one inventory item.
// A single row is reused across relist cycles of the same inventory item.
type Listing struct {
	Id              string          `db:"id" json:"id"`
	InventoryItemId string          `db:"inventory_item_id" json:"inventory_item_id"`
	SellerId        string          `db:"seller_id" json:"seller_id"`
	BuyerId         string          `db:"buyer_id" json:"buyer_id,omitempty"`
	Price           decimal.Decimal `db:"price" json:"price"`
	Status          ListingStatus   `db:"status" json:"status"`
	ListedAt        time.Time       `db:"listed_at" json:"listed_at"`
	SoldAt          *time.Time      `db:"sold_at" json:"sold_at,omitempty"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	Version         int64           `db:"version" json:"-"`
}

// CartEntry is a user's intent to buy one listing
type CartEntry struct {
	Id        string    `db:"id" json:"id"`
	UserId    string    `db:"user_id" json:"user_id"`
	ListingId string    `db:"listing_id" json:"listing_id"`
	AddedAt   time.Time `db:"added_at" json:"added_at"`
}

// LedgerEntry is an append-only balance movement (cold data)
type LedgerEntry struct {
	Id            string          `db:"id" json:"id"`
	UserId        string          `db:"user_id" json:"user_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Category      string          `db:"category" json:"category"`
	Description   string          `db:"description" json:"description"`
	Reference     string          `db:"reference" json:"reference,omitempty"`
	BalanceBefore decimal.Decimal `db:"balance_before" json:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after" json:"balance_after"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	MirroredAt    *time.Time      `db:"mirrored_at" json:"-"`
}

// Marketplace is an external trading venue quoted for reference prices
type Marketplace struct {
	Id         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	WebsiteUrl string `db:"website_url" json:"website_url,omitempty"`
	IsEnabled  bool   `db:"is_enabled" json:"is_enabled"`
}

// PriceListing is a read-only external reference price
type PriceListing struct {
	Id            string          `db:"id" json:"id"`
	ItemId        string          `db:"item_id" json:"item_id"`
	MarketplaceId string          `db:"marketplace_id" json:"marketplace_id"`
	Price         decimal.Decimal `db:"price" json:"price"`
	FloatValue    *float64        `db:"float_value" json:"float_value,omitempty"`
	CurrencyCode  string          `db:"currency_code" json:"currency_code"`
	ListingUrl    string          `db:"listing_url" json:"listing_url,omitempty"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
