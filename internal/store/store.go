package store

import (
	"context"
	"errors"
	"time"

	"skin-market-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("record not found")
	ErrDuplicate              = errors.New("duplicate record")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// LedgerEntryParams describes one balance movement. Amount is signed.
type LedgerEntryParams struct {
	UserId      string
	Amount      decimal.Decimal
	Category    string
	Description string
	Reference   string
}

// RelistParams reactivates a Sold or Cancelled listing row.
type RelistParams struct {
	ListingId string
	Version   int64
	SellerId  string
	Price     decimal.Decimal
	At        time.Time
}

// CreateUserParams contains the fields needed to register a user.
type CreateUserParams struct {
	Username    string
	SteamId     string
	DisplayName string
	Role        models.Role
	TradeUrl    string
	AvatarUrl   string
}

// Sale is one completed purchase as recorded in the ledger.
type Sale struct {
	ListingId string
	GameId    string
	GameName  string
	Price     decimal.Decimal
	SoldAt    time.Time
}

// Tx is the unit of work used by the marketplace engine. Every mutation is
// conditional on the state that was read inside the same transaction and
// reports ErrConcurrentModification when that state has moved.
type Tx interface {
	GetUser(ctx context.Context, userId string) (*models.User, error)
	GetListing(ctx context.Context, listingId string) (*models.Listing, error)
	GetListingByInventoryItem(ctx context.Context, inventoryItemId string) (*models.Listing, error)
	GetInventoryItem(ctx context.Context, inventoryItemId string) (*models.InventoryItem, error)

	InsertListing(ctx context.Context, listing *models.Listing) error
	RelistListing(ctx context.Context, params RelistParams) error
	MarkListingSold(ctx context.Context, listingId string, version int64, buyerId string, at time.Time) error
	CancelListing(ctx context.Context, listingId string, version int64, at time.Time) error
	TransferInventoryItem(ctx context.Context, inventoryItemId, fromUserId, toUserId string, at time.Time) error

	AppendLedgerEntry(ctx context.Context, params LedgerEntryParams) (*models.LedgerEntry, error)

	InsertCartEntry(ctx context.Context, entry *models.CartEntry) error
	DeleteCartEntry(ctx context.Context, userId, listingId string) error
	DeleteCartEntriesForListing(ctx context.Context, listingId string) (int64, error)
}

// MarketStore defines the contract the marketplace engine and its read paths consume.
type MarketStore interface {
	// --- Units of work ---
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// --- Users ---
	GetUser(ctx context.Context, userId string) (*models.User, error)
	FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
	UpdateUserRole(ctx context.Context, userId string, role models.Role) error

	// --- Catalog ---
	ListGames(ctx context.Context) ([]models.Game, error)
	ListCatalog(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogEntry, error)
	ListInventory(ctx context.Context, userId string) ([]models.InventoryLine, error)
	ListAllListings(ctx context.Context) ([]models.ListingView, error)
	ActiveListingCountsBySeller(ctx context.Context) ([]models.SellerListingCount, error)
	ListCart(ctx context.Context, userId string) ([]models.CartLine, error)

	// --- Prices ---
	BestInternalPrice(ctx context.Context, itemId string) (decimal.Decimal, bool, error)
	BestExternalPrice(ctx context.Context, itemId string) (*models.PriceQuote, error)
	ListPriceComparisons(ctx context.Context, filter models.PriceFilter) ([]models.PriceComparison, error)
	ListItemTypes(ctx context.Context) ([]string, error)
	ListItemRarities(ctx context.Context) ([]string, error)

	// --- Ledger ---
	GetLedgerHistory(ctx context.Context, userId string, limit, offset int) ([]models.LedgerEntry, error)
	ReconcileUserBalance(ctx context.Context, userId string) (*models.ReconcileResult, error)
	ListUnmirroredEntries(ctx context.Context, limit int) ([]models.LedgerEntry, error)
	MarkEntryMirrored(ctx context.Context, entryId string, at time.Time) error

	// --- Reports ---
	CountUsers(ctx context.Context) (int, error)
	CountListingsByStatus(ctx context.Context) (map[models.ListingStatus]int, error)
	ListSales(ctx context.Context) ([]Sale, error)

	// --- Lifecycle ---
	Close()
}
