package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"go.uber.org/zap"
)

// txStore is the store.Tx handed to WithTx callbacks.
type txStore struct {
	tx *sql.Tx
}

var _ store.Tx = (*txStore)(nil)

func (t *txStore) GetUser(ctx context.Context, userId string) (*models.User, error) {
	return getUser(ctx, t.tx, userId)
}

func (t *txStore) GetListing(ctx context.Context, listingId string) (*models.Listing, error) {
	return getListing(ctx, t.tx, queryGetListing, listingId)
}

func (t *txStore) GetListingByInventoryItem(ctx context.Context, inventoryItemId string) (*models.Listing, error) {
	return getListing(ctx, t.tx, queryGetListingByInventoryItem, inventoryItemId)
}

func (t *txStore) GetInventoryItem(ctx context.Context, inventoryItemId string) (*models.InventoryItem, error) {
	return getInventoryItem(ctx, t.tx, inventoryItemId)
}

// InsertListing stores a new Active listing at version 1. Status and Version
// on the passed struct are overwritten to match the stored row.
func (t *txStore) InsertListing(ctx context.Context, listing *models.Listing) error {
	_, err := t.tx.ExecContext(ctx, queryInsertListing, listing.Id, listing.InventoryItemId, listing.SellerId,
		listing.Price.String(), listing.ListedAt.UTC(), listing.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("listing for inventory item %s: %w", listing.InventoryItemId, store.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	listing.Status = models.ListingActive
	listing.Version = 1
	return nil
}

func (t *txStore) RelistListing(ctx context.Context, params store.RelistParams) error {
	result, err := t.tx.ExecContext(ctx, queryRelistListing, params.SellerId, params.Price.String(),
		params.At.UTC(), params.At.UTC(), params.ListingId, params.Version)
	if err != nil {
		return fmt.Errorf("failed to relist listing: %w", err)
	}
	return requireChanged(result, "relist", params.ListingId)
}

func (t *txStore) MarkListingSold(ctx context.Context, listingId string, version int64, buyerId string, at time.Time) error {
	result, err := t.tx.ExecContext(ctx, queryMarkListingSold, buyerId, at.UTC(), at.UTC(), listingId, version)
	if err != nil {
		return fmt.Errorf("failed to mark listing sold: %w", err)
	}
	return requireChanged(result, "sale", listingId)
}

func (t *txStore) CancelListing(ctx context.Context, listingId string, version int64, at time.Time) error {
	result, err := t.tx.ExecContext(ctx, queryCancelListing, at.UTC(), listingId, version)
	if err != nil {
		return fmt.Errorf("failed to cancel listing: %w", err)
	}
	return requireChanged(result, "cancel", listingId)
}

func (t *txStore) TransferInventoryItem(ctx context.Context, inventoryItemId, fromUserId, toUserId string, at time.Time) error {
	result, err := t.tx.ExecContext(ctx, queryTransferInventoryItem, toUserId, at.UTC(), inventoryItemId, fromUserId)
	if err != nil {
		return fmt.Errorf("failed to transfer inventory item: %w", err)
	}
	return requireChanged(result, "ownership transfer", inventoryItemId)
}

func (t *txStore) AppendLedgerEntry(ctx context.Context, params store.LedgerEntryParams) (*models.LedgerEntry, error) {
	return appendLedgerEntry(ctx, t.tx, params)
}

func (t *txStore) InsertCartEntry(ctx context.Context, entry *models.CartEntry) error {
	_, err := t.tx.ExecContext(ctx, queryInsertCartEntry, entry.Id, entry.UserId, entry.ListingId, entry.AddedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cart entry for listing %s: %w", entry.ListingId, store.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert cart entry: %w", err)
	}
	return nil
}

func (t *txStore) DeleteCartEntry(ctx context.Context, userId, listingId string) error {
	result, err := t.tx.ExecContext(ctx, queryDeleteCartEntry, userId, listingId)
	if err != nil {
		return fmt.Errorf("failed to delete cart entry: %w", err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("cart entry for listing %s: %w", listingId, store.ErrNotFound)
	}
	return nil
}

func (t *txStore) DeleteCartEntriesForListing(ctx context.Context, listingId string) (int64, error) {
	result, err := t.tx.ExecContext(ctx, queryDeleteCartEntriesForListing, listingId)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cart entries: %w", err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		zap.L().Debug("Purged cart entries", zap.String("listing_id", listingId), zap.Int64("count", n))
	}
	return n, nil
}

// requireChanged turns a zero-row conditional update into ErrConcurrentModification.
func requireChanged(result sql.Result, op, id string) error {
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s of %s failed - %w", op, id, store.ErrConcurrentModification)
	}
	return nil
}

func getInventoryItem(ctx context.Context, q queryer, inventoryItemId string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	var acquiredAt timestamp
	err := q.QueryRowContext(ctx, queryGetInventoryItem, inventoryItemId).
		Scan(&item.Id, &item.ItemId, &item.UserId, &item.IsTradable, &acquiredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("inventory item %s: %w", inventoryItemId, store.ErrNotFound)
		}
		return nil, fmt.Errorf("unable to query inventory item: %w", err)
	}
	item.AcquiredAt = acquiredAt.Time
	return &item, nil
}
