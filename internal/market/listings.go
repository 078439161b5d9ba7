package market

import (
	"context"
	"errors"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateOrRelist puts an owned inventory item on sale. An item that was sold
// or cancelled before reuses its listing row with a fresh price and seller.
func (e *Engine) CreateOrRelist(ctx context.Context, sellerId, inventoryItemId string, price decimal.Decimal) (*models.Listing, error) {
	if price.LessThan(MinListingPrice) {
		return nil, Validation("price must be at least %s", MinListingPrice.StringFixed(2))
	}
	if err := validateAmount(price, "price"); err != nil {
		return nil, err
	}

	var listing *models.Listing
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := e.loadUser(ctx, tx, sellerId, "seller"); err != nil {
			return err
		}

		inv, err := tx.GetInventoryItem(ctx, inventoryItemId)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFound("inventory item %s not found", inventoryItemId)
			}
			return err
		}
		if inv.UserId != sellerId {
			return Validation("inventory item %s does not belong to the seller", inventoryItemId)
		}
		if !inv.IsTradable {
			return Validation("inventory item %s is not available for trade", inventoryItemId)
		}

		now := e.now()
		existing, err := tx.GetListingByInventoryItem(ctx, inventoryItemId)
		switch {
		case err == nil:
			if existing.Status == models.ListingActive {
				return Conflict("inventory item %s is already listed", inventoryItemId)
			}
			if err := tx.RelistListing(ctx, store.RelistParams{
				ListingId: existing.Id,
				Version:   existing.Version,
				SellerId:  sellerId,
				Price:     price,
				At:        now,
			}); err != nil {
				return err
			}
			listing, err = tx.GetListing(ctx, existing.Id)
			return err
		case errors.Is(err, store.ErrNotFound):
			listing = &models.Listing{
				Id:              e.newId(),
				InventoryItemId: inventoryItemId,
				SellerId:        sellerId,
				Price:           price,
				Status:          models.ListingActive,
				ListedAt:        now,
				UpdatedAt:       now,
				Version:         1,
			}
			return tx.InsertListing(ctx, listing)
		default:
			return err
		}
	})
	if err != nil {
		return nil, classify(err, "listing")
	}

	zap.L().Info("Listing active",
		zap.String("listing_id", listing.Id),
		zap.String("seller_id", sellerId),
		zap.String("price", listing.Price.StringFixed(2)))

	return listing, nil
}

// CancelListing withdraws an Active listing on behalf of its seller.
func (e *Engine) CancelListing(ctx context.Context, sellerId, listingId string) (*models.Listing, error) {
	return e.cancel(ctx, func(tx store.Tx) (*models.Listing, error) {
		listing, err := e.loadListing(ctx, tx, listingId)
		if err != nil {
			return nil, err
		}
		if listing.SellerId != sellerId {
			return nil, BusinessRule("only the seller can cancel listing %s", listingId)
		}
		return listing, nil
	})
}

// CancelByInventoryItem cancels the Active listing attached to one of the seller's inventory items.
func (e *Engine) CancelByInventoryItem(ctx context.Context, sellerId, inventoryItemId string) (*models.Listing, error) {
	return e.cancel(ctx, func(tx store.Tx) (*models.Listing, error) {
		listing, err := tx.GetListingByInventoryItem(ctx, inventoryItemId)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, NotFound("no listing for inventory item %s", inventoryItemId)
			}
			return nil, err
		}
		if listing.SellerId != sellerId {
			return nil, BusinessRule("only the seller can cancel listing %s", listing.Id)
		}
		return listing, nil
	})
}

// AdminCancelListing cancels any Active listing regardless of seller. Callers authorize the actor.
func (e *Engine) AdminCancelListing(ctx context.Context, listingId string) (*models.Listing, error) {
	return e.cancel(ctx, func(tx store.Tx) (*models.Listing, error) {
		return e.loadListing(ctx, tx, listingId)
	})
}

func (e *Engine) cancel(ctx context.Context, resolve func(tx store.Tx) (*models.Listing, error)) (*models.Listing, error) {
	var cancelled *models.Listing
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		listing, err := resolve(tx)
		if err != nil {
			return err
		}
		if listing.Status != models.ListingActive {
			return InvalidState("listing %s is %s, only Active listings can be cancelled", listing.Id, listing.Status)
		}

		now := e.now()
		if err := tx.CancelListing(ctx, listing.Id, listing.Version, now); err != nil {
			return err
		}
		if _, err := tx.DeleteCartEntriesForListing(ctx, listing.Id); err != nil {
			return err
		}

		listing.Status = models.ListingCancelled
		listing.UpdatedAt = now
		listing.Version++
		cancelled = listing
		return nil
	})
	if err != nil {
		return nil, classify(err, "cancel")
	}

	zap.L().Info("Listing cancelled",
		zap.String("listing_id", cancelled.Id),
		zap.String("seller_id", cancelled.SellerId))

	return cancelled, nil
}
