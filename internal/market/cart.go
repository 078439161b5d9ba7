package market

import (
	"context"
	"errors"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"go.uber.org/zap"
)

// AddToCart reserves nothing; it only records the buyer's interest in an Active listing.
func (e *Engine) AddToCart(ctx context.Context, userId, listingId string) (*models.CartEntry, error) {
	var entry *models.CartEntry
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := e.loadUser(ctx, tx, userId, "user"); err != nil {
			return err
		}
		listing, err := e.loadListing(ctx, tx, listingId)
		if err != nil {
			return err
		}
		if listing.Status != models.ListingActive {
			return InvalidState("listing %s is %s and cannot be added to a cart", listingId, listing.Status)
		}
		if listing.SellerId == userId {
			return BusinessRule("cannot add your own listing to the cart")
		}

		entry = &models.CartEntry{
			Id:        e.newId(),
			UserId:    userId,
			ListingId: listingId,
			AddedAt:   e.now(),
		}
		err = tx.InsertCartEntry(ctx, entry)
		if errors.Is(err, store.ErrDuplicate) {
			return Conflict("listing %s is already in the cart", listingId)
		}
		return err
	})
	if err != nil {
		return nil, classify(err, "add to cart")
	}

	zap.L().Debug("Added to cart", zap.String("user_id", userId), zap.String("listing_id", listingId))
	return entry, nil
}

func (e *Engine) RemoveFromCart(ctx context.Context, userId, listingId string) error {
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.DeleteCartEntry(ctx, userId, listingId)
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("listing %s is not in the cart", listingId)
		}
		return err
	})
	return classify(err, "remove from cart")
}

// Cart lists the user's cart lines, oldest first, including lines whose listing is no longer Active.
func (e *Engine) Cart(ctx context.Context, userId string) ([]models.CartLine, error) {
	if _, err := e.requireUser(ctx, userId); err != nil {
		return nil, err
	}
	return e.store.ListCart(ctx, userId)
}
