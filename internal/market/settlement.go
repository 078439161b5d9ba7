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

package market

import (
	"context"
	"fmt"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"go.uber.org/zap"
)

// Purchase settles one listing: the buyer is debited the full price, the seller
// is credited the price minus commission, the item changes hands, the listing
// becomes Sold and every cart entry pointing at it is removed. Of two buyers
// racing for the same listing exactly one succeeds; the other sees
// InvalidState or Conflict and nothing of its attempt persists.
func (e *Engine) Purchase(ctx context.Context, buyerId, listingId string) (*models.Receipt, error) {
	var receipt *models.Receipt
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		buyer, err := e.loadUser(ctx, tx, buyerId, "buyer")
		if err != nil {
			return err
		}
		listing, err := e.loadListing(ctx, tx, listingId)
		if err != nil {
			return err
		}
		if listing.SellerId == buyer.Id {
			return BusinessRule("cannot purchase your own listing")
		}
		if listing.Status != models.ListingActive {
			return InvalidState("listing %s is %s and cannot be purchased", listingId, listing.Status)
		}
		seller, err := e.loadUser(ctx, tx, listing.SellerId, "seller")
		if err != nil {
			return err
		}
		if buyer.Balance.LessThan(listing.Price) {
			return InsufficientFunds("balance %s is below price %s",
				buyer.Balance.StringFixed(2), listing.Price.StringFixed(2))
		}

		commission, sellerAmount := SplitCommission(listing.Price)
		now := e.now()

		// The listing claim goes first so a concurrent winner short-circuits the rest.
		if err := tx.MarkListingSold(ctx, listing.Id, listing.Version, buyer.Id, now); err != nil {
			return err
		}

		debit, err := tx.AppendLedgerEntry(ctx, store.LedgerEntryParams{
			UserId:      buyer.Id,
			Amount:      listing.Price.Neg(),
			Category:    models.LedgerPurchase,
			Description: fmt.Sprintf("Purchase of listing %s", listing.Id),
			Reference:   listing.Id,
		})
		if err != nil {
			return err
		}
		credit, err := tx.AppendLedgerEntry(ctx, store.LedgerEntryParams{
			UserId:      seller.Id,
			Amount:      sellerAmount,
			Category:    models.LedgerSale,
			Description: fmt.Sprintf("Sale of listing %s (%s%% commission %s)", listing.Id, CommissionRate.Shift(2).String(), commission.StringFixed(2)),
			Reference:   listing.Id,
		})
		if err != nil {
			return err
		}

		if err := tx.TransferInventoryItem(ctx, listing.InventoryItemId, seller.Id, buyer.Id, now); err != nil {
			return err
		}
		if _, err := tx.DeleteCartEntriesForListing(ctx, listing.Id); err != nil {
			return err
		}

		receipt = &models.Receipt{
			ListingId:       listing.Id,
			InventoryItemId: listing.InventoryItemId,
			BuyerId:         buyer.Id,
			SellerId:        seller.Id,
			Price:           listing.Price,
			Commission:      commission,
			SellerAmount:    sellerAmount,
			BuyerBalance:    debit.BalanceAfter,
			SellerBalance:   credit.BalanceAfter,
			SoldAt:          now,
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, "purchase")
	}

	zap.L().Info("Purchase settled",
		zap.String("listing_id", receipt.ListingId),
		zap.String("buyer_id", receipt.BuyerId),
		zap.String("seller_id", receipt.SellerId),
		zap.String("price", receipt.Price.StringFixed(2)),
		zap.String("commission", receipt.Commission.StringFixed(2)))

	return receipt, nil
}

// PurchaseCart attempts every line of the buyer's cart in order. Each line is
// its own unit of work; business-rule failures are reported per line and do
// not stop the remaining lines. An infrastructure failure aborts the checkout.
func (e *Engine) PurchaseCart(ctx context.Context, buyerId string) ([]models.CheckoutLine, error) {
	lines, err := e.Cart(ctx, buyerId)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, Validation("cart is empty")
	}

	results := make([]models.CheckoutLine, 0, len(lines))
	for _, line := range lines {
		receipt, err := e.Purchase(ctx, buyerId, line.ListingId)
		if err != nil {
			if _, ok := KindOf(err); !ok {
				return results, err
			}
			results = append(results, models.CheckoutLine{ListingId: line.ListingId, Error: err.Error()})
			continue
		}
		results = append(results, models.CheckoutLine{ListingId: line.ListingId, Receipt: receipt})
	}
	return results, nil
}
