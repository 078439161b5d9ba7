package market

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"skin-market-go/internal/models"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func TestSplitCommission_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.Int64Range(1, 100_000_000).Draw(t, "cents")
		price := decimal.New(cents, -2)

		commission, seller := SplitCommission(price)

		// Half away from zero on non-negative cents is (5c + 50) / 100 in integer arithmetic.
		want := decimal.New((cents*5+50)/100, -2)
		if !commission.Equal(want) {
			t.Fatalf("commission on %s = %s, want %s", price, commission, want)
		}
		if !commission.Add(seller).Equal(price) {
			t.Fatalf("commission %s + seller %s != price %s", commission, seller, price)
		}
		if seller.IsNegative() || commission.Exponent() < -2 {
			t.Fatalf("invalid split of %s: %s / %s", price, commission, seller)
		}
	})
}

// Arbitrary interleavings of top-ups, withdrawals, listings and purchases
// keep every balance equal to its ledger sum and never below zero. Money only
// leaves the system through withdrawals and commission.
func TestLedgerInvariant_Property(t *testing.T) {
	dir := t.TempDir()
	run := 0

	rapid.Check(t, func(t *rapid.T) {
		run++
		engine, service, cleanup := setupEngineAt(t, filepath.Join(dir, fmt.Sprintf("market-%d.db", run)))
		defer cleanup()
		w := seedWorld(t, service)
		ctx := context.Background()

		users := []string{w.seller.Id, w.buyer.Id}
		deposited := decimal.Zero
		withdrawn := decimal.Zero
		commission := decimal.Zero

		steps := rapid.IntRange(1, 25).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			user := rapid.SampledFrom(users).Draw(t, "user")
			amount := decimal.New(rapid.Int64Range(1, 5_000).Draw(t, "cents"), -2)

			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				if _, err := engine.TopUp(ctx, user, amount); err != nil {
					t.Fatalf("TopUp failed: %v", err)
				}
				deposited = deposited.Add(amount)
			case 1:
				_, err := engine.Withdraw(ctx, user, amount)
				if err == nil {
					withdrawn = withdrawn.Add(amount)
				} else if !IsKind(err, KindInsufficientFunds) {
					t.Fatalf("Withdraw failed: %v", err)
				}
			case 2:
				price := amount.Add(MinListingPrice)
				_, err := engine.CreateOrRelist(ctx, user, w.inv.Id, price)
				if err != nil && !IsKind(err, KindValidation) && !IsKind(err, KindConflict) {
					t.Fatalf("CreateOrRelist failed: %v", err)
				}
			case 3:
				active, err := engine.Catalog(ctx, models.CatalogFilter{})
				if err != nil {
					t.Fatalf("Catalog failed: %v", err)
				}
				if len(active) == 0 {
					continue
				}
				receipt, err := engine.Purchase(ctx, user, active[0].ListingId)
				if err == nil {
					commission = commission.Add(receipt.Commission)
				} else if _, ok := KindOf(err); !ok {
					t.Fatalf("Purchase failed: %v", err)
				}
			}
		}

		total := decimal.Zero
		for _, id := range users {
			result, err := engine.Reconcile(ctx, id)
			if err != nil {
				t.Fatalf("Reconcile failed: %v", err)
			}
			if !result.Matches() {
				t.Fatalf("balance %s != ledger sum %s", result.Balance, result.LedgerSum)
			}
			if result.Balance.IsNegative() {
				t.Fatalf("negative balance %s", result.Balance)
			}
			total = total.Add(result.Balance)
		}

		want := deposited.Sub(withdrawn).Sub(commission)
		if !total.Equal(want) {
			t.Fatalf("money not conserved: balances %s, expected %s", total, want)
		}
	})
}
