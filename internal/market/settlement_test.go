package market

import (
	"context"
	"sync"
	"testing"

	"skin-market-go/internal/models"

	"github.com/shopspring/decimal"
)

func TestPurchase_SettlesListing(t *testing.T) {
	engine, service, cleanup := setupEngine(t)
	defer cleanup()
	w := seedWorld(t, service)
	ctx := context.Background()

	fund(t, engine, w.buyer.Id, "100.00")
	listing := list(t, engine, w.seller.Id, w.inv.Id, "10.00")
	if _, err := engine.AddToCart(ctx, w.buyer.Id, listing.Id); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	receipt, err := engine.Purchase(ctx, w.buyer.Id, listing.Id)
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	if !receipt.Commission.Equal(decimal.RequireFromString("0.50")) {
		t.Errorf("Expected commission 0.50, got %s", receipt.Commission)
	}
	if !receipt.BuyerBalance.Equal(decimal.NewFromInt(90)) {
		t.Errorf("Expected buyer balance 90, got %s", receipt.BuyerBalance)
	}
	if !receipt.SellerBalance.Equal(decimal.RequireFromString("9.50")) {
		t.Errorf("Expected seller balance 9.50, got %s", receipt.SellerBalance)
	}
	if !balanceOf(t, service, w.buyer.Id).Equal(decimal.NewFromInt(90)) {
		t.Errorf("Stored buyer balance does not match receipt")
	}
	if !balanceOf(t, service, w.seller.Id).Equal(decimal.RequireFromString("9.50")) {
		t.Errorf("Stored seller balance does not match receipt")
	}

	inventory, err := engine.Inventory(ctx, w.buyer.Id)
	if err != nil {
		t.Fatalf("Inventory failed: %v", err)
	}
	if len(inventory) != 1 || inventory[0].InventoryItemId != w.inv.Id {
		t.Errorf("Expected buyer to own the item, got %+v", inventory)
	}

	cart, err := engine.Cart(ctx, w.buyer.Id)
	if err != nil {
		t.Fatalf("Cart failed: %v", err)
	}
	if len(cart) != 0 {
		t.Errorf("Expected sold listing to leave the cart, got %d lines", len(cart))
	}

	sellerHistory, err := engine.History(ctx, w.seller.Id, 0, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(sellerHistory) != 1 || sellerHistory[0].Category != models.LedgerSale || sellerHistory[0].Reference != listing.Id {
		t.Errorf("Unexpected seller ledger: %+v", sellerHistory)
	}

	for _, id := range []string{w.buyer.Id, w.seller.Id} {
		result, err := engine.Reconcile(ctx, id)
		if err != nil {
			t.Fatalf("Reconcile failed: %v", err)
		}
		if !result.Matches() {
			t.Errorf("Balance drifted from ledger for %s by %s", id, result.Difference())
		}
	}

	// The new owner can put the item back on the market.
	relisted := list(t, engine, w.buyer.Id, w.inv.Id, "12.00")
	if relisted.Id != listing.Id || relisted.SellerId != w.buyer.Id {
		t.Errorf("Expected buyer to relist the same row, got %+v", relisted)
	}
}

func TestPurchase_PreconditionOrder(t *testing.T) {
	engine, service, cleanup := setupEngine(t)
	defer cleanup()
	w := seedWorld(t, service)
	ctx := context.Background()

	listing := list(t, engine, w.seller.Id, w.inv.Id, "10.00")

	_, err := engine.Purchase(ctx, "ghost", listing.Id)
	expectKind(t, err, KindNotFound)

	_, err = engine.Purchase(ctx, w.buyer.Id, "missing")
	expectKind(t, err, KindNotFound)

	// Own listing is refused before the balance is considered.
	_, err = engine.Purchase(ctx, w.seller.Id, listing.Id)
	expectKind(t, err, KindBusinessRule)

	_, err = engine.Purchase(ctx, w.buyer.Id, listing.Id)
	expectKind(t, err, KindInsufficientFunds)

	if _, err := engine.CancelListing(ctx, w.seller.Id, listing.Id); err != nil {
		t.Fatalf("CancelListing failed: %v", err)
	}
	// State is checked before funds.
	_, err = engine.Purchase(ctx, w.buyer.Id, listing.Id)
	expectKind(t, err, KindInvalidState)
}

func TestPurchase_FailureLeavesNoTrace(t *testing.T) {
	engine, service, cleanup := setupEngine(t)
	defer cleanup()
	w := seedWorld(t, service)
	ctx := context.Background()

	fund(t, engine, w.buyer.Id, "9.99")
	listing := list(t, engine, w.seller.Id, w.inv.Id, "10.00")

	_, err := engine.Purchase(ctx, w.buyer.Id, listing.Id)
	expectKind(t, err, KindInsufficientFunds)

	if !balanceOf(t, service, w.buyer.Id).Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("Buyer balance changed after failed purchase")
	}
	if !balanceOf(t, service, w.seller.Id).IsZero() {
		t.Errorf("Seller balance changed after failed purchase")
	}
	history, err := engine.History(ctx, w.buyer.Id, 10, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected only the top-up entry, got %d", len(history))
	}

	catalog, err := engine.Catalog(ctx, models.CatalogFilter{})
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if len(catalog) != 1 || catalog[0].ListingId != listing.Id {
		t.Errorf("Expected listing to stay Active, got %+v", catalog)
	}
}

func TestPurchase_ExactBalance(t *testing.T) {
	engine, service, cleanup := setupEngine(t)
	defer cleanup()
	w := seedWorld(t, service)

	fund(t, engine, w.buyer.Id, "0.70")
	listing := list(t, engine, w.seller.Id, w.inv.Id, "0.70")

	receipt, err := engine.Purchase(context.Background(), w.buyer.Id, listing.Id)
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if !receipt.BuyerBalance.IsZero() {
		t.Errorf("Expected buyer balance 0, got %s", receipt.BuyerBalance)
	}
	if !receipt.Commission.Equal(decimal.RequireFromString("0.04")) || !receipt.SellerAmount.Equal(decimal.RequireFromString("0.66")) {
		t.Errorf("Unexpected split: commission %s seller %s", receipt.Commission, receipt.SellerAmount)
	}
}

func TestPurchase_ConcurrentBuyersHaveOneWinner(t *testing.T) {
	engine, service, cleanup := setupEngine(t)
	defer cleanup()
	w := seedWorld(t, service)
	ctx := context.Background()

	rival := newUser(t, service, "rival", "76561198000000003")
	fund(t, engine, w.buyer.Id, "50.00")
	fund(t, engine, rival.Id, "50.00")
	listing := list(t, engine, w.seller.Id, w.inv.Id, "10.00")

	buyers := []string{w.buyer.Id, rival.Id}
	errs := make([]error, len(buyers))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, id := range buyers {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			<-start
			_, errs[i] = engine.Purchase(ctx, id, listing.Id)
		}(i, id)
	}
	close(start)
	wg.Wait()

	winners := 0
	for i, err := range errs {
		if err == nil {
			winners++
			continue
		}
		if !IsKind(err, KindInvalidState) && !IsKind(err, KindConflict) {
			t.Errorf("Buyer %d: expected InvalidState or Conflict, got %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("Expected exactly one winner, got %d", winners)
	}

	if !balanceOf(t, service, w.seller.Id).Equal(decimal.RequireFromString("9.50")) {
		t.Errorf("Seller credited more than once: %s", balanceOf(t, service, w.seller.Id))
	}
	total := balanceOf(t, service, w.buyer.Id).Add(balanceOf(t, service, rival.Id))
	if !total.Equal(decimal.NewFromInt(90)) {
		t.Errorf("Expected buyers to hold 90 together, got %s", total)
	}
}

func TestPurchase_RacesCancel(t *testing.T) {
	engine, service, cleanup := setupEngine(t)
	defer cleanup()
	w := seedWorld(t, service)
	ctx := context.Background()

	fund(t, engine, w.buyer.Id, "50.00")
	listing := list(t, engine, w.seller.Id, w.inv.Id, "10.00")

	var purchaseErr, cancelErr error
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, purchaseErr = engine.Purchase(ctx, w.buyer.Id, listing.Id)
	}()
	go func() {
		defer wg.Done()
		<-start
		_, cancelErr = engine.CancelListing(ctx, w.seller.Id, listing.Id)
	}()
	close(start)
	wg.Wait()

	if (purchaseErr == nil) == (cancelErr == nil) {
		t.Fatalf("Expected exactly one of purchase and cancel to win: purchase=%v cancel=%v", purchaseErr, cancelErr)
	}
	if purchaseErr != nil && !balanceOf(t, service, w.buyer.Id).Equal(decimal.NewFromInt(50)) {
		t.Errorf("Buyer charged although cancel won")
	}
}

func TestPurchaseCart(t *testing.T) {
	engine, service, cleanup := setupEngine(t)
	defer cleanup()
	w := seedWorld(t, service)
	ctx := context.Background()

	_, err := engine.PurchaseCart(ctx, w.buyer.Id)
	expectKind(t, err, KindValidation)

	second, err := service.CreateInventoryItem(ctx, w.item.Id, w.seller.Id, true)
	if err != nil {
		t.Fatalf("CreateInventoryItem failed: %v", err)
	}
	cheap := list(t, engine, w.seller.Id, w.inv.Id, "5.00")
	dear := list(t, engine, w.seller.Id, second.Id, "50.00")
	fund(t, engine, w.buyer.Id, "20.00")

	for _, id := range []string{cheap.Id, dear.Id} {
		if _, err := engine.AddToCart(ctx, w.buyer.Id, id); err != nil {
			t.Fatalf("AddToCart failed: %v", err)
		}
	}

	lines, err := engine.PurchaseCart(ctx, w.buyer.Id)
	if err != nil {
		t.Fatalf("PurchaseCart failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 checkout lines, got %d", len(lines))
	}
	if lines[0].ListingId != cheap.Id || lines[0].Receipt == nil {
		t.Errorf("Expected cheap listing to be bought, got %+v", lines[0])
	}
	if lines[1].ListingId != dear.Id || lines[1].Receipt != nil || lines[1].Error == "" {
		t.Errorf("Expected expensive listing to fail, got %+v", lines[1])
	}

	cart, err := engine.Cart(ctx, w.buyer.Id)
	if err != nil {
		t.Fatalf("Cart failed: %v", err)
	}
	if len(cart) != 1 || cart[0].ListingId != dear.Id {
		t.Errorf("Expected only the unaffordable line to remain, got %+v", cart)
	}
}
