package market

import (
	"context"
	"testing"
)

func TestAddToCart(t *testing.T) {
	engine, service, cleanup := setupEngine(t)
	defer cleanup()
	w := seedWorld(t, service)
	ctx := context.Background()

	listing := list(t, engine, w.seller.Id, w.inv.Id, "10.00")

	_, err := engine.AddToCart(ctx, "ghost", listing.Id)
	expectKind(t, err, KindNotFound)

	_, err = engine.AddToCart(ctx, w.buyer.Id, "missing")
	expectKind(t, err, KindNotFound)

	_, err = engine.AddToCart(ctx, w.seller.Id, listing.Id)
	expectKind(t, err, KindBusinessRule)

	entry, err := engine.AddToCart(ctx, w.buyer.Id, listing.Id)
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if entry.UserId != w.buyer.Id || entry.ListingId != listing.Id {
		t.Errorf("Unexpected cart entry: %+v", entry)
	}

	_, err = engine.AddToCart(ctx, w.buyer.Id, listing.Id)
	expectKind(t, err, KindConflict)

	if _, err := engine.CancelListing(ctx, w.seller.Id, listing.Id); err != nil {
		t.Fatalf("CancelListing failed: %v", err)
	}
	_, err = engine.AddToCart(ctx, w.buyer.Id, listing.Id)
	expectKind(t, err, KindInvalidState)
}

func TestRemoveFromCart(t *testing.T) {
	engine, service, cleanup := setupEngine(t)
	defer cleanup()
	w := seedWorld(t, service)
	ctx := context.Background()

	listing := list(t, engine, w.seller.Id, w.inv.Id, "10.00")

	expectKind(t, engine.RemoveFromCart(ctx, w.buyer.Id, listing.Id), KindNotFound)

	if _, err := engine.AddToCart(ctx, w.buyer.Id, listing.Id); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if err := engine.RemoveFromCart(ctx, w.buyer.Id, listing.Id); err != nil {
		t.Fatalf("RemoveFromCart failed: %v", err)
	}

	cart, err := engine.Cart(ctx, w.buyer.Id)
	if err != nil {
		t.Fatalf("Cart failed: %v", err)
	}
	if len(cart) != 0 {
		t.Errorf("Expected empty cart, got %d lines", len(cart))
	}

	_, err = engine.Cart(ctx, "ghost")
	expectKind(t, err, KindNotFound)
}
