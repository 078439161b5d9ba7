package formance

import (
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"skin-market-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
)

// ---------- Unit tests for pure helpers (no Formance stack needed) ----------

func TestFormanceAsset(t *testing.T) {
	if got := formanceAsset(); got != "USD/2" {
		t.Errorf("formanceAsset() = %q, want USD/2", got)
	}
}

func TestSmallestUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0.50", "50"},
		{"100", "10000"},
		{"-19.99", "1999"},
		{"9.5", "950"},
		{"0.01", "1"},
	}
	for _, tt := range tests {
		if got := smallestUnits(decimal.RequireFromString(tt.amount)); got != tt.want {
			t.Errorf("smallestUnits(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestBigIntToDecimal(t *testing.T) {
	result := bigIntToDecimal(big.NewInt(1999))
	if !result.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("expected 19.99, got %s", result)
	}
	if !bigIntToDecimal(nil).IsZero() {
		t.Error("nil should convert to zero")
	}
}

func TestVolumeBalance(t *testing.T) {
	vols := map[string]shared.V2Volume{
		"USD/2": {Input: big.NewInt(1000), Output: big.NewInt(250)},
	}
	if got := volumeBalance(vols, "USD/2"); got == nil || got.Int64() != 750 {
		t.Errorf("expected 750, got %v", got)
	}
	if got := volumeBalance(vols, "EUR/2"); got != nil {
		t.Errorf("expected nil for missing asset, got %v", got)
	}

	vols["USD/2"] = shared.V2Volume{Input: big.NewInt(1000), Output: big.NewInt(250), Balance: big.NewInt(10)}
	if got := volumeBalance(vols, "USD/2"); got.Int64() != 10 {
		t.Errorf("expected explicit balance to win, got %v", got)
	}
}

func TestBuildTransaction(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		entry       models.LedgerEntry
		wantSource  string
		wantListing bool
	}{
		{
			name:       "deposit",
			entry:      models.LedgerEntry{Id: "e1", UserId: "u1", Amount: decimal.RequireFromString("25.00"), Category: models.LedgerDeposit},
			wantSource: "source = @world",
		},
		{
			name:       "withdrawal",
			entry:      models.LedgerEntry{Id: "e2", UserId: "u1", Amount: decimal.RequireFromString("-5.00"), Category: models.LedgerWithdrawal},
			wantSource: "destination = @world",
		},
		{
			name:        "purchase",
			entry:       models.LedgerEntry{Id: "e3", UserId: "u2", Amount: decimal.RequireFromString("-10.00"), Category: models.LedgerPurchase, Reference: "l1"},
			wantSource:  "@listings:$listing_id:escrow",
			wantListing: true,
		},
		{
			name:        "sale",
			entry:       models.LedgerEntry{Id: "e4", UserId: "u1", Amount: decimal.RequireFromString("9.50"), Category: models.LedgerSale, Reference: "l1"},
			wantSource:  "@platform:commission",
			wantListing: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.entry.CreatedAt = created
			tx, err := buildTransaction(tt.entry)
			if err != nil {
				t.Fatalf("buildTransaction failed: %v", err)
			}
			if tx.Reference == nil || *tx.Reference != tt.entry.Id {
				t.Errorf("expected reference %s, got %v", tt.entry.Id, tx.Reference)
			}
			if tx.Timestamp == nil || !tx.Timestamp.Equal(created) {
				t.Errorf("expected timestamp %v, got %v", created, tx.Timestamp)
			}
			if !strings.Contains(tx.Script.Plain, tt.wantSource) {
				t.Errorf("script does not contain %q:\n%s", tt.wantSource, tx.Script.Plain)
			}
			vars := tx.Script.Vars
			if vars["asset"] != "USD/2" || vars["user_id"] != tt.entry.UserId || vars["category"] != tt.entry.Category {
				t.Errorf("unexpected vars: %v", vars)
			}
			if vars["amount"] != smallestUnits(tt.entry.Amount) {
				t.Errorf("expected unsigned cents, got %s", vars["amount"])
			}
			if _, ok := vars["listing_id"]; ok != tt.wantListing {
				t.Errorf("listing_id present = %v, want %v", ok, tt.wantListing)
			}
		})
	}
}

func TestBuildTransactionRejects(t *testing.T) {
	if _, err := buildTransaction(models.LedgerEntry{Id: "e1", Category: "refund"}); err == nil {
		t.Error("expected unknown category to fail")
	}
	if _, err := buildTransaction(models.LedgerEntry{Id: "e1", Category: models.LedgerSale, Amount: decimal.NewFromInt(1)}); err == nil {
		t.Error("expected sale without listing reference to fail")
	}
}

func TestAccountMetadata(t *testing.T) {
	meta := accountMetadata(&models.User{Id: "u1", Username: "alice", SteamId: "76561198000000001", DisplayName: "Alice", Role: models.RoleAdmin})
	if meta["username"] != "alice" || meta["role"] != "Admin" || meta["steam_id"] != "76561198000000001" {
		t.Errorf("unexpected metadata: %v", meta)
	}
	if userAddress("u1") != "users:u1" {
		t.Errorf("unexpected address %s", userAddress("u1"))
	}
}

func TestIsConflictError(t *testing.T) {
	if isConflictError(nil) {
		t.Error("nil should not be a conflict error")
	}
	if isConflictError(errors.New("boom")) {
		t.Error("plain errors should not be conflict errors")
	}
}
