package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"github.com/shopspring/decimal"
)

func appendEntry(t *testing.T, s *Service, userId, category string, amount decimal.Decimal) *models.LedgerEntry {
	t.Helper()
	var entry *models.LedgerEntry
	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		var err error
		entry, err = tx.AppendLedgerEntry(context.Background(), store.LedgerEntryParams{
			UserId:   userId,
			Amount:   amount,
			Category: category,
		})
		return err
	})
	if err != nil {
		t.Fatalf("AppendLedgerEntry failed: %v", err)
	}
	return entry
}

func TestAppendLedgerEntry_Deposit(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	f := seedFixture(t, service)

	amount := decimal.RequireFromString("150.25")
	entry := appendEntry(t, service, f.buyer.Id, models.LedgerDeposit, amount)

	if entry.UserId != f.buyer.Id {
		t.Errorf("Expected userId %s, got %s", f.buyer.Id, entry.UserId)
	}
	if !entry.Amount.Equal(amount) {
		t.Errorf("Expected amount %s, got %s", amount, entry.Amount)
	}
	if !entry.BalanceBefore.IsZero() {
		t.Errorf("Expected balance before 0, got %s", entry.BalanceBefore)
	}
	if !entry.BalanceAfter.Equal(amount) {
		t.Errorf("Expected balance %s, got %s", amount, entry.BalanceAfter)
	}

	user, err := service.GetUser(context.Background(), f.buyer.Id)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if !user.Balance.Equal(amount) {
		t.Errorf("Expected stored balance %s, got %s", amount, user.Balance)
	}
	if user.BalanceVersion != 2 {
		t.Errorf("Expected balance version 2, got %d", user.BalanceVersion)
	}
}

func TestAppendLedgerEntry_Withdrawal(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	f := seedFixture(t, service)

	appendEntry(t, service, f.buyer.Id, models.LedgerDeposit, decimal.NewFromInt(2))
	entry := appendEntry(t, service, f.buyer.Id, models.LedgerWithdrawal, decimal.RequireFromString("-0.5"))

	expected := decimal.RequireFromString("1.5")
	if !entry.BalanceAfter.Equal(expected) {
		t.Errorf("Expected balance %s, got %s", expected, entry.BalanceAfter)
	}
}

func TestAppendLedgerEntry_UnknownUser(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	err := service.WithTx(context.Background(), func(tx store.Tx) error {
		_, err := tx.AppendLedgerEntry(context.Background(), store.LedgerEntryParams{
			UserId: "ghost", Amount: decimal.NewFromInt(1), Category: models.LedgerDeposit,
		})
		return err
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAppendLedgerEntry_ExactDecimalArithmetic(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	f := seedFixture(t, service)

	// 0.1 added ten times is exactly 1 only when amounts are not stored as floats.
	for i := 0; i < 10; i++ {
		appendEntry(t, service, f.buyer.Id, models.LedgerDeposit, decimal.RequireFromString("0.1"))
	}

	result, err := service.ReconcileUserBalance(context.Background(), f.buyer.Id)
	if err != nil {
		t.Fatalf("ReconcileUserBalance failed: %v", err)
	}
	if !result.Balance.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected balance 1, got %s", result.Balance)
	}
	if !result.Matches() {
		t.Errorf("Expected balance to match ledger sum, difference %s", result.Difference())
	}
}

func TestReconcileUserBalance_DetectsDrift(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	f := seedFixture(t, service)
	ctx := context.Background()

	appendEntry(t, service, f.buyer.Id, models.LedgerDeposit, decimal.NewFromInt(10))

	if _, err := service.db.ExecContext(ctx, "UPDATE users SET balance = '12' WHERE id = ?", f.buyer.Id); err != nil {
		t.Fatalf("Failed to corrupt balance: %v", err)
	}

	result, err := service.ReconcileUserBalance(ctx, f.buyer.Id)
	if err != nil {
		t.Fatalf("ReconcileUserBalance failed: %v", err)
	}
	if result.Matches() {
		t.Fatal("Expected mismatch to be detected")
	}
	if !result.Difference().Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected difference 2, got %s", result.Difference())
	}
}

func TestGetLedgerHistory_NewestFirstWithPaging(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	f := seedFixture(t, service)

	for i := 1; i <= 3; i++ {
		appendEntry(t, service, f.buyer.Id, models.LedgerDeposit, decimal.NewFromInt(int64(i)))
	}

	history, err := service.GetLedgerHistory(context.Background(), f.buyer.Id, 2, 0)
	if err != nil {
		t.Fatalf("GetLedgerHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(history))
	}
	if !history[0].Amount.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected newest entry first, got amount %s", history[0].Amount)
	}

	rest, err := service.GetLedgerHistory(context.Background(), f.buyer.Id, 2, 2)
	if err != nil {
		t.Fatalf("GetLedgerHistory failed: %v", err)
	}
	if len(rest) != 1 || !rest[0].Amount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected oldest entry on second page, got %+v", rest)
	}
}

func TestMirrorOutbox(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	f := seedFixture(t, service)
	ctx := context.Background()

	first := appendEntry(t, service, f.buyer.Id, models.LedgerDeposit, decimal.NewFromInt(5))
	appendEntry(t, service, f.buyer.Id, models.LedgerDeposit, decimal.NewFromInt(6))

	pending, err := service.ListUnmirroredEntries(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnmirroredEntries failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending entries, got %d", len(pending))
	}
	if pending[0].Id != first.Id {
		t.Errorf("Expected oldest entry first")
	}

	if err := service.MarkEntryMirrored(ctx, first.Id, time.Now()); err != nil {
		t.Fatalf("MarkEntryMirrored failed: %v", err)
	}

	pending, err = service.ListUnmirroredEntries(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnmirroredEntries failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Id == first.Id {
		t.Errorf("Expected only the second entry to remain pending, got %d", len(pending))
	}
}
