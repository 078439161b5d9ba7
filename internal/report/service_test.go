package report

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"skin-market-go/internal/database"
	"skin-market-go/internal/market"
	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"github.com/shopspring/decimal"
)

type reportFixture struct {
	db     *database.Service
	engine *market.Engine
	seller *models.User
	buyer  *models.User
}

func setupReport(t *testing.T) (reportFixture, func()) {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewService(ctx, models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "report.db"),
		MaxOpenConns: 2,
		PingTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	seller, err := db.CreateUser(ctx, store.CreateUserParams{Username: "seller", SteamId: "76561198000000001"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	buyer, err := db.CreateUser(ctx, store.CreateUserParams{Username: "buyer", SteamId: "76561198000000002"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return reportFixture{db: db, engine: market.NewEngine(db), seller: seller, buyer: buyer}, db.Close
}

// sell lists a fresh copy of an item in game and has the buyer purchase it.
func (f reportFixture) sell(t *testing.T, game *models.Game, price string) {
	t.Helper()
	ctx := context.Background()

	item, err := f.db.CreateItem(ctx, models.Item{GameId: game.Id, Type: "Skin", Name: game.Name + " item " + price})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	inv, err := f.db.CreateInventoryItem(ctx, item.Id, f.seller.Id, true)
	if err != nil {
		t.Fatalf("CreateInventoryItem failed: %v", err)
	}
	listing, err := f.engine.CreateOrRelist(ctx, f.seller.Id, inv.Id, decimal.RequireFromString(price))
	if err != nil {
		t.Fatalf("CreateOrRelist failed: %v", err)
	}
	if _, err := f.engine.Purchase(ctx, f.buyer.Id, listing.Id); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
}

func TestSummary(t *testing.T) {
	f, cleanup := setupReport(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := f.engine.TopUp(ctx, f.buyer.Id, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("TopUp failed: %v", err)
	}

	names := []string{"Counter-Strike 2", "Dota 2", "Rust", "Team Fortress 2", "PUBG", "Unturned"}
	games := make([]*models.Game, len(names))
	for i, name := range names {
		g, err := f.db.CreateGame(ctx, models.Game{Name: name, AppId: int64(i + 1)})
		if err != nil {
			t.Fatalf("CreateGame failed: %v", err)
		}
		games[i] = g
	}

	f.sell(t, games[0], "0.70")
	f.sell(t, games[0], "1.30")
	f.sell(t, games[1], "100.00")
	f.sell(t, games[2], "10.00")
	f.sell(t, games[3], "5.00")
	f.sell(t, games[4], "3.00")
	f.sell(t, games[5], "1.00")

	summary, err := NewService(f.db).Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if summary.TotalUsers != 2 || summary.SoldListings != 7 || summary.ActiveListings != 0 {
		t.Errorf("Unexpected counts: %+v", summary)
	}
	if !summary.Turnover.Equal(decimal.RequireFromString("121.00")) {
		t.Errorf("Expected turnover 121.00, got %s", summary.Turnover)
	}
	// Per-sale commissions: 0.04 + 0.07 + 5 + 0.50 + 0.25 + 0.15 + 0.05.
	if !summary.Commission.Equal(decimal.RequireFromString("6.06")) {
		t.Errorf("Expected commission 6.06, got %s", summary.Commission)
	}
	if !summary.SellerRevenue.Equal(decimal.RequireFromString("114.94")) {
		t.Errorf("Expected seller revenue 114.94, got %s", summary.SellerRevenue)
	}

	if len(summary.TopGames) != 5 {
		t.Fatalf("Expected top 5 games, got %d", len(summary.TopGames))
	}
	if summary.TopGames[0].GameName != "Dota 2" {
		t.Errorf("Expected Dota 2 first, got %s", summary.TopGames[0].GameName)
	}
	if summary.TopGames[4].GameName != "Counter-Strike 2" || summary.TopGames[4].SoldCount != 2 {
		t.Errorf("Unexpected fifth game: %+v", summary.TopGames[4])
	}
	for _, g := range summary.TopGames {
		if g.GameName == "Unturned" {
			t.Error("Expected the smallest game to fall out of the top 5")
		}
	}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, summary); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"MARKETPLACE SUMMARY", "121.00", "6.06", "Dota 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary output to contain %q", want)
		}
	}
}

func TestUserStatement(t *testing.T) {
	f, cleanup := setupReport(t)
	defer cleanup()
	ctx := context.Background()
	reports := NewService(f.db)

	_, err := reports.UserStatement(ctx, "ghost")
	if !market.IsKind(err, market.KindNotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}

	_, err = reports.UserStatement(ctx, f.buyer.Id)
	if !market.IsKind(err, market.KindValidation) {
		t.Errorf("Expected Validation for empty history, got %v", err)
	}

	if _, err := f.engine.TopUp(ctx, f.buyer.Id, decimal.NewFromInt(50)); err != nil {
		t.Fatalf("TopUp failed: %v", err)
	}
	if _, err := f.engine.Withdraw(ctx, f.buyer.Id, decimal.RequireFromString("12.50")); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	statement, err := reports.UserStatement(ctx, f.buyer.Id)
	if err != nil {
		t.Fatalf("UserStatement failed: %v", err)
	}
	if len(statement.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(statement.Entries))
	}
	if !statement.Credits.Equal(decimal.NewFromInt(50)) || !statement.Debits.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("Unexpected totals: credits %s debits %s", statement.Credits, statement.Debits)
	}

	var buf bytes.Buffer
	if err := WriteStatement(&buf, statement); err != nil {
		t.Fatalf("WriteStatement failed: %v", err)
	}
	if !strings.Contains(buf.String(), "withdrawal") || !strings.Contains(buf.String(), "-12.50") {
		t.Errorf("Unexpected statement output:\n%s", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteReconciliation(t *testing.T) {
	results := []models.ReconcileResult{
		{Username: "alice", Balance: decimal.NewFromInt(10), LedgerSum: decimal.NewFromInt(10)},
		{Username: "bob", Balance: decimal.NewFromInt(12), LedgerSum: decimal.NewFromInt(10)},
	}

	var buf bytes.Buffer
	if err := WriteReconciliation(&buf, results); err != nil {
		t.Fatalf("WriteReconciliation failed: %v", err)
	}
	if !strings.Contains(buf.String(), "MISMATCH 2.00") || !strings.Contains(buf.String(), "1 mismatches") {
		t.Errorf("Expected mismatch to be flagged:\n%s", buf.String())
	}

	if err := WriteReconciliation(failingWriter{}, results); err == nil {
		t.Error("Expected write error to surface")
	}
}

func TestUserStatement_ReadsPastOnePage(t *testing.T) {
	f, cleanup := setupReport(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := f.engine.TopUp(ctx, f.buyer.Id, decimal.NewFromInt(1)); err != nil {
			t.Fatalf("TopUp failed: %v", err)
		}
	}

	for _, pageSize := range []int{1, 3, 7, 50} {
		reports := NewService(f.db)
		reports.pageSize = pageSize

		statement, err := reports.UserStatement(ctx, f.buyer.Id)
		if err != nil {
			t.Fatalf("UserStatement failed with page size %d: %v", pageSize, err)
		}
		if len(statement.Entries) != 7 {
			t.Errorf("Page size %d: expected 7 entries, got %d", pageSize, len(statement.Entries))
		}
		if !statement.Credits.Equal(decimal.NewFromInt(7)) {
			t.Errorf("Page size %d: expected credits 7, got %s", pageSize, statement.Credits)
		}
		seen := make(map[string]bool)
		for _, e := range statement.Entries {
			if seen[e.Id] {
				t.Errorf("Page size %d: entry %s returned twice", pageSize, e.Id)
			}
			seen[e.Id] = true
		}
	}
}
