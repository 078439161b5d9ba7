package report

import (
	"context"
	"errors"
	"sort"
	"time"

	"skin-market-go/internal/market"
	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	topGamesLimit     = 5
	statementPageSize = 500
)

// Service assembles read-only reports from committed marketplace state.
type Service struct {
	store    store.MarketStore
	now      func() time.Time
	pageSize int
}

func NewService(s store.MarketStore) *Service {
	return &Service{
		store:    s,
		now:      func() time.Time { return time.Now().UTC() },
		pageSize: statementPageSize,
	}
}

// Summary aggregates marketplace totals. Sales are taken from the ledger, so a
// listing that was sold, relisted and sold again counts twice.
func (s *Service) Summary(ctx context.Context) (*models.Summary, error) {
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.store.CountListingsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.store.ListSales(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.Summary{
		TotalUsers:     users,
		ActiveListings: byStatus[models.ListingActive],
		SoldListings:   len(sales),
		Turnover:       decimal.Zero,
		Commission:     decimal.Zero,
		GeneratedAt:    s.now(),
	}

	games := make(map[string]*models.GameTurnover)
	for _, sale := range sales {
		commission, _ := market.SplitCommission(sale.Price)
		summary.Turnover = summary.Turnover.Add(sale.Price)
		summary.Commission = summary.Commission.Add(commission)

		g, ok := games[sale.GameId]
		if !ok {
			g = &models.GameTurnover{GameId: sale.GameId, GameName: sale.GameName, Turnover: decimal.Zero}
			games[sale.GameId] = g
		}
		g.SoldCount++
		g.Turnover = g.Turnover.Add(sale.Price)
	}
	summary.SellerRevenue = summary.Turnover.Sub(summary.Commission)
	summary.TopGames = topGames(games, topGamesLimit)

	zap.L().Info("Summary generated",
		zap.Int("sales", len(sales)),
		zap.String("turnover", summary.Turnover.StringFixed(2)))

	return summary, nil
}

// topGames orders by turnover, then sale count, then name for a stable report.
func topGames(games map[string]*models.GameTurnover, limit int) []models.GameTurnover {
	out := make([]models.GameTurnover, 0, len(games))
	for _, g := range games {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Turnover.Cmp(out[j].Turnover); c != 0 {
			return c > 0
		}
		if out[i].SoldCount != out[j].SoldCount {
			return out[i].SoldCount > out[j].SoldCount
		}
		return out[i].GameName < out[j].GameName
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// UserStatement returns the user's full ledger history. A user without any
// balance movement has nothing to report and gets a Validation error.
func (s *Service) UserStatement(ctx context.Context, userId string) (*models.Statement, error) {
	user, err := s.store.GetUser(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, market.NotFound("user %s not found", userId)
		}
		return nil, err
	}

	entries, err := s.ledgerHistory(ctx, userId)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, market.Validation("user %s has no balance history to report", user.Username)
	}

	statement := &models.Statement{
		User:        *user,
		Entries:     entries,
		Credits:     decimal.Zero,
		Debits:      decimal.Zero,
		GeneratedAt: s.now(),
	}
	for _, e := range entries {
		if e.Amount.IsNegative() {
			statement.Debits = statement.Debits.Add(e.Amount.Abs())
		} else {
			statement.Credits = statement.Credits.Add(e.Amount)
		}
	}
	return statement, nil
}

// ledgerHistory reads every entry of the user's history, page by page.
func (s *Service) ledgerHistory(ctx context.Context, userId string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	for offset := 0; ; offset += s.pageSize {
		page, err := s.store.GetLedgerHistory(ctx, userId, s.pageSize, offset)
		if err != nil {
			return nil, err
		}
		entries = append(entries, page...)
		if len(page) < s.pageSize {
			return entries, nil
		}
	}
}
