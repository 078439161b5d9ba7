package database

import (
	"context"
	"fmt"
	"time"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) ListGames(ctx context.Context) ([]models.Game, error) {
	rows, err := s.db.QueryContext(ctx, queryListGames)
	if err != nil {
		return nil, fmt.Errorf("unable to query games: %w", err)
	}
	defer closeRows(rows)

	var games []models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.Id, &g.Name, &g.AppId, &g.LogoUrl); err != nil {
			return nil, fmt.Errorf("unable to scan game row: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game rows: %w", err)
	}
	return games, nil
}

// ListInventory returns a user's inventory with the price of any Active listing per item.
func (s *Service) ListInventory(ctx context.Context, userId string) ([]models.InventoryLine, error) {
	rows, err := s.db.QueryContext(ctx, queryListInventory, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query inventory: %w", err)
	}
	defer closeRows(rows)

	var lines []models.InventoryLine
	for rows.Next() {
		var line models.InventoryLine
		var acquiredAt timestamp
		var price *string
		err := rows.Scan(&line.InventoryItemId, &line.ItemId, &line.ItemName, &line.GameName, &line.Rarity,
			&line.IsTradable, &acquiredAt, &line.ListingId, &price)
		if err != nil {
			return nil, fmt.Errorf("unable to scan inventory row: %w", err)
		}
		line.AcquiredAt = acquiredAt.Time
		if price != nil {
			p, err := parseDecimal(*price, "listed price")
			if err != nil {
				return nil, err
			}
			line.ListedPrice = &p
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory rows: %w", err)
	}
	return lines, nil
}

func (s *Service) ListItemTypes(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, queryListItemTypes)
}

func (s *Service) ListItemRarities(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, queryListItemRarities)
}

func (s *Service) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to query values: %w", err)
	}
	defer closeRows(rows)

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("unable to scan value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Catalog maintenance. These back the seed command and tests; the engine never writes catalog data.

func (s *Service) CreateGame(ctx context.Context, game models.Game) (*models.Game, error) {
	if game.Id == "" {
		game.Id = uuid.New().String()
	}
	if _, err := s.db.ExecContext(ctx, queryInsertGame, game.Id, game.Name, game.AppId, game.LogoUrl); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("game %s: %w", game.Name, store.ErrDuplicate)
		}
		return nil, fmt.Errorf("unable to insert game: %w", err)
	}
	zap.L().Info("Game created", zap.String("id", game.Id), zap.String("name", game.Name))
	return &game, nil
}

func (s *Service) CreateItem(ctx context.Context, item models.Item) (*models.Item, error) {
	if item.Id == "" {
		item.Id = uuid.New().String()
	}
	if item.MarketHashName == "" {
		item.MarketHashName = item.Name
	}
	_, err := s.db.ExecContext(ctx, queryInsertItem, item.Id, item.GameId, item.Type, item.Rarity,
		item.Name, item.Description, item.IconUrl, item.MarketHashName)
	if err != nil {
		return nil, fmt.Errorf("unable to insert item: %w", err)
	}
	return &item, nil
}

func (s *Service) CreateInventoryItem(ctx context.Context, itemId, userId string, tradable bool) (*models.InventoryItem, error) {
	inv := &models.InventoryItem{
		Id:         uuid.New().String(),
		ItemId:     itemId,
		UserId:     userId,
		IsTradable: tradable,
		AcquiredAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, queryInsertInventoryItem, inv.Id, inv.ItemId, inv.UserId, inv.IsTradable, inv.AcquiredAt)
	if err != nil {
		return nil, fmt.Errorf("unable to insert inventory item: %w", err)
	}
	return inv, nil
}

func (s *Service) CreateMarketplace(ctx context.Context, m models.Marketplace) (*models.Marketplace, error) {
	if m.Id == "" {
		m.Id = uuid.New().String()
	}
	if _, err := s.db.ExecContext(ctx, queryInsertMarketplace, m.Id, m.Name, m.WebsiteUrl, m.IsEnabled); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("marketplace %s: %w", m.Name, store.ErrDuplicate)
		}
		return nil, fmt.Errorf("unable to insert marketplace: %w", err)
	}
	return &m, nil
}

func (s *Service) CreatePriceListing(ctx context.Context, p models.PriceListing) (*models.PriceListing, error) {
	if p.Id == "" {
		p.Id = uuid.New().String()
	}
	if p.CurrencyCode == "" {
		p.CurrencyCode = "USD"
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	if p.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("price listing for item %s must be positive, got %s", p.ItemId, p.Price)
	}
	_, err := s.db.ExecContext(ctx, queryInsertPriceListing, p.Id, p.ItemId, p.MarketplaceId, p.Price.String(),
		p.FloatValue, p.CurrencyCode, p.ListingUrl, p.UpdatedAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("unable to insert price listing: %w", err)
	}
	return &p, nil
}
