package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"skin-market-go/internal/models"

	"github.com/shopspring/decimal"
)

// BestInternalPrice returns the lowest Active listing price across every inventory copy of the item.
func (s *Service) BestInternalPrice(ctx context.Context, itemId string) (decimal.Decimal, bool, error) {
	var priceStr string
	err := s.db.QueryRowContext(ctx, queryBestInternalPrice, itemId).Scan(&priceStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("unable to query best internal price: %w", err)
	}
	price, err := parseDecimal(priceStr, "price")
	if err != nil {
		return decimal.Zero, false, err
	}
	return price, true, nil
}

// BestExternalPrice returns the cheapest external reference price for the item
// among enabled marketplaces. Found is false when none of them quotes the item.
func (s *Service) BestExternalPrice(ctx context.Context, itemId string) (*models.PriceQuote, error) {
	quote := &models.PriceQuote{ItemId: itemId}

	var priceStr string
	var updatedAt timestamp
	err := s.db.QueryRowContext(ctx, queryBestExternalPrice, itemId).
		Scan(&priceStr, &quote.Marketplace, &quote.Currency, &quote.ListingUrl, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quote, nil
		}
		return nil, fmt.Errorf("unable to query best external price: %w", err)
	}

	if quote.Price, err = parseDecimal(priceStr, "price"); err != nil {
		return nil, err
	}
	quote.Found = true
	quote.UpdatedAt = updatedAt.ptr()
	return quote, nil
}

// ListPriceComparisons returns the best enabled-marketplace offer per item, cheapest first.
func (s *Service) ListPriceComparisons(ctx context.Context, filter models.PriceFilter) ([]models.PriceComparison, error) {
	var minPrice, maxPrice any
	if filter.MinPrice != nil {
		minPrice = filter.MinPrice.InexactFloat64()
	}
	if filter.MaxPrice != nil {
		maxPrice = filter.MaxPrice.InexactFloat64()
	}

	rows, err := s.db.QueryContext(ctx, queryListPriceComparisons,
		filter.GameId, filter.GameId,
		filter.Type, filter.Type,
		filter.Rarity, filter.Rarity,
		minPrice, minPrice,
		maxPrice, maxPrice,
		filter.Search, filter.Search, filter.Search)
	if err != nil {
		return nil, fmt.Errorf("unable to query price comparisons: %w", err)
	}
	defer closeRows(rows)

	var comparisons []models.PriceComparison
	for rows.Next() {
		var c models.PriceComparison
		var priceStr string
		var updatedAt timestamp
		err := rows.Scan(&c.ItemId, &c.ItemName, &c.MarketHashName, &c.GameName, &c.Type, &c.Rarity,
			&priceStr, &c.Currency, &c.Marketplace, &c.MarketplaceUrl, &c.ListingUrl, &c.OfferCount, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan price comparison: %w", err)
		}
		if c.BestPrice, err = parseDecimal(priceStr, "price"); err != nil {
			return nil, err
		}
		c.UpdatedAt = updatedAt.Time
		comparisons = append(comparisons, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price comparisons: %w", err)
	}
	return comparisons, nil
}
