package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"go.uber.org/zap"
)

func scanListing(row rowScanner, extra ...any) (*models.Listing, error) {
	var listing models.Listing
	var priceStr, status string
	var listedAt, soldAt, updatedAt timestamp

	dest := []any{&listing.Id, &listing.InventoryItemId, &listing.SellerId, &listing.BuyerId, &priceStr, &status,
		&listedAt, &soldAt, &updatedAt, &listing.Version}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	price, err := parseDecimal(priceStr, "price")
	if err != nil {
		return nil, err
	}
	listing.Price = price
	listing.Status = models.ListingStatus(status)
	listing.ListedAt = listedAt.Time
	listing.SoldAt = soldAt.ptr()
	listing.UpdatedAt = updatedAt.Time
	return &listing, nil
}

func getListing(ctx context.Context, q queryer, query, key string) (*models.Listing, error) {
	listing, err := scanListing(q.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("listing %s: %w", key, store.ErrNotFound)
		}
		return nil, fmt.Errorf("unable to query listing: %w", err)
	}
	return listing, nil
}

// ListCatalog returns Active listings, optionally filtered by game and name.
func (s *Service) ListCatalog(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogEntry, error) {
	query := queryListCatalog
	switch filter.SortBy {
	case models.SortPriceAsc:
		query += " ORDER BY CAST(l.price AS REAL) ASC, l.listed_at"
	case models.SortPriceDesc:
		query += " ORDER BY CAST(l.price AS REAL) DESC, l.listed_at"
	default:
		query += " ORDER BY l.listed_at, l.rowid"
	}

	rows, err := s.db.QueryContext(ctx, query,
		filter.GameId, filter.GameId, filter.Search, filter.Search, filter.Search)
	if err != nil {
		zap.L().Error("Failed to query catalog", zap.Error(err))
		return nil, fmt.Errorf("unable to query catalog: %w", err)
	}
	defer closeRows(rows)

	var entries []models.CatalogEntry
	for rows.Next() {
		var e models.CatalogEntry
		var priceStr string
		var listedAt timestamp
		err := rows.Scan(&e.ListingId, &e.InventoryItemId, &e.ItemId, &e.ItemName, &e.ItemType, &e.Rarity,
			&e.IconUrl, &e.GameId, &e.GameName, &e.SellerId, &e.SellerName, &priceStr, &listedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan catalog row: %w", err)
		}
		if e.Price, err = parseDecimal(priceStr, "price"); err != nil {
			return nil, err
		}
		e.ListedAt = listedAt.Time
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog rows: %w", err)
	}
	return entries, nil
}

// ListAllListings returns every listing regardless of status, newest first.
func (s *Service) ListAllListings(ctx context.Context) ([]models.ListingView, error) {
	rows, err := s.db.QueryContext(ctx, queryListAllListings)
	if err != nil {
		return nil, fmt.Errorf("unable to query listings: %w", err)
	}
	defer closeRows(rows)

	var views []models.ListingView
	for rows.Next() {
		var v models.ListingView
		listing, err := scanListing(rows, &v.ItemName, &v.GameName, &v.SellerName, &v.BuyerName)
		if err != nil {
			return nil, fmt.Errorf("unable to scan listing row: %w", err)
		}
		v.Listing = *listing
		views = append(views, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing rows: %w", err)
	}
	return views, nil
}

func (s *Service) ActiveListingCountsBySeller(ctx context.Context) ([]models.SellerListingCount, error) {
	rows, err := s.db.QueryContext(ctx, queryActiveListingCountsBySeller)
	if err != nil {
		return nil, fmt.Errorf("unable to count active listings: %w", err)
	}
	defer closeRows(rows)

	var counts []models.SellerListingCount
	for rows.Next() {
		var c models.SellerListingCount
		if err := rows.Scan(&c.SellerId, &c.Username, &c.ActiveCount); err != nil {
			return nil, fmt.Errorf("unable to scan listing count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing counts: %w", err)
	}
	return counts, nil
}

func (s *Service) CountListingsByStatus(ctx context.Context) (map[models.ListingStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, queryCountListingsByStatus)
	if err != nil {
		return nil, fmt.Errorf("unable to count listings: %w", err)
	}
	defer closeRows(rows)

	counts := map[models.ListingStatus]int{
		models.ListingActive:    0,
		models.ListingSold:      0,
		models.ListingCancelled: 0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("unable to scan listing count: %w", err)
		}
		counts[models.ListingStatus(status)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing counts: %w", err)
	}
	return counts, nil
}
