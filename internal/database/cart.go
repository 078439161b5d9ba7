package database

import (
	"context"
	"fmt"

	"skin-market-go/internal/models"
)

// ListCart returns the user's cart entries in the order they were added.
func (s *Service) ListCart(ctx context.Context, userId string) ([]models.CartLine, error) {
	rows, err := s.db.QueryContext(ctx, queryListCart, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query cart: %w", err)
	}
	defer closeRows(rows)

	var lines []models.CartLine
	for rows.Next() {
		var line models.CartLine
		var priceStr, status string
		var addedAt timestamp
		err := rows.Scan(&line.CartEntryId, &line.ListingId, &line.ItemName, &line.GameName, &line.SellerName,
			&priceStr, &status, &addedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan cart row: %w", err)
		}
		if line.Price, err = parseDecimal(priceStr, "price"); err != nil {
			return nil, err
		}
		line.Status = models.ListingStatus(status)
		line.AddedAt = addedAt.Time
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart rows: %w", err)
	}
	return lines, nil
}
