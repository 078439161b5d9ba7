package database

import (
	"context"
	"fmt"

	"skin-market-go/internal/store"
)

// ListSales returns one row per completed purchase, read from the buyer-side ledger entries.
// Reading the ledger keeps sales that happened before a listing row was relisted.
func (s *Service) ListSales(ctx context.Context) ([]store.Sale, error) {
	rows, err := s.db.QueryContext(ctx, queryListSales)
	if err != nil {
		return nil, fmt.Errorf("unable to query sales: %w", err)
	}
	defer closeRows(rows)

	var sales []store.Sale
	for rows.Next() {
		var sale store.Sale
		var amountStr string
		var soldAt timestamp
		if err := rows.Scan(&sale.ListingId, &sale.GameId, &sale.GameName, &amountStr, &soldAt); err != nil {
			return nil, fmt.Errorf("unable to scan sale row: %w", err)
		}
		amount, err := parseDecimal(amountStr, "amount")
		if err != nil {
			return nil, err
		}
		sale.Price = amount.Abs()
		sale.SoldAt = soldAt.Time
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale rows: %w", err)
	}
	return sales, nil
}
