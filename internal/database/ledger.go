package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// appendLedgerEntry atomically updates the user balance and records the movement.
// It must run inside a transaction; the balance write is guarded by balance_version.
func appendLedgerEntry(ctx context.Context, tx *sql.Tx, params store.LedgerEntryParams) (*models.LedgerEntry, error) {
	zap.L().Debug("Appending ledger entry",
		zap.String("user_id", params.UserId),
		zap.String("category", params.Category),
		zap.String("amount", params.Amount.String()),
		zap.String("reference", params.Reference))

	var currentBalanceStr string
	var version int64
	err := tx.QueryRowContext(ctx, queryGetUserBalance, params.UserId).Scan(&currentBalanceStr, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", params.UserId, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get current balance: %w", err)
	}

	currentBalance, err := parseDecimal(currentBalanceStr, "current balance")
	if err != nil {
		return nil, err
	}
	newBalance := currentBalance.Add(params.Amount)

	entryId := uuid.New().String()
	now := time.Now().UTC()

	entry, err := scanLedgerEntry(tx.QueryRowContext(ctx, queryInsertLedgerEntry,
		entryId, params.UserId, params.Amount.String(), params.Category, params.Description, params.Reference,
		currentBalance.String(), newBalance.String(), now))
	if err != nil {
		return nil, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	result, err := tx.ExecContext(ctx, queryUpdateUserBalance, newBalance.String(), params.UserId, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	zap.L().Info("Ledger entry recorded",
		zap.String("entry_id", entryId),
		zap.String("user_id", params.UserId),
		zap.String("category", params.Category),
		zap.String("old_balance", currentBalance.String()),
		zap.String("new_balance", newBalance.String()))

	return entry, nil
}

func scanLedgerEntry(row rowScanner) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	var amountStr, balanceBeforeStr, balanceAfterStr string
	var createdAt, mirroredAt timestamp
	err := row.Scan(&entry.Id, &entry.UserId, &amountStr, &entry.Category, &entry.Description, &entry.Reference,
		&balanceBeforeStr, &balanceAfterStr, &createdAt, &mirroredAt)
	if err != nil {
		return nil, err
	}

	if entry.Amount, err = parseDecimal(amountStr, "amount"); err != nil {
		return nil, err
	}
	if entry.BalanceBefore, err = parseDecimal(balanceBeforeStr, "balance before"); err != nil {
		return nil, err
	}
	if entry.BalanceAfter, err = parseDecimal(balanceAfterStr, "balance after"); err != nil {
		return nil, err
	}
	entry.CreatedAt = createdAt.Time
	entry.MirroredAt = mirroredAt.ptr()
	return &entry, nil
}

func (s *Service) queryLedgerEntries(ctx context.Context, query string, args ...any) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer closeRows(rows)

	var entries []models.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during ledger row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating ledger rows: %w", err)
	}
	return entries, nil
}

// GetLedgerHistory returns paginated ledger history for a user, newest first
func (s *Service) GetLedgerHistory(ctx context.Context, userId string, limit, offset int) ([]models.LedgerEntry, error) {
	zap.L().Debug("Getting ledger history",
		zap.String("user_id", userId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	return s.queryLedgerEntries(ctx, queryGetLedgerHistory, userId, limit, offset)
}

// ReconcileUserBalance compares the stored balance with the sum of the user's ledger entries.
// Amounts are TEXT so the sum is computed exactly in Go rather than as a SQLite REAL.
func (s *Service) ReconcileUserBalance(ctx context.Context, userId string) (*models.ReconcileResult, error) {
	user, err := s.GetUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, queryLedgerAmounts, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger amounts: %w", err)
	}
	defer closeRows(rows)

	sum := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan ledger amount: %w", err)
		}
		amount, err := parseDecimal(amountStr, "amount")
		if err != nil {
			return nil, err
		}
		sum = sum.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger amounts: %w", err)
	}

	result := &models.ReconcileResult{
		UserId:    user.Id,
		Username:  user.Username,
		Balance:   user.Balance,
		LedgerSum: sum,
	}

	if !result.Matches() {
		zap.L().Error("Balance mismatch detected",
			zap.String("user_id", userId),
			zap.String("current_balance", user.Balance.String()),
			zap.String("calculated_balance", sum.String()),
			zap.String("difference", result.Difference().String()))
	} else {
		zap.L().Debug("Balance reconciled", zap.String("user_id", userId), zap.String("balance", sum.String()))
	}
	return result, nil
}

// ListUnmirroredEntries returns the oldest ledger entries not yet exported to the external ledger.
func (s *Service) ListUnmirroredEntries(ctx context.Context, limit int) ([]models.LedgerEntry, error) {
	return s.queryLedgerEntries(ctx, queryListUnmirroredEntries, limit)
}

func (s *Service) MarkEntryMirrored(ctx context.Context, entryId string, at time.Time) error {
	if _, err := s.db.ExecContext(ctx, queryMarkEntryMirrored, at.UTC(), entryId); err != nil {
		return fmt.Errorf("failed to mark ledger entry %s mirrored: %w", entryId, err)
	}
	return nil
}
