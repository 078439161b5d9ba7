package market

import (
	"context"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// TopUp credits the user's balance and records a deposit entry.
func (e *Engine) TopUp(ctx context.Context, userId string, amount decimal.Decimal) (*models.LedgerEntry, error) {
	if err := validateAmount(amount, "top-up amount"); err != nil {
		return nil, err
	}

	var entry *models.LedgerEntry
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := e.loadUser(ctx, tx, userId, "user"); err != nil {
			return err
		}
		var err error
		entry, err = tx.AppendLedgerEntry(ctx, store.LedgerEntryParams{
			UserId:      userId,
			Amount:      amount,
			Category:    models.LedgerDeposit,
			Description: "Balance top-up",
		})
		return err
	})
	if err != nil {
		return nil, classify(err, "top-up")
	}

	zap.L().Info("Balance topped up",
		zap.String("user_id", userId),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance", entry.BalanceAfter.StringFixed(2)))

	return entry, nil
}

// Withdraw debits the user's balance. The balance may reach zero but never go below it.
func (e *Engine) Withdraw(ctx context.Context, userId string, amount decimal.Decimal) (*models.LedgerEntry, error) {
	if err := validateAmount(amount, "withdrawal amount"); err != nil {
		return nil, err
	}

	var entry *models.LedgerEntry
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		user, err := e.loadUser(ctx, tx, userId, "user")
		if err != nil {
			return err
		}
		if user.Balance.LessThan(amount) {
			return InsufficientFunds("balance %s is below requested withdrawal %s",
				user.Balance.StringFixed(2), amount.StringFixed(2))
		}
		entry, err = tx.AppendLedgerEntry(ctx, store.LedgerEntryParams{
			UserId:      userId,
			Amount:      amount.Neg(),
			Category:    models.LedgerWithdrawal,
			Description: "Withdrawal",
		})
		return err
	})
	if err != nil {
		return nil, classify(err, "withdrawal")
	}

	zap.L().Info("Balance withdrawn",
		zap.String("user_id", userId),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance", entry.BalanceAfter.StringFixed(2)))

	return entry, nil
}

// History returns ledger entries newest first. A non-positive limit selects the default page size.
func (e *Engine) History(ctx context.Context, userId string, limit, offset int) ([]models.LedgerEntry, error) {
	if offset < 0 {
		return nil, Validation("offset must not be negative")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if _, err := e.requireUser(ctx, userId); err != nil {
		return nil, err
	}
	return e.store.GetLedgerHistory(ctx, userId, limit, offset)
}

// Reconcile compares one user's stored balance against the sum of their ledger.
func (e *Engine) Reconcile(ctx context.Context, userId string) (*models.ReconcileResult, error) {
	if _, err := e.requireUser(ctx, userId); err != nil {
		return nil, err
	}
	return e.store.ReconcileUserBalance(ctx, userId)
}

// ReconcileAll runs Reconcile for every user, ordered by username.
func (e *Engine) ReconcileAll(ctx context.Context) ([]models.ReconcileResult, error) {
	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.ReconcileResult, 0, len(users))
	mismatches := 0
	for _, u := range users {
		result, err := e.store.ReconcileUserBalance(ctx, u.Id)
		if err != nil {
			return nil, err
		}
		if !result.Matches() {
			mismatches++
		}
		results = append(results, *result)
	}

	zap.L().Info("Reconciliation finished",
		zap.Int("users", len(users)),
		zap.Int("mismatches", mismatches))

	return results, nil
}
