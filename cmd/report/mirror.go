package main

import (
	"context"
	"os"

	"skin-market-go/internal/formance"
	"skin-market-go/internal/models"
	"skin-market-go/internal/report"

	"go.uber.org/zap"
)

// checkMirror prints every user's balance next to the mirrored Formance balance.
// Entries still waiting in the outbox show up as differences.
func checkMirror(ctx context.Context, cfg models.FormanceConfig, local []models.ReconcileResult) {
	if !cfg.Enabled() {
		zap.L().Fatal("Formance is not configured; set FORMANCE_STACK_URL, FORMANCE_CLIENT_ID and FORMANCE_CLIENT_SECRET")
	}
	fs, err := formance.NewService(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to Formance", zap.Error(err))
	}
	defer fs.Close()

	mirrored := make([]models.ReconcileResult, 0, len(local))
	for _, r := range local {
		balance, err := fs.UserBalance(ctx, r.UserId)
		if err != nil {
			zap.L().Fatal("Failed to read mirrored balance", zap.String("user_id", r.UserId), zap.Error(err))
		}
		mirrored = append(mirrored, models.ReconcileResult{
			UserId:    r.UserId,
			Username:  r.Username,
			Balance:   r.Balance,
			LedgerSum: balance,
		})
	}
	if err := report.WriteReconciliation(os.Stdout, mirrored); err != nil {
		zap.L().Fatal("Failed to write mirror reconciliation", zap.Error(err))
	}

	commission, err := fs.CommissionBalance(ctx)
	if err != nil {
		zap.L().Fatal("Failed to read commission balance", zap.Error(err))
	}
	zap.L().Info("Mirrored platform commission", zap.String("amount", commission.StringFixed(2)))
}
