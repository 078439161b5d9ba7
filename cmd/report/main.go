package main

import (
	"context"
	"flag"
	"os"

	"skin-market-go/internal/common"
	"skin-market-go/internal/config"
	"skin-market-go/internal/market"
	"skin-market-go/internal/report"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "Print the balance statement of this steam id or username")
	reconcileFlag := flag.Bool("reconcile", false, "Compare every balance with its ledger sum")
	mirrorFlag := flag.Bool("mirror", false, "With -reconcile, also compare against the Formance mirror")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	engine := market.NewEngine(dbService)
	reports := report.NewService(dbService)

	switch {
	case *userFlag != "":
		users, err := common.ResolveUsers(ctx, engine, *userFlag, logger)
		if err != nil {
			zap.L().Fatal("Failed to resolve user", zap.Error(err))
		}
		statement, err := reports.UserStatement(ctx, users[0].Id)
		if err != nil {
			zap.L().Fatal("Failed to build statement", zap.Error(err))
		}
		if err := report.WriteStatement(os.Stdout, statement); err != nil {
			zap.L().Fatal("Failed to write statement", zap.Error(err))
		}

	case *reconcileFlag:
		results, err := engine.ReconcileAll(ctx)
		if err != nil {
			zap.L().Fatal("Failed to reconcile balances", zap.Error(err))
		}
		if err := report.WriteReconciliation(os.Stdout, results); err != nil {
			zap.L().Fatal("Failed to write reconciliation", zap.Error(err))
		}
		if *mirrorFlag {
			checkMirror(ctx, cfg.Formance, results)
		}

	default:
		summary, err := reports.Summary(ctx)
		if err != nil {
			zap.L().Fatal("Failed to build summary", zap.Error(err))
		}
		if err := report.WriteSummary(os.Stdout, summary); err != nil {
			zap.L().Fatal("Failed to write summary", zap.Error(err))
		}
	}
}
