package main

import (
	"context"
	"flag"
	"fmt"

	"skin-market-go/internal/common"
	"skin-market-go/internal/config"
	"skin-market-go/internal/market"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	fileFlag := flag.String("file", "", "Path to the catalog YAML (default: SEED_FILE or catalog.yaml)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	seedFile := cfg.Database.SeedFile
	if *fileFlag != "" {
		seedFile = *fileFlag
	}

	zap.L().Info("Loading catalog seed", zap.String("file", seedFile))
	seed, err := common.LoadCatalogSeed(seedFile)
	if err != nil {
		zap.L().Fatal("Failed to load catalog seed", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	stats, err := common.ApplyCatalogSeed(ctx, dbService, market.NewEngine(dbService), seed)
	if err != nil {
		zap.L().Fatal("Failed to apply catalog seed", zap.Error(err))
	}

	fmt.Println()
	fmt.Printf("Games:         %d\n", stats.Games)
	fmt.Printf("Items:         %d\n", stats.Items)
	fmt.Printf("Marketplaces:  %d\n", stats.Marketplaces)
	fmt.Printf("Price rows:    %d\n", stats.Prices)
	fmt.Printf("Users:         %d\n", stats.Users)
	fmt.Printf("Inventory:     %d\n", stats.Inventory)
	fmt.Printf("Listings:      %d\n", stats.Listings)
	fmt.Println()
}
