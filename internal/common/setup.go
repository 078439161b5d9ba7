package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"skin-market-go/internal/cache"
	"skin-market-go/internal/database"
	"skin-market-go/internal/formance"
	"skin-market-go/internal/market"
	"skin-market-go/internal/models"
	"skin-market-go/internal/pricing"
	"skin-market-go/internal/report"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// A missing .env is fine; variables may come from the shell or the container.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

// Services bundles everything a command needs to talk to the marketplace.
type Services struct {
	DbService       *database.Service
	Cache           cache.Cache
	Engine          *market.Engine
	Pricing         *pricing.Service
	Reports         *report.Service
	FormanceService *formance.Service
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the database and builds the engine and read services.
// The Formance mirror is connected only when credentials are configured.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	priceCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		dbService.Close()
		return nil, fmt.Errorf("failed to initialize price cache: %w", err)
	}

	services := &Services{
		DbService: dbService,
		Cache:     priceCache,
		Engine:    market.NewEngine(dbService),
		Pricing:   pricing.NewService(dbService, priceCache, cfg.Cache.TTL),
		Reports:   report.NewService(dbService),
	}

	if cfg.Formance.Enabled() {
		fs, err := formance.NewService(ctx, cfg.Formance)
		if err != nil {
			services.Close()
			return nil, fmt.Errorf("failed to initialize Formance: %w", err)
		}
		services.FormanceService = fs
	} else {
		zap.L().Info("Formance not configured, ledger mirror disabled")
	}

	return services, nil
}

// InitializeDatabaseOnly opens the database without cache or external services.
// Useful for one-shot commands such as seeding and reports.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.FormanceService != nil {
		cs.FormanceService.Close()
	}
	if cs.Cache != nil {
		if err := cs.Cache.Close(); err != nil {
			zap.L().Warn("Failed to close cache", zap.Error(err))
		}
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
