/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"skin-market-go/internal/common"
	"skin-market-go/internal/config"
	"skin-market-go/internal/formance"
	"skin-market-go/internal/market"
	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	usernameFlag := flag.String("username", "", "Username (required)")
	steamIdFlag := flag.String("steam-id", "", "17 digit Steam id (required)")
	displayNameFlag := flag.String("display-name", "", "Display name (default: username)")
	roleFlag := flag.String("role", "user", "Role: user or admin")
	balanceFlag := flag.String("balance", "", "Optional starting balance, recorded as a top-up")
	flag.Parse()

	if *usernameFlag == "" || *steamIdFlag == "" {
		zap.L().Fatal("Both flags are required: --username and --steam-id")
	}

	role, err := models.ParseRole(*roleFlag)
	if err != nil {
		zap.L().Fatal("Invalid role", zap.Error(err))
	}

	var balance decimal.Decimal
	if *balanceFlag != "" {
		if balance, err = decimal.NewFromString(*balanceFlag); err != nil {
			zap.L().Fatal("Invalid balance", zap.String("balance", *balanceFlag), zap.Error(err))
		}
	}

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
	user, err := engine.RegisterUser(ctx, store.CreateUserParams{
		Username:    *usernameFlag,
		SteamId:     *steamIdFlag,
		DisplayName: *displayNameFlag,
		Role:        role,
	})
	if err != nil {
		if market.IsKind(err, market.KindConflict) {
			zap.L().Fatal("User already exists with this username or steam id",
				zap.String("username", *usernameFlag),
				zap.String("steam_id", *steamIdFlag))
		}
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	if balance.IsPositive() {
		entry, err := engine.TopUp(ctx, user.Id, balance)
		if err != nil {
			zap.L().Fatal("User created but starting balance failed", zap.String("user_id", user.Id), zap.Error(err))
		}
		user.Balance = entry.BalanceAfter
	}

	if cfg.Formance.Enabled() {
		fs, err := formance.NewService(ctx, cfg.Formance)
		if err != nil {
			zap.L().Warn("User created but Formance is unreachable", zap.Error(err))
		} else {
			defer fs.Close()
			if err := fs.SyncAccount(ctx, user); err != nil {
				zap.L().Warn("Failed to tag ledger account", zap.String("user_id", user.Id), zap.Error(err))
			}
		}
	}

	line := strings.Repeat("=", 80)
	fmt.Printf("\n%s\nUSER CREATED\n%s\n", line, line)
	fmt.Printf("ID:        %s\n", user.Id)
	fmt.Printf("Username:  %s\n", user.Username)
	fmt.Printf("Steam ID:  %s\n", user.SteamId)
	fmt.Printf("Role:      %s\n", user.Role)
	fmt.Printf("Balance:   %s\n", user.Balance.StringFixed(2))
	fmt.Printf("%s\n\n", line)
}
