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

package common

import (
	"context"
	"fmt"

	"skin-market-go/internal/models"

	"go.uber.org/zap"
)

// UserDirectory is the part of the engine command-line utilities use to find users.
type UserDirectory interface {
	Login(ctx context.Context, identifier string) (*models.User, error)
	Users(ctx context.Context) ([]models.User, error)
}

// ResolveUsers returns the user matching identifier (steam id or username),
// or every user when identifier is empty.
func ResolveUsers(ctx context.Context, dir UserDirectory, identifier string, logger *zap.Logger) ([]models.User, error) {
	if identifier != "" {
		logger.Info("Looking up user", zap.String("identifier", identifier))
		user, err := dir.Login(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return []models.User{*user}, nil
	}

	users, err := dir.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	logger.Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}
