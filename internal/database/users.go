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
	"go.uber.org/zap"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user       models.User
		role       string
		balanceStr string
		lastSync   timestamp
		createdAt  timestamp
	)
	err := row.Scan(&user.Id, &user.Username, &user.SteamId, &user.DisplayName, &role,
		&balanceStr, &user.BalanceVersion, &user.TradeUrl, &user.AvatarUrl, &lastSync, &createdAt)
	if err != nil {
		return nil, err
	}

	user.Role, err = models.ParseRole(role)
	if err != nil {
		return nil, err
	}
	user.Balance, err = parseDecimal(balanceStr, "balance")
	if err != nil {
		return nil, err
	}
	user.LastSync = lastSync.ptr()
	user.CreatedAt = createdAt.Time
	return &user, nil
}

func getUser(ctx context.Context, q queryer, userId string) (*models.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx, queryGetUserById, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userId, store.ErrNotFound)
		}
		zap.L().Error("Failed to query user by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, userId string) (*models.User, error) {
	zap.L().Debug("Querying user by ID", zap.String("user_id", userId))
	return getUser(ctx, s.db, userId)
}

// FindUserByIdentifier matches the identifier exactly against steam id first, then username.
func (s *Service) FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	zap.L().Debug("Querying user by identifier", zap.String("identifier", identifier))

	user, err := scanUser(s.db.QueryRowContext(ctx, queryFindUserByIdentifier, identifier, identifier, identifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", identifier, store.ErrNotFound)
		}
		zap.L().Error("Failed to query user by identifier", zap.String("identifier", identifier), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by identifier: %w", err)
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, queryListUsers)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer closeRows(rows)

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			zap.L().Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during user row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	zap.L().Debug("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

// CreateUser registers a user with a zero balance. Starting funds go through a top-up so the ledger stays whole.
func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	userId := uuid.New().String()
	zap.L().Info("Creating user",
		zap.String("id", userId),
		zap.String("username", params.Username),
		zap.String("steam_id", params.SteamId))

	_, err := s.db.ExecContext(ctx, queryInsertUser, userId, params.Username, params.SteamId,
		params.DisplayName, params.Role.String(), params.TradeUrl, params.AvatarUrl, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s already exists: %w", params.Username, store.ErrDuplicate)
		}
		zap.L().Error("Failed to insert user", zap.String("username", params.Username), zap.Error(err))
		return nil, fmt.Errorf("unable to insert user: %w", err)
	}

	zap.L().Info("User created successfully", zap.String("id", userId), zap.String("username", params.Username))
	return s.GetUser(ctx, userId)
}

func (s *Service) UpdateUserRole(ctx context.Context, userId string, role models.Role) error {
	result, err := s.db.ExecContext(ctx, queryUpdateUserRole, role.String(), userId)
	if err != nil {
		return fmt.Errorf("unable to update user role: %w", err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", userId, store.ErrNotFound)
	}

	zap.L().Info("User role updated", zap.String("user_id", userId), zap.String("role", role.String()))
	return nil
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, queryCountUsers).Scan(&count); err != nil {
		return 0, fmt.Errorf("unable to count users: %w", err)
	}
	return count, nil
}
