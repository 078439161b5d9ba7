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

package market

import (
	"context"
	"errors"
	"time"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// MinListingPrice is the lowest price a listing may carry.
	MinListingPrice = decimal.RequireFromString("0.50")

	// CommissionRate is the platform's cut of every sale.
	CommissionRate = decimal.RequireFromString("0.05")
)

// SplitCommission returns the platform commission on price, rounded half away
// from zero to cents, and what remains for the seller.
func SplitCommission(price decimal.Decimal) (commission, sellerAmount decimal.Decimal) {
	commission = price.Mul(CommissionRate).Round(2)
	return commission, price.Sub(commission)
}

// Engine executes every state-changing marketplace operation. Each operation
// runs as one store unit of work; either all of its effects persist or none do.
type Engine struct {
	store store.MarketStore
	now   func() time.Time
	newId func() string
}

type Option func(*Engine)

// WithClock overrides the time source used for listing and sale timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(s store.MarketStore, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
		newId: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) loadUser(ctx context.Context, tx store.Tx, userId, role string) (*models.User, error) {
	user, err := tx.GetUser(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFound("%s %s not found", role, userId)
		}
		return nil, err
	}
	return user, nil
}

func (e *Engine) loadListing(ctx context.Context, tx store.Tx, listingId string) (*models.Listing, error) {
	listing, err := tx.GetListing(ctx, listingId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFound("listing %s not found", listingId)
		}
		return nil, err
	}
	return listing, nil
}

// requireUser checks existence outside a unit of work, for read paths.
func (e *Engine) requireUser(ctx context.Context, userId string) (*models.User, error) {
	user, err := e.store.GetUser(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFound("user %s not found", userId)
		}
		return nil, err
	}
	return user, nil
}

func validateAmount(amount decimal.Decimal, what string) error {
	if !amount.IsPositive() {
		return Validation("%s must be positive", what)
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return Validation("%s must have at most two decimal places", what)
	}
	return nil
}
