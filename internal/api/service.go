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

package api

import (
	"context"
	"fmt"
	"net/http"

	"skin-market-go/internal/market"
	"skin-market-go/internal/pricing"
	"skin-market-go/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the dependencies of the HTTP API.
type Config struct {
	Engine         *market.Engine
	Pricing        *pricing.Service
	Reports        *report.Service
	AllowedOrigins []string
}

// MarketService exposes the marketplace engine over HTTP
type MarketService struct {
	engine  *market.Engine
	pricing *pricing.Service
	reports *report.Service
	origins []string
}

func NewMarketService(cfg Config) *MarketService {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &MarketService{
		engine:  cfg.Engine,
		pricing: cfg.Pricing,
		reports: cfg.Reports,
		origins: origins,
	}
}

func (s *MarketService) HealthCheck(ctx context.Context) error {
	if _, err := s.engine.Games(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Router builds the chi router with every public, authenticated and admin route.
func (s *MarketService) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(RequestID)
	r.Use(Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", userHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Post("/login", s.login)
		r.Get("/games", s.games)
		r.Get("/catalog", s.catalog)
		r.Get("/items/{id}/prices", s.itemPrices)
		r.Get("/prices", s.priceComparisons)
		r.Get("/prices/filters", s.priceFilters)

		r.Group(func(r chi.Router) {
			r.Use(s.Identity)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", s.me)
				r.Get("/inventory", s.inventory)
				r.Get("/ledger", s.ledger)
				r.Post("/topup", s.topUp)
				r.Post("/withdraw", s.withdraw)
				r.Get("/cart", s.cart)
				r.Post("/cart", s.addToCart)
				r.Delete("/cart/{listingID}", s.removeFromCart)
				r.Post("/cart/checkout", s.checkout)
			})

			r.Post("/listings", s.createListing)
			r.Post("/listings/{id}/cancel", s.cancelListing)
			r.Post("/listings/{id}/purchase", s.purchase)

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.RequireAdmin)
				r.Get("/users", s.adminUsers)
				r.Put("/users/{id}/role", s.adminSetRole)
				r.Get("/listings", s.adminListings)
				r.Post("/listings/{id}/cancel", s.adminCancelListing)
				r.Get("/summary", s.adminSummary)
				r.Get("/reconcile", s.adminReconcile)
			})
		})
	})

	return r
}
