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
	"net/http"

	"github.com/shopspring/decimal"
)

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// me handles GET /api/v1/me and returns the actor with their current balance.
func (s *MarketService) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.engine.User(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, user)
}

func (s *MarketService) inventory(w http.ResponseWriter, r *http.Request) {
	lines, err := s.engine.Inventory(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, lines)
}

// ledger handles GET /api/v1/me/ledger?limit=&offset=
func (s *MarketService) ledger(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := s.engine.History(r.Context(), actor(r), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, entries)
}

func (s *MarketService) topUp(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := s.engine.TopUp(r.Context(), actor(r), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created(w, entry)
}

func (s *MarketService) withdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := s.engine.Withdraw(r.Context(), actor(r), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created(w, entry)
}
