package api

import (
	"net/http"

	"skin-market-go/internal/models"

	"github.com/go-chi/chi/v5"
)

type roleRequest struct {
	Role string `json:"role"`
}

type adminListingsResponse struct {
	Listings       []models.ListingView        `json:"listings"`
	ActiveBySeller []models.SellerListingCount `json:"active_by_seller"`
}

type reconcileResponse struct {
	Results    []models.ReconcileResult `json:"results"`
	Mismatches int                      `json:"mismatches"`
}

func (s *MarketService) adminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.engine.Users(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, users)
}

// adminSetRole handles PUT /api/v1/admin/users/{id}/role
func (s *MarketService) adminSetRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.engine.UpdateUserRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, user)
}

func (s *MarketService) adminListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.engine.AllListings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	counts, err := s.engine.ActiveListingCountsBySeller(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, adminListingsResponse{Listings: listings, ActiveBySeller: counts})
}

func (s *MarketService) adminCancelListing(w http.ResponseWriter, r *http.Request) {
	listing, err := s.engine.AdminCancelListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, listing)
}

func (s *MarketService) adminSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, summary)
}

func (s *MarketService) adminReconcile(w http.ResponseWriter, r *http.Request) {
	results, err := s.engine.ReconcileAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := reconcileResponse{Results: results}
	for _, res := range results {
		if !res.Matches() {
			resp.Mismatches++
		}
	}
	ok(w, resp)
}
