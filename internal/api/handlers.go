package api

import (
	"net/http"
	"strconv"
	"strings"

	"skin-market-go/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
}

type createListingRequest struct {
	InventoryItemId string          `json:"inventory_item_id"`
	Price           decimal.Decimal `json:"price"`
}

type cartRequest struct {
	ListingId string `json:"listing_id"`
}

// health handles GET /api/v1/health
func (s *MarketService) health(w http.ResponseWriter, r *http.Request) {
	if err := s.HealthCheck(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, map[string]string{"status": "healthy"})
}

// login handles POST /api/v1/login
func (s *MarketService) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.engine.Login(r.Context(), req.Identifier)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, user)
}

func (s *MarketService) games(w http.ResponseWriter, r *http.Request) {
	games, err := s.engine.Games(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, games)
}

// catalog handles GET /api/v1/catalog?game_id=&search=&sort=
func (s *MarketService) catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := s.engine.Catalog(r.Context(), models.CatalogFilter{
		GameId: q.Get("game_id"),
		Search: q.Get("search"),
		SortBy: q.Get("sort"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, entries)
}

func (s *MarketService) itemPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := s.pricing.ItemPrices(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, prices)
}

// priceComparisons handles GET /api/v1/prices
func (s *MarketService) priceComparisons(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePriceFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	comparisons, err := s.pricing.Comparisons(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, comparisons)
}

// priceFilters handles GET /api/v1/prices/filters
func (s *MarketService) priceFilters(w http.ResponseWriter, r *http.Request) {
	types, err := s.pricing.ItemTypes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rarities, err := s.pricing.ItemRarities(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, map[string][]string{"types": types, "rarities": rarities})
}

func parsePriceFilter(r *http.Request) (models.PriceFilter, error) {
	q := r.URL.Query()
	filter := models.PriceFilter{
		GameId: q.Get("game_id"),
		Type:   q.Get("type"),
		Rarity: q.Get("rarity"),
		Search: strings.TrimSpace(q.Get("search")),
	}
	var err error
	if filter.MinPrice, err = decimalParam(r, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = decimalParam(r, "max_price"); err != nil {
		return filter, err
	}
	return filter, nil
}

// createListing handles POST /api/v1/listings
func (s *MarketService) createListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	listing, err := s.engine.CreateOrRelist(r.Context(), actor(r), req.InventoryItemId, req.Price)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created(w, listing)
}

func (s *MarketService) cancelListing(w http.ResponseWriter, r *http.Request) {
	listing, err := s.engine.CancelListing(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, listing)
}

func (s *MarketService) purchase(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.engine.Purchase(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, receipt)
}

func (s *MarketService) cart(w http.ResponseWriter, r *http.Request) {
	lines, err := s.engine.Cart(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, lines)
}

func (s *MarketService) addToCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := s.engine.AddToCart(r.Context(), actor(r), req.ListingId)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created(w, entry)
}

func (s *MarketService) removeFromCart(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.RemoveFromCart(r.Context(), actor(r), chi.URLParam(r, "listingID")); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

// checkout handles POST /api/v1/me/cart/checkout. Each line succeeds or fails on its own.
func (s *MarketService) checkout(w http.ResponseWriter, r *http.Request) {
	lines, err := s.engine.PurchaseCart(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, lines)
}

func decimalParam(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, badRequest(key + " must be a number")
	}
	return &d, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(key + " must be an integer")
	}
	return v, nil
}
