package pricing

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"skin-market-go/internal/cache"
	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultTTL = 5 * time.Minute

var ErrInvalidFilter = errors.New("invalid price filter")

// Service answers price questions about catalog items. Prices from external
// marketplaces change slowly and are cached; the internal best price is read
// live since it moves with every listing and sale.
type Service struct {
	store store.MarketStore
	cache cache.Cache
	ttl   time.Duration
}

// NewService accepts a nil cache, in which case every lookup hits the store.
func NewService(s store.MarketStore, c cache.Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{store: s, cache: c, ttl: ttl}
}

// InternalPrice is the cheapest Active listing of an item on this marketplace.
type InternalPrice struct {
	ItemId string           `json:"item_id"`
	Found  bool             `json:"found"`
	Price  *decimal.Decimal `json:"price,omitempty"`
}

// ItemPrices pairs both price sources for one item.
type ItemPrices struct {
	Internal InternalPrice     `json:"internal"`
	External models.PriceQuote `json:"external"`
}

func (s *Service) BestInternalPrice(ctx context.Context, itemId string) (*InternalPrice, error) {
	price, found, err := s.store.BestInternalPrice(ctx, itemId)
	if err != nil {
		return nil, err
	}
	result := &InternalPrice{ItemId: itemId, Found: found}
	if found {
		result.Price = &price
	}
	return result, nil
}

func (s *Service) BestExternalPrice(ctx context.Context, itemId string) (*models.PriceQuote, error) {
	var quote models.PriceQuote
	err := s.cached(ctx, "price:external:"+itemId, &quote, func() (any, error) {
		return s.store.BestExternalPrice(ctx, itemId)
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (s *Service) ItemPrices(ctx context.Context, itemId string) (*ItemPrices, error) {
	internal, err := s.BestInternalPrice(ctx, itemId)
	if err != nil {
		return nil, err
	}
	external, err := s.BestExternalPrice(ctx, itemId)
	if err != nil {
		return nil, err
	}
	return &ItemPrices{Internal: *internal, External: *external}, nil
}

// Comparisons returns the best external offer per item matching filter, cheapest first.
func (s *Service) Comparisons(ctx context.Context, filter models.PriceFilter) ([]models.PriceComparison, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, fmt.Errorf("%w: min price %s exceeds max price %s", ErrInvalidFilter, filter.MinPrice, filter.MaxPrice)
	}
	filter.Search = strings.TrimSpace(filter.Search)

	var comparisons []models.PriceComparison
	err := s.cached(ctx, "price:comparisons:"+filterKey(filter), &comparisons, func() (any, error) {
		return s.store.ListPriceComparisons(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return comparisons, nil
}

func (s *Service) ItemTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := s.cached(ctx, "price:types", &types, func() (any, error) {
		return s.store.ListItemTypes(ctx)
	})
	return types, err
}

func (s *Service) ItemRarities(ctx context.Context) ([]string, error) {
	var rarities []string
	err := s.cached(ctx, "price:rarities", &rarities, func() (any, error) {
		return s.store.ListItemRarities(ctx)
	})
	return rarities, err
}

// cached decodes the value under key into out, loading and storing it on a miss.
// Cache failures degrade to a direct load.
func (s *Service) cached(ctx context.Context, key string, out any, load func() (any, error)) error {
	compute := func() ([]byte, error) {
		value, err := load()
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	}

	var raw []byte
	var err error
	if s.cache == nil {
		raw, err = compute()
	} else {
		raw, err = s.cache.GetOrSet(ctx, key, s.ttl, compute)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		zap.L().Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		if s.cache != nil {
			_ = s.cache.Delete(ctx, key)
		}
		raw, err = compute()
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	}
	return nil
}

func filterKey(f models.PriceFilter) string {
	parts := []string{f.GameId, f.Type, f.Rarity, strings.ToLower(f.Search), decimalKey(f.MinPrice), decimalKey(f.MaxPrice)}
	sum := sha1.Sum([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func decimalKey(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
