package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"skin-market-go/internal/market"
	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type SeedItem struct {
	Name           string `yaml:"name"`
	Type           string `yaml:"type"`
	Rarity         string `yaml:"rarity"`
	Description    string `yaml:"description"`
	IconUrl        string `yaml:"icon_url"`
	MarketHashName string `yaml:"market_hash_name"`
}

type SeedGame struct {
	Name    string     `yaml:"name"`
	AppId   int64      `yaml:"app_id"`
	LogoUrl string     `yaml:"logo_url"`
	Items   []SeedItem `yaml:"items"`
}

type SeedMarketplace struct {
	Name       string `yaml:"name"`
	WebsiteUrl string `yaml:"website_url"`
	Disabled   bool   `yaml:"disabled"`
}

type SeedPrice struct {
	Item        string `yaml:"item"`
	Marketplace string `yaml:"marketplace"`
	Price       string `yaml:"price"`
	Currency    string `yaml:"currency"`
	ListingUrl  string `yaml:"listing_url"`
}

// SeedInventory is one owned copy; a non-empty ListPrice puts it on sale.
type SeedInventory struct {
	Item       string `yaml:"item"`
	Untradable bool   `yaml:"untradable"`
	ListPrice  string `yaml:"list_price"`
}

type SeedUser struct {
	Username    string          `yaml:"username"`
	SteamId     string          `yaml:"steam_id"`
	DisplayName string          `yaml:"display_name"`
	Role        string          `yaml:"role"`
	Balance     string          `yaml:"balance"`
	Inventory   []SeedInventory `yaml:"inventory"`
}

// CatalogSeed is the YAML document loaded by the seed command.
type CatalogSeed struct {
	Games        []SeedGame        `yaml:"games"`
	Marketplaces []SeedMarketplace `yaml:"marketplaces"`
	Prices       []SeedPrice       `yaml:"prices"`
	Users        []SeedUser        `yaml:"users"`
}

// CatalogWriter is implemented by the database service.
type CatalogWriter interface {
	CreateGame(ctx context.Context, game models.Game) (*models.Game, error)
	CreateItem(ctx context.Context, item models.Item) (*models.Item, error)
	CreateInventoryItem(ctx context.Context, itemId, userId string, tradable bool) (*models.InventoryItem, error)
	CreateMarketplace(ctx context.Context, m models.Marketplace) (*models.Marketplace, error)
	CreatePriceListing(ctx context.Context, p models.PriceListing) (*models.PriceListing, error)
}

// SeedStats counts what ApplyCatalogSeed created.
type SeedStats struct {
	Games        int
	Items        int
	Marketplaces int
	Prices       int
	Users        int
	Inventory    int
	Listings     int
}

func LoadCatalogSeed(seedFile string) (*CatalogSeed, error) {
	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}
	return ParseCatalogSeed(data)
}

// ParseCatalogSeed decodes and validates a seed document.
func ParseCatalogSeed(data []byte) (*CatalogSeed, error) {
	var seed CatalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("unable to parse seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (c *CatalogSeed) validate() error {
	items := make(map[string]bool)
	for i, g := range c.Games {
		if g.Name == "" {
			return fmt.Errorf("game at index %d missing name", i)
		}
		for j, it := range g.Items {
			if it.Name == "" {
				return fmt.Errorf("item %d of game %s missing name", j, g.Name)
			}
			if items[it.Name] {
				return fmt.Errorf("item %q declared twice", it.Name)
			}
			items[it.Name] = true
		}
	}

	marketplaces := make(map[string]bool)
	for i, m := range c.Marketplaces {
		if m.Name == "" {
			return fmt.Errorf("marketplace at index %d missing name", i)
		}
		marketplaces[m.Name] = true
	}

	for i, p := range c.Prices {
		if !items[p.Item] {
			return fmt.Errorf("price at index %d references unknown item %q", i, p.Item)
		}
		if !marketplaces[p.Marketplace] {
			return fmt.Errorf("price at index %d references unknown marketplace %q", i, p.Marketplace)
		}
		if _, err := decimal.NewFromString(p.Price); err != nil {
			return fmt.Errorf("price at index %d: invalid amount %q", i, p.Price)
		}
	}

	for i, u := range c.Users {
		if u.Username == "" || u.SteamId == "" {
			return fmt.Errorf("user at index %d missing username or steam_id", i)
		}
		if u.Role != "" {
			if _, err := models.ParseRole(u.Role); err != nil {
				return fmt.Errorf("user %s: %w", u.Username, err)
			}
		}
		if u.Balance != "" {
			if _, err := decimal.NewFromString(u.Balance); err != nil {
				return fmt.Errorf("user %s: invalid balance %q", u.Username, u.Balance)
			}
		}
		for _, inv := range u.Inventory {
			if !items[inv.Item] {
				return fmt.Errorf("user %s owns unknown item %q", u.Username, inv.Item)
			}
			if inv.ListPrice != "" {
				if _, err := decimal.NewFromString(inv.ListPrice); err != nil {
					return fmt.Errorf("user %s: invalid list price %q", u.Username, inv.ListPrice)
				}
			}
		}
	}
	return nil
}

// ApplyCatalogSeed writes the seed. Users go through the engine so starting
// balances become top-ups and listings pass the usual guards.
func ApplyCatalogSeed(ctx context.Context, w CatalogWriter, engine *market.Engine, seed *CatalogSeed) (*SeedStats, error) {
	stats := &SeedStats{}
	itemIds := make(map[string]string)
	marketplaceIds := make(map[string]string)

	for _, g := range seed.Games {
		game, err := w.CreateGame(ctx, models.Game{Name: g.Name, AppId: g.AppId, LogoUrl: g.LogoUrl})
		if err != nil {
			return stats, fmt.Errorf("failed to create game %s: %w", g.Name, err)
		}
		stats.Games++
		for _, it := range g.Items {
			item, err := w.CreateItem(ctx, models.Item{
				GameId:         game.Id,
				Type:           it.Type,
				Rarity:         it.Rarity,
				Name:           it.Name,
				Description:    it.Description,
				IconUrl:        it.IconUrl,
				MarketHashName: it.MarketHashName,
			})
			if err != nil {
				return stats, fmt.Errorf("failed to create item %s: %w", it.Name, err)
			}
			itemIds[it.Name] = item.Id
			stats.Items++
		}
	}

	for _, m := range seed.Marketplaces {
		mp, err := w.CreateMarketplace(ctx, models.Marketplace{Name: m.Name, WebsiteUrl: m.WebsiteUrl, IsEnabled: !m.Disabled})
		if err != nil {
			return stats, fmt.Errorf("failed to create marketplace %s: %w", m.Name, err)
		}
		marketplaceIds[m.Name] = mp.Id
		stats.Marketplaces++
	}

	for _, p := range seed.Prices {
		_, err := w.CreatePriceListing(ctx, models.PriceListing{
			ItemId:        itemIds[p.Item],
			MarketplaceId: marketplaceIds[p.Marketplace],
			Price:         decimal.RequireFromString(p.Price),
			CurrencyCode:  strings.ToUpper(p.Currency),
			ListingUrl:    p.ListingUrl,
		})
		if err != nil {
			return stats, fmt.Errorf("failed to create price for %s: %w", p.Item, err)
		}
		stats.Prices++
	}

	for _, u := range seed.Users {
		role := models.RoleUser
		if u.Role != "" {
			role, _ = models.ParseRole(u.Role)
		}
		user, err := engine.RegisterUser(ctx, store.CreateUserParams{
			Username:    u.Username,
			SteamId:     u.SteamId,
			DisplayName: u.DisplayName,
			Role:        role,
		})
		if err != nil {
			return stats, fmt.Errorf("failed to create user %s: %w", u.Username, err)
		}
		stats.Users++

		if u.Balance != "" {
			if amount := decimal.RequireFromString(u.Balance); amount.IsPositive() {
				if _, err := engine.TopUp(ctx, user.Id, amount); err != nil {
					return stats, fmt.Errorf("failed to fund user %s: %w", u.Username, err)
				}
			}
		}

		for _, inv := range u.Inventory {
			owned, err := w.CreateInventoryItem(ctx, itemIds[inv.Item], user.Id, !inv.Untradable)
			if err != nil {
				return stats, fmt.Errorf("failed to give %s to %s: %w", inv.Item, u.Username, err)
			}
			stats.Inventory++
			if inv.ListPrice == "" {
				continue
			}
			if _, err := engine.CreateOrRelist(ctx, user.Id, owned.Id, decimal.RequireFromString(inv.ListPrice)); err != nil {
				return stats, fmt.Errorf("failed to list %s for %s: %w", inv.Item, u.Username, err)
			}
			stats.Listings++
		}
	}

	zap.L().Info("Catalog seed applied",
		zap.Int("games", stats.Games),
		zap.Int("items", stats.Items),
		zap.Int("marketplaces", stats.Marketplaces),
		zap.Int("prices", stats.Prices),
		zap.Int("users", stats.Users),
		zap.Int("listings", stats.Listings))
	return stats, nil
}
