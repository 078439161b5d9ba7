package market

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"skin-market-go/internal/models"
	"skin-market-go/internal/store"

	"go.uber.org/zap"
)

var (
	steamIdRegex  = regexp.MustCompile(`^[0-9]{17}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{2,32}$`)
)

// Login resolves an identifier to a user. A steam id match wins over a username match.
func (e *Engine) Login(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, Validation("identifier cannot be empty")
	}

	user, err := e.store.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFound("no user with steam id or username %q", identifier)
		}
		return nil, err
	}

	zap.L().Info("User logged in", zap.String("user_id", user.Id), zap.String("username", user.Username))
	return user, nil
}

func validateRegistration(params store.CreateUserParams) error {
	if !usernameRegex.MatchString(params.Username) {
		return Validation("username must be 2-32 letters, digits or _.-")
	}
	if !steamIdRegex.MatchString(params.SteamId) {
		return Validation("steam id must be 17 digits")
	}
	return nil
}

// RegisterUser creates an account with a zero balance.
func (e *Engine) RegisterUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.SteamId = strings.TrimSpace(params.SteamId)
	if err := validateRegistration(params); err != nil {
		return nil, err
	}
	if params.DisplayName == "" {
		params.DisplayName = params.Username
	}

	user, err := e.store.CreateUser(ctx, params)
	if err != nil {
		return nil, classify(err, "registration")
	}

	zap.L().Info("User registered",
		zap.String("user_id", user.Id),
		zap.String("username", user.Username),
		zap.Stringer("role", user.Role))
	return user, nil
}

func (e *Engine) User(ctx context.Context, userId string) (*models.User, error) {
	return e.requireUser(ctx, userId)
}

func (e *Engine) Users(ctx context.Context) ([]models.User, error) {
	return e.store.ListUsers(ctx)
}

// UpdateUserRole parses role case-insensitively into the closed role set.
func (e *Engine) UpdateUserRole(ctx context.Context, userId, role string) (*models.User, error) {
	parsed, err := models.ParseRole(role)
	if err != nil {
		return nil, Validation("%v", err)
	}
	if err := e.store.UpdateUserRole(ctx, userId, parsed); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFound("user %s not found", userId)
		}
		return nil, err
	}

	zap.L().Info("User role updated", zap.String("user_id", userId), zap.Stringer("role", parsed))
	return e.requireUser(ctx, userId)
}

func (e *Engine) AllListings(ctx context.Context) ([]models.ListingView, error) {
	return e.store.ListAllListings(ctx)
}

func (e *Engine) ActiveListingCountsBySeller(ctx context.Context) ([]models.SellerListingCount, error) {
	return e.store.ActiveListingCountsBySeller(ctx)
}

func (e *Engine) Games(ctx context.Context) ([]models.Game, error) {
	return e.store.ListGames(ctx)
}

// Catalog lists Active listings. An unknown sort key is rejected rather than ignored.
func (e *Engine) Catalog(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogEntry, error) {
	switch filter.SortBy {
	case "", models.SortPriceAsc, models.SortPriceDesc:
	default:
		return nil, Validation("unknown sort %q", filter.SortBy)
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return e.store.ListCatalog(ctx, filter)
}

func (e *Engine) Inventory(ctx context.Context, userId string) ([]models.InventoryLine, error) {
	if _, err := e.requireUser(ctx, userId); err != nil {
		return nil, err
	}
	return e.store.ListInventory(ctx, userId)
}
