package formance

import (
	"context"
	"fmt"
	"math/big"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UserBalance returns the mirrored balance of users:{userId}.
// An account the ledger has never seen reports zero.
func (s *Service) UserBalance(ctx context.Context, userId string) (decimal.Decimal, error) {
	vols, err := s.accountVolumes(ctx, userAddress(userId))
	if err != nil {
		return decimal.Zero, err
	}
	return bigIntToDecimal(volumeBalance(vols, formanceAsset())), nil
}

// CommissionBalance returns what the platform has collected so far.
func (s *Service) CommissionBalance(ctx context.Context) (decimal.Decimal, error) {
	vols, err := s.accountVolumes(ctx, commissionAddress)
	if err != nil {
		return decimal.Zero, err
	}
	return bigIntToDecimal(volumeBalance(vols, formanceAsset())), nil
}

func (s *Service) accountVolumes(ctx context.Context, address string) (map[string]shared.V2Volume, error) {
	zap.L().Debug("Getting account volumes from Formance", zap.String("address", address))

	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: address,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	return resp.V2AccountResponse.Data.Volumes, nil
}

// volumeBalance extracts the balance for one asset, falling back to input minus output.
func volumeBalance(vols map[string]shared.V2Volume, fAsset string) *big.Int {
	vol, ok := vols[fAsset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}

// bigIntToDecimal converts cents to a decimal amount.
func bigIntToDecimal(raw *big.Int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -currencyPrecision)
}
