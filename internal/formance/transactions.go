package formance

import (
	"context"
	"fmt"

	"skin-market-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Numscript templates, one per ledger category. Every transaction carries the
// local entry id as metadata so the mirror can be joined back to the source row.

const numscriptDeposit = `vars {
  asset $asset
  number $amount
  account $user_id
  string $entry_id
  string $category
  string $description
}

send [$asset $amount] (
  source = @world
  destination = @users:$user_id
)

set_tx_meta("entry_id", $entry_id)
set_tx_meta("category", $category)
set_tx_meta("description", $description)
`

const numscriptWithdrawal = `vars {
  asset $asset
  number $amount
  account $user_id
  string $entry_id
  string $category
  string $description
}

send [$asset $amount] (
  source = @users:$user_id
  destination = @world
)

set_tx_meta("entry_id", $entry_id)
set_tx_meta("category", $category)
set_tx_meta("description", $description)
`

// The buyer's payment is parked on the listing until the matching sale entry releases it.
const numscriptPurchase = `vars {
  asset $asset
  number $amount
  account $user_id
  account $listing_id
  string $entry_id
  string $category
  string $description
}

send [$asset $amount] (
  source = @users:$user_id
  destination = @listings:$listing_id:escrow
)

set_tx_meta("entry_id", $entry_id)
set_tx_meta("category", $category)
set_tx_meta("description", $description)
`

// Whatever the seller does not receive is the platform's commission.
const numscriptSale = `vars {
  asset $asset
  number $amount
  account $user_id
  account $listing_id
  string $entry_id
  string $category
  string $description
}

send [$asset $amount] (
  source = @listings:$listing_id:escrow
  destination = @users:$user_id
)

send [$asset *] (
  source = @listings:$listing_id:escrow
  destination = @platform:commission
)

set_tx_meta("entry_id", $entry_id)
set_tx_meta("category", $category)
set_tx_meta("description", $description)
`

// buildTransaction maps a local ledger entry to a Formance transaction.
func buildTransaction(entry models.LedgerEntry) (shared.V2PostTransaction, error) {
	var script string
	switch entry.Category {
	case models.LedgerDeposit:
		script = numscriptDeposit
	case models.LedgerWithdrawal:
		script = numscriptWithdrawal
	case models.LedgerPurchase:
		script = numscriptPurchase
	case models.LedgerSale:
		script = numscriptSale
	default:
		return shared.V2PostTransaction{}, fmt.Errorf("unsupported ledger category %q", entry.Category)
	}

	vars := map[string]string{
		"asset":       formanceAsset(),
		"amount":      smallestUnits(entry.Amount),
		"user_id":     entry.UserId,
		"entry_id":    entry.Id,
		"category":    entry.Category,
		"description": entry.Description,
	}
	if entry.Category == models.LedgerPurchase || entry.Category == models.LedgerSale {
		if entry.Reference == "" {
			return shared.V2PostTransaction{}, fmt.Errorf("%s entry %s has no listing reference", entry.Category, entry.Id)
		}
		vars["listing_id"] = entry.Reference
	}

	postTx := shared.V2PostTransaction{
		Reference: strPtr(entry.Id),
		Script: &shared.V2PostTransactionScript{
			Plain: script,
			Vars:  vars,
		},
	}
	if !entry.CreatedAt.IsZero() {
		ts := entry.CreatedAt
		postTx.Timestamp = &ts
	}
	return postTx, nil
}

// PostEntry records one ledger entry. Posting an entry twice is a no-op since
// the entry id is used as the transaction reference.
func (s *Service) PostEntry(ctx context.Context, entry models.LedgerEntry) error {
	postTx, err := buildTransaction(entry)
	if err != nil {
		return err
	}

	_, err = s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            s.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			zap.L().Debug("Ledger entry already mirrored", zap.String("entry_id", entry.Id))
			return nil
		}
		return fmt.Errorf("error mirroring %s entry %s: %w", entry.Category, entry.Id, err)
	}

	zap.L().Info("Ledger entry mirrored to Formance",
		zap.String("entry_id", entry.Id),
		zap.String("user_id", entry.UserId),
		zap.String("category", entry.Category),
		zap.String("amount", entry.Amount.String()))
	return nil
}

// smallestUnits converts a signed amount into unsigned cents.
func smallestUnits(amount decimal.Decimal) string {
	return amount.Abs().Shift(currencyPrecision).BigInt().String()
}
