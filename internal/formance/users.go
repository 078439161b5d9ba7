package formance

import (
	"context"
	"fmt"

	"skin-market-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"go.uber.org/zap"
)

const commissionAddress = "platform:commission"

func userAddress(userId string) string {
	return "users:" + userId
}

// SyncAccount tags the user's ledger account with profile metadata so the
// mirror is readable without the marketplace database.
func (s *Service) SyncAccount(ctx context.Context, user *models.User) error {
	addr := userAddress(user.Id)
	zap.L().Info("Syncing user account to Formance", zap.String("address", addr), zap.String("username", user.Username))

	_, err := s.client.Ledger.V2.AddMetadataToAccount(ctx, operations.V2AddMetadataToAccountRequest{
		Ledger:      s.ledger,
		Address:     addr,
		RequestBody: accountMetadata(user),
	})
	if err != nil {
		return fmt.Errorf("failed to sync account %s: %w", addr, err)
	}
	return nil
}

func accountMetadata(user *models.User) map[string]string {
	return map[string]string{
		"entity_type":  "marketplace_user",
		"username":     user.Username,
		"steam_id":     user.SteamId,
		"display_name": user.DisplayName,
		"role":         user.Role.String(),
	}
}
