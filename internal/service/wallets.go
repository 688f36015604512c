package service

import (
	"context"
	"strings"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

type LinkWalletInput struct {
	Address string `json:"address" validate:"required"`
	Chain   string `json:"chain" validate:"omitempty,oneof=SOL EVM"`
}

// WalletService maintains the user-to-wallet mapping consulted before Jupiter audit rows
// are written.
type WalletService struct {
	Repo repository.WalletRepository
}

func (s *WalletService) Link(ctx context.Context, userID string, in LinkWalletInput) (*models.UserWallet, error) {
	if s == nil || s.Repo == nil {
		return nil, errRepoUnavailable
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	in.Address = strings.TrimSpace(in.Address)
	in.Chain = strings.ToUpper(strings.TrimSpace(in.Chain))
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if in.Chain == "" {
		in.Chain = models.ChainSOL
	}
	item := &models.UserWallet{UserID: userID, Address: in.Address, Chain: in.Chain}
	if err := s.Repo.LinkWallet(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *WalletService) List(ctx context.Context, userID string) ([]models.UserWallet, error) {
	if s == nil || s.Repo == nil {
		return nil, errRepoUnavailable
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.Repo.ListUserWallets(ctx, userID)
}
