package wallets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amoura-app/amoura-backend/internal/ledger"
	"github.com/amoura-app/amoura-backend/pkg/db/models"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
	"github.com/amoura-app/amoura-backend/pkg/pagination"
)

// Service exposes wallet reads for the admin surface.
type Service interface {
	Get(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, params pagination.Params) (*ledger.HistoryList, error)
	Recalculate(ctx context.Context, walletID uuid.UUID) (*DriftReport, error)
}

// DriftReport compares the cached balance projection against the balance
// recomputed from transaction history.
type DriftReport struct {
	WalletID        uuid.UUID `json:"wallet_id"`
	CachedBalance   int64     `json:"cached_balance"`
	ComputedBalance int64     `json:"computed_balance"`
	Drift           int64     `json:"drift"`
}

type service struct {
	repo    Repository
	history ledger.Repository
}

// NewService wires a wallet service with the required repositories.
func NewService(repo Repository, history ledger.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallets repository required")
	}
	if history == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo, history: history}, nil
}

func (s *service) Get(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	if walletID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet id required")
	}
	wallet, err := s.repo.FindByID(ctx, walletID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	return wallet, nil
}

func (s *service) ListTransactions(ctx context.Context, walletID uuid.UUID, params pagination.Params) (*ledger.HistoryList, error) {
	wallet, err := s.Get(ctx, walletID)
	if err != nil {
		return nil, err
	}

	switch {
	case wallet.ModelID != nil:
		list, err := s.history.ListByModelID(ctx, *wallet.ModelID, params)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
		}
		return list, nil
	case wallet.CustomerID != nil:
		list, err := s.history.ListByCustomerID(ctx, *wallet.CustomerID, params)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
		}
		return list, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wallet has no owner")
	}
}

// Recalculate folds the wallet's completed history into a balance and reports
// the drift against the cached projection. It is a read-only check and
// never repairs the projection.
func (s *service) Recalculate(ctx context.Context, walletID uuid.UUID) (*DriftReport, error) {
	wallet, err := s.Get(ctx, walletID)
	if err != nil {
		return nil, err
	}

	var computed int64
	switch {
	case wallet.ModelID != nil:
		computed, err = s.history.SumByModelID(ctx, *wallet.ModelID)
	case wallet.CustomerID != nil:
		computed, err = s.history.SumByCustomerID(ctx, *wallet.CustomerID)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wallet has no owner")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum wallet history")
	}

	return &DriftReport{
		WalletID:        wallet.ID,
		CachedBalance:   wallet.TotalBalance,
		ComputedBalance: computed,
		Drift:           wallet.TotalBalance - computed,
	}, nil
}
