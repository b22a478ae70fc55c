package wallets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amoura-app/amoura-backend/pkg/db/models"
	"github.com/amoura-app/amoura-backend/pkg/enums"
)

// CreditDelta is a strictly additive balance adjustment. Settlement never
// decrements a wallet; withdraw and spend flows live elsewhere.
type CreditDelta struct {
	Balance  int64
	Refunded int64
	Pending  int64
}

// Repository defines persistence operations for wallets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error)
	FindByModelID(ctx context.Context, modelID uuid.UUID) (*models.Wallet, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error)
	Credit(ctx context.Context, walletID uuid.UUID, delta CreditDelta) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallets repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		return nil, err
	}
	return wallet, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) FindByModelID(ctx context.Context, modelID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("model_id = ?", modelID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Credit applies the delta with a guard on status. A banned or missing wallet
// leaves RowsAffected at zero, which callers must treat as a refused mutation.
func (r *repository) Credit(ctx context.Context, walletID uuid.UUID, delta CreditDelta) (bool, error) {
	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if delta.Balance != 0 {
		updates["total_balance"] = gorm.Expr("total_balance + ?", delta.Balance)
	}
	if delta.Refunded != 0 {
		updates["total_refunded"] = gorm.Expr("total_refunded + ?", delta.Refunded)
	}
	if delta.Pending != 0 {
		updates["total_pending"] = gorm.Expr("total_pending + ?", delta.Pending)
	}

	res := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ? AND status = ?", walletID, enums.WalletStatusActive).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
