package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/amoura-app/amoura-backend/pkg/enums"
)

// Wallet belongs to exactly one model or one customer. TotalBalance is a
// cached projection over TransactionHistory, not an independent source of
// truth; the settlement service is its only writer besides recharge and
// withdraw flows.
type Wallet struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ModelID       *uuid.UUID         `gorm:"column:model_id;type:uuid"`
	CustomerID    *uuid.UUID         `gorm:"column:customer_id;type:uuid"`
	TotalBalance  int64              `gorm:"column:total_balance;not null;default:0"`
	TotalRecharge int64              `gorm:"column:total_recharge;not null;default:0"`
	TotalWithdraw int64              `gorm:"column:total_withdraw;not null;default:0"`
	TotalSpend    int64              `gorm:"column:total_spend;not null;default:0"`
	TotalRefunded int64              `gorm:"column:total_refunded;not null;default:0"`
	TotalPending  int64              `gorm:"column:total_pending;not null;default:0"`
	Status        enums.WalletStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
