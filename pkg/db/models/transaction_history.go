package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/amoura-app/amoura-backend/pkg/enums"
)

// TransactionHistory is an append-only money fact. Rows are never updated or
// deleted after creation; they are the authoritative audit trail the wallet
// projections are derived from.
type TransactionHistory struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Identifier enums.TransactionKind   `gorm:"column:identifier;type:text;not null"`
	Amount     int64                   `gorm:"column:amount;not null"`
	Status     enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'completed'"`
	ModelID    *uuid.UUID              `gorm:"column:model_id;type:uuid"`
	CustomerID *uuid.UUID              `gorm:"column:customer_id;type:uuid"`
	BookingID  *uuid.UUID              `gorm:"column:booking_id;type:uuid"`
	Note       *string                 `gorm:"column:note"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the historical table name used by the admin tooling.
func (TransactionHistory) TableName() string {
	return "transaction_histories"
}
