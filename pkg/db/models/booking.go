package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/amoura-app/amoura-backend/pkg/enums"
)

// Booking represents a single reserved engagement between a customer and a
// model. Intake creates it in pending; after that only the settlement service
// mutates it, and terminal statuses act as the deletion marker.
type Booking struct {
	ID                uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID        uuid.UUID                 `gorm:"column:customer_id;type:uuid;not null"`
	ModelID           uuid.UUID                 `gorm:"column:model_id;type:uuid;not null"`
	ModelServiceID    uuid.UUID                 `gorm:"column:model_service_id;type:uuid;not null"`
	Price             int64                     `gorm:"column:price;not null"`
	Status            enums.BookingStatus       `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus     enums.PaymentStatus       `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	HasTip            bool                      `gorm:"column:has_tip;not null;default:false"`
	TipAmount         int64                     `gorm:"column:tip_amount;not null;default:0"`
	DisputeReason     *string                   `gorm:"column:dispute_reason"`
	DisputeResolution *enums.DisputeResolution  `gorm:"column:dispute_resolution;type:text"`
	RejectReason      *string                   `gorm:"column:reject_reason"`
	RefundReason      *string                   `gorm:"column:refund_reason"`
	ScheduledAt       *time.Time                `gorm:"column:scheduled_at"`
	DisputedAt        *time.Time                `gorm:"column:disputed_at"`
	CompletedAt       *time.Time                `gorm:"column:completed_at"`
	CancelledAt       *time.Time                `gorm:"column:cancelled_at"`
	Customer          *Customer                 `gorm:"foreignKey:CustomerID"`
	Model             *Model                    `gorm:"foreignKey:ModelID"`
	ModelService      *ModelService             `gorm:"foreignKey:ModelServiceID"`
	CreatedAt         time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
