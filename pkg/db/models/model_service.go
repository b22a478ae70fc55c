package models

import (
	"time"

	"github.com/google/uuid"
)

// ModelService is the concrete offering of a Service by a Model. Commission is
// the platform cut in whole percent and is the single source of truth for the
// service commission applied to a booking.
type ModelService struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ModelID    uuid.UUID `gorm:"column:model_id;type:uuid;not null;uniqueIndex:idx_model_services_model_service"`
	ServiceID  uuid.UUID `gorm:"column:service_id;type:uuid;not null;uniqueIndex:idx_model_services_model_service"`
	Price      int64     `gorm:"column:price;not null"`
	Commission int       `gorm:"column:commission;not null"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	Service    *Service  `gorm:"foreignKey:ServiceID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
