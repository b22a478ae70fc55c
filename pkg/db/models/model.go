package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/amoura-app/amoura-backend/pkg/enums"
)

// Model represents a service provider. ReferredByID is a lookup key to the
// model who recruited this one, not an ownership relation; the counter cache
// TotalReferredModels feeds referral eligibility checks.
type Model struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                string          `gorm:"column:name;not null"`
	Type                enums.ModelType `gorm:"column:type;type:text;not null;default:'normal'"`
	ReferredByID        *uuid.UUID      `gorm:"column:referred_by_id;type:uuid"`
	TotalReferredModels int             `gorm:"column:total_referred_models;not null;default:0"`
	IsActive            bool            `gorm:"column:is_active;not null;default:true"`
	ReferredBy          *Model          `gorm:"foreignKey:ReferredByID"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
