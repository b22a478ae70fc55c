package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amoura-app/amoura-backend/pkg/db/models"
	"github.com/amoura-app/amoura-backend/pkg/pagination"
)

// Repository defines persistence operations for bookings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindWithRelations(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error)
	ApplyTransition(ctx context.Context, transition Transition) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindWithRelations(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Model").
		Preload("Model.ReferredBy").
		Preload("ModelService").
		Preload("ModelService.Service").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Preload("Customer").
		Preload("Model").
		Preload("ModelService.Service")

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.ModelID != nil {
		query = query.Where("model_id = ?", *filters.ModelID)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Booking
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &List{Bookings: make([]Summary, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Bookings = append(list.Bookings, summarize(row))
	}
	return list, nil
}

// ApplyTransition performs the conditional status update. The WHERE clause is
// keyed on the loaded status pair, so of two racing settlements only one sees
// RowsAffected == 1; the loser must surface a state conflict.
func (r *repository) ApplyTransition(ctx context.Context, transition Transition) (bool, error) {
	updates := map[string]any{
		"status":         transition.ToStatus,
		"payment_status": transition.ToPaymentStatus,
		"updated_at":     time.Now().UTC(),
	}
	for column, value := range transition.Updates {
		updates[column] = value
	}

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ? AND payment_status = ?",
			transition.BookingID, transition.FromStatus, transition.FromPaymentStatus).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func summarize(booking models.Booking) Summary {
	summary := Summary{
		ID:            booking.ID,
		CustomerID:    booking.CustomerID,
		ModelID:       booking.ModelID,
		Price:         booking.Price,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		CreatedAt:     booking.CreatedAt,
	}
	if booking.Customer != nil {
		summary.CustomerName = booking.Customer.Name
	}
	if booking.Model != nil {
		summary.ModelName = booking.Model.Name
	}
	if booking.ModelService != nil && booking.ModelService.Service != nil {
		summary.ServiceName = booking.ModelService.Service.Name
	}
	return summary
}
