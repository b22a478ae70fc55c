package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amoura-app/amoura-backend/pkg/db/models"
	"github.com/amoura-app/amoura-backend/pkg/enums"
	"github.com/amoura-app/amoura-backend/pkg/pagination"
)

// Repository manages persistence for transaction history rows. The table is
// append-only; there are deliberately no update or delete operations here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, row *models.TransactionHistory) error
	ListByBookingID(ctx context.Context, bookingID uuid.UUID) ([]models.TransactionHistory, error)
	ListByModelID(ctx context.Context, modelID uuid.UUID, params pagination.Params) (*HistoryList, error)
	ListByCustomerID(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*HistoryList, error)
	SumByModelID(ctx context.Context, modelID uuid.UUID) (int64, error)
	SumByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a history repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, row *models.TransactionHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) ListByBookingID(ctx context.Context, bookingID uuid.UUID) ([]models.TransactionHistory, error) {
	var rows []models.TransactionHistory
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByModelID(ctx context.Context, modelID uuid.UUID, params pagination.Params) (*HistoryList, error) {
	return r.list(ctx, "model_id = ?", modelID, params)
}

func (r *repository) ListByCustomerID(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*HistoryList, error) {
	return r.list(ctx, "customer_id = ?", customerID, params)
}

func (r *repository) list(ctx context.Context, ownerClause string, ownerID uuid.UUID, params pagination.Params) (*HistoryList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.TransactionHistory{}).
		Where(ownerClause, ownerID)

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

	var rows []models.TransactionHistory
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &HistoryList{Transactions: rows}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.Transactions = rows[:limit]
	}
	return list, nil
}

func (r *repository) SumByModelID(ctx context.Context, modelID uuid.UUID) (int64, error) {
	return r.sum(ctx, "model_id = ?", modelID)
}

func (r *repository) SumByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	return r.sum(ctx, "customer_id = ?", customerID)
}

// sum folds completed history rows into a signed balance. Debit kinds count
// negative, credit kinds positive; platform bookkeeping rows carry no wallet
// owner and never match an owner clause.
func (r *repository) sum(ctx context.Context, ownerClause string, ownerID uuid.UUID) (int64, error) {
	var rows []models.TransactionHistory
	if err := r.db.WithContext(ctx).
		Where(ownerClause, ownerID).
		Where("status = ?", enums.TransactionStatusCompleted).
		Find(&rows).Error; err != nil {
		return 0, err
	}

	var total int64
	for _, row := range rows {
		total += row.Identifier.SignedAmount(row.Amount)
	}
	return total, nil
}

// HistoryList wraps paginated transactions plus the next cursor.
type HistoryList struct {
	Transactions []models.TransactionHistory `json:"transactions"`
	NextCursor   string                      `json:"next_cursor,omitempty"`
}
