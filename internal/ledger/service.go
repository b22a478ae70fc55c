package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/amoura-app/amoura-backend/pkg/db/models"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
)

// Service reads transaction history for the admin surfaces. Writes stay on
// the repository inside the settlement transaction; nothing outside that
// path may append rows.
type Service interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.TransactionHistory, error)
}

type service struct {
	repo Repository
}

// NewService wires a ledger read service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.TransactionHistory, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id is required")
	}

	rows, err := s.repo.ListByBookingID(ctx, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list booking transactions")
	}
	return rows, nil
}
