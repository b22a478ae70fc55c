package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amoura-app/amoura-backend/pkg/db/models"
	"github.com/amoura-app/amoura-backend/pkg/enums"
	"github.com/amoura-app/amoura-backend/pkg/pagination"
)

func setupBookingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS models (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'normal',
  referred_by_id TEXT,
  total_referred_models INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS services (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS model_services (
  id TEXT PRIMARY KEY,
  model_id TEXT NOT NULL,
  service_id TEXT NOT NULL,
  price INTEGER NOT NULL,
  commission INTEGER NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  model_id TEXT NOT NULL,
  model_service_id TEXT NOT NULL,
  price INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  has_tip INTEGER NOT NULL DEFAULT 0,
  tip_amount INTEGER NOT NULL DEFAULT 0,
  dispute_reason TEXT,
  dispute_resolution TEXT,
  reject_reason TEXT,
  refund_reason TEXT,
  scheduled_at DATETIME,
  disputed_at DATETIME,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedBookingGraph(t *testing.T, db *gorm.DB, modelType enums.ModelType, referred int) (*models.Booking, *models.Model) {
	t.Helper()

	referrer := &models.Model{
		ID:                  uuid.New(),
		Name:                "Referrer",
		Type:                modelType,
		TotalReferredModels: referred,
	}
	require.NoError(t, db.Create(referrer).Error)

	model := &models.Model{
		ID:           uuid.New(),
		Name:         "Worker",
		Type:         enums.ModelTypeNormal,
		ReferredByID: &referrer.ID,
	}
	require.NoError(t, db.Create(model).Error)

	customer := &models.Customer{ID: uuid.New(), Name: "Client"}
	require.NoError(t, db.Create(customer).Error)

	service := &models.Service{ID: uuid.New(), Name: "Dinner date"}
	require.NoError(t, db.Create(service).Error)

	offering := &models.ModelService{
		ID:         uuid.New(),
		ModelID:    model.ID,
		ServiceID:  service.ID,
		Price:      100000,
		Commission: 10,
	}
	require.NoError(t, db.Create(offering).Error)

	booking := &models.Booking{
		ID:             uuid.New(),
		CustomerID:     customer.ID,
		ModelID:        model.ID,
		ModelServiceID: offering.ID,
		Price:          100000,
		Status:         enums.BookingStatusConfirmed,
		PaymentStatus:  enums.PaymentStatusHeld,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking, model
}

func TestFindWithRelations(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded, _ := seedBookingGraph(t, db, enums.ModelTypePartner, 3)

	booking, err := repo.FindWithRelations(ctx, seeded.ID)
	require.NoError(t, err)
	require.NotNil(t, booking.Customer)
	require.NotNil(t, booking.Model)
	require.NotNil(t, booking.Model.ReferredBy)
	require.Equal(t, enums.ModelTypePartner, booking.Model.ReferredBy.Type)
	require.NotNil(t, booking.ModelService)
	require.NotNil(t, booking.ModelService.Service)
	require.Equal(t, 10, booking.ModelService.Commission)
}

func TestApplyTransitionGuardsOnStatusPair(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded, _ := seedBookingGraph(t, db, enums.ModelTypeNormal, 0)

	now := time.Now().UTC()
	transition := Transition{
		BookingID:         seeded.ID,
		FromStatus:        enums.BookingStatusConfirmed,
		FromPaymentStatus: enums.PaymentStatusHeld,
		ToStatus:          enums.BookingStatusCompleted,
		ToPaymentStatus:   enums.PaymentStatusReleased,
		Updates:           map[string]any{"completed_at": now},
	}

	applied, err := repo.ApplyTransition(ctx, transition)
	require.NoError(t, err)
	require.True(t, applied)

	updated, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusCompleted, updated.Status)
	require.Equal(t, enums.PaymentStatusReleased, updated.PaymentStatus)
	require.NotNil(t, updated.CompletedAt)

	// A second settlement loaded the same stale pair; the guard rejects it.
	applied, err = repo.ApplyTransition(ctx, transition)
	require.NoError(t, err)
	require.False(t, applied)
}

func TestApplyTransitionUnknownBooking(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	applied, err := repo.ApplyTransition(context.Background(), Transition{
		BookingID:         uuid.New(),
		FromStatus:        enums.BookingStatusPending,
		FromPaymentStatus: enums.PaymentStatusPending,
		ToStatus:          enums.BookingStatusRejected,
		ToPaymentStatus:   enums.PaymentStatusPending,
	})
	require.NoError(t, err)
	require.False(t, applied)
}

func TestListFiltersAndPaginates(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customer := &models.Customer{ID: uuid.New(), Name: "Client"}
	require.NoError(t, db.Create(customer).Error)
	model := &models.Model{ID: uuid.New(), Name: "Worker"}
	require.NoError(t, db.Create(model).Error)
	service := &models.Service{ID: uuid.New(), Name: "Dinner date"}
	require.NoError(t, db.Create(service).Error)
	offering := &models.ModelService{
		ID:         uuid.New(),
		ModelID:    model.ID,
		ServiceID:  service.ID,
		Price:      50000,
		Commission: 15,
	}
	require.NoError(t, db.Create(offering).Error)

	base := time.Now().UTC().Add(-time.Hour)
	statuses := []enums.BookingStatus{
		enums.BookingStatusPending,
		enums.BookingStatusPending,
		enums.BookingStatusCompleted,
	}
	for i, status := range statuses {
		booking := &models.Booking{
			ID:             uuid.New(),
			CustomerID:     customer.ID,
			ModelID:        model.ID,
			ModelServiceID: offering.ID,
			Price:          50000,
			Status:         status,
			PaymentStatus:  enums.PaymentStatusHeld,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(booking).Error)
	}

	pending := enums.BookingStatusPending
	list, err := repo.List(ctx, pagination.Params{Limit: 1}, ListFilters{Status: &pending})
	require.NoError(t, err)
	require.Len(t, list.Bookings, 1)
	require.NotEmpty(t, list.NextCursor)
	require.Equal(t, enums.BookingStatusPending, list.Bookings[0].Status)
	require.Equal(t, "Client", list.Bookings[0].CustomerName)
	require.Equal(t, "Dinner date", list.Bookings[0].ServiceName)

	rest, err := repo.List(ctx, pagination.Params{Limit: 1, Cursor: list.NextCursor}, ListFilters{Status: &pending})
	require.NoError(t, err)
	require.Len(t, rest.Bookings, 1)
	require.Empty(t, rest.NextCursor)
	require.NotEqual(t, list.Bookings[0].ID, rest.Bookings[0].ID)
}
