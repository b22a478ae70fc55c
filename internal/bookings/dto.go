package bookings

import (
	"time"

	"github.com/google/uuid"

	"github.com/amoura-app/amoura-backend/pkg/enums"
)

// ListFilters describe the inputs supported by the admin bookings list.
type ListFilters struct {
	Status        *enums.BookingStatus
	PaymentStatus *enums.PaymentStatus
	ModelID       *uuid.UUID
	CustomerID    *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
}

// Summary exposes the aggregated fields returned in the admin list.
type Summary struct {
	ID            uuid.UUID           `json:"id"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	CustomerName  string              `json:"customer_name"`
	ModelID       uuid.UUID           `json:"model_id"`
	ModelName     string              `json:"model_name"`
	ServiceName   string              `json:"service_name"`
	Price         int64               `json:"price"`
	Status        enums.BookingStatus `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time           `json:"created_at"`
}

// List wraps the paginated bookings plus the next page cursor.
type List struct {
	Bookings   []Summary `json:"bookings"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// Transition is the guarded status update applied by settlement. From values
// are the booking's loaded state; the update only lands when the row still
// matches them.
type Transition struct {
	BookingID         uuid.UUID
	FromStatus        enums.BookingStatus
	FromPaymentStatus enums.PaymentStatus
	ToStatus          enums.BookingStatus
	ToPaymentStatus   enums.PaymentStatus
	Updates           map[string]any
}
