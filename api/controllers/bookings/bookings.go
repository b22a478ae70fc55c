package bookings

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/amoura-app/amoura-backend/api/middleware"
	"github.com/amoura-app/amoura-backend/api/responses"
	"github.com/amoura-app/amoura-backend/api/validators"
	internalbookings "github.com/amoura-app/amoura-backend/internal/bookings"
	"github.com/amoura-app/amoura-backend/internal/ledger"
	"github.com/amoura-app/amoura-backend/internal/settlement"
	"github.com/amoura-app/amoura-backend/pkg/enums"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
	"github.com/amoura-app/amoura-backend/pkg/logger"
	"github.com/amoura-app/amoura-backend/pkg/pagination"
)

type refundRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,min=3,max=500"`
}

type resolveDisputeRequest struct {
	Resolution string `json:"resolution" validate:"required,oneof=released refunded"`
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// List returns a cursor-paginated booking page with optional filters.
func List(repo internalbookings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := repo.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns a booking with its customer, model, and offering loaded.
func Detail(repo internalbookings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings repository unavailable"))
			return
		}

		bookingID, err := validators.PathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := repo.FindWithRelations(r.Context(), bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch booking"))
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

// Complete releases the held payment to the model side.
func Complete(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		bookingID, err := validators.PathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithBookingID(ctx, bookingID.String())
		}
		result, err := svc.Complete(ctx, settlement.CompleteInput{
			BookingID: bookingID,
			ActorID:   middleware.AdminIDFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Refund returns the full price to the customer wallet.
func Refund(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		bookingID, err := validators.PathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req refundRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithBookingID(ctx, bookingID.String())
		}
		result, err := svc.Refund(ctx, settlement.RefundInput{
			BookingID: bookingID,
			ActorID:   middleware.AdminIDFromContext(ctx),
			Reason:    req.Reason,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ResolveDispute settles a disputed booking toward release or refund.
func ResolveDispute(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		bookingID, err := validators.PathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req resolveDisputeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithBookingID(ctx, bookingID.String())
		}
		result, err := svc.ResolveDispute(ctx, settlement.ResolveInput{
			BookingID:  bookingID,
			ActorID:    middleware.AdminIDFromContext(ctx),
			Resolution: enums.DisputeResolution(req.Resolution),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Transactions returns the ledger rows written for a booking's settlement.
func Transactions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		bookingID, err := validators.PathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListByBooking(r.Context(), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"transactions": rows})
	}
}

// Reject declines a pending booking with no ledger effect.
func Reject(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		bookingID, err := validators.PathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req rejectRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithBookingID(ctx, bookingID.String())
		}
		result, err := svc.Reject(ctx, settlement.RejectInput{
			BookingID: bookingID,
			ActorID:   middleware.AdminIDFromContext(ctx),
			Reason:    req.Reason,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func buildListFilters(r *http.Request) (internalbookings.ListFilters, error) {
	var filters internalbookings.ListFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseBookingStatus(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown booking status").WithDetails(map[string]any{"field": "status"})
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status").WithDetails(map[string]any{"field": "payment_status"})
		}
		filters.PaymentStatus = &status
	}

	modelID, err := validators.ParseQueryUUID(r, "model_id")
	if err != nil {
		return filters, err
	}
	filters.ModelID = modelID

	customerID, err := validators.ParseQueryUUID(r, "customer_id")
	if err != nil {
		return filters, err
	}
	filters.CustomerID = customerID

	dateFrom, err := validators.ParseQueryTime(r, "date_from")
	if err != nil {
		return filters, err
	}
	filters.DateFrom = dateFrom

	dateTo, err := validators.ParseQueryTime(r, "date_to")
	if err != nil {
		return filters, err
	}
	filters.DateTo = dateTo

	return filters, nil
}
