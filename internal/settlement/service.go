package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amoura-app/amoura-backend/internal/bookings"
	"github.com/amoura-app/amoura-backend/internal/commission"
	"github.com/amoura-app/amoura-backend/internal/ledger"
	"github.com/amoura-app/amoura-backend/internal/wallets"
	"github.com/amoura-app/amoura-backend/pkg/db/models"
	"github.com/amoura-app/amoura-backend/pkg/enums"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
	"github.com/amoura-app/amoura-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the sole writer of booking status, wallet balances, and
// transaction history. Every action applies as one atomic unit; the guarded
// status update inside the transaction serializes concurrent settlements on a
// single booking.
type Service interface {
	Complete(ctx context.Context, input CompleteInput) (*Result, error)
	Refund(ctx context.Context, input RefundInput) (*Result, error)
	ResolveDispute(ctx context.Context, input ResolveInput) (*Result, error)
	Reject(ctx context.Context, input RejectInput) (*Result, error)
}

// CompleteInput releases a booking's funds to the model side.
type CompleteInput struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
}

// RefundInput returns the full price to the customer.
type RefundInput struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
	Reason    *string
}

// ResolveInput settles a disputed booking one way or the other.
type ResolveInput struct {
	BookingID  uuid.UUID
	ActorID    uuid.UUID
	Resolution enums.DisputeResolution
}

// RejectInput declines a pending booking with no ledger effect.
type RejectInput struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
	Reason    string
}

// Result returns the mutated booking plus the financial breakdown and the
// history rows written, for audit logging upstream.
type Result struct {
	Booking        *models.Booking       `json:"booking"`
	Breakdown      *commission.Breakdown `json:"breakdown,omitempty"`
	TransactionIDs []uuid.UUID           `json:"transaction_ids,omitempty"`
}

type service struct {
	bookings bookings.Repository
	wallets  wallets.Repository
	history  ledger.Repository
	tx       txRunner
	metrics  *metrics.SettlementMetrics
}

// NewService builds a settlement service with the required dependencies.
func NewService(bookingsRepo bookings.Repository, walletsRepo wallets.Repository, historyRepo ledger.Repository, tx txRunner, m *metrics.SettlementMetrics) (Service, error) {
	if bookingsRepo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if walletsRepo == nil {
		return nil, fmt.Errorf("wallets repository required")
	}
	if historyRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		bookings: bookingsRepo,
		wallets:  walletsRepo,
		history:  historyRepo,
		tx:       tx,
		metrics:  m,
	}, nil
}

func (s *service) Complete(ctx context.Context, input CompleteInput) (*Result, error) {
	start := time.Now()
	result, err := s.complete(ctx, input)
	s.observe("complete", start, err)
	return result, err
}

func (s *service) complete(ctx context.Context, input CompleteInput) (*Result, error) {
	if err := validateActor(input.BookingID, input.ActorID); err != nil {
		return nil, err
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.loadBooking(ctx, tx, input.BookingID)
		if err != nil {
			return err
		}
		if err := bookings.ValidateComplete(booking.Status, booking.PaymentStatus); err != nil {
			return withBookingDetail(err, booking.ID)
		}

		result, err = s.release(ctx, tx, booking, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Refund(ctx context.Context, input RefundInput) (*Result, error) {
	start := time.Now()
	result, err := s.refund(ctx, input)
	s.observe("refund", start, err)
	return result, err
}

func (s *service) refund(ctx context.Context, input RefundInput) (*Result, error) {
	if err := validateActor(input.BookingID, input.ActorID); err != nil {
		return nil, err
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.loadBooking(ctx, tx, input.BookingID)
		if err != nil {
			return err
		}
		if err := bookings.ValidateRefund(booking.Status, booking.PaymentStatus); err != nil {
			return withBookingDetail(err, booking.ID)
		}

		result, err = s.refundToCustomer(ctx, tx, booking, input.Reason, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ResolveDispute(ctx context.Context, input ResolveInput) (*Result, error) {
	start := time.Now()
	result, err := s.resolveDispute(ctx, input)
	s.observe("resolve_dispute", start, err)
	return result, err
}

func (s *service) resolveDispute(ctx context.Context, input ResolveInput) (*Result, error) {
	if err := validateActor(input.BookingID, input.ActorID); err != nil {
		return nil, err
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.loadBooking(ctx, tx, input.BookingID)
		if err != nil {
			return err
		}
		if err := bookings.ValidateResolveDispute(booking.Status, booking.PaymentStatus, input.Resolution); err != nil {
			return withBookingDetail(err, booking.ID)
		}

		// The resolution is stamped in the same guarded update that moves
		// the booking out of disputed.
		extra := map[string]any{"dispute_resolution": input.Resolution}
		if input.Resolution == enums.DisputeResolutionReleased {
			result, err = s.release(ctx, tx, booking, extra)
		} else {
			result, err = s.refundToCustomer(ctx, tx, booking, nil, extra)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Reject(ctx context.Context, input RejectInput) (*Result, error) {
	start := time.Now()
	result, err := s.reject(ctx, input)
	s.observe("reject", start, err)
	return result, err
}

func (s *service) reject(ctx context.Context, input RejectInput) (*Result, error) {
	if err := validateActor(input.BookingID, input.ActorID); err != nil {
		return nil, err
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reject reason required")
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.loadBooking(ctx, tx, input.BookingID)
		if err != nil {
			return err
		}
		if err := bookings.ValidateReject(booking.Status, booking.PaymentStatus); err != nil {
			return withBookingDetail(err, booking.ID)
		}

		applied, err := s.bookings.WithTx(tx).ApplyTransition(ctx, bookings.Transition{
			BookingID:         booking.ID,
			FromStatus:        booking.Status,
			FromPaymentStatus: booking.PaymentStatus,
			ToStatus:          enums.BookingStatusRejected,
			ToPaymentStatus:   booking.PaymentStatus,
			Updates:           map[string]any{"reject_reason": input.Reason},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
		}
		if !applied {
			return lostRace(booking.ID)
		}

		booking.Status = enums.BookingStatusRejected
		booking.RejectReason = &input.Reason
		result = &Result{Booking: booking}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// release disburses a completed booking: the model's net, the referral
// carve-out when eligible, and a platform bookkeeping row for the remainder.
func (s *service) release(ctx context.Context, tx *gorm.DB, booking *models.Booking, extraUpdates map[string]any) (*Result, error) {
	if booking.ModelService == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking service offering not found").
			WithDetails(map[string]any{"booking_id": booking.ID})
	}

	var referrer *commission.Referrer
	var referrerModel *models.Model
	if booking.Model != nil && booking.Model.ReferredBy != nil {
		referrerModel = booking.Model.ReferredBy
		referrer = &commission.Referrer{
			Type:                referrerModel.Type,
			TotalReferredModels: referrerModel.TotalReferredModels,
		}
	}

	breakdown, err := commission.Compute(booking.Price, booking.ModelService.Commission, referrer)
	if err != nil {
		return nil, err
	}

	walletRepo := s.wallets.WithTx(tx)
	modelWallet, err := s.loadActiveWalletByModel(ctx, walletRepo, booking.ModelID)
	if err != nil {
		return nil, err
	}

	var referrerWallet *models.Wallet
	if breakdown.ReferrerEligible && breakdown.ReferrerAmount > 0 {
		referrerWallet, err = s.loadActiveWalletByModel(ctx, walletRepo, referrerModel.ID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	updates := map[string]any{"completed_at": now}
	for column, value := range extraUpdates {
		updates[column] = value
	}

	applied, err := s.bookings.WithTx(tx).ApplyTransition(ctx, bookings.Transition{
		BookingID:         booking.ID,
		FromStatus:        booking.Status,
		FromPaymentStatus: booking.PaymentStatus,
		ToStatus:          enums.BookingStatusCompleted,
		ToPaymentStatus:   enums.PaymentStatusReleased,
		Updates:           updates,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
	}
	if !applied {
		return nil, lostRace(booking.ID)
	}

	historyRepo := s.history.WithTx(tx)
	var txIDs []uuid.UUID

	earning := &models.TransactionHistory{
		Identifier: enums.TransactionKindEarning,
		Amount:     breakdown.ModelNet,
		Status:     enums.TransactionStatusCompleted,
		ModelID:    &booking.ModelID,
		BookingID:  &booking.ID,
	}
	if err := historyRepo.Create(ctx, earning); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record earning")
	}
	txIDs = append(txIDs, earning.ID)

	if referrerWallet != nil {
		referral := &models.TransactionHistory{
			Identifier: enums.TransactionKindReferralCommission,
			Amount:     breakdown.ReferrerAmount,
			Status:     enums.TransactionStatusCompleted,
			ModelID:    &referrerModel.ID,
			BookingID:  &booking.ID,
		}
		if err := historyRepo.Create(ctx, referral); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record referral commission")
		}
		txIDs = append(txIDs, referral.ID)
	}

	platform := &models.TransactionHistory{
		Identifier: enums.TransactionKindPlatformCommission,
		Amount:     breakdown.PlatformNet,
		Status:     enums.TransactionStatusCompleted,
		BookingID:  &booking.ID,
	}
	if err := historyRepo.Create(ctx, platform); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record platform commission")
	}
	txIDs = append(txIDs, platform.ID)

	if err := s.credit(ctx, walletRepo, modelWallet.ID, wallets.CreditDelta{Balance: breakdown.ModelNet}); err != nil {
		return nil, err
	}
	if referrerWallet != nil {
		if err := s.credit(ctx, walletRepo, referrerWallet.ID, wallets.CreditDelta{Balance: breakdown.ReferrerAmount}); err != nil {
			return nil, err
		}
	}

	booking.Status = enums.BookingStatusCompleted
	booking.PaymentStatus = enums.PaymentStatusReleased
	booking.CompletedAt = &now
	if resolution, ok := extraUpdates["dispute_resolution"].(enums.DisputeResolution); ok {
		booking.DisputeResolution = &resolution
	}

	return &Result{
		Booking:        booking,
		Breakdown:      &breakdown,
		TransactionIDs: txIDs,
	}, nil
}

// refundToCustomer returns the full price to the customer wallet. Only refunds
// ever credit the customer; the model side is untouched.
func (s *service) refundToCustomer(ctx context.Context, tx *gorm.DB, booking *models.Booking, reason *string, extraUpdates map[string]any) (*Result, error) {
	walletRepo := s.wallets.WithTx(tx)
	customerWallet, err := s.loadActiveWalletByCustomer(ctx, walletRepo, booking.CustomerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]any{"cancelled_at": now}
	if reason != nil {
		updates["refund_reason"] = *reason
	}
	for column, value := range extraUpdates {
		updates[column] = value
	}

	applied, err := s.bookings.WithTx(tx).ApplyTransition(ctx, bookings.Transition{
		BookingID:         booking.ID,
		FromStatus:        booking.Status,
		FromPaymentStatus: booking.PaymentStatus,
		ToStatus:          enums.BookingStatusCancelled,
		ToPaymentStatus:   enums.PaymentStatusRefunded,
		Updates:           updates,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
	}
	if !applied {
		return nil, lostRace(booking.ID)
	}

	refund := &models.TransactionHistory{
		Identifier: enums.TransactionKindRefund,
		Amount:     booking.Price,
		Status:     enums.TransactionStatusCompleted,
		CustomerID: &booking.CustomerID,
		BookingID:  &booking.ID,
	}
	if err := s.history.WithTx(tx).Create(ctx, refund); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record refund")
	}

	delta := wallets.CreditDelta{Balance: booking.Price, Refunded: booking.Price}
	if err := s.credit(ctx, walletRepo, customerWallet.ID, delta); err != nil {
		return nil, err
	}

	booking.Status = enums.BookingStatusCancelled
	booking.PaymentStatus = enums.PaymentStatusRefunded
	booking.CancelledAt = &now
	booking.RefundReason = reason
	if resolution, ok := extraUpdates["dispute_resolution"].(enums.DisputeResolution); ok {
		booking.DisputeResolution = &resolution
	}

	return &Result{
		Booking:        booking,
		TransactionIDs: []uuid.UUID{refund.ID},
	}, nil
}

func (s *service) loadBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.WithTx(tx).FindWithRelations(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found").
				WithDetails(map[string]any{"booking_id": bookingID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return booking, nil
}

func (s *service) loadActiveWalletByModel(ctx context.Context, repo wallets.Repository, modelID uuid.UUID) (*models.Wallet, error) {
	wallet, err := repo.FindByModelID(ctx, modelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "model wallet not found").
				WithDetails(map[string]any{"model_id": modelID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load model wallet")
	}
	return requireActive(wallet)
}

func (s *service) loadActiveWalletByCustomer(ctx context.Context, repo wallets.Repository, customerID uuid.UUID) (*models.Wallet, error) {
	wallet, err := repo.FindByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer wallet not found").
				WithDetails(map[string]any{"customer_id": customerID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer wallet")
	}
	return requireActive(wallet)
}

// credit applies a wallet increment and treats a refused guard as a banned
// wallet. The early active check can race a concurrent ban, so this re-check
// under the transaction is the one that counts.
func (s *service) credit(ctx context.Context, repo wallets.Repository, walletID uuid.UUID, delta wallets.CreditDelta) error {
	applied, err := repo.Credit(ctx, walletID, delta)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet")
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeWalletBanned, "wallet refused balance mutation").
			WithDetails(map[string]any{"wallet_id": walletID})
	}
	return nil
}

func requireActive(wallet *models.Wallet) (*models.Wallet, error) {
	if wallet.Status != enums.WalletStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeWalletBanned, "wallet is not active").
			WithDetails(map[string]any{"wallet_id": wallet.ID})
	}
	return wallet, nil
}

func validateActor(bookingID, actorID uuid.UUID) error {
	if bookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	return nil
}

func lostRace(bookingID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "booking was settled concurrently").
		WithDetails(map[string]any{"booking_id": bookingID})
}

func withBookingDetail(err error, bookingID uuid.UUID) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return err
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details == nil {
		details = map[string]any{}
	}
	details["booking_id"] = bookingID
	return typed.WithDetails(details)
}

func (s *service) observe(action string, start time.Time, err error) {
	s.metrics.IncOutcome(action, outcomeLabel(err))
	s.metrics.ObserveDuration(action, time.Since(start))
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeNotFound:
		return "not_found"
	case pkgerrors.CodeStateConflict:
		return "state_conflict"
	case pkgerrors.CodeWalletBanned:
		return "wallet_banned"
	case pkgerrors.CodeValidation:
		return "validation"
	case pkgerrors.CodeUnauthorized:
		return "unauthorized"
	default:
		return "error"
	}
}
