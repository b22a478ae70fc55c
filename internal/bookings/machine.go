package bookings

import (
	"github.com/amoura-app/amoura-backend/pkg/enums"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
)

// The transition gate is pure so services and tests can share it. The
// repository's guarded update re-checks the same pair under the transaction,
// which is what serializes concurrent settlements on one booking.

// ValidateComplete gates the release path. Completing is legal from pending,
// confirmed, or disputed, and only while the payment has not been released.
func ValidateComplete(status enums.BookingStatus, payment enums.PaymentStatus) error {
	if status.IsTerminal() {
		return transitionError("complete", status, payment)
	}
	if payment == enums.PaymentStatusReleased {
		return transitionError("complete", status, payment)
	}
	return nil
}

// ValidateRefund gates the cancel/refund path. Refunding is legal from
// pending, confirmed, or disputed, and only while the payment has not already
// been refunded.
func ValidateRefund(status enums.BookingStatus, payment enums.PaymentStatus) error {
	if status.IsTerminal() {
		return transitionError("refund", status, payment)
	}
	if payment == enums.PaymentStatusRefunded {
		return transitionError("refund", status, payment)
	}
	return nil
}

// ValidateResolveDispute requires the booking to be disputed and the chosen
// resolution to be a known outcome. The resolution then dispatches through the
// complete or refund gate.
func ValidateResolveDispute(status enums.BookingStatus, payment enums.PaymentStatus, resolution enums.DisputeResolution) error {
	if !resolution.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "dispute resolution must be released or refunded").
			WithDetails(map[string]any{"resolution": string(resolution)})
	}
	if status != enums.BookingStatusDisputed {
		return transitionError("resolve_dispute", status, payment)
	}
	switch resolution {
	case enums.DisputeResolutionReleased:
		return ValidateComplete(status, payment)
	default:
		return ValidateRefund(status, payment)
	}
}

// ValidateReject gates the intake rejection path, which carries no ledger
// effect. Only pending bookings can be rejected.
func ValidateReject(status enums.BookingStatus, payment enums.PaymentStatus) error {
	if status != enums.BookingStatusPending {
		return transitionError("reject", status, payment)
	}
	return nil
}

func transitionError(action string, status enums.BookingStatus, payment enums.PaymentStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "booking transition not allowed in current state").
		WithDetails(map[string]any{
			"action":         action,
			"status":         string(status),
			"payment_status": string(payment),
		})
}
