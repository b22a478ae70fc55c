package bookings

import (
	"testing"

	"github.com/amoura-app/amoura-backend/pkg/enums"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
)

func TestValidateComplete(t *testing.T) {
	allowed := []enums.BookingStatus{
		enums.BookingStatusPending,
		enums.BookingStatusConfirmed,
		enums.BookingStatusDisputed,
	}
	for _, status := range allowed {
		if err := ValidateComplete(status, enums.PaymentStatusHeld); err != nil {
			t.Fatalf("expected complete allowed from %s, got %v", status, err)
		}
	}

	terminal := []enums.BookingStatus{
		enums.BookingStatusCompleted,
		enums.BookingStatusCancelled,
		enums.BookingStatusRejected,
	}
	for _, status := range terminal {
		err := ValidateComplete(status, enums.PaymentStatusHeld)
		if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict from %s, got %v", status, err)
		}
	}

	if err := ValidateComplete(enums.BookingStatusConfirmed, enums.PaymentStatusReleased); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected released payment to block complete, got %v", err)
	}
}

func TestValidateRefund(t *testing.T) {
	if err := ValidateRefund(enums.BookingStatusConfirmed, enums.PaymentStatusHeld); err != nil {
		t.Fatalf("expected refund allowed, got %v", err)
	}
	if err := ValidateRefund(enums.BookingStatusDisputed, enums.PaymentStatusPendingRelease); err != nil {
		t.Fatalf("expected refund allowed from disputed, got %v", err)
	}

	if err := ValidateRefund(enums.BookingStatusConfirmed, enums.PaymentStatusRefunded); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected refunded payment to block refund, got %v", err)
	}
	if err := ValidateRefund(enums.BookingStatusCompleted, enums.PaymentStatusReleased); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected refund blocked from completed, got %v", err)
	}
}

func TestValidateResolveDispute(t *testing.T) {
	if err := ValidateResolveDispute(enums.BookingStatusDisputed, enums.PaymentStatusHeld, enums.DisputeResolutionReleased); err != nil {
		t.Fatalf("expected release resolution allowed, got %v", err)
	}
	if err := ValidateResolveDispute(enums.BookingStatusDisputed, enums.PaymentStatusHeld, enums.DisputeResolutionRefunded); err != nil {
		t.Fatalf("expected refund resolution allowed, got %v", err)
	}

	// Resolution only ever applies to disputed bookings.
	others := []enums.BookingStatus{
		enums.BookingStatusPending,
		enums.BookingStatusConfirmed,
		enums.BookingStatusCompleted,
		enums.BookingStatusCancelled,
		enums.BookingStatusRejected,
	}
	for _, status := range others {
		err := ValidateResolveDispute(status, enums.PaymentStatusHeld, enums.DisputeResolutionReleased)
		if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict from %s, got %v", status, err)
		}
	}

	err := ValidateResolveDispute(enums.BookingStatusDisputed, enums.PaymentStatusHeld, enums.DisputeResolution("split"))
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown resolution, got %v", err)
	}
}

func TestValidateReject(t *testing.T) {
	if err := ValidateReject(enums.BookingStatusPending, enums.PaymentStatusPending); err != nil {
		t.Fatalf("expected reject allowed from pending, got %v", err)
	}

	others := []enums.BookingStatus{
		enums.BookingStatusConfirmed,
		enums.BookingStatusDisputed,
		enums.BookingStatusCompleted,
		enums.BookingStatusCancelled,
		enums.BookingStatusRejected,
	}
	for _, status := range others {
		if err := ValidateReject(status, enums.PaymentStatusPending); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
			t.Fatalf("expected reject blocked from %s, got %v", status, err)
		}
	}
}
