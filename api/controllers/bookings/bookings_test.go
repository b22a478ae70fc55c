package bookings

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	internalbookings "github.com/amoura-app/amoura-backend/internal/bookings"
	"github.com/amoura-app/amoura-backend/internal/settlement"
	"github.com/amoura-app/amoura-backend/pkg/db/models"
	"github.com/amoura-app/amoura-backend/pkg/enums"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
	"github.com/amoura-app/amoura-backend/pkg/pagination"
)

type stubSettlement struct {
	resolveInput *settlement.ResolveInput
	rejectInput  *settlement.RejectInput
	err          error
}

func (s *stubSettlement) Complete(_ context.Context, input settlement.CompleteInput) (*settlement.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &settlement.Result{Booking: &models.Booking{ID: input.BookingID}}, nil
}

func (s *stubSettlement) Refund(_ context.Context, input settlement.RefundInput) (*settlement.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &settlement.Result{Booking: &models.Booking{ID: input.BookingID}}, nil
}

func (s *stubSettlement) ResolveDispute(_ context.Context, input settlement.ResolveInput) (*settlement.Result, error) {
	s.resolveInput = &input
	if s.err != nil {
		return nil, s.err
	}
	return &settlement.Result{Booking: &models.Booking{ID: input.BookingID}}, nil
}

func (s *stubSettlement) Reject(_ context.Context, input settlement.RejectInput) (*settlement.Result, error) {
	s.rejectInput = &input
	if s.err != nil {
		return nil, s.err
	}
	return &settlement.Result{Booking: &models.Booking{ID: input.BookingID}}, nil
}

type stubListRepo struct {
	filters internalbookings.ListFilters
	params  pagination.Params
}

func (r *stubListRepo) WithTx(*gorm.DB) internalbookings.Repository { return r }

func (r *stubListRepo) Create(_ context.Context, booking *models.Booking) (*models.Booking, error) {
	return booking, nil
}

func (r *stubListRepo) FindByID(context.Context, uuid.UUID) (*models.Booking, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubListRepo) FindWithRelations(context.Context, uuid.UUID) (*models.Booking, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubListRepo) List(_ context.Context, params pagination.Params, filters internalbookings.ListFilters) (*internalbookings.List, error) {
	r.params = params
	r.filters = filters
	return &internalbookings.List{Bookings: []internalbookings.Summary{}}, nil
}

func (r *stubListRepo) ApplyTransition(context.Context, internalbookings.Transition) (bool, error) {
	return false, nil
}

func pathRequest(method, target, param, value string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	rc := chi.NewRouteContext()
	rc.URLParams.Add(param, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestCompleteHandlerHappyPath(t *testing.T) {
	bookingID := uuid.New()
	handler := Complete(&stubSettlement{}, nil)

	req := pathRequest(http.MethodPost, "/bookings/"+bookingID.String()+"/complete", "bookingId", bookingID.String(), strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
}

func TestCompleteHandlerRejectsBadID(t *testing.T) {
	handler := Complete(&stubSettlement{}, nil)

	req := pathRequest(http.MethodPost, "/bookings/not-a-uuid/complete", "bookingId", "not-a-uuid", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCompleteHandlerMapsStateConflict(t *testing.T) {
	bookingID := uuid.New()
	svc := &stubSettlement{err: pkgerrors.New(pkgerrors.CodeStateConflict, "booking was settled concurrently")}
	handler := Complete(svc, nil)

	req := pathRequest(http.MethodPost, "/bookings/"+bookingID.String()+"/complete", "bookingId", bookingID.String(), strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict code, got %s", payload.Error.Code)
	}
}

func TestResolveDisputeHandlerValidatesResolution(t *testing.T) {
	bookingID := uuid.New()
	svc := &stubSettlement{}
	handler := ResolveDispute(svc, nil)

	req := pathRequest(http.MethodPost, "/bookings/"+bookingID.String()+"/resolve-dispute", "bookingId", bookingID.String(), strings.NewReader(`{"resolution":"split"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.resolveInput != nil {
		t.Fatalf("service must not be called for an invalid resolution")
	}
}

func TestResolveDisputeHandlerPassesResolution(t *testing.T) {
	bookingID := uuid.New()
	svc := &stubSettlement{}
	handler := ResolveDispute(svc, nil)

	req := pathRequest(http.MethodPost, "/bookings/"+bookingID.String()+"/resolve-dispute", "bookingId", bookingID.String(), strings.NewReader(`{"resolution":"refunded"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
	if svc.resolveInput == nil || svc.resolveInput.Resolution != enums.DisputeResolutionRefunded {
		t.Fatalf("resolution not forwarded: %+v", svc.resolveInput)
	}
}

func TestRejectHandlerRequiresReason(t *testing.T) {
	bookingID := uuid.New()
	svc := &stubSettlement{}
	handler := Reject(svc, nil)

	req := pathRequest(http.MethodPost, "/bookings/"+bookingID.String()+"/reject", "bookingId", bookingID.String(), strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.rejectInput != nil {
		t.Fatalf("service must not be called without a reason")
	}
}

func TestListHandlerParsesFilters(t *testing.T) {
	repo := &stubListRepo{}
	handler := List(repo, nil)

	modelID := uuid.New()
	target := "/bookings?status=disputed&payment_status=held&model_id=" + modelID.String() + "&limit=10&date_from=2026-08-01T00:00:00Z"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
	if repo.params.Limit != 10 {
		t.Fatalf("limit not forwarded, got %d", repo.params.Limit)
	}
	if repo.filters.Status == nil || *repo.filters.Status != enums.BookingStatusDisputed {
		t.Fatalf("status filter not parsed: %+v", repo.filters.Status)
	}
	if repo.filters.PaymentStatus == nil || *repo.filters.PaymentStatus != enums.PaymentStatusHeld {
		t.Fatalf("payment status filter not parsed: %+v", repo.filters.PaymentStatus)
	}
	if repo.filters.ModelID == nil || *repo.filters.ModelID != modelID {
		t.Fatalf("model filter not parsed: %+v", repo.filters.ModelID)
	}
	if repo.filters.DateFrom == nil {
		t.Fatalf("date_from filter not parsed")
	}
}

type stubLedger struct {
	rows    []models.TransactionHistory
	gotID   uuid.UUID
	listErr error
}

func (s *stubLedger) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]models.TransactionHistory, error) {
	s.gotID = bookingID
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.rows, nil
}

func TestTransactionsHandlerReturnsLedgerRows(t *testing.T) {
	bookingID := uuid.New()
	svc := &stubLedger{
		rows: []models.TransactionHistory{
			{Identifier: enums.TransactionKindEarning, Amount: 90000, BookingID: &bookingID},
			{Identifier: enums.TransactionKindPlatformCommission, Amount: 10000, BookingID: &bookingID},
		},
	}
	handler := Transactions(svc, nil)

	req := pathRequest(http.MethodGet, "/bookings/"+bookingID.String()+"/transactions", "bookingId", bookingID.String(), nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
	if svc.gotID != bookingID {
		t.Fatalf("booking id not forwarded, got %s", svc.gotID)
	}
	var payload struct {
		Data struct {
			Transactions []models.TransactionHistory `json:"transactions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(payload.Data.Transactions))
	}
}

func TestTransactionsHandlerRejectsBadID(t *testing.T) {
	svc := &stubLedger{}
	handler := Transactions(svc, nil)

	req := pathRequest(http.MethodGet, "/bookings/not-a-uuid/transactions", "bookingId", "not-a-uuid", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.gotID != uuid.Nil {
		t.Fatalf("service must not be called for an invalid id")
	}
}

func TestListHandlerRejectsUnknownStatus(t *testing.T) {
	handler := List(&stubListRepo{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/bookings?status=bogus", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
