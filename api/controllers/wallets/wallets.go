package wallets

import (
	"net/http"
	"strings"

	"github.com/amoura-app/amoura-backend/api/responses"
	"github.com/amoura-app/amoura-backend/api/validators"
	internalwallets "github.com/amoura-app/amoura-backend/internal/wallets"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
	"github.com/amoura-app/amoura-backend/pkg/logger"
	"github.com/amoura-app/amoura-backend/pkg/pagination"
)

// Detail returns the wallet with its cached bucket totals.
func Detail(svc internalwallets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallets service unavailable"))
			return
		}

		walletID, err := validators.PathUUID(r, "walletId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wallet, err := svc.Get(r.Context(), walletID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wallet)
	}
}

// Transactions returns a cursor-paginated ledger page for the wallet's owner.
func Transactions(svc internalwallets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallets service unavailable"))
			return
		}

		walletID, err := validators.PathUUID(r, "walletId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
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

		list, err := svc.ListTransactions(r.Context(), walletID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Recalculate reports drift between the cached balance and the ledger sum
// without mutating anything.
func Recalculate(svc internalwallets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallets service unavailable"))
			return
		}

		walletID, err := validators.PathUUID(r, "walletId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Recalculate(r.Context(), walletID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
