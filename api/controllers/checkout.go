package controllers

import (
	"net/http"

	"github.com/abiagrow/connect-backend/api/responses"
	"github.com/abiagrow/connect-backend/api/validators"
	"github.com/abiagrow/connect-backend/internal/checkout"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
	"github.com/abiagrow/connect-backend/pkg/logger"
)

// Checkout converts the customer's cart into one order per store.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		actorID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkout.Request
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), actorID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
