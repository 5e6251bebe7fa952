package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/abiagrow/connect-backend/api/responses"
	"github.com/abiagrow/connect-backend/api/validators"
	"github.com/abiagrow/connect-backend/internal/products"
	"github.com/abiagrow/connect-backend/pkg/enums"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
	"github.com/abiagrow/connect-backend/pkg/logger"
	"github.com/abiagrow/connect-backend/pkg/pagination"
)

// ProductList serves the public browse endpoint with filters and sorting.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := listInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// ProductDetail resolves a product by store and product slug, bumping views.
func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		storeSlug := strings.TrimSpace(chi.URLParam(r, "storeSlug"))
		productSlug := strings.TrimSpace(chi.URLParam(r, "productSlug"))
		if storeSlug == "" || productSlug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store and product slugs required"))
			return
		}

		product, err := svc.GetDetail(r.Context(), storeSlug, productSlug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductCreate adds a product to the vendor's store.
func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload products.CreateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), actorID, role, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductUpdate edits a product owned by the vendor's store.
func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload products.UpdateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), actorID, role, productID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductDelete removes a product owned by the vendor's store.
func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actorID, role, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func listInputFromQuery(r *http.Request) (*products.ListInput, error) {
	query := r.URL.Query()
	filters := products.ListFilters{
		Tag:   strings.TrimSpace(query.Get("tag")),
		Query: strings.TrimSpace(query.Get("q")),
	}

	if raw := query.Get("store_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store_id")
		}
		filters.StoreID = &id
	}
	if raw := query.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id")
		}
		filters.CategoryID = &id
	}
	if raw := query.Get("price_min"); raw != "" {
		value := queryInt(r, "price_min", -1)
		if value < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price_min")
		}
		filters.PriceMinCents = &value
	}
	if raw := query.Get("price_max"); raw != "" {
		value := queryInt(r, "price_max", -1)
		if value < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price_max")
		}
		filters.PriceMaxCents = &value
	}
	if raw := query.Get("stock_status"); raw != "" {
		status := enums.StockStatus(raw)
		switch status {
		case enums.StockStatusInStock, enums.StockStatusLowStock, enums.StockStatusOutOfStock:
			filters.StockStatus = &status
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock_status")
		}
	}
	if raw := query.Get("featured"); raw != "" {
		featured := raw == "true" || raw == "1"
		filters.Featured = &featured
	}

	return &products.ListInput{
		Filters: filters,
		Limit:   queryInt(r, "limit", 0),
		Offset:  pagination.NormalizeOffset(queryInt(r, "offset", 0)),
		Sort:    strings.TrimSpace(query.Get("sort")),
	}, nil
}
