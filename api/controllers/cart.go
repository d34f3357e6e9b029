package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pizzaro/pizzaro-backend/api/middleware"
	"github.com/pizzaro/pizzaro-backend/api/responses"
	"github.com/pizzaro/pizzaro-backend/api/validators"
	cartsvc "github.com/pizzaro/pizzaro-backend/internal/cart"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
	"github.com/pizzaro/pizzaro-backend/pkg/logger"
)

type addCartItemRequest struct {
	Name               string   `json:"name" validate:"required"`
	SectionID          int64    `json:"sectionId" validate:"required"`
	Description        string   `json:"description"`
	ImageURL           string   `json:"imageUrl"`
	Count              int      `json:"count" validate:"omitempty,min=1"`
	Cost               int      `json:"cost" validate:"min=0"`
	Variant            string   `json:"variant"`
	RemovedIngredients []string `json:"removedIngredients"`
	Addons             []string `json:"addons"`
}

type updateCartItemRequest struct {
	Count              *int      `json:"count"`
	Variant            *string   `json:"variant"`
	RemovedIngredients *[]string `json:"removedIngredients"`
	Addons             *[]string `json:"addons"`
}

type cartResponse struct {
	Items      []cartsvc.LineItem `json:"items"`
	TotalCount int                `json:"totalCount"`
	TotalCents int                `json:"totalCents"`
}

func newCartResponse(state cartsvc.State) cartResponse {
	items := state.Items
	if items == nil {
		items = []cartsvc.LineItem{}
	}
	totalCount := 0
	totalCents := 0
	for _, item := range items {
		totalCount += item.Count
		totalCents += item.Count * item.CostCents
	}
	return cartResponse{Items: items, TotalCount: totalCount, TotalCents: totalCents}
}

// CartGet returns the current cart contents for the caller's token.
func CartGet(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle, err := cartHandle(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(handle.Store.Snapshot()))
	}
}

// CartAddItem adds a configured product; an identical configuration merges
// into the existing line.
func CartAddItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle, err := cartHandle(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count := payload.Count
		if count == 0 {
			count = 1
		}
		handle.Store.AddItem(cartsvc.LineItem{
			Name:               payload.Name,
			SectionID:          payload.SectionID,
			Description:        payload.Description,
			ImageURL:           payload.ImageURL,
			Count:              count,
			CostCents:          payload.Cost,
			Variant:            payload.Variant,
			RemovedIngredients: payload.RemovedIngredients,
			Addons:             payload.Addons,
		})

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(handle.Store.Snapshot()))
	}
}

// CartUpdateItem patches one line item. Dropping the count to zero removes
// the line; unknown ids are a no-op, matching the storefront behavior.
func CartUpdateItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle, err := cartHandle(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := chi.URLParam(r, "itemID")
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id is required"))
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		handle.Store.UpdateItem(itemID, cartsvc.Patch{
			Count:              payload.Count,
			Variant:            payload.Variant,
			RemovedIngredients: payload.RemovedIngredients,
			Addons:             payload.Addons,
		})

		responses.WriteSuccess(w, newCartResponse(handle.Store.Snapshot()))
	}
}

// CartRemoveItem removes one line item.
func CartRemoveItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle, err := cartHandle(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := chi.URLParam(r, "itemID")
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id is required"))
			return
		}

		handle.Store.RemoveItem(itemID)
		responses.WriteSuccess(w, newCartResponse(handle.Store.Snapshot()))
	}
}

// CartClear empties the cart.
func CartClear(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle, err := cartHandle(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		handle.Store.Clear()
		responses.WriteSuccess(w, newCartResponse(handle.Store.Snapshot()))
	}
}

func cartHandle(r *http.Request, manager *cartsvc.Manager) (*cartsvc.Handle, error) {
	if manager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart manager unavailable")
	}
	token := middleware.CartTokenFromContext(r.Context())
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	return manager.Get(r.Context(), token)
}
