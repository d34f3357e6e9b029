package controllers

import (
	"net/http"
	"strconv"

	"github.com/pizzaro/pizzaro-backend/api/middleware"
	"github.com/pizzaro/pizzaro-backend/api/responses"
	"github.com/pizzaro/pizzaro-backend/api/validators"
	checkoutsvc "github.com/pizzaro/pizzaro-backend/internal/checkout"
	"github.com/pizzaro/pizzaro-backend/pkg/enums"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
	"github.com/pizzaro/pizzaro-backend/pkg/logger"
)

type checkoutRequest struct {
	CustomerName  string   `json:"customerName" validate:"required"`
	Phone         string   `json:"phone" validate:"required"`
	Address       string   `json:"address" validate:"required"`
	DeliveryTime  string   `json:"deliveryTime" validate:"required,oneof=asap slot custom"`
	Slot          string   `json:"slot"`
	CustomTime    string   `json:"customTime"`
	PaymentMethod string   `json:"paymentMethod" validate:"required"`
	SaveAddresses []string `json:"saveAddresses"`
}

type checkoutResponse struct {
	Order             orderResponse `json:"order"`
	AddressSaveFailed bool          `json:"addressSaveFailed,omitempty"`
}

// Checkout submits the caller's cart as an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		token := middleware.CartTokenFromContext(r.Context())
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form := checkoutsvc.Form{
			CustomerName:     payload.CustomerName,
			Phone:            payload.Phone,
			Address:          payload.Address,
			DeliveryTimeKind: enums.DeliveryTimeKind(payload.DeliveryTime),
			Slot:             payload.Slot,
			CustomTime:       payload.CustomTime,
			PaymentMethod:    enums.PaymentMethod(payload.PaymentMethod),
			NewAddresses:     payload.SaveAddresses,
		}
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			if userID, err := strconv.ParseInt(raw, 10, 64); err == nil {
				form.UserID = &userID
			}
		}

		result, err := svc.Submit(r.Context(), token, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Order:             newOrderResponse(result.Order),
			AddressSaveFailed: result.AddressSaveFailed,
		})
	}
}
