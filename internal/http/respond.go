package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tsennguyen/gofoody/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps the service error taxonomy onto HTTP status codes.
// Everything the client can fix is a 400, missing resources are 404, and a
// rolled-back checkout surfaces as a 500 the client may retry.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, service.ErrVariantNotFound):
		respondError(w, http.StatusBadRequest, "variant_not_found", err.Error())
	case errors.Is(err, service.ErrVariantUnavailable):
		respondError(w, http.StatusBadRequest, "variant_unavailable", err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, "insufficient_stock", err.Error())
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, service.ErrCustomerInfoRequired):
		respondError(w, http.StatusBadRequest, "customer_info_required", err.Error())
	case errors.Is(err, service.ErrInvalidShippingMethod):
		respondError(w, http.StatusBadRequest, "invalid_shipping_method", err.Error())
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
	case errors.Is(err, service.ErrInvalidStatusTransition):
		respondError(w, http.StatusBadRequest, "invalid_status_transition", err.Error())
	case errors.Is(err, service.ErrCartLineNotFound):
		respondError(w, http.StatusNotFound, "cart_line_not_found", err.Error())
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, service.ErrCheckoutFailed):
		respondError(w, http.StatusInternalServerError, "checkout_failed", service.ErrCheckoutFailed.Error())
	default:
		slog.Error("unhandled service error", "err", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
