package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tsennguyen/gofoody/internal/domain"
	"github.com/tsennguyen/gofoody/internal/service"
)

type checkoutService interface {
	Checkout(ctx context.Context, userID int64, req *service.CheckoutRequest) (*service.OrderCreated, error)
	ListShippingMethods(ctx context.Context) ([]domain.ShippingMethod, error)
	ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
}

type CheckoutHandler struct {
	checkout checkoutService
}

func NewCheckoutHandler(checkout checkoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type CheckoutRequestDTO struct {
	FullName         string `json:"full_name"`
	Phone            string `json:"phone"`
	AddressLine      string `json:"address_line"`
	Ward             string `json:"ward,omitempty"`
	District         string `json:"district,omitempty"`
	City             string `json:"city,omitempty"`
	ShippingMethodID int64  `json:"shipping_method_id"`
	PaymentMethodID  int64  `json:"payment_method_id"`
	Note             string `json:"note,omitempty"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := h.checkout.Checkout(r.Context(), userID, &service.CheckoutRequest{
		FullName:         req.FullName,
		Phone:            req.Phone,
		AddressLine:      req.AddressLine,
		Ward:             req.Ward,
		District:         req.District,
		City:             req.City,
		ShippingMethodID: req.ShippingMethodID,
		PaymentMethodID:  req.PaymentMethodID,
		Note:             req.Note,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, created)
}

func (h *CheckoutHandler) GetShippingMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.checkout.ListShippingMethods(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if methods == nil {
		methods = []domain.ShippingMethod{}
	}
	respondJSON(w, http.StatusOK, methods)
}

func (h *CheckoutHandler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.checkout.ListPaymentMethods(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if methods == nil {
		methods = []domain.PaymentMethod{}
	}
	respondJSON(w, http.StatusOK, methods)
}
