package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tsennguyen/gofoody/internal/domain"
)

type cartService interface {
	GetSummary(ctx context.Context, userID int64) (*domain.CartSummary, error)
	AddItem(ctx context.Context, userID int64, variantID int64, quantity int) (*domain.CartSummary, error)
	UpdateItem(ctx context.Context, userID int64, lineID int64, quantity int) (*domain.CartSummary, error)
	RemoveItem(ctx context.Context, userID int64, lineID int64) (*domain.CartSummary, error)
	Clear(ctx context.Context, userID int64) (*domain.CartSummary, error)
}

type CartHandler struct {
	cart cartService
}

func NewCartHandler(cart cartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type AddItemRequestDTO struct {
	ProductVariantID int64 `json:"product_variant_id"`
	Quantity         int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	summary, err := h.cart.GetSummary(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductVariantID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "product_variant_id must be positive")
		return
	}

	summary, err := h.cart.AddItem(r.Context(), userID, req.ProductVariantID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	lineID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || lineID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	summary, err := h.cart.UpdateItem(r.Context(), userID, lineID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	lineID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || lineID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a positive integer")
		return
	}

	summary, err := h.cart.RemoveItem(r.Context(), userID, lineID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	summary, err := h.cart.Clear(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
