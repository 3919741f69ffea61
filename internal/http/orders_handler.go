package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tsennguyen/gofoody/internal/domain"
	"github.com/tsennguyen/gofoody/internal/repository"
	"github.com/tsennguyen/gofoody/internal/service"
)

type orderService interface {
	ListUserOrders(ctx context.Context, userID int64, status *domain.OrderStatus, fromDate, toDate *time.Time, page, pageSize int) (*service.PagedOrders, error)
	GetUserOrder(ctx context.Context, userID int64, orderCode string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) (*service.PagedOrders, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus, paymentStatus *domain.PaymentStatus) (*domain.Order, error)
	GetStats(ctx context.Context, fromDate, toDate *time.Time) (*repository.OrderStats, error)
}

type OrdersHandler struct {
	orders orderService
}

func NewOrdersHandler(orders orderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

type OrderListItemDTO struct {
	ID                   int64           `json:"id"`
	OrderCode            string          `json:"order_code"`
	CreatedAt            time.Time       `json:"created_at"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	Status               int16           `json:"status"`
	StatusName           string          `json:"status_name"`
	PaymentStatus        int16           `json:"payment_status"`
	ShippingMethodName   *string         `json:"shipping_method_name,omitempty"`
	PaymentMethodName    *string         `json:"payment_method_name,omitempty"`
	TotalItems           int             `json:"total_items"`
	RequiresColdShipping bool            `json:"requires_cold_shipping"`
}

type OrderItemDTO struct {
	ID               int64           `json:"id"`
	ProductID        int64           `json:"product_id"`
	ProductVariantID int64           `json:"product_variant_id"`
	ProductName      string          `json:"product_name"`
	Unit             string          `json:"unit"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

type OrderDetailDTO struct {
	ID                   int64           `json:"id"`
	OrderCode            string          `json:"order_code"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            *time.Time      `json:"updated_at,omitempty"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	ShippingFee          decimal.Decimal `json:"shipping_fee"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	Status               int16           `json:"status"`
	StatusName           string          `json:"status_name"`
	PaymentStatus        int16           `json:"payment_status"`
	CustomerName         string          `json:"customer_name"`
	CustomerPhone        string          `json:"customer_phone"`
	CustomerEmail        *string         `json:"customer_email,omitempty"`
	ShippingAddress      string          `json:"shipping_address"`
	Note                 *string         `json:"note,omitempty"`
	ShippingMethodName   *string         `json:"shipping_method_name,omitempty"`
	PaymentMethodName    *string         `json:"payment_method_name,omitempty"`
	RequiresColdShipping bool            `json:"requires_cold_shipping"`
	Items                []OrderItemDTO  `json:"items"`
}

type PagedOrdersDTO struct {
	Items      []OrderListItemDTO `json:"items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalItems int                `json:"total_items"`
	TotalPages int                `json:"total_pages"`
}

type StatusUpdateRequestDTO struct {
	Status        int16  `json:"status"`
	PaymentStatus *int16 `json:"payment_status,omitempty"`
}

func (h *OrdersHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	query := r.URL.Query()
	page := parseIntDefault(query.Get("page"), 1)
	pageSize := parseIntDefault(query.Get("page_size"), 10)
	status := parseOrderStatus(query.Get("status"))
	fromDate := parseTime(query.Get("from_date"))
	toDate := parseTime(query.Get("to_date"))

	paged, err := h.orders.ListUserOrders(r.Context(), userID, status, fromDate, toDate, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPagedDTO(paged))
}

func (h *OrdersHandler) GetMyOrderDetail(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	order, err := h.orders.GetUserOrder(r.Context(), userID, chi.URLParam(r, "orderCode"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toDetailDTO(order))
}

func (h *OrdersHandler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repository.OrderFilter{
		Status:        parseOrderStatus(query.Get("status")),
		PaymentStatus: parsePaymentStatus(query.Get("payment_status")),
		FromDate:      parseTime(query.Get("from_date")),
		ToDate:        parseTime(query.Get("to_date")),
		OrderCode:     query.Get("order_code"),
		Page:          parseIntDefault(query.Get("page"), 1),
		PageSize:      parseIntDefault(query.Get("page_size"), 20),
	}
	if raw := query.Get("user_id"); raw != "" {
		if userID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.UserID = &userID
		}
	}

	paged, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPagedDTO(paged))
}

func (h *OrdersHandler) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || orderID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a positive integer")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toDetailDTO(order))
}

func (h *OrdersHandler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || orderID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a positive integer")
		return
	}

	var req StatusUpdateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	var paymentStatus *domain.PaymentStatus
	if req.PaymentStatus != nil {
		ps := domain.PaymentStatus(*req.PaymentStatus)
		paymentStatus = &ps
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID, domain.OrderStatus(req.Status), paymentStatus)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toDetailDTO(order))
}

func (h *OrdersHandler) AdminGetStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	stats, err := h.orders.GetStats(r.Context(), parseTime(query.Get("from_date")), parseTime(query.Get("to_date")))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func toPagedDTO(paged *service.PagedOrders) *PagedOrdersDTO {
	dto := &PagedOrdersDTO{
		Items:      make([]OrderListItemDTO, 0, len(paged.Items)),
		Page:       paged.Page,
		PageSize:   paged.PageSize,
		TotalItems: paged.TotalItems,
		TotalPages: paged.TotalPages,
	}
	for _, order := range paged.Items {
		dto.Items = append(dto.Items, OrderListItemDTO{
			ID:                   order.ID,
			OrderCode:            order.OrderCode,
			CreatedAt:            order.CreatedAt,
			TotalAmount:          order.TotalAmount,
			Status:               int16(order.Status),
			StatusName:           order.Status.String(),
			PaymentStatus:        int16(order.PaymentStatus),
			ShippingMethodName:   order.ShippingMethodName,
			PaymentMethodName:    order.PaymentMethodName,
			TotalItems:           order.TotalItems,
			RequiresColdShipping: order.RequiresColdShipping,
		})
	}
	return dto
}

func toDetailDTO(order *domain.Order) *OrderDetailDTO {
	dto := &OrderDetailDTO{
		ID:                   order.ID,
		OrderCode:            order.OrderCode,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
		Subtotal:             order.Subtotal,
		ShippingFee:          order.ShippingFee,
		DiscountAmount:       order.DiscountAmount,
		TotalAmount:          order.TotalAmount,
		Status:               int16(order.Status),
		StatusName:           order.Status.String(),
		PaymentStatus:        int16(order.PaymentStatus),
		CustomerName:         order.CustomerName,
		CustomerPhone:        order.CustomerPhone,
		CustomerEmail:        order.CustomerEmail,
		ShippingAddress:      order.ShippingAddressText,
		Note:                 order.Note,
		ShippingMethodName:   order.ShippingMethodName,
		PaymentMethodName:    order.PaymentMethodName,
		RequiresColdShipping: order.RequiresColdShipping,
		Items:                make([]OrderItemDTO, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			ProductName:      item.ProductName,
			Unit:             item.Unit,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			LineTotal:        item.LineTotal,
		})
	}
	return dto
}

func parseIntDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func parseOrderStatus(raw string) *domain.OrderStatus {
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	status := domain.OrderStatus(value)
	return &status
}

func parsePaymentStatus(raw string) *domain.PaymentStatus {
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	status := domain.PaymentStatus(value)
	return &status
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &parsed
}
