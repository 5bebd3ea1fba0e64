package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/app/availability"
	"github.com/YammiGb/lechon-orders/internal/app/session"
	"github.com/YammiGb/lechon-orders/internal/domain"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
)

// CheckoutHandler serves the customer-facing intake API.
type CheckoutHandler struct {
	orders       interfaces.OrderService
	availability interfaces.AvailabilityService
	checker      *availability.Checker
	sessions     *session.Manager
	catalog      interfaces.MenuCatalog
	logger       logger.Logger
}

func NewCheckoutHandler(orders interfaces.OrderService, avail interfaces.AvailabilityService, checker *availability.Checker, sessions *session.Manager, catalog interfaces.MenuCatalog, lgr logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		orders:       orders,
		availability: avail,
		checker:      checker,
		sessions:     sessions,
		catalog:      catalog,
		logger:       lgr,
	}
}

// NewCheckoutRouter wires the customer API routes.
func NewCheckoutRouter(h *CheckoutHandler, lgr logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(RecoveryMiddleware(lgr))
	r.Use(LoggingMiddleware(lgr))

	r.Get("/menu", h.GetMenu)
	r.Get("/availability", h.GetAvailability)
	r.Post("/availability/check", h.CheckAvailability)
	r.Post("/orders", h.CreateOrder)
	r.Post("/checkout/reset", h.ResetCheckout)
	r.Get("/orders/{orderID}/receipt", h.GetReceipt)

	return r
}

type orderLineRequest struct {
	MenuItemID string            `json:"menu_item_id"`
	Name       string            `json:"name"`
	UnitPrice  float64           `json:"unit_price"`
	Quantity   int               `json:"quantity"`
	Variation  *domain.Variation `json:"variation,omitempty"`
	AddOns     []domain.AddOn    `json:"add_ons,omitempty"`
}

type createOrderRequest struct {
	CustomerName      string             `json:"customer_name"`
	ContactNumber     string             `json:"contact_number"`
	ContactNumber2    *string            `json:"contact_number2,omitempty"`
	ServiceType       string             `json:"service_type"`
	Address           *string            `json:"address,omitempty"`
	Landmark          *string            `json:"landmark,omitempty"`
	City              *string            `json:"city,omitempty"`
	ScheduleDate      string             `json:"schedule_date"`
	ScheduleTime      string             `json:"schedule_time"`
	PaymentMethod     string             `json:"payment_method"`
	PaymentType       string             `json:"payment_type"`
	DownPaymentAmount *float64           `json:"down_payment_amount,omitempty"`
	ReferenceNumber   *string            `json:"reference_number,omitempty"`
	Notes             *string            `json:"notes,omitempty"`
	Items             []orderLineRequest `json:"items"`
}

type createOrderResponse struct {
	OrderID       string  `json:"order_id"`
	DisplayNumber string  `json:"display_number"`
	Status        string  `json:"status"`
	Total         float64 `json:"total"`
	DeliveryFee   float64 `json:"delivery_fee"`
}

type checkCartRequest struct {
	Date  string             `json:"date"`
	Items []orderLineRequest `json:"items"`
}

type checkCartResponse struct {
	Date        string   `json:"date"`
	Unavailable []string `json:"unavailable"`
}

type availabilityResponse struct {
	Date       string                  `json:"date"`
	Restricted bool                    `json:"restricted"`
	Entries    []domain.AvailableEntry `json:"entries,omitempty"`
	ItemIDs    []string                `json:"item_ids,omitempty"`
	Fees       map[string]float64      `json:"fees"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// GetMenu returns the catalog the storefront renders.
func (h *CheckoutHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListItems(r.Context())
	if err != nil {
		h.logger.Error("menu_list_failed", "Failed to list menu items", "", nil, err)
		respondError(w, "failed to load menu", http.StatusInternalServerError, nil)
		return
	}
	if items == nil {
		items = []*domain.MenuItem{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetAvailability returns the rule and fee table for a date. Dates without
// a rule report restricted=false: everything may be ordered.
func (h *CheckoutHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		respondError(w, "date query parameter is required", http.StatusBadRequest, nil)
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		respondError(w, "date must be YYYY-MM-DD", http.StatusBadRequest, nil)
		return
	}

	rule, err := h.availability.ResolveForDate(r.Context(), date)
	if err != nil {
		respondError(w, "failed to resolve availability", http.StatusInternalServerError, nil)
		return
	}

	resp := availabilityResponse{Date: date, Fees: h.availability.FeesForDate(r.Context(), date)}
	if rule != nil {
		resp.Restricted = true
		resp.Entries = rule.Entries
		resp.ItemIDs = rule.LegacyItemIDs
	}
	respondJSON(w, http.StatusOK, resp)
}

// CheckAvailability runs a debounced cart check. A check superseded by a
// newer one answers 409 so the client discards the stale result.
func (h *CheckoutHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req checkCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest, nil)
		return
	}
	if req.Date == "" {
		respondError(w, "date is required", http.StatusBadRequest, nil)
		return
	}

	lines := make([]domain.CartLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = toCartLine(item)
	}

	check := h.checker.Schedule(r.Context(), req.Date, lines)
	unavailable, err := check.Wait()
	if err != nil {
		if errors.Is(err, availability.ErrSuperseded) {
			respondError(w, "check superseded by a newer one", http.StatusConflict, nil)
			return
		}
		respondError(w, "availability check failed", http.StatusInternalServerError, nil)
		return
	}

	if unavailable == nil {
		unavailable = []string{}
	}
	respondJSON(w, http.StatusOK, checkCartResponse{Date: req.Date, Unavailable: unavailable})
}

func (h *CheckoutHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest, nil)
		return
	}

	if validationErrors := validateCreateOrderRequest(req); len(validationErrors) > 0 {
		respondError(w, "validation failed", http.StatusBadRequest, validationErrors)
		return
	}

	ip := clientIP(r)
	cmd := interfaces.CreateOrderCommand{
		CustomerName:      strings.TrimSpace(req.CustomerName),
		ContactNumber:     strings.TrimSpace(req.ContactNumber),
		ContactNumber2:    req.ContactNumber2,
		ServiceType:       req.ServiceType,
		Address:           req.Address,
		Landmark:          req.Landmark,
		City:              req.City,
		ScheduleDate:      req.ScheduleDate,
		ScheduleTime:      req.ScheduleTime,
		PaymentMethod:     req.PaymentMethod,
		PaymentType:       req.PaymentType,
		DownPaymentAmount: req.DownPaymentAmount,
		ReferenceNumber:   req.ReferenceNumber,
		Notes:             req.Notes,
		IPAddress:         &ip,
	}
	cmd.Lines = make([]interfaces.CreateOrderLineCommand, len(req.Items))
	for i, item := range req.Items {
		cmd.Lines[i] = interfaces.CreateOrderLineCommand{
			MenuItemID: item.MenuItemID,
			Name:       strings.TrimSpace(item.Name),
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			Variation:  item.Variation,
			AddOns:     item.AddOns,
		}
	}

	guard := h.sessions.Get(sessionID(r), time.Now())
	result, err := h.orders.CreateOrder(r.Context(), guard, cmd)
	if err != nil {
		h.respondCreateError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, createOrderResponse{
		OrderID:       result.Order.ID,
		DisplayNumber: result.DisplayNumber,
		Status:        string(result.Order.Status),
		Total:         result.Order.Total,
		DeliveryFee:   result.Order.DeliveryFee,
	})
}

// ResetCheckout clears the session's single-success latch so the client can
// start a new checkout without waiting out the duplicate window.
func (h *CheckoutHandler) ResetCheckout(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(sessionID(r), time.Now())
	sess.ResetCheckout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	text, err := h.orders.Receipt(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			respondError(w, "order not found", http.StatusNotFound, nil)
			return
		}
		respondError(w, "failed to render receipt", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (h *CheckoutHandler) respondCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateSubmission):
		respondError(w, "an identical order was just submitted", http.StatusConflict, nil)
	case errors.Is(err, domain.ErrUnavailable):
		respondError(w, err.Error(), http.StatusConflict, nil)
	case errors.Is(err, domain.ErrValidation):
		respondError(w, err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrPartialWrite):
		// The order row exists; tell the caller which one so the failure is
		// reconcilable rather than invisible.
		respondError(w, err.Error(), http.StatusInternalServerError, nil)
	default:
		h.logger.Error("order_creation_failed", "Failed to create order", "", nil, err)
		respondError(w, "failed to create order", http.StatusInternalServerError, nil)
	}
}

func validateCreateOrderRequest(req createOrderRequest) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(req.CustomerName) == "" {
		errs = append(errs, ValidationError{Field: "customer_name", Message: "customer name is required"})
	}
	if strings.TrimSpace(req.ContactNumber) == "" {
		errs = append(errs, ValidationError{Field: "contact_number", Message: "contact number is required"})
	}

	switch req.ServiceType {
	case string(domain.ServicePickup):
	case string(domain.ServiceDelivery):
		if req.Address == nil || strings.TrimSpace(*req.Address) == "" {
			errs = append(errs, ValidationError{Field: "address", Message: "address is required for delivery orders"})
		}
		if req.City == nil || strings.TrimSpace(*req.City) == "" {
			errs = append(errs, ValidationError{Field: "city", Message: "city is required for delivery orders"})
		}
	default:
		errs = append(errs, ValidationError{Field: "service_type", Message: "service type must be one of: pickup, delivery"})
	}

	if req.ScheduleDate == "" {
		errs = append(errs, ValidationError{Field: "schedule_date", Message: "schedule date is required"})
	}
	if req.ScheduleTime == "" {
		errs = append(errs, ValidationError{Field: "schedule_time", Message: "schedule time is required"})
	}

	if len(req.Items) == 0 {
		errs = append(errs, ValidationError{Field: "items", Message: "order must contain at least 1 item"})
	}
	for i, item := range req.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if item.MenuItemID == "" {
			errs = append(errs, ValidationError{Field: prefix + ".menu_item_id", Message: "menu item id is required"})
		}
		if strings.TrimSpace(item.Name) == "" {
			errs = append(errs, ValidationError{Field: prefix + ".name", Message: "item name is required"})
		}
		if item.Quantity < 1 {
			errs = append(errs, ValidationError{Field: prefix + ".quantity", Message: "item quantity must be at least 1"})
		}
		if item.UnitPrice <= 0 {
			errs = append(errs, ValidationError{Field: prefix + ".unit_price", Message: "item price must be positive"})
		}
	}

	if strings.TrimSpace(req.PaymentMethod) == "" {
		errs = append(errs, ValidationError{Field: "payment_method", Message: "payment method is required"})
	}
	switch req.PaymentType {
	case string(domain.PaymentFull):
	case string(domain.PaymentDownPayment):
		if req.DownPaymentAmount == nil {
			errs = append(errs, ValidationError{Field: "down_payment_amount", Message: "down payment amount is required"})
		}
	default:
		errs = append(errs, ValidationError{Field: "payment_type", Message: "payment type must be one of: down_payment, full_payment"})
	}

	return errs
}

func toCartLine(item orderLineRequest) domain.CartLine {
	selection := domain.NoSelection()
	switch {
	case item.Variation != nil:
		selection = domain.SelectVariation(*item.Variation)
	case len(item.AddOns) > 0:
		selection = domain.SelectAddOns(item.AddOns)
	}
	return domain.CartLine{
		MenuItemID: item.MenuItemID,
		Name:       item.Name,
		UnitPrice:  item.UnitPrice,
		Quantity:   item.Quantity,
		Selection:  selection,
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, message string, status int, validationErrors []ValidationError) {
	respondJSON(w, status, ErrorResponse{Error: message, Errors: validationErrors})
}
