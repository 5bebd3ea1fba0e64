package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/app/session"
	"github.com/YammiGb/lechon-orders/internal/domain"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
)

// VerificationHandler serves the staff-facing workflow API.
type VerificationHandler struct {
	service  interfaces.VerificationService
	sessions *session.Manager
	logger   logger.Logger
}

func NewVerificationHandler(service interfaces.VerificationService, sessions *session.Manager, lgr logger.Logger) *VerificationHandler {
	return &VerificationHandler{service: service, sessions: sessions, logger: lgr}
}

// NewVerificationRouter wires the staff API routes.
func NewVerificationRouter(h *VerificationHandler, lgr logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(RecoveryMiddleware(lgr))
	r.Use(LoggingMiddleware(lgr))

	r.Get("/orders", h.ListOrders)
	r.Post("/orders/{orderID}/approve", h.Approve)
	r.Post("/orders/{orderID}/reject", h.Reject)
	r.Post("/orders/{orderID}/sync", h.Sync)

	return r
}

type orderSummary struct {
	OrderID           string   `json:"order_id"`
	DisplayNumber     string   `json:"display_number"`
	CustomerName      string   `json:"customer_name"`
	ContactNumber     string   `json:"contact_number"`
	ServiceType       string   `json:"service_type"`
	ScheduleDate      string   `json:"schedule_date"`
	ScheduleTime      string   `json:"schedule_time"`
	PaymentMethod     string   `json:"payment_method"`
	PaymentType       string   `json:"payment_type"`
	DownPaymentAmount *float64 `json:"down_payment_amount,omitempty"`
	DeliveryFee       float64  `json:"delivery_fee"`
	Total             float64  `json:"total"`
	Status            string   `json:"status"`
	VerifiedBy        *string  `json:"verified_by,omitempty"`
	SyncedToLedger    bool     `json:"synced_to_ledger"`
	New               bool     `json:"new"`
	CreatedAt         string   `json:"created_at"`
}

type verifyRequest struct {
	Actor     string `json:"actor"`
	Confirmed bool   `json:"confirmed,omitempty"`
}

type orderStatusResponse struct {
	OrderID        string  `json:"order_id"`
	Status         string  `json:"status"`
	VerifiedBy     *string `json:"verified_by,omitempty"`
	SyncedToLedger bool    `json:"synced_to_ledger"`
}

// ListOrders returns orders newest first with display numbers. Orders this
// staff session has not listed before are flagged new.
func (h *VerificationHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var status *domain.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.Status(s)
		if !domain.ValidStatus(st) {
			respondError(w, "unknown status filter", http.StatusBadRequest, nil)
			return
		}
		status = &st
	}

	views, err := h.service.List(r.Context(), status)
	if err != nil {
		h.logger.Error("order_list_failed", "Failed to list orders", "", nil, err)
		respondError(w, "failed to list orders", http.StatusInternalServerError, nil)
		return
	}

	sess := h.sessions.Get(sessionID(r), time.Now())
	summaries := make([]orderSummary, len(views))
	for i, v := range views {
		o := v.Order
		summaries[i] = orderSummary{
			OrderID:           o.ID,
			DisplayNumber:     v.DisplayNumber,
			CustomerName:      o.CustomerName,
			ContactNumber:     o.ContactNumber,
			ServiceType:       string(o.ServiceType),
			ScheduleDate:      o.ScheduleDate(),
			ScheduleTime:      o.ScheduleTime(),
			PaymentMethod:     o.PaymentMethod,
			PaymentType:       string(o.PaymentType),
			DownPaymentAmount: o.DownPaymentAmount,
			DeliveryFee:       o.DeliveryFee,
			Total:             o.Total,
			Status:            string(o.Status),
			VerifiedBy:        o.VerifiedBy,
			SyncedToLedger:    o.SyncedToLedger,
			New:               !sess.HasViewed(o.ID),
			CreatedAt:         o.CreatedAt.UTC().Format(time.RFC3339),
		}
		sess.MarkViewed(o.ID)
	}

	respondJSON(w, http.StatusOK, summaries)
}

func (h *VerificationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest, nil)
		return
	}
	if req.Actor == "" {
		respondError(w, "actor is required", http.StatusBadRequest, nil)
		return
	}

	order, err := h.service.Approve(r.Context(), orderID, req.Actor)
	if err != nil {
		h.respondWorkflowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toStatusResponse(order))
}

func (h *VerificationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest, nil)
		return
	}
	if req.Actor == "" {
		respondError(w, "actor is required", http.StatusBadRequest, nil)
		return
	}

	order, err := h.service.Reject(r.Context(), orderID, req.Actor, req.Confirmed)
	if err != nil {
		h.respondWorkflowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toStatusResponse(order))
}

func (h *VerificationHandler) Sync(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, err := h.service.Sync(r.Context(), orderID)
	if err != nil {
		h.respondWorkflowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toStatusResponse(order))
}

func (h *VerificationHandler) respondWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		respondError(w, "order not found", http.StatusNotFound, nil)
	case errors.Is(err, domain.ErrConfirmationRequired):
		respondError(w, "rejection requires confirmed=true", http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrPreconditionFailed):
		respondError(w, err.Error(), http.StatusConflict, nil)
	case errors.Is(err, domain.ErrSyncFailed):
		// The order stays approved and unsynced; the operator may retry.
		respondError(w, err.Error(), http.StatusBadGateway, nil)
	default:
		h.logger.Error("verification_failed", "Verification action failed", "", nil, err)
		respondError(w, "verification action failed", http.StatusInternalServerError, nil)
	}
}

func toStatusResponse(order *domain.Order) orderStatusResponse {
	return orderStatusResponse{
		OrderID:        order.ID,
		Status:         string(order.Status),
		VerifiedBy:     order.VerifiedBy,
		SyncedToLedger: order.SyncedToLedger,
	}
}
