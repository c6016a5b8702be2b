package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/draftea/preorder-system/preorder-service/domain"
	"github.com/draftea/preorder-system/shared/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
)

// OrderHandlers contains the pre-order HTTP handlers. They translate the
// REST surface into workflow starts, signals and queries.
type OrderHandlers struct {
	temporal  client.Client
	taskQueue string
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(temporal client.Client, taskQueue string) *OrderHandlers {
	return &OrderHandlers{
		temporal:  temporal,
		taskQueue: taskQueue,
	}
}

// PlaceOrderRequest is the payload for creating a pre-order
type PlaceOrderRequest struct {
	CustomerEmail   string    `json:"customer_email"`
	ProductName     string    `json:"product_name"`
	AmountCents     int64     `json:"amount_cents"`
	Currency        string    `json:"currency"`
	PaymentMethodID string    `json:"payment_method_id"`
	ReleaseDate     time.Time `json:"release_date"`
}

// PlaceOrderResponse reports the started saga
type PlaceOrderResponse struct {
	OrderID    string    `json:"order_id"`
	WorkflowID string    `json:"workflow_id"`
	RunID      string    `json:"run_id"`
	Deadline   time.Time `json:"deadline"`
}

// PlaceOrder starts a new pre-order saga
func (h *OrderHandlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	order := domain.PreOrder{
		OrderID:         "ORD-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		CustomerEmail:   req.CustomerEmail,
		ProductName:     req.ProductName,
		Amount:          models.NewMoney(req.AmountCents, currency),
		PaymentMethodID: req.PaymentMethodID,
		ReleaseDate:     req.ReleaseDate,
	}
	if err := order.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	run, err := h.temporal.ExecuteWorkflow(r.Context(), client.StartWorkflowOptions{
		ID:        domain.WorkflowID(order.OrderID),
		TaskQueue: h.taskQueue,
	}, domain.WorkflowName, order)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, PlaceOrderResponse{
		OrderID:    order.OrderID,
		WorkflowID: run.GetID(),
		RunID:      run.GetRunID(),
		Deadline:   order.Deadline(),
	})
}

// StartFulfillment signals the saga to begin fulfillment
func (h *OrderHandlers) StartFulfillment(w http.ResponseWriter, r *http.Request) {
	h.signal(w, r, domain.SignalStartFulfillment)
}

// CancelOrder signals the saga to cancel and refund
func (h *OrderHandlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	h.signal(w, r, domain.SignalCancelOrder)
}

// ItemPicked signals that the delivery partner picked up the item
func (h *OrderHandlers) ItemPicked(w http.ResponseWriter, r *http.Request) {
	h.signal(w, r, domain.SignalItemPicked)
}

// ConfirmDelivery signals that delivery completed
func (h *OrderHandlers) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	h.signal(w, r, domain.SignalConfirmDelivery)
}

// GetStatus returns the current phase of the saga
func (h *OrderHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	var status domain.StatusInfo
	h.query(w, r, domain.QueryGetStatus, &status)
}

// GetCompensationLog returns the recorded compensation actions in
// insertion order
func (h *OrderHandlers) GetCompensationLog(w http.ResponseWriter, r *http.Request) {
	var log []domain.CompensationRecord
	h.query(w, r, domain.QueryGetCompensationLog, &log)
}

// GetDeadlineInfo returns the fulfillment deadline, if set. Remaining time
// is the caller's job to compute against its own clock.
func (h *OrderHandlers) GetDeadlineInfo(w http.ResponseWriter, r *http.Request) {
	var info domain.DeadlineInfo
	h.query(w, r, domain.QueryGetDeadlineInfo, &info)
}

func (h *OrderHandlers) signal(w http.ResponseWriter, r *http.Request, signalName string) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		http.Error(w, "Order ID is required", http.StatusBadRequest)
		return
	}

	err := h.temporal.SignalWorkflow(r.Context(), domain.WorkflowID(orderID), "", signalName, nil)
	if err != nil {
		h.writeTemporalError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"order_id": orderID,
		"signal":   signalName,
	})
}

func (h *OrderHandlers) query(w http.ResponseWriter, r *http.Request, queryName string, out interface{}) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		http.Error(w, "Order ID is required", http.StatusBadRequest)
		return
	}

	resp, err := h.temporal.QueryWorkflow(r.Context(), domain.WorkflowID(orderID), "", queryName)
	if err != nil {
		h.writeTemporalError(w, err)
		return
	}

	if err := resp.Get(out); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandlers) writeTemporalError(w http.ResponseWriter, err error) {
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// RegisterRoutes registers order routes
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.PlaceOrder)
		r.Post("/{id}/start-fulfillment", h.StartFulfillment)
		r.Post("/{id}/cancel", h.CancelOrder)
		r.Post("/{id}/item-picked", h.ItemPicked)
		r.Post("/{id}/confirm-delivery", h.ConfirmDelivery)
		r.Get("/{id}/status", h.GetStatus)
		r.Get("/{id}/compensation-log", h.GetCompensationLog)
		r.Get("/{id}/deadline", h.GetDeadlineInfo)
	})
}
