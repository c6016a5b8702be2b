package domain

import "time"

// WorkflowName is the registered name of the pre-order saga workflow
const WorkflowName = "PreOrderWorkflow"

// DefaultTaskQueue is the task queue workers and starters use unless
// configured otherwise
const DefaultTaskQueue = "preorder-queue"

// WorkflowID derives the workflow id for an order
func WorkflowID(orderID string) string {
	return "preorder-" + orderID
}

// Signal names accepted by a running saga
const (
	SignalStartFulfillment = "start_fulfillment"
	SignalCancelOrder      = "cancel_order"
	SignalItemPicked       = "item_picked"
	SignalConfirmDelivery  = "confirm_delivery"
)

// Query names answered by a running (or completed) saga
const (
	QueryGetStatus          = "get_status"
	QueryGetCompensationLog = "get_compensation_log"
	QueryGetDeadlineInfo    = "get_deadline_info"
)

// Activity names. The workflow invokes activities by name so the worker
// and the workflow agree on registration.
const (
	ActivityChargePayment     = "charge_payment"
	ActivityRefundPayment     = "refund_payment"
	ActivityReserveInventory  = "reserve_inventory"
	ActivityReleaseInventory  = "release_inventory"
	ActivityCreateFulfillment = "create_fulfillment"
	ActivityCancelFulfillment = "cancel_fulfillment"
	ActivityRequestPickup     = "request_pickup"
	ActivitySendNotification  = "send_notification"
)

// StatusInfo is the get_status query response
type StatusInfo struct {
	OrderID string     `json:"order_id"`
	State   OrderState `json:"state"`
}

// DeadlineInfo is the get_deadline_info query response. Deadline is nil
// until the saga enters its waiting phase. Remaining time is computed by
// the caller against its own wall clock; the saga's clock is logical and
// may lag real time while suspended.
type DeadlineInfo struct {
	Deadline *time.Time `json:"deadline"`
}

// Activity results

type ChargeResult struct {
	ChargeID string `json:"charge_id"`
}

type RefundResult struct {
	RefundID string `json:"refund_id"`
}

type ReservationResult struct {
	ReservationID string `json:"reservation_id"`
}

type ReleaseResult struct {
	Released bool `json:"released"`
}

type FulfillmentResult struct {
	FulfillmentID string `json:"fulfillment_id"`
}

type CancelFulfillmentResult struct {
	Cancelled bool `json:"cancelled"`
}

type PickupResult struct {
	PickupRequestID string `json:"pickup_request_id"`
}

type NotificationResult struct {
	Sent bool `json:"sent"`
}
