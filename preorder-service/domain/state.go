package domain

import "github.com/pkg/errors"

// OrderState is the phase of the pre-order saga
type OrderState string

const (
	StatePreOrderPlaced        OrderState = "pre_order_placed"
	StatePaymentProcessing     OrderState = "payment_processing"
	StateAwaitingRelease       OrderState = "awaiting_release"
	StateFulfillmentInProgress OrderState = "fulfillment_in_progress"
	StateAwaitingDelivery      OrderState = "awaiting_delivery"
	StateDelivered             OrderState = "delivered"
	StateRefunded              OrderState = "refunded"
)

// transitions is the forward transition table. Refunds are a side branch:
// only phases before fulfillment can take it, so a cancellation arriving
// once fulfillment has started is never honored.
var transitions = map[OrderState][]OrderState{
	StatePreOrderPlaced:        {StatePaymentProcessing},
	StatePaymentProcessing:     {StateAwaitingRelease, StateRefunded},
	StateAwaitingRelease:       {StateFulfillmentInProgress, StateRefunded},
	StateFulfillmentInProgress: {StateAwaitingDelivery},
	StateAwaitingDelivery:      {StateDelivered},
	StateDelivered:             {},
	StateRefunded:              {},
}

// String returns the string representation
func (s OrderState) String() string {
	return string(s)
}

// IsTerminal reports whether the state is absorbing
func (s OrderState) IsTerminal() bool {
	return s == StateDelivered || s == StateRefunded
}

// CanRefund reports whether the refund side branch is reachable from s
func (s OrderState) CanRefund() bool {
	for _, next := range transitions[s] {
		if next == StateRefunded {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is a legal transition from s
func (s OrderState) CanTransitionTo(next OrderState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition validates and performs a state transition
func (s OrderState) Transition(next OrderState) (OrderState, error) {
	if !s.CanTransitionTo(next) {
		return s, errors.Errorf("illegal order state transition %s -> %s", s, next)
	}
	return next, nil
}
