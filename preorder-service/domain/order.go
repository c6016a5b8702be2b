package domain

import (
	"time"

	"github.com/draftea/preorder-system/shared/models"
	"github.com/pkg/errors"
)

// PreOrder is the immutable input of a pre-order saga. It is created once
// when the order is placed and never mutated afterwards.
type PreOrder struct {
	OrderID         string       `json:"order_id"`
	CustomerEmail   string       `json:"customer_email"`
	ProductName     string       `json:"product_name"`
	Amount          models.Money `json:"amount"`
	PaymentMethodID string       `json:"payment_method_id"`
	ReleaseDate     time.Time    `json:"release_date"`
}

// Validate checks the pre-order input
func (o PreOrder) Validate() error {
	if o.OrderID == "" {
		return errors.New("order ID is required")
	}
	if o.CustomerEmail == "" {
		return errors.New("customer email is required")
	}
	if o.ProductName == "" {
		return errors.New("product name is required")
	}
	if o.Amount.IsNegative() {
		return errors.New("amount must not be negative")
	}
	if o.PaymentMethodID == "" {
		return errors.New("payment method is required")
	}
	if o.ReleaseDate.IsZero() {
		return errors.New("release date is required")
	}
	return nil
}

// FulfillmentGracePeriod is how long after the release date the saga waits
// for fulfillment to begin before refunding the order.
const FulfillmentGracePeriod = 7 * 24 * time.Hour

// Deadline returns the instant by which fulfillment must have started
func (o PreOrder) Deadline() time.Time {
	return o.ReleaseDate.Add(FulfillmentGracePeriod)
}

// Outcome is the terminal status reported to the initiator
type Outcome string

const (
	OutcomeCompleted     Outcome = "completed"
	OutcomeRefunded      Outcome = "refunded"
	OutcomePaymentFailed Outcome = "payment_failed"
)

// Refund reasons reported alongside the refunded outcome
const (
	ReasonCancelledByCustomer = "cancelled by customer"
	ReasonDeadlineExceeded    = "deadline exceeded"
)

// Result is what the saga returns to its initiator. Reason is only set for
// the failure outcomes.
type Result struct {
	Status  Outcome `json:"status"`
	OrderID string  `json:"order_id"`
	Reason  string  `json:"reason,omitempty"`
}
