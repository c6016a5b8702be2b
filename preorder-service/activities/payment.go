package activities

import (
	"context"
	"time"

	"github.com/draftea/preorder-system/preorder-service/domain"
	"github.com/draftea/preorder-system/shared/models"
	"github.com/pkg/errors"
	"go.temporal.io/sdk/activity"
)

// Charge is a committed payment charge
type Charge struct {
	ChargeID        string
	OrderID         string
	PaymentMethodID string
	Amount          models.Money
	CreatedAt       time.Time
}

// Refund is a committed payment refund
type Refund struct {
	RefundID  string
	ChargeID  string
	CreatedAt time.Time
}

// ChargeLedger records charges and refunds for audit and reconciliation
type ChargeLedger interface {
	RecordCharge(ctx context.Context, charge Charge) error
	RecordRefund(ctx context.Context, refund Refund) error
}

// PaymentActivities wraps the payment gateway collaborator
type PaymentActivities struct {
	ledger ChargeLedger
}

// NewPaymentActivities creates payment activities backed by a charge ledger
func NewPaymentActivities(ledger ChargeLedger) *PaymentActivities {
	return &PaymentActivities{ledger: ledger}
}

// ChargePayment charges the customer's payment method. A declined card is
// a business failure; the workflow's retry policy bounds the attempts.
func (a *PaymentActivities) ChargePayment(ctx context.Context, paymentMethodID string, amount models.Money, orderID string) (*domain.ChargeResult, error) {
	logger := activity.GetLogger(ctx)

	if paymentMethodID == "pm_card_declined" {
		return nil, errors.New("payment declined - insufficient funds")
	}

	chargeID := newResourceID("CH")
	err := a.ledger.RecordCharge(ctx, Charge{
		ChargeID:        chargeID,
		OrderID:         orderID,
		PaymentMethodID: paymentMethodID,
		Amount:          amount,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to record charge")
	}

	logger.Info("Charged payment", "order_id", orderID, "amount", amount.String(), "charge_id", chargeID)
	return &domain.ChargeResult{ChargeID: chargeID}, nil
}

// RefundPayment refunds a previous charge. Compensation: expected to
// eventually succeed under normal operating assumptions.
func (a *PaymentActivities) RefundPayment(ctx context.Context, chargeID string) (*domain.RefundResult, error) {
	logger := activity.GetLogger(ctx)

	refundID := newResourceID("RF")
	err := a.ledger.RecordRefund(ctx, Refund{
		RefundID:  refundID,
		ChargeID:  chargeID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to record refund")
	}

	logger.Info("Refunded payment", "charge_id", chargeID, "refund_id", refundID)
	return &domain.RefundResult{RefundID: refundID}, nil
}
