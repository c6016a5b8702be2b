package infrastructure

import (
	"context"
	"time"

	"github.com/draftea/preorder-system/preorder-service/activities"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgresChargeLedger implements activities.ChargeLedger using PostgreSQL
type PostgresChargeLedger struct {
	db *sqlx.DB
}

// NewPostgresChargeLedger creates a new PostgresChargeLedger
func NewPostgresChargeLedger(db *sqlx.DB) *PostgresChargeLedger {
	return &PostgresChargeLedger{db: db}
}

// postgresCharge represents a charge row
type postgresCharge struct {
	ChargeID        string    `db:"charge_id"`
	OrderID         string    `db:"order_id"`
	PaymentMethodID string    `db:"payment_method_id"`
	Amount          int64     `db:"amount"`
	Currency        string    `db:"currency"`
	CreatedAt       time.Time `db:"created_at"`
}

// postgresRefund represents a refund row
type postgresRefund struct {
	RefundID  string    `db:"refund_id"`
	ChargeID  string    `db:"charge_id"`
	CreatedAt time.Time `db:"created_at"`
}

// RecordCharge inserts a committed charge
func (l *PostgresChargeLedger) RecordCharge(ctx context.Context, charge activities.Charge) error {
	query := `
		INSERT INTO charges (
			charge_id, order_id, payment_method_id, amount, currency, created_at
		) VALUES (
			:charge_id, :order_id, :payment_method_id, :amount, :currency, :created_at
		)`

	_, err := l.db.NamedExecContext(ctx, query, &postgresCharge{
		ChargeID:        charge.ChargeID,
		OrderID:         charge.OrderID,
		PaymentMethodID: charge.PaymentMethodID,
		Amount:          charge.Amount.Amount,
		Currency:        charge.Amount.Currency,
		CreatedAt:       charge.CreatedAt,
	})
	if err != nil {
		return errors.Wrap(err, "failed to insert charge")
	}

	return nil
}

// RecordRefund inserts a committed refund
func (l *PostgresChargeLedger) RecordRefund(ctx context.Context, refund activities.Refund) error {
	query := `
		INSERT INTO refunds (
			refund_id, charge_id, created_at
		) VALUES (
			:refund_id, :charge_id, :created_at
		)`

	_, err := l.db.NamedExecContext(ctx, query, &postgresRefund{
		RefundID:  refund.RefundID,
		ChargeID:  refund.ChargeID,
		CreatedAt: refund.CreatedAt,
	})
	if err != nil {
		return errors.Wrap(err, "failed to insert refund")
	}

	return nil
}
