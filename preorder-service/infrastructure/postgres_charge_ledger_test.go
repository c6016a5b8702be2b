package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/draftea/preorder-system/preorder-service/activities"
	"github.com/draftea/preorder-system/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestPostgresChargeLedgerRecordCharge(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewPostgresChargeLedger(db)

	now := time.Now()
	mock.ExpectExec("INSERT INTO charges").
		WithArgs("CH-abc123", "ORD-1", "pm_card_visa", int64(88800), "USD", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := ledger.RecordCharge(context.Background(), activities.Charge{
		ChargeID:        "CH-abc123",
		OrderID:         "ORD-1",
		PaymentMethodID: "pm_card_visa",
		Amount:          models.NewMoney(88800, "USD"),
		CreatedAt:       now,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresChargeLedgerRecordChargeError(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewPostgresChargeLedger(db)

	mock.ExpectExec("INSERT INTO charges").
		WillReturnError(assert.AnError)

	err := ledger.RecordCharge(context.Background(), activities.Charge{
		ChargeID:  "CH-abc123",
		OrderID:   "ORD-1",
		Amount:    models.NewMoney(100, "USD"),
		CreatedAt: time.Now(),
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert charge")
}

func TestPostgresChargeLedgerRecordRefund(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewPostgresChargeLedger(db)

	now := time.Now()
	mock.ExpectExec("INSERT INTO refunds").
		WithArgs("RF-def456", "CH-abc123", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := ledger.RecordRefund(context.Background(), activities.Refund{
		RefundID:  "RF-def456",
		ChargeID:  "CH-abc123",
		CreatedAt: now,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
