package domain

import (
	"testing"
	"time"

	"github.com/draftea/preorder-system/shared/models"
	"github.com/stretchr/testify/assert"
)

func validOrder() PreOrder {
	return PreOrder{
		OrderID:         "ORD-abc12345",
		CustomerEmail:   "customer@example.com",
		ProductName:     "Collector Edition Console",
		Amount:          models.NewMoney(88800, "USD"),
		PaymentMethodID: "pm_card_visa",
		ReleaseDate:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPreOrderValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PreOrder)
		wantErr string
	}{
		{"valid", func(o *PreOrder) {}, ""},
		{"free order is valid", func(o *PreOrder) { o.Amount = models.NewMoney(0, "USD") }, ""},
		{"missing order id", func(o *PreOrder) { o.OrderID = "" }, "order ID is required"},
		{"missing email", func(o *PreOrder) { o.CustomerEmail = "" }, "customer email is required"},
		{"missing product", func(o *PreOrder) { o.ProductName = "" }, "product name is required"},
		{"negative amount", func(o *PreOrder) { o.Amount = models.NewMoney(-1, "USD") }, "amount must not be negative"},
		{"missing payment method", func(o *PreOrder) { o.PaymentMethodID = "" }, "payment method is required"},
		{"missing release date", func(o *PreOrder) { o.ReleaseDate = time.Time{} }, "release date is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := validOrder()
			tt.mutate(&order)

			err := order.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestPreOrderDeadline(t *testing.T) {
	order := validOrder()
	want := order.ReleaseDate.Add(7 * 24 * time.Hour)
	assert.True(t, order.Deadline().Equal(want))
}
