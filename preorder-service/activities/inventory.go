package activities

import (
	"context"
	"time"

	"github.com/draftea/preorder-system/preorder-service/domain"
	"github.com/pkg/errors"
	"go.temporal.io/sdk/activity"
)

// Reservation holds inventory for an order until released
type Reservation struct {
	ReservationID string
	OrderID       string
	ProductName   string
	CreatedAt     time.Time
}

// ReservationStore persists inventory reservations
type ReservationStore interface {
	Create(ctx context.Context, reservation Reservation) error
	Release(ctx context.Context, reservationID string) error
}

// InventoryActivities wraps the inventory system collaborator
type InventoryActivities struct {
	store ReservationStore
}

// NewInventoryActivities creates inventory activities backed by a store
func NewInventoryActivities(store ReservationStore) *InventoryActivities {
	return &InventoryActivities{store: store}
}

// ReserveInventory reserves stock for the order
func (a *InventoryActivities) ReserveInventory(ctx context.Context, orderID, productName string) (*domain.ReservationResult, error) {
	logger := activity.GetLogger(ctx)

	reservationID := newResourceID("RES")
	err := a.store.Create(ctx, Reservation{
		ReservationID: reservationID,
		OrderID:       orderID,
		ProductName:   productName,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to reserve inventory")
	}

	logger.Info("Reserved inventory", "order_id", orderID, "product", productName, "reservation_id", reservationID)
	return &domain.ReservationResult{ReservationID: reservationID}, nil
}

// ReleaseInventory releases a reservation. Compensation.
func (a *InventoryActivities) ReleaseInventory(ctx context.Context, reservationID string) (*domain.ReleaseResult, error) {
	logger := activity.GetLogger(ctx)

	if err := a.store.Release(ctx, reservationID); err != nil {
		return nil, errors.Wrap(err, "failed to release reservation")
	}

	logger.Info("Released inventory reservation", "reservation_id", reservationID)
	return &domain.ReleaseResult{Released: true}, nil
}
