package activities

import (
	"context"

	"github.com/draftea/preorder-system/preorder-service/domain"
	"go.temporal.io/sdk/activity"
)

// FulfillmentActivities wraps the fulfillment partner collaborator. The
// partner system is assumed reliable once fulfillment begins; these calls
// run with a single attempt and a bounded timeout.
type FulfillmentActivities struct{}

// NewFulfillmentActivities creates fulfillment activities
func NewFulfillmentActivities() *FulfillmentActivities {
	return &FulfillmentActivities{}
}

// CreateFulfillment opens a fulfillment order with the partner
func (a *FulfillmentActivities) CreateFulfillment(ctx context.Context, orderID string) (*domain.FulfillmentResult, error) {
	fulfillmentID := newResourceID("FULL")
	activity.GetLogger(ctx).Info("Created fulfillment order",
		"order_id", orderID, "fulfillment_id", fulfillmentID)
	return &domain.FulfillmentResult{FulfillmentID: fulfillmentID}, nil
}

// CancelFulfillment cancels a fulfillment order. Compensation.
func (a *FulfillmentActivities) CancelFulfillment(ctx context.Context, fulfillmentID string) (*domain.CancelFulfillmentResult, error) {
	activity.GetLogger(ctx).Info("Cancelled fulfillment", "fulfillment_id", fulfillmentID)
	return &domain.CancelFulfillmentResult{Cancelled: true}, nil
}

// RequestPickup triggers the partner's delivery workflow
func (a *FulfillmentActivities) RequestPickup(ctx context.Context, fulfillmentID string) (*domain.PickupResult, error) {
	pickupRequestID := newResourceID("PICKUP")
	activity.GetLogger(ctx).Info("Requested pickup via partner system",
		"fulfillment_id", fulfillmentID, "pickup_request_id", pickupRequestID)
	return &domain.PickupResult{PickupRequestID: pickupRequestID}, nil
}
