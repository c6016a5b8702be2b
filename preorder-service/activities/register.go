package activities

import (
	"github.com/draftea/preorder-system/preorder-service/domain"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
)

// RegisterAll registers every activity under the name the workflow invokes
// it by.
func RegisterAll(
	w worker.Worker,
	payment *PaymentActivities,
	inventory *InventoryActivities,
	fulfillment *FulfillmentActivities,
	notification *NotificationActivities,
) {
	w.RegisterActivityWithOptions(payment.ChargePayment, activity.RegisterOptions{Name: domain.ActivityChargePayment})
	w.RegisterActivityWithOptions(payment.RefundPayment, activity.RegisterOptions{Name: domain.ActivityRefundPayment})
	w.RegisterActivityWithOptions(inventory.ReserveInventory, activity.RegisterOptions{Name: domain.ActivityReserveInventory})
	w.RegisterActivityWithOptions(inventory.ReleaseInventory, activity.RegisterOptions{Name: domain.ActivityReleaseInventory})
	w.RegisterActivityWithOptions(fulfillment.CreateFulfillment, activity.RegisterOptions{Name: domain.ActivityCreateFulfillment})
	w.RegisterActivityWithOptions(fulfillment.CancelFulfillment, activity.RegisterOptions{Name: domain.ActivityCancelFulfillment})
	w.RegisterActivityWithOptions(fulfillment.RequestPickup, activity.RegisterOptions{Name: domain.ActivityRequestPickup})
	w.RegisterActivityWithOptions(notification.SendNotification, activity.RegisterOptions{Name: domain.ActivitySendNotification})
}
