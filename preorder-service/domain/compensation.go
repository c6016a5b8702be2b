package domain

// CompensationAction identifies a committed forward action that may need
// to be undone. Each declared action carries its compensating activity via
// CompensationActivity, so an action without a defined undo cannot be
// introduced silently.
type CompensationAction string

const (
	ActionPaymentCharged     CompensationAction = "payment_charged"
	ActionInventoryReserved  CompensationAction = "inventory_reserved"
	ActionFulfillmentCreated CompensationAction = "fulfillment_created"
)

// CompensationActivity returns the activity that undoes the action. The
// second return is false for actions with no compensation; those records
// are skipped during rollback.
func (a CompensationAction) CompensationActivity() (string, bool) {
	switch a {
	case ActionPaymentCharged:
		return ActivityRefundPayment, true
	case ActionInventoryReserved:
		return ActivityReleaseInventory, true
	case ActionFulfillmentCreated:
		return ActivityCancelFulfillment, true
	default:
		return "", false
	}
}

// CompensationRecord tracks a committed forward action for potential
// rollback. Records are immutable once appended; the log's insertion order
// defines the (reverse) undo order.
type CompensationRecord struct {
	Action     CompensationAction `json:"action"`
	ResourceID string             `json:"resource_id"`
}
