package workflow

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/draftea/preorder-system/preorder-service/domain"
	"github.com/pkg/errors"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	activityTimeout     = 30 * time.Second
	notificationTimeout = 10 * time.Second

	// How long the saga waits for the pickup confirmation before nudging
	// the delivery partner again.
	pickupReminderInterval = 20 * time.Second

	partnerEmail = "partner@example.com"
)

// standardRetry bounds forward side effects: exhausting it is a business
// failure surfaced to the caller, not a system fault.
var standardRetry = &temporal.RetryPolicy{
	InitialInterval: 2 * time.Second,
	MaximumAttempts: 3,
}

// compensationRetry treats undo operations as must-eventually-succeed.
var compensationRetry = &temporal.RetryPolicy{
	InitialInterval: 1 * time.Second,
	MaximumInterval: 30 * time.Second,
	MaximumAttempts: 100,
}

var singleAttempt = &temporal.RetryPolicy{
	MaximumAttempts: 1,
}

// preOrderSaga is the mutable state of one saga instance. All mutation
// goes through setState and recordCompensation; signal handlers only set
// monotonic flags, the reactive logic lives in the wait predicates.
type preOrderSaga struct {
	order           domain.PreOrder
	state           domain.OrderState
	compensationLog []domain.CompensationRecord
	deadline        *time.Time

	cancelRequested           bool
	startFulfillmentRequested bool
	itemPickedConfirmed       bool
	deliveryConfirmed         bool
}

// PreOrder orchestrates the pre-order lifecycle from payment to delivery,
// spanning weeks between order placement and fulfillment. Committed forward
// actions are appended to the compensation log; any failure, cancellation
// or deadline expiry before fulfillment replays that log in reverse.
func PreOrder(ctx workflow.Context, order domain.PreOrder) (*domain.Result, error) {
	logger := workflow.GetLogger(ctx)

	if err := order.Validate(); err != nil {
		return nil, err
	}

	s := &preOrderSaga{order: order, state: domain.StatePreOrderPlaced}
	s.registerSignalHandlers(ctx)
	if err := s.registerQueryHandlers(ctx); err != nil {
		return nil, err
	}

	logger.Info("Starting pre-order saga",
		"order_id", order.OrderID,
		"product", order.ProductName,
		"amount", order.Amount.String())

	// Phase 1: payment processing
	if err := s.setState(ctx, domain.StatePaymentProcessing); err != nil {
		return nil, err
	}

	var charge domain.ChargeResult
	err := workflow.ExecuteActivity(withStandardOptions(ctx),
		domain.ActivityChargePayment, order.PaymentMethodID, order.Amount, order.OrderID).
		Get(ctx, &charge)
	if err != nil {
		logger.Error("Payment failed", "order_id", order.OrderID, "error", err)
		return &domain.Result{
			Status:  domain.OutcomePaymentFailed,
			OrderID: order.OrderID,
			Reason:  failureReason(err),
		}, nil
	}
	s.recordCompensation(ctx, domain.ActionPaymentCharged, charge.ChargeID)

	s.notifyCustomer(ctx, "Pre-Order Confirmed!",
		fmt.Sprintf("Payment of %s received for %s.", order.Amount, order.ProductName))

	// Phase 2: reserve inventory
	var reservation domain.ReservationResult
	err = workflow.ExecuteActivity(withStandardOptions(ctx),
		domain.ActivityReserveInventory, order.OrderID, order.ProductName).
		Get(ctx, &reservation)
	if err != nil {
		logger.Error("Inventory reservation failed", "order_id", order.OrderID, "error", err)
		return s.refund(ctx, failureReason(err))
	}
	s.recordCompensation(ctx, domain.ActionInventoryReserved, reservation.ReservationID)

	// Phase 3: wait for fulfillment to start, until release date + grace
	if err := s.setState(ctx, domain.StateAwaitingRelease); err != nil {
		return nil, err
	}
	deadline := order.Deadline()
	s.deadline = &deadline

	waitDuration := deadline.Sub(workflow.Now(ctx))
	if waitDuration <= 0 {
		return s.refund(ctx, domain.ReasonDeadlineExceeded)
	}

	logger.Info("Awaiting fulfillment start", "deadline", deadline)
	satisfied, err := workflow.AwaitWithTimeout(ctx, waitDuration, func() bool {
		return s.startFulfillmentRequested || s.cancelRequested
	})
	if err != nil {
		return nil, err
	}

	if s.cancelRequested {
		return s.refund(ctx, domain.ReasonCancelledByCustomer)
	}
	if !satisfied {
		return s.refund(ctx, domain.ReasonDeadlineExceeded)
	}

	// Phase 4: fulfillment. From here on cancellation is not honored;
	// fulfillment, once triggered, is irrevocable short of operational
	// intervention.
	if err := s.setState(ctx, domain.StateFulfillmentInProgress); err != nil {
		return nil, err
	}

	var fulfillment domain.FulfillmentResult
	err = workflow.ExecuteActivity(withSingleAttemptOptions(ctx),
		domain.ActivityCreateFulfillment, order.OrderID).
		Get(ctx, &fulfillment)
	if err != nil {
		return nil, err
	}
	s.recordCompensation(ctx, domain.ActionFulfillmentCreated, fulfillment.FulfillmentID)

	var pickup domain.PickupResult
	err = workflow.ExecuteActivity(withSingleAttemptOptions(ctx),
		domain.ActivityRequestPickup, fulfillment.FulfillmentID).
		Get(ctx, &pickup)
	if err != nil {
		return nil, err
	}

	s.notifyCustomer(ctx, "Order Being Prepared",
		fmt.Sprintf("Your %s is ready for pickup by delivery service.", order.ProductName))

	// Remind the partner until the item is picked up
	reminders := 0
	for !s.itemPickedConfirmed {
		picked, err := workflow.AwaitWithTimeout(ctx, pickupReminderInterval, func() bool {
			return s.itemPickedConfirmed
		})
		if err != nil {
			return nil, err
		}
		if picked {
			break
		}
		reminders++
		s.notify(ctx, partnerEmail,
			fmt.Sprintf("Pick Up Reminder #%d", reminders),
			fmt.Sprintf("Order %s is waiting to be picked up!", order.OrderID))
	}

	// Phase 5: delivery
	if err := s.setState(ctx, domain.StateAwaitingDelivery); err != nil {
		return nil, err
	}

	s.notifyCustomer(ctx, "Item Picked Up",
		fmt.Sprintf("Your %s has been picked up and is on its way!", order.ProductName))

	if err := workflow.Await(ctx, func() bool { return s.deliveryConfirmed }); err != nil {
		return nil, err
	}

	if err := s.setState(ctx, domain.StateDelivered); err != nil {
		return nil, err
	}
	s.notifyCustomer(ctx, "Order Completed!",
		fmt.Sprintf("Your %s has been delivered!", order.ProductName))

	return &domain.Result{Status: domain.OutcomeCompleted, OrderID: order.OrderID}, nil
}

// refund runs the rollback protocol and reports the refunded outcome
func (s *preOrderSaga) refund(ctx workflow.Context, reason string) (*domain.Result, error) {
	if err := s.compensate(ctx); err != nil {
		return nil, err
	}
	return &domain.Result{
		Status:  domain.OutcomeRefunded,
		OrderID: s.order.OrderID,
		Reason:  reason,
	}, nil
}

// compensate replays the compensation log in strict reverse insertion
// order. The terminal state is recorded before any undo runs, so a crash
// mid-rollback resumes unambiguously on the undo path.
func (s *preOrderSaga) compensate(ctx workflow.Context) error {
	logger := workflow.GetLogger(ctx)

	if err := s.setState(ctx, domain.StateRefunded); err != nil {
		return err
	}

	logger.Info("Running saga compensation", "actions", len(s.compensationLog))

	cctx := withCompensationOptions(ctx)
	for i := len(s.compensationLog) - 1; i >= 0; i-- {
		record := s.compensationLog[i]

		activityName, ok := record.Action.CompensationActivity()
		if !ok {
			logger.Warn("No compensation mapped for action, skipping",
				"action", record.Action, "resource_id", record.ResourceID)
			continue
		}

		logger.Info("Compensating",
			"action", record.Action,
			"activity", activityName,
			"resource_id", record.ResourceID)

		if err := workflow.ExecuteActivity(cctx, activityName, record.ResourceID).Get(cctx, nil); err != nil {
			// Retry policy exhausted. Skipping the record would break the
			// fully-undone guarantee, so fail the saga loudly and leave
			// resolution to an operator.
			return errors.Wrapf(err, "compensation %s exhausted for resource %s",
				activityName, record.ResourceID)
		}
	}

	s.notifyCustomer(ctx, "Order Refunded",
		fmt.Sprintf("Your order has been cancelled and %s will be refunded.", s.order.Amount))

	return nil
}

// setState validates and performs a phase transition
func (s *preOrderSaga) setState(ctx workflow.Context, next domain.OrderState) error {
	updated, err := s.state.Transition(next)
	if err != nil {
		return err
	}
	workflow.GetLogger(ctx).Info("Order state transition", "from", s.state, "to", next)
	s.state = updated
	return nil
}

// recordCompensation appends a committed forward action to the log
func (s *preOrderSaga) recordCompensation(ctx workflow.Context, action domain.CompensationAction, resourceID string) {
	workflow.GetLogger(ctx).Info("Recording compensation action",
		"action", action, "resource_id", resourceID)
	s.compensationLog = append(s.compensationLog, domain.CompensationRecord{
		Action:     action,
		ResourceID: resourceID,
	})
}

func (s *preOrderSaga) notifyCustomer(ctx workflow.Context, subject, message string) {
	s.notify(ctx, s.order.CustomerEmail, subject, message)
}

// notify sends a best-effort notification. Failures are logged and never
// abort the surrounding phase.
func (s *preOrderSaga) notify(ctx workflow.Context, email, subject, message string) {
	nctx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: notificationTimeout,
		RetryPolicy:         singleAttempt,
	})
	err := workflow.ExecuteActivity(nctx, domain.ActivitySendNotification, email, subject, message).
		Get(nctx, nil)
	if err != nil {
		workflow.GetLogger(ctx).Warn("Notification failed",
			"email", email, "subject", subject, "error", err)
	}
}

func (s *preOrderSaga) registerSignalHandlers(ctx workflow.Context) {
	s.handleSignal(ctx, domain.SignalStartFulfillment, func() { s.startFulfillmentRequested = true })
	s.handleSignal(ctx, domain.SignalCancelOrder, func() { s.cancelRequested = true })
	s.handleSignal(ctx, domain.SignalItemPicked, func() { s.itemPickedConfirmed = true })
	s.handleSignal(ctx, domain.SignalConfirmDelivery, func() { s.deliveryConfirmed = true })
}

// handleSignal drains a signal channel into a monotonic flag. Re-signaling
// has no additional effect, and signals are ignored once the saga is
// terminal.
func (s *preOrderSaga) handleSignal(ctx workflow.Context, name string, apply func()) {
	ch := workflow.GetSignalChannel(ctx, name)
	workflow.Go(ctx, func(gctx workflow.Context) {
		for {
			ch.Receive(gctx, nil)
			if s.state.IsTerminal() {
				workflow.GetLogger(gctx).Info("Signal ignored, saga is terminal", "signal", name)
				continue
			}
			workflow.GetLogger(gctx).Info("Signal received", "signal", name)
			apply()
		}
	})
}

func (s *preOrderSaga) registerQueryHandlers(ctx workflow.Context) error {
	err := workflow.SetQueryHandler(ctx, domain.QueryGetStatus, func() (domain.StatusInfo, error) {
		return domain.StatusInfo{OrderID: s.order.OrderID, State: s.state}, nil
	})
	if err != nil {
		return err
	}

	err = workflow.SetQueryHandler(ctx, domain.QueryGetCompensationLog, func() ([]domain.CompensationRecord, error) {
		log := make([]domain.CompensationRecord, len(s.compensationLog))
		copy(log, s.compensationLog)
		return log, nil
	})
	if err != nil {
		return err
	}

	return workflow.SetQueryHandler(ctx, domain.QueryGetDeadlineInfo, func() (domain.DeadlineInfo, error) {
		return domain.DeadlineInfo{Deadline: s.deadline}, nil
	})
}

func withStandardOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: activityTimeout,
		RetryPolicy:         standardRetry,
	})
}

func withCompensationOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: activityTimeout,
		RetryPolicy:         compensationRetry,
	})
}

func withSingleAttemptOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: activityTimeout,
		RetryPolicy:         singleAttempt,
	})
}

// failureReason extracts the human-readable reason from an activity error
func failureReason(err error) string {
	var appErr *temporal.ApplicationError
	if stderrors.As(err, &appErr) {
		return appErr.Message()
	}
	return err.Error()
}
