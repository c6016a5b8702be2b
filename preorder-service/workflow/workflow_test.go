package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/draftea/preorder-system/preorder-service/domain"
	"github.com/draftea/preorder-system/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

type PreOrderWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env   *testsuite.TestWorkflowEnvironment
	calls *callRecorder
}

func TestPreOrderWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(PreOrderWorkflowTestSuite))
}

func (s *PreOrderWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.calls = &callRecorder{}
}

// callRecorder captures activity invocations in the order the workflow
// issued them
type callRecorder struct {
	mu            sync.Mutex
	names         []string
	notifications []notification
}

type notification struct {
	Email   string
	Subject string
}

func (r *callRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *callRecorder) recordNotification(email, subject string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, notification{Email: email, Subject: subject})
}

// compensations returns only the undo activities, in invocation order
func (r *callRecorder) compensations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, name := range r.names {
		switch name {
		case domain.ActivityRefundPayment, domain.ActivityReleaseInventory, domain.ActivityCancelFulfillment:
			out = append(out, name)
		}
	}
	return out
}

func (r *callRecorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, got := range r.names {
		if got == name {
			n++
		}
	}
	return n
}

func (r *callRecorder) partnerReminders() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, note := range r.notifications {
		if note.Email == partnerEmail {
			n++
		}
	}
	return n
}

// registerFakeActivities registers stand-ins under the names the workflow
// invokes. chargeErr, when set, makes every charge attempt fail.
func (s *PreOrderWorkflowTestSuite) registerFakeActivities(chargeErr error) {
	s.env.RegisterActivityWithOptions(
		func(ctx context.Context, paymentMethodID string, amount models.Money, orderID string) (*domain.ChargeResult, error) {
			s.calls.record(domain.ActivityChargePayment)
			if chargeErr != nil {
				return nil, chargeErr
			}
			return &domain.ChargeResult{ChargeID: "CH-test"}, nil
		},
		activity.RegisterOptions{Name: domain.ActivityChargePayment})

	s.env.RegisterActivityWithOptions(
		func(ctx context.Context, chargeID string) (*domain.RefundResult, error) {
			s.calls.record(domain.ActivityRefundPayment)
			s.Equal("CH-test", chargeID)
			return &domain.RefundResult{RefundID: "RF-test"}, nil
		},
		activity.RegisterOptions{Name: domain.ActivityRefundPayment})

	s.env.RegisterActivityWithOptions(
		func(ctx context.Context, orderID, productName string) (*domain.ReservationResult, error) {
			s.calls.record(domain.ActivityReserveInventory)
			return &domain.ReservationResult{ReservationID: "RES-test"}, nil
		},
		activity.RegisterOptions{Name: domain.ActivityReserveInventory})

	s.env.RegisterActivityWithOptions(
		func(ctx context.Context, reservationID string) (*domain.ReleaseResult, error) {
			s.calls.record(domain.ActivityReleaseInventory)
			s.Equal("RES-test", reservationID)
			return &domain.ReleaseResult{Released: true}, nil
		},
		activity.RegisterOptions{Name: domain.ActivityReleaseInventory})

	s.env.RegisterActivityWithOptions(
		func(ctx context.Context, orderID string) (*domain.FulfillmentResult, error) {
			s.calls.record(domain.ActivityCreateFulfillment)
			return &domain.FulfillmentResult{FulfillmentID: "FULL-test"}, nil
		},
		activity.RegisterOptions{Name: domain.ActivityCreateFulfillment})

	s.env.RegisterActivityWithOptions(
		func(ctx context.Context, fulfillmentID string) (*domain.CancelFulfillmentResult, error) {
			s.calls.record(domain.ActivityCancelFulfillment)
			return &domain.CancelFulfillmentResult{Cancelled: true}, nil
		},
		activity.RegisterOptions{Name: domain.ActivityCancelFulfillment})

	s.env.RegisterActivityWithOptions(
		func(ctx context.Context, fulfillmentID string) (*domain.PickupResult, error) {
			s.calls.record(domain.ActivityRequestPickup)
			return &domain.PickupResult{PickupRequestID: "PICKUP-test"}, nil
		},
		activity.RegisterOptions{Name: domain.ActivityRequestPickup})

	s.env.RegisterActivityWithOptions(
		func(ctx context.Context, email, subject, message string) (*domain.NotificationResult, error) {
			s.calls.record(domain.ActivitySendNotification)
			s.calls.recordNotification(email, subject)
			return &domain.NotificationResult{Sent: true}, nil
		},
		activity.RegisterOptions{Name: domain.ActivitySendNotification})
}

func testOrder() domain.PreOrder {
	return domain.PreOrder{
		OrderID:         "ORD-test1234",
		CustomerEmail:   "customer@example.com",
		ProductName:     "Collector Edition Console",
		Amount:          models.NewMoney(88800, "USD"),
		PaymentMethodID: "pm_card_visa",
		ReleaseDate:     time.Now().Add(24 * time.Hour),
	}
}

func (s *PreOrderWorkflowTestSuite) signalLater(name string, delay time.Duration) {
	s.env.RegisterDelayedCallback(func() {
		s.env.SignalWorkflow(name, nil)
	}, delay)
}

func (s *PreOrderWorkflowTestSuite) workflowResult() domain.Result {
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result domain.Result
	s.NoError(s.env.GetWorkflowResult(&result))
	return result
}

func (s *PreOrderWorkflowTestSuite) queryStatus() domain.StatusInfo {
	val, err := s.env.QueryWorkflow(domain.QueryGetStatus)
	s.Require().NoError(err)

	var status domain.StatusInfo
	s.Require().NoError(val.Get(&status))
	return status
}

func (s *PreOrderWorkflowTestSuite) queryCompensationLog() []domain.CompensationRecord {
	val, err := s.env.QueryWorkflow(domain.QueryGetCompensationLog)
	s.Require().NoError(err)

	var log []domain.CompensationRecord
	s.Require().NoError(val.Get(&log))
	return log
}

func (s *PreOrderWorkflowTestSuite) TestHappyPathDeliversOrder() {
	s.registerFakeActivities(nil)

	s.signalLater(domain.SignalStartFulfillment, time.Hour)
	s.signalLater(domain.SignalItemPicked, time.Hour+50*time.Second)
	s.signalLater(domain.SignalConfirmDelivery, 2*time.Hour)

	s.env.ExecuteWorkflow(PreOrder, testOrder())

	result := s.workflowResult()
	s.Equal(domain.OutcomeCompleted, result.Status)
	s.Equal("ORD-test1234", result.OrderID)
	s.Empty(result.Reason)

	s.Equal(1, s.calls.count(domain.ActivityChargePayment))
	s.Equal(1, s.calls.count(domain.ActivityReserveInventory))
	s.Equal(1, s.calls.count(domain.ActivityCreateFulfillment))
	s.Equal(1, s.calls.count(domain.ActivityRequestPickup))
	s.Empty(s.calls.compensations())

	// Item was picked up 50s into fulfillment, so the 20s reminder ticker
	// fired twice before the signal landed.
	s.Equal(2, s.calls.partnerReminders())

	status := s.queryStatus()
	s.Equal(domain.StateDelivered, status.State)

	log := s.queryCompensationLog()
	s.Require().Len(log, 3)
	s.Equal(domain.ActionPaymentCharged, log[0].Action)
	s.Equal(domain.ActionInventoryReserved, log[1].Action)
	s.Equal(domain.ActionFulfillmentCreated, log[2].Action)
}

func (s *PreOrderWorkflowTestSuite) TestDeadlineExpiryRefundsInReverseOrder() {
	s.registerFakeActivities(nil)

	s.env.ExecuteWorkflow(PreOrder, testOrder())

	result := s.workflowResult()
	s.Equal(domain.OutcomeRefunded, result.Status)
	s.Equal(domain.ReasonDeadlineExceeded, result.Reason)

	s.Equal([]string{
		domain.ActivityReleaseInventory,
		domain.ActivityRefundPayment,
	}, s.calls.compensations())

	status := s.queryStatus()
	s.Equal(domain.StateRefunded, status.State)

	log := s.queryCompensationLog()
	s.Require().Len(log, 2)
	s.Equal(domain.ActionPaymentCharged, log[0].Action)
	s.Equal(domain.ActionInventoryReserved, log[1].Action)
}

func (s *PreOrderWorkflowTestSuite) TestCustomerCancellationRefunds() {
	s.registerFakeActivities(nil)

	s.signalLater(domain.SignalCancelOrder, 10*time.Minute)

	s.env.ExecuteWorkflow(PreOrder, testOrder())

	result := s.workflowResult()
	s.Equal(domain.OutcomeRefunded, result.Status)
	s.Equal(domain.ReasonCancelledByCustomer, result.Reason)

	s.Equal([]string{
		domain.ActivityReleaseInventory,
		domain.ActivityRefundPayment,
	}, s.calls.compensations())
	s.Zero(s.calls.count(domain.ActivityCreateFulfillment))
}

func (s *PreOrderWorkflowTestSuite) TestRepeatedCancellationIsIdempotent() {
	s.registerFakeActivities(nil)

	s.signalLater(domain.SignalCancelOrder, 10*time.Minute)
	s.signalLater(domain.SignalCancelOrder, 11*time.Minute)

	s.env.ExecuteWorkflow(PreOrder, testOrder())

	result := s.workflowResult()
	s.Equal(domain.OutcomeRefunded, result.Status)
	s.Equal(domain.ReasonCancelledByCustomer, result.Reason)

	s.Equal(1, s.calls.count(domain.ActivityRefundPayment))
	s.Equal(1, s.calls.count(domain.ActivityReleaseInventory))
}

func (s *PreOrderWorkflowTestSuite) TestPaymentFailureEndsWithoutCompensation() {
	s.registerFakeActivities(errors.New("payment declined - insufficient funds"))

	s.env.ExecuteWorkflow(PreOrder, testOrder())

	result := s.workflowResult()
	s.Equal(domain.OutcomePaymentFailed, result.Status)
	s.Equal("payment declined - insufficient funds", result.Reason)

	// Bounded retry: three attempts, then give up
	s.Equal(3, s.calls.count(domain.ActivityChargePayment))
	s.Empty(s.calls.compensations())
	s.Empty(s.queryCompensationLog())
}

func (s *PreOrderWorkflowTestSuite) TestCancellationIgnoredOnceFulfillmentStarted() {
	s.registerFakeActivities(nil)

	s.signalLater(domain.SignalStartFulfillment, time.Hour)
	s.signalLater(domain.SignalCancelOrder, time.Hour+5*time.Second)
	s.signalLater(domain.SignalItemPicked, time.Hour+10*time.Second)
	s.signalLater(domain.SignalConfirmDelivery, time.Hour+time.Minute)

	s.env.ExecuteWorkflow(PreOrder, testOrder())

	result := s.workflowResult()
	s.Equal(domain.OutcomeCompleted, result.Status)
	s.Empty(s.calls.compensations())
}

func (s *PreOrderWorkflowTestSuite) TestDeadlineQueryWhileWaiting() {
	s.registerFakeActivities(nil)

	order := testOrder()

	var info domain.DeadlineInfo
	s.env.RegisterDelayedCallback(func() {
		status := s.queryStatus()
		s.Equal(domain.StateAwaitingRelease, status.State)

		val, err := s.env.QueryWorkflow(domain.QueryGetDeadlineInfo)
		s.Require().NoError(err)
		s.Require().NoError(val.Get(&info))
	}, 30*time.Minute)

	s.env.ExecuteWorkflow(PreOrder, order)

	s.Require().NotNil(info.Deadline)
	s.True(info.Deadline.Equal(order.Deadline()))

	result := s.workflowResult()
	s.Equal(domain.OutcomeRefunded, result.Status)
}

func (s *PreOrderWorkflowTestSuite) TestInvalidOrderFailsFast() {
	s.registerFakeActivities(nil)

	order := testOrder()
	order.CustomerEmail = ""

	s.env.ExecuteWorkflow(PreOrder, order)

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Require().Error(err)
	s.Contains(err.Error(), "customer email is required")
	s.Zero(s.calls.count(domain.ActivityChargePayment))
}
