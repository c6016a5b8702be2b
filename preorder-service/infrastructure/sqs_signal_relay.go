package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/draftea/preorder-system/preorder-service/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PartnerEvent is the message shape the fulfillment partner publishes to
// the queue
type PartnerEvent struct {
	Type    string `json:"type"`
	OrderID string `json:"order_id"`
}

// SignalForPartnerEvent maps a partner event type to the saga signal it
// should raise. Unknown types are dropped.
func SignalForPartnerEvent(eventType string) (string, bool) {
	switch eventType {
	case "item_picked":
		return domain.SignalItemPicked, true
	case "delivered":
		return domain.SignalConfirmDelivery, true
	default:
		return "", false
	}
}

// WorkflowSignaler sends a signal to a running saga. Satisfied by the
// Temporal client.
type WorkflowSignaler interface {
	SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg interface{}) error
}

// SQSSignalRelay consumes partner events from SQS and relays them as saga
// signals. Delivery is at-least-once; signal flags are monotonic so
// duplicates are harmless.
type SQSSignalRelay struct {
	client   *sqs.Client
	queueURL string
	signaler WorkflowSignaler
	logger   *zap.Logger

	workers             int
	maxNumberOfMessages int32
	waitTimeSeconds     int32
	sleepAfterError     time.Duration

	messages chan types.Message
}

// NewSQSSignalRelay creates a relay reading from the given queue
// (works with LocalStack when AWS_ENDPOINT_URL is set)
func NewSQSSignalRelay(ctx context.Context, queueURL string, signaler WorkflowSignaler, logger *zap.Logger) (*SQSSignalRelay, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return &SQSSignalRelay{
		client:              sqs.NewFromConfig(cfg),
		queueURL:            queueURL,
		signaler:            signaler,
		logger:              logger,
		workers:             4,
		maxNumberOfMessages: 5,
		waitTimeSeconds:     15,
		sleepAfterError:     20 * time.Second,
		messages:            make(chan types.Message, 10),
	}, nil
}

// Run reads and relays until the context is cancelled
func (r *SQSSignalRelay) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.read(ctx)
	})

	for i := 0; i < r.workers; i++ {
		g.Go(func() error {
			return r.work(ctx)
		})
	}

	return g.Wait()
}

func (r *SQSSignalRelay) read(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		output, err := r.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(r.queueURL),
			MaxNumberOfMessages: r.maxNumberOfMessages,
			WaitTimeSeconds:     r.waitTimeSeconds,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("Failed to receive partner events", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.sleepAfterError):
			}
			continue
		}

		for _, message := range output.Messages {
			select {
			case r.messages <- message:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (r *SQSSignalRelay) work(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case message := <-r.messages:
			if err := r.relay(ctx, message); err != nil {
				// Leave the message for redelivery after the visibility
				// timeout expires.
				r.logger.Warn("Failed to relay partner event", zap.Error(err))
				continue
			}

			_, err := r.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(r.queueURL),
				ReceiptHandle: message.ReceiptHandle,
			})
			if err != nil {
				r.logger.Warn("Failed to delete partner event", zap.Error(err))
			}
		}
	}
}

func (r *SQSSignalRelay) relay(ctx context.Context, message types.Message) error {
	if message.Body == nil {
		return nil
	}

	var event PartnerEvent
	if err := json.Unmarshal([]byte(*message.Body), &event); err != nil {
		// Malformed messages are dropped, not redelivered forever
		r.logger.Warn("Dropping malformed partner event", zap.Error(err))
		return nil
	}

	signalName, ok := SignalForPartnerEvent(event.Type)
	if !ok {
		r.logger.Info("Dropping unknown partner event type", zap.String("type", event.Type))
		return nil
	}

	if event.OrderID == "" {
		r.logger.Warn("Dropping partner event without order id", zap.String("type", event.Type))
		return nil
	}

	err := r.signaler.SignalWorkflow(ctx, domain.WorkflowID(event.OrderID), "", signalName, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to signal %s for order %s", signalName, event.OrderID)
	}

	r.logger.Info("Relayed partner event",
		zap.String("type", event.Type),
		zap.String("order_id", event.OrderID),
		zap.String("signal", signalName))

	return nil
}
