package infrastructure

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/draftea/preorder-system/preorder-service/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSignaler struct {
	workflowIDs []string
	signals     []string
	err         error
}

func (f *fakeSignaler) SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg interface{}) error {
	f.workflowIDs = append(f.workflowIDs, workflowID)
	f.signals = append(f.signals, signalName)
	return f.err
}

func newTestRelay(signaler *fakeSignaler) *SQSSignalRelay {
	return &SQSSignalRelay{
		signaler: signaler,
		logger:   zap.NewNop(),
	}
}

func TestSignalForPartnerEvent(t *testing.T) {
	tests := []struct {
		eventType string
		signal    string
		known     bool
	}{
		{"item_picked", domain.SignalItemPicked, true},
		{"delivered", domain.SignalConfirmDelivery, true},
		{"shipment_lost", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		signal, ok := SignalForPartnerEvent(tt.eventType)
		assert.Equal(t, tt.known, ok, "type %q", tt.eventType)
		assert.Equal(t, tt.signal, signal, "type %q", tt.eventType)
	}
}

func TestRelayDeliversSignal(t *testing.T) {
	signaler := &fakeSignaler{}
	relay := newTestRelay(signaler)

	err := relay.relay(context.Background(), types.Message{
		Body: aws.String(`{"type":"item_picked","order_id":"ORD-1"}`),
	})

	require.NoError(t, err)
	require.Len(t, signaler.signals, 1)
	assert.Equal(t, domain.SignalItemPicked, signaler.signals[0])
	assert.Equal(t, domain.WorkflowID("ORD-1"), signaler.workflowIDs[0])
}

func TestRelayDropsBadMessages(t *testing.T) {
	signaler := &fakeSignaler{}
	relay := newTestRelay(signaler)

	messages := []types.Message{
		{Body: nil},
		{Body: aws.String("not json")},
		{Body: aws.String(`{"type":"shipment_lost","order_id":"ORD-1"}`)},
		{Body: aws.String(`{"type":"delivered"}`)},
	}

	for _, message := range messages {
		assert.NoError(t, relay.relay(context.Background(), message))
	}
	assert.Empty(t, signaler.signals)
}

func TestRelaySignalFailurePropagates(t *testing.T) {
	signaler := &fakeSignaler{err: assert.AnError}
	relay := newTestRelay(signaler)

	err := relay.relay(context.Background(), types.Message{
		Body: aws.String(`{"type":"delivered","order_id":"ORD-1"}`),
	})

	assert.Error(t, err)
}
