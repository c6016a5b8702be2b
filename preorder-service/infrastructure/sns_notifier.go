package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/pkg/errors"
)

// SNSNotifier implements activities.Notifier by publishing notifications
// to an SNS topic consumed by the mail delivery pipeline
type SNSNotifier struct {
	client   *sns.Client
	topicArn string
}

// NewSNSNotifier creates an SNS-backed notifier
// (works with LocalStack when AWS_ENDPOINT_URL is set)
func NewSNSNotifier(ctx context.Context, topicArn string) (*SNSNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return &SNSNotifier{
		client:   sns.NewFromConfig(cfg),
		topicArn: topicArn,
	}, nil
}

type notificationMessage struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Send publishes the notification payload to the topic
func (n *SNSNotifier) Send(ctx context.Context, email, subject, message string) error {
	body, err := json.Marshal(notificationMessage{
		Email:   email,
		Subject: subject,
		Message: message,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal notification")
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"notification_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String("email"),
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to publish notification to SNS")
	}

	return nil
}
