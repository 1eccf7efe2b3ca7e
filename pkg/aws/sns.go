package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Saroj9823Dangol/event-management-sub001/models"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSPublisher is a minimal interface for publishing messages to SNS.
type SNSPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte, attributes map[string]string) error
}

// SNSAPI is the part of the SNS SDK client used here.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client SNSAPI
}

func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

func NewSNSClientWithAPI(api SNSAPI) *SNSClient {
	return &SNSClient{client: api}
}

// Publish publishes a raw message to the given SNS topic ARN. Attributes
// become String message attributes for subscription filtering.
func (s *SNSClient) Publish(ctx context.Context, topicArn string, message []byte, attributes map[string]string) error {
	if topicArn == "" {
		return fmt.Errorf("empty topicArn")
	}
	input := &sns.PublishInput{
		TopicArn: sdkaws.String(topicArn),
		Message:  sdkaws.String(string(message)),
	}
	if len(attributes) > 0 {
		input.MessageAttributes = make(map[string]types.MessageAttributeValue, len(attributes))
		for k, v := range attributes {
			input.MessageAttributes[k] = types.MessageAttributeValue{
				DataType:    sdkaws.String("String"),
				StringValue: sdkaws.String(v),
			}
		}
	}
	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", topicArn, err)
	}
	return nil
}

// BookingEventTopic publishes booking events to one SNS topic.
type BookingEventTopic struct {
	publisher SNSPublisher
	topicArn  string
}

func NewBookingEventTopic(publisher SNSPublisher, topicArn string) *BookingEventTopic {
	return &BookingEventTopic{publisher: publisher, topicArn: topicArn}
}

func (t *BookingEventTopic) PublishBookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return t.publisher.Publish(ctx, t.topicArn, data, map[string]string{"event_type": event.EventType})
}
