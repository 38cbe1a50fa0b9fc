package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/ports"
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

// eventSource identifies this service on the event bus
const eventSource = "cpsc.analytics"

// Publisher emits service events to an EventBridge bus
type Publisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *eventbridge.Client, busName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

// Publish sends one event with a JSON detail payload
func (p *Publisher) Publish(ctx context.Context, eventType string, detail interface{}) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal event detail: %w", err)
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.busName),
				Source:       aws.String(eventSource),
				DetailType:   aws.String(eventType),
				Detail:       aws.String(string(payload)),
			},
		},
	})
	if err != nil {
		return apperrors.ErrEventPublishFailed.WithCause(err)
	}
	if out.FailedEntryCount > 0 {
		entry := out.Entries[0]
		return apperrors.ErrEventPublishFailed.
			WithCause(fmt.Errorf("event rejected: %s", aws.ToString(entry.ErrorMessage)))
	}

	p.logger.Debug("Published event",
		zap.String("eventType", eventType),
		zap.String("bus", p.busName),
	)

	return nil
}
