package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/orvio/internal/otp/usecase"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"github.com/shandysiswandi/orvio/internal/pkg/messaging"
	"github.com/shandysiswandi/orvio/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

// PublishDeliveryOutcome emits the terminal resolution of one transaction
// for out-of-process stats consumers.
func (m *Messaging) PublishDeliveryOutcome(ctx context.Context, msg usecase.DeliveryOutcomeEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishDeliveryOutcome")
	defer span.End()

	body, err := json.Marshal(event.OTPDeliveryMessage{
		EventID:  msg.EventID,
		TID:      msg.TID,
		Status:   msg.Status.String(),
		UserID:   msg.UserID,
		DeviceID: msg.DeviceID,
		Attempts: msg.Attempts,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.OTPDeliveryDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(msg.TID),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
