package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
	"github.com/shandysiswandi/orvio/internal/pkg/jwt"
)

type AcknowledgeInput struct {
	TID      string `validate:"required,uuid"`
	DeviceID string `validate:"omitempty,max=64"`
}

type AcknowledgeOutput struct {
	Status entity.AckStatus
}

// Acknowledge records a device-side delivery confirmation. Duplicate,
// expired, and wrong-device are expected races and come back as statuses,
// not errors.
func (s *Usecase) Acknowledge(ctx context.Context, in AcknowledgeInput) (*AcknowledgeOutput, error) {
	ctx, span := s.startSpan(ctx, "Acknowledge")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	// A device token pins the caller's identity; the body value only
	// matters for callers without one.
	deviceID := clm.DeviceID
	if deviceID == "" {
		deviceID = in.DeviceID
	}
	if deviceID == "" {
		return nil, goerror.NewInvalidInput(nil, "device_id", "is required")
	}

	status, err := s.store.Acknowledge(ctx, in.TID, deviceID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to store acknowledge", "tid", in.TID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if status == entity.AckStatusAcknowledged {
		s.bumpCounter(ctx, deviceID, entity.DeviceCounterSentAwaitingVerify)
	}
	if status == entity.AckStatusWrongDevice {
		slog.WarnContext(ctx, "ack from device not currently assigned", "tid", in.TID, "device_id", deviceID)
	}

	return &AcknowledgeOutput{Status: status}, nil
}
