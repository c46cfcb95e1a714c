package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
	"github.com/shandysiswandi/orvio/internal/pkg/jwt"
)

type RegisterDeviceInput struct {
	DeviceID  string `validate:"omitempty,max=64"`
	PushToken string `validate:"required,min=16"`
}

type RegisterDeviceOutput struct {
	DeviceID    string
	DeviceToken string
}

// RegisterDevice adds the caller's device to the relay pool and issues a
// device-scoped token for subsequent acknowledgments.
func (s *Usecase) RegisterDevice(ctx context.Context, in RegisterDeviceInput) (*RegisterDeviceOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterDevice")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	deviceID := in.DeviceID
	if deviceID == "" {
		deviceID = s.uuid.Generate()
	}

	dev := entity.Device{
		ID:        deviceID,
		UserID:    clm.UserID,
		PushToken: in.PushToken,
		Active:    true,
	}
	if err := s.repoDB.UpsertDevice(ctx, dev); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert device", "device_id", deviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.directory.Register(ctx, deviceID, in.PushToken); err != nil {
		slog.ErrorContext(ctx, "failed to add device to active pool", "device_id", deviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.Generate(clm.UserID, deviceID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate device token", "device_id", deviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &RegisterDeviceOutput{DeviceID: deviceID, DeviceToken: token}, nil
}

type DeactivateDeviceInput struct {
	DeviceID string `validate:"required,max=64"`
}

// DeactivateDevice removes a device from the relay pool. Counters and the
// persistent row survive so stats remain queryable.
func (s *Usecase) DeactivateDevice(ctx context.Context, in DeactivateDeviceInput) error {
	ctx, span := s.startSpan(ctx, "DeactivateDevice")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	err := s.repoDB.SetDeviceActive(ctx, in.DeviceID, false)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("device not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo deactivate device", "device_id", in.DeviceID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.directory.Deactivate(ctx, in.DeviceID); err != nil {
		slog.ErrorContext(ctx, "failed to remove device from active pool", "device_id", in.DeviceID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
