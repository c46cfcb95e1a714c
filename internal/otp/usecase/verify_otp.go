package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
)

type VerifyOTPInput struct {
	TID  string `validate:"required,uuid"`
	Code string `validate:"required,numeric,min=4,max=10"`
}

type VerifyOTPOutput struct {
	Verified bool
	Status   entity.VerifyStatus
}

// VerifyOTP checks the user-submitted code. On success the store clears
// the transaction's live fields; the pending scheduler tick or deadline
// check observes the leftover depth key and settles accounting, so this
// call stays fast and side-effect free beyond attribution.
func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	res, err := s.store.Verify(ctx, in.TID, in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to store verify", "tid", in.TID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if res.Status == entity.VerifyStatusVerified && res.DeviceID != "" {
		s.bumpCounter(ctx, res.DeviceID, entity.DeviceCounterSentVerified)
	}

	return &VerifyOTPOutput{
		Verified: res.Status == entity.VerifyStatusVerified,
		Status:   res.Status,
	}, nil
}
