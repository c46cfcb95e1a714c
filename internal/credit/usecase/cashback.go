package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
)

type AccrueCashbackInput struct {
	UserID  int64 `validate:"required"`
	Charged int64 `validate:"required,gt=0"`
}

// AccrueCashback credits cashback points for a successfully verified send.
// Points are the configured percentage of the charged amount, scaled so one
// credit at 10 percent yields 10 points. This is an auxiliary ledger entry
// and never gates an OTP transition.
func (s *Usecase) AccrueCashback(ctx context.Context, in AccrueCashbackInput) error {
	ctx, span := s.startSpan(ctx, "AccrueCashback")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if s.IsSystemUser(in.UserID) || s.cashbackPercent <= 0 {
		return nil
	}

	points := in.Charged * s.cashbackPercent
	if points <= 0 {
		return nil
	}

	if err := s.repoDB.AccrueCashback(ctx, in.UserID, points); err != nil {
		slog.ErrorContext(ctx, "failed to repo accrue cashback", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
