package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
)

type CheckAndDeductInput struct {
	UserID int64 `validate:"required"`
	Amount int64 `validate:"required,gt=0"`
}

// CheckAndDeduct atomically charges the user's balance. It returns false
// (no mutation) when the balance is insufficient. The reserved system user
// is never charged.
func (s *Usecase) CheckAndDeduct(ctx context.Context, in CheckAndDeductInput) (bool, error) {
	ctx, span := s.startSpan(ctx, "CheckAndDeduct")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return false, goerror.NewInvalidInput(err)
	}

	if s.IsSystemUser(in.UserID) {
		return true, nil
	}

	ok, err := s.repoDB.DeductCredits(ctx, in.UserID, in.Amount)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo deduct credits", "user_id", in.UserID, "error", err)
		return false, goerror.NewServer(err)
	}

	if !ok {
		slog.WarnContext(ctx, "insufficient credits", "user_id", in.UserID, "amount", in.Amount)
	}

	return ok, nil
}
