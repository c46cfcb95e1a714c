package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
)

type RefundInput struct {
	UserID int64 `validate:"required"`
	Amount int64 `validate:"required,gt=0"`
}

// Refund unconditionally returns a previously charged amount. The system
// user holds no balance, so refunds to it are dropped.
func (s *Usecase) Refund(ctx context.Context, in RefundInput) error {
	ctx, span := s.startSpan(ctx, "Refund")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if s.IsSystemUser(in.UserID) {
		return nil
	}

	if err := s.repoDB.RefundCredits(ctx, in.UserID, in.Amount); err != nil {
		slog.ErrorContext(ctx, "failed to repo refund credits", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
