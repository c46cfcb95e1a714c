package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/orvio/internal/credit/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
	"github.com/shandysiswandi/orvio/internal/pkg/jwt"
)

type SetCreditModeInput struct {
	Mode entity.CreditMode
}

// SetCreditMode updates the caller's refund policy.
func (s *Usecase) SetCreditMode(ctx context.Context, in SetCreditModeInput) error {
	ctx, span := s.startSpan(ctx, "SetCreditMode")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	if in.Mode.IsUnknown() {
		return goerror.NewInvalidInput(nil, "mode", "must be one of direct, moderate, strict")
	}

	err := s.repoDB.SetCreditMode(ctx, clm.UserID, in.Mode)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo set credit mode", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
