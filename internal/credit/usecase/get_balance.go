package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/orvio/internal/credit/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
	"github.com/shandysiswandi/orvio/internal/pkg/jwt"
)

type GetBalanceInput struct{}

type GetBalanceOutput struct {
	Credits        int64
	Mode           entity.CreditMode
	CashbackPoints int64
}

// GetBalance returns the caller's credit balance, refund mode, and cashback points.
func (s *Usecase) GetBalance(ctx context.Context, in GetBalanceInput) (*GetBalanceOutput, error) {
	ctx, span := s.startSpan(ctx, "GetBalance")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	bal, err := s.repoDB.GetBalance(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get balance", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &GetBalanceOutput{
		Credits:        bal.Credits,
		Mode:           bal.Mode,
		CashbackPoints: bal.CashbackPoints,
	}, nil
}

// GetCreditMode returns the refund mode for an arbitrary user. It exists for
// internal callers that settle transactions on the user's behalf.
func (s *Usecase) GetCreditMode(ctx context.Context, userID int64) (entity.CreditMode, error) {
	ctx, span := s.startSpan(ctx, "GetCreditMode")
	defer span.End()

	bal, err := s.repoDB.GetBalance(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get balance", "user_id", userID, "error", err)
		return entity.CreditModeUnknown, goerror.NewServer(err)
	}

	return bal.Mode, nil
}
