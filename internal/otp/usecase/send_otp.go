package usecase

import (
	"context"
	"log/slog"
	"time"

	creditentity "github.com/shandysiswandi/orvio/internal/credit/entity"
	creditusecase "github.com/shandysiswandi/orvio/internal/credit/usecase"
	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
	"github.com/shandysiswandi/orvio/internal/pkg/jwt"
)

type SendOTPInput struct {
	PhoneNumber      string `validate:"required,e164"`
	WebhookURL       string `validate:"omitempty,url"`
	WebhookSecret    string `validate:"omitempty,min=16"`
	OTPExpirySeconds int64  `validate:"omitempty,gte=30,lte=600"`
	OrgName          string `validate:"omitempty,max=64"`
}

type SendOTPOutput struct {
	TID string
}

// SendOTP charges the caller, creates a transaction id, and starts the
// dispatch loop for it. No tid exists if the ledger check fails.
func (s *Usecase) SendOTP(ctx context.Context, in SendOTPInput) (*SendOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "SendOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	charged := int64(0)
	if !s.ledger.IsSystemUser(clm.UserID) {
		mode, err := s.ledger.GetCreditMode(ctx, clm.UserID)
		if err != nil {
			return nil, err
		}
		if mode.IsUnknown() {
			mode = creditentity.CreditModeDirect
		}

		cost := s.ledger.CostFor(mode)
		ok, err := s.ledger.CheckAndDeduct(ctx, creditusecase.CheckAndDeductInput{
			UserID: clm.UserID,
			Amount: cost,
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, goerror.NewBusiness("insufficient credits", goerror.CodePaymentRequired)
		}
		charged = cost
	}

	code, err := s.codeGen.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	expiry := s.defaultExpiry
	if in.OTPExpirySeconds > 0 {
		expiry = time.Duration(in.OTPExpirySeconds) * time.Second
	}

	tx := entity.Transaction{
		TID:           s.uuid.Generate(),
		UserID:        clm.UserID,
		PhoneNumber:   in.PhoneNumber,
		Code:          code,
		OrgName:       in.OrgName,
		WebhookURL:    in.WebhookURL,
		WebhookSecret: in.WebhookSecret,
		OTPExpiry:     expiry,
		Charged:       charged,
		CreatedAt:     s.clock.Now(),
	}

	s.schedule(tx)

	return &SendOTPOutput{TID: tx.TID}, nil
}
